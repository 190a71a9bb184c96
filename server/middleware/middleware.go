package middleware

import (
	"net/http"
	"slices"
)

// Middleware decorates an http.Handler. The server wraps the whole Gin
// engine with its stack, so every route sees the same middleware.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware, outermost first: Chain(a, b)(h) is a(b(h)).
func Chain(middlewares ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for _, mw := range slices.Backward(middlewares) {
			h = mw(h)
		}
		return h
	}
}
