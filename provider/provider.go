package provider

import "context"

// Provider is a named backend that can report whether it is usable.
type Provider interface {
	Name() string
	// IsAvailable reports whether the backend can take work now, for
	// example whether its binary is installed.
	IsAvailable(ctx context.Context) bool
}

// RequestResponse is a provider with a single call shape: one input in,
// one output back.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Factory builds a provider from a loosely typed override map. Keys a
// factory does not recognize are ignored.
type Factory[T Provider] func(cfg map[string]any) (T, error)

// Middleware wraps a RequestResponse with behavior around Execute.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain combines middlewares so that the first is outermost:
// Chain(a, b)(p) behaves like a(b(p)).
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// ExecuteFunc has the shape of RequestResponse.Execute.
type ExecuteFunc[I, O any] func(ctx context.Context, input I) (O, error)

// Around builds a Middleware from a function that decorates Execute. The
// wrapped provider keeps the inner Name and IsAvailable.
func Around[I, O any](wrap func(name string, next ExecuteFunc[I, O]) ExecuteFunc[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return decorated[I, O]{
			RequestResponse: inner,
			exec:            wrap(inner.Name(), inner.Execute),
		}
	}
}

type decorated[I, O any] struct {
	RequestResponse[I, O]
	exec ExecuteFunc[I, O]
}

func (d decorated[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return d.exec(ctx, input)
}
