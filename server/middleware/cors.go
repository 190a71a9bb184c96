package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig lists the browser origins allowed to call the API. "*" allows
// any origin.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
	// MaxAge is how long, in seconds, a browser may cache a preflight.
	MaxAge int `yaml:"max_age" mapstructure:"max_age"`
}

// CORS answers preflight requests and adds CORS headers for allowed
// origins. With no origins configured it does nothing.
func CORS(cfg *CORSConfig) Middleware {
	if len(cfg.AllowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	anyOrigin := slices.Contains(cfg.AllowedOrigins, "*")
	fixed := map[string]string{
		"Access-Control-Allow-Methods":  strings.Join(cfg.AllowedMethods, ", "),
		"Access-Control-Allow-Headers":  strings.Join(cfg.AllowedHeaders, ", "),
		"Access-Control-Expose-Headers": HeaderRequestID,
	}
	if cfg.AllowCredentials {
		fixed["Access-Control-Allow-Credentials"] = "true"
	}
	if cfg.MaxAge > 0 {
		fixed["Access-Control-Max-Age"] = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")
			origin := r.Header.Get("Origin")
			if origin != "" && (anyOrigin || slices.Contains(cfg.AllowedOrigins, origin)) {
				h.Set("Access-Control-Allow-Origin", origin)
				for k, v := range fixed {
					if v != "" {
						h.Set(k, v)
					}
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
