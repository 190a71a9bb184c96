package server

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kbukum/scribekit/logger"
)

// systemPaths are the routes added by RegisterDefaultEndpoints.
var systemPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/alive":   true,
	"/metrics": true,
	"/version": true,
}

var methodRank = map[string]int{"GET": 0, "POST": 1, "PUT": 2, "PATCH": 3, "DELETE": 4}

// Route describes one registered Gin route.
type Route struct {
	Method  string
	Path    string
	Handler string
	System  bool
}

// Routes lists the registered routes: API routes by path, then system routes.
func (s *Server) Routes() []Route {
	routes := make([]Route, 0)
	for _, r := range s.engine.Routes() {
		routes = append(routes, Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: handlerName(r.Handler),
			System:  systemPaths[r.Path],
		})
	}
	slices.SortFunc(routes, func(a, b Route) int {
		if a.System != b.System {
			if a.System {
				return 1
			}
			return -1
		}
		return cmp.Or(strings.Compare(a.Path, b.Path), cmp.Compare(rank(a.Method), rank(b.Method)))
	})
	return routes
}

func rank(method string) int {
	if r, ok := methodRank[method]; ok {
		return r
	}
	return len(methodRank)
}

// LogRoutes logs each route at debug level and the total at info.
func (s *Server) LogRoutes() {
	routes := s.Routes()
	for _, r := range routes {
		s.log.Debug("Route registered", logger.Fields(
			"method", r.Method, "path", r.Path, "handler", r.Handler, "system", r.System))
	}
	s.log.Info("Routes registered", logger.Fields("count", len(routes), "addr", s.Addr()))
}

// handlerName shortens Gin's handler symbol:
// "github.com/kbukum/scribekit/server.(*routes).transcribeFile-fm" becomes
// "routes.transcribeFile" and "…/endpoint.Health.func1" becomes "endpoint.Health".
func handlerName(symbol string) string {
	name := strings.TrimSuffix(symbol, "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	for len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "func") {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, ".")
}
