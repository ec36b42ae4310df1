package router

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shravanasati/beacon/request"
	"github.com/shravanasati/beacon/response"
	"github.com/shravanasati/beacon/server"
)

var defaultNotFoundHandler server.Handler = func(r *request.Request) response.Response {
	return response.StatusText(response.StatusNotFound)
}

// Route binds a handler to an exact path.
type Route struct {
	Path    string
	Handler server.Handler
}

type Middleware func(server.Handler) server.Handler

// Option configures a Router at construction time.
type Option func(*Router)

// WithNotFound replaces the handler used when no route matches.
func WithNotFound(h server.Handler) Option {
	return func(r *Router) {
		r.notFoundHandler = h
	}
}

// WithMiddleware wraps the routing handler. The first middleware is the
// outermost one.
func WithMiddleware(m ...Middleware) Option {
	return func(r *Router) {
		r.middlewares = append(r.middlewares, m...)
	}
}

// Router is a static route table. Paths are matched exactly: no parameters,
// no wildcards and no trailing slash normalization. It cannot be changed
// after New returns, so it is safe for concurrent use.
type Router struct {
	routes          map[string]server.Handler
	notFoundHandler server.Handler
	middlewares     []Middleware
	handler         server.Handler
}

// New builds a Router from routes.
func New(routes []Route, opts ...Option) (*Router, error) {
	router := &Router{
		routes:          make(map[string]server.Handler, len(routes)),
		notFoundHandler: defaultNotFoundHandler,
	}

	for _, route := range routes {
		if !strings.HasPrefix(route.Path, "/") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, route.Path)
		}
		if route.Handler == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilHandler, route.Path)
		}
		if _, ok := router.routes[route.Path]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRoute, route.Path)
		}
		router.routes[route.Path] = route.Handler
	}

	for _, opt := range opts {
		opt(router)
	}
	if router.notFoundHandler == nil {
		return nil, fmt.Errorf("%w: not found handler", ErrNilHandler)
	}

	router.handler = router.chain(router.route)
	return router, nil
}

// Resolve returns the handler registered for path.
func (router *Router) Resolve(path string) (server.Handler, bool) {
	h, ok := router.routes[path]
	return h, ok
}

// Paths returns the registered paths in sorted order.
func (router *Router) Paths() []string {
	paths := make([]string, 0, len(router.routes))
	for p := range router.routes {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

func (router *Router) chain(h server.Handler) server.Handler {
	for i := len(router.middlewares) - 1; i >= 0; i-- {
		h = router.middlewares[i](h)
	}
	return h
}

func (router *Router) route(r *request.Request) response.Response {
	if h, ok := router.Resolve(r.Path); ok {
		return h(r)
	}
	return router.notFoundHandler(r)
}

// Handler returns the server.Handler that dispatches requests by path, for
// any method, through the middleware chain. Unmatched paths go to the not
// found handler.
func (router *Router) Handler() server.Handler {
	return router.handler
}
