package server

import "net/http"

// CallbackRouter serves the handlers mounted on the local OAuth callback listener.
//
// Routes accept GET only, the method the authorization server redirects the browser back with. Anything else
// the browser asks for (a favicon, a stray reload with POST) is answered by the mux with 404 or 405 and never
// reaches a handler. Middleware wraps the whole router, so those responses are logged too.
type CallbackRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	routes      []string
}

// NewCallbackRouter creates a router with the given middleware stack.
func NewCallbackRouter(middleware ...Middleware) *CallbackRouter {
	return &CallbackRouter{mux: http.NewServeMux(), middlewares: middleware}
}

// Use appends middleware. The first middleware added is the outermost.
func (r *CallbackRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Mount registers handler for every path in [Handler.Routes].
func (r *CallbackRouter) Mount(handler Handler) {
	for _, route := range handler.Routes() {
		r.mux.Handle(http.MethodGet+" "+route, handler)
		r.routes = append(r.routes, route)
	}
}

// Routes lists the mounted paths in registration order.
func (r *CallbackRouter) Routes() []string {
	return r.routes
}

func (r *CallbackRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var h http.Handler = r.mux
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	h.ServeHTTP(w, req)
}
