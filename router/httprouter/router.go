package httprouter

import (
	"context"
	"net/http"
	"strings"

	"github.com/caasmo/authrelay/router"
	jshttprouter "github.com/julienschmidt/httprouter"
)

// Implementation of the router interface
type Router struct {
	rt *jshttprouter.Router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.rt.ServeHTTP(w, req)
}

// splitEndpoint parses "METHOD /path" strings. A bare "/path" defaults
// to GET.
func splitEndpoint(endpoint string) (method, path string) {
	method = http.MethodGet
	path = endpoint
	if before, after, found := strings.Cut(endpoint, " "); found {
		method = before
		path = after
	}
	return method, path
}

func (r *Router) Handle(endpoint string, handler http.Handler) {
	method, path := splitEndpoint(endpoint)
	r.rt.Handler(method, path, handler)
}

func (r *Router) HandleFunc(endpoint string, handler func(http.ResponseWriter, *http.Request)) {
	r.Handle(endpoint, http.HandlerFunc(handler))
}

func New() router.Router {
	return &Router{rt: jshttprouter.New()}
}

// Implementation of the router/ParamGeter interface
type jsParams struct{}

func (js *jsParams) Get(ctx context.Context) router.Params {
	pms, _ := ctx.Value(jshttprouter.ParamsKey).(jshttprouter.Params)

	var params router.Params
	for _, v := range pms {
		params = append(params, router.Param{Key: v.Key, Value: v.Value})
	}
	return params
}

func NewParamGeter() router.ParamGeter {
	return &jsParams{}
}
