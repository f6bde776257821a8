package router

import (
	"context"
	"net/http"
)

// Router registers handlers for "METHOD /path" endpoint strings and
// serves them. Implementations decide how path parameters are encoded.
type Router interface {
	http.Handler

	// Handle registers a handler for an endpoint of the form
	// "METHOD /path", e.g. "POST /api/login". A missing method
	// defaults to GET.
	Handle(endpoint string, handler http.Handler)
	HandleFunc(endpoint string, handler func(http.ResponseWriter, *http.Request))
}

type Param struct {
	Key   string
	Value string
}

type Params []Param

func (ps Params) ByName(name string) string {
	for _, p := range ps {
		if p.Key == name {
			return p.Value
		}
	}
	return ""
}

// ParamGeter extracts the path parameters an implementation stored in
// the request context.
type ParamGeter interface {
	Get(ctx context.Context) Params
}
