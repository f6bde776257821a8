package router

import (
	"net/http"
)

// Chain builds a handler from a base handler and middlewares.
type Chain struct {
	handler     http.Handler
	middlewares []func(http.Handler) http.Handler
}

// NewChain creates a new Chain instance with the base handler.
func NewChain(h http.Handler) *Chain {
	if h == nil {
		panic("chain handler cannot be nil")
	}
	return &Chain{
		handler:     h,
		middlewares: make([]func(http.Handler) http.Handler, 0),
	}
}

// WithMiddleware adds one or more middlewares to the chain.
// Middlewares execute in the order they are given, from left to right:
//
//	.WithMiddleware(mw1, mw2, mw3)
//
// runs mw1 first, then mw2, then mw3, then the handler. Same semantics
// as alice (github.com/justinas/alice); the first middleware is the
// outermost handler.
func (r *Chain) WithMiddleware(middlewares ...func(http.Handler) http.Handler) *Chain {
	for _, mw := range middlewares {
		r.middlewares = append([]func(http.Handler) http.Handler{mw}, r.middlewares...)
	}
	return r
}

// Handler returns the final handler with all middlewares applied
func (r *Chain) Handler() http.Handler {
	handler := r.handler
	for _, mw := range r.middlewares {
		handler = mw(handler)
	}
	return handler
}
