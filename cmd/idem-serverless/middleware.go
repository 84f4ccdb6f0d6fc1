package main

import (
	"net/http"

	"github.com/rs/zerolog"
)

// middleware is a standard Go middleware function.
type middleware func(http.Handler) http.Handler

// middlewares is an ordered chain of middleware applied outermost-first.
type middlewares []middleware

// apply wraps handler with the chain, in order.
func (m middlewares) apply(handler http.Handler) http.Handler {
	h := handler
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

// recoverMiddleware turns a panic inside the wrapped handler into a 500
// response instead of crashing the process, logging the panic value the
// way a lost handler error would otherwise go unreported.
func recoverMiddleware(log zerolog.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("recovered from panic")
					writeJSONError(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
