package http

import (
	"net/http"
	"strings"

	"comicvault/internal/platform/net/http/bind"

	"github.com/go-chi/chi/v5"
)

// QueryHandler binds the query string into T, then hands it to fn. Bind and
// validation failures short-circuit as a 400 envelope
func QueryHandler[T any](fn func(*http.Request, T) Response) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseQuery[T](r)
		if err != nil {
			return Error(err)
		}
		return fn(r, in)
	})
}

// JSONHandlerNoBody calls fn without parsing a request body and wraps the result
func JSONHandlerNoBody(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	})
}

// URLParam returns the trimmed route parameter name
func URLParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}
