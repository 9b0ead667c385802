package httpkit

import "net/http"

// Get registers a no-input handler and uses the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// GetQuery mounts a handler whose input is bound from the query string
func GetQuery[T any](r Router, path string, h func(*http.Request, T) Response) {
	r.Get(path, Query(h))
}

// Head mirrors a no-input GET handler for HEAD requests
func Head(r Router, path string, h func(*http.Request) (any, error)) {
	r.Head(path, Call(h))
}
