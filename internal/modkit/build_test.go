package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"comicvault/internal/modkit/httpkit"
)

func TestBuildDefaults(t *testing.T) {
	b := Build()
	if b.Name != "" || b.Prefix != "" || b.Ports != nil || b.SwaggerOn || len(b.Mw) != 0 {
		t.Fatalf("Build() = %+v, want zero fields", b)
	}
	var r httpkit.Router
	if b.Subrouter(r) != r {
		t.Fatalf("default Subrouter is not identity")
	}
	b.Register(r) // no-op default must not panic
}

// modules prepend their own defaults, so later caller options win
func TestBuildCallerOptionsOverrideModuleDefaults(t *testing.T) {
	defaults := []Option{WithName("catalog"), WithPrefix("/catalog")}
	b := Build(append(defaults, WithPrefix("/v2/catalog"), WithSwagger(true))...)
	if b.Name != "catalog" || b.Prefix != "/v2/catalog" || !b.SwaggerOn {
		t.Fatalf("Build = %+v", b)
	}
}

func TestBuildCopiesMiddleware(t *testing.T) {
	hits := 0
	counted := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++; next.ServeHTTP(w, r) })
	}
	src := []func(http.Handler) http.Handler{counted}
	b := Build(WithMiddlewares(src...))

	src[0] = func(next http.Handler) http.Handler { return next }
	b.Mw[0](http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/catalog/comics", nil))
	if hits != 1 {
		t.Fatalf("Built.Mw followed the caller's slice; hits = %d", hits)
	}
}
