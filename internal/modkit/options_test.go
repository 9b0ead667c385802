package modkit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	phttp "comicvault/internal/platform/net/http"
)

func TestOptionsSetOneFieldEach(t *testing.T) {
	type catalogPorts struct{ PerPage int }
	cases := []struct {
		name  string
		opt   Option
		check func(buildCfg) bool
	}{
		{"name", WithName("catalog"), func(c buildCfg) bool { return c.name == "catalog" }},
		{"prefix", WithPrefix("/catalog"), func(c buildCfg) bool { return c.prefix == "/catalog" }},
		{"swagger", WithSwagger(true), func(c buildCfg) bool { return c.swaggerOn }},
		{"ports", WithPorts(catalogPorts{PerPage: 24}), func(c buildCfg) bool {
			p, ok := c.ports.(catalogPorts)
			return ok && p.PerPage == 24
		}},
		{"subrouter", WithSubrouter(func(r phttp.Router) phttp.Router { return r }), func(c buildCfg) bool { return c.subrouter != nil }},
		{"register", WithRegister(func(phttp.Router) {}), func(c buildCfg) bool { return c.register != nil }},
	}
	for _, c := range cases {
		var cfg buildCfg
		c.opt(&cfg)
		if !c.check(cfg) {
			t.Fatalf("%s: option not applied: %+v", c.name, cfg)
		}
	}
}

func TestWithMiddlewaresAppendsInOrder(t *testing.T) {
	var trail []string
	layer := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trail = append(trail, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	var c buildCfg
	WithMiddlewares(layer("cache-control"), layer("throttle"))(&c)
	WithMiddlewares(layer("timeout"))(&c)

	var h http.Handler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) { trail = append(trail, "handler") })
	for i := len(c.mw) - 1; i >= 0; i-- {
		h = c.mw[i](h)
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/catalog/comics", nil))

	if got := strings.Join(trail, ","); got != "cache-control,throttle,timeout,handler" {
		t.Fatalf("trail = %s", got)
	}
}
