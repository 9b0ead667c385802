package httpkit

import (
	"net/http"
	"strconv"
	"testing"
)

func TestMountAPIPrefixes(t *testing.T) {
	cases := []struct {
		version string
		mw      []func(http.Handler) http.Handler
		want    []string
	}{
		{"v2", []func(http.Handler) http.Handler{passthrough, passthrough}, []string{"ROUTE /api/v2", "USE 2", "HANDLE /docs"}},
		{"/v3", nil, []string{"ROUTE /api/v3", "HANDLE /docs"}},
	}
	for _, c := range cases {
		r := &recRouter{}
		mounted := 0
		MountAPI(r, c.version, c.mw, func(api Router) {
			mounted++
			api.Handle("/docs", http.NotFoundHandler())
		})
		if mounted != 1 {
			t.Fatalf("%s: mount ran %d times, want 1", c.version, mounted)
		}
		r.want(t, c.want...)
	}
}

func TestMountAPIV1WithCommonStack(t *testing.T) {
	r := &recRouter{}
	stack := CommonStack(StackOptions{})
	MountAPIV1(r, stack, func(api Router) {
		Get(api, "/meta/health", func(*http.Request) (any, error) { return "ok", nil })
	})
	if len(stack) == 0 {
		t.Fatalf("CommonStack returned no middleware")
	}
	r.want(t, "ROUTE /api/v1", "USE "+strconv.Itoa(len(stack)), "GET /meta/health")
}
