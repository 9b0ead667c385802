package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type listIn struct {
	Q string `query:"q"`
}

func TestSugar_GetVariants(t *testing.T) {
	t.Parallel()

	r := AdaptChi(chi.NewRouter())

	GetJSON(r, "/g", func(_ *http.Request) (any, error) {
		return map[string]string{"ok": "get"}, nil
	})
	GetQuery[listIn](r, "/q", func(_ *http.Request, in listIn) Response {
		return List([]string{in.Q}, Page{Page: 1, PerPage: 20, TotalItems: 1, TotalPages: 1, StartPage: 1, EndPage: 1})
	})

	do := func(path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		r.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		return rr
	}

	rr := do("/g")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok":"get"`) {
		t.Fatalf("GET /g => code=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = do("/q?q=hulk")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"data":["hulk"]`) {
		t.Fatalf("GET /q => code=%d body=%q", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"totalPages":1`) {
		t.Fatalf("GET /q missing page block: %q", rr.Body.String())
	}
}
