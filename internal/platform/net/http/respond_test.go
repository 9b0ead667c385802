package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"comicvault/internal/core/paging"
	perr "comicvault/internal/platform/errors"
	lumnet "comicvault/internal/platform/net"
	phttp "comicvault/internal/platform/net/http"
)

func reqWithReqID(method, path, rid string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	return req.WithContext(lumnet.WithRequest(req.Context(), rid))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) phttp.Envelope {
	t.Helper()
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestJSONSetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	phttp.JSON(rec, http.StatusTeapot, map[string]any{"k": "v"})
	if rec.Code != http.StatusTeapot || rec.Header().Get("Content-Type") == "" {
		t.Fatalf("code = %d content-type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestRespondOK(t *testing.T) {
	rec := httptest.NewRecorder()
	phttp.RespondOK(rec, reqWithReqID("GET", "/x", "rid-1"), map[string]string{"a": "b"})
	env := decode(t, rec)
	if rec.Code != http.StatusOK || env.StatusCode != 200 || env.RequestID != "rid-1" || env.Data == nil || env.Page != nil {
		t.Fatalf("bad envelope: %+v", env)
	}
}

func TestRespondListCarriesWindow(t *testing.T) {
	w, err := paging.Compute(237, 6, 20, paging.DefaultWindow)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	rec := httptest.NewRecorder()
	phttp.RespondList(rec, reqWithReqID("GET", "/list", "rid-2"), []int{1, 2, 3}, w)

	env := decode(t, rec)
	if env.Page == nil || *env.Page != w {
		t.Fatalf("page = %+v, want %+v", env.Page, w)
	}
	if items, ok := env.Data.([]any); !ok || len(items) != 3 {
		t.Fatalf("data = %#v", env.Data)
	}
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", perr.NotFoundf("comic %d", 1), http.StatusNotFound},
		{"out of range", perr.OutOfRangef("page 13"), http.StatusRequestedRangeNotSatisfiable},
		{"index down", perr.IndexUnavailablef(errors.New("refused"), "search"), http.StatusServiceUnavailable},
		{"generic", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			phttp.RespondError(rec, reqWithReqID("GET", "/err", "rid-3"), c.err)
			env := decode(t, rec)
			if rec.Code != c.want || env.StatusCode != c.want || env.Error == "" || env.RequestID != "rid-3" {
				t.Fatalf("code = %d env = %+v, want %d", rec.Code, env, c.want)
			}
		})
	}
}

func TestHandleNoContentAndHeaders(t *testing.T) {
	hn := phttp.Handle(func(r *http.Request) phttp.Response { return phttp.NoContent() })
	rec := httptest.NewRecorder()
	hn(rec, reqWithReqID("GET", "/no", "rid-6"))
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("NoContent code=%d body=%q", rec.Code, rec.Body.String())
	}

	hh := phttp.Handle(func(r *http.Request) phttp.Response {
		resp := phttp.Data("hello")
		resp.Header = http.Header{}
		resp.Header.Set("X-Thing", "yup")
		return resp
	})
	rec = httptest.NewRecorder()
	hh(rec, reqWithReqID("GET", "/hdr", "rid-8"))
	if rec.Header().Get("X-Thing") != "yup" {
		t.Fatalf("header override missing")
	}
	if s, ok := decode(t, rec).Data.(string); !ok || s != "hello" {
		t.Fatalf("data = %#v", decode(t, rec).Data)
	}
}
