package http

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "comicvault/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type pingFunc func(stdctx.Context) error

func (f pingFunc) Ping(ctx stdctx.Context) error { return f(ctx) }

func serve(t *testing.T, d Deps, path string) map[string]any {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("%s status = %d, want 200 (%s)", path, rr.Code, rr.Body.String())
	}
	var env struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func TestReady(t *testing.T) {
	ok := pingFunc(func(stdctx.Context) error { return nil })
	down := pingFunc(func(stdctx.Context) error { return errors.New("connection refused") })

	cases := []struct {
		name   string
		deps   Deps
		status string
		checks int
	}{
		{"all ok", Deps{Checks: map[string]Pinger{"pg": ok, "redis": ok}}, "ok", 2},
		{"missing required", Deps{Checks: map[string]Pinger{"redis": ok}, Required: []string{"pg"}}, "degraded", 2},
		{"failing", Deps{Checks: map[string]Pinger{"pg": ok, "elasticsearch": down}}, "fail", 2},
		{"nothing wired", Deps{}, "ok", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := serve(t, tc.deps, "/ready")
			if data["status"] != tc.status {
				t.Fatalf("status = %v, want %v", data["status"], tc.status)
			}
			checks, _ := data["checks"].([]any)
			if len(checks) != tc.checks {
				t.Fatalf("checks = %d, want %d", len(checks), tc.checks)
			}
		})
	}
}

func TestVersionAndService(t *testing.T) {
	d := Deps{ServiceName: "comicvault-api", StartedAt: time.Now().Add(-time.Minute)}

	v := serve(t, d, "/version")
	if v["service"] != "comicvault-api" || v["version"] != "dev" {
		t.Fatalf("version = %v", v)
	}

	s := serve(t, d, "/service")
	if up, _ := s["uptime"].(float64); up < 59 {
		t.Fatalf("uptime = %v, want >= 59", s["uptime"])
	}

	h := serve(t, d, "/health")
	if h["ok"] != true {
		t.Fatalf("health = %v", h)
	}
}
