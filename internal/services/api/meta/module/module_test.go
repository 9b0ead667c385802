package module

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	modkit "comicvault/internal/modkit"
	"comicvault/internal/platform/config"
	phttp "comicvault/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestMetaModuleWithoutStore(t *testing.T) {
	m := New(modkit.Deps{Cfg: config.New()})
	if m.Name() != "meta" || m.Ports() != nil {
		t.Fatalf("Name = %q Ports = %v", m.Name(), m.Ports())
	}

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/meta/ready", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"degraded"`) || !strings.Contains(body, `"skipped"`) {
		t.Fatalf("body = %s, want pg skipped and degraded", body)
	}
}
