package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestInitDefault(t *testing.T) {
	m := InitDefault()
	if m == nil {
		t.Fatal("expected metrics, got nil")
	}
	if m != Default {
		t.Error("expected returned metrics to be same as Default")
	}
	if m2 := InitDefault(); m2 != m {
		t.Error("expected same instance on second call")
	}
	if GetDefault() != m {
		t.Error("expected GetDefault to return Default instance")
	}
}

func TestNewRegistry(t *testing.T) {
	reg, m := NewRegistry()
	m.RecordSessionEvent("initialized")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range families {
		if mf.GetName() == "his_session_events_total" {
			found = true
			break
		}
	}
	if !found {
		t.Error("metrics not registered with custom registry")
	}
}

func TestHandlerFor(t *testing.T) {
	reg, m := NewRegistry()
	m.RecordUnauthorized("redirect")

	handler := HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %v, want %v", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "his_gateway_unauthorized_total") {
		t.Error("metrics output does not contain his_gateway_unauthorized_total")
	}
}

func TestMultipleRegistries(t *testing.T) {
	_, m1 := NewRegistry()
	_, m2 := NewRegistry()
	if m1 == m2 {
		t.Error("expected different metrics instances")
	}
}

func TestListen(t *testing.T) {
	reg, m := NewRegistry()
	m.RecordResolution("render")

	srv, err := Listen("127.0.0.1:0", reg)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = srv.Shutdown(context.Background()) }()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `his_navigation_resolutions_total{outcome="render"} 1`) {
		t.Errorf("unexpected body:\n%s", body)
	}
}
