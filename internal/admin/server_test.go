package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bleportable/blemidi/bleport"
)

type fakeSource struct{ ports []bleport.Port }

func (f fakeSource) Ports() []bleport.Port { return f.ports }

func TestPortsEndpoint(t *testing.T) {
	source := fakeSource{ports: []bleport.Port{
		{AdapterIndex: 0, Peripheral: bleport.NewPeripheralID("aa:bb"), Name: "Keyboard"},
	}}
	metrics := NewMetrics(prometheus.NewRegistry())
	server := NewServer(source, metrics)

	req := httptest.NewRequest(http.MethodGet, "/ports", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Ports []map[string]interface{} `json:"ports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Ports) != 1 || body.Ports[0]["name"] != "Keyboard" {
		t.Errorf("got %v", body.Ports)
	}
}

func TestHealthEndpoint(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	server := NewServer(fakeSource{}, metrics)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
