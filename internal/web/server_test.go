package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labodj/lsh-core/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Name:       "panel-hall",
		Encoding:   "json",
		LinkKind:   "serial",
		TickMs:     5,
		DebounceMs: 20,
		Broker:     "tcp://192.168.1.200:1883",
		HTTPAddr:   ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.srv.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(
		[]status.ActuatorState{{ID: 10, On: true}, {ID: 11, On: false}},
		true, false,
		status.ClickCounts{Short: 5, Long: 2},
	)
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if len(sj.Status.Actuators) != 2 {
		t.Fatalf("Actuators: got %d, want 2", len(sj.Status.Actuators))
	}
	if sj.Status.Actuators[0].ID != 10 || sj.Status.Actuators[0].State != "ON" {
		t.Errorf("Actuators[0]: got %+v", sj.Status.Actuators[0])
	}
	if !sj.Status.Gateway.Connected {
		t.Error("expected Gateway.Connected=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Short != 5 {
		t.Errorf("Counts.Short: got %d, want 5", sj.Status.Counts.Short)
	}
	if sj.Status.Counts.Long != 2 {
		t.Errorf("Counts.Long: got %d, want 2", sj.Status.Counts.Long)
	}
	if sj.Status.Config.Name != "panel-hall" {
		t.Errorf("Config.Name: got %q, want panel-hall", sj.Status.Config.Name)
	}
	if sj.Status.Config.TickMs != 5 {
		t.Errorf("Config.TickMs: got %d, want 5", sj.Status.Config.TickMs)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update([]status.ActuatorState{{ID: 1, On: true}}, true, false, status.ClickCounts{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "panel-hall") {
		t.Error("expected panel name in HTML body")
	}
	if !strings.Contains(string(body), "Actuator 1") {
		t.Error("expected actuator row in HTML body")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Gateway.Connected {
		t.Error("expected gateway disconnected initially")
	}

	tr.Update([]status.ActuatorState{{ID: 3, On: true}}, true, true, status.ClickCounts{Network: 1})
	tr.SetMQTTConnected(true)

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if !sj2.Status.Gateway.Connected {
		t.Error("expected gateway connected after update")
	}
	if !sj2.Status.Gateway.PendingClicks {
		t.Error("expected pending clicks after update")
	}
	if sj2.Status.Actuators[0].State != "ON" {
		t.Errorf("actuator state: got %q, want ON", sj2.Status.Actuators[0].State)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
