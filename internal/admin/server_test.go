package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fieldsim/internal/config"
	"fieldsim/internal/field"
	"fieldsim/internal/sim"
)

func testServer(t *testing.T) (*Server, *sim.Simulator) {
	t.Helper()
	cfg := &config.SimulationConfig{
		Field:       config.FieldInfo{Name: "test-field", Width: 100, Height: 100},
		BaseStation: config.Point{X: 50, Y: 50},
		Defaults: config.Energy{
			Battery:           100,
			SensingRange:      10,
			CommRange:         50,
			EnergyPerSense:    0.05,
			EnergyPerTransmit: 0.1,
		},
		Nodes: []config.NodeSpec{
			{ID: 0, Type: "moisture", X: 60, Y: 50},
			{ID: 1, Type: "ph", X: 40, Y: 50},
		},
		MaxCycles: 5,
	}
	simulator := sim.NewSimulator("field-test", cfg, nil, nil, time.Second)
	return NewServer(simulator), simulator
}

func TestHandleNodes(t *testing.T) {
	server, simulator := testServer(t)
	simulator.RunCycle()

	req := httptest.NewRequest(http.MethodGet, "/nodes", nil)
	w := httptest.NewRecorder()
	server.handleNodes(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rows []field.ReadingRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d nodes, want 2", len(rows))
	}
	for _, row := range rows {
		if row.Battery >= 100 {
			t.Errorf("node %d battery %f, expected drain after a cycle", row.NodeID, row.Battery)
		}
	}
}

func TestHandleLog(t *testing.T) {
	server, simulator := testServer(t)
	simulator.RunCycle()

	w := httptest.NewRecorder()
	server.handleLog(w, httptest.NewRequest(http.MethodGet, "/log", nil))

	var records []field.Record
	if err := json.NewDecoder(w.Result().Body).Decode(&records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestHandleHealthAndStatus(t *testing.T) {
	server, simulator := testServer(t)
	for i := 0; i < 6; i++ {
		simulator.RunCycle()
	}

	w := httptest.NewRecorder()
	server.handleHealth(w, httptest.NewRequest(http.MethodGet, "/field-health", nil))
	var h sim.FieldHealth
	if err := json.NewDecoder(w.Result().Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Total != 2 {
		t.Errorf("health total = %d, want 2", h.Total)
	}

	w = httptest.NewRecorder()
	server.handleStatus(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	var st struct {
		Status string `json:"status"`
		Cycle  int    `json:"cycle"`
	}
	if err := json.NewDecoder(w.Result().Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Status != string(sim.StatusCompleted) || st.Cycle != 5 {
		t.Errorf("status = %+v, want completed at cycle 5", st)
	}
}

func TestHandleIndex(t *testing.T) {
	server, simulator := testServer(t)
	simulator.RunCycle()

	w := httptest.NewRecorder()
	server.handleIndex(w, httptest.NewRequest(http.MethodGet, "/", nil))

	body := w.Body.String()
	if !strings.Contains(body, "Field Simulation") {
		t.Error("index missing title")
	}
	if !strings.Contains(body, "moisture") || !strings.Contains(body, "ph") {
		t.Errorf("index missing node rows:\n%s", body)
	}
}
