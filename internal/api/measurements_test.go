package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/telemetree/sensornet-core/internal/auth"
	"github.com/telemetree/sensornet-core/internal/measurement"
)

func TestRecordMeasurement(t *testing.T) {
	f := testServer(t)
	_, token := f.seedUser(t, "operator", auth.RoleOperator)
	_, _, sensor := f.seedInventory(t)

	rec := f.do(t, http.MethodPost, "/api/v1/sensors/"+sensor.ID+"/measurements", token, map[string]any{
		"quantity": "temperature",
		"value":    21.5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("record = %d (body: %s)", rec.Code, rec.Body.String())
	}

	var m measurement.Measurement
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decode measurement: %v", err)
	}
	if m.ID == "" || m.SensorID != sensor.ID {
		t.Errorf("measurement = %+v", m)
	}
	if m.Unit != "celsius" {
		t.Errorf("unit = %q, want sensor default celsius", m.Unit)
	}
}

func TestRecordMeasurement_Validation(t *testing.T) {
	f := testServer(t)
	_, token := f.seedUser(t, "operator", auth.RoleOperator)
	_, _, sensor := f.seedInventory(t)

	rec := f.do(t, http.MethodPost, "/api/v1/sensors/"+sensor.ID+"/measurements", token, map[string]any{
		"value": 21.5,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing quantity = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/sensors/sen-missing/measurements", token, map[string]any{
		"quantity": "temperature", "value": 1.0,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown sensor = %d, want 404", rec.Code)
	}
}

func TestLatestAndHistory(t *testing.T) {
	f := testServer(t)
	_, token := f.seedUser(t, "viewer", auth.RoleViewer)
	_, _, sensor := f.seedInventory(t)

	// No readings yet: latest is 404, history is an empty list.
	rec := f.do(t, http.MethodGet, "/api/v1/sensors/"+sensor.ID+"/measurements/latest", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("latest with no readings = %d, want 404", rec.Code)
	}
	rec = f.do(t, http.MethodGet, "/api/v1/sensors/"+sensor.ID+"/measurements", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty history = %d", rec.Code)
	}

	// Seed readings directly.
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		m := &measurement.Measurement{
			SensorID:   sensor.ID,
			Quantity:   "temperature",
			Value:      20.0 + float64(i),
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := f.read.Record(context.Background(), m); err != nil {
			t.Fatalf("seed reading %d: %v", i, err)
		}
	}

	rec = f.do(t, http.MethodGet, "/api/v1/sensors/"+sensor.ID+"/measurements/latest", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("latest = %d", rec.Code)
	}
	var latest measurement.Measurement
	if err := json.NewDecoder(rec.Body).Decode(&latest); err != nil {
		t.Fatalf("decode latest: %v", err)
	}
	if latest.Value != 24.0 {
		t.Errorf("latest value = %v, want 24 (newest)", latest.Value)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/sensors/"+sensor.ID+"/measurements?limit=3", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history = %d", rec.Code)
	}
	var body struct {
		Measurements []measurement.Measurement `json:"measurements"`
		Count        int                       `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if body.Count != 3 {
		t.Fatalf("count = %d, want 3", body.Count)
	}
	if body.Measurements[0].Value != 24.0 {
		t.Errorf("history[0] = %v, want newest first", body.Measurements[0].Value)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/sensors/"+sensor.ID+"/measurements?limit=banana", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d, want 400", rec.Code)
	}
}

func TestRecordMeasurement_ViewerForbidden(t *testing.T) {
	f := testServer(t)
	_, token := f.seedUser(t, "viewer", auth.RoleViewer)
	_, _, sensor := f.seedInventory(t)

	rec := f.do(t, http.MethodPost, "/api/v1/sensors/"+sensor.ID+"/measurements", token, map[string]any{
		"quantity": "temperature", "value": 1.0,
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer record = %d, want 403", rec.Code)
	}
}
