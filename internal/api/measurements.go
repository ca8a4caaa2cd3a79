package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/telemetree/sensornet-core/internal/measurement"
)

type recordMeasurementRequest struct {
	Quantity   string    `json:"quantity"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

// handleMeasurementHistory returns recent readings for a sensor, newest
// first. The limit query parameter is clamped by the store.
func (s *Server) handleMeasurementHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.inventory.GetSensor(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeBadRequest(w, r, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	readings, err := s.readings.History(r.Context(), id, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"measurements": readings, "count": len(readings)})
}

// handleLatestMeasurement returns the most recent reading for a sensor.
func (s *Server) handleLatestMeasurement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.inventory.GetSensor(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	m, err := s.readings.Latest(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleRecordMeasurement records a manual reading through the API, for
// calibration checks and backfilling gaps in gateway telemetry.
func (s *Server) handleRecordMeasurement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sensor, err := s.inventory.GetSensor(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req recordMeasurementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid JSON body")
		return
	}
	if req.Quantity == "" {
		s.writeBadRequest(w, r, "quantity is required")
		return
	}
	if math.IsNaN(req.Value) || math.IsInf(req.Value, 0) {
		s.writeBadRequest(w, r, "value must be a finite number")
		return
	}

	unit := req.Unit
	if unit == "" && sensor.Unit != nil {
		unit = *sensor.Unit
	}

	m := &measurement.Measurement{
		SensorID:   sensor.ID,
		Quantity:   req.Quantity,
		Value:      req.Value,
		Unit:       unit,
		RecordedAt: req.RecordedAt,
	}
	if err := s.readings.Record(r.Context(), m); err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(ChannelMeasurementRecorded, map[string]any{
			"sensor_id":   m.SensorID,
			"serial":      sensor.Serial,
			"quantity":    m.Quantity,
			"value":       m.Value,
			"unit":        m.Unit,
			"recorded_at": m.RecordedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusCreated, m)
}
