package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/telemetree/sensornet-core/internal/audit"
	"github.com/telemetree/sensornet-core/internal/inventory"
)

type createSensorRequest struct {
	NetworkID string  `json:"network_id"`
	Name      string  `json:"name"`
	Serial    string  `json:"serial"`
	Kind      string  `json:"kind"`
	Unit      *string `json:"unit,omitempty"`
}

type updateSensorRequest struct {
	Name   *string           `json:"name,omitempty"`
	Kind   *string           `json:"kind,omitempty"`
	Unit   *string           `json:"unit,omitempty"`
	Status *inventory.Status `json:"status,omitempty"`
}

// handleListSensors returns all sensors.
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	// Serial lookup, for resolving a physical label to its record.
	if serial := r.URL.Query().Get("serial"); serial != "" {
		sensor, err := s.inventory.GetSensorBySerial(r.Context(), serial)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sensors": []any{sensor}, "count": 1})
		return
	}

	sensors, err := s.inventory.ListSensors(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors, "count": len(sensors)})
}

// handleCreateSensor registers a new sensor on a network.
func (s *Server) handleCreateSensor(w http.ResponseWriter, r *http.Request) {
	var req createSensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid JSON body")
		return
	}
	if req.NetworkID == "" {
		s.writeBadRequest(w, r, "network_id is required")
		return
	}

	if _, err := s.inventory.GetNetwork(r.Context(), req.NetworkID); err != nil {
		s.writeError(w, r, err)
		return
	}

	sensor := &inventory.Sensor{
		NetworkID: req.NetworkID,
		Name:      req.Name,
		Serial:    req.Serial,
		Kind:      req.Kind,
		Unit:      req.Unit,
	}
	if err := inventory.ValidateSensor(sensor); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.inventory.CreateSensor(r.Context(), sensor); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntitySensor,
		EntityID:   sensor.ID,
		UserID:     actingUserID(r),
		Details:    map[string]any{"serial": sensor.Serial, "network_id": sensor.NetworkID},
	})

	writeJSON(w, http.StatusCreated, sensor)
}

// handleGetSensor returns a single sensor by ID.
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	sensor, err := s.inventory.GetSensor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sensor)
}

// handleUpdateSensor applies a partial update to a sensor. The network
// and serial are fixed at creation; a physically moved sensor is deleted
// and re-registered.
func (s *Server) handleUpdateSensor(w http.ResponseWriter, r *http.Request) {
	var req updateSensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid JSON body")
		return
	}

	sensor, err := s.inventory.GetSensor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Name != nil {
		sensor.Name = *req.Name
	}
	if req.Kind != nil {
		sensor.Kind = *req.Kind
	}
	if req.Unit != nil {
		sensor.Unit = req.Unit
	}
	if req.Status != nil {
		if !inventory.ValidStatus(*req.Status) {
			s.writeBadRequest(w, r, "invalid status")
			return
		}
		sensor.Status = *req.Status
	}

	if err := inventory.ValidateSensor(sensor); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.inventory.UpdateSensor(r.Context(), sensor); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntitySensor,
		EntityID:   sensor.ID,
		UserID:     actingUserID(r),
	})

	writeJSON(w, http.StatusOK, sensor)
}

// handleDeleteSensor removes a sensor. Its measurements cascade away
// with it.
func (s *Server) handleDeleteSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.inventory.DeleteSensor(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntitySensor,
		EntityID:   id,
		UserID:     actingUserID(r),
	})

	w.WriteHeader(http.StatusNoContent)
}
