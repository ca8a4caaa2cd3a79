package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/telemetree/sensornet-core/internal/audit"
	"github.com/telemetree/sensornet-core/internal/inventory"
)

type createNetworkRequest struct {
	GatewayID string             `json:"gateway_id"`
	Name      string             `json:"name"`
	Slug      string             `json:"slug"`
	Protocol  inventory.Protocol `json:"protocol"`
	Channel   *int               `json:"channel,omitempty"`
}

type updateNetworkRequest struct {
	Name    *string `json:"name,omitempty"`
	Slug    *string `json:"slug,omitempty"`
	Channel *int    `json:"channel,omitempty"`
}

// handleListNetworks returns all networks.
func (s *Server) handleListNetworks(w http.ResponseWriter, r *http.Request) {
	networks, err := s.inventory.ListNetworks(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"networks": networks, "count": len(networks)})
}

// handleCreateNetwork registers a new network under a gateway.
func (s *Server) handleCreateNetwork(w http.ResponseWriter, r *http.Request) {
	var req createNetworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid JSON body")
		return
	}
	if req.GatewayID == "" {
		s.writeBadRequest(w, r, "gateway_id is required")
		return
	}

	// Resolve the owner first so a bad gateway ID reads as 404, not as
	// an opaque foreign key failure.
	if _, err := s.inventory.GetGateway(r.Context(), req.GatewayID); err != nil {
		s.writeError(w, r, err)
		return
	}

	n := &inventory.Network{
		GatewayID: req.GatewayID,
		Name:      req.Name,
		Slug:      req.Slug,
		Protocol:  req.Protocol,
		Channel:   req.Channel,
	}
	if err := inventory.ValidateNetwork(n); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.inventory.CreateNetwork(r.Context(), n); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityNetwork,
		EntityID:   n.ID,
		UserID:     actingUserID(r),
		Details:    map[string]any{"slug": n.Slug, "gateway_id": n.GatewayID},
	})

	writeJSON(w, http.StatusCreated, n)
}

// handleGetNetwork returns a single network by ID.
func (s *Server) handleGetNetwork(w http.ResponseWriter, r *http.Request) {
	n, err := s.inventory.GetNetwork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleListNetworkSensors returns the sensors on a network.
func (s *Server) handleListNetworkSensors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.inventory.GetNetwork(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	sensors, err := s.inventory.ListSensorsByNetwork(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors, "count": len(sensors)})
}

// handleUpdateNetwork applies a partial update to a network. The owning
// gateway and protocol are fixed at creation.
func (s *Server) handleUpdateNetwork(w http.ResponseWriter, r *http.Request) {
	var req updateNetworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid JSON body")
		return
	}

	n, err := s.inventory.GetNetwork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Name != nil {
		n.Name = *req.Name
	}
	if req.Slug != nil {
		n.Slug = *req.Slug
	}
	if req.Channel != nil {
		n.Channel = req.Channel
	}

	if err := inventory.ValidateNetwork(n); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.inventory.UpdateNetwork(r.Context(), n); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityNetwork,
		EntityID:   n.ID,
		UserID:     actingUserID(r),
	})

	writeJSON(w, http.StatusOK, n)
}

// handleDeleteNetwork removes a network. Networks with sensors cannot be
// deleted; the sensors go first.
func (s *Server) handleDeleteNetwork(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.inventory.DeleteNetwork(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntityNetwork,
		EntityID:   id,
		UserID:     actingUserID(r),
	})

	w.WriteHeader(http.StatusNoContent)
}
