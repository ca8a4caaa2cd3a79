package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/telemetree/sensornet-core/internal/audit"
	"github.com/telemetree/sensornet-core/internal/inventory"
)

type createGatewayRequest struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Address  string  `json:"address"`
	Location *string `json:"location,omitempty"`
}

type updateGatewayRequest struct {
	Name     *string           `json:"name,omitempty"`
	Slug     *string           `json:"slug,omitempty"`
	Address  *string           `json:"address,omitempty"`
	Location *string           `json:"location,omitempty"`
	Status   *inventory.Status `json:"status,omitempty"`
}

// handleListGateways returns all gateways.
func (s *Server) handleListGateways(w http.ResponseWriter, r *http.Request) {
	gateways, err := s.inventory.ListGateways(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"gateways": gateways, "count": len(gateways)})
}

// handleCreateGateway registers a new gateway.
func (s *Server) handleCreateGateway(w http.ResponseWriter, r *http.Request) {
	var req createGatewayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid JSON body")
		return
	}
	if req.Address == "" {
		s.writeBadRequest(w, r, "address is required")
		return
	}

	gw := &inventory.Gateway{
		Name:     req.Name,
		Slug:     req.Slug,
		Address:  req.Address,
		Location: req.Location,
	}
	if err := inventory.ValidateGateway(gw); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.inventory.CreateGateway(r.Context(), gw); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityGateway,
		EntityID:   gw.ID,
		UserID:     actingUserID(r),
		Details:    map[string]any{"slug": gw.Slug},
	})

	writeJSON(w, http.StatusCreated, gw)
}

// handleGetGateway returns a single gateway by ID.
func (s *Server) handleGetGateway(w http.ResponseWriter, r *http.Request) {
	gw, err := s.inventory.GetGateway(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gw)
}

// handleListGatewayNetworks returns the networks owned by a gateway.
func (s *Server) handleListGatewayNetworks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.inventory.GetGateway(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	networks, err := s.inventory.ListNetworksByGateway(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"networks": networks, "count": len(networks)})
}

// handleUpdateGateway applies a partial update to a gateway.
func (s *Server) handleUpdateGateway(w http.ResponseWriter, r *http.Request) {
	var req updateGatewayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, r, "invalid JSON body")
		return
	}

	gw, err := s.inventory.GetGateway(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Name != nil {
		gw.Name = *req.Name
	}
	if req.Slug != nil {
		gw.Slug = *req.Slug
	}
	if req.Address != nil {
		gw.Address = *req.Address
	}
	if req.Location != nil {
		gw.Location = req.Location
	}
	if req.Status != nil {
		if !inventory.ValidStatus(*req.Status) {
			s.writeBadRequest(w, r, "invalid status")
			return
		}
		gw.Status = *req.Status
	}

	if err := inventory.ValidateGateway(gw); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.inventory.UpdateGateway(r.Context(), gw); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityGateway,
		EntityID:   gw.ID,
		UserID:     actingUserID(r),
	})

	writeJSON(w, http.StatusOK, gw)
}

// handleDeleteGateway removes a gateway. Gateways with networks cannot
// be deleted; the networks go first.
func (s *Server) handleDeleteGateway(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.inventory.DeleteGateway(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordAudit(&audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntityGateway,
		EntityID:   id,
		UserID:     actingUserID(r),
	})

	w.WriteHeader(http.StatusNoContent)
}
