package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/audit"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/repository"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/roles"
	"github.com/gorilla/mux"
)

type TunnelsHandler struct {
	tunnels  repository.TunnelRepo
	recorder *audit.Recorder
}

func NewTunnelsHandler(tunnels repository.TunnelRepo, recorder *audit.Recorder) *TunnelsHandler {
	return &TunnelsHandler{tunnels: tunnels, recorder: recorder}
}

func (h *TunnelsHandler) List(w http.ResponseWriter, r *http.Request) {
	tunnels, err := h.tunnels.ListTunnels(r.Context())
	if err != nil {
		writeError(w, "failed to fetch tunnels", http.StatusInternalServerError)
		return
	}
	if tunnels == nil {
		tunnels = []models.Tunnel{}
	}
	writeJSON(w, tunnels, http.StatusOK)
}

func (h *TunnelsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tunnel, err := h.tunnels.GetTunnel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "failed to fetch tunnel", http.StatusInternalServerError)
		return
	}
	if tunnel == nil {
		writeError(w, "tunnel not found", http.StatusNotFound)
		return
	}
	writeJSON(w, tunnel, http.StatusOK)
}

func (h *TunnelsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !validateRequest(r.Context(), w, "tunnel_create", body) {
		return
	}

	var tunnel models.Tunnel
	if err := json.Unmarshal(body, &tunnel); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.tunnels.CreateTunnel(r.Context(), &tunnel); err != nil {
		writeError(w, "failed to create tunnel", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tunnel, http.StatusCreated)
}

type updateTunnelRequest struct {
	models.TunnelPatch
	// UserID identifies the actor making the update; it is stripped before
	// the patch is persisted.
	UserID *int64 `json:"userId,omitempty"`
}

func (h *TunnelsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateTunnelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tunnel, err := h.tunnels.GetTunnel(ctx, id)
	if err != nil {
		writeError(w, "failed to fetch tunnel", http.StatusInternalServerError)
		return
	}
	if tunnel == nil {
		writeError(w, "tunnel not found", http.StatusNotFound)
		return
	}

	actorID := int64(0)
	if req.UserID != nil {
		actorID = *req.UserID
	} else if ctxID, ok := actorFromContext(ctx); ok {
		actorID = ctxID
	}

	// A barrier change is audited as its own operation, with the wear
	// payload of an actuation, before the general update entry.
	barrierChanging := req.BarrierStatus != nil && *req.BarrierStatus != tunnel.BarrierStatus
	if barrierChanging && actorID > 0 {
		impact := audit.BarrierToggleImpact(id, time.Now().UTC())
		if err := h.recorder.Record(ctx, audit.Entry{
			ActorID:  actorID,
			Action:   "update_barrier",
			Category: "tunnel",
			Details: map[string]any{
				"previousStatus": tunnel.BarrierStatus,
				"newStatus":      *req.BarrierStatus,
				"tunnelName":     tunnel.Name,
			},
			EntityID: id,
			EnvironmentData: map[string]any{
				"waterLevel": tunnel.WaterLevel,
				"riskLevel":  tunnel.RiskLevel,
			},
			HardwareImpact: &impact,
			RequiredRoles:  roles.ReviewerRoles,
			Meta:           requestMeta(r),
		}); err != nil {
			logger.Error("record barrier audit entry", slog.Any("err", err))
		}
	}

	updated, err := h.tunnels.UpdateTunnel(ctx, id, req.TunnelPatch)
	if err != nil {
		writeError(w, "failed to update tunnel", http.StatusInternalServerError)
		return
	}

	if actorID > 0 {
		if err := h.recorder.Record(ctx, audit.Entry{
			ActorID:  actorID,
			Action:   "update_tunnel",
			Category: "tunnel",
			Details: map[string]any{
				"updatedFields": patchedTunnelFields(req.TunnelPatch),
				"tunnelName":    tunnel.Name,
			},
			EntityID:      id,
			RequiredRoles: roles.ReviewerRoles,
			Meta:          requestMeta(r),
		}); err != nil {
			logger.Error("record tunnel update audit entry", slog.Any("err", err))
		}
	}

	writeJSON(w, updated, http.StatusOK)
}

func patchedTunnelFields(p models.TunnelPatch) []string {
	fields := []string{}
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.RiskLevel != nil {
		fields = append(fields, "riskLevel")
	}
	if p.WaterLevel != nil {
		fields = append(fields, "waterLevel")
	}
	if p.BarrierStatus != nil {
		fields = append(fields, "barrierStatus")
	}
	if p.GuidanceDisplayEnabled != nil {
		fields = append(fields, "guidanceDisplayEnabled")
	}
	if p.ActiveGuidanceSymbol != nil {
		fields = append(fields, "activeGuidanceSymbol")
	}
	if p.MapEmbedHTML != nil {
		fields = append(fields, "mapEmbedHtml")
	}
	return fields
}

func (h *TunnelsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.tunnels.DeleteTunnel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "failed to delete tunnel", http.StatusInternalServerError)
		return
	}
	if !deleted {
		writeError(w, "tunnel not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type guidanceDisplayRequest struct {
	Enabled bool   `json:"enabled"`
	Symbol  string `json:"symbol"`
	UserID  *int64 `json:"userId,omitempty"`
}

// UpdateGuidanceDisplay writes the guidance-display settings. Only admin and
// traffic actors generate an audit entry; ministry is excluded here.
func (h *TunnelsHandler) UpdateGuidanceDisplay(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req guidanceDisplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tunnel, err := h.tunnels.GetTunnel(ctx, id)
	if err != nil {
		writeError(w, "failed to fetch tunnel", http.StatusInternalServerError)
		return
	}
	if tunnel == nil {
		writeError(w, "tunnel not found", http.StatusNotFound)
		return
	}

	symbol := req.Symbol
	if symbol == "" {
		symbol = "none"
	}
	updated, err := h.tunnels.UpdateTunnel(ctx, id, models.TunnelPatch{
		GuidanceDisplayEnabled: &req.Enabled,
		ActiveGuidanceSymbol:   &symbol,
	})
	if err != nil {
		writeError(w, "failed to update guidance display settings", http.StatusInternalServerError)
		return
	}

	actorID := int64(0)
	if req.UserID != nil {
		actorID = *req.UserID
	} else if ctxID, ok := actorFromContext(ctx); ok {
		actorID = ctxID
	}

	if actorID > 0 {
		action := "deactivate_guidance_display"
		if req.Enabled {
			action = "activate_guidance_display"
		}
		impact := audit.GuidanceDisplayImpact(id, time.Now().UTC())
		if err := h.recorder.Record(ctx, audit.Entry{
			ActorID:  actorID,
			Action:   action,
			Category: "tunnel",
			Details: map[string]any{
				"tunnelName": tunnel.Name,
				"symbol":     symbol,
			},
			EntityID:       id,
			HardwareImpact: &impact,
			RequiredRoles:  []roles.Role{roles.Admin, roles.Traffic},
			Meta:           requestMeta(r),
		}); err != nil {
			logger.Error("record guidance display audit entry", slog.Any("err", err))
		}
	}

	writeJSON(w, updated, http.StatusOK)
}
