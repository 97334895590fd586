package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/roles"
)

func TestTunnelsCRUD(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPost, "/api/tunnels", map[string]any{
		"id":            "TUN001",
		"name":          "Al Fateh Tunnel",
		"riskLevel":     "High",
		"waterLevel":    78,
		"barrierStatus": "Closed",
	})
	requireStatus(t, w, http.StatusCreated)
	created := decodeBody[models.Tunnel](t, w)
	if created.LastUpdate.IsZero() {
		t.Fatalf("expected last update to be set")
	}
	if created.ActiveGuidanceSymbol != "none" {
		t.Fatalf("expected default symbol none, got %q", created.ActiveGuidanceSymbol)
	}

	// Schema rejects an out-of-range water level
	w = s.do(t, http.MethodPost, "/api/tunnels", map[string]any{
		"id":            "TUN002",
		"name":          "Bad Tunnel",
		"riskLevel":     "High",
		"waterLevel":    150,
		"barrierStatus": "Open",
	})
	requireStatus(t, w, http.StatusBadRequest)

	w = s.do(t, http.MethodGet, "/api/tunnels/TUN001", nil)
	requireStatus(t, w, http.StatusOK)

	w = s.do(t, http.MethodGet, "/api/tunnels/TUN999", nil)
	requireStatus(t, w, http.StatusNotFound)

	w = s.do(t, http.MethodGet, "/api/tunnels", nil)
	requireStatus(t, w, http.StatusOK)
	if list := decodeBody[[]models.Tunnel](t, w); len(list) != 1 {
		t.Fatalf("expected 1 tunnel, got %d", len(list))
	}

	requireStatus(t, s.do(t, http.MethodDelete, "/api/tunnels/TUN001", nil), http.StatusNoContent)
	requireStatus(t, s.do(t, http.MethodDelete, "/api/tunnels/TUN001", nil), http.StatusNotFound)
}

func TestTunnelBarrierUpdateAudited(t *testing.T) {
	s := setupServer(t)
	operator := s.addUser(t, "operator", roles.Traffic)
	tunnel := s.addTunnel(t, "TUN001")

	w := s.do(t, http.MethodPut, "/api/tunnels/"+tunnel.ID, map[string]any{
		"barrierStatus": "Closed",
		"userId":        operator.ID,
	})
	requireStatus(t, w, http.StatusOK)
	updated := decodeBody[models.Tunnel](t, w)
	if updated.BarrierStatus != models.BarrierClosed {
		t.Fatalf("expected closed barrier, got %q", updated.BarrierStatus)
	}

	logs, err := s.repo.ListLogsByEntity(context.Background(), tunnel.ID)
	if err != nil || len(logs) != 2 {
		t.Fatalf("expected barrier and update entries, got %d err %v", len(logs), err)
	}
	// Newest first: the general update entry follows the barrier entry
	if logs[0].Action != "update_tunnel" || logs[1].Action != "update_barrier" {
		t.Fatalf("unexpected actions: %q then %q", logs[1].Action, logs[0].Action)
	}

	barrier := logs[1]
	if barrier.Details["previousStatus"] != "Open" || barrier.Details["newStatus"] != "Closed" {
		t.Fatalf("barrier transition missing: %#v", barrier.Details)
	}
	if barrier.HardwareImpact == nil || barrier.HardwareImpact.ComponentName != "Barrier Motor" {
		t.Fatalf("expected barrier motor impact: %#v", barrier.HardwareImpact)
	}
	if barrier.EnvironmentData["riskLevel"] != tunnel.RiskLevel {
		t.Fatalf("environment snapshot missing: %#v", barrier.EnvironmentData)
	}
}

func TestTunnelUpdateWithoutBarrierChange(t *testing.T) {
	s := setupServer(t)
	operator := s.addUser(t, "operator", roles.Admin)
	tunnel := s.addTunnel(t, "TUN002")

	// Same barrier status: no barrier entry
	w := s.do(t, http.MethodPut, "/api/tunnels/"+tunnel.ID, map[string]any{
		"barrierStatus": "Open",
		"waterLevel":    60,
		"userId":        operator.ID,
	})
	requireStatus(t, w, http.StatusOK)

	logs, err := s.repo.ListLogsByEntity(context.Background(), tunnel.ID)
	if err != nil || len(logs) != 1 {
		t.Fatalf("expected only the update entry, got %d err %v", len(logs), err)
	}
	if logs[0].Action != "update_tunnel" {
		t.Fatalf("unexpected action %q", logs[0].Action)
	}
}

func TestTunnelUpdateAnonymousNotAudited(t *testing.T) {
	s := setupServer(t)
	tunnel := s.addTunnel(t, "TUN003")

	w := s.do(t, http.MethodPut, "/api/tunnels/"+tunnel.ID, map[string]any{
		"barrierStatus": "Closed",
	})
	requireStatus(t, w, http.StatusOK)

	logs, err := s.repo.ListLogsByEntity(context.Background(), tunnel.ID)
	if err != nil || len(logs) != 0 {
		t.Fatalf("anonymous update must not audit, got %d err %v", len(logs), err)
	}
}

func TestGuidanceDisplayToggle(t *testing.T) {
	s := setupServer(t)
	trafficOp := s.addUser(t, "trafficop", roles.Traffic)
	ministryOp := s.addUser(t, "ministryop", roles.Ministry)
	tunnel := s.addTunnel(t, "TUN004")

	w := s.do(t, http.MethodPut, "/api/tunnels/"+tunnel.ID+"/guidance-display", map[string]any{
		"enabled": true,
		"symbol":  "arrow-left",
		"userId":  trafficOp.ID,
	})
	requireStatus(t, w, http.StatusOK)
	updated := decodeBody[models.Tunnel](t, w)
	if !updated.GuidanceDisplayEnabled || updated.ActiveGuidanceSymbol != "arrow-left" {
		t.Fatalf("settings not applied: %#v", updated)
	}

	logs, err := s.repo.ListLogsByEntity(context.Background(), tunnel.ID)
	if err != nil || len(logs) != 1 {
		t.Fatalf("expected one audit entry, got %d err %v", len(logs), err)
	}
	entry := logs[0]
	if entry.Action != "activate_guidance_display" {
		t.Fatalf("unexpected action %q", entry.Action)
	}
	if entry.HardwareImpact == nil || entry.HardwareImpact.ComponentName != "Traffic Guidance Display" {
		t.Fatalf("expected display impact: %#v", entry.HardwareImpact)
	}

	// Ministry passes the handler but not the audit gate
	w = s.do(t, http.MethodPut, "/api/tunnels/"+tunnel.ID+"/guidance-display", map[string]any{
		"enabled": false,
		"userId":  ministryOp.ID,
	})
	requireStatus(t, w, http.StatusOK)
	disabled := decodeBody[models.Tunnel](t, w)
	if disabled.GuidanceDisplayEnabled || disabled.ActiveGuidanceSymbol != "none" {
		t.Fatalf("disable not applied: %#v", disabled)
	}

	logs, _ = s.repo.ListLogsByEntity(context.Background(), tunnel.ID)
	if len(logs) != 1 {
		t.Fatalf("ministry toggle must not audit, got %d entries", len(logs))
	}
}
