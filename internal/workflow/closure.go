// Package workflow implements the tunnel closure-request state machine:
// pending requests created by any registered user, reviewed by staff, with
// the tunnel barrier forced closed as a side effect of approval.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/audit"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/repository"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/roles"
)

// Audit action tags recorded by the review step.
const (
	ActionApproveClosure = "approve_closure"
	ActionRejectClosure  = "reject_closure"
	CategoryClosure      = "closure_request"
)

// Service runs the closure-request workflow over the entity store. The
// review step is a best-effort ordered sequence, not a transaction: the
// status write must succeed before the barrier and audit writes are
// attempted, and a failure between them leaves the earlier writes in place.
type Service struct {
	users    repository.UserRepo
	tunnels  repository.TunnelRepo
	requests repository.ClosureRequestRepo
	recorder *audit.Recorder
	logger   *slog.Logger
}

func NewService(
	users repository.UserRepo,
	tunnels repository.TunnelRepo,
	requests repository.ClosureRequestRepo,
	recorder *audit.Recorder,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, tunnels: tunnels, requests: requests, recorder: recorder, logger: logger}
}

// RequestClosure files a new closure request for a tunnel. Any registered
// user may file one; the tunnel and the requester must exist.
func (s *Service) RequestClosure(ctx context.Context, tunnelID string, requestedByID int64, message string) (*models.ClosureRequest, error) {
	tunnel, err := s.tunnels.GetTunnel(ctx, tunnelID)
	if err != nil {
		return nil, fmt.Errorf("look up tunnel %q: %w", tunnelID, err)
	}
	if tunnel == nil {
		return nil, fmt.Errorf("tunnel %q: %w", tunnelID, models.ErrNotFound)
	}

	user, err := s.users.GetUser(ctx, requestedByID)
	if err != nil {
		return nil, fmt.Errorf("look up user %d: %w", requestedByID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", requestedByID, models.ErrNotFound)
	}

	cr := &models.ClosureRequest{
		TunnelID:      tunnelID,
		RequestedByID: requestedByID,
		Message:       message,
	}
	id, err := s.requests.CreateClosureRequest(ctx, cr)
	if err != nil {
		return nil, fmt.Errorf("create closure request: %w", err)
	}
	cr.ID = id

	s.logger.Info("closure request filed",
		slog.Int64("request_id", id),
		slog.String("tunnel_id", tunnelID),
		slog.Int64("requested_by", requestedByID),
	)
	return cr, nil
}

// Review applies a reviewer's decision to a pending request. On approval the
// tunnel's barrier is forced closed (idempotent if already closed) and an
// audit entry is appended; rejection only records the decision.
func (s *Service) Review(ctx context.Context, requestID int64, decision string, reviewerID int64, reviewNotes string, meta audit.RequestMeta) (*models.ClosureRequest, error) {
	if decision != models.ClosureApproved && decision != models.ClosureRejected {
		return nil, fmt.Errorf("decision %q: %w", decision, models.ErrInvalidInput)
	}

	request, err := s.requests.GetClosureRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("look up closure request %d: %w", requestID, err)
	}
	if request == nil {
		return nil, fmt.Errorf("closure request %d: %w", requestID, models.ErrNotFound)
	}
	if request.Status != models.ClosurePending {
		return nil, fmt.Errorf("closure request %d already %s: %w", requestID, request.Status, models.ErrInvalidInput)
	}
	if strings.TrimSpace(reviewNotes) == "" {
		return nil, fmt.Errorf("review notes required: %w", models.ErrInvalidInput)
	}

	reviewer, err := s.users.GetUser(ctx, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("look up reviewer %d: %w", reviewerID, err)
	}
	if reviewer == nil {
		return nil, fmt.Errorf("reviewer %d: %w", reviewerID, models.ErrNotFound)
	}
	if !roles.HasAnyPermission(reviewer.Role, roles.ReviewerRoles) {
		return nil, fmt.Errorf("role %q may not review closure requests: %w", reviewer.Role, models.ErrPermissionDenied)
	}

	tunnel, err := s.tunnels.GetTunnel(ctx, request.TunnelID)
	if err != nil {
		return nil, fmt.Errorf("look up tunnel %q: %w", request.TunnelID, err)
	}
	if tunnel == nil {
		return nil, fmt.Errorf("tunnel %q: %w", request.TunnelID, models.ErrNotFound)
	}

	updated, err := s.requests.UpdateClosureRequest(ctx, requestID, models.ClosureRequestPatch{
		Status:       &decision,
		ReviewedByID: &reviewerID,
		ReviewNotes:  &reviewNotes,
	})
	if err != nil {
		return nil, fmt.Errorf("persist review decision: %w", err)
	}

	// Side effects run only after the decision is persisted. There is no
	// transaction around them; each is committed independently.
	action := ActionRejectClosure
	if decision == models.ClosureApproved {
		action = ActionApproveClosure
		closed := models.BarrierClosed
		if _, err := s.tunnels.UpdateTunnel(ctx, tunnel.ID, models.TunnelPatch{BarrierStatus: &closed}); err != nil {
			return nil, fmt.Errorf("close tunnel barrier: %w", err)
		}
	}

	if err := s.recorder.Record(ctx, audit.Entry{
		ActorID:  reviewerID,
		Action:   action,
		Category: CategoryClosure,
		EntityID: tunnel.ID,
		Details: map[string]any{
			"requestId":   requestID,
			"tunnelId":    tunnel.ID,
			"tunnelName":  tunnel.Name,
			"requestedBy": request.RequestedByID,
			"reviewNotes": reviewNotes,
		},
		EnvironmentData: map[string]any{
			"waterLevel": tunnel.WaterLevel,
			"riskLevel":  tunnel.RiskLevel,
		},
		RequiredRoles: roles.ReviewerRoles,
		Meta:          meta,
	}); err != nil {
		return nil, fmt.Errorf("record review audit entry: %w", err)
	}

	s.logger.Info("closure request reviewed",
		slog.Int64("request_id", requestID),
		slog.String("decision", decision),
		slog.Int64("reviewer_id", reviewerID),
	)
	return updated, nil
}

// Get returns one request by id, or a NotFound error.
func (s *Service) Get(ctx context.Context, id int64) (*models.ClosureRequest, error) {
	cr, err := s.requests.GetClosureRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if cr == nil {
		return nil, fmt.Errorf("closure request %d: %w", id, models.ErrNotFound)
	}
	return cr, nil
}

func (s *Service) ListAll(ctx context.Context) ([]models.ClosureRequest, error) {
	return s.requests.ListClosureRequests(ctx)
}

func (s *Service) ListPending(ctx context.Context) ([]models.ClosureRequest, error) {
	return s.requests.ListPendingClosureRequests(ctx)
}

func (s *Service) ListByTunnel(ctx context.Context, tunnelID string) ([]models.ClosureRequest, error) {
	return s.requests.ListClosureRequestsByTunnel(ctx, tunnelID)
}

func (s *Service) ListByRequester(ctx context.Context, userID int64) ([]models.ClosureRequest, error) {
	return s.requests.ListClosureRequestsByRequester(ctx, userID)
}

// Delete removes a request. The workflow itself never calls this; it exists
// for the administrative endpoint.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.requests.DeleteClosureRequest(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("closure request %d: %w", id, models.ErrNotFound)
	}
	return nil
}
