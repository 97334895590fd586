// Package audit appends operations-log entries for permission-gated
// mutations and derives their hardware-impact payloads.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/repository"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/roles"
)

// RequestMeta is the caller context captured alongside an audit entry.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Entry describes one auditable action. RequiredRoles is the role set the
// actor must meet for the entry to be recorded at all.
type Entry struct {
	ActorID         int64
	Action          string
	Category        string
	Details         map[string]any
	EntityID        string
	EnvironmentData map[string]any
	HardwareImpact  *models.HardwareImpact
	RequiredRoles   []roles.Role
	Meta            RequestMeta
}

// Recorder writes audit entries. The actor's role is re-checked at write
// time, independently of any gate the HTTP layer applied: actions by actors
// below the required roles are skipped, not errors.
type Recorder struct {
	users  repository.UserRepo
	logs   repository.OperationsLogRepo
	logger *slog.Logger
}

func NewRecorder(users repository.UserRepo, logs repository.OperationsLogRepo, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{users: users, logs: logs, logger: logger}
}

// Record appends an operations-log entry for the action, provided the actor
// exists and meets the entry's required roles. A skipped entry is not an
// error; a storage failure is.
func (r *Recorder) Record(ctx context.Context, e Entry) error {
	required := e.RequiredRoles
	if len(required) == 0 {
		required = roles.ReviewerRoles
	}

	actor, err := r.users.GetUser(ctx, e.ActorID)
	if err != nil {
		return fmt.Errorf("look up audit actor %d: %w", e.ActorID, err)
	}
	if actor == nil || !roles.HasAnyPermission(actor.Role, required) {
		r.logger.Debug("audit entry skipped",
			slog.Int64("actor_id", e.ActorID),
			slog.String("action", e.Action),
		)
		return nil
	}

	log := &models.OperationsLog{
		UserID:          e.ActorID,
		Action:          e.Action,
		Category:        e.Category,
		Details:         e.Details,
		EnvironmentData: e.EnvironmentData,
		HardwareImpact:  e.HardwareImpact,
	}
	if e.EntityID != "" {
		log.EntityID = &e.EntityID
	}
	if e.Meta.IPAddress != "" {
		log.IPAddress = &e.Meta.IPAddress
	}
	if e.Meta.UserAgent != "" {
		log.UserAgent = &e.Meta.UserAgent
	}

	if _, err := r.logs.AppendLog(ctx, log); err != nil {
		return fmt.Errorf("append audit entry %s: %w", e.Action, err)
	}
	return nil
}
