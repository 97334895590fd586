package workflow_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/audit"
	dbpkg "github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/db"
	sqlite "github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/repository/sqlite"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/internal/workflow"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/roles"
)

type fixture struct {
	repo      *sqlite.SQLiteRepo
	service   *workflow.Service
	requester *models.User
	reviewer  *models.User
	citizen   *models.User
	tunnel    *models.Tunnel
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo := sqlite.New(d, nil)
	recorder := audit.NewRecorder(repo, repo, nil)
	service := workflow.NewService(repo, repo, repo, recorder, nil)

	f := &fixture{repo: repo, service: service}
	f.requester = mustCreateUser(t, repo, "requester", roles.Public)
	f.reviewer = mustCreateUser(t, repo, "reviewer", roles.Ministry)
	f.citizen = mustCreateUser(t, repo, "citizen", roles.Public)

	f.tunnel = &models.Tunnel{
		ID:            "TUN001",
		Name:          "Al Fateh Tunnel",
		RiskLevel:     models.RiskHigh,
		WaterLevel:    78,
		BarrierStatus: models.BarrierOpen,
	}
	if err := repo.CreateTunnel(ctx, f.tunnel); err != nil {
		t.Fatalf("failed to create tunnel: %v", err)
	}
	return f
}

func mustCreateUser(t *testing.T, repo *sqlite.SQLiteRepo, username string, role roles.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		FullName: "Test " + username,
		Email:    username + "@example.com",
		Password: "secret",
		Role:     role,
	}
	id, err := repo.CreateUser(context.Background(), u)
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	u.ID = id
	return u
}

func (f *fixture) file(t *testing.T) *models.ClosureRequest {
	t.Helper()
	cr, err := f.service.RequestClosure(context.Background(), f.tunnel.ID, f.requester.ID, "water rising fast")
	if err != nil {
		t.Fatalf("RequestClosure: %v", err)
	}
	return cr
}

func TestRequestClosure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cr := f.file(t)
	if cr.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := f.service.Get(ctx, cr.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.ClosurePending {
		t.Fatalf("expected pending, got %q", got.Status)
	}

	// Unknown tunnel and unknown requester both fail with NotFound
	if _, err := f.service.RequestClosure(ctx, "TUN999", f.requester.ID, "x"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected NotFound for unknown tunnel, got %v", err)
	}
	if _, err := f.service.RequestClosure(ctx, f.tunnel.ID, 9999, "x"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected NotFound for unknown requester, got %v", err)
	}
	pending, err := f.service.ListPending(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("failed requests must not create rows: got %d err %v", len(pending), err)
	}
}

func TestApprovalClosesBarrierAndAudits(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cr := f.file(t)

	reviewed, err := f.service.Review(ctx, cr.ID, models.ClosureApproved, f.reviewer.ID, "verified flooding on site", audit.RequestMeta{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if reviewed.Status != models.ClosureApproved {
		t.Fatalf("expected approved, got %q", reviewed.Status)
	}
	if reviewed.ReviewedByID == nil || *reviewed.ReviewedByID != f.reviewer.ID {
		t.Fatalf("reviewer not recorded: %#v", reviewed)
	}
	if reviewed.ReviewNotes == nil || *reviewed.ReviewNotes != "verified flooding on site" {
		t.Fatalf("notes not recorded: %#v", reviewed)
	}

	tunnel, err := f.repo.GetTunnel(ctx, f.tunnel.ID)
	if err != nil || tunnel == nil {
		t.Fatalf("GetTunnel: got %v, err %v", tunnel, err)
	}
	if tunnel.BarrierStatus != models.BarrierClosed {
		t.Fatalf("approval must close the barrier, got %q", tunnel.BarrierStatus)
	}

	logs, err := f.repo.ListLogsByEntity(ctx, f.tunnel.ID)
	if err != nil || len(logs) != 1 {
		t.Fatalf("expected one audit entry, got %d err %v", len(logs), err)
	}
	entry := logs[0]
	if entry.Action != workflow.ActionApproveClosure || entry.Category != workflow.CategoryClosure {
		t.Fatalf("unexpected audit tags: %q %q", entry.Action, entry.Category)
	}
	if entry.UserID != f.reviewer.ID {
		t.Fatalf("audit actor should be the reviewer, got %d", entry.UserID)
	}
	if entry.Details["reviewNotes"] != "verified flooding on site" {
		t.Fatalf("review notes missing from details: %#v", entry.Details)
	}
	if entry.EnvironmentData["riskLevel"] != models.RiskHigh {
		t.Fatalf("environment snapshot missing: %#v", entry.EnvironmentData)
	}
	if entry.IPAddress == nil || *entry.IPAddress != "10.0.0.1" {
		t.Fatalf("request meta not captured: %#v", entry.IPAddress)
	}
}

func TestRejectionLeavesBarrierOpen(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cr := f.file(t)

	reviewed, err := f.service.Review(ctx, cr.ID, models.ClosureRejected, f.reviewer.ID, "no flooding observed", audit.RequestMeta{})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if reviewed.Status != models.ClosureRejected {
		t.Fatalf("expected rejected, got %q", reviewed.Status)
	}

	tunnel, _ := f.repo.GetTunnel(ctx, f.tunnel.ID)
	if tunnel.BarrierStatus != models.BarrierOpen {
		t.Fatalf("rejection must not touch the barrier, got %q", tunnel.BarrierStatus)
	}

	logs, err := f.repo.ListLogsByEntity(ctx, f.tunnel.ID)
	if err != nil || len(logs) != 1 {
		t.Fatalf("expected one audit entry, got %d err %v", len(logs), err)
	}
	if logs[0].Action != workflow.ActionRejectClosure {
		t.Fatalf("expected reject action, got %q", logs[0].Action)
	}
}

func TestReviewPermissionDenied(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cr := f.file(t)

	_, err := f.service.Review(ctx, cr.ID, models.ClosureApproved, f.citizen.ID, "approving my own request", audit.RequestMeta{})
	if !errors.Is(err, models.ErrPermissionDenied) {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}

	// Nothing moved
	got, _ := f.service.Get(ctx, cr.ID)
	if got.Status != models.ClosurePending {
		t.Fatalf("denied review must leave the request pending, got %q", got.Status)
	}
	tunnel, _ := f.repo.GetTunnel(ctx, f.tunnel.ID)
	if tunnel.BarrierStatus != models.BarrierOpen {
		t.Fatalf("denied review must not touch the barrier")
	}
}

func TestReviewValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cr := f.file(t)

	if _, err := f.service.Review(ctx, cr.ID, "maybe", f.reviewer.ID, "notes", audit.RequestMeta{}); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for bad decision, got %v", err)
	}
	if _, err := f.service.Review(ctx, cr.ID, models.ClosureApproved, f.reviewer.ID, "   ", audit.RequestMeta{}); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for blank notes, got %v", err)
	}
	if _, err := f.service.Review(ctx, 9999, models.ClosureApproved, f.reviewer.ID, "notes", audit.RequestMeta{}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected NotFound for unknown request, got %v", err)
	}
	if _, err := f.service.Review(ctx, cr.ID, models.ClosureApproved, 9999, "notes", audit.RequestMeta{}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected NotFound for unknown reviewer, got %v", err)
	}
}

func TestReviewIsFinal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cr := f.file(t)

	if _, err := f.service.Review(ctx, cr.ID, models.ClosureRejected, f.reviewer.ID, "not warranted", audit.RequestMeta{}); err != nil {
		t.Fatalf("Review: %v", err)
	}

	_, err := f.service.Review(ctx, cr.ID, models.ClosureApproved, f.reviewer.ID, "changed my mind", audit.RequestMeta{})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for second review, got %v", err)
	}

	got, _ := f.service.Get(ctx, cr.ID)
	if got.Status != models.ClosureRejected {
		t.Fatalf("second review must not change the outcome, got %q", got.Status)
	}
	logs, _ := f.repo.ListLogsByEntity(ctx, f.tunnel.ID)
	if len(logs) != 1 {
		t.Fatalf("second review must not append audit entries, got %d", len(logs))
	}
}

func TestApprovalIdempotentOnClosedBarrier(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	closed := models.BarrierClosed
	if _, err := f.repo.UpdateTunnel(ctx, f.tunnel.ID, models.TunnelPatch{BarrierStatus: &closed}); err != nil {
		t.Fatalf("UpdateTunnel: %v", err)
	}

	cr := f.file(t)
	if _, err := f.service.Review(ctx, cr.ID, models.ClosureApproved, f.reviewer.ID, "still flooded", audit.RequestMeta{}); err != nil {
		t.Fatalf("Review against closed barrier: %v", err)
	}

	tunnel, _ := f.repo.GetTunnel(ctx, f.tunnel.ID)
	if tunnel.BarrierStatus != models.BarrierClosed {
		t.Fatalf("barrier should stay closed, got %q", tunnel.BarrierStatus)
	}
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cr := f.file(t)

	if err := f.service.Delete(ctx, cr.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.service.Delete(ctx, cr.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected NotFound on second delete, got %v", err)
	}
	if _, err := f.service.Get(ctx, cr.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}
