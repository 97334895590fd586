package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
)

const closureRequestColumns = `id, tunnel_id, requested_by_id, message, status, created_at, updated_at, reviewed_by_id, review_notes`

func scanClosureRequest(row interface{ Scan(...any) error }) (*models.ClosureRequest, error) {
	var cr models.ClosureRequest
	var createdAt, updatedAt int64
	var reviewedBy sql.NullInt64
	var notes sql.NullString
	if err := row.Scan(&cr.ID, &cr.TunnelID, &cr.RequestedByID, &cr.Message, &cr.Status, &createdAt, &updatedAt, &reviewedBy, &notes); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	cr.CreatedAt = msToTime(createdAt)
	cr.UpdatedAt = msToTime(updatedAt)
	if reviewedBy.Valid {
		cr.ReviewedByID = &reviewedBy.Int64
	}
	if notes.Valid {
		cr.ReviewNotes = &notes.String
	}
	return &cr, nil
}

// CreateClosureRequest stores a new request in the pending state with both
// timestamps set to now and no reviewer.
func (r *SQLiteRepo) CreateClosureRequest(ctx context.Context, cr *models.ClosureRequest) (int64, error) {
	if cr == nil {
		return 0, fmt.Errorf("closure request is nil")
	}
	ts := now()
	cr.Status = models.ClosurePending
	cr.CreatedAt = msToTime(ts)
	cr.UpdatedAt = cr.CreatedAt
	cr.ReviewedByID = nil
	cr.ReviewNotes = nil

	res, err := r.conn.Exec(ctx,
		`INSERT INTO closure_requests (tunnel_id, requested_by_id, message, status, created_at, updated_at, reviewed_by_id, review_notes) VALUES (?, ?, ?, 'pending', ?, ?, NULL, NULL)`,
		cr.TunnelID, cr.RequestedByID, cr.Message, ts, ts)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetClosureRequest(ctx context.Context, id int64) (*models.ClosureRequest, error) {
	return scanClosureRequest(r.conn.QueryRow(ctx, `SELECT `+closureRequestColumns+` FROM closure_requests WHERE id = ?`, id))
}

// UpdateClosureRequest merges the patch into the stored row and refreshes
// updated_at.
func (r *SQLiteRepo) UpdateClosureRequest(ctx context.Context, id int64, patch models.ClosureRequestPatch) (*models.ClosureRequest, error) {
	sets := []string{"updated_at = ?"}
	args := []any{now()}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.ReviewedByID != nil {
		add("reviewed_by_id", *patch.ReviewedByID)
	}
	if patch.ReviewNotes != nil {
		add("review_notes", *patch.ReviewNotes)
	}
	if patch.Message != nil {
		add("message", *patch.Message)
	}

	args = append(args, id)
	if _, err := r.conn.Exec(ctx, `UPDATE closure_requests SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return nil, err
	}
	return r.GetClosureRequest(ctx, id)
}

func (r *SQLiteRepo) DeleteClosureRequest(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM closure_requests WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteRepo) listClosureRequests(ctx context.Context, where string, args ...any) ([]models.ClosureRequest, error) {
	q := `SELECT ` + closureRequestColumns + ` FROM closure_requests`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY id`

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ClosureRequest
	for rows.Next() {
		cr, err := scanClosureRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cr)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) ListClosureRequests(ctx context.Context) ([]models.ClosureRequest, error) {
	return r.listClosureRequests(ctx, "")
}

func (r *SQLiteRepo) ListPendingClosureRequests(ctx context.Context) ([]models.ClosureRequest, error) {
	return r.listClosureRequests(ctx, `status = 'pending'`)
}

func (r *SQLiteRepo) ListClosureRequestsByTunnel(ctx context.Context, tunnelID string) ([]models.ClosureRequest, error) {
	return r.listClosureRequests(ctx, `tunnel_id = ?`, tunnelID)
}

func (r *SQLiteRepo) ListClosureRequestsByRequester(ctx context.Context, userID int64) ([]models.ClosureRequest, error) {
	return r.listClosureRequests(ctx, `requested_by_id = ?`, userID)
}
