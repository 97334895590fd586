package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
)

const operationsLogColumns = `id, user_id, action, category, details, entity_id, timestamp, environment_data, hardware_impact, ip_address, user_agent`

func scanOperationsLog(row interface{ Scan(...any) error }) (*models.OperationsLog, error) {
	var l models.OperationsLog
	var ts int64
	var details, envData, impact, entityID, ip, agent sql.NullString
	if err := row.Scan(&l.ID, &l.UserID, &l.Action, &l.Category, &details, &entityID, &ts, &envData, &impact, &ip, &agent); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	l.Timestamp = msToTime(ts)
	if entityID.Valid {
		l.EntityID = &entityID.String
	}
	if ip.Valid {
		l.IPAddress = &ip.String
	}
	if agent.Valid {
		l.UserAgent = &agent.String
	}

	var err error
	if l.Details, err = unmarshalMap(nullableString(details)); err != nil {
		return nil, fmt.Errorf("decode log details: %w", err)
	}
	if l.EnvironmentData, err = unmarshalMap(nullableString(envData)); err != nil {
		return nil, fmt.Errorf("decode log environment data: %w", err)
	}
	if impact.Valid && impact.String != "" {
		var hi models.HardwareImpact
		if err := json.Unmarshal([]byte(impact.String), &hi); err != nil {
			return nil, fmt.Errorf("decode hardware impact: %w", err)
		}
		l.HardwareImpact = &hi
	}
	return &l, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

// AppendLog stores an audit entry with timestamp set to now. Entries are
// append-only; there is no update or delete.
func (r *SQLiteRepo) AppendLog(ctx context.Context, l *models.OperationsLog) (int64, error) {
	if l == nil {
		return 0, fmt.Errorf("operations log is nil")
	}
	ts := now()
	l.Timestamp = msToTime(ts)

	details, err := marshalJSON(l.Details)
	if err != nil {
		return 0, fmt.Errorf("encode log details: %w", err)
	}
	envData, err := marshalJSON(l.EnvironmentData)
	if err != nil {
		return 0, fmt.Errorf("encode log environment data: %w", err)
	}
	var impact *string
	if l.HardwareImpact != nil {
		if impact, err = marshalJSON(l.HardwareImpact); err != nil {
			return 0, fmt.Errorf("encode hardware impact: %w", err)
		}
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO operations_logs (user_id, action, category, details, entity_id, timestamp, environment_data, hardware_impact, ip_address, user_agent) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.UserID, l.Action, l.Category, details, l.EntityID, ts, envData, impact, l.IPAddress, l.UserAgent)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListLogs returns entries newest first, narrowed by the filter.
func (r *SQLiteRepo) ListLogs(ctx context.Context, filter models.LogFilter) ([]models.OperationsLog, error) {
	var where []string
	var args []any

	if filter.UserID != nil {
		where = append(where, `user_id = ?`)
		args = append(args, *filter.UserID)
	}
	if filter.Category != nil {
		where = append(where, `category = ?`)
		args = append(args, *filter.Category)
	}
	if filter.StartDate != nil {
		where = append(where, `timestamp >= ?`)
		args = append(args, filter.StartDate.UnixMilli())
	}
	if filter.EndDate != nil {
		where = append(where, `timestamp <= ?`)
		args = append(args, filter.EndDate.UnixMilli())
	}

	q := `SELECT ` + operationsLogColumns + ` FROM operations_logs`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY timestamp DESC, id DESC`
	if filter.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			q += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	} else if filter.Offset > 0 {
		q += ` LIMIT -1 OFFSET ?`
		args = append(args, filter.Offset)
	}

	return r.queryLogs(ctx, q, args...)
}

func (r *SQLiteRepo) ListLogsByEntity(ctx context.Context, entityID string) ([]models.OperationsLog, error) {
	return r.queryLogs(ctx, `SELECT `+operationsLogColumns+` FROM operations_logs WHERE entity_id = ? ORDER BY timestamp DESC, id DESC`, entityID)
}

func (r *SQLiteRepo) queryLogs(ctx context.Context, q string, args ...any) ([]models.OperationsLog, error) {
	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OperationsLog
	for rows.Next() {
		l, err := scanOperationsLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}
