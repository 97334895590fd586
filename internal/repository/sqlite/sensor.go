package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
)

const sensorColumns = `id, tunnel_id, type, value, unit, status, last_calibrated, next_maintenance, alert_threshold, description`

func scanSensor(row interface{ Scan(...any) error }) (*models.Sensor, error) {
	var s models.Sensor
	var calibrated, maintenance int64
	var threshold sql.NullInt64
	var description sql.NullString
	if err := row.Scan(&s.ID, &s.TunnelID, &s.Type, &s.Value, &s.Unit, &s.Status, &calibrated, &maintenance, &threshold, &description); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.LastCalibrated = msToTime(calibrated)
	s.NextMaintenance = msToTime(maintenance)
	if threshold.Valid {
		v := int(threshold.Int64)
		s.AlertThreshold = &v
	}
	if description.Valid {
		s.Description = &description.String
	}
	return &s, nil
}

func (r *SQLiteRepo) CreateSensor(ctx context.Context, s *models.Sensor) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("sensor is nil")
	}
	if s.Unit == "" {
		s.Unit = "mm"
	}
	if s.LastCalibrated.IsZero() {
		s.LastCalibrated = msToTime(now())
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO sensors (tunnel_id, type, value, unit, status, last_calibrated, next_maintenance, alert_threshold, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.TunnelID, s.Type, s.Value, s.Unit, s.Status, s.LastCalibrated.UnixMilli(), s.NextMaintenance.UnixMilli(), s.AlertThreshold, s.Description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetSensor(ctx context.Context, id int64) (*models.Sensor, error) {
	return scanSensor(r.conn.QueryRow(ctx, `SELECT `+sensorColumns+` FROM sensors WHERE id = ?`, id))
}

func (r *SQLiteRepo) UpdateSensor(ctx context.Context, id int64, patch models.SensorPatch) (*models.Sensor, error) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.Value != nil {
		add("value", *patch.Value)
	}
	if patch.Unit != nil {
		add("unit", *patch.Unit)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.LastCalibrated != nil {
		add("last_calibrated", patch.LastCalibrated.UnixMilli())
	}
	if patch.NextMaintenance != nil {
		add("next_maintenance", patch.NextMaintenance.UnixMilli())
	}
	if patch.AlertThreshold != nil {
		add("alert_threshold", *patch.AlertThreshold)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}

	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.conn.Exec(ctx, `UPDATE sensors SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
			return nil, err
		}
	}
	return r.GetSensor(ctx, id)
}

func (r *SQLiteRepo) DeleteSensor(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM sensors WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteRepo) ListSensorsByTunnel(ctx context.Context, tunnelID string) ([]models.Sensor, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+sensorColumns+` FROM sensors WHERE tunnel_id = ? ORDER BY id`, tunnelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Sensor
	for rows.Next() {
		s, err := scanSensor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
