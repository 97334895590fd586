package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
)

const tunnelColumns = `id, name, risk_level, water_level, barrier_status, last_update, guidance_display_enabled, active_guidance_symbol, map_embed_html`

func scanTunnel(row interface{ Scan(...any) error }) (*models.Tunnel, error) {
	var t models.Tunnel
	var lastUpdate int64
	var enabled int
	var mapEmbed sql.NullString
	if err := row.Scan(&t.ID, &t.Name, &t.RiskLevel, &t.WaterLevel, &t.BarrierStatus, &lastUpdate, &enabled, &t.ActiveGuidanceSymbol, &mapEmbed); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.LastUpdate = msToTime(lastUpdate)
	t.GuidanceDisplayEnabled = enabled != 0
	if mapEmbed.Valid {
		t.MapEmbedHTML = &mapEmbed.String
	}
	return &t, nil
}

func (r *SQLiteRepo) CreateTunnel(ctx context.Context, t *models.Tunnel) error {
	if t == nil {
		return fmt.Errorf("tunnel is nil")
	}
	if t.ActiveGuidanceSymbol == "" {
		t.ActiveGuidanceSymbol = "none"
	}
	t.LastUpdate = msToTime(now())

	enabled := 0
	if t.GuidanceDisplayEnabled {
		enabled = 1
	}
	_, err := r.conn.Exec(ctx,
		`INSERT INTO tunnels (id, name, risk_level, water_level, barrier_status, last_update, guidance_display_enabled, active_guidance_symbol, map_embed_html) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.RiskLevel, t.WaterLevel, t.BarrierStatus, t.LastUpdate.UnixMilli(), enabled, t.ActiveGuidanceSymbol, t.MapEmbedHTML)
	return err
}

func (r *SQLiteRepo) GetTunnel(ctx context.Context, id string) (*models.Tunnel, error) {
	return scanTunnel(r.conn.QueryRow(ctx, `SELECT `+tunnelColumns+` FROM tunnels WHERE id = ?`, id))
}

// UpdateTunnel merges the patch into the stored row and refreshes last_update.
func (r *SQLiteRepo) UpdateTunnel(ctx context.Context, id string, patch models.TunnelPatch) (*models.Tunnel, error) {
	sets := []string{"last_update = ?"}
	args := []any{now()}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.RiskLevel != nil {
		add("risk_level", *patch.RiskLevel)
	}
	if patch.WaterLevel != nil {
		add("water_level", *patch.WaterLevel)
	}
	if patch.BarrierStatus != nil {
		add("barrier_status", *patch.BarrierStatus)
	}
	if patch.GuidanceDisplayEnabled != nil {
		enabled := 0
		if *patch.GuidanceDisplayEnabled {
			enabled = 1
		}
		add("guidance_display_enabled", enabled)
	}
	if patch.ActiveGuidanceSymbol != nil {
		add("active_guidance_symbol", *patch.ActiveGuidanceSymbol)
	}
	if patch.MapEmbedHTML != nil {
		add("map_embed_html", *patch.MapEmbedHTML)
	}

	args = append(args, id)
	if _, err := r.conn.Exec(ctx, `UPDATE tunnels SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return nil, err
	}
	return r.GetTunnel(ctx, id)
}

func (r *SQLiteRepo) DeleteTunnel(ctx context.Context, id string) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM tunnels WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteRepo) ListTunnels(ctx context.Context) ([]models.Tunnel, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+tunnelColumns+` FROM tunnels ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Tunnel
	for rows.Next() {
		t, err := scanTunnel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
