package db

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	username string
	fullName string
	email    string
	phone    string
	password string
	role     string
}

type seedTunnel struct {
	id            string
	name          string
	riskLevel     string
	waterLevel    int
	barrierStatus string
}

var seedUsers = []seedUser{
	{"admin", "System Administrator", "admin@tunnelguard.com", "+973 3312 4567", "Admin123", "admin"},
	{"ministry", "Sara Ali", "sara@tunnelguard.com", "+973 3398 7654", "ministry123", "ministry"},
	{"traffic", "Ahmed Hassan", "ahmed@tunnelguard.com", "+973 3345 8901", "traffic123", "traffic"},
	{"public", "John Public", "public@example.com", "+973 1234 5678", "public123", "public"},
}

var seedTunnels = []seedTunnel{
	{"TUN001", "Al Fateh Tunnel", "High", 78, "Closed"},
	{"TUN002", "Diplomatic Area Tunnel", "Moderate", 45, "Open"},
	{"TUN003", "Tubli Bay Tunnel", "Moderate", 52, "Open"},
	{"TUN004", "King Faisal Highway Tunnel", "High", 85, "Closed"},
	{"TUN005", "Muharraq Island Tunnel", "Moderate", 48, "Open"},
	{"TUN006", "Sitra Island Tunnel", "Low", 15, "Open"},
	{"TUN007", "Buri Village Tunnel", "Low", 12, "Open"},
}

var seedSensorTypes = []string{"temperature", "humidity", "entrance", "center", "exit", "waterLevel", "airQuality"}

// Seed inserts the fixture users, tunnels and sensors. Inserts are keyed on
// unique columns so rerunning against a seeded database is a no-op.
func (d *DB) Seed(ctx context.Context) error {
	now := time.Now().UTC().UnixMilli()

	for _, u := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password for %s: %w", u.username, err)
		}
		if _, err := d.Exec(ctx,
			`INSERT OR IGNORE INTO users (username, full_name, email, phone, password, role, status) VALUES (?, ?, ?, ?, ?, ?, 'active')`,
			u.username, u.fullName, u.email, u.phone, string(hash), u.role); err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
	}

	for _, t := range seedTunnels {
		if _, err := d.Exec(ctx,
			`INSERT OR IGNORE INTO tunnels (id, name, risk_level, water_level, barrier_status, last_update, guidance_display_enabled, active_guidance_symbol) VALUES (?, ?, ?, ?, ?, ?, 0, 'none')`,
			t.id, t.name, t.riskLevel, t.waterLevel, t.barrierStatus, now); err != nil {
			return fmt.Errorf("seed tunnel %s: %w", t.id, err)
		}

		var sensorCount int
		if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM sensors WHERE tunnel_id = ?`, t.id).Scan(&sensorCount); err != nil {
			return fmt.Errorf("count sensors for %s: %w", t.id, err)
		}
		if sensorCount > 0 {
			continue
		}

		values := []int{28, 72, 65, 85, 55, t.waterLevel, 65}
		for i, typ := range seedSensorTypes {
			status := sensorStatusFor(typ, t.riskLevel)
			nextMaintenance := now + int64(30+i*7)*24*int64(time.Hour/time.Millisecond)
			if _, err := d.Exec(ctx,
				`INSERT INTO sensors (tunnel_id, type, value, unit, status, last_calibrated, next_maintenance) VALUES (?, ?, ?, 'mm', ?, ?, ?)`,
				t.id, typ, values[i], status, now, nextMaintenance); err != nil {
				return fmt.Errorf("seed sensor %s/%s: %w", t.id, typ, err)
			}
		}
	}

	return nil
}

func sensorStatusFor(sensorType, riskLevel string) string {
	if sensorType != "waterLevel" {
		if sensorType == "center" {
			return "Critical"
		}
		if sensorType == "airQuality" {
			return "Normal"
		}
		return "Warning"
	}
	switch riskLevel {
	case "High":
		return "Critical"
	case "Moderate":
		return "Warning"
	default:
		return "Normal"
	}
}
