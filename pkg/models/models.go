package models

// Domain models matching the database schema in internal/db/migrations/0001_init.sql

import (
	"time"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/roles"
)

// User statuses.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// Tunnel risk levels.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
)

// Tunnel barrier states.
const (
	BarrierOpen   = "Open"
	BarrierClosed = "Closed"
)

// Closure request states.
const (
	ClosurePending  = "pending"
	ClosureApproved = "approved"
	ClosureRejected = "rejected"
)

type User struct {
	ID       int64      `json:"id" db:"id"`
	Username string     `json:"username" db:"username"`
	FullName string     `json:"fullName" db:"full_name"`
	Email    string     `json:"email" db:"email"`
	Phone    string     `json:"phone" db:"phone"`
	Password string     `json:"-" db:"password"`
	Role     roles.Role `json:"role" db:"role"`
	Status   string     `json:"status" db:"status"`
}

type Tunnel struct {
	ID                     string    `json:"id" db:"id"`
	Name                   string    `json:"name" db:"name"`
	RiskLevel              string    `json:"riskLevel" db:"risk_level"`
	WaterLevel             int       `json:"waterLevel" db:"water_level"`
	BarrierStatus          string    `json:"barrierStatus" db:"barrier_status"`
	LastUpdate             time.Time `json:"lastUpdate" db:"last_update"`
	GuidanceDisplayEnabled bool      `json:"guidanceDisplayEnabled" db:"guidance_display_enabled"`
	ActiveGuidanceSymbol   string    `json:"activeGuidanceSymbol" db:"active_guidance_symbol"`
	MapEmbedHTML           *string   `json:"mapEmbedHtml,omitempty" db:"map_embed_html"`
}

type Sensor struct {
	ID              int64     `json:"id" db:"id"`
	TunnelID        string    `json:"tunnelId" db:"tunnel_id"`
	Type            string    `json:"type" db:"type"`
	Value           int       `json:"value" db:"value"`
	Unit            string    `json:"unit" db:"unit"`
	Status          string    `json:"status" db:"status"`
	LastCalibrated  time.Time `json:"lastCalibrated" db:"last_calibrated"`
	NextMaintenance time.Time `json:"nextMaintenance" db:"next_maintenance"`
	AlertThreshold  *int      `json:"alertThreshold,omitempty" db:"alert_threshold"`
	Description     *string   `json:"description,omitempty" db:"description"`
}

type ClosureRequest struct {
	ID            int64     `json:"id" db:"id"`
	TunnelID      string    `json:"tunnelId" db:"tunnel_id"`
	RequestedByID int64     `json:"requestedById" db:"requested_by_id"`
	Message       string    `json:"message" db:"message"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
	ReviewedByID  *int64    `json:"reviewedById" db:"reviewed_by_id"`
	ReviewNotes   *string   `json:"reviewNotes" db:"review_notes"`
}

type OperationsLog struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"userId" db:"user_id"`
	Action          string          `json:"action" db:"action"`
	Category        string          `json:"category" db:"category"`
	Details         map[string]any  `json:"details,omitempty" db:"details"`
	EntityID        *string         `json:"entityId" db:"entity_id"`
	Timestamp       time.Time       `json:"timestamp" db:"timestamp"`
	EnvironmentData map[string]any  `json:"environmentData,omitempty" db:"environment_data"`
	HardwareImpact  *HardwareImpact `json:"hardwareImpact,omitempty" db:"hardware_impact"`
	IPAddress       *string         `json:"ipAddress" db:"ip_address"`
	UserAgent       *string         `json:"userAgent" db:"user_agent"`
}

// HardwareImpact estimates the wear and maintenance implications of a logged
// action. It is embedded in an operations-log entry, never stored on its own.
type HardwareImpact struct {
	DeviceID                  string    `json:"deviceId"`
	ComponentName             string    `json:"componentName"`
	ImpactLevel               string    `json:"impactLevel"`
	WearPercentage            int       `json:"wearPercentage"`
	EstimatedLifespan         string    `json:"estimatedLifespan"`
	MaintenanceRecommendation string    `json:"maintenanceRecommendation"`
	LastMaintenance           time.Time `json:"lastMaintenance"`
	NextScheduledMaintenance  time.Time `json:"nextScheduledMaintenance"`
	OperationCount            int       `json:"operationCount"`
}

// UserPatch is a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Username *string     `json:"username,omitempty"`
	FullName *string     `json:"fullName,omitempty"`
	Email    *string     `json:"email,omitempty"`
	Phone    *string     `json:"phone,omitempty"`
	Password *string     `json:"password,omitempty"`
	Role     *roles.Role `json:"role,omitempty"`
	Status   *string     `json:"status,omitempty"`
}

// TunnelPatch is a partial tunnel update. Nil fields are left untouched.
type TunnelPatch struct {
	Name                   *string `json:"name,omitempty"`
	RiskLevel              *string `json:"riskLevel,omitempty"`
	WaterLevel             *int    `json:"waterLevel,omitempty"`
	BarrierStatus          *string `json:"barrierStatus,omitempty"`
	GuidanceDisplayEnabled *bool   `json:"guidanceDisplayEnabled,omitempty"`
	ActiveGuidanceSymbol   *string `json:"activeGuidanceSymbol,omitempty"`
	MapEmbedHTML           *string `json:"mapEmbedHtml,omitempty"`
}

// SensorPatch is a partial sensor update. Nil fields are left untouched.
type SensorPatch struct {
	Type            *string    `json:"type,omitempty"`
	Value           *int       `json:"value,omitempty"`
	Unit            *string    `json:"unit,omitempty"`
	Status          *string    `json:"status,omitempty"`
	LastCalibrated  *time.Time `json:"lastCalibrated,omitempty"`
	NextMaintenance *time.Time `json:"nextMaintenance,omitempty"`
	AlertThreshold  *int       `json:"alertThreshold,omitempty"`
	Description     *string    `json:"description,omitempty"`
}

// ClosureRequestPatch carries the reviewer's decision fields.
type ClosureRequestPatch struct {
	Status       *string `json:"status,omitempty"`
	ReviewedByID *int64  `json:"reviewedById,omitempty"`
	ReviewNotes  *string `json:"reviewNotes,omitempty"`
	Message      *string `json:"message,omitempty"`
}

// LogFilter narrows an operations-log listing.
type LogFilter struct {
	UserID    *int64
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}
