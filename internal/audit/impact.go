package audit

import (
	"fmt"
	"time"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
)

// Hardware impact levels.
const (
	ImpactLow      = "low"
	ImpactMedium   = "medium"
	ImpactHigh     = "high"
	ImpactCritical = "critical"
)

// Deterministic wear figures for the live actuation paths. Seeded
// maintenance history uses sampled wear instead; these are fixed so the
// derived payloads are reproducible.
const (
	GuidanceDisplayWear = 10
	BarrierToggleWear   = 25
)

// ImpactLevelForWear classifies a wear percentage.
func ImpactLevelForWear(wear int) string {
	switch {
	case wear > 85:
		return ImpactCritical
	case wear > 70:
		return ImpactHigh
	case wear > 45:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// maintenanceWindowDays is how soon maintenance should be scheduled for a
// given impact level. Higher wear means a shorter window.
func maintenanceWindowDays(level string) int {
	switch level {
	case ImpactCritical:
		return 7
	case ImpactHigh:
		return 30
	case ImpactMedium:
		return 60
	default:
		return 90
	}
}

// DeriveImpact computes the hardware-impact payload for an operation on the
// named component at the given wear percentage. The derivation is a pure
// function of its inputs.
func DeriveImpact(deviceID, componentName string, wear, operationCount int, ts time.Time) models.HardwareImpact {
	level := ImpactLevelForWear(wear)
	windowDays := maintenanceWindowDays(level)

	recommendation := fmt.Sprintf("Schedule routine maintenance within %d days", windowDays)
	if level == ImpactCritical || level == ImpactHigh {
		recommendation = "Immediate replacement recommended"
	}

	return models.HardwareImpact{
		DeviceID:                  deviceID,
		ComponentName:             componentName,
		ImpactLevel:               level,
		WearPercentage:            wear,
		EstimatedLifespan:         fmt.Sprintf("%d months", (100-wear)/10*3),
		MaintenanceRecommendation: recommendation,
		LastMaintenance:           ts,
		NextScheduledMaintenance:  ts.Add(time.Duration(windowDays) * 24 * time.Hour),
		OperationCount:            operationCount,
	}
}

// GuidanceDisplayImpact is the fixed payload for a guidance-display toggle.
func GuidanceDisplayImpact(tunnelID string, ts time.Time) models.HardwareImpact {
	return DeriveImpact(tunnelID+"-GuidanceDisplay", "Traffic Guidance Display", GuidanceDisplayWear, 1, ts)
}

// BarrierToggleImpact is the fixed payload for a barrier open/close.
func BarrierToggleImpact(tunnelID string, ts time.Time) models.HardwareImpact {
	return DeriveImpact(tunnelID+"-BarrierMotor", "Barrier Motor", BarrierToggleWear, 1, ts)
}
