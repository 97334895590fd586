package audit

import "github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"

// FieldChange records a before/after pair for a role or status change.
type FieldChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DiffUserFields lists the user fields a patch actually changes, in a stable
// order. Password is never reported even when it changes. Role and status
// changes additionally come back as before/after pairs.
func DiffUserFields(current models.User, patch models.UserPatch) (fields []string, roleChange, statusChange *FieldChange) {
	if patch.Username != nil && *patch.Username != current.Username {
		fields = append(fields, "username")
	}
	if patch.FullName != nil && *patch.FullName != current.FullName {
		fields = append(fields, "fullName")
	}
	if patch.Email != nil && *patch.Email != current.Email {
		fields = append(fields, "email")
	}
	if patch.Phone != nil && *patch.Phone != current.Phone {
		fields = append(fields, "phone")
	}
	if patch.Role != nil && *patch.Role != current.Role {
		fields = append(fields, "role")
		roleChange = &FieldChange{From: string(current.Role), To: string(*patch.Role)}
	}
	if patch.Status != nil && *patch.Status != current.Status {
		fields = append(fields, "status")
		statusChange = &FieldChange{From: current.Status, To: *patch.Status}
	}
	return fields, roleChange, statusChange
}
