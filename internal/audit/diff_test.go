package audit

import (
	"reflect"
	"testing"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/roles"
)

func strPtr(s string) *string    { return &s }
func rolePtr(r roles.Role) *roles.Role { return &r }

func TestDiffUserFields(t *testing.T) {
	current := models.User{
		Username: "alice",
		FullName: "Alice Example",
		Email:    "alice@example.com",
		Phone:    "+973 1111 1111",
		Role:     roles.Public,
		Status:   models.StatusActive,
	}

	t.Run("empty patch reports nothing", func(t *testing.T) {
		fields, roleChange, statusChange := DiffUserFields(current, models.UserPatch{})
		if len(fields) != 0 || roleChange != nil || statusChange != nil {
			t.Fatalf("expected no changes, got %v %v %v", fields, roleChange, statusChange)
		}
	})

	t.Run("same-value patch reports nothing", func(t *testing.T) {
		fields, _, _ := DiffUserFields(current, models.UserPatch{
			Username: strPtr("alice"),
			Email:    strPtr("alice@example.com"),
		})
		if len(fields) != 0 {
			t.Fatalf("expected no changes for same values, got %v", fields)
		}
	})

	t.Run("changed fields listed in stable order", func(t *testing.T) {
		suspended := models.StatusSuspended
		fields, roleChange, statusChange := DiffUserFields(current, models.UserPatch{
			Status:   &suspended,
			Role:     rolePtr(roles.Traffic),
			Username: strPtr("alice2"),
		})
		want := []string{"username", "role", "status"}
		if !reflect.DeepEqual(fields, want) {
			t.Fatalf("expected fields %v, got %v", want, fields)
		}
		if roleChange == nil || roleChange.From != "public" || roleChange.To != "traffic" {
			t.Fatalf("unexpected role change: %#v", roleChange)
		}
		if statusChange == nil || statusChange.From != models.StatusActive || statusChange.To != models.StatusSuspended {
			t.Fatalf("unexpected status change: %#v", statusChange)
		}
	})

	t.Run("password changes are never reported", func(t *testing.T) {
		fields, _, _ := DiffUserFields(current, models.UserPatch{Password: strPtr("newsecret")})
		if len(fields) != 0 {
			t.Fatalf("password must not appear in the diff, got %v", fields)
		}
	})
}
