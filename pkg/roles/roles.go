// Package roles defines the role hierarchy used for permission checks.
// Roles are totally ordered: public < ministry < traffic < admin, and a
// higher-ranked role inherits access to every lower-ranked role's features.
package roles

// Role is an access level assigned to a user account.
type Role string

const (
	Public   Role = "public"
	Ministry Role = "ministry"
	Traffic  Role = "traffic"
	Admin    Role = "admin"
)

// ReviewerRoles is the set of roles allowed to review closure requests and
// to write operations-log entries.
var ReviewerRoles = []Role{Admin, Ministry, Traffic}

var rank = map[Role]int{
	Public:   1,
	Ministry: 2,
	Traffic:  3,
	Admin:    4,
}

// Valid reports whether r is one of the known roles.
func Valid(r Role) bool {
	_, ok := rank[r]
	return ok
}

// Rank returns the numeric rank of a role, or 0 for an unknown role.
func Rank(r Role) int {
	return rank[r]
}

// HasPermission reports whether caller meets the required role. A caller
// ranked at or above the required role is authorized; an unknown caller
// role is never authorized.
func HasPermission(caller, required Role) bool {
	cr := rank[caller]
	if cr == 0 {
		return false
	}
	return rank[required] != 0 && rank[required] <= cr
}

// HasAnyPermission reports whether caller meets at least one of the required
// roles. The set acts as a minimum-required-role set: a caller ranked above
// every element is still authorized.
func HasAnyPermission(caller Role, required []Role) bool {
	for _, r := range required {
		if HasPermission(caller, r) {
			return true
		}
	}
	return false
}
