package auth

import "strings"

// Role is an access level carried in JWT claims.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

var roleRank = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// NormalizeRole parses a raw role string, case-insensitively.
func NormalizeRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := roleRank[role]; ok {
		return role, true
	}
	return "", false
}

// Allows reports whether a held role satisfies a required role.
func (r Role) Allows(required Role) bool {
	return roleRank[r] >= roleRank[required] && roleRank[required] > 0
}
