package authz

// Role is the closed set of roles known to the system. Tokens carry
// the lowercase names on the wire.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleHROfficer Role = "hr_officer"
	RoleEmployee  Role = "employee"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleHROfficer, RoleEmployee:
		return Role(s), true
	default:
		return "", false
	}
}

// Identity is the caller as established by the auth middleware.
// EmployeeID is empty for accounts without an employee profile.
type Identity struct {
	UserID     string
	EmployeeID string
	Role       Role
}
