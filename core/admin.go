package core

import "time"

// Role is the authorization level of an admin account. It is a closed set:
// every decision point switches exhaustively over these two values so that
// adding a role forces a review of each policy check.
type Role string

const (
	// RoleAdmin may read the registry and manage its contents.
	RoleAdmin Role = "admin"

	// RoleSuperAdmin may additionally manage other admin accounts and can
	// never be removed.
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole converts a wire string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSuperAdmin:
		return RoleSuperAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// AdminAccount is an authorized wallet and its role.
type AdminAccount struct {
	ID        string    // Unique identifier
	Address   string    // Classic address, unique across the registry
	Role      Role      // admin or super_admin
	AddedBy   string    // Address of the admin that authorized this entry; empty for the bootstrap row
	CreatedAt time.Time // Record creation timestamp
}

// Identity is the resolved principal carried by a session assertion.
type Identity struct {
	Address string
	Role    Role
}
