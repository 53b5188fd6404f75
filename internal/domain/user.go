package domain

import "time"

// UserRole is the explicit permission role assigned to a user. It is
// decoupled from the free-text Position field, which is display only.
type UserRole string

const (
	RoleEmployee   UserRole = "EMPLOYEE"
	RoleSupervisor UserRole = "SUPERVISOR"
	RoleManager    UserRole = "MANAGER"
	RoleAdmin      UserRole = "ADMIN"
)

// AdminRoles lists the roles authorized for administrative operations.
var AdminRoles = []UserRole{RoleSupervisor, RoleManager, RoleAdmin}

// IsAdminEquivalent reports whether the role grants administrative operations.
func (r UserRole) IsAdminEquivalent() bool {
	switch r {
	case RoleSupervisor, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// IsValid reports whether the role is a known value.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleEmployee, RoleSupervisor, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User is the domain model for crew members who submit travel orders.
type User struct {
	ID           string
	EmployeeID   string
	FullName     string
	PasswordHash string
	Role         UserRole
	Position     string
	Location     string
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
