package domain

import (
	"fmt"
	"strings"
	"time"
)

// UserRole enumerates what a user may do in the helpdesk.
type UserRole string

const (
	UserRoleUser       UserRole = "USER"
	UserRoleTechnician UserRole = "TECHNICIAN"
	UserRoleAdmin      UserRole = "ADMIN"
)

// Valid reports whether r is one of the declared roles.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleTechnician, UserRoleAdmin:
		return true
	}
	return false
}

// ParseUserRole converts a case-insensitive name into a UserRole.
func ParseUserRole(s string) (UserRole, error) {
	if role := UserRole(strings.ToUpper(strings.TrimSpace(s))); role.Valid() {
		return role, nil
	}
	return "", fmt.Errorf("unknown user role %q: %w", s, ErrInvalidValue)
}

// TechnicianRoles lists the roles allowed to work tickets.
var TechnicianRoles = []UserRole{UserRoleTechnician, UserRoleAdmin}

// User is either a ticket reporter or a technician.
type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	Role      UserRole
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser builds an unsaved, active user. An empty role defaults to USER.
func NewUser(name, email, password string, role UserRole) *User {
	if role == "" {
		role = UserRoleUser
	}
	now := time.Now()
	return &User{
		Name:      name,
		Email:     email,
		Password:  password,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsTechnicianCapable reports whether tickets may be assigned to the user.
func (u *User) IsTechnicianCapable() bool {
	for _, role := range TechnicianRoles {
		if u.Role == role {
			return true
		}
	}
	return false
}

func (u *User) Deactivate() {
	u.Active = false
	u.UpdatedAt = time.Now()
}

func (u *User) Activate() {
	u.Active = true
	u.UpdatedAt = time.Now()
}
