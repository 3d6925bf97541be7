package session

import (
	"errors"
	"strings"
)

// Role is a caller role on the local action API.
type Role string

const (
	RoleRider    Role = "RIDER"    // may submit mutating ledger actions
	RoleObserver Role = "OBSERVER" // read-only access to session and telemetry views
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole normalizes (uppercases+trims) and validates a role string.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if role.Valid() {
		return role, nil
	}
	return "", ErrInvalidRole
}

// Valid reports whether role is one of the allowed role constants.
func (role Role) Valid() bool {
	switch role {
	case RoleRider, RoleObserver:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Role.
func (role Role) String() string {
	return string(role)
}

// Convenience helpers.
func (role Role) IsRider() bool    { return role == RoleRider }
func (role Role) IsObserver() bool { return role == RoleObserver }
