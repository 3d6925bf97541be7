package session

import (
	"errors"
	"strings"
)

// Identity is the ledger account address identifying the current user. Ride
// status events carry the subject address in whatever case the simulator
// produced, so all comparisons are case-insensitive.
type Identity string

var ErrEmptyIdentity = errors.New("session identity is empty")

// NewIdentity validates and normalizes an address string.
func NewIdentity(address string) (Identity, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return "", ErrEmptyIdentity
	}
	return Identity(strings.ToLower(trimmed)), nil
}

// Matches reports whether the given subject address refers to this identity.
func (identity Identity) Matches(subject string) bool {
	return string(identity) != "" && strings.EqualFold(string(identity), strings.TrimSpace(subject))
}

// String returns the normalized (lowercase) address.
func (identity Identity) String() string {
	return string(identity)
}
