package cli

import (
	"fmt"
	"time"

	"ride-session/internal/domain/session"
	"ride-session/internal/general/jwt"
)

// GenerateSessionToken mints a short-lived JWT for a session user.
// It uses jwt.Manager and returns the raw token plus the claims.
//
// Typical use (dev-only):
//
//	token, _, err := cli.GenerateSessionToken(secret,
//	    "0xc94770007dda54cf92009bff0de90c06f603a09f", "RIDER")
//
// Keep this package dev/internal only. Do not call it from production code paths.
func GenerateSessionToken(secret string, address string, roleStr string) (string, jwt.Claims, error) {
	// parse and validate the role
	role, err := session.ParseRole(roleStr)
	if err != nil {
		return "", jwt.Claims{}, fmt.Errorf("invalid role %q: %w", roleStr, err)
	}

	// set up a new JWT manager
	mgr := jwt.NewManager(secret, 2*time.Hour)

	// generate the JWT token given the session address and its role
	token, claims, err := mgr.IssueToken(address, role)
	if err != nil {
		return "", jwt.Claims{}, fmt.Errorf("issue token: %w", err)
	}

	return token, *claims, nil
}
