package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentity(t *testing.T) {
	id, err := NewIdentity("  0xC94770007dDa54cF92009BFF0dE90c06F603a09F ")
	require.NoError(t, err)
	assert.Equal(t, "0xc94770007dda54cf92009bff0de90c06f603a09f", id.String())

	_, err = NewIdentity("   ")
	assert.ErrorIs(t, err, ErrEmptyIdentity)
}

func TestIdentityMatches(t *testing.T) {
	id, err := NewIdentity("0xAbCd")
	require.NoError(t, err)

	assert.True(t, id.Matches("0xabcd"))
	assert.True(t, id.Matches("0XABCD"))
	assert.True(t, id.Matches(" 0xAbCd "))
	assert.False(t, id.Matches("0xdcba"))
	assert.False(t, id.Matches(""))

	assert.False(t, Identity("").Matches(""), "empty identity matches nothing")
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("rider")
	require.NoError(t, err)
	assert.Equal(t, RoleRider, role)
	assert.True(t, role.IsRider())

	role, err = ParseRole("OBSERVER")
	require.NoError(t, err)
	assert.True(t, role.IsObserver())

	_, err = ParseRole("DRIVER")
	assert.Error(t, err)
}
