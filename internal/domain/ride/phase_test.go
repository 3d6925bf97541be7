package ride

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhase(t *testing.T) {
	phase, err := ParsePhase("  en_route_pickup ")
	require.NoError(t, err)
	assert.Equal(t, PhaseEnRoutePickup, phase)

	_, err = ParsePhase("TELEPORTING")
	assert.ErrorIs(t, err, ErrInvalidPhase)

	_, err = ParsePhase("")
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestPhaseActive(t *testing.T) {
	assert.False(t, PhaseIdle.Active())
	assert.True(t, PhaseRequested.Active())
	assert.True(t, PhaseAwaitingFinish.Active())
	assert.False(t, Phase("BOGUS").Active())
}

func TestPhaseTransitions(t *testing.T) {
	cases := []struct {
		from Phase
		to   Phase
		ok   bool
	}{
		{PhaseIdle, PhaseRequested, true},
		{PhaseIdle, PhaseAccepted, false},
		{PhaseRequested, PhaseAccepted, true},
		{PhaseRequested, PhaseEnRoutePickup, false},
		{PhaseAccepted, PhaseEnRoutePickup, true},
		{PhaseEnRoutePickup, PhaseAtPickup, true},
		{PhaseEnRoutePickup, PhaseAtDropoff, false},
		{PhaseAtPickup, PhaseEnRouteDropoff, true},
		{PhaseAtPickup, PhaseAtDropoff, true},
		{PhaseEnRouteDropoff, PhaseAtDropoff, true},
		{PhaseAtDropoff, PhaseAwaitingFinish, true},
		{PhaseAwaitingFinish, PhaseIdle, true},
		{PhaseAwaitingFinish, PhaseRequested, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestActionAllowedFrom(t *testing.T) {
	// ride actions are phase-gated
	assert.True(t, ActionRequestRide.AllowedFrom(PhaseIdle))
	assert.False(t, ActionRequestRide.AllowedFrom(PhaseRequested))
	assert.False(t, ActionRequestRide.AllowedFrom(PhaseAwaitingFinish))

	assert.True(t, ActionFinishRide.AllowedFrom(PhaseAwaitingFinish))
	assert.False(t, ActionFinishRide.AllowedFrom(PhaseAtPickup))
	assert.False(t, ActionFinishRide.AllowedFrom(PhaseIdle))

	// money actions are not
	for _, phase := range []Phase{PhaseIdle, PhaseRequested, PhaseAccepted, PhaseAwaitingFinish} {
		assert.True(t, ActionApproveAllowance.AllowedFrom(phase))
		assert.True(t, ActionAcquireFunds.AllowedFrom(phase))
	}
}

func TestParseStatusLabel(t *testing.T) {
	label, err := ParseStatusLabel("to pick up")
	require.NoError(t, err)
	assert.Equal(t, LabelToPickUp, label, "labels match case-insensitively but return canonical form")

	label, err = ParseStatusLabel("AT DROP OFF")
	require.NoError(t, err)
	assert.Equal(t, LabelAtDropOff, label)

	_, err = ParseStatusLabel("Lost")
	assert.ErrorIs(t, err, ErrInvalidStatusLabel)
}

func TestRecordPhase(t *testing.T) {
	phase, err := Record{}.Phase()
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, phase)

	phase, err = Record{Status: RecordRequested}.Phase()
	require.NoError(t, err)
	assert.Equal(t, PhaseRequested, phase)

	phase, err = Record{Status: RecordArrived}.Phase()
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingFinish, phase)

	_, err = Record{Status: RecordStatus(9)}.Phase()
	assert.ErrorIs(t, err, ErrInvalidRecordStatus)
}
