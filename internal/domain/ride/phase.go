package ride

import (
	"errors"
	"strings"
)

// Phase is the locally tracked lifecycle phase of the current ride.
type Phase string

const (
	PhaseIdle           Phase = "IDLE"
	PhaseRequested      Phase = "REQUESTED"
	PhaseAccepted       Phase = "ACCEPTED"
	PhaseEnRoutePickup  Phase = "EN_ROUTE_PICKUP"
	PhaseAtPickup       Phase = "AT_PICKUP"
	PhaseEnRouteDropoff Phase = "EN_ROUTE_DROPOFF"
	PhaseAtDropoff      Phase = "AT_DROPOFF"
	PhaseAwaitingFinish Phase = "AWAITING_FINISH"
)

var ErrInvalidPhase = errors.New("invalid ride phase")

// ParsePhase normalizes (uppercases+trims) and validates a phase string.
func ParsePhase(in string) (Phase, error) {
	phase := Phase(strings.ToUpper(strings.TrimSpace(in)))
	if phase.Valid() {
		return phase, nil
	}
	return "", ErrInvalidPhase
}

// Valid reports whether phase is one of the allowed phase constants.
func (phase Phase) Valid() bool {
	switch phase {
	case PhaseIdle, PhaseRequested, PhaseAccepted, PhaseEnRoutePickup,
		PhaseAtPickup, PhaseEnRouteDropoff, PhaseAtDropoff, PhaseAwaitingFinish:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Phase.
func (phase Phase) String() string {
	return string(phase)
}

// Active reports whether a ride is underway (anything but IDLE).
func (phase Phase) Active() bool {
	return phase.Valid() && phase != PhaseIdle
}

// CanTransitionTo specifies if the phase can transition to the next phase.
// The IDLE reconciliation override (ledger shows no ride) is always legal
// and is therefore not part of this table.
func (phase Phase) CanTransitionTo(next Phase) bool {
	switch phase {
	case PhaseIdle:
		return next == PhaseRequested

	case PhaseRequested:
		return next == PhaseAccepted

	case PhaseAccepted:
		return next == PhaseEnRoutePickup

	case PhaseEnRoutePickup:
		return next == PhaseAtPickup

	case PhaseAtPickup:
		return next == PhaseEnRouteDropoff || next == PhaseAtDropoff

	case PhaseEnRouteDropoff:
		return next == PhaseAtDropoff

	case PhaseAtDropoff:
		return next == PhaseAwaitingFinish

	case PhaseAwaitingFinish:
		return next == PhaseIdle

	default:
		return false
	}
}
