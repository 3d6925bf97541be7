package ride

import (
	"errors"
	"strings"
	"time"
)

// ActionKind identifies a mutating ledger action a session can submit.
type ActionKind string

const (
	ActionRequestRide      ActionKind = "REQUEST_RIDE"
	ActionApproveAllowance ActionKind = "APPROVE_ALLOWANCE"
	ActionAcquireFunds     ActionKind = "ACQUIRE_FUNDS"
	ActionFinishRide       ActionKind = "FINISH_RIDE"
)

var ErrInvalidActionKind = errors.New("invalid action kind")

// ParseActionKind normalizes (uppercases+trims) and validates an action kind string.
func ParseActionKind(in string) (ActionKind, error) {
	kind := ActionKind(strings.ToUpper(strings.TrimSpace(in)))
	if kind.Valid() {
		return kind, nil
	}
	return "", ErrInvalidActionKind
}

// Valid reports whether kind is one of the allowed action kind constants.
func (kind ActionKind) Valid() bool {
	switch kind {
	case ActionRequestRide, ActionApproveAllowance, ActionAcquireFunds, ActionFinishRide:
		return true
	default:
		return false
	}
}

// String returns the string representation of the ActionKind.
func (kind ActionKind) String() string {
	return string(kind)
}

// AllowedFrom reports whether the action may be submitted while the session
// is in the given phase. Ride actions are phase-gated; allowance and funds
// actions never touch the phase and are allowed from anywhere.
func (kind ActionKind) AllowedFrom(phase Phase) bool {
	switch kind {
	case ActionRequestRide:
		return phase == PhaseIdle
	case ActionFinishRide:
		return phase == PhaseAwaitingFinish
	case ActionApproveAllowance, ActionAcquireFunds:
		return true
	default:
		return false
	}
}

// Receipt is the opaque confirmation token returned by the ledger on submit.
type Receipt string

// String returns the string representation of the Receipt.
func (receipt Receipt) String() string {
	return string(receipt)
}

// Finality is the outcome of a finalization poll.
type Finality int

const (
	FinalityPending Finality = iota
	FinalityFinalized
)

// Finalized reports whether the submission has been finalized by the ledger.
func (finality Finality) Finalized() bool {
	return finality == FinalityFinalized
}

// PendingAction is the handle to an unconfirmed submission. Its presence on
// the session context means "busy": no other mutating action may start until
// the ledger finalizes this one.
type PendingAction struct {
	Kind        ActionKind
	Receipt     Receipt
	SubmittedAt time.Time
}
