package ride

import (
	"fmt"
	"sync"
)

// Context is the authoritative in-memory model of the current user's ride.
// One instance exists per connected session; every field is mutated behind
// the context mutex because status events and confirmation refreshes arrive
// on different goroutines.
type Context struct {
	mu sync.Mutex

	phase             Phase
	pending           *PendingAction
	assignedVehicleID string
	balance           int64
	allowance         int64
	statusLine        string
}

// View is a consistent read-only snapshot of the session state.
type View struct {
	Phase             Phase
	Busy              bool
	PendingKind       ActionKind
	AssignedVehicleID string
	Balance           int64
	Allowance         int64
	StatusLine        string
}

// NewContext creates a session context in the IDLE phase.
func NewContext() *Context {
	return &Context{phase: PhaseIdle}
}

// Snapshot returns a copy of the current session state.
func (sc *Context) Snapshot() View {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	view := View{
		Phase:             sc.phase,
		Busy:              sc.pending != nil,
		AssignedVehicleID: sc.assignedVehicleID,
		Balance:           sc.balance,
		Allowance:         sc.allowance,
		StatusLine:        sc.statusLine,
	}
	if sc.pending != nil {
		view.PendingKind = sc.pending.Kind
	}
	return view
}

// Phase returns the current lifecycle phase.
func (sc *Context) Phase() Phase {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.phase
}

// Busy reports whether a submitted action is still awaiting finalization.
func (sc *Context) Busy() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.pending != nil
}

// Guard checks that the action may be submitted right now: the session must
// not be busy and the action must be legal from the current phase.
func (sc *Context) Guard(kind ActionKind) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.pending != nil {
		return ErrSessionBusy
	}
	if !kind.AllowedFrom(sc.phase) {
		return fmt.Errorf("%s from %s: %w", kind, sc.phase, ErrIllegalTransition)
	}
	return nil
}

// CanRequestRide reports whether a new ride request would pass the guard.
func (sc *Context) CanRequestRide() bool {
	return sc.Guard(ActionRequestRide) == nil
}

// CanFinishRide reports whether the finish action would pass the guard.
// True only for the ride owner once the vehicle reports "At Drop Off".
func (sc *Context) CanFinishRide() bool {
	return sc.Guard(ActionFinishRide) == nil
}

// SetPending installs the handle of a freshly submitted action. Fails with
// ErrSessionBusy if another submission is already pending. Callers serialize
// Guard and SetPending to keep check-then-set atomic.
func (sc *Context) SetPending(action PendingAction) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.pending != nil {
		return ErrSessionBusy
	}
	copied := action
	sc.pending = &copied
	return nil
}

// ClearPending drops the pending handle once the submission is finalized or
// terminally rejected.
func (sc *Context) ClearPending() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.pending = nil
}

// Pending returns a copy of the pending handle, if any.
func (sc *Context) Pending() (PendingAction, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.pending == nil {
		return PendingAction{}, false
	}
	return *sc.pending, true
}

// ApplyStatusEvent folds a stream status event for this user into the
// lifecycle machine and returns the human-readable status line. Events that
// do not fit the current phase return ErrIllegalTransition and leave the
// phase unchanged; the caller logs and drops them.
func (sc *Context) ApplyStatusEvent(event StatusEvent) (string, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	switch event.Label {
	case LabelAccepted:
		if sc.phase != PhaseRequested {
			return "", fmt.Errorf("%q in %s: %w", event.Label, sc.phase, ErrIllegalTransition)
		}
		if event.VehicleID == "" {
			return "", fmt.Errorf("%q without vehicle id: %w", event.Label, ErrIllegalTransition)
		}
		sc.phase = PhaseAccepted
		sc.assignedVehicleID = event.VehicleID
		sc.statusLine = fmt.Sprintf("Car %s accepted your ride", sc.assignedVehicleID)

	case LabelToPickUp:
		if sc.phase != PhaseAccepted {
			return "", fmt.Errorf("%q in %s: %w", event.Label, sc.phase, ErrIllegalTransition)
		}
		sc.phase = PhaseEnRoutePickup
		sc.statusLine = fmt.Sprintf("Car %s is on the way", sc.assignedVehicleID)

	case LabelAtPickUp:
		if sc.phase != PhaseEnRoutePickup {
			return "", fmt.Errorf("%q in %s: %w", event.Label, sc.phase, ErrIllegalTransition)
		}
		sc.phase = PhaseAtPickup
		sc.statusLine = fmt.Sprintf("Car %s is at Pickup", sc.assignedVehicleID)

	case LabelAtDropOff:
		if sc.phase != PhaseAtPickup && sc.phase != PhaseEnRouteDropoff {
			return "", fmt.Errorf("%q in %s: %w", event.Label, sc.phase, ErrIllegalTransition)
		}
		// the drop-off report passes through AT_DROPOFF straight into
		// AWAITING_FINISH, revealing the finish action to the owner
		sc.phase = PhaseAwaitingFinish
		sc.statusLine = fmt.Sprintf("Car %s is at Dropoff", sc.assignedVehicleID)

	default:
		return "", fmt.Errorf("%q: %w", event.Label, ErrInvalidStatusLabel)
	}

	return sc.statusLine, nil
}

// Reconcile folds the authoritative ledger record into the session after a
// confirmed action. The ledger wins: an empty record forces IDLE from any
// phase and clears the assigned vehicle. A coarse REQUESTED record never
// regresses a phase the stream has already advanced past; an ARRIVED record
// always reveals the finish action.
func (sc *Context) Reconcile(record Record) error {
	target, err := record.Phase()
	if err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	switch target {
	case PhaseIdle:
		sc.phase = PhaseIdle
		sc.assignedVehicleID = ""
		sc.statusLine = ""

	case PhaseRequested:
		if sc.phase == PhaseIdle || sc.phase == PhaseRequested {
			sc.phase = PhaseRequested
		}

	case PhaseAwaitingFinish:
		sc.phase = PhaseAwaitingFinish
	}

	return nil
}

// SetBalances overwrites the advisory ledger mirrors. Only the refresh step
// after a confirmed action calls this.
func (sc *Context) SetBalances(balance, allowance int64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.balance = balance
	sc.allowance = allowance
}

// AssignedVehicleID returns the vehicle assigned by the latest accepted
// status event, or the empty string outside an assigned ride.
func (sc *Context) AssignedVehicleID() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.assignedVehicleID
}
