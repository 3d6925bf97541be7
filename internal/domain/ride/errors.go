package ride

import "errors"

var (
	// ErrRejectedByAuthority is a synchronous submission refusal by the
	// ledger. Wrapped with a corrective message and surfaced to the user.
	ErrRejectedByAuthority = errors.New("rejected by ledger")

	// ErrSessionBusy means another submitted action is still awaiting
	// finalization. The session refuses all mutating actions until then.
	ErrSessionBusy = errors.New("an action is already in progress")

	// ErrIllegalTransition means the action is not legal from the current
	// lifecycle phase, or a status event does not fit the current phase.
	ErrIllegalTransition = errors.New("action not legal from current ride phase")

	// ErrTransientLookup means a finalization check or state read failed to
	// reach the ledger. Never surfaced: callers treat it as "still pending"
	// and retry.
	ErrTransientLookup = errors.New("transient ledger lookup failure")
)
