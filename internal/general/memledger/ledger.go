package memledger

import (
	"context"
	"fmt"
	"sync"

	"ride-session/internal/domain/geo"
	"ride-session/internal/domain/ride"

	"github.com/google/uuid"
)

// Ledger is an in-memory stand-in for the external transactional authority,
// used in simulation-only mode and in tests. It mirrors the real ledger's
// observable behavior: submissions are refused synchronously when invalid,
// otherwise they finalize only after a configurable number of polls, and
// reads always reflect finalized state only.
//
// One Ledger instance holds the account of a single session, matching the
// gateway boundary (all reads are for the session identity).
type Ledger struct {
	mu sync.Mutex

	balance   int64
	allowance int64
	record    ride.Record

	confirmAfter int // polls before a submission finalizes
	failPolls    int // injected transient lookup failures, consumed first

	pending   map[ride.Receipt]*submission
	finalized map[ride.Receipt]bool
}

type submission struct {
	kind      ride.ActionKind
	pollsLeft int
	apply     func()
}

// New creates a ledger that finalizes each submission after confirmAfter
// polls (minimum 1).
func New(confirmAfter int) *Ledger {
	if confirmAfter < 1 {
		confirmAfter = 1
	}
	return &Ledger{
		confirmAfter: confirmAfter,
		pending:      make(map[ride.Receipt]*submission),
		finalized:    make(map[ride.Receipt]bool),
	}
}

// ----- submissions -----

// AcquireFunds credits the session balance once finalized.
func (ledger *Ledger) AcquireFunds(ctx context.Context, amount int64) (ride.Receipt, error) {
	if amount <= 0 {
		return "", fmt.Errorf("amount must exceed zero: %w", ride.ErrRejectedByAuthority)
	}

	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	return ledger.submit(ride.ActionAcquireFunds, func() {
		ledger.balance += amount
	}), nil
}

// ApproveAllowance raises the amount the ride contract may spend on the
// session's behalf once finalized.
func (ledger *Ledger) ApproveAllowance(ctx context.Context, amount int64) (ride.Receipt, error) {
	if amount <= 0 {
		return "", fmt.Errorf("amount must exceed zero: %w", ride.ErrRejectedByAuthority)
	}

	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	if amount > ledger.balance-ledger.allowance {
		return "", fmt.Errorf("approval exceeds unapproved balance: %w", ride.ErrRejectedByAuthority)
	}
	return ledger.submit(ride.ActionApproveAllowance, func() {
		ledger.allowance += amount
	}), nil
}

// RequestRide opens a ride record once finalized.
func (ledger *Ledger) RequestRide(ctx context.Context, from, to string, amount int64) (ride.Receipt, error) {
	if amount <= 0 {
		return "", fmt.Errorf("amount must exceed zero: %w", ride.ErrRejectedByAuthority)
	}
	if _, err := geo.ParseCoordinate(from); err != nil {
		return "", fmt.Errorf("start point %q: %w", from, ride.ErrRejectedByAuthority)
	}
	if _, err := geo.ParseCoordinate(to); err != nil {
		return "", fmt.Errorf("end point %q: %w", to, ride.ErrRejectedByAuthority)
	}

	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	if ledger.record.Status != ride.RecordNone {
		return "", fmt.Errorf("end current ride to get another ride: %w", ride.ErrRejectedByAuthority)
	}
	if ledger.allowance < amount {
		return "", fmt.Errorf("approved allowance does not cover the ride amount: %w", ride.ErrRejectedByAuthority)
	}
	return ledger.submit(ride.ActionRequestRide, func() {
		ledger.record = ride.Record{From: from, To: to, Amount: amount, Status: ride.RecordRequested}
	}), nil
}

// FinishRide settles the ride once finalized: the fare moves out of the
// session's balance and allowance, and the record clears.
func (ledger *Ledger) FinishRide(ctx context.Context) (ride.Receipt, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	if ledger.record.Status != ride.RecordArrived {
		return "", fmt.Errorf("no finishable ride: %w", ride.ErrRejectedByAuthority)
	}
	amount := ledger.record.Amount
	return ledger.submit(ride.ActionFinishRide, func() {
		ledger.balance -= amount
		ledger.allowance -= amount
		if ledger.allowance < 0 {
			ledger.allowance = 0
		}
		ledger.record = ride.Record{}
	}), nil
}

// submit registers a pending submission. Callers hold the mutex.
func (ledger *Ledger) submit(kind ride.ActionKind, apply func()) ride.Receipt {
	receipt := ride.Receipt(uuid.NewString())
	ledger.pending[receipt] = &submission{kind: kind, pollsLeft: ledger.confirmAfter, apply: apply}
	return receipt
}

// ----- finalization -----

// PollFinalization reports whether a submission has finalized, finalizing it
// once its poll budget is spent. Unknown receipts read as a transient
// failure: a real authority may simply not have indexed the submission yet.
func (ledger *Ledger) PollFinalization(ctx context.Context, receipt ride.Receipt) (ride.Finality, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	if ledger.failPolls > 0 {
		ledger.failPolls--
		return ride.FinalityPending, fmt.Errorf("ledger unreachable: %w", ride.ErrTransientLookup)
	}

	if ledger.finalized[receipt] {
		return ride.FinalityFinalized, nil
	}

	sub, ok := ledger.pending[receipt]
	if !ok {
		return ride.FinalityPending, fmt.Errorf("receipt %s not indexed: %w", receipt, ride.ErrTransientLookup)
	}

	sub.pollsLeft--
	if sub.pollsLeft > 0 {
		return ride.FinalityPending, nil
	}

	sub.apply()
	delete(ledger.pending, receipt)
	ledger.finalized[receipt] = true
	return ride.FinalityFinalized, nil
}

// ----- reads -----

// Balance returns the session's finalized balance.
func (ledger *Ledger) Balance(ctx context.Context) (int64, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	return ledger.balance, nil
}

// Allowance returns the session's finalized approved allowance.
func (ledger *Ledger) Allowance(ctx context.Context) (int64, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	return ledger.allowance, nil
}

// RideRecord returns the session's authoritative ride record. A zero record
// means no active ride.
func (ledger *Ledger) RideRecord(ctx context.Context) (ride.Record, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	return ledger.record, nil
}

// ----- simulator hooks -----

// AssignVehicle records the vehicle that accepted the ride. The simulator
// calls this when a vehicle picks the request up.
func (ledger *Ledger) AssignVehicle(vehicleAddress string) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	if ledger.record.Status == ride.RecordRequested {
		ledger.record.VehicleAddress = vehicleAddress
	}
}

// MarkArrived flips the ride record to its finishable state. The simulator
// calls this when the vehicle reports the drop off.
func (ledger *Ledger) MarkArrived() {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	if ledger.record.Status == ride.RecordRequested {
		ledger.record.Status = ride.RecordArrived
	}
}

// InjectLookupFailures makes the next n polls fail with a transient lookup
// error. Test hook.
func (ledger *Ledger) InjectLookupFailures(n int) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	ledger.failPolls = n
}
