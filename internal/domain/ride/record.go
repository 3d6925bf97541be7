package ride

import "errors"

// RecordStatus is the coarse ride status as stored by the ledger. The ledger
// only distinguishes "no ride", "ride underway", and "ride finishable"; the
// finer-grained phases come from the push stream.
type RecordStatus uint8

const (
	RecordNone      RecordStatus = 0 // no active ride for this account
	RecordRequested RecordStatus = 1 // ride requested or in progress
	RecordArrived   RecordStatus = 2 // vehicle at drop off, finish action available
)

var ErrInvalidRecordStatus = errors.New("invalid ride record status")

// Valid reports whether status is one of the ledger's record status values.
func (status RecordStatus) Valid() bool {
	return status <= RecordArrived
}

// Record is the ledger-held authoritative row describing the session's
// current ride. A zero Record (Status == RecordNone) means no ride.
type Record struct {
	From           string
	To             string
	Amount         int64
	Status         RecordStatus
	VehicleAddress string // ledger account of the assigned vehicle, empty until accepted
}

// Phase maps the coarse ledger status onto the lifecycle phase the session
// should reconcile to after a confirmed action.
func (record Record) Phase() (Phase, error) {
	switch record.Status {
	case RecordNone:
		return PhaseIdle, nil
	case RecordRequested:
		return PhaseRequested, nil
	case RecordArrived:
		return PhaseAwaitingFinish, nil
	default:
		return "", ErrInvalidRecordStatus
	}
}
