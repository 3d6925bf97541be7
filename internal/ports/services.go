package ports

import (
	"context"

	"ride-session/internal/domain/geo"
	"ride-session/internal/domain/ride"
)

// ----- DTOs for the Session Service -----

// RequestRideInput is the validated input for a new ride request.
type RequestRideInput struct {
	Start  geo.Coordinate
	End    geo.Coordinate
	Amount int64
}

// SubmissionResult is returned by every mutating session operation. The
// action is accepted, not yet confirmed; the receipt identifies the pending
// submission until finalization clears it.
type SubmissionResult struct {
	Kind    string `json:"action"`
	Receipt string `json:"receipt"`
}

// ----- Session Service Interface -----

// SessionService exposes the user-action boundary. Each call returns
// synchronously for guard checks; confirmation happens asynchronously and is
// observable through View.
type SessionService interface {
	RequestRide(ctx context.Context, in RequestRideInput) (SubmissionResult, error)
	ApproveAllowance(ctx context.Context, amount int64) (SubmissionResult, error)
	AcquireFunds(ctx context.Context, amount int64) (SubmissionResult, error)
	FinishRide(ctx context.Context) (SubmissionResult, error)

	View() ride.View
	Vehicles() []geo.VehicleTelemetry
	Signals() []geo.SignalState
}
