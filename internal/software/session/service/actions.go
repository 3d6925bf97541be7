package service

import (
	"context"
	"fmt"

	"ride-session/internal/domain/ride"
	"ride-session/internal/ports"
)

// RequestRide submits a new ride request. Legal only from an idle session.
func (svc *Service) RequestRide(ctx context.Context, in ports.RequestRideInput) (ports.SubmissionResult, error) {
	if in.Amount <= 0 {
		return ports.SubmissionResult{}, fmt.Errorf("ride amount must exceed zero: %w", ride.ErrRejectedByAuthority)
	}
	return svc.begin(ctx, ride.ActionRequestRide, func(ctx context.Context, gw ports.LedgerGateway) (ride.Receipt, error) {
		return gw.RequestRide(ctx, in.Start.String(), in.End.String(), in.Amount)
	})
}

// ApproveAllowance raises the amount the ride contract may spend. Legal from
// any phase.
func (svc *Service) ApproveAllowance(ctx context.Context, amount int64) (ports.SubmissionResult, error) {
	return svc.begin(ctx, ride.ActionApproveAllowance, func(ctx context.Context, gw ports.LedgerGateway) (ride.Receipt, error) {
		return gw.ApproveAllowance(ctx, amount)
	})
}

// AcquireFunds credits the session's ledger balance. Legal from any phase.
func (svc *Service) AcquireFunds(ctx context.Context, amount int64) (ports.SubmissionResult, error) {
	return svc.begin(ctx, ride.ActionAcquireFunds, func(ctx context.Context, gw ports.LedgerGateway) (ride.Receipt, error) {
		return gw.AcquireFunds(ctx, amount)
	})
}

// FinishRide settles the current ride. Legal only once the vehicle has
// reported the drop off.
func (svc *Service) FinishRide(ctx context.Context) (ports.SubmissionResult, error) {
	return svc.begin(ctx, ride.ActionFinishRide, func(ctx context.Context, gw ports.LedgerGateway) (ride.Receipt, error) {
		return gw.FinishRide(ctx)
	})
}
