package service

import (
	"context"
	"errors"
	"time"

	"ride-session/internal/domain/ride"
	"ride-session/internal/ports"
)

// begin runs the shared submission path: guard the action against the
// current phase, submit it to the ledger, install the pending handle, and
// start the confirmation loop. The service mutex keeps guard and submit
// atomic, so at most one action is ever in flight.
func (svc *Service) begin(
	ctx context.Context,
	kind ride.ActionKind,
	submit func(context.Context, ports.LedgerGateway) (ride.Receipt, error),
) (ports.SubmissionResult, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.gateway == nil {
		return ports.SubmissionResult{}, ErrStreamNotReady
	}

	if err := svc.sessionCtx.Guard(kind); err != nil {
		return ports.SubmissionResult{}, err
	}

	receipt, err := submit(ctx, svc.gateway)
	if err != nil {
		svc.logger.Error(ctx, "submission_refused", "Ledger refused the submission", err,
			map[string]any{"action": kind.String()})
		return ports.SubmissionResult{}, err
	}

	pending := ride.PendingAction{Kind: kind, Receipt: receipt, SubmittedAt: time.Now().UTC()}
	if err := svc.sessionCtx.SetPending(pending); err != nil {
		// unreachable while begin holds the mutex; surface it anyway
		return ports.SubmissionResult{}, err
	}

	svc.logger.Info(svc.logger.WithReceipt(ctx, receipt.String()), "submission_accepted",
		"Action submitted; awaiting ledger finalization",
		map[string]any{"action": kind.String()})

	go svc.confirm(svc.baseCtx, svc.gateway, pending)

	return ports.SubmissionResult{Kind: kind.String(), Receipt: receipt.String()}, nil
}

// confirm polls the ledger until the pending submission finalizes, then
// clears the busy flag and refreshes session state from the ledger. A
// transient lookup failure is "still pending"; any other poll error is a
// rejection recorded by the authority, which also unblocks the session.
func (svc *Service) confirm(ctx context.Context, gw ports.LedgerGateway, pending ride.PendingAction) {
	ctx = svc.logger.WithReceipt(ctx, pending.Receipt.String())

	ticker := time.NewTicker(svc.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		finality, err := gw.PollFinalization(ctx, pending.Receipt)
		if err != nil {
			if errors.Is(err, ride.ErrTransientLookup) {
				svc.logger.Debug(ctx, "finalization_poll_retry", "Ledger lookup failed; submission still pending",
					map[string]any{"action": pending.Kind.String()})
				continue
			}

			svc.logger.Error(ctx, "submission_rejected", "Ledger rejected the submission after intake", err,
				map[string]any{"action": pending.Kind.String()})
			svc.refresh(ctx)
			svc.sessionCtx.ClearPending()
			return
		}

		if !finality.Finalized() {
			continue
		}

		// refresh first: the session must not read "not busy" with stale state
		svc.refresh(ctx)
		svc.sessionCtx.ClearPending()
		svc.logger.Info(ctx, "submission_finalized", "Ledger finalized the action",
			map[string]any{
				"action":      pending.Kind.String(),
				"waited_ms":   time.Since(pending.SubmittedAt).Milliseconds(),
				"phase_after": svc.sessionCtx.Phase().String(),
			})
		return
	}
}

// refresh pulls the authoritative quantities after a confirmed action and
// folds them into the session: balance and allowance mirrors first, then the
// ride record through reconciliation. Read failures keep the previous
// mirrors; the next confirmed action refreshes again.
func (svc *Service) refresh(ctx context.Context) {
	gw := svc.currentGateway()
	if gw == nil {
		return
	}

	balance, err := gw.Balance(ctx)
	if err != nil {
		svc.logger.Error(ctx, "refresh_failed", "Could not read balance from the ledger", err, nil)
		return
	}
	allowance, err := gw.Allowance(ctx)
	if err != nil {
		svc.logger.Error(ctx, "refresh_failed", "Could not read allowance from the ledger", err, nil)
		return
	}
	svc.sessionCtx.SetBalances(balance, allowance)

	record, err := gw.RideRecord(ctx)
	if err != nil {
		svc.logger.Error(ctx, "refresh_failed", "Could not read the ride record from the ledger", err, nil)
		return
	}
	if err := svc.sessionCtx.Reconcile(record); err != nil {
		svc.logger.Error(ctx, "reconcile_failed", "Ledger ride record did not reconcile", err,
			map[string]any{"record_status": int(record.Status)})
	}
}
