package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ride-session/internal/domain/ride"
	"ride-session/internal/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerGateway talks to a ledger hosted on PostgreSQL. Submissions are
// inserted into an intake table the ledger authority drains; finalization
// state and all balances live in tables the authority owns and this gateway
// only reads. Nothing here mutates settled state.
type LedgerGateway struct {
	pool            *pgxpool.Pool
	contractAddress string
	sessionAddress  string
}

// NewLedgerGateway builds a gateway bound to one ride contract and one
// session identity.
func NewLedgerGateway(pool *pgxpool.Pool, contractAddress, sessionAddress string) ports.LedgerGateway {
	return &LedgerGateway{
		pool:            pool,
		contractAddress: contractAddress,
		sessionAddress:  sessionAddress,
	}
}

// ----- submissions -----

func (gw *LedgerGateway) RequestRide(ctx context.Context, from, to string, amount int64) (ride.Receipt, error) {
	return gw.submit(ctx, ride.ActionRequestRide, map[string]any{
		"from":   from,
		"to":     to,
		"amount": amount,
	})
}

func (gw *LedgerGateway) ApproveAllowance(ctx context.Context, amount int64) (ride.Receipt, error) {
	return gw.submit(ctx, ride.ActionApproveAllowance, map[string]any{"amount": amount})
}

func (gw *LedgerGateway) AcquireFunds(ctx context.Context, amount int64) (ride.Receipt, error) {
	return gw.submit(ctx, ride.ActionAcquireFunds, map[string]any{"amount": amount})
}

func (gw *LedgerGateway) FinishRide(ctx context.Context) (ride.Receipt, error) {
	return gw.submit(ctx, ride.ActionFinishRide, nil)
}

// submit inserts one row into the intake table. The authority validates the
// payload when it drains the row; a constraint violation here means the
// submission itself was malformed and maps to a rejection.
func (gw *LedgerGateway) submit(ctx context.Context, kind ride.ActionKind, payload map[string]any) (ride.Receipt, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", kind, err)
	}

	receipt := uuid.NewString()
	_, err = gw.pool.Exec(ctx, `
		INSERT INTO ledger_submissions (receipt, contract_address, session_address, kind, payload, status)
		VALUES ($1, $2, $3, $4, $5, 'PENDING')
	`, receipt, gw.contractAddress, gw.sessionAddress, kind.String(), body)
	if err != nil {
		return "", fmt.Errorf("submit %s: %w", kind, err)
	}

	return ride.Receipt(receipt), nil
}

// ----- finalization -----

// PollFinalization reads the submission's status as the authority last left
// it. A rejection recorded by the authority surfaces here, since intake
// itself never validates.
func (gw *LedgerGateway) PollFinalization(ctx context.Context, receipt ride.Receipt) (ride.Finality, error) {
	var status string
	var reason *string
	err := gw.pool.QueryRow(ctx, `
		SELECT status, reject_reason
		FROM ledger_submissions
		WHERE receipt = $1
	`, string(receipt)).Scan(&status, &reason)
	if errors.Is(err, pgx.ErrNoRows) {
		return ride.FinalityPending, fmt.Errorf("receipt %s not indexed: %w", receipt, ride.ErrTransientLookup)
	}
	if err != nil {
		return ride.FinalityPending, fmt.Errorf("poll %s: %w", receipt, ride.ErrTransientLookup)
	}

	switch status {
	case "FINALIZED":
		return ride.FinalityFinalized, nil
	case "REJECTED":
		msg := "submission refused"
		if reason != nil && *reason != "" {
			msg = *reason
		}
		return ride.FinalityPending, fmt.Errorf("%s: %w", msg, ride.ErrRejectedByAuthority)
	default:
		return ride.FinalityPending, nil
	}
}

// ----- reads -----

func (gw *LedgerGateway) Balance(ctx context.Context) (int64, error) {
	var balance int64
	err := gw.pool.QueryRow(ctx, `
		SELECT balance FROM ledger_accounts WHERE address = $1
	`, gw.sessionAddress).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil // unseen account reads as empty
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", ride.ErrTransientLookup)
	}
	return balance, nil
}

func (gw *LedgerGateway) Allowance(ctx context.Context) (int64, error) {
	var amount int64
	err := gw.pool.QueryRow(ctx, `
		SELECT amount FROM ledger_allowances WHERE owner_address = $1 AND spender_address = $2
	`, gw.sessionAddress, gw.contractAddress).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read allowance: %w", ride.ErrTransientLookup)
	}
	return amount, nil
}

func (gw *LedgerGateway) RideRecord(ctx context.Context) (ride.Record, error) {
	var rec ride.Record
	var status int16
	err := gw.pool.QueryRow(ctx, `
		SELECT from_point, to_point, amount, status, COALESCE(vehicle_address, '')
		FROM ledger_rides
		WHERE contract_address = $1 AND rider_address = $2
	`, gw.contractAddress, gw.sessionAddress).Scan(&rec.From, &rec.To, &rec.Amount, &status, &rec.VehicleAddress)
	if errors.Is(err, pgx.ErrNoRows) {
		return ride.Record{}, nil // no active ride
	}
	if err != nil {
		return ride.Record{}, fmt.Errorf("read ride record: %w", ride.ErrTransientLookup)
	}
	rec.Status = ride.RecordStatus(status)
	return rec, nil
}
