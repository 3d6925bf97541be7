package memledger

import (
	"context"
	"testing"

	"ride-session/internal/domain/ride"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// finalize polls a receipt until it finalizes, bounded by the ledger's
// configured poll budget.
func finalize(t *testing.T, ledger *Ledger, receipt ride.Receipt, polls int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < polls; i++ {
		finality, err := ledger.PollFinalization(ctx, receipt)
		require.NoError(t, err)
		if finality.Finalized() {
			return
		}
	}
	t.Fatalf("receipt %s did not finalize within %d polls", receipt, polls)
}

func TestLedgerFullRideCycle(t *testing.T) {
	ctx := context.Background()
	ledger := New(2)

	r, err := ledger.AcquireFunds(ctx, 1000)
	require.NoError(t, err)
	finalize(t, ledger, r, 2)

	balance, err := ledger.Balance(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, balance)

	r, err = ledger.ApproveAllowance(ctx, 400)
	require.NoError(t, err)
	finalize(t, ledger, r, 2)

	r, err = ledger.RequestRide(ctx, "120,431", "80,15", 300)
	require.NoError(t, err)
	finalize(t, ledger, r, 2)

	rec, err := ledger.RideRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, ride.RecordRequested, rec.Status)
	assert.EqualValues(t, 300, rec.Amount)

	ledger.AssignVehicle("0xcar1")
	ledger.MarkArrived()

	rec, err = ledger.RideRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, ride.RecordArrived, rec.Status)
	assert.Equal(t, "0xcar1", rec.VehicleAddress)

	r, err = ledger.FinishRide(ctx)
	require.NoError(t, err)
	finalize(t, ledger, r, 2)

	balance, err = ledger.Balance(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 700, balance, "fare settled out of the balance")

	allowance, err := ledger.Allowance(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 100, allowance, "fare consumed the allowance")

	rec, err = ledger.RideRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, ride.RecordNone, rec.Status, "record cleared on finish")
}

func TestLedgerRejections(t *testing.T) {
	ctx := context.Background()
	ledger := New(1)

	_, err := ledger.AcquireFunds(ctx, 0)
	assert.ErrorIs(t, err, ride.ErrRejectedByAuthority)

	_, err = ledger.ApproveAllowance(ctx, 100)
	assert.ErrorIs(t, err, ride.ErrRejectedByAuthority, "cannot approve beyond the balance")

	// fund the account, then over-request against the allowance
	r, err := ledger.AcquireFunds(ctx, 500)
	require.NoError(t, err)
	finalize(t, ledger, r, 1)

	r, err = ledger.ApproveAllowance(ctx, 200)
	require.NoError(t, err)
	finalize(t, ledger, r, 1)

	_, err = ledger.RequestRide(ctx, "1,1", "2,2", 300)
	assert.ErrorIs(t, err, ride.ErrRejectedByAuthority, "allowance does not cover the fare")

	_, err = ledger.RequestRide(ctx, "not-a-point", "2,2", 100)
	assert.ErrorIs(t, err, ride.ErrRejectedByAuthority)

	_, err = ledger.FinishRide(ctx)
	assert.ErrorIs(t, err, ride.ErrRejectedByAuthority, "nothing to finish")

	// an open ride blocks a second request
	r, err = ledger.RequestRide(ctx, "1,1", "2,2", 150)
	require.NoError(t, err)
	finalize(t, ledger, r, 1)

	_, err = ledger.RequestRide(ctx, "3,3", "4,4", 10)
	assert.ErrorIs(t, err, ride.ErrRejectedByAuthority)

	// finish is still illegal until the vehicle arrives
	_, err = ledger.FinishRide(ctx)
	assert.ErrorIs(t, err, ride.ErrRejectedByAuthority)
}

func TestLedgerFinalizationBudget(t *testing.T) {
	ctx := context.Background()
	ledger := New(3)

	receipt, err := ledger.AcquireFunds(ctx, 100)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		finality, err := ledger.PollFinalization(ctx, receipt)
		require.NoError(t, err)
		assert.False(t, finality.Finalized(), "poll %d should still be pending", i+1)

		// the balance must not move before finalization
		balance, err := ledger.Balance(ctx)
		require.NoError(t, err)
		assert.Zero(t, balance)
	}

	finality, err := ledger.PollFinalization(ctx, receipt)
	require.NoError(t, err)
	assert.True(t, finality.Finalized())

	// polling a finalized receipt stays finalized
	finality, err = ledger.PollFinalization(ctx, receipt)
	require.NoError(t, err)
	assert.True(t, finality.Finalized())

	balance, err := ledger.Balance(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 100, balance)
}

func TestLedgerTransientFailures(t *testing.T) {
	ctx := context.Background()
	ledger := New(1)

	receipt, err := ledger.AcquireFunds(ctx, 50)
	require.NoError(t, err)

	ledger.InjectLookupFailures(2)
	for i := 0; i < 2; i++ {
		_, err := ledger.PollFinalization(ctx, receipt)
		assert.ErrorIs(t, err, ride.ErrTransientLookup)
	}

	finality, err := ledger.PollFinalization(ctx, receipt)
	require.NoError(t, err)
	assert.True(t, finality.Finalized(), "failures consumed; poll proceeds normally")

	// an unknown receipt reads as transient, not terminal
	_, err = ledger.PollFinalization(ctx, ride.Receipt("missing"))
	assert.ErrorIs(t, err, ride.ErrTransientLookup)
}
