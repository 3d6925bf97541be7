package ports

import (
	"context"

	"ride-session/internal/domain/geo"
	"ride-session/internal/domain/ride"
	"ride-session/internal/general/contracts"
)

// LedgerGateway wraps the ledger boundary: submit an action, check whether a
// previous submission finalized, and point-read ledger-held quantities. All
// calls are stateless; the confirmation coordinator owns retry policy.
//
// Submissions fail with ride.ErrRejectedByAuthority (wrapped) when the
// ledger synchronously refuses. Polls and reads fail with
// ride.ErrTransientLookup (wrapped) when the ledger cannot be reached;
// callers treat that as "still pending" and retry.
type LedgerGateway interface {
	RequestRide(ctx context.Context, from, to string, amount int64) (ride.Receipt, error)
	ApproveAllowance(ctx context.Context, amount int64) (ride.Receipt, error)
	AcquireFunds(ctx context.Context, amount int64) (ride.Receipt, error)
	FinishRide(ctx context.Context) (ride.Receipt, error)

	PollFinalization(ctx context.Context, receipt ride.Receipt) (ride.Finality, error)

	Balance(ctx context.Context) (int64, error)
	Allowance(ctx context.Context) (int64, error)
	RideRecord(ctx context.Context) (ride.Record, error)
}

// StreamSource is the single inbound push channel. Run blocks, delivering
// every decoded stream message to handle in arrival order until ctx is
// cancelled or the source fails terminally.
type StreamSource interface {
	Run(ctx context.Context, handle func(ctx context.Context, msg contracts.StreamMessage) error) error
}

// TelemetrySink receives vehicle and signal telemetry forwarded by the
// stream dispatcher. Updates are keyed by entity id and last-write-wins;
// sinks never reject an update.
type TelemetrySink interface {
	UpsertVehicle(telemetry geo.VehicleTelemetry)
	UpsertSignal(state geo.SignalState)
}

// StreamPublisher republishes stream frames to the message broker. Used by
// the relay service to bridge the simulator's socket into broker topology.
// Headers carry relay metadata (correlation id, producer name); nil is fine.
type StreamPublisher interface {
	Publish(exchange, routingKey string, headers map[string]any, body []byte) error
}
