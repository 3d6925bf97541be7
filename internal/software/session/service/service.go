package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"ride-session/internal/domain/geo"
	"ride-session/internal/domain/ride"
	"ride-session/internal/domain/session"
	"ride-session/internal/general/contracts"
	"ride-session/internal/general/logger"
	"ride-session/internal/general/telemetry"
	"ride-session/internal/ports"
)

// ErrStreamNotReady rejects user actions that arrive before the stream
// handshake has selected a ledger gateway.
var ErrStreamNotReady = errors.New("session stream has not completed its handshake")

// GatewayProvider turns the stream's session-init handshake into a ledger
// gateway: simulation-only handshakes get the in-memory ledger, real ones a
// gateway bound to the announced contract address.
type GatewayProvider func(ctx context.Context, init contracts.StreamMessage) (ports.LedgerGateway, error)

// Service owns the session state: the lifecycle context, the telemetry
// store, and the single pending action. It is both the user-action boundary
// and the stream message handler.
type Service struct {
	logger       *logger.Logger
	identity     session.Identity
	sessionCtx   *ride.Context
	store        *telemetry.Store
	provider     GatewayProvider
	pollInterval time.Duration

	// baseCtx is the service lifetime: confirmation loops run on it so they
	// outlive the submitting request but stop on shutdown.
	baseCtx context.Context

	mu        sync.Mutex // serializes guard+submit and handshake activation
	gateway   ports.LedgerGateway
	handshook bool
}

// NewService wires a session service. ctx bounds the service lifetime:
// cancelling it stops any in-flight confirmation loop. The gateway stays nil
// until the stream handshake arrives.
func NewService(
	ctx context.Context,
	logger *logger.Logger,
	identity session.Identity,
	store *telemetry.Store,
	provider GatewayProvider,
	pollInterval time.Duration,
) *Service {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Service{
		logger:       logger,
		identity:     identity,
		sessionCtx:   ride.NewContext(),
		store:        store,
		provider:     provider,
		pollInterval: pollInterval,
		baseCtx:      ctx,
	}
}

// View returns a consistent snapshot of the session state.
func (svc *Service) View() ride.View {
	return svc.sessionCtx.Snapshot()
}

// Vehicles returns the latest known telemetry for every vehicle.
func (svc *Service) Vehicles() []geo.VehicleTelemetry {
	return svc.store.Vehicles()
}

// Signals returns the latest known state of every traffic signal.
func (svc *Service) Signals() []geo.SignalState {
	return svc.store.Signals()
}

// currentGateway returns the active gateway, or nil before the handshake.
func (svc *Service) currentGateway() ports.LedgerGateway {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.gateway
}
