package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ride-session/internal/domain/geo"
	"ride-session/internal/domain/ride"
	"ride-session/internal/general/contracts"
)

// HandleStream is the single entry point for inbound stream messages. The
// first frame must be the session-init handshake, which selects the ledger
// gateway; everything after is routed by kind. Frames that cannot advance the
// session (unknown kinds, other riders' status, out-of-order transitions) are
// logged and dropped so the stream never stalls.
func (svc *Service) HandleStream(ctx context.Context, msg contracts.StreamMessage) error {
	kind := msg.Kind()

	if !svc.ready() {
		if kind != contracts.KindHandshake {
			svc.logger.Debug(ctx, "stream_frame_before_handshake", "Dropping frame received before handshake",
				map[string]any{"kind": kind.String()})
			return nil
		}
		return svc.activate(ctx, msg)
	}

	switch kind {
	case contracts.KindHandshake:
		// one-shot: repeated handshakes after activation carry nothing new
		svc.logger.Debug(ctx, "handshake_repeated", "Ignoring repeated session-init handshake", nil)
		return nil

	case contracts.KindVehicleTelemetry:
		svc.applyVehicle(ctx, msg)
		return nil

	case contracts.KindSignalTelemetry:
		svc.applySignal(ctx, msg)
		return nil

	case contracts.KindRideStatus:
		svc.applyRideStatus(ctx, msg)
		return nil

	default:
		svc.logger.Debug(ctx, "stream_frame_unknown", "Dropping unclassifiable stream frame",
			map[string]any{"type": msg.Type})
		return nil
	}
}

// ready reports whether the handshake has installed a gateway.
func (svc *Service) ready() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.handshook
}

// activate consumes the handshake: build the gateway for the announced mode
// and pull the first authoritative snapshot, so a session that reconnects
// mid-ride resumes in the right phase.
func (svc *Service) activate(ctx context.Context, init contracts.StreamMessage) error {
	gw, err := svc.provider(ctx, init)
	if err != nil {
		return fmt.Errorf("select ledger gateway: %w", err)
	}

	svc.mu.Lock()
	if svc.handshook {
		svc.mu.Unlock()
		return nil
	}
	svc.gateway = gw
	svc.handshook = true
	svc.mu.Unlock()

	svc.logger.Info(ctx, "session_initialized", "Stream handshake complete; ledger gateway selected",
		map[string]any{
			"simulation_only":  init.SimulationOnly(),
			"contract_address": init.MrmAddress,
		})

	svc.refresh(ctx)
	return nil
}

// applyVehicle decodes and stores one vehicle telemetry frame.
func (svc *Service) applyVehicle(ctx context.Context, msg contracts.StreamMessage) {
	x, errX := strconv.ParseFloat(msg.X, 64)
	y, errY := strconv.ParseFloat(msg.Y, 64)
	heading, errH := strconv.ParseFloat(msg.Orientation, 64)
	if msg.ID == "" || errX != nil || errY != nil || errH != nil {
		svc.logger.Debug(ctx, "vehicle_frame_invalid", "Dropping malformed vehicle telemetry",
			map[string]any{"id": msg.ID, "x": msg.X, "y": msg.Y, "orientation": msg.Orientation})
		return
	}

	svc.store.UpsertVehicle(geo.VehicleTelemetry{
		ID:             msg.ID,
		Pos:            geo.Coordinate{X: x, Y: y},
		HeadingDegrees: heading,
		UpdatedAt:      time.Now().UTC(),
	})
}

// applySignal decodes and stores one traffic signal frame.
func (svc *Service) applySignal(ctx context.Context, msg contracts.StreamMessage) {
	north, errN := geo.ParseSignalColor(msg.North)
	east, errE := geo.ParseSignalColor(msg.East)
	south, errS := geo.ParseSignalColor(msg.South)
	west, errW := geo.ParseSignalColor(msg.West)
	if msg.ID == "" || errN != nil || errE != nil || errS != nil || errW != nil {
		svc.logger.Debug(ctx, "signal_frame_invalid", "Dropping malformed signal telemetry",
			map[string]any{"id": msg.ID})
		return
	}

	svc.store.UpsertSignal(geo.SignalState{
		ID:        msg.ID,
		North:     north,
		East:      east,
		South:     south,
		West:      west,
		UpdatedAt: time.Now().UTC(),
	})
}

// applyRideStatus filters a status frame by subject and folds it into the
// lifecycle machine.
func (svc *Service) applyRideStatus(ctx context.Context, msg contracts.StreamMessage) {
	if !svc.identity.Matches(msg.Address) {
		// someone else's ride
		return
	}

	label, err := ride.ParseStatusLabel(msg.State)
	if err != nil {
		svc.logger.Debug(ctx, "ride_status_unknown", "Dropping ride status with unknown state",
			map[string]any{"state": msg.State})
		return
	}

	line, err := svc.sessionCtx.ApplyStatusEvent(ride.StatusEvent{
		Subject:   msg.Address,
		VehicleID: msg.ID,
		Label:     label,
	})
	if err != nil {
		if errors.Is(err, ride.ErrIllegalTransition) {
			svc.logger.Debug(ctx, "ride_status_out_of_order", "Dropping status event that does not fit the current phase",
				map[string]any{"state": label.String(), "phase": svc.sessionCtx.Phase().String()})
			return
		}
		svc.logger.Error(ctx, "ride_status_failed", "Could not apply ride status event", err,
			map[string]any{"state": label.String()})
		return
	}

	svc.logger.Info(ctx, "ride_status_applied", line,
		map[string]any{"state": label.String(), "phase": svc.sessionCtx.Phase().String()})
}
