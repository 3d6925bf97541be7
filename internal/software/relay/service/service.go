package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ride-session/internal/general/contracts"
	"ride-session/internal/general/logger"
	"ride-session/internal/ports"

	"github.com/google/uuid"
)

const producerName = "relay-service"

// Service bridges the simulator's websocket stream into the broker: every
// frame is republished on the exchange matching its kind, so any number of
// session services can consume one simulator feed.
type Service struct {
	logger *logger.Logger
	source ports.StreamSource
	pub    ports.StreamPublisher
}

// NewRelayService wires the websocket-to-broker bridge.
func NewRelayService(logger *logger.Logger, source ports.StreamSource, pub ports.StreamPublisher) *Service {
	return &Service{logger: logger, source: source, pub: pub}
}

// Run consumes the stream until ctx is cancelled, republishing each frame.
func (svc *Service) Run(ctx context.Context) error {
	return svc.source.Run(ctx, svc.bridge)
}

// bridge routes one frame. Telemetry fans out to every session; ride status
// and the handshake go through the topic exchange so consumers can bind
// selectively. Unknown frames are dropped, not errored: a malformed frame
// must never wedge the feed.
func (svc *Service) bridge(ctx context.Context, msg contracts.StreamMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode stream frame: %w", err)
	}

	headers := map[string]any{
		contracts.HeaderCorrelationID: uuid.NewString(),
		contracts.HeaderProducer:      producerName,
	}

	switch kind := msg.Kind(); kind {
	case contracts.KindHandshake:
		if err := svc.pub.Publish(contracts.ExchangeRideTopic, contracts.RouteSessionInit, headers, body); err != nil {
			return fmt.Errorf("publish handshake: %w", err)
		}
		svc.logger.Info(ctx, "handshake_relayed", "Session-init handshake republished",
			map[string]any{"simulation_only": msg.SimulationOnly()})

	case contracts.KindVehicleTelemetry, contracts.KindSignalTelemetry:
		if err := svc.pub.Publish(contracts.ExchangeTelemetryFanout, "", headers, body); err != nil {
			return fmt.Errorf("publish telemetry: %w", err)
		}

	case contracts.KindRideStatus:
		route := contracts.RouteForState(msg.State)
		if err := svc.pub.Publish(contracts.ExchangeRideTopic, route, headers, body); err != nil {
			return fmt.Errorf("publish ride status: %w", err)
		}
		svc.logger.Info(ctx, "ride_status_relayed", "Ride status republished",
			map[string]any{"route": route, "subject": msg.Address})

	default:
		svc.logger.Debug(ctx, "stream_frame_dropped", "Dropping unclassifiable stream frame",
			map[string]any{"type": msg.Type})
	}

	return nil
}
