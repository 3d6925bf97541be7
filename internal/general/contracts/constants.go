package contracts

import "strings"

// Exchanges
const (
	ExchangeTelemetryFanout = "telemetry_fanout"
	ExchangeRideTopic       = "ride_topic"
)

// Queues
const (
	QueueTelemetrySession  = "telemetry_session"
	QueueRideStatusSession = "ride_status_session"
)

// Routing patterns
const (
	RouteRideStatusPrefix = "ride.status." // {state slug}
	RouteSessionInit      = "session.init"
)

// AMQP message headers set by the relay.
const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderProducer      = "x-producer"
)

// RouteForState returns the routing key for a ride-status frame, slugging
// the human-readable state label ("To Pick Up" -> "ride.status.to_pick_up").
func RouteForState(state string) string {
	slug := strings.ToLower(strings.TrimSpace(state))
	slug = strings.ReplaceAll(slug, " ", "_")
	if slug == "" {
		slug = "unknown"
	}
	return RouteRideStatusPrefix + slug
}
