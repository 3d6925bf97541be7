package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"ride-session/internal/general/contracts"
	"ride-session/internal/general/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	headers  map[string]any
	body     []byte
}

type capturePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *capturePublisher) Publish(exchange, routingKey string, headers map[string]any, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{exchange: exchange, key: routingKey, headers: headers, body: body})
	return nil
}

type scriptedSource struct {
	frames []contracts.StreamMessage
}

func (s *scriptedSource) Run(ctx context.Context, handle func(context.Context, contracts.StreamMessage) error) error {
	for _, f := range s.frames {
		if err := handle(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func TestRelayRoutesFramesByKind(t *testing.T) {
	pub := &capturePublisher{}
	source := &scriptedSource{frames: []contracts.StreamMessage{
		{Testing: "false", MrmAddress: "0xmrm"},
		{Type: contracts.TypeCar, ID: "C1", X: "1", Y: "2", Orientation: "0"},
		{Type: contracts.TypeStoplight, ID: "S1", North: "0", East: "2", South: "0", West: "2"},
		{Type: contracts.TypeRideStatus, Address: "0xrider", ID: "C1", State: "To Pick Up"},
		{Type: "Drone", ID: "D1"}, // unknown: dropped
	}}

	svc := NewRelayService(logger.New("relay-test"), source, pub)
	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, pub.msgs, 4, "unknown frames are not republished")

	// handshake goes through the topic exchange under the session-init key
	assert.Equal(t, contracts.ExchangeRideTopic, pub.msgs[0].exchange)
	assert.Equal(t, contracts.RouteSessionInit, pub.msgs[0].key)

	// telemetry fans out with no routing key
	assert.Equal(t, contracts.ExchangeTelemetryFanout, pub.msgs[1].exchange)
	assert.Empty(t, pub.msgs[1].key)
	assert.Equal(t, contracts.ExchangeTelemetryFanout, pub.msgs[2].exchange)

	// ride status routes by slugged state
	assert.Equal(t, contracts.ExchangeRideTopic, pub.msgs[3].exchange)
	assert.Equal(t, "ride.status.to_pick_up", pub.msgs[3].key)

	// the frame survives the bridge intact
	var out contracts.StreamMessage
	require.NoError(t, json.Unmarshal(pub.msgs[3].body, &out))
	assert.Equal(t, "0xrider", out.Address)
	assert.Equal(t, "To Pick Up", out.State)

	// relay metadata rides along as headers
	for _, m := range pub.msgs {
		assert.NotEmpty(t, m.headers[contracts.HeaderCorrelationID])
		assert.Equal(t, "relay-service", m.headers[contracts.HeaderProducer])
	}
}
