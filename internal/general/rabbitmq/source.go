package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ride-session/internal/general/contracts"
	"ride-session/internal/general/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Stream frames are small and cheap to handle; a modest prefetch keeps a
// telemetry burst from piling up unacked deliveries.
const streamPrefetch = 32

// frameTimeout bounds the dispatcher's handling of a single frame.
const frameTimeout = 10 * time.Second

// StreamSource consumes the relay's queues and hands decoded stream
// messages to the session dispatcher. It is the broker-backed alternative
// to the direct websocket feed.
type StreamSource struct {
	client *Client
	logger *logger.Logger
}

// NewStreamSource builds a stream source over an established client.
func NewStreamSource(client *Client, logger *logger.Logger) *StreamSource {
	return &StreamSource{client: client, logger: logger}
}

// Run consumes the telemetry and ride status queues until ctx is cancelled
// or either consumer fails. Frames from both queues funnel into the same
// handle callback; ordering holds per queue, not across queues.
func (source *StreamSource) Run(ctx context.Context, handle func(context.Context, contracts.StreamMessage) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	telemetryErr := make(chan error, 1)
	statusErr := make(chan error, 1)
	go func() {
		telemetryErr <- source.consumeQueue(runCtx, contracts.QueueTelemetrySession, "session-telemetry", handle)
	}()
	go func() {
		statusErr <- source.consumeQueue(runCtx, contracts.QueueRideStatusSession, "session-ride-status", handle)
	}()

	var err error
	select {
	case err = <-telemetryErr:
	case err = <-statusErr:
	}
	cancel()
	return err
}

// consumeQueue opens a dedicated channel on the queue and pumps deliveries
// through the frame dispatcher with manual acks.
func (source *StreamSource) consumeQueue(
	ctx context.Context,
	queue, tag string,
	handle func(context.Context, contracts.StreamMessage) error,
) error {
	ch, err := source.client.consumerChannel(streamPrefetch)
	if err != nil {
		return err
	}
	defer ch.Close()

	deliveries, err := ch.Consume(
		queue,
		tag,
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume %s: %w", queue, err)
	}
	closed := ch.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			_ = ch.Cancel(tag, false)
			return nil

		case cerr := <-closed:
			if cerr != nil {
				return fmt.Errorf("rabbitmq: channel closed while consuming %s: %w", queue, cerr)
			}
			return nil

		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			source.dispatch(ctx, queue, d, handle)
		}
	}
}

// dispatch decodes one delivery and settles it. Undecodable bodies are acked
// away after logging: redelivery cannot fix a malformed frame. A handler
// error nacks without requeue so a poison frame cannot wedge the queue.
func (source *StreamSource) dispatch(
	ctx context.Context,
	queue string,
	d amqp.Delivery,
	handle func(context.Context, contracts.StreamMessage) error,
) {
	var msg contracts.StreamMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		source.logger.Error(ctx, "stream_decode_failed", "Dropping undecodable stream message", err, map[string]any{
			"queue": queue,
			"size":  len(d.Body),
		})
		_ = d.Ack(false)
		return
	}

	hCtx, cancel := context.WithTimeout(ctx, frameTimeout)
	err := handle(hCtx, msg)
	cancel()
	if err != nil {
		source.logger.Error(ctx, "stream_frame_failed", "Dropping stream frame the session could not handle", err, map[string]any{
			"queue": queue,
		})
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
