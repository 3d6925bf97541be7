package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ride-session/internal/general/config"
	"ride-session/internal/general/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client owns one AMQP connection carrying the session stream topology and
// reconnects on its own. Consumers and the relay publisher see a failed call
// while the connection is down and retry at their level.
type Client struct {
	url    string
	logger *logger.Logger
	logCtx context.Context // reconnects must keep logging after the dial ctx ends

	mu      sync.RWMutex
	conn    *amqp.Connection
	pubChan *amqp.Channel

	pubMu       sync.Mutex
	pubConfirms chan amqp.Confirmation

	closed    chan struct{}
	reconnect chan struct{}
}

// ConnectRabbitMQ dials the broker, declares the stream topology, and starts
// the reconnect watcher. The first dial is a single attempt: a misconfigured
// broker should fail service startup, not retry silently.
func ConnectRabbitMQ(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Client, error) {
	client := &Client{
		url:       fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port),
		logger:    logger,
		logCtx:    context.WithoutCancel(ctx),
		closed:    make(chan struct{}),
		reconnect: make(chan struct{}, 1),
	}
	if err := client.establish(); err != nil {
		return nil, err
	}
	go client.reconnectLoop()
	return client, nil
}

// Close stops the watcher and tears down the connection.
func (client *Client) Close() {
	select {
	case <-client.closed:
	default:
		close(client.closed)
	}

	client.mu.Lock()
	if client.pubChan != nil {
		_ = client.pubChan.Close()
		client.pubChan = nil
	}
	if client.conn != nil {
		_ = client.conn.Close()
		client.conn = nil
	}
	client.mu.Unlock()

	client.pubMu.Lock()
	if client.pubConfirms != nil {
		close(client.pubConfirms) // unblock any publish waiting on a confirm
		client.pubConfirms = nil
	}
	client.pubMu.Unlock()
}

// establish dials once and installs a working connection: topology declared,
// a confirm-mode publishing channel for the relay bridge, and close
// notifications wired to the reconnect watcher.
func (client *Client) establish() error {
	conn, err := amqp.DialConfig(client.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(30 * time.Second),
	})
	if err != nil {
		client.logger.Error(client.logCtx, "broker_dial_failed", "Could not dial the message broker", err, nil)
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		client.logger.Error(client.logCtx, "broker_channel_failed", "Could not open the publishing channel", err, nil)
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		client.logger.Error(client.logCtx, "broker_topology_failed", "Could not declare the stream topology", err, nil)
		return fmt.Errorf("rabbitmq: declare topology: %w", err)
	}

	// the relay publishes with confirms, so a dropped frame surfaces as an error
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		client.logger.Error(client.logCtx, "broker_confirms_failed", "Could not enable publisher confirms", err, nil)
		return fmt.Errorf("rabbitmq: enable confirms: %w", err)
	}

	client.pubMu.Lock()
	oldConfirms := client.pubConfirms
	client.pubConfirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	client.pubMu.Unlock()
	if oldConfirms != nil {
		close(oldConfirms)
	}

	// frames published with mandatory=true come back here when unroutable
	returns := ch.NotifyReturn(make(chan amqp.Return, 1))
	go func() {
		for r := range returns {
			client.logger.Error(client.logCtx, "broker_frame_unroutable", "Broker returned an unroutable frame",
				fmt.Errorf("code=%d text=%s", r.ReplyCode, r.ReplyText),
				map[string]any{"exchange": r.Exchange, "routing_key": r.RoutingKey, "size": len(r.Body)})
		}
	}()

	client.mu.Lock()
	if client.pubChan != nil && !client.pubChan.IsClosed() {
		_ = client.pubChan.Close()
	}
	client.conn = conn
	client.pubChan = ch
	client.mu.Unlock()

	go client.notifyOnClose(conn, ch)

	client.logger.Info(client.logCtx, "broker_connected", "Message broker connection established", nil)
	return nil
}

// notifyOnClose queues a reconnect when either the connection or the
// publishing channel dies.
func (client *Client) notifyOnClose(conn *amqp.Connection, ch *amqp.Channel) {
	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-client.closed:
		return
	case <-connClosed:
	case <-chClosed:
	}

	select {
	case client.reconnect <- struct{}{}:
	default: // a reconnect is already queued
	}
}

// reconnectLoop redials with capped doubling backoff until Close. Topology
// is re-declared on every successful dial, so the stream queues survive a
// broker restart.
func (client *Client) reconnectLoop() {
	for {
		select {
		case <-client.closed:
			return
		case <-client.reconnect:
		}

		backoff := time.Second
		for {
			select {
			case <-client.closed:
				return
			default:
			}

			err := client.establish()
			if err == nil {
				client.logger.Info(client.logCtx, "broker_reconnected", "Message broker connection re-established", nil)
				break
			}

			client.logger.Error(client.logCtx, "broker_reconnect_failed", "Reconnect attempt failed; backing off", err,
				map[string]any{"backoff": backoff.String()})
			time.Sleep(backoff)
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
		}
	}
}

// consumerChannel opens a fresh channel with the given prefetch applied.
func (client *Client) consumerChannel(prefetch int) (*amqp.Channel, error) {
	client.mu.RLock()
	conn := client.conn
	client.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return nil, errors.New("rabbitmq: connection is not ready")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("rabbitmq: prefetch %d: %w", prefetch, err)
		}
	}
	return ch, nil
}
