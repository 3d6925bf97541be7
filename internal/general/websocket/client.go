package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ride-session/internal/general/contracts"
	"ride-session/internal/general/logger"

	"github.com/gorilla/websocket"
)

// Client is a resilient websocket stream client with auto-reconnect. It
// implements the stream source contract: every frame read from the socket is
// decoded and handed to the dispatcher's handler.
type Client struct {
	url    string
	logger *logger.Logger
}

// NewClient builds a client for the given websocket URL.
func NewClient(url string, logger *logger.Logger) *Client {
	return &Client{url: url, logger: logger}
}

// Run connects and reads frames until ctx is cancelled, reconnecting with
// exponential backoff on any failure. Undecodable frames are dropped after
// logging; handler errors are logged and do not tear the connection down.
func (client *Client) Run(ctx context.Context, handle func(context.Context, contracts.StreamMessage) error) error {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := client.readLoop(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		client.logger.Error(ctx, "stream_disconnected", "Websocket stream lost; reconnecting", err, map[string]any{
			"url":     client.url,
			"backoff": backoff.String(),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		// cap the backoff
		if backoff < 30*time.Second {
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
		}
	}
}

// readLoop dials once and pumps frames until the socket or ctx dies.
func (client *Client) readLoop(ctx context.Context, handle func(context.Context, contracts.StreamMessage) error) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, client.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial %s: %w", client.url, err)
	}
	defer conn.Close()

	client.logger.Info(ctx, "stream_connected", "Websocket stream established", map[string]any{"url": client.url})

	// unblock ReadMessage when ctx is cancelled
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("websocket read: %w", err)
		}

		var msg contracts.StreamMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			client.logger.Error(ctx, "stream_decode_failed", "Dropping undecodable stream frame", err, map[string]any{
				"size": len(raw),
			})
			continue
		}

		if err := handle(ctx, msg); err != nil {
			client.logger.Error(ctx, "stream_handle_failed", "Stream message handler failed", err, map[string]any{
				"type": msg.Type,
			})
		}
	}
}
