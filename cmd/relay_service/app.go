package relayservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"ride-session/internal/general/config"
	"ride-session/internal/general/logger"
	"ride-session/internal/general/rabbitmq"
	"ride-session/internal/general/websocket"
	"ride-session/internal/software/relay/handler"
	"ride-session/internal/software/relay/service"
)

// Run wires the relay service and blocks until ctx is cancelled. The relay
// dials the simulator's websocket and republishes every frame to the broker.
func Run(ctx context.Context) error {
	// set up a new logger and context with a static request ID for startup logs
	logger := logger.New("relay-service")
	ctx = logger.WithRequestID(ctx, "startup-001")

	// load a config from file
	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	// connect to RabbitMQ
	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()

	// set up the RabbitMQ publisher and the websocket stream client
	pub := rabbitmq.NewMQPublisher(rmq)
	source := websocket.NewClient(cfg.Stream.URL, logger)

	// set up the relay service
	svc := service.NewRelayService(logger, source, pub)

	// health endpoint only; the relay's real surface is the broker
	mux := http.NewServeMux()
	httpHandler := handler.NewRelayHTTPHandler(logger)
	httpHandler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Services.RelayServicePort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info(ctx, "service_started",
		fmt.Sprintf("Relay Service started on port %d", cfg.Services.RelayServicePort),
		map[string]any{"port": cfg.Services.RelayServicePort, "stream_url": cfg.Stream.URL},
	)

	errCh := make(chan error, 2)

	go func() {
		if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("relay bridge failed: %w", err)
			return
		}
		errCh <- nil
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(ctx, "shutdown_started", "Graceful shutdown started", nil)
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
	case err := <-errCh:
		if err != nil {
			logger.Error(ctx, "service_terminated", "Relay service terminated with error", err, nil)
			return err
		}
	}

	return nil
}
