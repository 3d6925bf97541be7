package sessionservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"ride-session/internal/domain/session"
	"ride-session/internal/general/config"
	"ride-session/internal/general/contracts"
	"ride-session/internal/general/jwt"
	"ride-session/internal/general/logger"
	"ride-session/internal/general/memledger"
	"ride-session/internal/general/postgres"
	"ride-session/internal/general/rabbitmq"
	"ride-session/internal/general/telemetry"
	"ride-session/internal/general/websocket"
	"ride-session/internal/ports"
	"ride-session/internal/software/session/handler"
	"ride-session/internal/software/session/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// confirmAfterPolls is how many polls the in-memory ledger takes to finalize
// a submission in simulation-only mode.
const confirmAfterPolls = 3

// Run wires the session service and blocks until ctx is cancelled.
func Run(ctx context.Context, maxConcurrent int) error {
	// set up a new logger and context with a static request ID for startup logs
	logger := logger.New("session-service")
	ctx = logger.WithRequestID(ctx, "startup-001")

	// load a config from file
	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	identity, err := session.NewIdentity(cfg.Session.Address)
	if err != nil {
		logger.Error(ctx, "identity_invalid", "Session address is not configured", err, nil)
		return err
	}

	// the ledger pool is opened lazily: which ledger the session talks to is
	// only known once the stream handshake arrives
	var poolMu sync.Mutex
	var pool *pgxpool.Pool
	defer func() {
		poolMu.Lock()
		if pool != nil {
			pool.Close()
		}
		poolMu.Unlock()
	}()

	provider := func(pctx context.Context, init contracts.StreamMessage) (ports.LedgerGateway, error) {
		if init.SimulationOnly() {
			logger.Info(pctx, "ledger_selected", "Simulation-only mode; using the in-memory ledger", nil)
			return memledger.New(confirmAfterPolls), nil
		}

		if strings.TrimSpace(init.MrmAddress) == "" {
			return nil, fmt.Errorf("handshake announced a real ledger without a contract address")
		}

		p, err := postgres.NewPool(pctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect ledger database: %w", err)
		}
		poolMu.Lock()
		pool = p
		poolMu.Unlock()

		logger.Info(pctx, "ledger_selected", "Real ledger mode; gateway bound to contract",
			map[string]any{"contract_address": init.MrmAddress})
		return postgres.NewLedgerGateway(p, init.MrmAddress, identity.String()), nil
	}

	// set up session state and the service itself
	store := telemetry.NewStore()
	svc := service.NewService(ctx, logger, identity, store, provider, cfg.PollInterval())

	// pick the stream source: direct simulator socket, or the relay's queues
	var source ports.StreamSource
	switch strings.ToLower(strings.TrimSpace(cfg.Stream.Source)) {
	case "", "websocket":
		source = websocket.NewClient(cfg.Stream.URL, logger)
	case "rabbitmq":
		rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, logger)
		if err != nil {
			logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
			return err
		}
		defer rmq.Close()
		source = rabbitmq.NewStreamSource(rmq, logger)
	default:
		return fmt.Errorf("unknown stream source %q (want websocket or rabbitmq)", cfg.Stream.Source)
	}

	// set up the JWT manager
	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, 2*time.Hour)

	// set up the HTTP handler and its routes
	mux := http.NewServeMux()
	httpHandler := handler.NewSessionHTTPHandler(svc, logger, jwtManager)
	httpHandler.RegisterRoutes(mux)

	// concurrency limiter (global) — blocks when capacity is full
	limitedHandler := withConcurrencyLimit(maxConcurrent, mux)

	// set up the server configurations
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Services.SessionServicePort),
		Handler:           limitedHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info(ctx, "service_started",
		fmt.Sprintf("Session Service started on port %d", cfg.Services.SessionServicePort),
		map[string]any{
			"port":           cfg.Services.SessionServicePort,
			"max_concurrent": maxConcurrent,
			"stream_source":  cfg.Stream.Source,
		},
	)

	errCh := make(chan error, 2)

	// run the stream pump; it reconnects internally and only returns on ctx
	// cancel or a terminal source failure
	go func() {
		if err := source.Run(ctx, svc.HandleStream); err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("stream source failed: %w", err)
			return
		}
		errCh <- nil
	}()

	// start the server in a background goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	// wait for context cancellation or a terminal error
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
			logger.Error(ctx, "service_terminated", "Session service terminated with error", err, nil)
			return err
		}
	}

	return nil
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
// It controls how many HTTP requests can be in-progress at the same time.
func withConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}: // acquire
			defer func() { <-sem }() // release
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			// client canceled or server is shutting down
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
