package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Ledger struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string // YAML key: "database"
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	Stream struct {
		URL    string // simulator websocket endpoint, e.g. ws://localhost:8000/ws
		Source string // "websocket" or "rabbitmq"
	}
	Session struct {
		Address string // ledger account of the current user
	}
	Poll struct {
		IntervalMS int // delay between finalization polls
	}
	Services struct {
		SessionServicePort int
		RelayServicePort   int
	}
	JWT struct {
		SecretKey string
	}
}

// PollInterval returns the poll delay as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMS) * time.Millisecond
}

// LoadFromFile loads config from a YAML file to a Config struct, applies defaults, and validates required fields.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := parseYAML(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	// Ledger database (only used outside simulation-only mode)
	if cfg.Ledger.Host == "" {
		cfg.Ledger.Host = "localhost"
	}
	if cfg.Ledger.Port == 0 {
		cfg.Ledger.Port = 5432
	}

	// RabbitMQ
	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	// Stream
	if cfg.Stream.URL == "" {
		cfg.Stream.URL = "ws://localhost:8000/ws"
	}
	if cfg.Stream.Source == "" {
		cfg.Stream.Source = "websocket"
	}

	// Poll
	if cfg.Poll.IntervalMS == 0 {
		cfg.Poll.IntervalMS = 500
	}

	// Services
	if cfg.Services.SessionServicePort == 0 {
		cfg.Services.SessionServicePort = 3100
	}
	if cfg.Services.RelayServicePort == 0 {
		cfg.Services.RelayServicePort = 3101
	}

	if cfg.JWT.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			// fallback: time-based bytes
			key = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
		}
		cfg.JWT.SecretKey = base64.StdEncoding.EncodeToString(key)
	}
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	// Ledger database: host/port only; credentials are checked when a real
	// ledger connection is actually opened (simulation-only mode needs none).
	if c.Ledger.Port <= 0 || c.Ledger.Port > 65535 {
		problems = append(problems, "ledger.port must be in 1..65535")
	}

	// RabbitMQ
	if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
		problems = append(problems, "rabbitmq.port must be in 1..65535")
	}

	// Stream
	if !strings.HasPrefix(c.Stream.URL, "ws://") && !strings.HasPrefix(c.Stream.URL, "wss://") {
		problems = append(problems, "stream.url must be a ws:// or wss:// endpoint")
	}
	switch c.Stream.Source {
	case "websocket", "rabbitmq":
	default:
		problems = append(problems, "stream.source must be 'websocket' or 'rabbitmq'")
	}

	// Session
	if strings.TrimSpace(c.Session.Address) == "" {
		problems = append(problems, "session.address is required")
	}

	// Poll
	if c.Poll.IntervalMS < 10 {
		problems = append(problems, "poll.interval_ms must be >= 10")
	}

	// Services
	if c.Services.SessionServicePort <= 0 || c.Services.SessionServicePort > 65535 {
		problems = append(problems, "services.session_service must be in 1..65535")
	}
	if c.Services.RelayServicePort <= 0 || c.Services.RelayServicePort > 65535 {
		problems = append(problems, "services.relay_service must be in 1..65535")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
