package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseYAML parses the specific two-level mapping used by config.yaml
func parseYAML(r io.Reader, cfg *Config) error {
	type section int
	const (
		none section = iota
		lg
		rm
		st
		se
		pl
		sv
		jw
	)

	scanner := bufio.NewScanner(r)
	var cur section

	lineNo := 0
	seenTop := map[section]bool{}

	markTop := func(s section, name string) error {
		if seenTop[s] {
			return fmt.Errorf("line %d: duplicate '%s' section", lineNo, name)
		}
		seenTop[s] = true
		cur = s
		return nil
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		// strip comments
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}

		line := strings.TrimRight(raw, " \t\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// top-level section? (no leading spaces)
		if len(line) > 0 && (line[0] != ' ' && line[0] != '\t') {
			var err error
			switch strings.TrimSpace(line) {
			case "ledger:":
				err = markTop(lg, "ledger")
			case "rabbitmq:":
				err = markTop(rm, "rabbitmq")
			case "stream:":
				err = markTop(st, "stream")
			case "session:":
				err = markTop(se, "session")
			case "poll:":
				err = markTop(pl, "poll")
			case "services:":
				err = markTop(sv, "services")
			case "jwt:":
				err = markTop(jw, "jwt")
			default:
				return fmt.Errorf("line %d: unknown top-level key %q", lineNo, strings.TrimSuffix(strings.TrimSpace(line), ":"))
			}
			if err != nil {
				return err
			}
			continue
		}

		// expect indented "key: value"
		if cur == none {
			return fmt.Errorf("line %d: key without a section", lineNo)
		}
		trim := strings.TrimSpace(line)
		colon := strings.IndexByte(trim, ':')
		if colon <= 0 {
			return fmt.Errorf("line %d: expected 'key: value'", lineNo)
		}
		key := strings.TrimSpace(trim[:colon])
		val := strings.TrimLeft(strings.TrimSpace(trim[colon+1:]), " \t")

		switch cur {
		case lg:
			switch key {
			case "host":
				cfg.Ledger.Host = resolveScalar(val)
			case "port":
				p, err := strconv.Atoi(resolveScalar(val))
				if err != nil {
					return fmt.Errorf("line %d: ledger.port must be int: %v", lineNo, err)
				}
				cfg.Ledger.Port = p
			case "user":
				cfg.Ledger.User = resolveScalar(val)
			case "password":
				cfg.Ledger.Password = resolveScalar(val)
			case "database":
				cfg.Ledger.Name = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in ledger: %q", lineNo, key)
			}
		case rm:
			switch key {
			case "host":
				cfg.RabbitMQ.Host = resolveScalar(val)
			case "port":
				p, err := strconv.Atoi(resolveScalar(val))
				if err != nil {
					return fmt.Errorf("line %d: rabbitmq.port must be int: %v", lineNo, err)
				}
				cfg.RabbitMQ.Port = p
			case "user":
				cfg.RabbitMQ.User = resolveScalar(val)
			case "password":
				cfg.RabbitMQ.Password = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in rabbitmq: %q", lineNo, key)
			}
		case st:
			switch key {
			case "url":
				cfg.Stream.URL = resolveScalar(val)
			case "source":
				cfg.Stream.Source = strings.ToLower(resolveScalar(val))
			default:
				return fmt.Errorf("line %d: unknown key in stream: %q", lineNo, key)
			}
		case se:
			switch key {
			case "address":
				cfg.Session.Address = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in session: %q", lineNo, key)
			}
		case pl:
			switch key {
			case "interval_ms":
				p, err := strconv.Atoi(resolveScalar(val))
				if err != nil {
					return fmt.Errorf("line %d: poll.interval_ms must be int: %v", lineNo, err)
				}
				cfg.Poll.IntervalMS = p
			default:
				return fmt.Errorf("line %d: unknown key in poll: %q", lineNo, key)
			}
		case sv:
			switch key {
			case "session_service":
				p, err := strconv.Atoi(resolveScalar(val))
				if err != nil {
					return fmt.Errorf("line %d: services.session_service must be int: %v", lineNo, err)
				}
				cfg.Services.SessionServicePort = p
			case "relay_service":
				p, err := strconv.Atoi(resolveScalar(val))
				if err != nil {
					return fmt.Errorf("line %d: services.relay_service must be int: %v", lineNo, err)
				}
				cfg.Services.RelayServicePort = p
			default:
				return fmt.Errorf("line %d: unknown key in services: %q", lineNo, key)
			}
		case jw:
			switch key {
			case "secret_key":
				cfg.JWT.SecretKey = resolveScalar(val)
			default:
				return fmt.Errorf("line %d: unknown key in jwt: %q", lineNo, key)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	return nil
}

// resolveScalar trims whitespace and removes surrounding quotes from YAML-like scalars.
// For example:
//
//	"localhost"   -> localhost
//	'password123' -> password123
//	localhost     -> localhost
//
// This ensures values like jwt.secret_key are not stored with extra quotes.
func resolveScalar(s string) string {
	s = strings.TrimSpace(s)

	// if value is quoted with "..." or '...', remove quotes safely
	n := len(s)
	if n >= 2 {
		if (s[0] == '"' && s[n-1] == '"') || (s[0] == '\'' && s[n-1] == '\'') {
			if unq, err := strconv.Unquote(s); err == nil {
				return unq
			}
			// fallback if strconv.Unquote fails (e.g., mismatched quotes)
			return s[1 : n-1]
		}
	}

	return s
}
