package schema

import (
	"errors"
	"time"
)

// ClientConfig defines defaults and limits for the connection core.
type ClientConfig struct {
	// MaxOpenRooms caps simultaneously open room panels (and therefore
	// live streams). Enforced at the dock, not the multiplexer.
	MaxOpenRooms int
	// MaxReconnectAttempts caps automatic reconnects per unclean drop.
	MaxReconnectAttempts int
	// ReconnectDelay is the fixed delay between reconnect attempts.
	ReconnectDelay time.Duration
	// ReadLimit bounds the size of a single inbound frame in bytes.
	ReadLimit int64
	// HTTPTimeout bounds REST message and job submissions.
	HTTPTimeout time.Duration
}

// Default limits for the connection core.
const (
	DefaultMaxOpenRooms         = 5
	DefaultMaxReconnectAttempts = 5
	DefaultReconnectDelay       = 3 * time.Second
	DefaultReadLimit            = 1 << 20
	DefaultHTTPTimeout          = 30 * time.Second
)

// NormalizeClientConfig applies defaults and validates the config.
func NormalizeClientConfig(cfg ClientConfig) (ClientConfig, error) {
	if cfg.MaxOpenRooms == 0 {
		cfg.MaxOpenRooms = DefaultMaxOpenRooms
	}
	if cfg.MaxOpenRooms < 0 {
		return ClientConfig{}, errors.New("max open rooms must be positive")
	}
	if cfg.MaxReconnectAttempts == 0 {
		cfg.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if cfg.MaxReconnectAttempts < 0 {
		return ClientConfig{}, errors.New("max reconnect attempts must not be negative")
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = DefaultReadLimit
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	return cfg, nil
}
