package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"github.com/readmoa/moachat/schema"
)

// Config is the top-level client configuration.
type Config struct {
	ConfigVersion int             `mapstructure:"config_version" yaml:"config_version"`
	Server        ServerConfig    `mapstructure:"server" yaml:"server"`
	Auth          AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Rooms         RoomsConfig     `mapstructure:"rooms" yaml:"rooms"`
	Reconnect     ReconnectConfig `mapstructure:"reconnect" yaml:"reconnect"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ServerConfig locates the chat backend.
type ServerConfig struct {
	// HTTPBase is the REST endpoint base, e.g. https://chat.example.com.
	HTTPBase string `mapstructure:"http_base" yaml:"http_base"`
	// WSBase is the websocket endpoint base, e.g. wss://chat.example.com.
	WSBase string `mapstructure:"ws_base" yaml:"ws_base"`
	// TimeoutSeconds bounds REST calls.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// AuthConfig supplies the bearer credential. TokenFile wins over Token and
// is re-read at every connect attempt, so rotating the file takes effect on
// the next reconnect.
type AuthConfig struct {
	Token     string `mapstructure:"token" yaml:"token"`
	TokenFile string `mapstructure:"token_file" yaml:"token_file"`
}

// RoomsConfig bounds the session dock.
type RoomsConfig struct {
	MaxOpen int `mapstructure:"max_open" yaml:"max_open"`
}

// ReconnectConfig tunes per-room stream recovery.
type ReconnectConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
	DelayMs     int `mapstructure:"delay_ms" yaml:"delay_ms"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Server: ServerConfig{
			HTTPBase:       "https://chat.readmoa.net",
			WSBase:         "wss://chat.readmoa.net",
			TimeoutSeconds: int(schema.DefaultHTTPTimeout / time.Second),
		},
		Rooms: RoomsConfig{MaxOpen: schema.DefaultMaxOpenRooms},
		Reconnect: ReconnectConfig{
			MaxAttempts: schema.DefaultMaxReconnectAttempts,
			DelayMs:     int(schema.DefaultReconnectDelay / time.Millisecond),
		},
	}
}

// DefaultConfigPath returns the per-user config location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".moachat", "config.yaml"), nil
}

// ClientConfig converts the file shape into core limits.
func (c Config) ClientConfig() schema.ClientConfig {
	return schema.ClientConfig{
		MaxOpenRooms:         c.Rooms.MaxOpen,
		MaxReconnectAttempts: c.Reconnect.MaxAttempts,
		ReconnectDelay:       time.Duration(c.Reconnect.DelayMs) * time.Millisecond,
		HTTPTimeout:          time.Duration(c.Server.TimeoutSeconds) * time.Second,
	}
}
