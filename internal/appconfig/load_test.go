package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := DefaultConfig()
	if cfg.Server.HTTPBase != want.Server.HTTPBase || cfg.Server.WSBase != want.Server.WSBase {
		t.Fatalf("expected default endpoints, got %+v", cfg.Server)
	}
	if cfg.Rooms.MaxOpen != want.Rooms.MaxOpen {
		t.Fatalf("expected default room cap, got %d", cfg.Rooms.MaxOpen)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("expected current config version, got %d", cfg.ConfigVersion)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `config_version: 1
server:
  http_base: https://chat.internal.example
  ws_base: wss://chat.internal.example
  timeout_seconds: 10
auth:
  token: sekrit
rooms:
  max_open: 2
reconnect:
  max_attempts: 3
  delay_ms: 500
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPBase != "https://chat.internal.example" {
		t.Fatalf("unexpected http base %q", cfg.Server.HTTPBase)
	}
	if cfg.Auth.Token != "sekrit" || cfg.Rooms.MaxOpen != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Reconnect.MaxAttempts != 3 || cfg.Reconnect.DelayMs != 500 {
		t.Fatalf("unexpected reconnect config %+v", cfg.Reconnect)
	}

	client := cfg.ClientConfig()
	if client.MaxOpenRooms != 2 || client.MaxReconnectAttempts != 3 {
		t.Fatalf("client config conversion lost limits: %+v", client)
	}
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("config_version: 99\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "config_version") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestLoadRejectsBadEndpoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `config_version: 1
server:
  ws_base: http://wrong-scheme.example
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "ws_base") {
		t.Fatalf("expected ws_base error, got %v", err)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("write default: %v", err)
	}
	if written != path {
		t.Fatalf("expected %q, got %q", path, written)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Server.WSBase != DefaultConfig().Server.WSBase {
		t.Fatalf("round trip lost ws base, got %q", cfg.Server.WSBase)
	}
}
