package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	doc := `[client]
name = "bob"

[network]
server = "game.example.net:9190"

[logging]
level = "debug"
file = "ghack.log"

[script]
enabled = true

[replay]
enabled = true
path = "out.journal"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Client.Name != "bob" {
		t.Errorf("name = %q", cfg.Client.Name)
	}
	if cfg.Network.Server != "game.example.net:9190" {
		t.Errorf("server = %q", cfg.Network.Server)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.File != "ghack.log" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if !cfg.Script.Enabled {
		t.Error("script not enabled")
	}
	if !cfg.Replay.Enabled || cfg.Replay.Path != "out.journal" {
		t.Errorf("replay = %+v", cfg.Replay)
	}

	// Unset fields keep their defaults.
	if cfg.Network.Transport != "tcp" {
		t.Errorf("transport = %q, want default tcp", cfg.Network.Transport)
	}
	if cfg.Network.DialTimeout != 10*time.Second {
		t.Errorf("dial timeout = %v, want default 10s", cfg.Network.DialTimeout)
	}
	if cfg.Logging.MaxBackups != 3 {
		t.Errorf("max backups = %d, want default 3", cfg.Logging.MaxBackups)
	}
	if cfg.Script.Dir != "scripts" {
		t.Errorf("script dir = %q, want default", cfg.Script.Dir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	if err := os.WriteFile(path, []byte("[client\nname ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
