package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wirebound/wirebound/internal/session"
	"github.com/wirebound/wirebound/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wirebound.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverridesOnlyDefinedKeys(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
name = "edge-7"
host = "edge.example.com"
port = 443
security_mode = "production"

[tls]
enabled = true
cert_file = "client.crt"
key_file = "client.key"
ca_file = "ca.crt"

[retry]
max_attempts = 8
initial_delay = "250ms"
`)

	name, cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if name != "edge-7" {
		t.Fatalf("name=%q", name)
	}
	if cfg.Host != "edge.example.com" || cfg.Port != 443 {
		t.Fatalf("addr=%s", cfg.Address())
	}
	if cfg.SecurityMode != session.SecurityModeProduction {
		t.Fatalf("mode=%q", cfg.SecurityMode)
	}
	if !cfg.TLS.Enabled || cfg.TLS.CAFile != "ca.crt" {
		t.Fatalf("tls=%+v", cfg.TLS)
	}
	if cfg.Retry.MaxAttempts != 8 {
		t.Fatalf("max attempts=%d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.InitialDelay != 250*time.Millisecond {
		t.Fatalf("initial delay=%v", cfg.Retry.InitialDelay)
	}

	// Undefined keys keep their defaults.
	def := session.DefaultConfig()
	if cfg.Endpoint != def.Endpoint {
		t.Fatalf("endpoint=%q, want default", cfg.Endpoint)
	}
	if cfg.Retry.Multiplier != def.Retry.Multiplier {
		t.Fatalf("multiplier=%g, want default", cfg.Retry.Multiplier)
	}
	if cfg.Retry.MaxDelay != def.Retry.MaxDelay {
		t.Fatalf("max delay=%v, want default", cfg.Retry.MaxDelay)
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "")
	name, cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if name != "wirebound" {
		t.Fatalf("name=%q", name)
	}
	if cfg != session.DefaultConfig() {
		t.Fatalf("cfg=%+v, want defaults", cfg)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
[retry]
initial_delay = "soon"
`)
	if _, _, err := Load(path); err == nil {
		t.Fatal("bad duration must fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("missing file must fail")
	}
}

func TestWriteExampleRoundTrips(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "example.toml")
	if err := WriteExample(path, "starter"); err != nil {
		t.Fatalf("write example: %v", err)
	}

	name, cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load example: %v", err)
	}
	if name != "starter" {
		t.Fatalf("name=%q", name)
	}
	def := session.DefaultConfig()
	if cfg.Host != def.Host || cfg.Port != def.Port || cfg.Endpoint != def.Endpoint {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Retry != def.Retry {
		t.Fatalf("retry=%+v", cfg.Retry)
	}

	if err := WriteExample(path, "starter"); err == nil {
		t.Fatal("must refuse to overwrite")
	}
}
