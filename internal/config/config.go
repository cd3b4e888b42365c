package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/wirebound/wirebound/internal/session"
)

type fileTLS struct {
	Enabled            bool   `toml:"enabled"`
	CertFile           string `toml:"cert_file"`
	KeyFile            string `toml:"key_file"`
	CAFile             string `toml:"ca_file"`
	ServerName         string `toml:"server_name"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

type fileRetry struct {
	MaxAttempts  int     `toml:"max_attempts"`
	InitialDelay string  `toml:"initial_delay"`
	MaxDelay     string  `toml:"max_delay"`
	Multiplier   float64 `toml:"multiplier"`
	JitterFactor float64 `toml:"jitter_factor"`
}

type fileConfig struct {
	Name           string    `toml:"name"`
	Host           string    `toml:"host"`
	Port           int       `toml:"port"`
	Endpoint       string    `toml:"endpoint"`
	SecurityMode   string    `toml:"security_mode"`
	ConnectTimeout string    `toml:"connect_timeout"`
	WriteTimeout   string    `toml:"write_timeout"`
	TLS            fileTLS   `toml:"tls"`
	Retry          fileRetry `toml:"retry"`
}

// Load reads a TOML session config, starting from defaults and
// overriding only the keys the file actually defines. Returns the
// node name beside the config.
func Load(path string) (string, session.Config, error) {
	cfg := session.DefaultConfig()
	name := "wirebound"

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return "", session.Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("name") && strings.TrimSpace(raw.Name) != "" {
		name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("endpoint") {
		cfg.Endpoint = strings.TrimSpace(raw.Endpoint)
	}
	if meta.IsDefined("security_mode") {
		cfg.SecurityMode = session.SecurityMode(strings.TrimSpace(raw.SecurityMode))
	}
	if meta.IsDefined("connect_timeout") {
		d, err := parseDuration("connect_timeout", raw.ConnectTimeout)
		if err != nil {
			return "", session.Config{}, err
		}
		cfg.ConnectTimeout = d
	}
	if meta.IsDefined("write_timeout") {
		d, err := parseDuration("write_timeout", raw.WriteTimeout)
		if err != nil {
			return "", session.Config{}, err
		}
		cfg.WriteTimeout = d
	}

	if meta.IsDefined("tls") {
		cfg.TLS = session.TLSConfig{
			Enabled:            raw.TLS.Enabled,
			CertFile:           strings.TrimSpace(raw.TLS.CertFile),
			KeyFile:            strings.TrimSpace(raw.TLS.KeyFile),
			CAFile:             strings.TrimSpace(raw.TLS.CAFile),
			ServerName:         strings.TrimSpace(raw.TLS.ServerName),
			InsecureSkipVerify: raw.TLS.InsecureSkipVerify,
		}
	}

	if meta.IsDefined("retry", "max_attempts") {
		cfg.Retry.MaxAttempts = raw.Retry.MaxAttempts
	}
	if meta.IsDefined("retry", "initial_delay") {
		d, err := parseDuration("retry.initial_delay", raw.Retry.InitialDelay)
		if err != nil {
			return "", session.Config{}, err
		}
		cfg.Retry.InitialDelay = d
	}
	if meta.IsDefined("retry", "max_delay") {
		d, err := parseDuration("retry.max_delay", raw.Retry.MaxDelay)
		if err != nil {
			return "", session.Config{}, err
		}
		cfg.Retry.MaxDelay = d
	}
	if meta.IsDefined("retry", "multiplier") {
		cfg.Retry.Multiplier = raw.Retry.Multiplier
	}
	if meta.IsDefined("retry", "jitter_factor") {
		cfg.Retry.JitterFactor = raw.Retry.JitterFactor
	}

	return name, cfg, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
