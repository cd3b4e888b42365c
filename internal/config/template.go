package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/wirebound/wirebound/internal/session"
)

// Example returns a fully-populated file shape matching the defaults,
// for bootstrapping a new deployment.
func Example(name string) fileConfig {
	def := session.DefaultConfig()
	return fileConfig{
		Name:           name,
		Host:           def.Host,
		Port:           def.Port,
		Endpoint:       def.Endpoint,
		SecurityMode:   string(def.SecurityMode),
		ConnectTimeout: def.ConnectTimeout.String(),
		WriteTimeout:   def.WriteTimeout.String(),
		TLS: fileTLS{
			Enabled:  false,
			CertFile: "certs/node.crt",
			KeyFile:  "certs/node.key",
			CAFile:   "certs/ca.crt",
		},
		Retry: fileRetry{
			MaxAttempts:  def.Retry.MaxAttempts,
			InitialDelay: def.Retry.InitialDelay.String(),
			MaxDelay:     def.Retry.MaxDelay.String(),
			Multiplier:   def.Retry.Multiplier,
			JitterFactor: def.Retry.JitterFactor,
		},
	}
}

// WriteExample renders the example config as TOML at path. Refuses to
// clobber an existing file.
func WriteExample(path, name string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	data, err := toml.Marshal(Example(name))
	if err != nil {
		return fmt.Errorf("config: render example: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
