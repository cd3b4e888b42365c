package ws

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"github.com/wirebound/wirebound/internal/session"
)

// clientTLSConfig builds the dial-side TLS configuration from file
// paths supplied by the session config. Returns nil when TLS is off.
func clientTLSConfig(cfg session.TLSConfig, host string) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: host,
	}
	if strings.TrimSpace(cfg.ServerName) != "" {
		tlsCfg.ServerName = cfg.ServerName
	}
	if cfg.InsecureSkipVerify {
		tlsCfg.InsecureSkipVerify = true
	}

	if strings.TrimSpace(cfg.CAFile) != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("ws: read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("ws: no certificates parsed from %s", cfg.CAFile)
		}
		tlsCfg.RootCAs = pool
	}

	if strings.TrimSpace(cfg.CertFile) != "" && strings.TrimSpace(cfg.KeyFile) != "" {
		pair, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("ws: load client keypair: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{pair}
	}

	return tlsCfg, nil
}
