package session

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/wirebound/wirebound/internal/retry"
)

type SecurityMode string

const (
	SecurityModeDevelopment SecurityMode = "development"
	SecurityModeProduction  SecurityMode = "production"
)

var (
	ErrHostRequired     = errors.New("session: host required")
	ErrInvalidPort      = errors.New("session: port must be within 1-65535")
	ErrEndpointRequired = errors.New("session: endpoint path required")

	ErrInvalidSecurityMode     = errors.New("session: invalid security mode")
	ErrTLSRequired             = errors.New("session: tls required")
	ErrTLSCertFileRequired     = errors.New("session: tls cert file required")
	ErrTLSKeyFileRequired      = errors.New("session: tls key file required")
	ErrTLSCAFileRequired       = errors.New("session: tls ca file required")
	ErrTLSInsecureSkipNotAllow = errors.New("session: insecure skip verify not allowed")
)

// TLSConfig locates the transport security material. The session core
// never reads these files itself; they are handed to the transport.
type TLSConfig struct {
	Enabled            bool
	CertFile           string
	KeyFile            string
	CAFile             string
	ServerName         string
	InsecureSkipVerify bool
}

// Config is the fully-formed session configuration. An external loader
// fills it; the session performs no environment or filesystem access.
type Config struct {
	Host     string
	Port     int
	Endpoint string

	SecurityMode SecurityMode
	TLS          TLSConfig

	Retry retry.Config

	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
}

// DefaultConfig returns local-development defaults.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           8443,
		Endpoint:       "/ws",
		SecurityMode:   SecurityModeDevelopment,
		Retry:          retry.DefaultConfig(),
		ConnectTimeout: 5 * time.Second,
		WriteTimeout:   15 * time.Second,
	}
}

// Address returns host:port suitable for dialing.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL renders the target endpoint, scheme chosen by TLS.Enabled.
func (c Config) URL() string {
	scheme := "ws"
	if c.TLS.Enabled {
		scheme = "wss"
	}
	endpoint := c.Endpoint
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Address(), endpoint)
}

func NormalizeSecurityMode(mode SecurityMode) SecurityMode {
	if strings.TrimSpace(string(mode)) == "" {
		return SecurityModeDevelopment
	}
	return SecurityMode(strings.ToLower(strings.TrimSpace(string(mode))))
}

// Validate checks the address and retry fields shared by both roles.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return ErrHostRequired
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Port)
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return ErrEndpointRequired
	}
	return c.Retry.Validate()
}

// ValidateClientTransport checks the dial-side security posture.
// Production requires verified TLS; development may dial plaintext.
func (c Config) ValidateClientTransport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	mode := NormalizeSecurityMode(c.SecurityMode)
	switch mode {
	case SecurityModeDevelopment, SecurityModeProduction:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSecurityMode, c.SecurityMode)
	}

	if mode == SecurityModeProduction {
		if !c.TLS.Enabled {
			return ErrTLSRequired
		}
		if c.TLS.InsecureSkipVerify {
			return ErrTLSInsecureSkipNotAllow
		}
	}
	if c.TLS.Enabled && strings.TrimSpace(c.TLS.CAFile) == "" && !c.TLS.InsecureSkipVerify {
		return ErrTLSCAFileRequired
	}
	// Client certificates travel as a pair.
	if strings.TrimSpace(c.TLS.CertFile) != "" && strings.TrimSpace(c.TLS.KeyFile) == "" {
		return ErrTLSKeyFileRequired
	}
	if strings.TrimSpace(c.TLS.KeyFile) != "" && strings.TrimSpace(c.TLS.CertFile) == "" {
		return ErrTLSCertFileRequired
	}
	return nil
}

// ValidateServerTransport checks the listen-side security posture. A
// TLS listener always needs its own certificate and key.
func (c Config) ValidateServerTransport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	mode := NormalizeSecurityMode(c.SecurityMode)
	switch mode {
	case SecurityModeDevelopment, SecurityModeProduction:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSecurityMode, c.SecurityMode)
	}

	if mode == SecurityModeProduction && !c.TLS.Enabled {
		return ErrTLSRequired
	}
	if c.TLS.Enabled {
		if strings.TrimSpace(c.TLS.CertFile) == "" {
			return ErrTLSCertFileRequired
		}
		if strings.TrimSpace(c.TLS.KeyFile) == "" {
			return ErrTLSKeyFileRequired
		}
	}
	return nil
}
