package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wirebound/wirebound/internal/logging"
)

// InitLogger installs the process-wide logger and returns an app-tagged
// child. Level and formatting come from the logging package's runtime
// profile (WIREBOUND_LOG_* overrides apply).
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime()
	logger := log.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
