// Package logger provides a thin wrapper around zerolog.Logger with
// constructors and context helpers used throughout the account service.
package logger

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger embeds zerolog.Logger so the full zerolog API is available
// directly on *Logger.
type Logger struct {
	zerolog.Logger
}

// New constructs a JSON logger writing to stdout. The service label is
// attached to every entry so logs from different processes can be told apart.
func New(service string) *Logger {
	l := zerolog.New(os.Stdout).With().
		Str("service", service).
		Timestamp().
		Logger()

	return &Logger{l}
}

// Nop returns a logger that discards everything. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// FromContext returns the request-scoped logger stored in ctx, or the
// global zerolog logger if none was attached.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// FromRequest is FromContext for an *http.Request.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}
