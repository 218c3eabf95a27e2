// Package mailer defines the outbound mail collaborator. Actual delivery is
// an external concern; the service only needs a narrow interface to trigger
// the welcome notification fire-and-forget.
package mailer

import (
	"context"

	"github.com/hkarim/account-service/pkg/logger"
)

// Mailer sends account lifecycle notifications.
type Mailer interface {
	SendWelcome(ctx context.Context, email, name string) error
}

// LogMailer records outbound mail in the structured log instead of
// delivering it. Used as the default until a real provider is configured.
type LogMailer struct {
	from string
	log  *logger.Logger
}

// NewLogMailer returns a Mailer that only logs.
func NewLogMailer(from string, log *logger.Logger) *LogMailer {
	return &LogMailer{from: from, log: log}
}

// SendWelcome logs the welcome mail that would have been sent.
func (m *LogMailer) SendWelcome(_ context.Context, email, name string) error {
	m.log.Info().
		Str("from", m.from).
		Str("to", email).
		Str("name", name).
		Msg("welcome email queued")
	return nil
}
