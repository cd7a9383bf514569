// Package mail abstracts outbound message delivery. The transport itself
// (SMTP relay, provider API) lives outside this repository; services only
// depend on the interface.
package mail

import (
	"context"

	"runright.io/internal/obs"
)

// Mailer delivers a plain-text message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes messages to the structured log instead of sending them.
// Used in development and tests.
type LogMailer struct{}

// Send logs the message and always succeeds.
func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	obs.LogRequest(map[string]any{
		"level":   "info",
		"msg":     "outbound mail",
		"to":      to,
		"subject": subject,
		"body":    body,
	})
	return nil
}
