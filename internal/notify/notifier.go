// Package notify delivers completion messages to account holders.
package notify

import (
	"context"
	"fmt"

	"docextract-backend/internal/shared/telemetry"
)

// Notifier sends a single plain-text message.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}

// NotifyError wraps a delivery failure.
type NotifyError struct {
	To  string
	Err error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify %s: %v", e.To, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }

// LogNotifier records messages in the structured log instead of sending them.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return &NotifyError{To: to, Err: err}
	}
	telemetry.Info("notify.logged", map[string]any{
		"to":      to,
		"subject": subject,
		"bytes":   len(body),
	})
	return nil
}
