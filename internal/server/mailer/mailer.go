// Package mailer is the boundary for outbound notifications. Delivery is an
// external collaborator; the server only hands messages off, fire-and-forget.
package mailer

import "log/slog"

// Mailer delivers a notification to the bakery staff.
type Mailer interface {
	Send(subject, body string) error
}

// LogMailer writes notifications to the log instead of delivering them.
// Used when no mail transport is configured.
type LogMailer struct{}

// Send logs the notification.
func (LogMailer) Send(subject, body string) error {
	slog.Info("outbound notification", "subject", subject, "body", body)
	return nil
}

// Dispatch sends a notification in the background. Delivery failures are
// logged and never surface to the request that triggered them.
func Dispatch(m Mailer, subject, body string) {
	go func() {
		if err := m.Send(subject, body); err != nil {
			slog.Error("notification delivery failed", "subject", subject, "error", err)
		}
	}()
}
