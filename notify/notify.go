// Package notify provides delivery backends for verification codes.
package notify

import (
	"context"
	"time"

	authcore "github.com/tendera/authcore"
)

// LogSender writes outgoing messages to the log instead of sending
// them. It is the development backend; production deployments plug in
// a real mail or SMS gateway behind the same interface.
type LogSender struct {
	Log authcore.Logger
}

func (s *LogSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Log.Info("email (log sender)", "to", to, "subject", subject, "body", body)
	return nil
}

func (s *LogSender) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Log.Info("sms (log sender)", "to", to, "body", body)
	return nil
}

// WithTimeout bounds every outbound call on the wrapped Notifier. The
// engine applies its own deadline too; this wrapper is for callers
// using a Notifier outside the engine.
func WithTimeout(n authcore.Notifier, d time.Duration) authcore.Notifier {
	return &timeoutNotifier{next: n, timeout: d}
}

type timeoutNotifier struct {
	next    authcore.Notifier
	timeout time.Duration
}

func (t *timeoutNotifier) SendEmail(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SendEmail(ctx, to, subject, body)
}

func (t *timeoutNotifier) SendSMS(ctx context.Context, to, body string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SendSMS(ctx, to, body)
}
