package notify

import (
	"context"
	"sync"
)

// Message is one captured delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Capture records every message instead of delivering it. Failures can
// be injected per channel. Intended for tests.
type Capture struct {
	mu     sync.Mutex
	emails []Message
	sms    []Message

	EmailErr error
	SMSErr   error
}

func (c *Capture) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.EmailErr != nil {
		return c.EmailErr
	}
	c.emails = append(c.emails, Message{To: to, Subject: subject, Body: body})
	return nil
}

func (c *Capture) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SMSErr != nil {
		return c.SMSErr
	}
	c.sms = append(c.sms, Message{To: to, Body: body})
	return nil
}

// Emails returns a copy of the captured email messages.
func (c *Capture) Emails() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.emails...)
}

// SMS returns a copy of the captured SMS messages.
func (c *Capture) SMS() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.sms...)
}
