package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// EmailSender defines the contract for sending order emails.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender defines the contract for sending order SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Message is a single notification captured by InMemorySender.
type Message struct {
	Channel string
	To      string
	Subject string
	Body    string
}

// InMemorySender records messages for tests. It implements both sender
// interfaces.
type InMemorySender struct {
	Outbox []Message
}

// SendEmail records the email in memory.
func (m *InMemorySender) SendEmail(_ context.Context, to, subject, body string) error {
	if m == nil {
		return nil
	}
	m.Outbox = append(m.Outbox, Message{Channel: "email", To: to, Subject: subject, Body: body})
	return nil
}

// SendSMS records the SMS in memory.
func (m *InMemorySender) SendSMS(_ context.Context, to, body string) error {
	if m == nil {
		return nil
	}
	m.Outbox = append(m.Outbox, Message{Channel: "sms", To: to, Body: body})
	return nil
}

// LogSender writes notifications to the log instead of delivering them. Used
// when no gateway credentials are configured.
type LogSender struct {
	Log zerolog.Logger
}

// SendEmail logs the email.
func (l LogSender) SendEmail(_ context.Context, to, subject, _ string) error {
	l.Log.Info().Str("channel", "email").Str("to", to).Str("subject", subject).Msg("notification")
	return nil
}

// SendSMS logs the SMS.
func (l LogSender) SendSMS(_ context.Context, to, body string) error {
	l.Log.Info().Str("channel", "sms").Str("to", to).Str("body", body).Msg("notification")
	return nil
}
