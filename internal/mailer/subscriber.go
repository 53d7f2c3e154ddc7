package mailer

import (
	"context"
	"log/slog"

	"github.com/mystore/product-catalog/internal/core/events"
)

// Subscriber bridges lifecycle events to mail delivery. Send failures are
// logged and dropped; the operation that raised the event already succeeded.
type Subscriber struct {
	sender Sender
	logger *slog.Logger
}

func NewSubscriber(sender Sender, logger *slog.Logger) *Subscriber {
	return &Subscriber{sender: sender, logger: logger}
}

// RegisterHandlers wires every mail-producing event onto the bus.
func (s *Subscriber) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventAccountRegistered, s.handleVerification)
	bus.Subscribe(events.EventOTPResent, s.handleVerification)
	bus.Subscribe(events.EventPasswordResetRequested, s.handlePasswordReset)
	bus.Subscribe(events.EventEmployeeCreated, s.handleEmployeeCreated)
	bus.Subscribe(events.EventEmployeePasswordReset, s.handleEmployeePasswordReset)
}

func (s *Subscriber) handleVerification(ctx context.Context, event events.Event) error {
	data := payload(event)
	subject, body := verificationEmail(str(data, "name"), str(data, "otp"))
	return s.send(ctx, str(data, "email"), subject, body)
}

func (s *Subscriber) handlePasswordReset(ctx context.Context, event events.Event) error {
	data := payload(event)
	subject, body := passwordResetEmail(str(data, "name"), str(data, "reset_url"))
	return s.send(ctx, str(data, "email"), subject, body)
}

func (s *Subscriber) handleEmployeeCreated(ctx context.Context, event events.Event) error {
	data := payload(event)
	subject, body := employeeWelcomeEmail(str(data, "name"), str(data, "employee_id"), str(data, "password"))
	return s.send(ctx, str(data, "email"), subject, body)
}

func (s *Subscriber) handleEmployeePasswordReset(ctx context.Context, event events.Event) error {
	data := payload(event)
	subject, body := employeePasswordResetEmail(str(data, "name"), str(data, "password"))
	return s.send(ctx, str(data, "email"), subject, body)
}

func (s *Subscriber) send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		s.logger.Warn("mail event missing recipient", "subject", subject)
		return nil
	}
	if err := s.sender.Send(ctx, to, subject, body); err != nil {
		s.logger.Error("mail delivery failed", "to", to, "subject", subject, "error", err)
		return err
	}
	return nil
}

func payload(event events.Event) map[string]interface{} {
	if data, ok := event.Payload().(map[string]interface{}); ok {
		return data
	}
	return nil
}

func str(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
