package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the account and employee lifecycles. All of them
// are consumed by the mailer; delivery failure is logged, not retried, and
// never rolls back the operation that published the event.
const (
	EventAccountRegistered      = "account.registered"
	EventOTPResent              = "account.otp_resent"
	EventPasswordResetRequested = "account.password_reset_requested"
	EventEmployeeCreated        = "employee.created"
	EventEmployeePasswordReset  = "employee.password_reset"
)

func NewAccountRegisteredEvent(email, name, otp string) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventAccountRegistered,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"email": email,
			"name":  name,
			"otp":   otp,
		},
	}
}

func NewOTPResentEvent(email, name, otp string) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventOTPResent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"email": email,
			"name":  name,
			"otp":   otp,
		},
	}
}

func NewPasswordResetRequestedEvent(email, name, resetURL string) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventPasswordResetRequested,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"email":     email,
			"name":      name,
			"reset_url": resetURL,
		},
	}
}

func NewEmployeeCreatedEvent(email, name, employeeID, password string) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventEmployeeCreated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"email":       email,
			"name":        name,
			"employee_id": employeeID,
			"password":    password,
		},
	}
}

func NewEmployeePasswordResetEvent(email, name, password string) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventEmployeePasswordReset,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"email":    email,
			"name":     name,
			"password": password,
		},
	}
}
