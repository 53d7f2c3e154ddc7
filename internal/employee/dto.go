package employee

import (
	"regexp"
	"strings"

	"github.com/mystore/product-catalog/internal/auth"
)

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (v ValidationError) IsValidation() bool { return true }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type CreateDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

func (d CreateDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	if !emailPattern.MatchString(d.Email) {
		return ValidationError{Msg: "a valid email is required"}
	}
	switch d.Role {
	case "", auth.RoleEmployee, auth.RoleManager:
	default:
		return ValidationError{Msg: "role must be employee or manager"}
	}
	return nil
}

// UpdateDTO carries partial staff edits. Role changes go through here; the
// admin role itself is never assignable this way.
type UpdateDTO struct {
	Name *string `json:"name,omitempty"`
	Role *string `json:"role,omitempty"`
}

func (d UpdateDTO) Validate() error {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return ValidationError{Msg: "name cannot be empty"}
	}
	if d.Role != nil {
		switch *d.Role {
		case auth.RoleEmployee, auth.RoleManager:
		default:
			return ValidationError{Msg: "role must be employee or manager"}
		}
	}
	return nil
}
