package user

import (
	"regexp"
	"strings"
)

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (v ValidationError) IsValidation() bool { return true }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UpdateProfileDTO carries the self-service profile edits. Nil fields are
// left untouched.
type UpdateProfileDTO struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

func (d UpdateProfileDTO) Validate() error {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return ValidationError{Msg: "name cannot be empty"}
	}
	if d.Email != nil && !emailPattern.MatchString(*d.Email) {
		return ValidationError{Msg: "a valid email is required"}
	}
	return nil
}
