package auth

import (
	"regexp"
	"strings"
)

// ValidationError is a simple validation failure raised by DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (v ValidationError) IsValidation() bool { return true }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// RegisterDTO is the self-registration request. Role is optional and
// restricted to the non-privileged tier.
type RegisterDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (d RegisterDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	if !emailPattern.MatchString(d.Email) {
		return ValidationError{Msg: "a valid email is required"}
	}
	if len(d.Password) < 6 {
		return ValidationError{Msg: "password must be at least 6 characters"}
	}
	if d.Role != "" && d.Role != RoleEmployee {
		return ValidationError{Msg: "self-registration is limited to the employee role"}
	}
	return nil
}

type VerifyEmailDTO struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (d VerifyEmailDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.OTP == "" {
		return ValidationError{Msg: "otp is required"}
	}
	return nil
}

type ResendOTPDTO struct {
	Email string `json:"email"`
}

func (d ResendOTPDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	return nil
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken"`
}

func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return ValidationError{Msg: "refreshToken is required"}
	}
	return nil
}

type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

func (d ForgotPasswordDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	return nil
}

type ResetPasswordDTO struct {
	Password string `json:"password"`
}

func (d ResetPasswordDTO) Validate() error {
	if len(d.Password) < 6 {
		return ValidationError{Msg: "password must be at least 6 characters"}
	}
	return nil
}

type UpdatePasswordDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (d UpdatePasswordDTO) Validate() error {
	if d.CurrentPassword == "" {
		return ValidationError{Msg: "currentPassword is required"}
	}
	if len(d.NewPassword) < 6 {
		return ValidationError{Msg: "newPassword must be at least 6 characters"}
	}
	return nil
}
