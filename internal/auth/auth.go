package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/account"
)

// Closed role set. Any role outside this set fails authorization closed.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*Account, bool) {
	u, ok := ctx.Value(ContextUserKey).(*Account)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *Account) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// Account is the sanitized view of an identity handed to handlers and
// middlewares. Password hash, OTP and token material never leave the
// repository layer through this type.
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Role         string    `json:"role"`
	EmployeeID   *string   `json:"employeeId,omitempty"`
	IsVerified   bool      `json:"isVerified"`
	IsActive     bool      `json:"isActive"`
	IsFirstLogin bool      `json:"isFirstLogin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Sanitize converts a persistence record into the public view.
func Sanitize(rec *datamodel.Account) *Account {
	return &Account{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		ProfileImage: rec.ProfileImage,
		Role:         rec.Role,
		EmployeeID:   rec.EmployeeID,
		IsVerified:   rec.IsVerified,
		IsActive:     rec.IsActive,
		IsFirstLogin: rec.IsFirstLogin,
		CreatedAt:    rec.CreatedAt,
	}
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is the login/refresh response body: the token pair plus a
// summary of the authenticated account.
type LoginResult struct {
	TokenPair
	User *Account `json:"user"`
}

// Claims carries only the account identifier; everything else is looked up
// server-side so tokens never hold stale role or permission data.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenGenerator mints and validates the two token kinds. Access and refresh
// tokens are signed with distinct secrets so one can never stand in for the
// other.
type TokenGenerator interface {
	GenerateAccessToken(userID int64) (string, error)
	GenerateRefreshToken(userID int64) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// RepositoryAPI is the persistence surface the auth service needs.
type RepositoryAPI interface {
	Create(rec *datamodel.Account) error
	GetByEmail(email string) (*datamodel.Account, error)
	GetByID(id int64) (*datamodel.Account, error)
	GetByResetTokenHash(hash string) (*datamodel.Account, error)
	UpdateRefreshToken(userID int64, token *string) error
	SetOTP(userID int64, otp string, expire time.Time) error
	MarkVerified(userID int64) error
	UpdatePassword(userID int64, passwordHash string, changedAt time.Time, firstLogin bool) error
	SetResetToken(userID int64, tokenHash *string, expire *time.Time) error
}

// ServiceAPI is what handlers and middleware consume.
type ServiceAPI interface {
	Register(dto RegisterDTO) error
	VerifyEmail(dto VerifyEmailDTO) error
	ResendOTP(dto ResendOTPDTO) error
	Authenticate(dto LoginDTO) (*LoginResult, error)
	RefreshTokens(refreshToken string) (TokenPair, error)
	Logout(userID int64) error
	ForgotPassword(dto ForgotPasswordDTO) error
	ResetPassword(rawToken, newPassword string) (TokenPair, error)
	UpdatePassword(userID int64, dto UpdatePasswordDTO) (TokenPair, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetAccount(userID int64) (*Account, error)
}
