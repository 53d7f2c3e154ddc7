package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mystore/product-catalog/internal"
	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/account"
	"github.com/mystore/product-catalog/internal/core/events"
)

// EventPublisher decouples the auth flows from mail delivery: registration,
// OTP resend and password-reset requests publish events consumed by the
// mailer. A failed email never rolls back the triggering operation.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Config carries the tunables the service needs beyond its collaborators.
type Config struct {
	BCryptCost int
	OTPTTL     time.Duration
	ResetTTL   time.Duration
	ClientURL  string
}

// Service owns the account lifecycle and the single-refresh-token-per-account
// invariant.
type Service struct {
	repo     RepositoryAPI
	tokenGen TokenGenerator
	bus      EventPublisher
	cfg      Config
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGenerator, bus EventPublisher, cfg Config, logger *slog.Logger) *Service {
	if cfg.BCryptCost == 0 {
		cfg.BCryptCost = bcrypt.DefaultCost
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 10 * time.Minute
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = 10 * time.Minute
	}
	return &Service{
		repo:     repo,
		tokenGen: tokenGen,
		bus:      bus,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register creates an unverified account and emails a one-time code. The
// response carries no tokens: login is blocked until the email is verified.
func (s *Service) Register(dto RegisterDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.repo.GetByEmail(dto.Email); err == nil {
		return internal.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return internal.NewInternalError("failed to check existing account", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.cfg.BCryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return internal.NewInternalError("failed to generate otp", err)
	}

	now := time.Now()
	expire := now.Add(s.cfg.OTPTTL)
	rec := &datamodel.Account{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: string(hash),
		Role:         RoleEmployee,
		OTP:          &otp,
		OTPExpire:    &expire,
		IsVerified:   false,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(rec); err != nil {
		return internal.NewInternalError("failed to create account", err)
	}

	s.publish(events.NewAccountRegisteredEvent(rec.Email, rec.Name, otp))

	s.logger.Info("account registered, verification pending", "user_id", rec.ID)
	return nil
}

// VerifyEmail completes registration with the emailed one-time code. The
// expiry check runs before the match check so a correct-but-stale code
// reports OTP_EXPIRED, pointing the user at resend rather than retype.
func (s *Service) VerifyEmail(dto VerifyEmailDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	rec, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return internal.ErrOTPInvalid
	}
	if rec.IsVerified {
		return internal.ErrAlreadyVerified
	}
	if rec.OTP == nil || rec.OTPExpire == nil {
		return internal.ErrOTPInvalid
	}
	if time.Now().After(*rec.OTPExpire) {
		return internal.ErrOTPExpired
	}
	if *rec.OTP != dto.OTP {
		return internal.ErrOTPInvalid
	}

	if err := s.repo.MarkVerified(rec.ID); err != nil {
		return internal.NewInternalError("failed to mark account verified", err)
	}

	s.logger.Info("email verified", "user_id", rec.ID)
	return nil
}

// ResendOTP reissues the verification code for an unverified account.
func (s *Service) ResendOTP(dto ResendOTPDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	rec, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return internal.ErrAccountNotFound
	}
	if rec.IsVerified {
		return internal.ErrAlreadyVerified
	}

	otp, err := generateOTP()
	if err != nil {
		return internal.NewInternalError("failed to generate otp", err)
	}
	if err := s.repo.SetOTP(rec.ID, otp, time.Now().Add(s.cfg.OTPTTL)); err != nil {
		return internal.NewInternalError("failed to store otp", err)
	}

	s.publish(events.NewOTPResentEvent(rec.Email, rec.Name, otp))
	return nil
}

// Authenticate validates credentials and account state, then mints a token
// pair and persists the refresh token (replacing any previous session).
func (s *Service) Authenticate(dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	// Verification and activation are the only failures distinguished to the
	// caller: both have a remediation the user must be told about.
	if !rec.IsVerified {
		return nil, internal.ErrNotVerified
	}
	if !rec.IsActive {
		return nil, internal.ErrDeactivated
	}

	pair, err := s.issueAndPersist(rec.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login successful", "user_id", rec.ID)
	return &LoginResult{TokenPair: pair, User: Sanitize(rec)}, nil
}

// RefreshTokens rotates the refresh token: verify, mint a new pair, persist
// the new refresh token so the presented one is immediately unusable.
func (s *Service) RefreshTokens(refreshToken string) (TokenPair, error) {
	rec, err := s.verifyRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	pair, err := s.issueAndPersist(rec.ID)
	if err != nil {
		return TokenPair{}, err
	}

	s.logger.Info("refresh token rotated", "user_id", rec.ID)
	return pair, nil
}

// verifyRefreshToken checks signature and expiry, then the server-side state:
// the account must exist, be active, and hold exactly this token. Every
// failure mode folds into ErrInvalidToken so the response leaks nothing about
// account existence or state.
func (s *Service) verifyRefreshToken(raw string) (*datamodel.Account, error) {
	claims, err := s.tokenGen.ValidateRefreshToken(raw)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}

	id, err := claims.AccountID()
	if err != nil {
		return nil, internal.ErrInvalidToken
	}

	rec, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}
	if !rec.IsActive {
		return nil, internal.ErrInvalidToken
	}
	if rec.RefreshToken == nil || *rec.RefreshToken != raw {
		return nil, internal.ErrInvalidToken
	}

	return rec, nil
}

// Logout clears the stored refresh token. Safe to call repeatedly.
func (s *Service) Logout(userID int64) error {
	if err := s.repo.UpdateRefreshToken(userID, nil); err != nil {
		return internal.NewInternalError("failed to revoke refresh token", err)
	}
	s.logger.Info("session revoked", "user_id", userID)
	return nil
}

// ForgotPassword always reports success so the endpoint cannot be used to
// enumerate accounts. When the account exists a hashed one-shot reset token
// is stored and the raw value mailed out.
func (s *Service) ForgotPassword(dto ForgotPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	rec, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return internal.NewInternalError("failed to generate reset token", err)
	}
	token := hex.EncodeToString(raw)
	hash := hashResetToken(token)
	expire := time.Now().Add(s.cfg.ResetTTL)

	if err := s.repo.SetResetToken(rec.ID, &hash, &expire); err != nil {
		return internal.NewInternalError("failed to store reset token", err)
	}

	resetURL := fmt.Sprintf("%s/resetpassword/%s", s.cfg.ClientURL, token)
	s.publish(events.NewPasswordResetRequestedEvent(rec.Email, rec.Name, resetURL))

	return nil
}

// ResetPassword consumes a one-shot reset token and starts a fresh session.
func (s *Service) ResetPassword(rawToken, newPassword string) (TokenPair, error) {
	if err := (ResetPasswordDTO{Password: newPassword}).Validate(); err != nil {
		return TokenPair{}, err
	}

	rec, err := s.repo.GetByResetTokenHash(hashResetToken(rawToken))
	if err != nil {
		return TokenPair{}, internal.ErrInvalidToken
	}
	if rec.ResetPasswordExpire == nil || time.Now().After(*rec.ResetPasswordExpire) {
		return TokenPair{}, internal.ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BCryptCost)
	if err != nil {
		return TokenPair{}, internal.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePassword(rec.ID, string(hash), time.Now(), false); err != nil {
		return TokenPair{}, internal.NewInternalError("failed to update password", err)
	}
	if err := s.repo.SetResetToken(rec.ID, nil, nil); err != nil {
		return TokenPair{}, internal.NewInternalError("failed to clear reset token", err)
	}

	s.logger.Info("password reset completed", "user_id", rec.ID)
	return s.issueAndPersist(rec.ID)
}

// UpdatePassword changes the password for an authenticated account and
// rotates the session.
func (s *Service) UpdatePassword(userID int64, dto UpdatePasswordDTO) (TokenPair, error) {
	if err := dto.Validate(); err != nil {
		return TokenPair{}, err
	}

	rec, err := s.repo.GetByID(userID)
	if err != nil {
		return TokenPair{}, internal.ErrAccountNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
		return TokenPair{}, internal.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.cfg.BCryptCost)
	if err != nil {
		return TokenPair{}, internal.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePassword(userID, string(hash), time.Now(), false); err != nil {
		return TokenPair{}, internal.NewInternalError("failed to update password", err)
	}

	s.logger.Info("password updated", "user_id", userID)
	return s.issueAndPersist(userID)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateAccessToken(tokenString)
}

// GetAccount loads the sanitized account view, as used by the auth middleware
// and the /auth/me endpoint.
func (s *Service) GetAccount(userID int64) (*Account, error) {
	rec, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.ErrAccountNotFound
	}
	return Sanitize(rec), nil
}

// issueAndPersist mints a fresh pair and overwrites the stored refresh token.
// A single UPDATE keeps concurrent logins last-write-wins without extra
// locking.
func (s *Service) issueAndPersist(userID int64) (TokenPair, error) {
	access, err := s.tokenGen.GenerateAccessToken(userID)
	if err != nil {
		return TokenPair{}, internal.NewInternalError("failed to sign access token", err)
	}
	refresh, err := s.tokenGen.GenerateRefreshToken(userID)
	if err != nil {
		return TokenPair{}, internal.NewInternalError("failed to sign refresh token", err)
	}
	if err := s.repo.UpdateRefreshToken(userID, &refresh); err != nil {
		return TokenPair{}, internal.NewInternalError("failed to persist refresh token", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) publish(event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

// generateOTP returns a 6-digit numeric code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
