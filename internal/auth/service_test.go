package auth

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mystore/product-catalog/internal"
	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/account"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// mockAccountRepository keeps accounts in memory, mirroring the subset of
// database behavior the service depends on.
type mockAccountRepository struct {
	accounts map[int64]*datamodel.Account
	nextID   int64
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{
		accounts: make(map[int64]*datamodel.Account),
		nextID:   1,
	}
}

func (m *mockAccountRepository) Create(rec *datamodel.Account) error {
	rec.ID = m.nextID
	m.nextID++
	m.accounts[rec.ID] = rec
	return nil
}

func (m *mockAccountRepository) GetByEmail(email string) (*datamodel.Account, error) {
	for _, rec := range m.accounts {
		if rec.Email == email {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepository) GetByID(id int64) (*datamodel.Account, error) {
	if rec, ok := m.accounts[id]; ok {
		return rec, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepository) GetByResetTokenHash(hash string) (*datamodel.Account, error) {
	for _, rec := range m.accounts {
		if rec.ResetPasswordToken != nil && *rec.ResetPasswordToken == hash {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepository) UpdateRefreshToken(userID int64, token *string) error {
	if rec, ok := m.accounts[userID]; ok {
		rec.RefreshToken = token
	}
	return nil
}

func (m *mockAccountRepository) SetOTP(userID int64, otp string, expire time.Time) error {
	if rec, ok := m.accounts[userID]; ok {
		rec.OTP = &otp
		rec.OTPExpire = &expire
	}
	return nil
}

func (m *mockAccountRepository) MarkVerified(userID int64) error {
	if rec, ok := m.accounts[userID]; ok {
		rec.IsVerified = true
		rec.OTP = nil
		rec.OTPExpire = nil
	}
	return nil
}

func (m *mockAccountRepository) UpdatePassword(userID int64, passwordHash string, changedAt time.Time, firstLogin bool) error {
	if rec, ok := m.accounts[userID]; ok {
		rec.PasswordHash = passwordHash
		rec.LastPasswordChange = &changedAt
		rec.IsFirstLogin = firstLogin
	}
	return nil
}

func (m *mockAccountRepository) SetResetToken(userID int64, tokenHash *string, expire *time.Time) error {
	if rec, ok := m.accounts[userID]; ok {
		rec.ResetPasswordToken = tokenHash
		rec.ResetPasswordExpire = expire
	}
	return nil
}

func (m *mockAccountRepository) seedAccount(email, password string, verified, active bool) *datamodel.Account {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	rec := &datamodel.Account{
		Name:         "Test User",
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleEmployee,
		IsVerified:   verified,
		IsActive:     active,
	}
	_ = m.Create(rec)
	return rec
}

func newTestService(repo *mockAccountRepository) *Service {
	gen := NewJWTTokenGenerator("access-secret-for-tests", "refresh-secret-for-tests", time.Minute, time.Hour)
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, gen, nil, Config{BCryptCost: bcrypt.MinCost}, lg)
}

var _ = ginkgo.Describe("Registration and verification", func() {
	var (
		repo *mockAccountRepository
		svc  *Service
	)

	ginkgo.BeforeEach(func() {
		repo = newMockAccountRepository()
		svc = newTestService(repo)
	})

	ginkgo.It("registers an unverified account with a pending code", func() {
		err := svc.Register(RegisterDTO{Name: "Ada", Email: "ada@example.com", Password: "secret123"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		rec, err := repo.GetByEmail("ada@example.com")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(rec.IsVerified).To(gomega.BeFalse())
		gomega.Expect(rec.OTP).ToNot(gomega.BeNil())
		gomega.Expect(*rec.OTP).To(gomega.HaveLen(6))
		gomega.Expect(rec.Role).To(gomega.Equal(RoleEmployee))
	})

	ginkgo.It("rejects a duplicate email", func() {
		repo.seedAccount("taken@example.com", "whatever1", true, true)

		err := svc.Register(RegisterDTO{Name: "Ada", Email: "taken@example.com", Password: "secret123"})
		gomega.Expect(err).To(gomega.MatchError(internal.ErrEmailTaken))
	})

	ginkgo.It("completes the register, verify, login journey", func() {
		gomega.Expect(svc.Register(RegisterDTO{Name: "Ada", Email: "ada@example.com", Password: "secret123"})).To(gomega.Succeed())

		// Login is blocked until the code is confirmed.
		_, err := svc.Authenticate(LoginDTO{Email: "ada@example.com", Password: "secret123"})
		gomega.Expect(err).To(gomega.MatchError(internal.ErrNotVerified))

		rec, _ := repo.GetByEmail("ada@example.com")
		gomega.Expect(svc.VerifyEmail(VerifyEmailDTO{Email: "ada@example.com", OTP: *rec.OTP})).To(gomega.Succeed())

		result, err := svc.Authenticate(LoginDTO{Email: "ada@example.com", Password: "secret123"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(result.AccessToken).ToNot(gomega.BeEmpty())
		gomega.Expect(result.RefreshToken).ToNot(gomega.BeEmpty())
		gomega.Expect(result.User.Email).To(gomega.Equal("ada@example.com"))
	})

	ginkgo.It("rejects a wrong verification code", func() {
		gomega.Expect(svc.Register(RegisterDTO{Name: "Ada", Email: "ada@example.com", Password: "secret123"})).To(gomega.Succeed())

		err := svc.VerifyEmail(VerifyEmailDTO{Email: "ada@example.com", OTP: "000000"})
		gomega.Expect(err).To(gomega.MatchError(internal.ErrOTPInvalid))
	})

	ginkgo.It("reports an expired code as expired even when it matches", func() {
		gomega.Expect(svc.Register(RegisterDTO{Name: "Ada", Email: "ada@example.com", Password: "secret123"})).To(gomega.Succeed())

		rec, _ := repo.GetByEmail("ada@example.com")
		stale := time.Now().Add(-time.Minute)
		rec.OTPExpire = &stale

		err := svc.VerifyEmail(VerifyEmailDTO{Email: "ada@example.com", OTP: *rec.OTP})
		gomega.Expect(err).To(gomega.MatchError(internal.ErrOTPExpired))
	})

	ginkgo.It("refuses to verify twice", func() {
		repo.seedAccount("done@example.com", "secret123", true, true)

		err := svc.VerifyEmail(VerifyEmailDTO{Email: "done@example.com", OTP: "123456"})
		gomega.Expect(err).To(gomega.MatchError(internal.ErrAlreadyVerified))
	})

	ginkgo.It("resends a fresh code for an unverified account", func() {
		gomega.Expect(svc.Register(RegisterDTO{Name: "Ada", Email: "ada@example.com", Password: "secret123"})).To(gomega.Succeed())
		rec, _ := repo.GetByEmail("ada@example.com")
		stale := time.Now().Add(-time.Minute)
		rec.OTPExpire = &stale

		gomega.Expect(svc.ResendOTP(ResendOTPDTO{Email: "ada@example.com"})).To(gomega.Succeed())
		gomega.Expect(rec.OTPExpire.After(time.Now())).To(gomega.BeTrue())
	})
})

var _ = ginkgo.Describe("Authentication", func() {
	var (
		repo *mockAccountRepository
		svc  *Service
	)

	ginkgo.BeforeEach(func() {
		repo = newMockAccountRepository()
		svc = newTestService(repo)
	})

	ginkgo.It("rejects a wrong password", func() {
		repo.seedAccount("ada@example.com", "secret123", true, true)

		_, err := svc.Authenticate(LoginDTO{Email: "ada@example.com", Password: "wrong-password"})
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
	})

	ginkgo.It("rejects an unknown email with the same error as a wrong password", func() {
		_, err := svc.Authenticate(LoginDTO{Email: "nobody@example.com", Password: "secret123"})
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
	})

	ginkgo.It("rejects a deactivated account", func() {
		repo.seedAccount("gone@example.com", "secret123", true, false)

		_, err := svc.Authenticate(LoginDTO{Email: "gone@example.com", Password: "secret123"})
		gomega.Expect(err).To(gomega.MatchError(internal.ErrDeactivated))
	})

	ginkgo.It("replaces the stored refresh token on each login", func() {
		rec := repo.seedAccount("ada@example.com", "secret123", true, true)

		first, err := svc.Authenticate(LoginDTO{Email: "ada@example.com", Password: "secret123"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(*rec.RefreshToken).To(gomega.Equal(first.RefreshToken))

		// The first session's refresh token dies when a second login lands.
		_, err = svc.Authenticate(LoginDTO{Email: "ada@example.com", Password: "secret123"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = svc.RefreshTokens(first.RefreshToken)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})
})

var _ = ginkgo.Describe("Refresh token rotation", func() {
	var (
		repo *mockAccountRepository
		svc  *Service
		rec  *datamodel.Account
		pair TokenPair
	)

	ginkgo.BeforeEach(func() {
		repo = newMockAccountRepository()
		svc = newTestService(repo)
		rec = repo.seedAccount("ada@example.com", "secret123", true, true)

		result, err := svc.Authenticate(LoginDTO{Email: "ada@example.com", Password: "secret123"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		pair = result.TokenPair
	})

	ginkgo.It("invalidates the presented token once rotated", func() {
		rotated, err := svc.RefreshTokens(pair.RefreshToken)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(rotated.RefreshToken).ToNot(gomega.Equal(pair.RefreshToken))
		gomega.Expect(*rec.RefreshToken).To(gomega.Equal(rotated.RefreshToken))

		_, err = svc.RefreshTokens(pair.RefreshToken)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})

	ginkgo.It("rejects a forged token", func() {
		other := NewJWTTokenGenerator("other-access", "other-refresh", time.Minute, time.Hour)
		forged, err := other.GenerateRefreshToken(rec.ID)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = svc.RefreshTokens(forged)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})

	ginkgo.It("rejects refresh for a deactivated account", func() {
		rec.IsActive = false

		_, err := svc.RefreshTokens(pair.RefreshToken)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})

	ginkgo.It("rejects refresh after logout, and logout stays idempotent", func() {
		gomega.Expect(svc.Logout(rec.ID)).To(gomega.Succeed())
		gomega.Expect(svc.Logout(rec.ID)).To(gomega.Succeed())

		_, err := svc.RefreshTokens(pair.RefreshToken)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})
})

var _ = ginkgo.Describe("Password recovery", func() {
	var (
		repo *mockAccountRepository
		svc  *Service
		rec  *datamodel.Account
	)

	ginkgo.BeforeEach(func() {
		repo = newMockAccountRepository()
		svc = newTestService(repo)
		rec = repo.seedAccount("ada@example.com", "secret123", true, true)
	})

	ginkgo.It("reports success for an unknown email without storing anything", func() {
		gomega.Expect(svc.ForgotPassword(ForgotPasswordDTO{Email: "nobody@example.com"})).To(gomega.Succeed())
		gomega.Expect(rec.ResetPasswordToken).To(gomega.BeNil())
	})

	ginkgo.It("stores only a hash of the issued reset token", func() {
		gomega.Expect(svc.ForgotPassword(ForgotPasswordDTO{Email: "ada@example.com"})).To(gomega.Succeed())
		gomega.Expect(rec.ResetPasswordToken).ToNot(gomega.BeNil())
		gomega.Expect(*rec.ResetPasswordToken).To(gomega.HaveLen(64))
	})

	ginkgo.It("consumes the token and starts a session on reset", func() {
		raw := "0123456789abcdef0123456789abcdef01234567"
		hash := hashResetToken(raw)
		expire := time.Now().Add(10 * time.Minute)
		gomega.Expect(repo.SetResetToken(rec.ID, &hash, &expire)).To(gomega.Succeed())

		pair, err := svc.ResetPassword(raw, "brand-new-pass")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(pair.AccessToken).ToNot(gomega.BeEmpty())
		gomega.Expect(rec.ResetPasswordToken).To(gomega.BeNil())

		_, err = svc.Authenticate(LoginDTO{Email: "ada@example.com", Password: "brand-new-pass"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = svc.ResetPassword(raw, "another-pass1")
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})

	ginkgo.It("rejects an expired reset token", func() {
		raw := "feedfacefeedfacefeedfacefeedfacefeedface"
		hash := hashResetToken(raw)
		expire := time.Now().Add(-time.Minute)
		gomega.Expect(repo.SetResetToken(rec.ID, &hash, &expire)).To(gomega.Succeed())

		_, err := svc.ResetPassword(raw, "brand-new-pass")
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})

	ginkgo.It("requires the current password to change it while logged in", func() {
		_, err := svc.UpdatePassword(rec.ID, UpdatePasswordDTO{CurrentPassword: "wrong", NewPassword: "brand-new-pass"})
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))

		pair, err := svc.UpdatePassword(rec.ID, UpdatePasswordDTO{CurrentPassword: "secret123", NewPassword: "brand-new-pass"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(pair.RefreshToken).ToNot(gomega.BeEmpty())
	})
})

var _ = ginkgo.Describe("Access tokens", func() {
	ginkgo.It("round-trips the account id through the claims", func() {
		gen := NewJWTTokenGenerator("access-secret-for-tests", "refresh-secret-for-tests", time.Minute, time.Hour)

		token, err := gen.GenerateAccessToken(42)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		claims, err := gen.ValidateAccessToken(token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		id, err := claims.AccountID()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(id).To(gomega.Equal(int64(42)))
	})

	ginkgo.It("refuses an access token on the refresh path and vice versa", func() {
		gen := NewJWTTokenGenerator("access-secret-for-tests", "refresh-secret-for-tests", time.Minute, time.Hour)

		access, _ := gen.GenerateAccessToken(7)
		refresh, _ := gen.GenerateRefreshToken(7)

		_, err := gen.ValidateRefreshToken(access)
		gomega.Expect(err).To(gomega.HaveOccurred())
		_, err = gen.ValidateAccessToken(refresh)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("never mints the same token twice for one account", func() {
		gen := NewJWTTokenGenerator("access-secret-for-tests", "refresh-secret-for-tests", time.Minute, time.Hour)

		first, err := gen.GenerateRefreshToken(7)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		second, err := gen.GenerateRefreshToken(7)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(second).ToNot(gomega.Equal(first))
	})

	ginkgo.It("rejects an expired access token", func() {
		gen := NewJWTTokenGenerator("access-secret-for-tests", "refresh-secret-for-tests", -time.Minute, time.Hour)

		token, err := gen.GenerateAccessToken(7)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = gen.ValidateAccessToken(token)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})
})
