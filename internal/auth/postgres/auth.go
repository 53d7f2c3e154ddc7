package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/mystore/product-catalog/internal/core/datamodel/account"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(rec *account.Account) error {
	return r.db.Create(rec).Error
}

func (r *Repository) GetByEmail(email string) (*account.Account, error) {
	var rec account.Account
	if err := r.db.Where("email = ?", email).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) GetByID(id int64) (*account.Account, error) {
	var rec account.Account
	if err := r.db.First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) GetByResetTokenHash(hash string) (*account.Account, error) {
	var rec account.Account
	if err := r.db.Where("reset_password_token = ?", hash).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateRefreshToken stores the account's current refresh token in a single
// UPDATE. Passing nil clears the slot.
func (r *Repository) UpdateRefreshToken(userID int64, token *string) error {
	return r.db.Model(&account.Account{}).
		Where("id = ?", userID).
		Update("refresh_token", token).Error
}

func (r *Repository) SetOTP(userID int64, otp string, expire time.Time) error {
	return r.db.Model(&account.Account{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"otp":        otp,
			"otp_expire": expire,
		}).Error
}

func (r *Repository) MarkVerified(userID int64) error {
	return r.db.Model(&account.Account{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_verified": true,
			"otp":         nil,
			"otp_expire":  nil,
		}).Error
}

func (r *Repository) UpdatePassword(userID int64, passwordHash string, changedAt time.Time, firstLogin bool) error {
	return r.db.Model(&account.Account{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash":        passwordHash,
			"last_password_change": changedAt,
			"is_first_login":       firstLogin,
		}).Error
}

func (r *Repository) SetResetToken(userID int64, tokenHash *string, expire *time.Time) error {
	return r.db.Model(&account.Account{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_password_token":  tokenHash,
			"reset_password_expire": expire,
		}).Error
}
