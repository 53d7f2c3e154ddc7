package postgres

import (
	"gorm.io/gorm"

	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/account"
	"github.com/mystore/product-catalog/internal/employee"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(rec *datamodel.Account) error {
	return r.db.Create(rec).Error
}

func (r *Repository) GetByID(id int64) (*datamodel.Account, error) {
	var rec datamodel.Account
	if err := r.db.First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) GetByEmail(email string) (*datamodel.Account, error) {
	var rec datamodel.Account
	if err := r.db.Where("email = ?", email).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns staff accounts, newest first. Accounts without a badge are
// self-registered and excluded from the directory.
func (r *Repository) List(q employee.ListQuery) ([]*datamodel.Account, error) {
	tx := r.db.Model(&datamodel.Account{}).
		Where("employee_id IS NOT NULL")

	if q.Role != "" {
		tx = tx.Where("role = ?", q.Role)
	}
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		tx = tx.Where("name LIKE ? OR email LIKE ? OR employee_id LIKE ?", like, like, like)
	}

	var recs []*datamodel.Account
	if err := tx.Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// LastEmployeeID returns the highest badge issued so far, or
// gorm.ErrRecordNotFound when none exist.
func (r *Repository) LastEmployeeID() (string, error) {
	var rec datamodel.Account
	err := r.db.Where("employee_id IS NOT NULL").
		Order("employee_id DESC").
		First(&rec).Error
	if err != nil {
		return "", err
	}
	if rec.EmployeeID == nil {
		return "", gorm.ErrRecordNotFound
	}
	return *rec.EmployeeID, nil
}

func (r *Repository) SetActive(id int64, active bool) error {
	return r.db.Model(&datamodel.Account{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *Repository) ClearRefreshToken(id int64) error {
	return r.db.Model(&datamodel.Account{}).
		Where("id = ?", id).
		Update("refresh_token", nil).Error
}

func (r *Repository) UpdatePassword(id int64, passwordHash string, firstLogin bool) error {
	return r.db.Model(&datamodel.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":  passwordHash,
			"is_first_login": firstLogin,
		}).Error
}

func (r *Repository) Update(rec *datamodel.Account) error {
	return r.db.Save(rec).Error
}
