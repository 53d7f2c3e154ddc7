package postgres

import (
	"gorm.io/gorm"

	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/account"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
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

func (r *Repository) UpdateProfile(id int64, fields map[string]interface{}) error {
	return r.db.Model(&datamodel.Account{}).
		Where("id = ?", id).
		Updates(fields).Error
}
