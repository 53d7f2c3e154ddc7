package postgres

import (
	"gorm.io/gorm"

	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/product"
	"github.com/mystore/product-catalog/internal/product"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(rec *datamodel.Product) error {
	return r.db.Create(rec).Error
}

func (r *Repository) GetByID(id int64) (*datamodel.Product, error) {
	var rec datamodel.Product
	if err := r.db.First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) Update(rec *datamodel.Product) error {
	return r.db.Save(rec).Error
}

func (r *Repository) SetDeleted(id int64, deleted bool) error {
	return r.db.Model(&datamodel.Product{}).
		Where("id = ?", id).
		Update("is_deleted", deleted).Error
}

// List applies the catalog filters and returns one page plus the unpaged
// total. The deleted flag flips between the storefront and the recycle bin,
// never both at once.
func (r *Repository) List(q product.ListQuery) ([]*datamodel.Product, int64, error) {
	tx := r.db.Model(&datamodel.Product{}).
		Where("is_deleted = ?", q.IncludeDeleted)

	if q.Search != "" {
		like := "%" + q.Search + "%"
		tx = tx.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.OwnerID != nil {
		tx = tx.Where("created_by = ?", *q.OwnerID)
	}
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}
	if q.InStock != nil {
		tx = tx.Where("in_stock = ?", *q.InStock)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch q.Sort {
	case product.SortPriceAsc:
		tx = tx.Order("price ASC")
	case product.SortPriceDesc:
		tx = tx.Order("price DESC")
	case product.SortNameAsc:
		tx = tx.Order("name ASC")
	case product.SortNameDesc:
		tx = tx.Order("name DESC")
	default:
		tx = tx.Order("created_at DESC")
	}

	var recs []*datamodel.Product
	offset := (q.Page - 1) * q.PageSize
	if err := tx.Offset(offset).Limit(q.PageSize).Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}
