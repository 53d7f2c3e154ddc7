package product

import "time"

// Product is the persistence model. CreatedBy is nullable: legacy rows
// imported without a creator stay NULL until adopted by a mutation.
type Product struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null"`
	Price       float64   `gorm:"column:price;not null"`
	Category    string    `gorm:"column:category;not null"`
	InStock     bool      `gorm:"column:in_stock;default:true"`
	Image       string    `gorm:"column:image"`
	CreatedBy   *int64    `gorm:"column:created_by"`
	IsDeleted   bool      `gorm:"column:is_deleted;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Product) TableName() string {
	return "products"
}
