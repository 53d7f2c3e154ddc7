package product

import (
	"time"

	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/product"
)

// Ownership is the explicit owner state of a product. A product is either
// owned by a specific account or unowned, never a bare nullable id scattered
// through the call sites.
type Ownership struct {
	owner int64
	owned bool
}

func OwnedBy(accountID int64) Ownership {
	return Ownership{owner: accountID, owned: true}
}

func Unowned() Ownership {
	return Ownership{}
}

// Owner returns the owning account id, with ok false for unowned products.
func (o Ownership) Owner() (int64, bool) {
	return o.owner, o.owned
}

func (o Ownership) IsOwnedBy(accountID int64) bool {
	return o.owned && o.owner == accountID
}

// Product is the domain view served to handlers.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	InStock     bool      `json:"inStock"`
	Image       string    `json:"image,omitempty"`
	CreatedBy   *int64    `json:"createdBy,omitempty"`
	IsDeleted   bool      `json:"isDeleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Product) Ownership() Ownership {
	if p.CreatedBy == nil {
		return Unowned()
	}
	return OwnedBy(*p.CreatedBy)
}

// FromDataModel converts a persistence record into the domain view.
func FromDataModel(rec *datamodel.Product) *Product {
	return &Product{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Price:       rec.Price,
		Category:    rec.Category,
		InStock:     rec.InStock,
		Image:       rec.Image,
		CreatedBy:   rec.CreatedBy,
		IsDeleted:   rec.IsDeleted,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

// ListResult bundles a page of products with its pagination envelope.
type ListResult struct {
	Products   []*Product `json:"products"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

// RepositoryAPI is the persistence contract for the catalog.
type RepositoryAPI interface {
	Create(rec *datamodel.Product) error
	GetByID(id int64) (*datamodel.Product, error)
	List(q ListQuery) ([]*datamodel.Product, int64, error)
	Update(rec *datamodel.Product) error
	SetDeleted(id int64, deleted bool) error
}

// ServiceAPI is what the HTTP handlers consume. Mutations carry the acting
// account so ownership rules apply at the service boundary.
type ServiceAPI interface {
	Create(actorID int64, dto CreateDTO) (*Product, error)
	Get(id int64) (*Product, error)
	List(q ListQuery) (*ListResult, error)
	Update(actorID int64, actorRole string, id int64, dto UpdateDTO) (*Product, error)
	Delete(actorID int64, actorRole string, id int64) error
	Restore(actorID int64, actorRole string, id int64) (*Product, error)
}
