package product

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mystore/product-catalog/internal"
	"github.com/mystore/product-catalog/internal/auth"
	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/product"
)

// Service owns catalog reads and the ownership rules on mutations.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create stores a new product owned by the acting account.
func (s *Service) Create(actorID int64, dto CreateDTO) (*Product, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	inStock := true
	if dto.InStock != nil {
		inStock = *dto.InStock
	}

	now := time.Now()
	rec := &datamodel.Product{
		Name:        strings.TrimSpace(dto.Name),
		Description: dto.Description,
		Price:       dto.Price,
		Category:    strings.ToLower(strings.TrimSpace(dto.Category)),
		InStock:     inStock,
		Image:       dto.Image,
		CreatedBy:   &actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(rec); err != nil {
		return nil, internal.NewInternalError("failed to create product", err)
	}

	s.logger.Info("product created", "product_id", rec.ID, "user_id", actorID)
	return FromDataModel(rec), nil
}

// Get returns a single live product. Deleted products are invisible here.
func (s *Service) Get(id int64) (*Product, error) {
	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(rec), nil
}

func (s *Service) List(q ListQuery) (*ListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}

	recs, total, err := s.repo.List(q)
	if err != nil {
		return nil, internal.NewInternalError("failed to list products", err)
	}

	products := make([]*Product, 0, len(recs))
	for _, rec := range recs {
		products = append(products, FromDataModel(rec))
	}

	totalPages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return &ListResult{
		Products:   products,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update applies a partial update after the ownership check. Mutating an
// unowned product adopts it: the actor becomes the owner as part of the same
// write.
func (s *Service) Update(actorID int64, actorRole string, id int64, dto UpdateDTO) (*Product, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	adopt, err := s.authorizeMutation(actorID, actorRole, ownershipOf(rec))
	if err != nil {
		return nil, err
	}
	if adopt {
		rec.CreatedBy = &actorID
		s.logger.Info("unowned product adopted", "product_id", rec.ID, "user_id", actorID)
	}

	if dto.Name != nil {
		rec.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Description != nil {
		rec.Description = *dto.Description
	}
	if dto.Price != nil {
		rec.Price = *dto.Price
	}
	if dto.Category != nil {
		rec.Category = strings.ToLower(strings.TrimSpace(*dto.Category))
	}
	if dto.InStock != nil {
		rec.InStock = *dto.InStock
	}
	if dto.Image != nil {
		rec.Image = *dto.Image
	}
	rec.UpdatedAt = time.Now()

	if err := s.repo.Update(rec); err != nil {
		return nil, internal.NewInternalError("failed to update product", err)
	}

	s.logger.Info("product updated", "product_id", rec.ID, "user_id", actorID)
	return FromDataModel(rec), nil
}

// Delete soft-deletes a product the actor may mutate. Deleting an orphan
// does not adopt it; the row stays unowned until somebody updates or
// restores it.
func (s *Service) Delete(actorID int64, actorRole string, id int64) error {
	rec, err := s.load(id)
	if err != nil {
		return err
	}
	if _, err := s.authorizeMutation(actorID, actorRole, ownershipOf(rec)); err != nil {
		return err
	}

	if err := s.repo.SetDeleted(id, true); err != nil {
		return internal.NewInternalError("failed to delete product", err)
	}

	s.logger.Info("product deleted", "product_id", id, "user_id", actorID)
	return nil
}

// Restore brings a soft-deleted product back. The route gating already
// restricts this to elevated roles, but owners may restore their own too.
func (s *Service) Restore(actorID int64, actorRole string, id int64) (*Product, error) {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrProductNotFound
		}
		return nil, internal.NewInternalError("failed to load product", err)
	}
	if !rec.IsDeleted {
		return nil, internal.NewValidationError("product is not deleted", internal.ErrCodeValidationFailed)
	}
	if _, err := s.authorizeMutation(actorID, actorRole, ownershipOf(rec)); err != nil {
		return nil, err
	}

	rec.IsDeleted = false
	if rec.CreatedBy == nil {
		// A restored orphan is assigned to whoever brought it back,
		// elevated or not.
		rec.CreatedBy = &actorID
		s.logger.Info("unowned product adopted on restore", "product_id", rec.ID, "user_id", actorID)
	}
	if err := s.repo.Update(rec); err != nil {
		return nil, internal.NewInternalError("failed to restore product", err)
	}

	s.logger.Info("product restored", "product_id", id, "user_id", actorID)
	return FromDataModel(rec), nil
}

func ownershipOf(rec *datamodel.Product) Ownership {
	if rec.CreatedBy == nil {
		return Unowned()
	}
	return OwnedBy(*rec.CreatedBy)
}

// authorizeMutation enforces the ownership rule: elevated roles touch
// anything without adopting, owners touch their own, and any other actor may
// only proceed against an unowned product, which the returned flag tells the
// caller to adopt as part of its write.
func (s *Service) authorizeMutation(actorID int64, actorRole string, own Ownership) (adopt bool, err error) {
	if strings.EqualFold(actorRole, auth.RoleAdmin) || strings.EqualFold(actorRole, auth.RoleManager) {
		return false, nil
	}

	owner, owned := own.Owner()
	if !owned {
		return true, nil
	}
	if owner != actorID {
		return false, internal.ErrNotAuthorized
	}
	return false, nil
}

func (s *Service) load(id int64) (*datamodel.Product, error) {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrProductNotFound
		}
		return nil, internal.NewInternalError("failed to load product", err)
	}
	if rec.IsDeleted {
		return nil, internal.ErrProductNotFound
	}
	return rec, nil
}
