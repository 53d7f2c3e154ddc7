package employee

import (
	"time"

	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/account"
)

// Employee is the administrative view of a staff account.
type Employee struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	EmployeeID string     `json:"employeeId"`
	IsActive   bool       `json:"isActive"`
	IsVerified bool       `json:"isVerified"`
	CreatedBy  *int64     `json:"createdBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
}

func FromDataModel(rec *datamodel.Account) *Employee {
	emp := &Employee{
		ID:         rec.ID,
		Name:       rec.Name,
		Email:      rec.Email,
		Role:       rec.Role,
		IsActive:   rec.IsActive,
		IsVerified: rec.IsVerified,
		CreatedBy:  rec.CreatedBy,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if rec.EmployeeID != nil {
		emp.EmployeeID = *rec.EmployeeID
	}
	return emp
}

// ListQuery filters the staff directory.
type ListQuery struct {
	Role     string
	IsActive *bool
	Search   string
}

// RepositoryAPI is the persistence contract for staff administration. It
// shares the accounts table with the auth repository but exposes only the
// administrative operations.
type RepositoryAPI interface {
	Create(rec *datamodel.Account) error
	GetByID(id int64) (*datamodel.Account, error)
	GetByEmail(email string) (*datamodel.Account, error)
	List(q ListQuery) ([]*datamodel.Account, error)
	LastEmployeeID() (string, error)
	SetActive(id int64, active bool) error
	ClearRefreshToken(id int64) error
	UpdatePassword(id int64, passwordHash string, firstLogin bool) error
	Update(rec *datamodel.Account) error
}

// ServiceAPI is what the admin-gated HTTP handlers consume.
type ServiceAPI interface {
	Create(actorID int64, dto CreateDTO) (*Employee, error)
	Get(id int64) (*Employee, error)
	List(q ListQuery) ([]*Employee, error)
	Update(id int64, dto UpdateDTO) (*Employee, error)
	ToggleStatus(id int64) (*Employee, error)
	ResetPassword(id int64) error
	Delete(id int64) error
}
