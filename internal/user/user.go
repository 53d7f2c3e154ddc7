package user

import (
	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/account"
)

// RepositoryAPI covers the profile reads and writes. It shares the accounts
// table with the auth repository.
type RepositoryAPI interface {
	GetByID(id int64) (*datamodel.Account, error)
	GetByEmail(email string) (*datamodel.Account, error)
	UpdateProfile(id int64, fields map[string]interface{}) error
}

// ServiceAPI is what the profile handlers consume.
type ServiceAPI interface {
	GetProfile(userID int64) (*Profile, error)
	UpdateProfile(userID int64, dto UpdateProfileDTO) (*Profile, error)
}

// Profile is the self-service view of an account.
type Profile struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	ProfileImage string  `json:"profileImage,omitempty"`
	Role         string  `json:"role"`
	EmployeeID   *string `json:"employeeId,omitempty"`
	IsFirstLogin bool    `json:"isFirstLogin"`
}

func profileFrom(rec *datamodel.Account) *Profile {
	return &Profile{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		ProfileImage: rec.ProfileImage,
		Role:         rec.Role,
		EmployeeID:   rec.EmployeeID,
		IsFirstLogin: rec.IsFirstLogin,
	}
}
