package user

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mystore/product-catalog/internal"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetProfile(userID int64) (*Profile, error) {
	rec, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.ErrAccountNotFound
	}
	return profileFrom(rec), nil
}

// UpdateProfile applies the self-service edits. Changing the email keeps the
// account verified: the address was confirmed interactively by its owner.
func (s *Service) UpdateProfile(userID int64, dto UpdateProfileDTO) (*Profile, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.ErrAccountNotFound
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if dto.Name != nil {
		fields["name"] = strings.TrimSpace(*dto.Name)
		rec.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Email != nil && *dto.Email != rec.Email {
		if _, err := s.repo.GetByEmail(*dto.Email); err == nil {
			return nil, internal.ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewInternalError("failed to check email", err)
		}
		fields["email"] = *dto.Email
		rec.Email = *dto.Email
	}
	if dto.ProfileImage != nil {
		fields["profile_image"] = *dto.ProfileImage
		rec.ProfileImage = *dto.ProfileImage
	}

	if err := s.repo.UpdateProfile(userID, fields); err != nil {
		return nil, internal.NewInternalError("failed to update profile", err)
	}

	s.logger.Info("profile updated", "user_id", userID)
	return profileFrom(rec), nil
}
