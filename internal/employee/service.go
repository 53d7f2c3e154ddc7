package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mystore/product-catalog/internal"
	"github.com/mystore/product-catalog/internal/auth"
	datamodel "github.com/mystore/product-catalog/internal/core/datamodel/account"
	"github.com/mystore/product-catalog/internal/core/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service manages staff accounts. All its operations sit behind the admin
// role gate.
type Service struct {
	repo       RepositoryAPI
	bus        EventPublisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bus EventPublisher, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bus: bus, bcryptCost: bcryptCost, logger: logger}
}

// Create provisions a staff account with a generated badge number and initial
// password. The account skips email verification: credentials go out by mail
// and the first login forces a password change.
func (s *Service) Create(actorID int64, dto CreateDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(dto.Email); err == nil {
		return nil, internal.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.NewInternalError("failed to check existing account", err)
	}

	employeeID, err := s.nextEmployeeID()
	if err != nil {
		return nil, err
	}

	password, err := generatePassword()
	if err != nil {
		return nil, internal.NewInternalError("failed to generate password", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	role := dto.Role
	if role == "" {
		role = auth.RoleEmployee
	}

	now := time.Now()
	rec := &datamodel.Account{
		Name:         strings.TrimSpace(dto.Name),
		Email:        dto.Email,
		PasswordHash: string(hash),
		Role:         role,
		EmployeeID:   &employeeID,
		IsVerified:   true,
		IsActive:     true,
		IsFirstLogin: true,
		CreatedBy:    &actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(rec); err != nil {
		return nil, internal.NewInternalError("failed to create employee", err)
	}

	s.publish(events.NewEmployeeCreatedEvent(rec.Email, rec.Name, employeeID, password))

	s.logger.Info("employee created", "employee_id", employeeID, "created_by", actorID)
	return FromDataModel(rec), nil
}

func (s *Service) Get(id int64) (*Employee, error) {
	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(rec), nil
}

func (s *Service) List(q ListQuery) ([]*Employee, error) {
	recs, err := s.repo.List(q)
	if err != nil {
		return nil, internal.NewInternalError("failed to list employees", err)
	}

	out := make([]*Employee, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromDataModel(rec))
	}
	return out, nil
}

func (s *Service) Update(id int64, dto UpdateDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if rec.Role == auth.RoleAdmin {
		return nil, internal.ErrAccessDenied
	}

	if dto.Name != nil {
		rec.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Role != nil {
		rec.Role = *dto.Role
	}
	rec.UpdatedAt = time.Now()

	if err := s.repo.Update(rec); err != nil {
		return nil, internal.NewInternalError("failed to update employee", err)
	}
	return FromDataModel(rec), nil
}

// ToggleStatus flips activation. Deactivation also revokes the current
// session: the stored refresh token is cleared so the account cannot rotate
// its way back in.
func (s *Service) ToggleStatus(id int64) (*Employee, error) {
	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if rec.Role == auth.RoleAdmin {
		return nil, internal.ErrAccessDenied
	}

	active := !rec.IsActive
	if err := s.repo.SetActive(id, active); err != nil {
		return nil, internal.NewInternalError("failed to toggle employee status", err)
	}
	if !active {
		if err := s.repo.ClearRefreshToken(id); err != nil {
			return nil, internal.NewInternalError("failed to revoke session", err)
		}
		rec.RefreshToken = nil
	}

	rec.IsActive = active
	s.logger.Info("employee status toggled", "user_id", id, "is_active", active)
	return FromDataModel(rec), nil
}

// ResetPassword issues a fresh generated password and mails it out. The next
// login forces a change, same as onboarding.
func (s *Service) ResetPassword(id int64) error {
	rec, err := s.load(id)
	if err != nil {
		return err
	}

	password, err := generatePassword()
	if err != nil {
		return internal.NewInternalError("failed to generate password", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePassword(id, string(hash), true); err != nil {
		return internal.NewInternalError("failed to reset password", err)
	}
	if err := s.repo.ClearRefreshToken(id); err != nil {
		return internal.NewInternalError("failed to revoke session", err)
	}

	s.publish(events.NewEmployeePasswordResetEvent(rec.Email, rec.Name, password))

	s.logger.Info("employee password reset", "user_id", id)
	return nil
}

// Delete deactivates rather than removes: staff rows anchor product
// ownership and audit history.
func (s *Service) Delete(id int64) error {
	rec, err := s.load(id)
	if err != nil {
		return err
	}
	if rec.Role == auth.RoleAdmin {
		return internal.ErrAccessDenied
	}
	if !rec.IsActive {
		return nil
	}

	if err := s.repo.SetActive(id, false); err != nil {
		return internal.NewInternalError("failed to deactivate employee", err)
	}
	if err := s.repo.ClearRefreshToken(id); err != nil {
		return internal.NewInternalError("failed to revoke session", err)
	}

	s.logger.Info("employee deactivated", "user_id", id)
	return nil
}

// nextEmployeeID allocates the next EMPnnn badge from the highest issued so
// far.
func (s *Service) nextEmployeeID() (string, error) {
	last, err := s.repo.LastEmployeeID()
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", internal.NewInternalError("failed to read last employee id", err)
	}

	next := 1
	if strings.HasPrefix(last, "EMP") {
		if n, err := strconv.Atoi(last[3:]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("EMP%03d", next), nil
}

func (s *Service) load(id int64) (*datamodel.Account, error) {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}
	if rec.EmployeeID == nil && rec.Role == auth.RoleAdmin {
		// Admins without a badge are not part of the staff directory.
		return nil, internal.ErrEmployeeNotFound
	}
	return rec, nil
}

func (s *Service) publish(event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
