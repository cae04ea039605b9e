package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/pantry/internal/connectivity"
	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/telemetry"
)

// UserService provides profile reads and edits for the signed-in user.
type UserService interface {
	// GetProfile returns the stored profile. When it cannot be read because
	// the backend is unreachable, or has not been created yet, a profile
	// built from the identity is returned instead.
	GetProfile(ctx context.Context, id domain.Identity) (*domain.User, error)
	UpdateProfile(ctx context.Context, id domain.Identity, update domain.ProfileUpdate) (*domain.User, error)
}

type userService struct {
	repo   domain.UserRepository
	gate   *connectivity.Gate
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService instance
func NewUserService(repo domain.UserRepository, gate *connectivity.Gate, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		repo:   repo,
		gate:   gate,
		logger: logger,
		now:    time.Now,
	}
}

func (s *userService) GetProfile(ctx context.Context, id domain.Identity) (*domain.User, error) {
	const op = "UserService.GetProfile"

	if id.UID == "" {
		return nil, domain.WithOp(ErrNotAuthenticated, op)
	}

	u, err := s.repo.GetUser(ctx, id.UID)
	switch {
	case err == nil:
		// The token's role is authoritative.
		if id.Role != "" {
			u.Role = id.Role
		}
		return u, nil
	case domain.IsCode(err, domain.ENOTFOUND):
		minimal := id.MinimalUser()
		return &minimal, nil
	case connectivity.IsNetworkError(err):
		telemetry.Business.Fallback("profile")
		s.logger.Warn("serving profile from identity", "user_id", id.UID, "error", err)
		minimal := id.MinimalUser()
		return &minimal, nil
	default:
		return nil, opError(op, err, "Failed to load profile")
	}
}

func (s *userService) UpdateProfile(ctx context.Context, id domain.Identity, update domain.ProfileUpdate) (*domain.User, error) {
	const op = "UserService.UpdateProfile"

	if id.UID == "" {
		return nil, domain.WithOp(ErrNotAuthenticated, op)
	}
	if err := s.gate.RequireOnline(op); err != nil {
		return nil, err
	}
	if err := update.Validate(op); err != nil {
		return nil, err
	}

	now := s.now()
	u, err := s.repo.GetUser(ctx, id.UID)
	switch {
	case err == nil:
	case domain.IsCode(err, domain.ENOTFOUND):
		minimal := id.MinimalUser()
		u = &minimal
		u.CreatedAt = now
	default:
		return nil, opError(op, err, "Failed to load profile")
	}

	u.ID = id.UID
	u.DisplayName = update.DisplayName
	u.Phone = update.Phone
	if u.Email == "" {
		u.Email = id.Email
	}
	if id.Role != "" {
		u.Role = id.Role
	}
	u.UpdatedAt = now

	if err := s.repo.SaveUser(ctx, u); err != nil {
		return nil, opError(op, err, "Failed to save profile")
	}
	return u, nil
}
