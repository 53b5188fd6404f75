package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crew-travel-service/internal/auth"
	"github.com/spec-kit/crew-travel-service/internal/domain"
	"github.com/spec-kit/crew-travel-service/internal/events"
	"github.com/spec-kit/crew-travel-service/internal/repository"
	apperrors "github.com/spec-kit/crew-travel-service/pkg/util"
)

const userStatsCacheKey = "stats:users"

// UserService implements admin-side user administration.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
	dispatcher events.Dispatcher
	cache      Cache
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, bcryptCost int, dispatcher events.Dispatcher, cache Cache) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, dispatcher: dispatcher, cache: cache}
}

// List returns a filtered page of users plus the unpaged total.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int64, error) {
	return s.users.List(ctx, filter)
}

// Get fetches a single user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}
	return user, nil
}

// AdminCreateInput describes admin-initiated user creation. Unlike
// registration it can assign a role and no session token is issued.
type AdminCreateInput struct {
	RegisterInput
	Role     domain.UserRole
	IsActive *bool
}

// Create registers a user on behalf of an admin.
func (s *UserService) Create(ctx context.Context, input AdminCreateInput) (*domain.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !role.IsValid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}

	employeeID := strings.TrimSpace(input.EmployeeID)
	if _, err := s.users.GetByEmployeeID(ctx, employeeID); err == nil {
		return nil, apperrors.NewConflict("employee id already registered", map[string]any{"employee_id": employeeID})
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	user := &domain.User{
		EmployeeID:   employeeID,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		Role:         role,
		Position:     strings.TrimSpace(input.Position),
		Location:     strings.TrimSpace(input.Location),
		IsActive:     active,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return user, nil
}

// AdminUpdateInput describes admin-side updates to a user record.
type AdminUpdateInput struct {
	FullName *string
	Role     *domain.UserRole
	Position *string
	Location *string
	IsActive *bool
	Password *string
}

// Update applies admin changes, including role and activation toggling.
func (s *UserService) Update(ctx context.Context, id string, input AdminUpdateInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		if strings.TrimSpace(*input.FullName) == "" {
			return nil, apperrors.NewValidationError("full_name cannot be empty", nil)
		}
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *input.Role})
		}
		user.Role = *input.Role
	}
	if input.Position != nil {
		user.Position = strings.TrimSpace(*input.Position)
	}
	if input.Location != nil {
		user.Location = strings.TrimSpace(*input.Location)
	}
	if input.Password != nil {
		if len(*input.Password) < 6 {
			return nil, apperrors.NewValidationError("password must be at least 6 characters", nil)
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	wasActive := user.IsActive
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if wasActive && !user.IsActive {
		s.publishDeactivated(ctx, user)
	}
	s.invalidateStats(ctx)
	return user, nil
}

// Delete removes a user record outright. Deactivation via ToggleStatus is
// the reversible alternative. Orders are never deleted, so a user who has
// created or processed one is still referenced and cannot be removed.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user")
		}
		if apperrors.IsForeignKeyViolation(err) {
			return apperrors.NewConflict("user has orders; deactivate instead of deleting", nil)
		}
		return err
	}
	s.invalidateStats(ctx)
	return nil
}

// ToggleStatus flips the active flag.
func (s *UserService) ToggleStatus(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if !user.IsActive {
		s.publishDeactivated(ctx, user)
	}
	s.invalidateStats(ctx)
	return user, nil
}

// Stats returns user counts, served from cache when fresh.
func (s *UserService) Stats(ctx context.Context) (*repository.UserStats, error) {
	var cached repository.UserStats
	if s.cache != nil && s.cache.GetJSON(ctx, userStatsCacheKey, &cached) == nil {
		return &cached, nil
	}
	stats, err := s.users.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, userStatsCacheKey, stats, statsCacheTTL)
	}
	return stats, nil
}

func (s *UserService) invalidateStats(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, userStatsCacheKey)
	}
}

func (s *UserService) publishDeactivated(ctx context.Context, user *domain.User) {
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventUserDeactivated,
		ActorID: user.ID,
		Payload: events.UserDeactivatedPayload{
			UserID:     user.ID,
			EmployeeID: user.EmployeeID,
		},
	})
}
