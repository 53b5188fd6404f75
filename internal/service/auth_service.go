package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crew-travel-service/internal/auth"
	"github.com/spec-kit/crew-travel-service/internal/config"
	"github.com/spec-kit/crew-travel-service/internal/domain"
	"github.com/spec-kit/crew-travel-service/internal/events"
	"github.com/spec-kit/crew-travel-service/internal/repository"
	apperrors "github.com/spec-kit/crew-travel-service/pkg/util"
)

// AuthService coordinates registration, login and self-service profile flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLHours),
		bcryptCost: cfg.Auth.BcryptCost,
		dispatcher: dispatcher,
	}
}

// RegisterInput describes a self-service registration payload.
type RegisterInput struct {
	EmployeeID string
	FullName   string
	Password   string
	Position   string
	Location   string
}

// Validate checks field constraints shared by registration and admin creation.
func (in RegisterInput) Validate() error {
	details := map[string]any{}
	employeeID := strings.TrimSpace(in.EmployeeID)
	// Length is counted in runes; employee ids may be non-ASCII.
	if n := utf8.RuneCountInString(employeeID); n < 3 || n > 20 {
		details["employee_id"] = "must be 3-20 characters"
	}
	if strings.TrimSpace(in.FullName) == "" {
		details["full_name"] = "required"
	}
	if len(in.Password) < 6 {
		details["password"] = "must be at least 6 characters"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid registration payload", details)
	}
	return nil
}

// Register creates a new crew member account and issues a session token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	if err := input.Validate(); err != nil {
		return nil, "", time.Time{}, err
	}

	employeeID := strings.TrimSpace(input.EmployeeID)
	if _, err := s.users.GetByEmployeeID(ctx, employeeID); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("employee id already registered", map[string]any{"employee_id": employeeID})
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		EmployeeID:   employeeID,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		Role:         domain.RoleEmployee,
		Position:     strings.TrimSpace(input.Position),
		Location:     strings.TrimSpace(input.Location),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventUserRegistered,
		ActorID: user.ID,
		Payload: events.UserRegisteredPayload{
			UserID:     user.ID,
			EmployeeID: user.EmployeeID,
			Location:   user.Location,
		},
	})
	return user, token, exp, nil
}

// Login authenticates a crew member. Unknown employee id, deactivated account
// and password mismatch all produce the same unauthorized error so callers
// cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, employeeID, password string) (*domain.User, string, time.Time, error) {
	failure := apperrors.NewUnauthorized("invalid credentials")

	user, err := s.users.GetByEmployeeID(ctx, strings.TrimSpace(employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, failure
		}
		return nil, "", time.Time{}, err
	}
	if !user.IsActive {
		return nil, "", time.Time{}, failure
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, failure
	}

	now := time.Now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	user.LastLoginAt = &now

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// ProfileUpdateInput describes self-service profile changes. Employee id,
// role and password are immutable through this path.
type ProfileUpdateInput struct {
	FullName *string
	Position *string
	Location *string
}

// UpdateProfile applies self-service changes to the caller's record.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.FullName != nil {
		if strings.TrimSpace(*input.FullName) == "" {
			return nil, apperrors.NewValidationError("full_name cannot be empty", nil)
		}
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Position != nil {
		user.Position = strings.TrimSpace(*input.Position)
	}
	if input.Location != nil {
		user.Location = strings.TrimSpace(*input.Location)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperrors.NewValidationError("new password must be at least 6 characters", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
