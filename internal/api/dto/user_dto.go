package dto

import (
	"time"

	"github.com/spec-kit/crew-travel-service/internal/domain"
)

// RegisterRequest payload for self-service registration.
type RegisterRequest struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Password   string `json:"password"`
	Position   string `json:"position"`
	Location   string `json:"location"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateProfileRequest payload for self-service profile changes.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Position *string `json:"position"`
	Location *string `json:"location"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// CreateUserRequest payload for admin-initiated user creation.
type CreateUserRequest struct {
	EmployeeID string          `json:"employee_id"`
	FullName   string          `json:"full_name"`
	Password   string          `json:"password"`
	Role       domain.UserRole `json:"role"`
	Position   string          `json:"position"`
	Location   string          `json:"location"`
	IsActive   *bool           `json:"is_active"`
}

// UpdateUserRequest payload for admin updates.
type UpdateUserRequest struct {
	FullName *string          `json:"full_name"`
	Role     *domain.UserRole `json:"role"`
	Position *string          `json:"position"`
	Location *string          `json:"location"`
	IsActive *bool            `json:"is_active"`
	Password *string          `json:"password"`
}

// UserResponse is the wire shape for a user. The password hash is never
// serialized.
type UserResponse struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	FullName    string          `json:"full_name"`
	Role        domain.UserRole `json:"role"`
	Position    string          `json:"position"`
	Location    string          `json:"location"`
	IsActive    bool            `json:"is_active"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewUserResponse maps a domain user to its wire shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		EmployeeID:  user.EmployeeID,
		FullName:    user.FullName,
		Role:        user.Role,
		Position:    user.Position,
		Location:    user.Location,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// UserStatsResponse aggregates counts for the admin dashboard.
type UserStatsResponse struct {
	Total      int64            `json:"total"`
	Active     int64            `json:"active"`
	Inactive   int64            `json:"inactive"`
	ByPosition map[string]int64 `json:"by_position"`
	ByLocation map[string]int64 `json:"by_location"`
}

// Pagination is the envelope attached to list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination computes page metadata from a total row count.
func NewPagination(page, limit int, total int64) Pagination {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
