package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crew-travel-service/internal/api/dto"
	"github.com/spec-kit/crew-travel-service/internal/domain"
	"github.com/spec-kit/crew-travel-service/internal/repository"
	"github.com/spec-kit/crew-travel-service/internal/service"
	apperrors "github.com/spec-kit/crew-travel-service/pkg/util"
)

// UsersHandler exposes admin-side user administration endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 20)

	filter := repository.UserFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	if role := c.Query("role"); role != "" {
		r := domain.UserRole(role)
		filter.Role = &r
	}
	if position := c.Query("position"); position != "" {
		filter.Position = &position
	}
	if location := c.Query("location"); location != "" {
		filter.Location = &location
	}
	if activeStr := c.Query("is_active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			return apperrors.NewValidationError("invalid is_active value", nil)
		}
		filter.IsActive = &active
	}

	users, total, err := h.users.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{
		"data":       items,
		"pagination": dto.NewPagination(page, limit, total),
	})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.Create(c.Context(), service.AdminCreateInput{
		RegisterInput: service.RegisterInput{
			EmployeeID: req.EmployeeID,
			FullName:   req.FullName,
			Password:   req.Password,
			Position:   req.Position,
			Location:   req.Location,
		},
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.Update(c.Context(), c.Params("id"), service.AdminUpdateInput{
		FullName: req.FullName,
		Role:     req.Role,
		Position: req.Position,
		Location: req.Location,
		IsActive: req.IsActive,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// ToggleStatus handles PATCH /users/:id/status.
func (h *UsersHandler) ToggleStatus(c *fiber.Ctx) error {
	user, err := h.users.ToggleStatus(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Stats handles GET /users/stats.
func (h *UsersHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.users.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserStatsResponse{
		Total:      stats.Total,
		Active:     stats.Active,
		Inactive:   stats.Inactive,
		ByPosition: stats.ByPosition,
		ByLocation: stats.ByLocation,
	}})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
