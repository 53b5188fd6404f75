package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crew-travel-service/internal/api/dto"
	"github.com/spec-kit/crew-travel-service/internal/auth"
	"github.com/spec-kit/crew-travel-service/internal/domain"
	"github.com/spec-kit/crew-travel-service/internal/service"
	apperrors "github.com/spec-kit/crew-travel-service/pkg/util"
)

// OrdersHandler manages travel order endpoints for a single order kind. Two
// instances are registered, one per kind, sharing the same service.
type OrdersHandler struct {
	service *service.OrderService
	kind    domain.OrderKind
}

// NewOrdersHandler constructs handler for a kind.
func NewOrdersHandler(orderService *service.OrderService, kind domain.OrderKind) *OrdersHandler {
	return &OrdersHandler{service: orderService, kind: kind}
}

// Create handles POST /{flight,hotel}-orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var input service.OrderCreateInput
	if h.kind == domain.OrderKindFlight {
		var req dto.CreateFlightOrderRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		input = service.OrderCreateInput{
			FromCity:     req.FromCity,
			ToCity:       req.ToCity,
			FlightNumber: req.FlightNumber,
			DepartureAt:  req.DepartureAt,
			ArrivalAt:    req.ArrivalAt,
			Priority:     req.Priority,
		}
	} else {
		var req dto.CreateHotelOrderRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		input = service.OrderCreateInput{
			City:                req.City,
			HotelName:           req.HotelName,
			CheckIn:             req.CheckIn,
			CheckOut:            req.CheckOut,
			RelatedFlightNumber: req.RelatedFlightNumber,
		}
	}

	order, err := h.service.Create(c.Context(), principal.User, h.kind, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// ListMine handles GET /{flight,hotel}-orders/my.
func (h *OrdersHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page, limit, filter := parseOrderQuery(c)

	orders, total, err := h.service.ListMine(c.Context(), principal.User.ID, h.kind, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       orderResponses(orders),
		"pagination": dto.NewPagination(page, limit, total),
	})
}

// GetOne handles GET /{flight,hotel}-orders/:id.
func (h *OrdersHandler) GetOne(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	order, err := h.service.GetForUser(c.Context(), principal.User.ID, h.kind, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// ListAll handles GET /{flight,hotel}-orders. Admin only.
func (h *OrdersHandler) ListAll(c *fiber.Ctx) error {
	page, limit, filter := parseOrderQuery(c)

	orders, total, err := h.service.ListAll(c.Context(), h.kind, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":       orderResponses(orders),
		"pagination": dto.NewPagination(page, limit, total),
	})
}

// UpdateStatus handles PUT /{flight,hotel}-orders/:id/status. Admin only.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	order, err := h.service.UpdateStatus(c.Context(), principal.User, h.kind, c.Params("id"), req.Status, req.AdminNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// Stats handles GET /{flight,hotel}-orders/stats. Admin only.
func (h *OrdersHandler) Stats(c *fiber.Ctx) error {
	counts, err := h.service.Stats(c.Context(), h.kind)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.OrderStatsResponse{Kind: h.kind, ByStatus: counts}})
}

func parseOrderQuery(c *fiber.Ctx) (page, limit int, filter service.OrderListFilter) {
	page = parseInt(c.Query("page"), 1)
	limit = parseInt(c.Query("limit"), 20)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.OrderStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.OrderPriority(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	return page, limit, filter
}

func orderResponses(orders []domain.Order) []dto.OrderResponse {
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, dto.NewOrderResponse(&orders[i]))
	}
	return items
}
