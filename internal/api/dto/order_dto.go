package dto

import (
	"time"

	"github.com/spec-kit/crew-travel-service/internal/domain"
)

// CreateFlightOrderRequest payload.
type CreateFlightOrderRequest struct {
	FromCity     string               `json:"from_city"`
	ToCity       string               `json:"to_city"`
	FlightNumber string               `json:"flight_number"`
	DepartureAt  time.Time            `json:"departure_at"`
	ArrivalAt    time.Time            `json:"arrival_at"`
	Priority     domain.OrderPriority `json:"priority"`
}

// CreateHotelOrderRequest payload.
type CreateHotelOrderRequest struct {
	City                string    `json:"city"`
	HotelName           string    `json:"hotel_name"`
	CheckIn             time.Time `json:"check_in"`
	CheckOut            time.Time `json:"check_out"`
	RelatedFlightNumber string    `json:"related_flight_number"`
}

// UpdateOrderStatusRequest payload for admin status transitions.
type UpdateOrderStatusRequest struct {
	Status     domain.OrderStatus `json:"status"`
	AdminNotes string             `json:"admin_notes"`
}

// OrderResponse is the wire shape for an order. Kind-specific fields are
// omitted when empty.
type OrderResponse struct {
	ID          string             `json:"id"`
	OrderNumber string             `json:"order_number"`
	Kind        domain.OrderKind   `json:"kind"`
	EmployeeID  string             `json:"employee_id"`
	FullName    string             `json:"full_name"`
	Status      domain.OrderStatus `json:"status"`

	FromCity     *string               `json:"from_city,omitempty"`
	ToCity       *string               `json:"to_city,omitempty"`
	FlightNumber *string               `json:"flight_number,omitempty"`
	DepartureAt  *time.Time            `json:"departure_at,omitempty"`
	ArrivalAt    *time.Time            `json:"arrival_at,omitempty"`
	Priority     *domain.OrderPriority `json:"priority,omitempty"`

	City                *string    `json:"city,omitempty"`
	HotelName           *string    `json:"hotel_name,omitempty"`
	CheckIn             *time.Time `json:"check_in,omitempty"`
	CheckOut            *time.Time `json:"check_out,omitempty"`
	RelatedFlightNumber *string    `json:"related_flight_number,omitempty"`

	AdminNotes  *string    `json:"admin_notes,omitempty"`
	ProcessedBy *string    `json:"processed_by,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewOrderResponse maps a domain order to its wire shape.
func NewOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		Kind:                order.Kind,
		EmployeeID:          order.EmployeeID,
		FullName:            order.FullName,
		Status:              order.Status,
		FromCity:            order.FromCity,
		ToCity:              order.ToCity,
		FlightNumber:        order.FlightNumber,
		DepartureAt:         order.DepartureAt,
		ArrivalAt:           order.ArrivalAt,
		Priority:            order.Priority,
		City:                order.City,
		HotelName:           order.HotelName,
		CheckIn:             order.CheckIn,
		CheckOut:            order.CheckOut,
		RelatedFlightNumber: order.RelatedFlightNumber,
		AdminNotes:          order.AdminNotes,
		ProcessedBy:         order.ProcessedBy,
		ProcessedAt:         order.ProcessedAt,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}

// OrderStatsResponse gives counts of orders per status.
type OrderStatsResponse struct {
	Kind     domain.OrderKind             `json:"kind"`
	ByStatus map[domain.OrderStatus]int64 `json:"by_status"`
}
