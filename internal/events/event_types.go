package events

import (
	"time"

	"github.com/spec-kit/crew-travel-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered     EventType = "user_registered"
	EventUserDeactivated    EventType = "user_deactivated"
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID     string `json:"user_id"`
	EmployeeID string `json:"employee_id"`
	Location   string `json:"location"`
}

// UserDeactivatedPayload payload.
type UserDeactivatedPayload struct {
	UserID     string `json:"user_id"`
	EmployeeID string `json:"employee_id"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	OrderID     string           `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	Kind        domain.OrderKind `json:"kind"`
	EmployeeID  string           `json:"employee_id"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OrderID     string             `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Kind        domain.OrderKind   `json:"kind"`
	OldStatus   domain.OrderStatus `json:"old_status"`
	NewStatus   domain.OrderStatus `json:"new_status"`
	AdminNotes  string             `json:"admin_notes,omitempty"`
}
