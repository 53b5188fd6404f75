package domain

import (
	"fmt"
	"time"
)

// OrderKind differentiates flight and hotel orders.
type OrderKind string

const (
	OrderKindFlight OrderKind = "FLIGHT"
	OrderKindHotel  OrderKind = "HOTEL"
)

// NumberPrefix returns the prefix used in human-readable order numbers.
func (k OrderKind) NumberPrefix() string {
	if k == OrderKindHotel {
		return "HT"
	}
	return "FL"
}

// OrderStatus enumerates lifecycle states for travel orders.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "NEW"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
)

// IsValid reports whether the status is a known value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew, OrderStatusProcessing, OrderStatusConfirmed, OrderStatusCancelled, OrderStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusNew:        {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

// CanTransition reports whether the status graph allows current -> next.
func CanTransition(current, next OrderStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// OrderPriority enumerates urgency for flight orders.
type OrderPriority string

const (
	OrderPriorityNormal OrderPriority = "NORMAL"
	OrderPriorityHigh   OrderPriority = "HIGH"
	OrderPriorityUrgent OrderPriority = "URGENT"
)

// IsValid reports whether the priority is a known value.
func (p OrderPriority) IsValid() bool {
	switch p {
	case OrderPriorityNormal, OrderPriorityHigh, OrderPriorityUrgent:
		return true
	}
	return false
}

// Order is the aggregate for flight and hotel travel requests. The
// requester's employee id and full name are denormalized at creation time so
// an order keeps its original requester details.
type Order struct {
	ID          string
	OrderNumber string
	Kind        OrderKind
	UserID      string
	EmployeeID  string
	FullName    string
	Status      OrderStatus

	// Flight fields.
	FromCity     *string
	ToCity       *string
	FlightNumber *string
	DepartureAt  *time.Time
	ArrivalAt    *time.Time
	Priority     *OrderPriority

	// Hotel fields.
	City                *string
	HotelName           *string
	CheckIn             *time.Time
	CheckOut            *time.Time
	RelatedFlightNumber *string

	AdminNotes  *string
	ProcessedBy *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FormatOrderNumber renders the human-readable order number for a kind,
// year and sequence value, e.g. FL-2025-0001.
func FormatOrderNumber(kind OrderKind, year int, sequence int64) string {
	return fmt.Sprintf("%s-%d-%04d", kind.NumberPrefix(), year, sequence)
}
