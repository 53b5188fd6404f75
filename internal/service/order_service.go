package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crew-travel-service/internal/domain"
	"github.com/spec-kit/crew-travel-service/internal/events"
	"github.com/spec-kit/crew-travel-service/internal/repository"
	apperrors "github.com/spec-kit/crew-travel-service/pkg/util"
)

// OrderService coordinates travel order workflows for both kinds.
type OrderService struct {
	orders     repository.OrderRepository
	sequences  repository.SequenceRepository
	dispatcher events.Dispatcher
	cache      Cache
}

// NewOrderService constructs the service.
func NewOrderService(orders repository.OrderRepository, sequences repository.SequenceRepository, dispatcher events.Dispatcher, cache Cache) *OrderService {
	return &OrderService{orders: orders, sequences: sequences, dispatcher: dispatcher, cache: cache}
}

// OrderCreateInput carries kind-specific itinerary fields. Flight orders use
// the From/To/Departure/Arrival/Priority group, hotel orders the
// City/CheckIn/CheckOut group.
type OrderCreateInput struct {
	FromCity     string
	ToCity       string
	FlightNumber string
	DepartureAt  time.Time
	ArrivalAt    time.Time
	Priority     domain.OrderPriority

	City                string
	HotelName           string
	CheckIn             time.Time
	CheckOut            time.Time
	RelatedFlightNumber string
}

// OrderListFilter describes list parameters shared by listMine and listAll.
type OrderListFilter struct {
	Statuses   []domain.OrderStatus
	Priorities []domain.OrderPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// Create validates the payload, assigns an order number and persists the
// order with status NEW. The requester's employee id and name are
// denormalized onto the record.
func (s *OrderService) Create(ctx context.Context, requester *domain.User, kind domain.OrderKind, input OrderCreateInput) (*domain.Order, error) {
	order := &domain.Order{
		Kind:       kind,
		UserID:     requester.ID,
		EmployeeID: requester.EmployeeID,
		FullName:   requester.FullName,
		Status:     domain.OrderStatusNew,
	}

	switch kind {
	case domain.OrderKindFlight:
		if err := applyFlightFields(order, input); err != nil {
			return nil, err
		}
	case domain.OrderKindHotel:
		if err := applyHotelFields(order, input); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewValidationError("unknown order kind", nil)
	}

	year := time.Now().Year()
	seq, err := s.sequences.Next(ctx, kind, year)
	if err != nil {
		return nil, err
	}
	order.OrderNumber = domain.FormatOrderNumber(kind, year, seq)

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, kind)

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventOrderCreated,
		ActorID: requester.ID,
		Payload: events.OrderCreatedPayload{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Kind:        kind,
			EmployeeID:  order.EmployeeID,
		},
	})
	return order, nil
}

func applyFlightFields(order *domain.Order, input OrderCreateInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.FromCity) == "" {
		details["from_city"] = "required"
	}
	if strings.TrimSpace(input.ToCity) == "" {
		details["to_city"] = "required"
	}
	if input.DepartureAt.IsZero() {
		details["departure_at"] = "required"
	}
	if input.ArrivalAt.IsZero() {
		details["arrival_at"] = "required"
	}
	if len(details) == 0 && !input.ArrivalAt.After(input.DepartureAt) {
		details["arrival_at"] = "must be after departure"
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.OrderPriorityNormal
	}
	if !priority.IsValid() {
		details["priority"] = "unknown value"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid flight order payload", details)
	}

	order.FromCity = ptr(strings.TrimSpace(input.FromCity))
	order.ToCity = ptr(strings.TrimSpace(input.ToCity))
	if fn := strings.TrimSpace(input.FlightNumber); fn != "" {
		order.FlightNumber = &fn
	}
	departure := input.DepartureAt
	arrival := input.ArrivalAt
	order.DepartureAt = &departure
	order.ArrivalAt = &arrival
	order.Priority = &priority
	return nil
}

func applyHotelFields(order *domain.Order, input OrderCreateInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.City) == "" {
		details["city"] = "required"
	}
	if input.CheckIn.IsZero() {
		details["check_in"] = "required"
	}
	if input.CheckOut.IsZero() {
		details["check_out"] = "required"
	}
	if len(details) == 0 && !input.CheckOut.After(input.CheckIn) {
		details["check_out"] = "must be after check-in"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid hotel order payload", details)
	}

	order.City = ptr(strings.TrimSpace(input.City))
	if hn := strings.TrimSpace(input.HotelName); hn != "" {
		order.HotelName = &hn
	}
	checkIn := input.CheckIn
	checkOut := input.CheckOut
	order.CheckIn = &checkIn
	order.CheckOut = &checkOut
	if rf := strings.TrimSpace(input.RelatedFlightNumber); rf != "" {
		order.RelatedFlightNumber = &rf
	}
	return nil
}

// ListMine returns the caller's own orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID string, kind domain.OrderKind, filter OrderListFilter) ([]domain.Order, int64, error) {
	return s.orders.List(ctx, repository.OrderFilter{
		Kind:       kind,
		UserID:     &userID,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// ListAll returns orders of a kind without ownership scoping. Admin only.
func (s *OrderService) ListAll(ctx context.Context, kind domain.OrderKind, filter OrderListFilter) ([]domain.Order, int64, error) {
	return s.orders.List(ctx, repository.OrderFilter{
		Kind:       kind,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// GetForUser fetches an order while enforcing ownership. A foreign or
// missing order yields the same not-found error so callers cannot probe for
// other users' orders.
func (s *OrderService) GetForUser(ctx context.Context, userID string, kind domain.OrderKind, orderID string) (*domain.Order, error) {
	order, err := s.getOfKind(ctx, kind, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.NewNotFound("order")
	}
	return order, nil
}

// UpdateStatus transitions an order along the status graph, recording the
// processing admin and timestamp. Admin only.
func (s *OrderService) UpdateStatus(ctx context.Context, admin *domain.User, kind domain.OrderKind, orderID string, newStatus domain.OrderStatus, adminNotes string) (*domain.Order, error) {
	if !newStatus.IsValid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}

	order, err := s.getOfKind(ctx, kind, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, newStatus) {
		return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
			"from": order.Status,
			"to":   newStatus,
		})
	}

	oldStatus := order.Status
	now := time.Now()
	order.Status = newStatus
	order.ProcessedBy = &admin.ID
	order.ProcessedAt = &now
	if notes := strings.TrimSpace(adminNotes); notes != "" {
		order.AdminNotes = &notes
	}

	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, kind)

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventOrderStatusChanged,
		ActorID: admin.ID,
		Payload: events.OrderStatusChangedPayload{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Kind:        kind,
			OldStatus:   oldStatus,
			NewStatus:   newStatus,
			AdminNotes:  adminNotes,
		},
	})
	return order, nil
}

// Stats returns order counts by status, served from cache when fresh. Every
// status appears in the result even when its count is zero.
func (s *OrderService) Stats(ctx context.Context, kind domain.OrderKind) (map[domain.OrderStatus]int64, error) {
	key := orderStatsCacheKey(kind)
	cached := make(map[domain.OrderStatus]int64)
	if s.cache != nil && s.cache.GetJSON(ctx, key, &cached) == nil {
		return cached, nil
	}

	counts, err := s.orders.CountByStatus(ctx, kind)
	if err != nil {
		return nil, err
	}
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusNew,
		domain.OrderStatusProcessing,
		domain.OrderStatusConfirmed,
		domain.OrderStatusCancelled,
		domain.OrderStatusCompleted,
	} {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, counts, statsCacheTTL)
	}
	return counts, nil
}

func (s *OrderService) getOfKind(ctx context.Context, kind domain.OrderKind, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("order")
		}
		return nil, err
	}
	if order.Kind != kind {
		return nil, apperrors.NewNotFound("order")
	}
	return order, nil
}

func (s *OrderService) invalidateStats(ctx context.Context, kind domain.OrderKind) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, orderStatsCacheKey(kind))
	}
}

func orderStatsCacheKey(kind domain.OrderKind) string {
	return "stats:orders:" + string(kind)
}

func ptr(s string) *string {
	return &s
}
