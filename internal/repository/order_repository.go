package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/crew-travel-service/internal/domain"
)

// OrderFilter captures listing parameters. UserID scopes results to a single
// requester; admin listings leave it nil.
type OrderFilter struct {
	Kind       domain.OrderKind
	UserID     *string
	Statuses   []domain.OrderStatus
	Priorities []domain.OrderPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// OrderRepository encapsulates order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int64, error)
	CountByStatus(ctx context.Context, kind domain.OrderKind) (map[domain.OrderStatus]int64, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates the repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `id, order_number, kind, user_id, employee_id, full_name, status,
               from_city, to_city, flight_number, departure_at, arrival_at, priority,
               city, hotel_name, check_in, check_out, related_flight_number,
               admin_notes, processed_by, processed_at, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (order_number, kind, user_id, employee_id, full_name, status,
            from_city, to_city, flight_number, departure_at, arrival_at, priority,
            city, hotel_name, check_in, check_out, related_flight_number)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		order.OrderNumber,
		order.Kind,
		order.UserID,
		order.EmployeeID,
		order.FullName,
		order.Status,
		order.FromCity,
		order.ToCity,
		order.FlightNumber,
		order.DepartureAt,
		order.ArrivalAt,
		order.Priority,
		order.City,
		order.HotelName,
		order.CheckIn,
		order.CheckOut,
		order.RelatedFlightNumber,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	const query = `
        UPDATE orders
        SET status=$1, admin_notes=$2, processed_by=$3, processed_at=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		order.Status,
		order.AdminNotes,
		order.ProcessedBy,
		order.ProcessedAt,
		order.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	var order domain.Order
	if err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&order)...); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]domain.Order, int64, error) {
	clauses := []string{"kind=$1"}
	args := []any{filter.Kind}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(order_number) LIKE %s OR LOWER(COALESCE(from_city,'')) LIKE %s OR LOWER(COALESCE(to_city,'')) LIKE %s OR LOWER(COALESCE(city,'')) LIKE %s OR LOWER(COALESCE(flight_number,'')) LIKE %s OR LOWER(COALESCE(related_flight_number,'')) LIKE %s)",
			placeholder, placeholder, placeholder, placeholder, placeholder, placeholder))
	}

	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM orders WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		orderColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(scanTargets(&order)...); err != nil {
			return nil, 0, err
		}
		result = append(result, order)
	}
	return result, total, rows.Err()
}

func (r *orderRepository) CountByStatus(ctx context.Context, kind domain.OrderKind) (map[domain.OrderStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders WHERE kind=$1 GROUP BY status`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]int64)
	for rows.Next() {
		var status domain.OrderStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanTargets(order *domain.Order) []any {
	return []any{
		&order.ID,
		&order.OrderNumber,
		&order.Kind,
		&order.UserID,
		&order.EmployeeID,
		&order.FullName,
		&order.Status,
		&order.FromCity,
		&order.ToCity,
		&order.FlightNumber,
		&order.DepartureAt,
		&order.ArrivalAt,
		&order.Priority,
		&order.City,
		&order.HotelName,
		&order.CheckIn,
		&order.CheckOut,
		&order.RelatedFlightNumber,
		&order.AdminNotes,
		&order.ProcessedBy,
		&order.ProcessedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	}
}
