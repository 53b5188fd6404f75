package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/crew-travel-service/internal/domain"
)

// UserFilter defines query params for user listing.
type UserFilter struct {
	Search   *string
	Role     *domain.UserRole
	Position *string
	Location *string
	IsActive *bool
	Limit    int
	Offset   int
}

// UserStats aggregates user counts for the admin dashboard.
type UserStats struct {
	Total      int64
	Active     int64
	Inactive   int64
	ByPosition map[string]int64
	ByLocation map[string]int64
}

// UserRepository defines persistence access for crew members.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, int64, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Stats(ctx context.Context) (*UserStats, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, employee_id, full_name, password_hash, role, position, location, is_active, last_login_at, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (employee_id, full_name, password_hash, role, position, location, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.EmployeeID,
		user.FullName,
		user.PasswordHash,
		user.Role,
		user.Position,
		user.Location,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users
        SET full_name=$1, password_hash=$2, role=$3, position=$4, location=$5, is_active=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		user.FullName,
		user.PasswordHash,
		user.Role,
		user.Position,
		user.Location,
		user.IsActive,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE employee_id=$1`
	return r.fetchSingle(ctx, query, employeeID)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.EmployeeID,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.Position,
		&user.Location,
		&user.IsActive,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(full_name) LIKE %s OR LOWER(employee_id) LIKE %s OR LOWER(position) LIKE %s OR LOWER(location) LIKE %s)",
			placeholder, placeholder, placeholder, placeholder))
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Position != nil {
		args = append(args, *filter.Position)
		clauses = append(clauses, fmt.Sprintf("position=$%d", len(args)))
	}
	if filter.Location != nil {
		args = append(args, *filter.Location)
		clauses = append(clauses, fmt.Sprintf("location=$%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM users WHERE ` + where
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

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		userColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.EmployeeID,
			&user.FullName,
			&user.PasswordHash,
			&user.Role,
			&user.Position,
			&user.Location,
			&user.IsActive,
			&user.LastLoginAt,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, user)
	}
	return result, total, rows.Err()
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at=$1, updated_at=NOW() WHERE id=$2`, at, id)
	return err
}

func (r *userRepository) Stats(ctx context.Context) (*UserStats, error) {
	stats := &UserStats{
		ByPosition: make(map[string]int64),
		ByLocation: make(map[string]int64),
	}

	const totalsQuery = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE is_active),
               COUNT(*) FILTER (WHERE NOT is_active)
        FROM users`
	if err := r.pool.QueryRow(ctx, totalsQuery).Scan(&stats.Total, &stats.Active, &stats.Inactive); err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, `SELECT position, COUNT(*) FROM users GROUP BY position`, stats.ByPosition); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, `SELECT location, COUNT(*) FROM users GROUP BY location`, stats.ByLocation); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *userRepository) groupCount(ctx context.Context, query string, dest map[string]int64) error {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		dest[key] = count
	}
	return rows.Err()
}
