package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/crew-travel-service/internal/api/http/handlers"
	"github.com/spec-kit/crew-travel-service/internal/auth"
	"github.com/spec-kit/crew-travel-service/internal/config"
	"github.com/spec-kit/crew-travel-service/internal/domain"
	"github.com/spec-kit/crew-travel-service/internal/events"
	"github.com/spec-kit/crew-travel-service/internal/observability"
	"github.com/spec-kit/crew-travel-service/internal/repository"
	"github.com/spec-kit/crew-travel-service/internal/service"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
	next  int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*domain.User)}
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	user.ID = fmt.Sprintf("u-%d", f.next)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUsers) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUsers) GetByEmployeeID(_ context.Context, employeeID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.EmployeeID == employeeID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) List(_ context.Context, _ repository.UserFilter) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.User
	for _, user := range f.users {
		result = append(result, *user)
	}
	return result, int64(len(result)), nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.LastLoginAt = &at
	return nil
}

func (f *fakeUsers) Stats(_ context.Context) (*repository.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &repository.UserStats{
		ByPosition: make(map[string]int64),
		ByLocation: make(map[string]int64),
	}
	for _, user := range f.users {
		stats.Total++
		if user.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.ByPosition[user.Position]++
		stats.ByLocation[user.Location]++
	}
	return stats, nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	next   int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[string]*domain.Order)}
}

func (f *fakeOrders) Create(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	order.ID = fmt.Sprintf("o-%d", f.next)
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[order.ID]; !ok {
		return pgx.ErrNoRows
	}
	order.UpdatedAt = time.Now()
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrders) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Order
	for _, order := range f.orders {
		if order.Kind != filter.Kind {
			continue
		}
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		result = append(result, *order)
	}
	return result, int64(len(result)), nil
}

func (f *fakeOrders) CountByStatus(_ context.Context, kind domain.OrderKind) (map[domain.OrderStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[domain.OrderStatus]int64)
	for _, order := range f.orders {
		if order.Kind == kind {
			counts[order.Status]++
		}
	}
	return counts, nil
}

type fakeSequences struct {
	mu     sync.Mutex
	values map[string]int64
}

func newFakeSequences() *fakeSequences {
	return &fakeSequences{values: make(map[string]int64)}
}

func (f *fakeSequences) Next(_ context.Context, kind domain.OrderKind, year int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%s-%d", kind, year)
	f.values[key]++
	return f.values[key], nil
}

func newTestServer(t *testing.T) (*fiber.App, *fakeUsers) {
	t.Helper()

	users := newFakeUsers()
	orders := newFakeOrders()
	sequences := newFakeSequences()
	dispatcher := events.NewInMemoryDispatcher()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           "router-test-secret",
			AccessTokenTTLHours: 1,
			BcryptCost:          4,
		},
	}

	authService := service.NewAuthService(cfg, users, dispatcher)
	userService := service.NewUserService(users, cfg.Auth.BcryptCost, dispatcher, nil)
	orderService := service.NewOrderService(orders, sequences, dispatcher, nil)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		FlightOrders:   handlers.NewOrdersHandler(orderService, domain.OrderKindFlight),
		HotelOrders:    handlers.NewOrdersHandler(orderService, domain.OrderKindHotel),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})
	return app, users
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), "body: %s", raw)
	}
	return resp.StatusCode, payload
}

func registerUser(t *testing.T, app *fiber.App, employeeID string) string {
	t.Helper()

	status, body := doJSON(t, app, nethttp.MethodPost, "/auth/register", "", map[string]any{
		"employee_id": employeeID,
		"full_name":   "Test User Example",
		"password":    "secret123",
		"position":    "БП",
		"location":    "Moscow",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	token := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func promoteToManager(t *testing.T, users *fakeUsers, employeeID string) {
	t.Helper()

	user, err := users.GetByEmployeeID(context.Background(), employeeID)
	require.NoError(t, err)
	user.Role = domain.RoleManager
	require.NoError(t, users.Update(context.Background(), user))
}

func loginUser(t *testing.T, app *fiber.App, employeeID, password string) string {
	t.Helper()

	status, body := doJSON(t, app, nethttp.MethodPost, "/auth/login", "", map[string]any{
		"employee_id": employeeID,
		"password":    password,
	})
	require.Equal(t, nethttp.StatusOK, status)
	return body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
}

func TestRouter_HealthLive(t *testing.T) {
	t.Parallel()

	app, _ := newTestServer(t)

	status, body := doJSON(t, app, nethttp.MethodGet, "/health/live", "", nil)
	require.Equal(t, nethttp.StatusOK, status)
	require.Equal(t, "alive", body["status"])
	require.NotEmpty(t, body["uptime"])
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	app, _ := newTestServer(t)

	for _, path := range []string{"/auth/profile", "/flight-orders/my", "/hotel-orders/my", "/users/"} {
		status, body := doJSON(t, app, nethttp.MethodGet, path, "", nil)
		require.Equal(t, nethttp.StatusUnauthorized, status, path)
		errObj := body["error"].(map[string]any)
		require.Equal(t, "UNAUTHORIZED", errObj["code"], path)
	}
}

func TestRouter_AdminRoutesForbiddenForEmployees(t *testing.T) {
	t.Parallel()

	app, _ := newTestServer(t)
	token := registerUser(t, app, "E100")

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{nethttp.MethodGet, "/flight-orders/", nil},
		{nethttp.MethodGet, "/flight-orders/stats", nil},
		{nethttp.MethodPut, "/flight-orders/some-id/status", map[string]any{"status": "PROCESSING"}},
		{nethttp.MethodGet, "/users/", nil},
		{nethttp.MethodGet, "/users/stats", nil},
	}
	for _, tc := range cases {
		status, body := doJSON(t, app, tc.method, tc.path, token, tc.body)
		require.Equal(t, nethttp.StatusForbidden, status, "%s %s", tc.method, tc.path)
		errObj := body["error"].(map[string]any)
		require.Equal(t, "FORBIDDEN", errObj["code"])
	}
}

func TestRouter_FlightOrderLifecycle(t *testing.T) {
	t.Parallel()

	app, users := newTestServer(t)
	employeeToken := registerUser(t, app, "E100")
	registerUser(t, app, "A900")
	promoteToManager(t, users, "A900")
	adminToken := loginUser(t, app, "A900", "secret123")

	departure := time.Now().Add(48 * time.Hour).UTC()
	status, body := doJSON(t, app, nethttp.MethodPost, "/flight-orders/", employeeToken, map[string]any{
		"from_city":     "Moscow",
		"to_city":       "Sochi",
		"flight_number": "SU-1138",
		"departure_at":  departure.Format(time.RFC3339),
		"arrival_at":    departure.Add(3 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, nethttp.StatusCreated, status)

	data := body["data"].(map[string]any)
	orderID := data["id"].(string)
	orderNumber := data["order_number"].(string)
	require.Equal(t, "NEW", data["status"])
	require.Equal(t, "E100", data["employee_id"])
	require.Regexp(t, `^FL-\d{4}-\d{4}$`, orderNumber)

	// Requester sees the order; a stranger id yields 404, not 403.
	status, _ = doJSON(t, app, nethttp.MethodGet, "/flight-orders/"+orderID, employeeToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	status, body = doJSON(t, app, nethttp.MethodGet, "/flight-orders/"+orderID, adminToken, nil)
	require.Equal(t, nethttp.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])

	// Illegal transition NEW -> COMPLETED rejected.
	status, body = doJSON(t, app, nethttp.MethodPut, "/flight-orders/"+orderID+"/status", adminToken, map[string]any{
		"status": "COMPLETED",
	})
	require.Equal(t, nethttp.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", body["error"].(map[string]any)["code"])

	status, body = doJSON(t, app, nethttp.MethodPut, "/flight-orders/"+orderID+"/status", adminToken, map[string]any{
		"status":      "PROCESSING",
		"admin_notes": "booked with carrier",
	})
	require.Equal(t, nethttp.StatusOK, status)
	data = body["data"].(map[string]any)
	require.Equal(t, "PROCESSING", data["status"])
	require.Equal(t, "booked with carrier", data["admin_notes"])
	require.NotEmpty(t, data["processed_by"])
	require.NotEmpty(t, data["processed_at"])

	// Admin listing and stats reflect the order.
	status, body = doJSON(t, app, nethttp.MethodGet, "/flight-orders/", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	require.Len(t, body["data"].([]any), 1)

	status, body = doJSON(t, app, nethttp.MethodGet, "/flight-orders/stats", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	byStatus := body["data"].(map[string]any)["by_status"].(map[string]any)
	require.Equal(t, float64(1), byStatus["PROCESSING"])
	require.Equal(t, float64(0), byStatus["NEW"])
}

func TestRouter_HotelOrderCreateAndScope(t *testing.T) {
	t.Parallel()

	app, _ := newTestServer(t)
	token := registerUser(t, app, "E100")

	checkIn := time.Now().Add(24 * time.Hour).UTC()
	status, body := doJSON(t, app, nethttp.MethodPost, "/hotel-orders/", token, map[string]any{
		"city":       "Sochi",
		"hotel_name": "Seaside",
		"check_in":   checkIn.Format(time.RFC3339),
		"check_out":  checkIn.Add(72 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, nethttp.StatusCreated, status)
	data := body["data"].(map[string]any)
	require.Regexp(t, `^HT-\d{4}-\d{4}$`, data["order_number"])
	hotelID := data["id"].(string)

	// A hotel order id is not visible through the flight surface.
	status, _ = doJSON(t, app, nethttp.MethodGet, "/flight-orders/"+hotelID, token, nil)
	require.Equal(t, nethttp.StatusNotFound, status)

	status, body = doJSON(t, app, nethttp.MethodGet, "/hotel-orders/my", token, nil)
	require.Equal(t, nethttp.StatusOK, status)
	require.Len(t, body["data"].([]any), 1)
	pagination := body["pagination"].(map[string]any)
	require.Equal(t, float64(1), pagination["total"])
}

func TestRouter_UserAdministration(t *testing.T) {
	t.Parallel()

	app, users := newTestServer(t)
	registerUser(t, app, "A900")
	promoteToManager(t, users, "A900")
	adminToken := loginUser(t, app, "A900", "secret123")

	status, body := doJSON(t, app, nethttp.MethodPost, "/users/", adminToken, map[string]any{
		"employee_id": "E200",
		"full_name":   "Created Crew Member",
		"password":    "secret123",
		"role":        "SUPERVISOR",
		"position":    "КВС",
		"location":    "Kazan",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	created := body["data"].(map[string]any)
	require.Equal(t, "SUPERVISOR", created["role"])
	createdID := created["id"].(string)

	status, body = doJSON(t, app, nethttp.MethodPatch, "/users/"+createdID+"/status", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	require.Equal(t, false, body["data"].(map[string]any)["is_active"])

	// Deactivated accounts cannot log in.
	status, _ = doJSON(t, app, nethttp.MethodPost, "/auth/login", "", map[string]any{
		"employee_id": "E200",
		"password":    "secret123",
	})
	require.Equal(t, nethttp.StatusUnauthorized, status)

	status, body = doJSON(t, app, nethttp.MethodGet, "/users/stats", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	stats := body["data"].(map[string]any)
	require.Equal(t, float64(2), stats["total"])
	require.Equal(t, float64(1), stats["inactive"])

	status, _ = doJSON(t, app, nethttp.MethodDelete, "/users/"+createdID, adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	status, _ = doJSON(t, app, nethttp.MethodGet, "/users/"+createdID, adminToken, nil)
	require.Equal(t, nethttp.StatusNotFound, status)
}

func TestRouter_DeactivationRevokesExistingToken(t *testing.T) {
	t.Parallel()

	app, users := newTestServer(t)
	token := registerUser(t, app, "E100")

	user, err := users.GetByEmployeeID(context.Background(), "E100")
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, users.Update(context.Background(), user))

	status, _ := doJSON(t, app, nethttp.MethodGet, "/auth/profile", token, nil)
	require.Equal(t, nethttp.StatusUnauthorized, status)
}
