package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"kos-manager/internal/config"
	"kos-manager/internal/middleware"
	"kos-manager/internal/router"
	"kos-manager/internal/service"
	"kos-manager/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []service.Reminder
}

func (n *recordingNotifier) Notify(_ context.Context, r service.Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, r)
	return nil
}

type envelope struct {
	Code    int                        `json:"code"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
	Errors  map[string]string          `json:"errors"`
}

type testServer struct {
	t        *testing.T
	engine   *gin.Engine
	notifier *recordingNotifier
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		JWT:      config.JWTConfig{Secret: "router-test", Issuer: "kos-manager", ExpireHours: 24, RememberDays: 30},
		Security: config.SecurityConfig{BcryptCost: 4, EncryptionKey: "router-test-key"},
		Backup:   config.BackupConfig{Dir: filepath.Join(dir, "backups")},
		App:      config.AppSubConfig{CurrencySymbol: "$"},
		Reminder: config.ReminderConfig{DaysAhead: 3, Concurrency: 2},
	}
	n := &recordingNotifier{}
	today := testutil.Date(2024, 3, 15)
	r := router.SetupRouter(cfg, testutil.NewDB(t), nil, router.Options{
		Notifier: n,
		Clock:    testutil.FixedClock(today.Add(12 * time.Hour)),
	})
	return &testServer{t: t, engine: r, notifier: n}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func field[T any](t *testing.T, env envelope, key string) T {
	t.Helper()
	var v T
	raw, ok := env.Data[key]
	require.True(t, ok, "missing data.%s", key)
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// signUp registers and logs in a user, returning the bearer token.
func (s *testServer) signUp(name string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username":         name,
		"email":            name + "@example.com",
		"password":         "secret1",
		"confirm_password": "secret1",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    name + "@example.com",
		"password": "secret1",
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return field[string](s.t, decode(s.t, w), "token")
}

type idResp struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}

type paidResp struct {
	Status   string `json:"status"`
	PaidDate string `json:"paid_date"`
}

func TestHealthz(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_RequiredAndCookie(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/rooms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.signUp("landlord")

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "landlord@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Positive(t, session.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(session)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// logout revokes the session behind the token
	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_WrongPassword(t *testing.T) {
	s := newServer(t)
	s.signUp("landlord")

	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "landlord@example.com",
		"password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRentFlow(t *testing.T) {
	s := newServer(t)
	token := s.signUp("landlord")

	// room
	w := s.do(http.MethodPost, "/api/rooms", token, map[string]any{
		"number":       "5",
		"description":  "Corner room",
		"monthly_rent": 500,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	room := field[idResp](t, decode(t, w), "room")
	assert.Equal(t, "available", room.Status)

	// tenant moves in
	w = s.do(http.MethodPost, "/api/tenants", token, map[string]any{
		"name":       "Alice",
		"email":      "alice@example.com",
		"start_date": "2024-01-01",
		"room_id":    room.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tenant := field[idResp](t, decode(t, w), "tenant")

	w = s.do(http.MethodGet, fmt.Sprintf("/api/rooms/%d", room.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "occupied", field[idResp](t, decode(t, w), "room").Status)

	// a second tenant cannot take the same room
	w = s.do(http.MethodPost, "/api/tenants", token, map[string]any{
		"name":       "Bob",
		"start_date": "2024-02-01",
		"room_id":    room.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// payment due before today turns overdue on listing
	w = s.do(http.MethodPost, "/api/payments", token, map[string]any{
		"tenant_id": tenant.ID,
		"amount":    "500.00",
		"due_date":  "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	payment := field[idResp](t, decode(t, w), "payment")
	assert.Equal(t, "pending", payment.Status)

	w = s.do(http.MethodGet, "/api/payments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := field[[]idResp](t, decode(t, w), "items")
	require.Len(t, items, 1)
	assert.Equal(t, "overdue", items[0].Status)

	// reminder goes through the notifier
	w = s.do(http.MethodPost, fmt.Sprintf("/api/payments/%d/remind", payment.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "REMINDER: Payment of $500.00 is due for Alice in Room 5",
		field[string](t, decode(t, w), "reminder"))
	assert.Len(t, s.notifier.sent, 1)

	// mark paid stamps today
	w = s.do(http.MethodPost, fmt.Sprintf("/api/payments/%d/mark-paid", payment.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := field[paidResp](t, decode(t, w), "payment")
	assert.Equal(t, "paid", paid.Status)
	assert.Equal(t, "2024-03-15", paid.PaidDate)

	// settled payments cannot be reminded
	w = s.do(http.MethodPost, fmt.Sprintf("/api/payments/%d/remind", payment.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// revenue chart is a bare array of six months, oldest first
	w = s.do(http.MethodGet, "/api/dashboard/revenue-data", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var series []struct {
		Month   string  `json:"month"`
		Revenue float64 `json:"revenue"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &series))
	require.Len(t, series, 6)
	assert.Equal(t, "October", series[0].Month)
	assert.Equal(t, "March", series[5].Month)
	assert.Equal(t, 500.0, series[5].Revenue)

	// dashboard
	w = s.do(http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, 1, field[int](t, env, "occupied_rooms"))
	assert.Equal(t, int64(50000), field[int64](t, env, "monthly_revenue_cent"))
	assert.Equal(t, "$500.00", field[string](t, env, "monthly_revenue"))

	// CSV export
	w = s.do(http.MethodGet, "/api/export/payments.csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "500.00")

	// mutating requests show up in the activity log
	w = s.do(http.MethodGet, "/api/activity?method=post&q=/api/rooms", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), field[int64](t, decode(t, w), "total"))
}

func TestOwnership(t *testing.T) {
	s := newServer(t)
	owner := s.signUp("landlord")
	other := s.signUp("intruder")

	w := s.do(http.MethodPost, "/api/rooms", owner, map[string]any{
		"number":       "1",
		"monthly_rent": 300,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	room := field[idResp](t, decode(t, w), "room")
	path := fmt.Sprintf("/api/rooms/%d", room.ID)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, other, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, other, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/rooms/abc", owner, nil).Code)

	w = s.do(http.MethodGet, "/api/rooms", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), field[int64](t, decode(t, w), "total"))
}

func TestValidationErrors(t *testing.T) {
	s := newServer(t)
	token := s.signUp("landlord")

	w := s.do(http.MethodPost, "/api/rooms", token, map[string]any{
		"number":       "2",
		"monthly_rent": -10,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Contains(t, env.Errors, "monthly_rent")

	w = s.do(http.MethodPost, "/api/expenses", token, map[string]any{
		"description": "Paint",
		"amount":      "40",
		"category":    "party",
		"date":        "2024-03-10",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Errors, "category")
}

type nameResp struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestActiveTenants(t *testing.T) {
	s := newServer(t)
	token := s.signUp("landlord")

	var tenantIDs []uint
	for i, name := range []string{"Bob", "Alice"} {
		w := s.do(http.MethodPost, "/api/rooms", token, map[string]any{
			"number":       fmt.Sprint(i + 1),
			"monthly_rent": 300,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		room := field[idResp](t, decode(t, w), "room")

		w = s.do(http.MethodPost, "/api/tenants", token, map[string]any{
			"name":       name,
			"start_date": "2024-01-01",
			"room_id":    room.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		tenantIDs = append(tenantIDs, field[idResp](t, decode(t, w), "tenant").ID)
	}

	w := s.do(http.MethodPost, fmt.Sprintf("/api/tenants/%d/deactivate", tenantIDs[0]), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/tenants/active", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := field[[]nameResp](t, decode(t, w), "items")
	require.Len(t, items, 1)
	assert.Equal(t, "Alice", items[0].Name)
	assert.Equal(t, tenantIDs[1], items[0].ID)

	// the static route does not shadow /tenants/:id
	w = s.do(http.MethodGet, fmt.Sprintf("/api/tenants/%d", tenantIDs[0]), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
