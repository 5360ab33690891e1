package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackmyfin/internal/auth"
	"trackmyfin/internal/log"
	"trackmyfin/internal/report"
	"trackmyfin/internal/services"
	"trackmyfin/internal/storage"
)

// testNow anchors the report engine so monthly windows are deterministic.
var testNow = time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{
		Handler: slog.NewTextHandler(io.Discard, nil),
	})
	records := services.NewRecordService(repo, nil)
	engine := report.NewEngine(func() time.Time { return testNow })
	tokens := auth.NewTokenService("test-secret-test-secret-test-sec", time.Hour)
	t.Cleanup(tokens.Close)

	srv := NewServer(":0", records, repo, engine, tokens, 10000, logger)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, srv *Server, email string) string {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	registerUser(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"name":     "Other",
		"password": "secret-password",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret-password",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"missing email", map[string]string{"name": "X", "password": "secret-password"}, http.StatusUnprocessableEntity},
		{"bad email", map[string]string{"email": "nope", "name": "X", "password": "secret-password"}, http.StatusUnprocessableEntity},
		{"missing name", map[string]string{"email": "a@b.c", "password": "secret-password"}, http.StatusUnprocessableEntity},
		{"short password", map[string]string{"email": "a@b.c", "name": "X", "password": "short"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTransactionCRUD(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "bob@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", token, map[string]string{
		"amount":      "42.50",
		"kind":        "expense",
		"description": "Groceries",
		"category":    "Food",
		"date":        "2025-07-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created transactionPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.InDelta(t, 42.50, created.Amount, 0.001)
	assert.Equal(t, "Food", created.Category)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/transactions/%d", created.ID), token, map[string]string{
		"amount":      "40.00",
		"kind":        "expense",
		"description": "Groceries (corrected)",
		"category":    "Food",
		"date":        "2025-07-10",
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []transactionPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.InDelta(t, 40.00, list[0].Amount, 0.001)

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionValidation(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "carol@example.com")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"negative amount", map[string]string{"amount": "-5", "kind": "expense", "description": "x", "date": "2025-07-10"}},
		{"zero amount", map[string]string{"amount": "0", "kind": "expense", "description": "x", "date": "2025-07-10"}},
		{"bad kind", map[string]string{"amount": "5", "kind": "transfer", "description": "x", "date": "2025-07-10"}},
		{"empty description", map[string]string{"amount": "5", "kind": "expense", "description": " ", "date": "2025-07-10"}},
		{"bad date", map[string]string{"amount": "5", "kind": "expense", "description": "x", "date": "July 10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/transactions", token, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		})
	}
}

func TestUsersAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	alice := registerUser(t, srv, "alice@example.com")
	mallory := registerUser(t, srv, "mallory@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", alice, map[string]string{
		"amount":      "10",
		"kind":        "income",
		"description": "Refund",
		"date":        "2025-07-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created transactionPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.ID), mallory, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions", mallory, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []transactionPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestDashboardStats(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "dave@example.com")

	// current month (July 2025 under the test clock)
	for _, body := range []map[string]string{
		{"amount": "1000", "kind": "income", "description": "Freelance", "date": "2025-07-05"},
		{"amount": "750", "kind": "expense", "description": "Rent", "category": "Housing", "date": "2025-07-03"},
		// outside the current month, counts only toward the balance
		{"amount": "500", "kind": "income", "description": "Old gig", "date": "2025-03-01"},
	} {
		rec := doJSON(t, srv, http.MethodPost, "/api/transactions", token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/salaries", token, map[string]string{
		"amount":      "2000",
		"description": "July salary",
		"date":        "2025-07-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats statsPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))

	// balance = (1000 + 500 + 2000) - 750
	assert.InDelta(t, 2750.0, stats.TotalBalance, 0.001)
	// monthly income = 1000 + 2000
	assert.InDelta(t, 3000.0, stats.MonthlyIncome, 0.001)
	assert.InDelta(t, 750.0, stats.MonthlyExpenses, 0.001)
	// (3000 - 750) / 3000 * 100
	assert.InDelta(t, 75.0, stats.SavingsRate, 0.001)
}

func TestExpensesChart(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "erin@example.com")

	for _, body := range []map[string]string{
		{"amount": "150", "kind": "expense", "description": "Groceries", "category": "Food", "date": "2025-07-02"},
		{"amount": "50", "kind": "expense", "description": "Bus pass", "category": "Transport", "date": "2025-06-15"},
		// income must not appear in the chart
		{"amount": "900", "kind": "income", "description": "Gig", "date": "2025-07-02"},
		// older than any supported range token's default window
		{"amount": "75", "kind": "expense", "description": "Ancient", "category": "Food", "date": "2024-01-10"},
	} {
		rec := doJSON(t, srv, http.MethodPost, "/api/transactions", token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard/expenses-chart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var chart expensesChartPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))

	// default six-month window anchored at July 2025: Jan..Jul inclusive
	require.Len(t, chart.MonthlyData, 7)
	assert.Equal(t, "Jan 2025", chart.MonthlyData[0].Month)
	assert.Equal(t, "Jul 2025", chart.MonthlyData[6].Month)
	assert.InDelta(t, 150.0, chart.MonthlyData[6].Amount, 0.001)
	assert.InDelta(t, 50.0, chart.MonthlyData[5].Amount, 0.001)

	require.Len(t, chart.CategoryData, 2)
	assert.Equal(t, "Food", chart.CategoryData[0].Name)
	assert.InDelta(t, 75.0, chart.CategoryData[0].Percentage, 0.001)
	assert.Equal(t, "Transport", chart.CategoryData[1].Name)
	assert.InDelta(t, 25.0, chart.CategoryData[1].Percentage, 0.001)
}

func TestExpensesChartRangeTokens(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "frank@example.com")

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard/expenses-chart?range=12m", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var chart expensesChartPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	assert.Len(t, chart.MonthlyData, 13)

	// unknown tokens fall back to the default window instead of failing
	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard/expenses-chart?range=banana", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	assert.Len(t, chart.MonthlyData, 7)

	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard/expenses-chart?range=ytd", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	require.NotEmpty(t, chart.MonthlyData)
	assert.Equal(t, "Jan 2025", chart.MonthlyData[0].Month)
}

func TestCategoryEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "grace@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/categories", token, map[string]string{
		"name": "Food", "color": "#ff0000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/categories", token, map[string]string{"name": "Food"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []categoryPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 1)

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cats[0].ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestProfileEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "henry@example.com")

	rec := doJSON(t, srv, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile userPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "henry@example.com", profile.Email)

	rec = doJSON(t, srv, http.MethodPut, "/api/profile", token, map[string]string{
		"email": "henry@example.com",
		"name":  "Henry Renamed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "Henry Renamed", profile.Name)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiting(t *testing.T) {
	srv := newTestServer(t)
	srv.rateLimiter.stop()
	srv.rateLimiter = newRateLimiter(3)
	t.Cleanup(func() { srv.rateLimiter.stop() })

	var last int
	for i := 0; i < 5; i++ {
		rec := doJSON(t, srv, http.MethodGet, "/api/profile", "", nil)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
