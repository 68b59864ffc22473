package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"spendfy/internal/auth"
	"spendfy/internal/log"
	"spendfy/internal/services"
	"spendfy/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t     *testing.T
	srv   *Server
	store *storage.Store
}

func newTestAPI(t *testing.T, opts Options) *testAPI {
	t.Helper()
	ctx := context.Background()
	store, err := storage.NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	issuer, err := auth.NewIssuer([]byte(strings.Repeat("k", auth.MinSecretLength)))
	require.NoError(t, err)
	hasher, err := auth.NewHasher(4)
	require.NoError(t, err)

	logger := log.New(log.Config{Output: io.Discard})
	identity, _ := services.NewIdentity(32, time.Minute)
	events := services.NewEvents(nil, logger)
	svc := Services{
		Auth:         services.NewAuthService(store, identity, events, issuer, hasher),
		Accounts:     services.NewAccountService(store, identity, events),
		Categories:   services.NewCategoryService(store, identity, events),
		Budgets:      services.NewBudgetService(store, identity, events),
		Transactions: services.NewTransactionService(store, identity, events),
	}

	srv, err := NewServer(":0", svc, store, logger, opts)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return &testAPI{t: t, srv: srv, store: store}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) register(name, email string) string {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(a.t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[authResponse](a.t, rr).Token
}

// create posts body and returns the id of the created resource.
func (a *testAPI) create(path, token string, body any) int64 {
	a.t.Helper()
	rr := a.do(http.MethodPost, path, token, body)
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	var out struct {
		ID int64 `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out.ID
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t, Options{})

	rr := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rr)["status"])
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = api.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ready", decode[map[string]any](t, rr)["status"])

	require.NoError(t, api.store.Close())
	rr = api.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAuthEndpoints(t *testing.T) {
	api := newTestAPI(t, Options{})

	rr := api.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	res := decode[authResponse](t, rr)
	assert.Equal(t, "Bearer", res.Type)
	assert.Equal(t, "ana@example.com", res.Email)
	assert.NotEmpty(t, res.Token)

	rr = api.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ana again", "email": "ana@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Email already registered", decode[ErrorBody](t, rr).Message)

	rr = api.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": " ", "email": "nope", "password": "1",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[ErrorBody](t, rr)
	assert.Contains(t, body.Fields, "name")
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")

	rr = api.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Zoé", "email": "zoe@example.com", "password": strings.Repeat("é", 40),
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "size must be at most 72 bytes", decode[ErrorBody](t, rr).Fields["password"])

	rr = api.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	wrongPassword := decode[ErrorBody](t, rr).Message

	rr = api.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ghost@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, wrongPassword, decode[ErrorBody](t, rr).Message)

	rr = api.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	token := decode[authResponse](t, rr).Token

	rr = api.do(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = api.do(http.MethodGet, "/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = api.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[userResponse](t, rr)
	assert.Equal(t, "Ana", me.Name)
	assert.Equal(t, "ACTIVE", me.Status)

	rr = api.do(http.MethodDelete, "/auth/me", token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = api.do(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAccountEndpoints(t *testing.T) {
	api := newTestAPI(t, Options{})
	ana := api.register("Ana", "ana@example.com")
	bob := api.register("Bob", "bob@example.com")

	rr := api.do(http.MethodPost, "/accounts", ana, `{"name":"Wallet","type":"CASH","initialBalance":123.45}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"initialBalance":123.45`)
	id := decode[accountResponse](t, rr).ID

	rr = api.do(http.MethodPost, "/accounts", ana, `{"name":"Wallet","type":"BANK","initialBalance":0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(http.MethodGet, idPath("/accounts", id), ana, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Wallet", decode[accountResponse](t, rr).Name)

	rr = api.do(http.MethodGet, idPath("/accounts", id), bob, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Account does not belong to authenticated user", decode[ErrorBody](t, rr).Message)

	rr = api.do(http.MethodGet, "/accounts/9999", ana, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Account not found with id: 9999", decode[ErrorBody](t, rr).Message)

	rr = api.do(http.MethodGet, "/accounts/abc", ana, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(http.MethodGet, "/accounts", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = api.do(http.MethodPut, idPath("/accounts", id), ana, `{"name":"Main wallet","type":"CASH","initialBalance":"10.5"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"initialBalance":10.50`)

	rr = api.do(http.MethodDelete, idPath("/accounts", id), ana, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = api.do(http.MethodGet, idPath("/accounts", id), ana, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBudgetEndpoints(t *testing.T) {
	api := newTestAPI(t, Options{})
	ana := api.register("Ana", "ana@example.com")
	food := api.create("/categories", ana, map[string]any{"name": "Food"})
	wallet := api.create("/accounts", ana, map[string]any{"name": "Wallet", "type": "CASH", "initialBalance": "0"})

	rr := api.do(http.MethodPost, "/budgets", ana, map[string]any{
		"limitAmount": "500.00", "startDate": "2024-01-31", "endDate": "2024-01-01", "categoryId": food,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "End date cannot be before start date", decode[ErrorBody](t, rr).Message)

	budget := api.create("/budgets", ana, map[string]any{
		"limitAmount": "500.00", "startDate": "2024-01-01", "endDate": "2024-01-31", "categoryId": food,
	})

	rr = api.do(http.MethodPost, "/budgets", ana, map[string]any{
		"limitAmount": "100.00", "startDate": "2024-01-15", "endDate": "2024-02-15", "categoryId": food,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "A budget already exists for this category in the given period", decode[ErrorBody](t, rr).Message)

	api.create("/transactions", ana, map[string]any{
		"type": "EXPENSE", "date": "2024-01-10", "amount": "123.45", "status": "PAID",
		"accountId": wallet, "categoryId": food,
	})
	api.create("/transactions", ana, map[string]any{
		"type": "EXPENSE", "date": "2024-02-10", "amount": "50.00", "status": "PAID",
		"accountId": wallet, "categoryId": food,
	})

	rr = api.do(http.MethodGet, idPath("/budgets", budget)+"/usage", ana, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"spent":123.45`)
	assert.Contains(t, rr.Body.String(), `"remaining":376.55`)
	assert.Equal(t, false, decode[map[string]any](t, rr)["exceeded"])

	rr = api.do(http.MethodGet, idPath("/budgets", budget), ana, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[budgetResponse](t, rr)
	assert.Equal(t, "Food", got.CategoryName)
	assert.Equal(t, "2024-01-31", got.EndDate.String())
}

func TestTransactionEndpoints(t *testing.T) {
	api := newTestAPI(t, Options{})
	ana := api.register("Ana", "ana@example.com")
	bob := api.register("Bob", "bob@example.com")
	food := api.create("/categories", ana, map[string]any{"name": "Food", "color": "#ff0000"})
	salary := api.create("/categories", ana, map[string]any{"name": "Salary"})
	wallet := api.create("/accounts", ana, map[string]any{"name": "Wallet", "type": "CASH", "initialBalance": "0"})
	bobWallet := api.create("/accounts", bob, map[string]any{"name": "Wallet", "type": "CASH", "initialBalance": "0"})

	rr := api.do(http.MethodPost, "/transactions", ana, map[string]any{
		"type": "EXPENSE", "date": "2024-01-10", "amount": "10.00", "status": "PAID",
		"accountId": bobWallet, "categoryId": food,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	lunch := api.create("/transactions", ana, map[string]any{
		"type": "EXPENSE", "date": "2024-01-10", "amount": "12.30", "status": "PAID",
		"description": "Lunch", "accountId": wallet, "categoryId": food,
	})
	api.create("/transactions", ana, map[string]any{
		"type": "INCOME", "date": "2024-01-25", "amount": "2000", "status": "RECEIVED",
		"accountId": wallet, "categoryId": salary,
	})

	rr = api.do(http.MethodGet, "/transactions?type=EXPENSE", ana, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]transactionResponse](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, lunch, list[0].ID)
	assert.Equal(t, "Wallet", list[0].AccountName)
	assert.Equal(t, "Food", list[0].CategoryName)

	rr = api.do(http.MethodGet, "/transactions?from=2024-01-20&to=2024-01-31", ana, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]transactionResponse](t, rr), 1)

	rr = api.do(http.MethodGet, "/transactions?from=yesterday", ana, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[ErrorBody](t, rr).Fields, "from")

	rr = api.do(http.MethodPut, idPath("/transactions", lunch), ana, map[string]any{
		"type": "EXPENSE", "date": "2024-01-11", "amount": "15.00", "status": "PAID",
		"accountId": wallet, "categoryId": food,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "2024-01-11", decode[transactionResponse](t, rr).Date.String())

	rr = api.do(http.MethodDelete, idPath("/transactions", lunch), bob, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = api.do(http.MethodDelete, idPath("/transactions", lunch), ana, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestMalformedBodies(t *testing.T) {
	api := newTestAPI(t, Options{})
	ana := api.register("Ana", "ana@example.com")

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"broken json", `{"name":`, "Malformed JSON request"},
		{"empty body", ``, "Request body is required"},
		{"bad amount", `{"name":"W","type":"CASH","initialBalance":"lots"}`, "Malformed JSON request: amounts must be decimal numbers"},
		{"wrong type", `{"name":5,"type":"CASH","initialBalance":1}`, "Malformed JSON request"},
		{"huge exponent", `{"name":"W","type":"CASH","initialBalance":1e1000000000}`, "Malformed JSON request: amounts must be decimal numbers"},
		{"tiny exponent", `{"name":"W","type":"CASH","initialBalance":"1e-1000000000"}`, "Malformed JSON request: amounts must be decimal numbers"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(tc.body))
			req.Header.Set("Authorization", "Bearer "+ana)
			rr := httptest.NewRecorder()
			start := time.Now()
			api.srv.Handler.ServeHTTP(rr, req)
			assert.Less(t, time.Since(start), 2*time.Second)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tc.message, decode[ErrorBody](t, rr).Message)
		})
	}
}

func TestAuthRateLimit(t *testing.T) {
	api := newTestAPI(t, Options{AuthRateLimitPerMinute: 2})
	login := map[string]string{"email": "ana@example.com", "password": "secret1"}

	for i := 0; i < 2; i++ {
		rr := api.do(http.MethodPost, "/auth/login", "", login)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	rr := api.do(http.MethodPost, "/auth/login", "", login)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusTooManyRequests, decode[ErrorBody](t, rr).Status)

	// Other routes keep their own budget.
	rr = api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestReadyReportsMiddlewareMetrics(t *testing.T) {
	api := newTestAPI(t, Options{AuthRateLimitPerMinute: 1})
	login := map[string]string{"email": "ana@example.com", "password": "secret1"}
	api.do(http.MethodPost, "/auth/login", "", login)
	api.do(http.MethodPost, "/auth/login", "", login)
	api.do(http.MethodGet, "/accounts?q=union+select+1", "", nil)

	rr := api.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	checks := decode[map[string]any](t, rr)["checks"].(map[string]any)
	assert.Equal(t, float64(1), checks["rate_limiter"].(map[string]any)["rejected"])
	assert.Equal(t, float64(1), checks["security"].(map[string]any)["suspicious_requests"])
	assert.GreaterOrEqual(t, checks["requests"].(map[string]any)["total"].(float64), float64(3))
}
