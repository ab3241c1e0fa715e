package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/report"
	"tailorbooks-backend/internal/repository"
	"tailorbooks-backend/internal/server/authctx"
	"tailorbooks-backend/internal/service"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func asManager(r *http.Request) *http.Request {
	return r.WithContext(authctx.WithCurrentUser(r.Context(), authctx.CurrentUser{
		ID: 1, OwnerID: 1, Name: "Amaka", Role: domain.RoleManager,
	}))
}

func testClock() service.Clock {
	return service.Clock{Now: func() time.Time { return time.Date(2024, 3, 20, 10, 30, 0, 0, time.UTC) }, Location: time.UTC}
}

func TestNormalizePhone(t *testing.T) {
	got, err := normalizePhone(" +1 650-253-0000 ", "US")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	got, err = normalizePhone("(650) 253-0000", "US")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	got, err = normalizePhone("", "US")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = normalizePhone("12", "US")
	require.ErrorIs(t, err, errInvalidPhone)
	_, err = normalizePhone("call me", "US")
	require.ErrorIs(t, err, errInvalidPhone)
}

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{fmt.Errorf("%w: amount must be positive", service.ErrValidation), http.StatusBadRequest, "validation failed: amount must be positive"},
		{fmt.Errorf("get job: %w", repository.ErrNotFound), http.StatusNotFound, "not found"},
		{fmt.Errorf("%w: payment in progress", service.ErrConflict), http.StatusConflict, "conflict: payment in progress"},
		{domain.ErrJobSale, http.StatusConflict, "sale belongs to a sewing job, edit the job instead"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeServiceError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "error", env.Status)
		assert.Equal(t, tc.msg, env.Message)
		require.NotNil(t, env.Error)
		assert.Equal(t, tc.status, env.Error.Code)
	}
}

func TestParseListParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/jobs?q=ada&sort=date&order=asc&limit=20&offset=40&from=2024-01-01&to=2024-01-31&status=Part", nil)
	p, err := parseListParams(r)
	require.NoError(t, err)
	assert.Equal(t, "ada", p.Query)
	assert.Equal(t, 20, p.PageLimit())
	assert.Equal(t, 40, p.PageOffset())
	assert.Equal(t, "Part", p.Status)
	require.NotNil(t, p.From)
	assert.Equal(t, time.January, p.From.Month())

	_, err = parseListParams(httptest.NewRequest(http.MethodGet, "/jobs?from=2024-02-01&to=2024-01-01", nil))
	require.Error(t, err)
	_, err = parseListParams(httptest.NewRequest(http.MethodGet, "/jobs?limit=ten", nil))
	require.Error(t, err)
	_, err = parseListParams(httptest.NewRequest(http.MethodGet, "/jobs?from=01/02/2024", nil))
	require.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) (*httptest.ResponseRecorder, bool) {
		rec := httptest.NewRecorder()
		var req customerRequest
		ok := decodeJSON(rec, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body)), &req)
		return rec, ok
	}

	_, ok := decode(`{"name":"Ada","phone":"+2348012345678"}`)
	assert.True(t, ok)

	rec, ok := decode(`{"name":"Ada","nickname":"A"}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, ok = decode(`{"name":"Ada"} {"name":"Bola"}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, ok = decode(`{"phone":"123"}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "validation failed", env.Message)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	assert.Equal(t, "required", fields["name"])
}

type memSettingsStore struct {
	kv map[string]string
}

func (m *memSettingsStore) Load(context.Context, int64) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range m.kv {
		out[k] = v
	}
	return out, nil
}

func (m *memSettingsStore) Save(_ context.Context, _ int64, values map[string]string) error {
	for k, v := range values {
		m.kv[k] = v
	}
	return nil
}

func settingsRouter() chi.Router {
	r := chi.NewRouter()
	SettingsHandler{Service: service.SettingsService{
		Store:           &memSettingsStore{kv: map[string]string{}},
		DefaultCurrency: "NGN",
		Clock:           testClock(),
	}}.RegisterRoutes(r)
	return r
}

func TestHandlersRequireUser(t *testing.T) {
	rec := httptest.NewRecorder()
	settingsRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSettingsHandler(t *testing.T) {
	r := settingsRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, asManager(httptest.NewRequest(http.MethodGet, "/settings", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &got))
	assert.Equal(t, "NGN", got["currencyCode"])
	assert.EqualValues(t, 2024, got["reportingYear"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, asManager(httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"currencyCode":"usd","businessName":"Stitch & Co"}`))))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &got))
	assert.Equal(t, "USD", got["currencyCode"])
	assert.Equal(t, "Stitch & Co", got["businessName"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, asManager(httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"reportingYear":1999}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubReceivableReader struct {
	sales []domain.Sale
}

func (s stubReceivableReader) ListUnpaidSales(context.Context, int64) ([]domain.Sale, error) {
	return s.sales, nil
}

func (s stubReceivableReader) CustomerPhones(context.Context, int64, []int64) (map[int64]string, error) {
	return map[int64]string{}, nil
}

func TestReceivableHandler(t *testing.T) {
	sale := domain.Sale{ID: 1, Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), CustomerName: "Bisi", TotalAmount: decimalFrom("1200"), AmountPaid: decimalFrom("200")}
	sale.Recompute()
	r := chi.NewRouter()
	ReceivableHandler{Service: service.ReceivableService{
		Reader: stubReceivableReader{sales: []domain.Sale{sale}},
		Clock:  testClock(),
	}}.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, asManager(httptest.NewRequest(http.MethodGet, "/receivables", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []map[string]any `json:"items"`
		Total string           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &body))
	assert.Equal(t, "1000.00", body.Total)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Bisi", body.Items[0]["customerName"])
	assert.EqualValues(t, 10, body.Items[0]["daysSinceSale"])

	// Rejected before any ledger work.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, asManager(httptest.NewRequest(http.MethodPost, "/receivables/payments", strings.NewReader(`{"customerName":"Bisi","amount":"0"}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, asManager(httptest.NewRequest(http.MethodPost, "/receivables/payments", strings.NewReader(`{"amount":"100"}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteTable(t *testing.T) {
	table := report.ExpenseTable([]domain.Expense{{ID: 3, Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Category: "Rent", Amount: decimalFrom("50000"), PaymentMethod: "cash"}})

	rec := httptest.NewRecorder()
	writeTable(rec, table, "csv", "expenses")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "expenses.csv")
	assert.Contains(t, rec.Body.String(), "3,2024-03-02,Rent,,50000.00,cash,")

	rec = httptest.NewRecorder()
	writeTable(rec, table, "xlsx", "expenses")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx is a zip archive")

	rec = httptest.NewRecorder()
	writeTable(rec, table, "pdf", "expenses")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func decimalFrom(s string) decimal.Decimal { return decimal.RequireFromString(s) }
