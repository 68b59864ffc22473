package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"spendfy/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"limitAmount":"500","startDate":"2024-01-01","endDate":"2024-01-31","categoryId":3}`))
		var in core.BudgetInput
		require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &in))
		assert.Equal(t, "500.00", in.LimitAmount.String())
		assert.Equal(t, "2024-01-31", in.EndDate.String())
		assert.Equal(t, int64(3), *in.CategoryID)
	})

	t.Run("bad date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"startDate":"01/02/2024"}`))
		var in core.BudgetInput
		err := DecodeJSON(httptest.NewRecorder(), req, &in)
		require.True(t, errors.Is(err, core.ErrValidation))
		assert.Contains(t, err.Error(), "YYYY-MM-DD")
	})

	t.Run("type mismatch names the field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"categoryId":"three"}`))
		var in core.BudgetInput
		err := DecodeJSON(httptest.NewRecorder(), req, &in)
		var cerr *core.Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "has an invalid type", cerr.Fields["categoryId"])
	})

	t.Run("too large", func(t *testing.T) {
		body := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var in core.CategoryInput
		err := DecodeJSON(httptest.NewRecorder(), req, &in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})
}

func TestParseTransactionFilter(t *testing.T) {
	f, err := ParseTransactionFilter(url.Values{
		"accountId":  {"4"},
		"categoryId": {"7"},
		"type":       {" EXPENSE "},
		"from":       {"2024-01-01"},
		"to":         {"2024-01-31"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), f.AccountID)
	assert.Equal(t, int64(7), f.CategoryID)
	assert.Equal(t, "EXPENSE", f.Type)
	assert.Equal(t, "2024-01-01", f.From.String())
	assert.Equal(t, "2024-01-31", f.To.String())

	f, err = ParseTransactionFilter(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, core.TransactionFilter{}, f)

	_, err = ParseTransactionFilter(url.Values{"accountId": {"-1"}, "to": {"soon"}})
	var cerr *core.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "Invalid filter", cerr.Message)
	assert.Contains(t, cerr.Fields, "accountId")
	assert.Contains(t, cerr.Fields, "to")

	_, err = ParseTransactionFilter(url.Values{"from": {"2024-02-01"}, "to": {"2024-01-01"}})
	assert.True(t, errors.Is(err, core.ErrValidation))
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc.def":  "abc.def",
		"bearer  abc.def": "abc.def",
		"Basic abc":       "",
		"":                "",
		"Bearer":          "",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		assert.Equal(t, want, bearerToken(req), "header %q", header)
	}
}
