package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"spendfy/internal/core"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON request body into dst. Malformed bodies become
// Validation errors so they render as 400.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return core.Validation("Request body is required", nil)
	case errors.As(err, &sizeErr):
		return core.Validation("Request body is too large", nil)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return core.Validation("Malformed JSON request", map[string]string{typeErr.Field: "has an invalid type"})
	case errors.Is(err, core.ErrInvalidDate):
		return core.Validation("Malformed JSON request: dates must use the YYYY-MM-DD format", nil)
	case errors.Is(err, core.ErrInvalidAmount):
		return core.Validation("Malformed JSON request: amounts must be decimal numbers", nil)
	default:
		return core.Validation("Malformed JSON request", nil)
	}
}

// ParseTransactionFilter reads accountId, categoryId, type, from and to from
// the query string. Absent parameters leave the filter open.
func ParseTransactionFilter(query url.Values) (core.TransactionFilter, error) {
	var f core.TransactionFilter
	fields := map[string]string{}

	parseID := func(key string) int64 {
		v := strings.TrimSpace(query.Get(key))
		if v == "" {
			return 0
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			fields[key] = "must be a positive integer"
			return 0
		}
		return id
	}
	parseDate := func(key string) *core.Date {
		v := strings.TrimSpace(query.Get(key))
		if v == "" {
			return nil
		}
		d, err := core.ParseDate(v)
		if err != nil {
			fields[key] = "must be a date in YYYY-MM-DD format"
			return nil
		}
		return &d
	}

	f.AccountID = parseID("accountId")
	f.CategoryID = parseID("categoryId")
	f.Type = strings.TrimSpace(query.Get("type"))
	f.From = parseDate("from")
	f.To = parseDate("to")

	if len(fields) > 0 {
		return core.TransactionFilter{}, core.Validation("Invalid filter", fields)
	}
	if err := f.Validate(); err != nil {
		return core.TransactionFilter{}, err
	}
	return f, nil
}
