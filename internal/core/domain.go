package core

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"

	KindExpense = "EXPENSE"
	KindIncome  = "INCOME"

	// DateLayout is the wire and storage layout for calendar dates.
	DateLayout = "2006-01-02"
)

type (
	UserStatus string

	// Date is a calendar day in UTC. The time-of-day part is always zero.
	Date struct {
		time.Time
	}

	// Principal identifies the authenticated caller of a service operation.
	// Subject is the email carried by the session token.
	Principal struct {
		Subject string
	}

	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
		Status       UserStatus
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	Account struct {
		ID             int64
		UserID         int64
		Name           string
		Type           string
		InitialBalance Money
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	Category struct {
		ID        int64
		UserID    int64
		Name      string
		Color     *string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Budget struct {
		ID           int64
		UserID       int64
		CategoryID   int64
		CategoryName string
		Limit        Money
		StartDate    Date
		EndDate      Date
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	Transaction struct {
		ID           int64
		UserID       int64
		AccountID    int64
		AccountName  string
		CategoryID   int64
		CategoryName string
		Type         string
		Date         Date
		Amount       Money
		Description  *string
		Note         *string
		Status       string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}
)

var ErrInvalidDate = errors.New("invalid date")

// Anonymous reports whether no identity was recovered for the caller.
func (p Principal) Anonymous() bool {
	return strings.TrimSpace(p.Subject) == ""
}

// Active reports whether the user may authenticate.
func (u User) Active() bool {
	return u.Status == UserActive
}

// Period returns the inclusive date range covered by the budget.
func (b Budget) Period() Period {
	return Period{Start: b.StartDate, End: b.EndDate}
}

// IsExpense reports whether a transaction kind counts against budgets.
func IsExpense(kind string) bool {
	return strings.EqualFold(strings.TrimSpace(kind), KindExpense)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// AddDays returns the date n days later (earlier when n is negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: expected a YYYY-MM-DD string", ErrInvalidDate)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores dates as YYYY-MM-DD text, which sorts and compares correctly.
func (d Date) Value() (driver.Value, error) {
	return d.Format(DateLayout), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), int(v.Month()), v.Day())
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
