package core

import "strings"

// Request inputs. Pointer fields distinguish "absent" from a zero value so
// required checks report the field itself.
type (
	RegisterInput struct {
		Name     string `json:"name" validate:"notblank,max=100"`
		Email    string `json:"email" validate:"notblank,email,max=100"`
		Password string `json:"password" validate:"notblank,min=6,maxbytes=72"`
	}

	LoginInput struct {
		Email    string `json:"email" validate:"notblank,email"`
		Password string `json:"password" validate:"notblank"`
	}

	AccountInput struct {
		Name           string `json:"name" validate:"notblank,max=50"`
		Type           string `json:"type" validate:"notblank,max=30"`
		InitialBalance *Money `json:"initialBalance" validate:"required,amount=0"`
	}

	CategoryInput struct {
		Name  string  `json:"name" validate:"notblank,max=50"`
		Color *string `json:"color" validate:"omitempty,max=20"`
	}

	BudgetInput struct {
		LimitAmount *Money `json:"limitAmount" validate:"required,amount=0.01"`
		StartDate   *Date  `json:"startDate" validate:"required"`
		EndDate     *Date  `json:"endDate" validate:"required"`
		CategoryID  *int64 `json:"categoryId" validate:"required"`
	}

	TransactionInput struct {
		Type        string  `json:"type" validate:"notblank,max=20"`
		Date        *Date   `json:"date" validate:"required"`
		Amount      *Money  `json:"amount" validate:"required,amount=0.01"`
		Description *string `json:"description" validate:"omitempty,max=100"`
		Note        *string `json:"note" validate:"omitempty,max=255"`
		Status      string  `json:"status" validate:"notblank,max=20"`
		AccountID   *int64  `json:"accountId" validate:"required"`
		CategoryID  *int64  `json:"categoryId" validate:"required"`
	}

	// TransactionFilter narrows a transaction listing. Zero values are ignored.
	TransactionFilter struct {
		AccountID  int64
		CategoryID int64
		Type       string
		From       *Date
		To         *Date
	}
)

func (in *RegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
}

func (in *LoginInput) Normalize() {
	in.Email = strings.TrimSpace(in.Email)
}

func (in *AccountInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
}

func (in *CategoryInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Color = trimOptional(in.Color)
}

func (in *TransactionInput) Normalize() {
	in.Type = strings.TrimSpace(in.Type)
	in.Status = strings.TrimSpace(in.Status)
	in.Description = trimOptional(in.Description)
	in.Note = trimOptional(in.Note)
}

// Period returns the budget's date range, or InvalidRange if end < start.
// Callers must validate the input first so both dates are present.
func (in BudgetInput) Period() (Period, error) {
	return NewPeriod(*in.StartDate, *in.EndDate)
}

// Validate rejects a filter whose bounds are reversed.
func (f TransactionFilter) Validate() error {
	if f.From != nil && f.To != nil && f.To.Before(f.From.Time) {
		return Validation("Invalid filter", map[string]string{"to": "must not be before from"})
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
