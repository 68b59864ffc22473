package http

import (
	"time"

	"spendfy/internal/core"
	"spendfy/internal/services"
)

type authResponse struct {
	Token string `json:"token"`
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newAuthResponse(res services.AuthResult) authResponse {
	return authResponse{
		Token: res.Token,
		Type:  res.Type,
		ID:    res.User.ID,
		Name:  res.User.Name,
		Email: res.User.Email,
	}
}

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newUserResponse(u core.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type accountResponse struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	InitialBalance core.Money `json:"initialBalance"`
	UserID         int64      `json:"userId"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func newAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           a.Type,
		InitialBalance: a.InitialBalance,
		UserID:         a.UserID,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type categoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type budgetResponse struct {
	ID           int64      `json:"id"`
	LimitAmount  core.Money `json:"limitAmount"`
	StartDate    core.Date  `json:"startDate"`
	EndDate      core.Date  `json:"endDate"`
	UserID       int64      `json:"userId"`
	CategoryID   int64      `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func newBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:           b.ID,
		LimitAmount:  b.Limit,
		StartDate:    b.StartDate,
		EndDate:      b.EndDate,
		UserID:       b.UserID,
		CategoryID:   b.CategoryID,
		CategoryName: b.CategoryName,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

type usageResponse struct {
	Budget      budgetResponse `json:"budget"`
	Spent       core.Money     `json:"spent"`
	Remaining   core.Money     `json:"remaining"`
	PercentUsed core.Money     `json:"percentUsed"`
	Exceeded    bool           `json:"exceeded"`
}

func newUsageResponse(u core.BudgetUsage) usageResponse {
	return usageResponse{
		Budget:      newBudgetResponse(u.Budget),
		Spent:       u.Spent,
		Remaining:   u.Remaining,
		PercentUsed: core.NewMoney(u.PercentUsed),
		Exceeded:    u.Exceeded,
	}
}

type transactionResponse struct {
	ID           int64      `json:"id"`
	Type         string     `json:"type"`
	Date         core.Date  `json:"date"`
	Amount       core.Money `json:"amount"`
	Description  *string    `json:"description"`
	Note         *string    `json:"note"`
	Status       string     `json:"status"`
	UserID       int64      `json:"userId"`
	AccountID    int64      `json:"accountId"`
	AccountName  string     `json:"accountName"`
	CategoryID   int64      `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func newTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		Type:         t.Type,
		Date:         t.Date,
		Amount:       t.Amount,
		Description:  t.Description,
		Note:         t.Note,
		Status:       t.Status,
		UserID:       t.UserID,
		AccountID:    t.AccountID,
		AccountName:  t.AccountName,
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// mapSlice converts a slice, returning an empty (not nil) slice so lists
// render as [].
func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
