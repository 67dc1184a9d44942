package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseEntry is one day's total inside a monthly bucket. Date is YYYY-MM-DD.
type ExpenseEntry struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type MonthlyExpenseBucket struct {
	ID        string         `json:"id"`
	YearMonth string         `json:"year_month"`
	Entries   []ExpenseEntry `json:"entries"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (b MonthlyExpenseBucket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range b.Entries {
		total = total.Add(e.Amount)
	}
	return total
}

// YearlyExpenseEntry is one month's total inside a yearly bucket. Month is YYYY-MM.
type YearlyExpenseEntry struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

type YearlyExpenseBucket struct {
	ID        string               `json:"id"`
	Year      int                  `json:"year"`
	Expenses  []YearlyExpenseEntry `json:"expenses"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type DailyExpenseInput struct {
	Date        string          `json:"date,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

type DailyTransferRequest struct {
	Date    string              `json:"date"`
	Entries []DailyExpenseInput `json:"entries"`
}

// MonthlyTransferRequest names the month to roll up. Zero values mean the
// previous calendar month.
type MonthlyTransferRequest struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

type MonthlyRollupResult struct {
	Year        int             `json:"year"`
	YearMonth   string          `json:"year_month"`
	Amount      decimal.Decimal `json:"amount"`
	Transferred bool            `json:"transferred"`
}

type DailyTransferResult struct {
	Days    []ExpenseEntry        `json:"days"`
	Rollups []MonthlyRollupResult `json:"rollups"`
}

type MonthlyExpenseSummary struct {
	YearMonth   string          `json:"year_month"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"count"`
}

type YearlyExpenseSummary struct {
	Year        int             `json:"year"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"count"`
}

type ExpenseAnalytics struct {
	Monthly []MonthlyExpenseSummary `json:"monthly"`
	Yearly  []YearlyExpenseSummary  `json:"yearly"`
}
