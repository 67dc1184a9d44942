package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
)

// TransferDailyToMonthly sums the entries per calendar day, writes each day
// total into its month bucket (replacing any earlier figure for that day) and
// then rolls every touched month into its yearly bucket.
func (s *Service) TransferDailyToMonthly(ctx context.Context, req domain.DailyTransferRequest) (domain.DailyTransferResult, error) {
	if len(req.Entries) == 0 {
		return domain.DailyTransferResult{}, invalid("entries must not be empty")
	}
	fallback, err := parseDate(req.Date, s.now())
	if err != nil {
		return domain.DailyTransferResult{}, invalid("%v", err)
	}

	totals := make(map[string]decimal.Decimal, len(req.Entries))
	for i, entry := range req.Entries {
		if entry.Amount.IsNegative() {
			return domain.DailyTransferResult{}, invalid("entry %d: amount must not be negative", i+1)
		}
		day, err := parseDate(entry.Date, fallback)
		if err != nil {
			return domain.DailyTransferResult{}, invalid("entry %d: %v", i+1, err)
		}
		key := day.Format("2006-01-02")
		totals[key] = totals[key].Add(entry.Amount)
	}

	days := make([]string, 0, len(totals))
	for day := range totals {
		days = append(days, day)
	}
	sort.Strings(days)

	result := domain.DailyTransferResult{
		Days:    make([]domain.ExpenseEntry, 0, len(days)),
		Rollups: make([]domain.MonthlyRollupResult, 0, 1),
	}
	rolled := make(map[string]bool, 1)
	for _, day := range days {
		entry := domain.ExpenseEntry{Date: day, Amount: totals[day]}
		yearMonth := day[:7]
		if _, err := s.repo.UpsertMonthlyExpenseEntry(ctx, yearMonth, entry); err != nil {
			return result, fmt.Errorf("upsert %s: %w", day, err)
		}
		result.Days = append(result.Days, entry)

		if rolled[yearMonth] {
			continue
		}
		rolled[yearMonth] = true
		t, _ := time.Parse("2006-01-02", day)
		rollup, err := s.TransferMonthlyToYearly(ctx, domain.MonthlyTransferRequest{Year: t.Year(), Month: int(t.Month())})
		if err != nil {
			return result, err
		}
		result.Rollups = append(result.Rollups, rollup)
	}

	s.logAudit(ctx, "expense_transfer_daily", "expense", days[0], fmt.Sprintf("days=%d", len(days)))
	return result, nil
}

// TransferMonthlyToYearly writes the month's total into its yearly bucket,
// replacing any earlier figure, so repeated runs are harmless. A zero period
// means the previous calendar month.
func (s *Service) TransferMonthlyToYearly(ctx context.Context, req domain.MonthlyTransferRequest) (domain.MonthlyRollupResult, error) {
	year, month := req.Year, req.Month
	if year == 0 && month == 0 {
		prev := time.Date(s.now().Year(), s.now().Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		year, month = prev.Year(), int(prev.Month())
	}
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return domain.MonthlyRollupResult{}, invalid("invalid period %04d-%02d", year, month)
	}

	yearMonth := fmt.Sprintf("%04d-%02d", year, month)
	result := domain.MonthlyRollupResult{Year: year, YearMonth: yearMonth, Amount: decimal.Zero}

	bucket, err := s.repo.GetMonthlyExpense(ctx, yearMonth)
	if err != nil {
		if isNotFound(err) {
			return result, nil
		}
		return result, err
	}
	if len(bucket.Entries) == 0 {
		return result, nil
	}

	result.Amount = bucket.Total()
	if _, err := s.repo.UpsertYearlyExpenseEntry(ctx, year, domain.YearlyExpenseEntry{Month: yearMonth, Amount: result.Amount}); err != nil {
		return result, fmt.Errorf("roll up %s: %w", yearMonth, err)
	}
	result.Transferred = true

	s.logAudit(ctx, "expense_transfer_monthly", "expense", yearMonth, "amount="+result.Amount.String())
	return result, nil
}

func (s *Service) GetMonthlyExpense(ctx context.Context, yearMonth string) (domain.MonthlyExpenseBucket, error) {
	yearMonth = strings.TrimSpace(yearMonth)
	if _, err := time.Parse("2006-01", yearMonth); err != nil {
		return domain.MonthlyExpenseBucket{}, invalid("month must be formatted YYYY-MM")
	}
	bucket, err := s.repo.GetMonthlyExpense(ctx, yearMonth)
	if err != nil {
		if isNotFound(err) {
			return domain.MonthlyExpenseBucket{}, notFound("monthly expense")
		}
		return domain.MonthlyExpenseBucket{}, err
	}
	return *bucket, nil
}

func (s *Service) ListMonthlyExpenses(ctx context.Context) ([]domain.MonthlyExpenseBucket, error) {
	return s.repo.ListMonthlyExpenses(ctx)
}

func (s *Service) GetYearlyExpense(ctx context.Context, rawYear string) (domain.YearlyExpenseBucket, error) {
	year, err := strconv.Atoi(strings.TrimSpace(rawYear))
	if err != nil || year < 1 {
		return domain.YearlyExpenseBucket{}, invalid("year must be a positive number")
	}
	bucket, err := s.repo.GetYearlyExpense(ctx, year)
	if err != nil {
		if isNotFound(err) {
			return domain.YearlyExpenseBucket{}, notFound("yearly expense")
		}
		return domain.YearlyExpenseBucket{}, err
	}
	return *bucket, nil
}

func (s *Service) ListYearlyExpenses(ctx context.Context) ([]domain.YearlyExpenseBucket, error) {
	return s.repo.ListYearlyExpenses(ctx)
}

func (s *Service) ExpenseAnalytics(ctx context.Context) (domain.ExpenseAnalytics, error) {
	monthly, err := s.repo.ListMonthlyExpenses(ctx)
	if err != nil {
		return domain.ExpenseAnalytics{}, err
	}
	yearly, err := s.repo.ListYearlyExpenses(ctx)
	if err != nil {
		return domain.ExpenseAnalytics{}, err
	}

	analytics := domain.ExpenseAnalytics{
		Monthly: make([]domain.MonthlyExpenseSummary, 0, len(monthly)),
		Yearly:  make([]domain.YearlyExpenseSummary, 0, len(yearly)),
	}
	for _, bucket := range monthly {
		analytics.Monthly = append(analytics.Monthly, domain.MonthlyExpenseSummary{
			YearMonth:   bucket.YearMonth,
			TotalAmount: bucket.Total(),
			Count:       len(bucket.Entries),
		})
	}
	for _, bucket := range yearly {
		total := decimal.Zero
		for _, e := range bucket.Expenses {
			total = total.Add(e.Amount)
		}
		analytics.Yearly = append(analytics.Yearly, domain.YearlyExpenseSummary{
			Year:        bucket.Year,
			TotalAmount: total,
			Count:       len(bucket.Expenses),
		})
	}
	return analytics, nil
}
