package memory

import (
	"slices"
	"strconv"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/store"
)

func found[T any](doc T, ok bool) (*T, error) {
	if !ok {
		return nil, store.ErrNotFound
	}
	return &doc, nil
}

func removed(ok bool) error {
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func stampNew(createdAt *time.Time, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}

func yearKey(year int) string {
	return strconv.Itoa(year)
}

// Documents with slices are copied on the way in and out so callers never
// share backing arrays with the stored value.

func cloneGateIn(record domain.GateInRecord) domain.GateInRecord {
	record.Items = slices.Clone(record.Items)
	record.Payments = slices.Clone(record.Payments)
	return record
}

func cloneInvoice(invoice domain.Invoice) domain.Invoice {
	invoice.LineItems = slices.Clone(invoice.LineItems)
	invoice.PaymentHistory = slices.Clone(invoice.PaymentHistory)
	return invoice
}

func cloneAdvance(advance domain.Advance) domain.Advance {
	advance.Repayments = slices.Clone(advance.Repayments)
	return advance
}

func cloneMonthly(bucket domain.MonthlyExpenseBucket) domain.MonthlyExpenseBucket {
	bucket.Entries = slices.Clone(bucket.Entries)
	return bucket
}

func cloneYearly(bucket domain.YearlyExpenseBucket) domain.YearlyExpenseBucket {
	bucket.Expenses = slices.Clone(bucket.Expenses)
	return bucket
}
