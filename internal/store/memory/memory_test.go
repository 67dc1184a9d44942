package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
	"backoffice/internal/store"
)

func TestNextSequenceStartsAtStartAndIncrements(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.NextSequence(ctx, store.SeqGateInInvoice, 1000)
	if err != nil {
		t.Fatalf("next sequence failed: %v", err)
	}
	second, err := s.NextSequence(ctx, store.SeqGateInInvoice, 1000)
	if err != nil {
		t.Fatalf("next sequence failed: %v", err)
	}
	if first != 1000 || second != 1001 {
		t.Fatalf("expected 1000 then 1001, got %d then %d", first, second)
	}
}

func TestNextSequenceIsUniqueUnderConcurrency(t *testing.T) {
	s := New()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	values := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.NextSequence(ctx, store.SeqSalesInvoice, 1)
			if err != nil {
				t.Errorf("next sequence failed: %v", err)
				return
			}
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool, workers)
	for v := range values {
		if seen[v] {
			t.Fatalf("duplicate sequence value %d", v)
		}
		seen[v] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d distinct values, got %d", workers, len(seen))
	}
}

func TestSalaryBatchRollsBackOnConflict(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateSalary(ctx, domain.SalaryRecord{EmployeeID: "emp-b", Month: 1, Year: 2024}); err != nil {
		t.Fatalf("seed salary failed: %v", err)
	}

	err := s.CreateSalaryBatch(ctx, []domain.SalaryRecord{
		{EmployeeID: "emp-a", Month: 1, Year: 2024},
		{EmployeeID: "emp-b", Month: 1, Year: 2024},
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := s.FindSalary(ctx, "emp-a", 1, 2024); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected batch to be rolled back, got %v", err)
	}
}

func TestReturnedDocumentsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateGateIn(ctx, domain.GateInRecord{
		VendorID: "ven-1",
		Items:    []domain.GateInItem{{Name: "Steel", Quantity: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("create gate-in failed: %v", err)
	}
	created.Items[0].Name = "mutated"

	got, err := s.GetGateIn(ctx, created.ID)
	if err != nil {
		t.Fatalf("get gate-in failed: %v", err)
	}
	if got.Items[0].Name != "Steel" {
		t.Fatalf("expected stored item to be untouched, got %q", got.Items[0].Name)
	}
}

func TestUpsertMonthlyExpenseReplacesDay(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.UpsertMonthlyExpenseEntry(ctx, "2024-03", domain.ExpenseEntry{Date: "2024-03-01", Amount: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	bucket, err := s.UpsertMonthlyExpenseEntry(ctx, "2024-03", domain.ExpenseEntry{Date: "2024-03-01", Amount: decimal.NewFromInt(25)})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if len(bucket.Entries) != 1 || !bucket.Entries[0].Amount.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected single entry of 25, got %+v", bucket.Entries)
	}
}

func TestListInvoicesPagesNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, number := range []string{"INV-000001", "INV-000002", "INV-000003"} {
		if _, err := s.CreateInvoice(ctx, domain.Invoice{InvoiceNumber: number}); err != nil {
			t.Fatalf("create invoice failed: %v", err)
		}
	}
	if _, err := s.CreateInvoice(ctx, domain.Invoice{InvoiceNumber: "INV-000002"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected duplicate number conflict, got %v", err)
	}

	page, total, err := s.ListInvoices(ctx, store.InvoiceFilter{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list invoices failed: %v", err)
	}
	if total != 3 || len(page) != 1 || page[0].InvoiceNumber != "INV-000002" {
		t.Fatalf("unexpected page total=%d page=%+v", total, page)
	}
}
