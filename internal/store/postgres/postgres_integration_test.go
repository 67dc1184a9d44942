package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
	"backoffice/internal/store"
)

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("BACKOFFICE_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set BACKOFFICE_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestNextSequenceIsAtomicUnderConcurrency(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	name := fmt.Sprintf("it-seq-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM counters WHERE name = $1`, name)
	})

	const workers = 20
	values := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.NextSequence(ctx, name, 1000)
			if err != nil {
				t.Errorf("next sequence: %v", err)
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
		if v < 1000 || v >= 1000+workers {
			t.Fatalf("expected value in [1000, %d), got %d", 1000+workers, v)
		}
		seen[v] = true
	}
}

func TestSalaryBatchRollsBackOnConflict(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	employeeID := fmt.Sprintf("emp-it-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM salaries WHERE data->>'employee_id' = $1`, employeeID)
	})

	record := domain.SalaryRecord{
		EmployeeID:  employeeID,
		Month:       3,
		Year:        2024,
		BasicSalary: decimal.NewFromInt(1000),
		NetSalary:   decimal.NewFromInt(1000),
		Status:      domain.SalaryPending,
	}
	other := record
	other.Month = 4

	err := s.CreateSalaryBatch(ctx, []domain.SalaryRecord{other, record, record})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	list, err := s.ListSalaries(ctx, store.SalaryFilter{EmployeeID: employeeID})
	if err != nil {
		t.Fatalf("list salaries: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected batch rollback, got %d rows", len(list))
	}
}

func TestMonthlyExpenseUpsertReplacesDay(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	yearMonth := "1999-01"
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM monthly_expenses WHERE year_month = $1`, yearMonth)
	})

	if _, err := s.UpsertMonthlyExpenseEntry(ctx, yearMonth, domain.ExpenseEntry{Date: "1999-01-05", Amount: decimal.NewFromInt(40)}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	bucket, err := s.UpsertMonthlyExpenseEntry(ctx, yearMonth, domain.ExpenseEntry{Date: "1999-01-05", Amount: decimal.NewFromInt(70)})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if len(bucket.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(bucket.Entries))
	}
	if !bucket.Total().Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected total 70, got %s", bucket.Total())
	}
}
