package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"backoffice/internal/domain"
	"backoffice/internal/store"
	"backoffice/internal/xid"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sql.DB
}

var _ store.Repository = (*Store)(nil)

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates any missing tables and indexes. It is safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) NextSequence(ctx context.Context, name string, start int64) (int64, error) {
	if name == "" {
		return 0, store.ErrInvalidDocument
	}
	var value int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO counters (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name)
		DO UPDATE SET value = counters.value + 1
		RETURNING value
	`, name, start).Scan(&value)
	return value, err
}

// Vendors

func (s *Store) CreateVendor(ctx context.Context, vendor domain.Vendor) (*domain.Vendor, error) {
	if vendor.ID == "" {
		vendor.ID = xid.New("ven")
	}
	stampNew(&vendor.CreatedAt, &vendor.UpdatedAt)
	if err := insertDoc(ctx, s.db, "vendors", vendor.ID, vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (s *Store) GetVendor(ctx context.Context, id string) (*domain.Vendor, error) {
	return getDoc[domain.Vendor](ctx, s.db, `SELECT data FROM vendors WHERE id = $1`, id)
}

func (s *Store) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	return listDocs[domain.Vendor](ctx, s.db, `SELECT data FROM vendors ORDER BY seq DESC`)
}

func (s *Store) FindVendorByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	return getDoc[domain.Vendor](ctx, s.db, `SELECT data FROM vendors WHERE lower(data->>'email') = lower($1)`, email)
}

func (s *Store) FindVendorByPhone(ctx context.Context, phone string) (*domain.Vendor, error) {
	return getDoc[domain.Vendor](ctx, s.db, `SELECT data FROM vendors WHERE data->>'phone' = $1`, phone)
}

func (s *Store) UpdateVendor(ctx context.Context, vendor domain.Vendor) (*domain.Vendor, error) {
	vendor.UpdatedAt = time.Now().UTC()
	if err := updateDoc(ctx, s.db, "vendors", vendor.ID, vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (s *Store) DeleteVendor(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, "vendors", id)
}

// Customers

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" {
		customer.ID = xid.New("cus")
	}
	stampNew(&customer.CreatedAt, &customer.UpdatedAt)
	if err := insertDoc(ctx, s.db, "customers", customer.ID, customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return getDoc[domain.Customer](ctx, s.db, `SELECT data FROM customers WHERE id = $1`, id)
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return listDocs[domain.Customer](ctx, s.db, `SELECT data FROM customers ORDER BY seq DESC`)
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	customer.UpdatedAt = time.Now().UTC()
	if err := updateDoc(ctx, s.db, "customers", customer.ID, customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, "customers", id)
}

// Raw products

func (s *Store) CreateRawProduct(ctx context.Context, product domain.RawProduct) (*domain.RawProduct, error) {
	if product.ID == "" {
		product.ID = xid.New("raw")
	}
	stampNew(&product.CreatedAt, &product.UpdatedAt)
	if err := insertDoc(ctx, s.db, "raw_products", product.ID, product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) GetRawProduct(ctx context.Context, id string) (*domain.RawProduct, error) {
	return getDoc[domain.RawProduct](ctx, s.db, `SELECT data FROM raw_products WHERE id = $1`, id)
}

func (s *Store) FindRawProductByName(ctx context.Context, name string) (*domain.RawProduct, error) {
	return getDoc[domain.RawProduct](ctx, s.db, `SELECT data FROM raw_products WHERE lower(data->>'name') = lower($1)`, name)
}

func (s *Store) ListRawProducts(ctx context.Context) ([]domain.RawProduct, error) {
	return listDocs[domain.RawProduct](ctx, s.db, `SELECT data FROM raw_products ORDER BY lower(data->>'name'), seq DESC`)
}

func (s *Store) UpdateRawProduct(ctx context.Context, product domain.RawProduct) (*domain.RawProduct, error) {
	product.UpdatedAt = time.Now().UTC()
	if err := updateDoc(ctx, s.db, "raw_products", product.ID, product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) DeleteRawProduct(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, "raw_products", id)
}

// Departments

func (s *Store) CreateDepartment(ctx context.Context, department domain.Department) (*domain.Department, error) {
	if department.ID == "" {
		department.ID = xid.New("dep")
	}
	if department.CreatedAt.IsZero() {
		department.CreatedAt = time.Now().UTC()
	}
	if err := insertDoc(ctx, s.db, "departments", department.ID, department); err != nil {
		return nil, err
	}
	return &department, nil
}

func (s *Store) FindDepartmentByName(ctx context.Context, name string) (*domain.Department, error) {
	return getDoc[domain.Department](ctx, s.db, `SELECT data FROM departments WHERE lower(data->>'name') = lower($1)`, name)
}

func (s *Store) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return listDocs[domain.Department](ctx, s.db, `SELECT data FROM departments ORDER BY data->>'name'`)
}

func (s *Store) DeleteDepartment(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, "departments", id)
}

// Gate-in

func (s *Store) CreateGateIn(ctx context.Context, record domain.GateInRecord) (*domain.GateInRecord, error) {
	if record.ID == "" {
		record.ID = xid.New("gin")
	}
	stampNew(&record.CreatedAt, &record.UpdatedAt)
	if err := insertDoc(ctx, s.db, "gate_ins", record.ID, record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) GetGateIn(ctx context.Context, id string) (*domain.GateInRecord, error) {
	return getDoc[domain.GateInRecord](ctx, s.db, `SELECT data FROM gate_ins WHERE id = $1`, id)
}

func (s *Store) ListGateIns(ctx context.Context, vendorID string) ([]domain.GateInRecord, error) {
	return listDocs[domain.GateInRecord](ctx, s.db, `
		SELECT data FROM gate_ins
		WHERE ($1 = '' OR data->>'vendor_id' = $1)
		ORDER BY seq DESC
	`, vendorID)
}

func (s *Store) UpdateGateIn(ctx context.Context, record domain.GateInRecord) (*domain.GateInRecord, error) {
	record.UpdatedAt = time.Now().UTC()
	if err := updateDoc(ctx, s.db, "gate_ins", record.ID, record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) DeleteGateIn(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, "gate_ins", id)
}

// Gate-out

func (s *Store) CreateGateOut(ctx context.Context, record domain.GateOutRecord) (*domain.GateOutRecord, error) {
	if record.ID == "" {
		record.ID = xid.New("gout")
	}
	stampNew(&record.CreatedAt, &record.UpdatedAt)
	if err := insertDoc(ctx, s.db, "gate_outs", record.ID, record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) GetGateOut(ctx context.Context, id string) (*domain.GateOutRecord, error) {
	return getDoc[domain.GateOutRecord](ctx, s.db, `SELECT data FROM gate_outs WHERE id = $1`, id)
}

func (s *Store) ListGateOuts(ctx context.Context) ([]domain.GateOutRecord, error) {
	return listDocs[domain.GateOutRecord](ctx, s.db, `SELECT data FROM gate_outs ORDER BY seq DESC`)
}

func (s *Store) UpdateGateOut(ctx context.Context, record domain.GateOutRecord) (*domain.GateOutRecord, error) {
	record.UpdatedAt = time.Now().UTC()
	if err := updateDoc(ctx, s.db, "gate_outs", record.ID, record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) DeleteGateOut(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, "gate_outs", id)
}

// Invoices

func (s *Store) CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	if invoice.ID == "" {
		invoice.ID = xid.New("inv")
	}
	stampNew(&invoice.CreatedAt, &invoice.UpdatedAt)
	if err := insertDoc(ctx, s.db, "invoices", invoice.ID, invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return getDoc[domain.Invoice](ctx, s.db, `SELECT data FROM invoices WHERE id = $1`, id)
}

func (s *Store) ListInvoices(ctx context.Context, filter store.InvoiceFilter) ([]domain.Invoice, int, error) {
	search := strings.TrimSpace(filter.Search)
	offset := max(filter.Offset, 0)

	var total int
	if err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM invoices
		WHERE ($1 = '' OR strpos(lower(data->>'invoice_number'), lower($1)) > 0)
	`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	invoices, err := listDocs[domain.Invoice](ctx, s.db, `
		SELECT data FROM invoices
		WHERE ($1 = '' OR strpos(lower(data->>'invoice_number'), lower($1)) > 0)
		ORDER BY seq DESC
		LIMIT NULLIF($2::int, 0) OFFSET $3
	`, search, max(filter.Limit, 0), offset)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (s *Store) ListInvoicesByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	return listDocs[domain.Invoice](ctx, s.db, `SELECT data FROM invoices WHERE data->>'customer_id' = $1 ORDER BY seq DESC`, customerID)
}

func (s *Store) ListInvoicesByStatus(ctx context.Context, statuses []string) ([]domain.Invoice, error) {
	return listDocs[domain.Invoice](ctx, s.db, `SELECT data FROM invoices WHERE data->>'status' = ANY($1) ORDER BY seq DESC`, statuses)
}

func (s *Store) UpdateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	invoice.UpdatedAt = time.Now().UTC()
	if err := updateDoc(ctx, s.db, "invoices", invoice.ID, invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, "invoices", id)
}

// Employees

func (s *Store) CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	if employee.ID == "" {
		employee.ID = xid.New("emp")
	}
	stampNew(&employee.CreatedAt, &employee.UpdatedAt)
	if err := insertDoc(ctx, s.db, "employees", employee.ID, employee); err != nil {
		return nil, err
	}
	return &employee, nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	return getDoc[domain.Employee](ctx, s.db, `SELECT data FROM employees WHERE id = $1`, id)
}

func (s *Store) FindEmployeeByContact(ctx context.Context, contact string) (*domain.Employee, error) {
	return getDoc[domain.Employee](ctx, s.db, `SELECT data FROM employees WHERE data->>'contact' = $1`, contact)
}

func (s *Store) FindEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	if email == "" {
		return nil, store.ErrNotFound
	}
	return getDoc[domain.Employee](ctx, s.db, `SELECT data FROM employees WHERE lower(data->>'email') = lower($1)`, email)
}

func (s *Store) ListEmployees(ctx context.Context, filter store.EmployeeFilter) ([]domain.Employee, error) {
	return listDocs[domain.Employee](ctx, s.db, `
		SELECT data FROM employees
		WHERE ($1 = '' OR data->>'status' = $1)
			AND ($2 = '' OR lower(data->>'department') = lower($2))
		ORDER BY seq DESC
	`, filter.Status, filter.Department)
}

func (s *Store) UpdateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	employee.UpdatedAt = time.Now().UTC()
	if err := updateDoc(ctx, s.db, "employees", employee.ID, employee); err != nil {
		return nil, err
	}
	return &employee, nil
}

// Salaries

func (s *Store) CreateSalary(ctx context.Context, record domain.SalaryRecord) (*domain.SalaryRecord, error) {
	if record.ID == "" {
		record.ID = xid.New("sal")
	}
	stampNew(&record.CreatedAt, &record.UpdatedAt)
	if err := insertDoc(ctx, s.db, "salaries", record.ID, record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) CreateSalaryBatch(ctx context.Context, records []domain.SalaryRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range records {
		if record.ID == "" {
			record.ID = xid.New("sal")
		}
		stampNew(&record.CreatedAt, &record.UpdatedAt)
		if err := insertDoc(ctx, tx, "salaries", record.ID, record); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetSalary(ctx context.Context, id string) (*domain.SalaryRecord, error) {
	return getDoc[domain.SalaryRecord](ctx, s.db, `SELECT data FROM salaries WHERE id = $1`, id)
}

func (s *Store) FindSalary(ctx context.Context, employeeID string, month int, year int) (*domain.SalaryRecord, error) {
	return getDoc[domain.SalaryRecord](ctx, s.db, `
		SELECT data FROM salaries
		WHERE data->>'employee_id' = $1 AND data->>'month' = $2 AND data->>'year' = $3
	`, employeeID, strconv.Itoa(month), strconv.Itoa(year))
}

func (s *Store) ListSalaries(ctx context.Context, filter store.SalaryFilter) ([]domain.SalaryRecord, error) {
	return listDocs[domain.SalaryRecord](ctx, s.db, `
		SELECT data FROM salaries
		WHERE ($1 = '' OR data->>'employee_id' = $1)
			AND ($2::int = 0 OR (data->>'month')::int = $2::int)
			AND ($3::int = 0 OR (data->>'year')::int = $3::int)
			AND ($4 = '' OR data->>'status' = $4)
		ORDER BY seq DESC
	`, filter.EmployeeID, filter.Month, filter.Year, filter.Status)
}

func (s *Store) UpdateSalary(ctx context.Context, record domain.SalaryRecord) (*domain.SalaryRecord, error) {
	record.UpdatedAt = time.Now().UTC()
	if err := updateDoc(ctx, s.db, "salaries", record.ID, record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) DeleteSalary(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, "salaries", id)
}

// Advances

func (s *Store) CreateAdvance(ctx context.Context, advance domain.Advance) (*domain.Advance, error) {
	if advance.ID == "" {
		advance.ID = xid.New("adv")
	}
	stampNew(&advance.CreatedAt, &advance.UpdatedAt)
	if err := insertDoc(ctx, s.db, "advances", advance.ID, advance); err != nil {
		return nil, err
	}
	return &advance, nil
}

func (s *Store) GetAdvance(ctx context.Context, id string) (*domain.Advance, error) {
	return getDoc[domain.Advance](ctx, s.db, `SELECT data FROM advances WHERE id = $1`, id)
}

func (s *Store) ListAdvances(ctx context.Context, filter store.AdvanceFilter) ([]domain.Advance, error) {
	return listDocs[domain.Advance](ctx, s.db, `
		SELECT data FROM advances
		WHERE ($1 = '' OR data->>'employee_id' = $1)
			AND ($2 = '' OR data->>'status' = $2)
		ORDER BY seq DESC
	`, filter.EmployeeID, filter.Status)
}

func (s *Store) UpdateAdvance(ctx context.Context, advance domain.Advance) (*domain.Advance, error) {
	advance.UpdatedAt = time.Now().UTC()
	if err := updateDoc(ctx, s.db, "advances", advance.ID, advance); err != nil {
		return nil, err
	}
	return &advance, nil
}

// Attendance

func (s *Store) CreateAttendance(ctx context.Context, record domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	if record.ID == "" {
		record.ID = xid.New("att")
	}
	stampNew(&record.CreatedAt, &record.UpdatedAt)
	if err := insertDoc(ctx, s.db, "attendances", record.ID, record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) CreateAttendanceBatch(ctx context.Context, records []domain.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range records {
		if record.ID == "" {
			record.ID = xid.New("att")
		}
		stampNew(&record.CreatedAt, &record.UpdatedAt)
		if err := insertDoc(ctx, tx, "attendances", record.ID, record); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetAttendance(ctx context.Context, id string) (*domain.AttendanceRecord, error) {
	return getDoc[domain.AttendanceRecord](ctx, s.db, `SELECT data FROM attendances WHERE id = $1`, id)
}

func (s *Store) FindAttendance(ctx context.Context, employeeID string, from time.Time, to time.Time) (*domain.AttendanceRecord, error) {
	return getDoc[domain.AttendanceRecord](ctx, s.db, `
		SELECT data FROM attendances
		WHERE data->>'employee_id' = $1
			AND (data->>'date')::timestamptz >= $2
			AND (data->>'date')::timestamptz < $3
		LIMIT 1
	`, employeeID, from.UTC(), to.UTC())
}

func (s *Store) ListAttendances(ctx context.Context, filter store.AttendanceFilter) ([]domain.AttendanceRecord, error) {
	return listDocs[domain.AttendanceRecord](ctx, s.db, `
		SELECT data FROM attendances
		WHERE ($1 = '' OR data->>'employee_id' = $1)
			AND ($2::timestamptz IS NULL OR (data->>'date')::timestamptz >= $2::timestamptz)
			AND ($3::timestamptz IS NULL OR (data->>'date')::timestamptz < $3::timestamptz)
		ORDER BY (data->>'date')::timestamptz DESC, seq DESC
	`, filter.EmployeeID, nullTime(filter.From), nullTime(filter.To))
}

func (s *Store) UpdateAttendance(ctx context.Context, record domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	record.UpdatedAt = time.Now().UTC()
	if err := updateDoc(ctx, s.db, "attendances", record.ID, record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) DeleteAttendance(ctx context.Context, id string) error {
	return deleteDoc(ctx, s.db, "attendances", id)
}

// Expense buckets

func (s *Store) GetMonthlyExpense(ctx context.Context, yearMonth string) (*domain.MonthlyExpenseBucket, error) {
	return getDoc[domain.MonthlyExpenseBucket](ctx, s.db, `SELECT data FROM monthly_expenses WHERE year_month = $1`, yearMonth)
}

// UpsertMonthlyExpenseEntry locks the bucket row so concurrent writers for
// the same month serialize instead of losing entries.
func (s *Store) UpsertMonthlyExpenseEntry(ctx context.Context, yearMonth string, entry domain.ExpenseEntry) (*domain.MonthlyExpenseBucket, error) {
	if yearMonth == "" || entry.Date == "" {
		return nil, store.ErrInvalidDocument
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	fresh, err := encode(domain.MonthlyExpenseBucket{ID: xid.New("mexp"), YearMonth: yearMonth, Entries: []domain.ExpenseEntry{}, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO monthly_expenses (year_month, data, created_at, updated_at)
		VALUES ($1, $2::jsonb, now(), now())
		ON CONFLICT (year_month) DO NOTHING
	`, yearMonth, fresh); err != nil {
		return nil, err
	}

	bucket, err := getDoc[domain.MonthlyExpenseBucket](ctx, tx, `SELECT data FROM monthly_expenses WHERE year_month = $1 FOR UPDATE`, yearMonth)
	if err != nil {
		return nil, err
	}
	replaced := false
	for i := range bucket.Entries {
		if bucket.Entries[i].Date == entry.Date {
			bucket.Entries[i].Amount = entry.Amount
			replaced = true
			break
		}
	}
	if !replaced {
		bucket.Entries = append(bucket.Entries, entry)
	}
	bucket.UpdatedAt = now

	data, err := encode(bucket)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE monthly_expenses SET data = $2::jsonb, updated_at = now() WHERE year_month = $1`, yearMonth, data); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return bucket, nil
}

func (s *Store) ListMonthlyExpenses(ctx context.Context) ([]domain.MonthlyExpenseBucket, error) {
	return listDocs[domain.MonthlyExpenseBucket](ctx, s.db, `SELECT data FROM monthly_expenses ORDER BY year_month DESC`)
}

func (s *Store) GetYearlyExpense(ctx context.Context, year int) (*domain.YearlyExpenseBucket, error) {
	return getDoc[domain.YearlyExpenseBucket](ctx, s.db, `SELECT data FROM yearly_expenses WHERE year = $1`, year)
}

func (s *Store) UpsertYearlyExpenseEntry(ctx context.Context, year int, entry domain.YearlyExpenseEntry) (*domain.YearlyExpenseBucket, error) {
	if year < 1 || entry.Month == "" {
		return nil, store.ErrInvalidDocument
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	fresh, err := encode(domain.YearlyExpenseBucket{ID: xid.New("yexp"), Year: year, Expenses: []domain.YearlyExpenseEntry{}, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO yearly_expenses (year, data, created_at, updated_at)
		VALUES ($1, $2::jsonb, now(), now())
		ON CONFLICT (year) DO NOTHING
	`, year, fresh); err != nil {
		return nil, err
	}

	bucket, err := getDoc[domain.YearlyExpenseBucket](ctx, tx, `SELECT data FROM yearly_expenses WHERE year = $1 FOR UPDATE`, year)
	if err != nil {
		return nil, err
	}
	replaced := false
	for i := range bucket.Expenses {
		if bucket.Expenses[i].Month == entry.Month {
			bucket.Expenses[i].Amount = entry.Amount
			replaced = true
			break
		}
	}
	if !replaced {
		bucket.Expenses = append(bucket.Expenses, entry)
	}
	bucket.UpdatedAt = now

	data, err := encode(bucket)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE yearly_expenses SET data = $2::jsonb, updated_at = now() WHERE year = $1`, year, data); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return bucket, nil
}

func (s *Store) ListYearlyExpenses(ctx context.Context) ([]domain.YearlyExpenseBucket, error) {
	return listDocs[domain.YearlyExpenseBucket](ctx, s.db, `SELECT data FROM yearly_expenses ORDER BY year DESC`)
}

// Audit

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, entry.ID, entry.Actor, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, entityType string, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE ($1 = '' OR entity_type = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, entityType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
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

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return val.UTC()
}
