package store

import (
	"context"
	"errors"
	"time"

	"backoffice/internal/domain"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidDocument = errors.New("invalid document")
)

// Sequence names and their first value.
const (
	SeqGateInInvoice  = "gateInInvoice"
	SeqGateOutInvoice = "gateOutInvoice"
	SeqSalesInvoice   = "salesInvoice"
	SeqEmployeeNumber = "employeeNumber"
)

var SequenceStart = map[string]int64{
	SeqGateInInvoice:  1000,
	SeqGateOutInvoice: 1,
	SeqSalesInvoice:   1,
	SeqEmployeeNumber: 1,
}

type InvoiceFilter struct {
	Search string
	Offset int
	Limit  int
}

type EmployeeFilter struct {
	Status     string
	Department string
}

type SalaryFilter struct {
	EmployeeID string
	Month      int
	Year       int
	Status     string
}

type AdvanceFilter struct {
	EmployeeID string
	Status     string
}

type AttendanceFilter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
}

type Repository interface {
	// NextSequence atomically increments and returns the named counter.
	// An absent counter is created so that the first call returns start.
	NextSequence(ctx context.Context, name string, start int64) (int64, error)

	CreateVendor(ctx context.Context, vendor domain.Vendor) (*domain.Vendor, error)
	GetVendor(ctx context.Context, id string) (*domain.Vendor, error)
	ListVendors(ctx context.Context) ([]domain.Vendor, error)
	FindVendorByEmail(ctx context.Context, email string) (*domain.Vendor, error)
	FindVendorByPhone(ctx context.Context, phone string) (*domain.Vendor, error)
	UpdateVendor(ctx context.Context, vendor domain.Vendor) (*domain.Vendor, error)
	DeleteVendor(ctx context.Context, id string) error

	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	CreateRawProduct(ctx context.Context, product domain.RawProduct) (*domain.RawProduct, error)
	GetRawProduct(ctx context.Context, id string) (*domain.RawProduct, error)
	FindRawProductByName(ctx context.Context, name string) (*domain.RawProduct, error)
	ListRawProducts(ctx context.Context) ([]domain.RawProduct, error)
	UpdateRawProduct(ctx context.Context, product domain.RawProduct) (*domain.RawProduct, error)
	DeleteRawProduct(ctx context.Context, id string) error

	CreateDepartment(ctx context.Context, department domain.Department) (*domain.Department, error)
	FindDepartmentByName(ctx context.Context, name string) (*domain.Department, error)
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	DeleteDepartment(ctx context.Context, id string) error

	CreateGateIn(ctx context.Context, record domain.GateInRecord) (*domain.GateInRecord, error)
	GetGateIn(ctx context.Context, id string) (*domain.GateInRecord, error)
	// ListGateIns returns records newest first; an empty vendorID lists all.
	ListGateIns(ctx context.Context, vendorID string) ([]domain.GateInRecord, error)
	UpdateGateIn(ctx context.Context, record domain.GateInRecord) (*domain.GateInRecord, error)
	DeleteGateIn(ctx context.Context, id string) error

	CreateGateOut(ctx context.Context, record domain.GateOutRecord) (*domain.GateOutRecord, error)
	GetGateOut(ctx context.Context, id string) (*domain.GateOutRecord, error)
	ListGateOuts(ctx context.Context) ([]domain.GateOutRecord, error)
	UpdateGateOut(ctx context.Context, record domain.GateOutRecord) (*domain.GateOutRecord, error)
	DeleteGateOut(ctx context.Context, id string) error

	CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	// ListInvoices returns one page, newest first, and the total match count.
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, int, error)
	ListInvoicesByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error)
	ListInvoicesByStatus(ctx context.Context, statuses []string) ([]domain.Invoice, error)
	UpdateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error

	CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error)
	GetEmployee(ctx context.Context, id string) (*domain.Employee, error)
	FindEmployeeByContact(ctx context.Context, contact string) (*domain.Employee, error)
	FindEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error)
	UpdateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error)

	CreateSalary(ctx context.Context, record domain.SalaryRecord) (*domain.SalaryRecord, error)
	// CreateSalaryBatch inserts all records or none.
	CreateSalaryBatch(ctx context.Context, records []domain.SalaryRecord) error
	GetSalary(ctx context.Context, id string) (*domain.SalaryRecord, error)
	FindSalary(ctx context.Context, employeeID string, month int, year int) (*domain.SalaryRecord, error)
	ListSalaries(ctx context.Context, filter SalaryFilter) ([]domain.SalaryRecord, error)
	UpdateSalary(ctx context.Context, record domain.SalaryRecord) (*domain.SalaryRecord, error)
	DeleteSalary(ctx context.Context, id string) error

	CreateAdvance(ctx context.Context, advance domain.Advance) (*domain.Advance, error)
	GetAdvance(ctx context.Context, id string) (*domain.Advance, error)
	ListAdvances(ctx context.Context, filter AdvanceFilter) ([]domain.Advance, error)
	UpdateAdvance(ctx context.Context, advance domain.Advance) (*domain.Advance, error)

	CreateAttendance(ctx context.Context, record domain.AttendanceRecord) (*domain.AttendanceRecord, error)
	// CreateAttendanceBatch inserts all records or none.
	CreateAttendanceBatch(ctx context.Context, records []domain.AttendanceRecord) error
	GetAttendance(ctx context.Context, id string) (*domain.AttendanceRecord, error)
	// FindAttendance returns the employee's record dated in [from, to).
	FindAttendance(ctx context.Context, employeeID string, from time.Time, to time.Time) (*domain.AttendanceRecord, error)
	ListAttendances(ctx context.Context, filter AttendanceFilter) ([]domain.AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, record domain.AttendanceRecord) (*domain.AttendanceRecord, error)
	DeleteAttendance(ctx context.Context, id string) error

	GetMonthlyExpense(ctx context.Context, yearMonth string) (*domain.MonthlyExpenseBucket, error)
	// UpsertMonthlyExpenseEntry creates the bucket if needed and replaces or
	// appends the entry for entry.Date.
	UpsertMonthlyExpenseEntry(ctx context.Context, yearMonth string, entry domain.ExpenseEntry) (*domain.MonthlyExpenseBucket, error)
	ListMonthlyExpenses(ctx context.Context) ([]domain.MonthlyExpenseBucket, error)
	GetYearlyExpense(ctx context.Context, year int) (*domain.YearlyExpenseBucket, error)
	// UpsertYearlyExpenseEntry creates the bucket if needed and replaces or
	// appends the entry for entry.Month.
	UpsertYearlyExpenseEntry(ctx context.Context, year int, entry domain.YearlyExpenseEntry) (*domain.YearlyExpenseBucket, error)
	ListYearlyExpenses(ctx context.Context) ([]domain.YearlyExpenseBucket, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, entityType string, limit int) ([]domain.AuditLog, error)
}
