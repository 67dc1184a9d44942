package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/store"
	"backoffice/internal/xid"
)

type Store struct {
	mu          sync.RWMutex
	counters    map[string]int64
	vendors     *table[domain.Vendor]
	customers   *table[domain.Customer]
	rawProducts *table[domain.RawProduct]
	departments *table[domain.Department]
	gateIns     *table[domain.GateInRecord]
	gateOuts    *table[domain.GateOutRecord]
	invoices    *table[domain.Invoice]
	employees   *table[domain.Employee]
	salaries    *table[domain.SalaryRecord]
	advances    *table[domain.Advance]
	attendances *table[domain.AttendanceRecord]
	monthly     *table[domain.MonthlyExpenseBucket]
	yearly      *table[domain.YearlyExpenseBucket]
	auditLogs   []domain.AuditLog
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		counters:    make(map[string]int64),
		vendors:     newTable[domain.Vendor](),
		customers:   newTable[domain.Customer](),
		rawProducts: newTable[domain.RawProduct](),
		departments: newTable[domain.Department](),
		gateIns:     newTable[domain.GateInRecord](),
		gateOuts:    newTable[domain.GateOutRecord](),
		invoices:    newTable[domain.Invoice](),
		employees:   newTable[domain.Employee](),
		salaries:    newTable[domain.SalaryRecord](),
		advances:    newTable[domain.Advance](),
		attendances: newTable[domain.AttendanceRecord](),
		monthly:     newTable[domain.MonthlyExpenseBucket](),
		yearly:      newTable[domain.YearlyExpenseBucket](),
		auditLogs:   make([]domain.AuditLog, 0, 128),
	}
}

func (s *Store) NextSequence(_ context.Context, name string, start int64) (int64, error) {
	if name == "" {
		return 0, store.ErrInvalidDocument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.counters[name]
	if !ok {
		s.counters[name] = start
		return start, nil
	}
	current++
	s.counters[name] = current
	return current, nil
}

// Vendors

func (s *Store) CreateVendor(_ context.Context, vendor domain.Vendor) (*domain.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vendor.ID == "" {
		vendor.ID = xid.New("ven")
	}
	stampNew(&vendor.CreatedAt, &vendor.UpdatedAt)
	if s.vendorContactTaken(vendor) {
		return nil, store.ErrConflict
	}
	s.vendors.put(vendor.ID, vendor)
	return &vendor, nil
}

func (s *Store) vendorContactTaken(vendor domain.Vendor) bool {
	_, taken := s.vendors.find(func(v domain.Vendor) bool {
		return v.ID != vendor.ID && (strings.EqualFold(v.Email, vendor.Email) || v.Phone == vendor.Phone)
	})
	return taken
}

func (s *Store) GetVendor(_ context.Context, id string) (*domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.vendors.get(id))
}

func (s *Store) ListVendors(_ context.Context) ([]domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vendors.newestFirst(nil), nil
}

func (s *Store) FindVendorByEmail(_ context.Context, email string) (*domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.vendors.find(func(v domain.Vendor) bool { return strings.EqualFold(v.Email, email) }))
}

func (s *Store) FindVendorByPhone(_ context.Context, phone string) (*domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.vendors.find(func(v domain.Vendor) bool { return v.Phone == phone }))
}

func (s *Store) UpdateVendor(_ context.Context, vendor domain.Vendor) (*domain.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vendors.get(vendor.ID); !ok {
		return nil, store.ErrNotFound
	}
	if s.vendorContactTaken(vendor) {
		return nil, store.ErrConflict
	}
	vendor.UpdatedAt = time.Now().UTC()
	s.vendors.put(vendor.ID, vendor)
	return &vendor, nil
}

func (s *Store) DeleteVendor(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removed(s.vendors.remove(id))
}

// Customers

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.ID == "" {
		customer.ID = xid.New("cus")
	}
	stampNew(&customer.CreatedAt, &customer.UpdatedAt)
	s.customers.put(customer.ID, customer)
	return &customer, nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.customers.get(id))
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers.newestFirst(nil), nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers.get(customer.ID); !ok {
		return nil, store.ErrNotFound
	}
	customer.UpdatedAt = time.Now().UTC()
	s.customers.put(customer.ID, customer)
	return &customer, nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removed(s.customers.remove(id))
}

// Raw products

func (s *Store) CreateRawProduct(_ context.Context, product domain.RawProduct) (*domain.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = xid.New("raw")
	}
	stampNew(&product.CreatedAt, &product.UpdatedAt)
	if s.rawProductNameTaken(product) {
		return nil, store.ErrConflict
	}
	s.rawProducts.put(product.ID, product)
	return &product, nil
}

func (s *Store) rawProductNameTaken(product domain.RawProduct) bool {
	_, taken := s.rawProducts.find(func(p domain.RawProduct) bool {
		return p.ID != product.ID && strings.EqualFold(p.Name, product.Name)
	})
	return taken
}

func (s *Store) GetRawProduct(_ context.Context, id string) (*domain.RawProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.rawProducts.get(id))
}

func (s *Store) FindRawProductByName(_ context.Context, name string) (*domain.RawProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.rawProducts.find(func(p domain.RawProduct) bool { return strings.EqualFold(p.Name, name) }))
}

func (s *Store) ListRawProducts(_ context.Context) ([]domain.RawProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := s.rawProducts.newestFirst(nil)
	sort.SliceStable(products, func(i, j int) bool { return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name) })
	return products, nil
}

func (s *Store) UpdateRawProduct(_ context.Context, product domain.RawProduct) (*domain.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rawProducts.get(product.ID); !ok {
		return nil, store.ErrNotFound
	}
	if s.rawProductNameTaken(product) {
		return nil, store.ErrConflict
	}
	product.UpdatedAt = time.Now().UTC()
	s.rawProducts.put(product.ID, product)
	return &product, nil
}

func (s *Store) DeleteRawProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removed(s.rawProducts.remove(id))
}

// Departments

func (s *Store) CreateDepartment(_ context.Context, department domain.Department) (*domain.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if department.ID == "" {
		department.ID = xid.New("dep")
	}
	if department.CreatedAt.IsZero() {
		department.CreatedAt = time.Now().UTC()
	}
	if _, taken := s.departments.find(func(d domain.Department) bool { return strings.EqualFold(d.Name, department.Name) }); taken {
		return nil, store.ErrConflict
	}
	s.departments.put(department.ID, department)
	return &department, nil
}

func (s *Store) FindDepartmentByName(_ context.Context, name string) (*domain.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.departments.find(func(d domain.Department) bool { return strings.EqualFold(d.Name, name) }))
}

func (s *Store) ListDepartments(_ context.Context) ([]domain.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	departments := s.departments.newestFirst(nil)
	sort.SliceStable(departments, func(i, j int) bool { return departments[i].Name < departments[j].Name })
	return departments, nil
}

func (s *Store) DeleteDepartment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removed(s.departments.remove(id))
}

// Gate-in

func (s *Store) CreateGateIn(_ context.Context, record domain.GateInRecord) (*domain.GateInRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = xid.New("gin")
	}
	stampNew(&record.CreatedAt, &record.UpdatedAt)
	if _, taken := s.gateIns.find(func(r domain.GateInRecord) bool { return r.InvoiceNumber == record.InvoiceNumber }); taken {
		return nil, store.ErrConflict
	}
	record = cloneGateIn(record)
	s.gateIns.put(record.ID, record)
	out := cloneGateIn(record)
	return &out, nil
}

func (s *Store) GetGateIn(_ context.Context, id string) (*domain.GateInRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.gateIns.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneGateIn(record)
	return &out, nil
}

func (s *Store) ListGateIns(_ context.Context, vendorID string) ([]domain.GateInRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.gateIns.newestFirst(func(r domain.GateInRecord) bool {
		return vendorID == "" || r.VendorID == vendorID
	})
	for i := range records {
		records[i] = cloneGateIn(records[i])
	}
	return records, nil
}

func (s *Store) UpdateGateIn(_ context.Context, record domain.GateInRecord) (*domain.GateInRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.gateIns.get(record.ID); !ok {
		return nil, store.ErrNotFound
	}
	record.UpdatedAt = time.Now().UTC()
	record = cloneGateIn(record)
	s.gateIns.put(record.ID, record)
	out := cloneGateIn(record)
	return &out, nil
}

func (s *Store) DeleteGateIn(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removed(s.gateIns.remove(id))
}

// Gate-out

func (s *Store) CreateGateOut(_ context.Context, record domain.GateOutRecord) (*domain.GateOutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = xid.New("gout")
	}
	stampNew(&record.CreatedAt, &record.UpdatedAt)
	if _, taken := s.gateOuts.find(func(r domain.GateOutRecord) bool { return r.Invoice == record.Invoice }); taken {
		return nil, store.ErrConflict
	}
	s.gateOuts.put(record.ID, record)
	return &record, nil
}

func (s *Store) GetGateOut(_ context.Context, id string) (*domain.GateOutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.gateOuts.get(id))
}

func (s *Store) ListGateOuts(_ context.Context) ([]domain.GateOutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gateOuts.newestFirst(nil), nil
}

func (s *Store) UpdateGateOut(_ context.Context, record domain.GateOutRecord) (*domain.GateOutRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.gateOuts.get(record.ID); !ok {
		return nil, store.ErrNotFound
	}
	record.UpdatedAt = time.Now().UTC()
	s.gateOuts.put(record.ID, record)
	return &record, nil
}

func (s *Store) DeleteGateOut(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removed(s.gateOuts.remove(id))
}

// Invoices

func (s *Store) CreateInvoice(_ context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if invoice.ID == "" {
		invoice.ID = xid.New("inv")
	}
	stampNew(&invoice.CreatedAt, &invoice.UpdatedAt)
	if _, taken := s.invoices.find(func(i domain.Invoice) bool { return i.InvoiceNumber == invoice.InvoiceNumber }); taken {
		return nil, store.ErrConflict
	}
	invoice = cloneInvoice(invoice)
	s.invoices.put(invoice.ID, invoice)
	out := cloneInvoice(invoice)
	return &out, nil
}

func (s *Store) GetInvoice(_ context.Context, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invoice, ok := s.invoices.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneInvoice(invoice)
	return &out, nil
}

func (s *Store) ListInvoices(_ context.Context, filter store.InvoiceFilter) ([]domain.Invoice, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matches := s.invoices.newestFirst(func(i domain.Invoice) bool {
		return search == "" || strings.Contains(strings.ToLower(i.InvoiceNumber), search)
	})
	total := len(matches)

	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	page := make([]domain.Invoice, 0, end-start)
	for _, invoice := range matches[start:end] {
		page = append(page, cloneInvoice(invoice))
	}
	return page, total, nil
}

func (s *Store) ListInvoicesByCustomer(_ context.Context, customerID string) ([]domain.Invoice, error) {
	return s.filterInvoices(func(i domain.Invoice) bool { return i.CustomerID == customerID }), nil
}

func (s *Store) ListInvoicesByStatus(_ context.Context, statuses []string) ([]domain.Invoice, error) {
	return s.filterInvoices(func(i domain.Invoice) bool { return slices.Contains(statuses, i.Status) }), nil
}

func (s *Store) filterInvoices(keep func(domain.Invoice) bool) []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invoices := s.invoices.newestFirst(keep)
	for i := range invoices {
		invoices[i] = cloneInvoice(invoices[i])
	}
	return invoices
}

func (s *Store) UpdateInvoice(_ context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices.get(invoice.ID); !ok {
		return nil, store.ErrNotFound
	}
	invoice.UpdatedAt = time.Now().UTC()
	invoice = cloneInvoice(invoice)
	s.invoices.put(invoice.ID, invoice)
	out := cloneInvoice(invoice)
	return &out, nil
}

func (s *Store) DeleteInvoice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removed(s.invoices.remove(id))
}

// Employees

func (s *Store) CreateEmployee(_ context.Context, employee domain.Employee) (*domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if employee.ID == "" {
		employee.ID = xid.New("emp")
	}
	stampNew(&employee.CreatedAt, &employee.UpdatedAt)
	if s.employeeIdentityTaken(employee) {
		return nil, store.ErrConflict
	}
	s.employees.put(employee.ID, employee)
	return &employee, nil
}

func (s *Store) employeeIdentityTaken(employee domain.Employee) bool {
	_, taken := s.employees.find(func(e domain.Employee) bool {
		if e.ID == employee.ID {
			return false
		}
		if e.Contact == employee.Contact {
			return true
		}
		return employee.Email != "" && strings.EqualFold(e.Email, employee.Email)
	})
	return taken
}

func (s *Store) GetEmployee(_ context.Context, id string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.employees.get(id))
}

func (s *Store) FindEmployeeByContact(_ context.Context, contact string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.employees.find(func(e domain.Employee) bool { return e.Contact == contact }))
}

func (s *Store) FindEmployeeByEmail(_ context.Context, email string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if email == "" {
		return nil, store.ErrNotFound
	}
	return found(s.employees.find(func(e domain.Employee) bool { return strings.EqualFold(e.Email, email) }))
}

func (s *Store) ListEmployees(_ context.Context, filter store.EmployeeFilter) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.employees.newestFirst(func(e domain.Employee) bool {
		if filter.Status != "" && e.Status != filter.Status {
			return false
		}
		return filter.Department == "" || strings.EqualFold(e.Department, filter.Department)
	}), nil
}

func (s *Store) UpdateEmployee(_ context.Context, employee domain.Employee) (*domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees.get(employee.ID); !ok {
		return nil, store.ErrNotFound
	}
	if s.employeeIdentityTaken(employee) {
		return nil, store.ErrConflict
	}
	employee.UpdatedAt = time.Now().UTC()
	s.employees.put(employee.ID, employee)
	return &employee, nil
}

// Salaries

func (s *Store) CreateSalary(_ context.Context, record domain.SalaryRecord) (*domain.SalaryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.insertSalaryLocked(record)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) CreateSalaryBatch(_ context.Context, records []domain.SalaryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := make([]string, 0, len(records))
	for _, record := range records {
		created, err := s.insertSalaryLocked(record)
		if err != nil {
			for _, id := range inserted {
				s.salaries.remove(id)
			}
			return err
		}
		inserted = append(inserted, created.ID)
	}
	return nil
}

func (s *Store) insertSalaryLocked(record domain.SalaryRecord) (domain.SalaryRecord, error) {
	if record.ID == "" {
		record.ID = xid.New("sal")
	}
	stampNew(&record.CreatedAt, &record.UpdatedAt)
	if _, taken := s.salaries.find(func(r domain.SalaryRecord) bool {
		return r.EmployeeID == record.EmployeeID && r.Month == record.Month && r.Year == record.Year
	}); taken {
		return domain.SalaryRecord{}, store.ErrConflict
	}
	s.salaries.put(record.ID, record)
	return record, nil
}

func (s *Store) GetSalary(_ context.Context, id string) (*domain.SalaryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.salaries.get(id))
}

func (s *Store) FindSalary(_ context.Context, employeeID string, month int, year int) (*domain.SalaryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.salaries.find(func(r domain.SalaryRecord) bool {
		return r.EmployeeID == employeeID && r.Month == month && r.Year == year
	}))
}

func (s *Store) ListSalaries(_ context.Context, filter store.SalaryFilter) ([]domain.SalaryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.salaries.newestFirst(func(r domain.SalaryRecord) bool {
		switch {
		case filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID:
			return false
		case filter.Month != 0 && r.Month != filter.Month:
			return false
		case filter.Year != 0 && r.Year != filter.Year:
			return false
		case filter.Status != "" && r.Status != filter.Status:
			return false
		}
		return true
	}), nil
}

func (s *Store) UpdateSalary(_ context.Context, record domain.SalaryRecord) (*domain.SalaryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.salaries.get(record.ID); !ok {
		return nil, store.ErrNotFound
	}
	record.UpdatedAt = time.Now().UTC()
	s.salaries.put(record.ID, record)
	return &record, nil
}

func (s *Store) DeleteSalary(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removed(s.salaries.remove(id))
}

// Advances

func (s *Store) CreateAdvance(_ context.Context, advance domain.Advance) (*domain.Advance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if advance.ID == "" {
		advance.ID = xid.New("adv")
	}
	stampNew(&advance.CreatedAt, &advance.UpdatedAt)
	advance = cloneAdvance(advance)
	s.advances.put(advance.ID, advance)
	out := cloneAdvance(advance)
	return &out, nil
}

func (s *Store) GetAdvance(_ context.Context, id string) (*domain.Advance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	advance, ok := s.advances.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneAdvance(advance)
	return &out, nil
}

func (s *Store) ListAdvances(_ context.Context, filter store.AdvanceFilter) ([]domain.Advance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	advances := s.advances.newestFirst(func(a domain.Advance) bool {
		if filter.EmployeeID != "" && a.EmployeeID != filter.EmployeeID {
			return false
		}
		return filter.Status == "" || a.Status == filter.Status
	})
	for i := range advances {
		advances[i] = cloneAdvance(advances[i])
	}
	return advances, nil
}

func (s *Store) UpdateAdvance(_ context.Context, advance domain.Advance) (*domain.Advance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.advances.get(advance.ID); !ok {
		return nil, store.ErrNotFound
	}
	advance.UpdatedAt = time.Now().UTC()
	advance = cloneAdvance(advance)
	s.advances.put(advance.ID, advance)
	out := cloneAdvance(advance)
	return &out, nil
}

// Attendance

func (s *Store) CreateAttendance(_ context.Context, record domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.insertAttendanceLocked(record)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) CreateAttendanceBatch(_ context.Context, records []domain.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := make([]string, 0, len(records))
	for _, record := range records {
		created, err := s.insertAttendanceLocked(record)
		if err != nil {
			for _, id := range inserted {
				s.attendances.remove(id)
			}
			return err
		}
		inserted = append(inserted, created.ID)
	}
	return nil
}

func (s *Store) insertAttendanceLocked(record domain.AttendanceRecord) (domain.AttendanceRecord, error) {
	if record.ID == "" {
		record.ID = xid.New("att")
	}
	stampNew(&record.CreatedAt, &record.UpdatedAt)
	if _, taken := s.attendances.find(func(r domain.AttendanceRecord) bool {
		return r.EmployeeID == record.EmployeeID && r.Date.Equal(record.Date)
	}); taken {
		return domain.AttendanceRecord{}, store.ErrConflict
	}
	s.attendances.put(record.ID, record)
	return record, nil
}

func (s *Store) GetAttendance(_ context.Context, id string) (*domain.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.attendances.get(id))
}

func (s *Store) FindAttendance(_ context.Context, employeeID string, from time.Time, to time.Time) (*domain.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return found(s.attendances.find(func(r domain.AttendanceRecord) bool {
		return r.EmployeeID == employeeID && !r.Date.Before(from) && r.Date.Before(to)
	}))
}

func (s *Store) ListAttendances(_ context.Context, filter store.AttendanceFilter) ([]domain.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.attendances.newestFirst(func(r domain.AttendanceRecord) bool {
		switch {
		case filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID:
			return false
		case filter.From != nil && r.Date.Before(*filter.From):
			return false
		case filter.To != nil && !r.Date.Before(*filter.To):
			return false
		}
		return true
	})
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	return records, nil
}

func (s *Store) UpdateAttendance(_ context.Context, record domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attendances.get(record.ID); !ok {
		return nil, store.ErrNotFound
	}
	record.UpdatedAt = time.Now().UTC()
	s.attendances.put(record.ID, record)
	return &record, nil
}

func (s *Store) DeleteAttendance(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removed(s.attendances.remove(id))
}

// Expense buckets are keyed by their period rather than a generated id.

func (s *Store) GetMonthlyExpense(_ context.Context, yearMonth string) (*domain.MonthlyExpenseBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.monthly.get(yearMonth)
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneMonthly(bucket)
	return &out, nil
}

func (s *Store) UpsertMonthlyExpenseEntry(_ context.Context, yearMonth string, entry domain.ExpenseEntry) (*domain.MonthlyExpenseBucket, error) {
	if yearMonth == "" || entry.Date == "" {
		return nil, store.ErrInvalidDocument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	bucket, ok := s.monthly.get(yearMonth)
	if !ok {
		bucket = domain.MonthlyExpenseBucket{ID: xid.New("mexp"), YearMonth: yearMonth, CreatedAt: now}
	}
	bucket = cloneMonthly(bucket)
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
	s.monthly.put(yearMonth, bucket)
	out := cloneMonthly(bucket)
	return &out, nil
}

func (s *Store) ListMonthlyExpenses(_ context.Context) ([]domain.MonthlyExpenseBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buckets := s.monthly.newestFirst(nil)
	for i := range buckets {
		buckets[i] = cloneMonthly(buckets[i])
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].YearMonth > buckets[j].YearMonth })
	return buckets, nil
}

func (s *Store) GetYearlyExpense(_ context.Context, year int) (*domain.YearlyExpenseBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.yearly.get(yearKey(year))
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneYearly(bucket)
	return &out, nil
}

func (s *Store) UpsertYearlyExpenseEntry(_ context.Context, year int, entry domain.YearlyExpenseEntry) (*domain.YearlyExpenseBucket, error) {
	if year < 1 || entry.Month == "" {
		return nil, store.ErrInvalidDocument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	bucket, ok := s.yearly.get(yearKey(year))
	if !ok {
		bucket = domain.YearlyExpenseBucket{ID: xid.New("yexp"), Year: year, CreatedAt: now}
	}
	bucket = cloneYearly(bucket)
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
	s.yearly.put(yearKey(year), bucket)
	out := cloneYearly(bucket)
	return &out, nil
}

func (s *Store) ListYearlyExpenses(_ context.Context) ([]domain.YearlyExpenseBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buckets := s.yearly.newestFirst(nil)
	for i := range buckets {
		buckets[i] = cloneYearly(buckets[i])
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Year > buckets[j].Year })
	return buckets, nil
}

// Audit

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, entityType string, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	out := make([]domain.AuditLog, 0, min(limit, len(s.auditLogs)))
	for i := len(s.auditLogs) - 1; i >= 0 && len(out) < limit; i-- {
		entry := s.auditLogs[i]
		if entityType != "" && entry.EntityType != entityType {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
