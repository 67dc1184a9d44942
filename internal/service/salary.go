package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
	"backoffice/internal/store"
	"backoffice/internal/xid"
)

var salaryTolerance = decimal.RequireFromString("0.01")

func netSalary(basic, allowances, deductions, bonuses decimal.Decimal) decimal.Decimal {
	return basic.Add(allowances).Sub(deductions).Add(bonuses)
}

func validatePeriod(month int, year int) error {
	fields := fieldErrors{}
	if month < 1 || month > 12 {
		fields.add("month", "month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		fields.add("year", "year must be between 2000 and 2100")
	}
	return fields.err()
}

func validateSalaryAmounts(allowances, deductions, bonuses decimal.Decimal) error {
	fields := fieldErrors{}
	if allowances.IsNegative() {
		fields.add("allowances", "allowances must not be negative")
	}
	if deductions.IsNegative() {
		fields.add("deductions", "deductions must not be negative")
	}
	if bonuses.IsNegative() {
		fields.add("bonuses", "bonuses must not be negative")
	}
	return fields.err()
}

func isSalaryStatus(status string) bool {
	switch status {
	case domain.SalaryPending, domain.SalaryPaid, domain.SalaryCancelled:
		return true
	default:
		return false
	}
}

// applySalaryStatus sets status and keeps paymentDate present only while paid.
// A record that is already paid keeps its original payment date.
func (s *Service) applySalaryStatus(record *domain.SalaryRecord, status string) {
	if status == domain.SalaryPaid && record.Status == domain.SalaryPaid && record.PaymentDate != nil {
		return
	}
	record.Status = status
	if status == domain.SalaryPaid {
		paidAt := s.now()
		record.PaymentDate = &paidAt
		return
	}
	record.PaymentDate = nil
}

func (s *Service) CreateSalary(ctx context.Context, req domain.SalaryCreateRequest) (domain.SalaryRecord, error) {
	if err := validatePeriod(req.Month, req.Year); err != nil {
		return domain.SalaryRecord{}, err
	}
	if err := validateSalaryAmounts(req.Allowances, req.Deductions, req.Bonuses); err != nil {
		return domain.SalaryRecord{}, err
	}
	status := defaultString(strings.TrimSpace(req.Status), domain.SalaryPending)
	if !isSalaryStatus(status) {
		return domain.SalaryRecord{}, invalid("status must be pending, paid or cancelled")
	}

	employee, err := s.GetEmployee(ctx, strings.TrimSpace(req.EmployeeID))
	if err != nil {
		return domain.SalaryRecord{}, err
	}

	net := netSalary(employee.BasicSalary, req.Allowances, req.Deductions, req.Bonuses)
	if req.NetSalary != nil && req.NetSalary.Sub(net).Abs().GreaterThan(salaryTolerance) {
		return domain.SalaryRecord{}, invalid("net salary %s does not match computed %s", req.NetSalary, net)
	}

	existing, err := s.repo.FindSalary(ctx, employee.ID, req.Month, req.Year)
	if err != nil && !isNotFound(err) {
		return domain.SalaryRecord{}, err
	}
	if existing != nil {
		return domain.SalaryRecord{}, conflict("salary record already exists for this employee and period")
	}

	record := domain.SalaryRecord{
		EmployeeID:  employee.ID,
		Month:       req.Month,
		Year:        req.Year,
		BasicSalary: employee.BasicSalary,
		Allowances:  req.Allowances,
		Deductions:  req.Deductions,
		Bonuses:     req.Bonuses,
		NetSalary:   net,
	}
	s.applySalaryStatus(&record, status)

	created, err := s.repo.CreateSalary(ctx, record)
	if err != nil {
		return domain.SalaryRecord{}, err
	}
	s.logAudit(ctx, "salary_create", "salary", created.ID, fmt.Sprintf("employee=%s,period=%d-%02d,net=%s", created.EmployeeID, created.Year, created.Month, created.NetSalary))
	return *created, nil
}

// CreateSalaryBulk creates one pending record per employee for the period.
// Unknown employees and employees already paid for the period are skipped;
// the remaining records are inserted together or not at all.
func (s *Service) CreateSalaryBulk(ctx context.Context, req domain.SalaryBulkRequest) (domain.BatchReport, error) {
	if len(req.EmployeeIDs) == 0 {
		return domain.BatchReport{}, invalid("employee_ids must not be empty")
	}
	if err := validatePeriod(req.Month, req.Year); err != nil {
		return domain.BatchReport{}, err
	}
	if err := validateSalaryAmounts(req.Allowances, req.Deductions, req.Bonuses); err != nil {
		return domain.BatchReport{}, err
	}

	report := domain.BatchReport{Results: make([]domain.BatchResult, 0, len(req.EmployeeIDs))}
	records := make([]domain.SalaryRecord, 0, len(req.EmployeeIDs))
	seen := make(map[string]bool, len(req.EmployeeIDs))
	for _, raw := range req.EmployeeIDs {
		employeeID := strings.TrimSpace(raw)
		if seen[employeeID] {
			report.Add(employeeID, "", "duplicate employee in request")
			continue
		}
		seen[employeeID] = true

		employee, err := s.repo.GetEmployee(ctx, employeeID)
		if err != nil {
			if isNotFound(err) {
				report.Add(employeeID, "", "employee not found")
				continue
			}
			return domain.BatchReport{}, err
		}
		existing, err := s.repo.FindSalary(ctx, employee.ID, req.Month, req.Year)
		if err != nil && !isNotFound(err) {
			return domain.BatchReport{}, err
		}
		if existing != nil {
			report.Add(employeeID, "", "salary already exists for this period")
			continue
		}

		record := domain.SalaryRecord{
			ID:          xid.New("sal"),
			EmployeeID:  employee.ID,
			Month:       req.Month,
			Year:        req.Year,
			BasicSalary: employee.BasicSalary,
			Allowances:  req.Allowances,
			Deductions:  req.Deductions,
			Bonuses:     req.Bonuses,
			NetSalary:   netSalary(employee.BasicSalary, req.Allowances, req.Deductions, req.Bonuses),
			Status:      domain.SalaryPending,
			CreatedAt:   s.now(),
		}
		records = append(records, record)
		report.Add(employeeID, record.ID, "")
	}

	if err := s.repo.CreateSalaryBatch(ctx, records); err != nil {
		return domain.BatchReport{}, fmt.Errorf("bulk salary insert: %w", err)
	}
	if report.Created > 0 {
		s.logAudit(ctx, "salary_bulk_create", "salary", "*", fmt.Sprintf("period=%d-%02d,created=%d,skipped=%d", req.Year, req.Month, report.Created, report.Skipped))
	}
	return report, nil
}

func (s *Service) GetSalary(ctx context.Context, id string) (domain.SalaryRecord, error) {
	record, err := s.repo.GetSalary(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.SalaryRecord{}, notFound("salary record")
		}
		return domain.SalaryRecord{}, err
	}
	return *record, nil
}

func (s *Service) ListSalaries(ctx context.Context, filter store.SalaryFilter) ([]domain.SalaryRecord, error) {
	filter.EmployeeID = strings.TrimSpace(filter.EmployeeID)
	filter.Status = strings.TrimSpace(filter.Status)
	if filter.Status != "" && !isSalaryStatus(filter.Status) {
		return nil, invalid("status must be pending, paid or cancelled")
	}
	return s.repo.ListSalaries(ctx, filter)
}

// UpdateSalary changes the adjustable amounts of a pending record and
// recomputes its net salary.
func (s *Service) UpdateSalary(ctx context.Context, id string, req domain.SalaryUpdateRequest) (domain.SalaryRecord, error) {
	record, err := s.GetSalary(ctx, id)
	if err != nil {
		return domain.SalaryRecord{}, err
	}
	if record.Status != domain.SalaryPending {
		return domain.SalaryRecord{}, invalid("only pending salary records can be changed")
	}

	if req.Allowances != nil {
		record.Allowances = *req.Allowances
	}
	if req.Deductions != nil {
		record.Deductions = *req.Deductions
	}
	if req.Bonuses != nil {
		record.Bonuses = *req.Bonuses
	}
	if err := validateSalaryAmounts(record.Allowances, record.Deductions, record.Bonuses); err != nil {
		return domain.SalaryRecord{}, err
	}
	record.NetSalary = netSalary(record.BasicSalary, record.Allowances, record.Deductions, record.Bonuses)

	saved, err := s.repo.UpdateSalary(ctx, record)
	if err != nil {
		return domain.SalaryRecord{}, err
	}
	s.logAudit(ctx, "salary_update", "salary", saved.ID, "net="+saved.NetSalary.String())
	return *saved, nil
}

func (s *Service) UpdateSalaryStatus(ctx context.Context, id string, status string) (domain.SalaryRecord, error) {
	status = strings.TrimSpace(status)
	if !isSalaryStatus(status) {
		return domain.SalaryRecord{}, invalid("status must be pending, paid or cancelled")
	}
	record, err := s.GetSalary(ctx, id)
	if err != nil {
		return domain.SalaryRecord{}, err
	}
	s.applySalaryStatus(&record, status)

	saved, err := s.repo.UpdateSalary(ctx, record)
	if err != nil {
		return domain.SalaryRecord{}, err
	}
	s.logAudit(ctx, "salary_status", "salary", saved.ID, "status="+saved.Status)
	return *saved, nil
}

func (s *Service) DeleteSalary(ctx context.Context, id string) error {
	if err := s.repo.DeleteSalary(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound("salary record")
		}
		return err
	}
	s.logAudit(ctx, "salary_delete", "salary", id, "")
	return nil
}
