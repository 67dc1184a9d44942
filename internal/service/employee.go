package service

import (
	"context"
	"fmt"
	"strings"

	"backoffice/internal/domain"
	"backoffice/internal/store"
)

func validContact(contact string) bool {
	return isDigits(contact) && len(contact) >= 10 && len(contact) <= 15
}

// checkEmployeeIdentity adds field errors for a contact or email that is
// malformed or already used by another employee.
func (s *Service) checkEmployeeIdentity(ctx context.Context, fields fieldErrors, employee domain.Employee) error {
	if employee.Contact == "" {
		fields.add("contact", "contact is required")
	} else if !validContact(employee.Contact) {
		fields.add("contact", "contact must be 10 to 15 digits")
	} else {
		existing, err := s.repo.FindEmployeeByContact(ctx, employee.Contact)
		if err != nil && !isNotFound(err) {
			return err
		}
		if existing != nil && existing.ID != employee.ID {
			fields.add("contact", "contact is already used by another employee")
		}
	}

	if employee.Email == "" {
		return nil
	}
	if !validEmail(employee.Email) {
		fields.add("email", "email is not valid")
		return nil
	}
	existing, err := s.repo.FindEmployeeByEmail(ctx, employee.Email)
	if err != nil && !isNotFound(err) {
		return err
	}
	if existing != nil && existing.ID != employee.ID {
		fields.add("email", "email is already used by another employee")
	}
	return nil
}

func (s *Service) checkDepartment(ctx context.Context, fields fieldErrors, department string) error {
	if department == "" {
		fields.add("department", "department is required")
		return nil
	}
	ok, err := s.departmentExists(ctx, department)
	if err != nil {
		return err
	}
	if !ok {
		fields.add("department", "unknown department")
	}
	return nil
}

func (s *Service) CreateEmployee(ctx context.Context, req domain.EmployeeCreateRequest) (domain.Employee, error) {
	employee := domain.Employee{
		Name:       strings.TrimSpace(req.Name),
		Position:   strings.TrimSpace(req.Position),
		Department: strings.TrimSpace(req.Department),
		Contact:    strings.TrimSpace(req.Contact),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Avatar:     strings.TrimSpace(req.Avatar),
		Status:     domain.EmployeeActive,
	}

	fields := fieldErrors{}
	if employee.Name == "" {
		fields.add("name", "name is required")
	}
	if employee.Position == "" {
		fields.add("position", "position is required")
	}
	if req.BasicSalary == nil {
		fields.add("basic_salary", "basic salary is required")
	} else if req.BasicSalary.IsNegative() {
		fields.add("basic_salary", "basic salary must not be negative")
	} else {
		employee.BasicSalary = *req.BasicSalary
	}
	now := s.now()
	joinDate, err := parseDate(req.JoinDate, now)
	if err != nil {
		fields.add("join_date", err.Error())
	} else if joinDate.After(now) {
		fields.add("join_date", "join date cannot be in the future")
	}
	employee.JoinDate = joinDate

	if err := s.checkDepartment(ctx, fields, employee.Department); err != nil {
		return domain.Employee{}, err
	}
	if err := s.checkEmployeeIdentity(ctx, fields, employee); err != nil {
		return domain.Employee{}, err
	}
	if err := fields.err(); err != nil {
		return domain.Employee{}, err
	}

	number, err := s.nextNumber(ctx, store.SeqEmployeeNumber)
	if err != nil {
		return domain.Employee{}, err
	}
	employee.EmployeeNumber = number

	created, err := s.repo.CreateEmployee(ctx, employee)
	if err != nil {
		return domain.Employee{}, err
	}
	s.logAudit(ctx, "employee_create", "employee", created.ID, fmt.Sprintf("number=%d,name=%s", created.EmployeeNumber, created.Name))
	return *created, nil
}

func (s *Service) GetEmployee(ctx context.Context, id string) (domain.Employee, error) {
	employee, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.Employee{}, notFound("employee")
		}
		return domain.Employee{}, err
	}
	return *employee, nil
}

func (s *Service) ListEmployees(ctx context.Context, status string, department string) ([]domain.Employee, error) {
	status = strings.TrimSpace(status)
	if status != "" && status != domain.EmployeeActive && status != domain.EmployeeInactive {
		return nil, invalid("status must be active or inactive")
	}
	return s.repo.ListEmployees(ctx, store.EmployeeFilter{Status: status, Department: strings.TrimSpace(department)})
}

func (s *Service) UpdateEmployee(ctx context.Context, id string, req domain.EmployeeUpdateRequest) (domain.Employee, error) {
	updated, err := s.GetEmployee(ctx, id)
	if err != nil {
		return domain.Employee{}, err
	}

	fields := fieldErrors{}
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
		if updated.Name == "" {
			fields.add("name", "name is required")
		}
	}
	if req.Position != nil {
		updated.Position = strings.TrimSpace(*req.Position)
		if updated.Position == "" {
			fields.add("position", "position is required")
		}
	}
	if req.Department != nil {
		updated.Department = strings.TrimSpace(*req.Department)
		if err := s.checkDepartment(ctx, fields, updated.Department); err != nil {
			return domain.Employee{}, err
		}
	}
	if req.BasicSalary != nil {
		if req.BasicSalary.IsNegative() {
			fields.add("basic_salary", "basic salary must not be negative")
		}
		updated.BasicSalary = *req.BasicSalary
	}
	if req.JoinDate != nil {
		joinDate, err := parseDate(*req.JoinDate, updated.JoinDate)
		if err != nil {
			fields.add("join_date", err.Error())
		} else if joinDate.After(s.now()) {
			fields.add("join_date", "join date cannot be in the future")
		}
		updated.JoinDate = joinDate
	}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if status != domain.EmployeeActive && status != domain.EmployeeInactive {
			fields.add("status", "status must be active or inactive")
		}
		updated.Status = status
	}
	if req.Avatar != nil {
		updated.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if req.Contact != nil || req.Email != nil {
		if req.Contact != nil {
			updated.Contact = strings.TrimSpace(*req.Contact)
		}
		if req.Email != nil {
			updated.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		if err := s.checkEmployeeIdentity(ctx, fields, updated); err != nil {
			return domain.Employee{}, err
		}
	}
	if err := fields.err(); err != nil {
		return domain.Employee{}, err
	}

	saved, err := s.repo.UpdateEmployee(ctx, updated)
	if err != nil {
		return domain.Employee{}, err
	}
	s.logAudit(ctx, "employee_update", "employee", saved.ID, "")
	return *saved, nil
}

// DeleteEmployee marks the employee inactive. Salary, advance and attendance
// history stays attached.
func (s *Service) DeleteEmployee(ctx context.Context, id string) (domain.Employee, error) {
	employee, err := s.GetEmployee(ctx, id)
	if err != nil {
		return domain.Employee{}, err
	}
	employee.Status = domain.EmployeeInactive

	saved, err := s.repo.UpdateEmployee(ctx, employee)
	if err != nil {
		return domain.Employee{}, err
	}
	s.logAudit(ctx, "employee_deactivate", "employee", saved.ID, "")
	return *saved, nil
}
