package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
	"backoffice/internal/store"
)

func isAdvanceStatus(status string) bool {
	switch status {
	case domain.AdvancePending, domain.AdvanceApproved, domain.AdvanceRejected:
		return true
	default:
		return false
	}
}

// settle refreshes the derived repaid amount and balance.
func settle(advance *domain.Advance) {
	repaid := decimal.Zero
	for _, r := range advance.Repayments {
		repaid = repaid.Add(r.Amount)
	}
	advance.RepaidAmount = repaid
	advance.Balance = advance.Amount.Sub(repaid)
}

func (s *Service) CreateAdvance(ctx context.Context, req domain.AdvanceCreateRequest) (domain.Advance, error) {
	fields := fieldErrors{}
	if !req.Amount.IsPositive() {
		fields.add("amount", "amount must be greater than zero")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		fields.add("reason", "reason is required")
	}
	date, err := parseDate(req.Date, s.now())
	if err != nil {
		fields.add("date", err.Error())
	}
	if err := fields.err(); err != nil {
		return domain.Advance{}, err
	}

	employee, err := s.GetEmployee(ctx, strings.TrimSpace(req.EmployeeID))
	if err != nil {
		return domain.Advance{}, err
	}

	advance := domain.Advance{
		EmployeeID: employee.ID,
		Amount:     req.Amount,
		Date:       date,
		Reason:     reason,
		Status:     domain.AdvancePending,
		Repayments: []domain.AdvanceRepayment{},
	}
	settle(&advance)

	created, err := s.repo.CreateAdvance(ctx, advance)
	if err != nil {
		return domain.Advance{}, err
	}
	s.logAudit(ctx, "advance_create", "advance", created.ID, fmt.Sprintf("employee=%s,amount=%s", created.EmployeeID, created.Amount))
	return *created, nil
}

func (s *Service) GetAdvance(ctx context.Context, id string) (domain.Advance, error) {
	advance, err := s.repo.GetAdvance(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.Advance{}, notFound("advance")
		}
		return domain.Advance{}, err
	}
	return *advance, nil
}

func (s *Service) ListAdvances(ctx context.Context, employeeID string, status string) ([]domain.Advance, error) {
	status = strings.TrimSpace(status)
	if status != "" && !isAdvanceStatus(status) {
		return nil, invalid("status must be pending, approved or rejected")
	}
	return s.repo.ListAdvances(ctx, store.AdvanceFilter{EmployeeID: strings.TrimSpace(employeeID), Status: status})
}

// AddAdvanceRepayment appends a repayment. The total repaid may never exceed
// the advance amount; a rejected repayment leaves the advance untouched.
func (s *Service) AddAdvanceRepayment(ctx context.Context, id string, req domain.AdvanceRepaymentRequest) (domain.Advance, error) {
	if !req.Amount.IsPositive() {
		return domain.Advance{}, invalid("repayment amount must be greater than zero")
	}
	date, err := parseDate(req.Date, s.now())
	if err != nil {
		return domain.Advance{}, invalid("%v", err)
	}

	advance, err := s.GetAdvance(ctx, id)
	if err != nil {
		return domain.Advance{}, err
	}
	settle(&advance)
	if advance.RepaidAmount.Add(req.Amount).GreaterThan(advance.Amount) {
		return domain.Advance{}, invalid("repayment %s exceeds outstanding balance %s", req.Amount, advance.Balance)
	}

	advance.Repayments = append(advance.Repayments, domain.AdvanceRepayment{Amount: req.Amount, Date: date})
	settle(&advance)

	saved, err := s.repo.UpdateAdvance(ctx, advance)
	if err != nil {
		return domain.Advance{}, err
	}
	s.logAudit(ctx, "advance_repayment", "advance", saved.ID, fmt.Sprintf("amount=%s,balance=%s", req.Amount, saved.Balance))
	return *saved, nil
}

func (s *Service) UpdateAdvanceStatus(ctx context.Context, id string, status string) (domain.Advance, error) {
	status = strings.TrimSpace(status)
	if !isAdvanceStatus(status) {
		return domain.Advance{}, invalid("status must be pending, approved or rejected")
	}
	advance, err := s.GetAdvance(ctx, id)
	if err != nil {
		return domain.Advance{}, err
	}
	advance.Status = status

	saved, err := s.repo.UpdateAdvance(ctx, advance)
	if err != nil {
		return domain.Advance{}, err
	}
	s.logAudit(ctx, "advance_status", "advance", saved.ID, "status="+saved.Status)
	return *saved, nil
}
