package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
	"backoffice/internal/store"
)

func gateInPaymentStatus(total decimal.Decimal, paid decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total):
		return domain.GateInPaid
	case paid.IsPositive():
		return domain.GateInPartial
	default:
		return domain.GateInPending
	}
}

func isGateInPaymentMethod(method string) bool {
	switch method {
	case domain.PaymentCash, domain.PaymentBankTransfer, domain.PaymentCheque, domain.PaymentOther:
		return true
	default:
		return false
	}
}

// priceGateInItems validates each line and fills in its total.
func priceGateInItems(items []domain.GateInItem) ([]domain.GateInItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, invalid("at least one item is required")
	}
	priced := make([]domain.GateInItem, 0, len(items))
	total := decimal.Zero
	for i, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		item.Units = strings.TrimSpace(item.Units)
		if item.Name == "" {
			return nil, decimal.Zero, invalid("item %d: name is required", i+1)
		}
		if !item.Quantity.IsPositive() {
			return nil, decimal.Zero, invalid("item %d: quantity must be greater than zero", i+1)
		}
		if !item.UnitPrice.IsPositive() {
			return nil, decimal.Zero, invalid("item %d: unit price must be greater than zero", i+1)
		}
		item.Total = item.Quantity.Mul(item.UnitPrice)
		total = total.Add(item.Total)
		priced = append(priced, item)
	}
	return priced, total, nil
}

func (s *Service) CreateGateIn(ctx context.Context, req domain.GateInCreateRequest) (domain.GateInRecord, error) {
	vendorID := strings.TrimSpace(req.VendorID)
	if vendorID == "" {
		return domain.GateInRecord{}, invalid("vendor_id is required")
	}
	items, total, err := priceGateInItems(req.Items)
	if err != nil {
		return domain.GateInRecord{}, err
	}
	date, err := parseDate(req.Date, s.now())
	if err != nil {
		return domain.GateInRecord{}, invalid("%v", err)
	}
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return domain.GateInRecord{}, err
	}

	number, err := s.nextNumber(ctx, store.SeqGateInInvoice)
	if err != nil {
		return domain.GateInRecord{}, err
	}
	record := domain.GateInRecord{
		InvoiceNumber: number,
		VendorID:      vendorID,
		Items:         items,
		TotalAmount:   total,
		PaymentStatus: gateInPaymentStatus(total, decimal.Zero),
		Date:          date,
		Payments:      []domain.GateInPayment{},
	}

	created, err := s.repo.CreateGateIn(ctx, record)
	if err != nil {
		return domain.GateInRecord{}, err
	}
	s.logAudit(ctx, "gate_in_create", "gate_in", created.ID, fmt.Sprintf("invoice=%d,total=%s", created.InvoiceNumber, created.TotalAmount))
	return *created, nil
}

func (s *Service) GetGateIn(ctx context.Context, id string) (domain.GateInRecord, error) {
	record, err := s.repo.GetGateIn(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.GateInRecord{}, notFound("gate-in record")
		}
		return domain.GateInRecord{}, err
	}
	return *record, nil
}

func (s *Service) ListGateIns(ctx context.Context) ([]domain.GateInRecord, error) {
	return s.repo.ListGateIns(ctx, "")
}

// UpdateGateIn merges the given fields as-is. Totals and payment status are
// not recomputed; callers that change items must send a matching total.
func (s *Service) UpdateGateIn(ctx context.Context, id string, req domain.GateInUpdateRequest) (domain.GateInRecord, error) {
	updated, err := s.GetGateIn(ctx, id)
	if err != nil {
		return domain.GateInRecord{}, err
	}

	if req.VendorID != nil {
		vendorID := strings.TrimSpace(*req.VendorID)
		if _, err := s.GetVendor(ctx, vendorID); err != nil {
			return domain.GateInRecord{}, err
		}
		updated.VendorID = vendorID
	}
	if req.Items != nil {
		if len(*req.Items) == 0 {
			return domain.GateInRecord{}, invalid("at least one item is required")
		}
		updated.Items = *req.Items
	}
	if req.TotalAmount != nil {
		if req.TotalAmount.IsNegative() {
			return domain.GateInRecord{}, invalid("total_amount must not be negative")
		}
		updated.TotalAmount = *req.TotalAmount
	}
	if req.PaymentStatus != nil {
		switch *req.PaymentStatus {
		case domain.GateInPaid, domain.GateInPartial, domain.GateInPending:
			updated.PaymentStatus = *req.PaymentStatus
		default:
			return domain.GateInRecord{}, invalid("unknown payment status %q", *req.PaymentStatus)
		}
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date, updated.Date)
		if err != nil {
			return domain.GateInRecord{}, invalid("%v", err)
		}
		updated.Date = date
	}

	saved, err := s.repo.UpdateGateIn(ctx, updated)
	if err != nil {
		return domain.GateInRecord{}, err
	}
	s.logAudit(ctx, "gate_in_update", "gate_in", saved.ID, "")
	return *saved, nil
}

func (s *Service) AddGateInPayment(ctx context.Context, id string, req domain.GateInPaymentRequest) (domain.GateInRecord, error) {
	if !req.Amount.IsPositive() {
		return domain.GateInRecord{}, invalid("payment amount must be greater than zero")
	}
	method := strings.TrimSpace(req.Method)
	if !isGateInPaymentMethod(method) {
		return domain.GateInRecord{}, invalid("payment method must be one of Cash, BankTransfer, Cheque, Other")
	}
	date, err := parseDate(req.Date, s.now())
	if err != nil {
		return domain.GateInRecord{}, invalid("%v", err)
	}

	record, err := s.GetGateIn(ctx, id)
	if err != nil {
		return domain.GateInRecord{}, err
	}
	record.Payments = append(record.Payments, domain.GateInPayment{
		Amount:    req.Amount,
		Date:      date,
		Method:    method,
		Reference: strings.TrimSpace(req.Reference),
	})
	record.PaymentStatus = gateInPaymentStatus(record.TotalAmount, record.PaidAmount())

	saved, err := s.repo.UpdateGateIn(ctx, record)
	if err != nil {
		return domain.GateInRecord{}, err
	}
	s.logAudit(ctx, "gate_in_payment", "gate_in", saved.ID, fmt.Sprintf("amount=%s,method=%s,status=%s", req.Amount, method, saved.PaymentStatus))
	return *saved, nil
}

func (s *Service) DeleteGateIn(ctx context.Context, id string) error {
	if err := s.repo.DeleteGateIn(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound("gate-in record")
		}
		return err
	}
	s.logAudit(ctx, "gate_in_delete", "gate_in", id, "")
	return nil
}
