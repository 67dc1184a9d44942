package service

import (
	"context"
	"fmt"
	"strings"

	"backoffice/internal/domain"
	"backoffice/internal/store"
)

func normalizeGateOutStatus(status string) (string, error) {
	switch strings.TrimSpace(status) {
	case "":
		return domain.GateOutPending, nil
	case domain.GateOutPaid, domain.GateOutOverdue, domain.GateOutPending:
		return strings.TrimSpace(status), nil
	default:
		return "", invalid("payment status must be one of Paid, Overdue, Pending")
	}
}

func validateGateOut(record domain.GateOutRecord) error {
	fields := fieldErrors{}
	if record.ItemID == "" {
		fields.add("item_id", "item_id is required")
	}
	if !record.Quantity.IsPositive() {
		fields.add("quantity", "quantity must be greater than zero")
	}
	if !record.SalePrice.IsPositive() {
		fields.add("sale_price", "sale price must be greater than zero")
	}
	return fields.err()
}

func (s *Service) CreateGateOut(ctx context.Context, req domain.GateOutCreateRequest) (domain.GateOutRecord, error) {
	status, err := normalizeGateOutStatus(req.PaymentStatus)
	if err != nil {
		return domain.GateOutRecord{}, err
	}
	date, err := parseDate(req.Date, s.now())
	if err != nil {
		return domain.GateOutRecord{}, invalid("%v", err)
	}
	record := domain.GateOutRecord{
		ItemID:        strings.TrimSpace(req.ItemID),
		Units:         strings.TrimSpace(req.Units),
		Quantity:      req.Quantity,
		SalePrice:     req.SalePrice,
		PaymentStatus: status,
		Date:          date,
		Source:        strings.TrimSpace(req.Source),
	}
	if err := validateGateOut(record); err != nil {
		return domain.GateOutRecord{}, err
	}
	record.Total = record.Quantity.Mul(record.SalePrice)

	number, err := s.nextNumber(ctx, store.SeqGateOutInvoice)
	if err != nil {
		return domain.GateOutRecord{}, err
	}
	record.Invoice = number

	created, err := s.repo.CreateGateOut(ctx, record)
	if err != nil {
		return domain.GateOutRecord{}, err
	}
	s.logAudit(ctx, "gate_out_create", "gate_out", created.ID, fmt.Sprintf("invoice=%d,total=%s", created.Invoice, created.Total))
	return *created, nil
}

func (s *Service) GetGateOut(ctx context.Context, id string) (domain.GateOutRecord, error) {
	record, err := s.repo.GetGateOut(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.GateOutRecord{}, notFound("gate-out record")
		}
		return domain.GateOutRecord{}, err
	}
	return *record, nil
}

func (s *Service) ListGateOuts(ctx context.Context) ([]domain.GateOutRecord, error) {
	return s.repo.ListGateOuts(ctx)
}

// UpdateGateOut merges the given fields and keeps total equal to quantity
// times sale price.
func (s *Service) UpdateGateOut(ctx context.Context, id string, req domain.GateOutUpdateRequest) (domain.GateOutRecord, error) {
	updated, err := s.GetGateOut(ctx, id)
	if err != nil {
		return domain.GateOutRecord{}, err
	}

	if req.ItemID != nil {
		updated.ItemID = strings.TrimSpace(*req.ItemID)
	}
	if req.Units != nil {
		updated.Units = strings.TrimSpace(*req.Units)
	}
	if req.Quantity != nil {
		updated.Quantity = *req.Quantity
	}
	if req.SalePrice != nil {
		updated.SalePrice = *req.SalePrice
	}
	if req.Source != nil {
		updated.Source = strings.TrimSpace(*req.Source)
	}
	if req.PaymentStatus != nil {
		status, err := normalizeGateOutStatus(*req.PaymentStatus)
		if err != nil {
			return domain.GateOutRecord{}, err
		}
		updated.PaymentStatus = status
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date, updated.Date)
		if err != nil {
			return domain.GateOutRecord{}, invalid("%v", err)
		}
		updated.Date = date
	}
	if err := validateGateOut(updated); err != nil {
		return domain.GateOutRecord{}, err
	}
	updated.Total = updated.Quantity.Mul(updated.SalePrice)

	saved, err := s.repo.UpdateGateOut(ctx, updated)
	if err != nil {
		return domain.GateOutRecord{}, err
	}
	s.logAudit(ctx, "gate_out_update", "gate_out", saved.ID, "")
	return *saved, nil
}

func (s *Service) DeleteGateOut(ctx context.Context, id string) error {
	if err := s.repo.DeleteGateOut(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound("gate-out record")
		}
		return err
	}
	s.logAudit(ctx, "gate_out_delete", "gate_out", id, "")
	return nil
}
