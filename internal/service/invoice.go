package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
	"backoffice/internal/store"
)

const (
	defaultInvoiceTerm  = 30 * 24 * time.Hour
	defaultInvoicePage  = 10
	maxInvoicePageLimit = 100
)

// invoiceStatus is a pure function of the amounts, the due date and now.
func invoiceStatus(due decimal.Decimal, dueDate time.Time, now time.Time) string {
	switch {
	case !due.IsPositive():
		return domain.InvoicePaid
	case dueDate.Before(now):
		return domain.InvoiceOverdue
	default:
		return domain.InvoicePending
	}
}

func isInvoicePaymentMethod(method string) bool {
	switch method {
	case domain.PaymentCash, domain.PaymentCreditCard, domain.PaymentBankTransfer:
		return true
	default:
		return false
	}
}

func snapshotCustomer(customer domain.Customer) domain.CustomerSnapshot {
	return domain.CustomerSnapshot{
		ID:      customer.ID,
		Name:    customer.Name,
		Email:   customer.Email,
		Phone:   customer.Phone,
		Address: customer.Address,
	}
}

func validateLineItems(items []domain.InvoiceLineItem) ([]domain.InvoiceLineItem, error) {
	if len(items) == 0 {
		return nil, invalid("at least one line item is required")
	}
	out := make([]domain.InvoiceLineItem, 0, len(items))
	for i, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return nil, invalid("line item %d: name is required", i+1)
		}
		if item.Quantity < 1 {
			return nil, invalid("line item %d: quantity must be at least 1", i+1)
		}
		if item.Price.IsNegative() {
			return nil, invalid("line item %d: price must not be negative", i+1)
		}
		out = append(out, item)
	}
	return out, nil
}

// recalculate derives subtotal, total, due and status from the invoice's
// line items and financial fields.
func (s *Service) recalculate(invoice *domain.Invoice) error {
	if invoice.Tax.IsNegative() || invoice.Discount.IsNegative() || invoice.Paid.IsNegative() {
		return invalid("tax, discount and paid must not be negative")
	}
	subtotal := decimal.Zero
	for _, item := range invoice.LineItems {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	invoice.Subtotal = subtotal
	gross := subtotal.Add(invoice.Tax)
	if invoice.Discount.GreaterThan(gross) {
		return &ValidationError{
			Message: "validation failed",
			Fields:  map[string]string{"discount": fmt.Sprintf("discount %s exceeds subtotal plus tax %s", invoice.Discount, gross)},
		}
	}
	invoice.Total = gross.Sub(invoice.Discount)
	if invoice.Paid.GreaterThan(invoice.Total) {
		return invalid("paid amount %s exceeds invoice total %s", invoice.Paid, invoice.Total)
	}
	invoice.Due = invoice.Total.Sub(invoice.Paid)
	invoice.Status = invoiceStatus(invoice.Due, invoice.DueDate, s.now())
	return nil
}

func (s *Service) CreateInvoice(ctx context.Context, req domain.InvoiceCreateRequest) (domain.Invoice, error) {
	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		return domain.Invoice{}, invalid("customer_id is required")
	}
	items, err := validateLineItems(req.LineItems)
	if err != nil {
		return domain.Invoice{}, err
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if !isInvoicePaymentMethod(method) {
		return domain.Invoice{}, invalid("payment method must be one of Cash, CreditCard, BankTransfer")
	}
	date, err := parseDate(req.Date, s.now())
	if err != nil {
		return domain.Invoice{}, invalid("%v", err)
	}
	dueDate, err := parseDate(req.DueDate, date.Add(defaultInvoiceTerm))
	if err != nil {
		return domain.Invoice{}, invalid("%v", err)
	}

	customer, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice := domain.Invoice{
		Date:           date,
		CustomerID:     customer.ID,
		Customer:       snapshotCustomer(customer),
		DueDate:        dueDate,
		LineItems:      items,
		Tax:            req.Tax,
		Discount:       req.Discount,
		Paid:           req.Paid,
		PaymentMethod:  method,
		PaymentHistory: []domain.InvoicePayment{},
		Notes:          strings.TrimSpace(req.Notes),
	}
	if err := s.recalculate(&invoice); err != nil {
		return domain.Invoice{}, err
	}

	number, err := s.nextNumber(ctx, store.SeqSalesInvoice)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.InvoiceNumber = fmt.Sprintf("INV-%06d", number)

	created, err := s.repo.CreateInvoice(ctx, invoice)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.Invoice{}, conflict("invoice number already taken, please try again")
		}
		return domain.Invoice{}, err
	}
	s.logAudit(ctx, "invoice_create", "invoice", created.ID, fmt.Sprintf("number=%s,total=%s", created.InvoiceNumber, created.Total))
	return *created, nil
}

// withCurrentStatus re-derives status at read time so invoices turn Overdue
// without a write.
func (s *Service) withCurrentStatus(invoice domain.Invoice) domain.Invoice {
	invoice.Status = invoiceStatus(invoice.Due, invoice.DueDate, s.now())
	return invoice
}

func (s *Service) GetInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.Invoice{}, notFound("invoice")
		}
		return domain.Invoice{}, err
	}
	return s.withCurrentStatus(*invoice), nil
}

func (s *Service) ListInvoices(ctx context.Context, page int, limit int, search string) (domain.InvoiceListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultInvoicePage
	}
	if limit > maxInvoicePageLimit {
		limit = maxInvoicePageLimit
	}

	invoices, total, err := s.repo.ListInvoices(ctx, store.InvoiceFilter{
		Search: strings.TrimSpace(search),
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return domain.InvoiceListResponse{}, err
	}
	for i := range invoices {
		invoices[i] = s.withCurrentStatus(invoices[i])
	}

	return domain.InvoiceListResponse{
		Invoices:    invoices,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
		TotalItems:  total,
	}, nil
}

func (s *Service) ListInvoicesByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	invoices, err := s.repo.ListInvoicesByCustomer(ctx, strings.TrimSpace(customerID))
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i] = s.withCurrentStatus(invoices[i])
	}
	return invoices, nil
}

func (s *Service) UpdateInvoice(ctx context.Context, id string, req domain.InvoiceUpdateRequest) (domain.Invoice, error) {
	updated, err := s.GetInvoice(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}

	if req.CustomerID != nil && strings.TrimSpace(*req.CustomerID) != updated.CustomerID {
		customer, err := s.GetCustomer(ctx, strings.TrimSpace(*req.CustomerID))
		if err != nil {
			return domain.Invoice{}, err
		}
		updated.CustomerID = customer.ID
		updated.Customer = snapshotCustomer(customer)
	}
	if req.LineItems != nil {
		items, err := validateLineItems(*req.LineItems)
		if err != nil {
			return domain.Invoice{}, err
		}
		updated.LineItems = items
	}
	if req.PaymentMethod != nil {
		method := strings.TrimSpace(*req.PaymentMethod)
		if !isInvoicePaymentMethod(method) {
			return domain.Invoice{}, invalid("payment method must be one of Cash, CreditCard, BankTransfer")
		}
		updated.PaymentMethod = method
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date, updated.Date)
		if err != nil {
			return domain.Invoice{}, invalid("%v", err)
		}
		updated.Date = date
	}
	if req.DueDate != nil {
		dueDate, err := parseDate(*req.DueDate, updated.DueDate)
		if err != nil {
			return domain.Invoice{}, invalid("%v", err)
		}
		updated.DueDate = dueDate
	}
	if req.Tax != nil {
		updated.Tax = *req.Tax
	}
	if req.Discount != nil {
		updated.Discount = *req.Discount
	}
	if req.Paid != nil {
		updated.Paid = *req.Paid
	}
	if req.Notes != nil {
		updated.Notes = strings.TrimSpace(*req.Notes)
	}
	if err := s.recalculate(&updated); err != nil {
		return domain.Invoice{}, err
	}

	saved, err := s.repo.UpdateInvoice(ctx, updated)
	if err != nil {
		return domain.Invoice{}, err
	}
	s.logAudit(ctx, "invoice_update", "invoice", saved.ID, fmt.Sprintf("total=%s,due=%s", saved.Total, saved.Due))
	return *saved, nil
}

func (s *Service) AddInvoicePayment(ctx context.Context, id string, req domain.InvoicePaymentRequest) (domain.Invoice, error) {
	if !req.Amount.IsPositive() {
		return domain.Invoice{}, invalid("payment amount must be greater than zero")
	}
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if req.Amount.GreaterThan(invoice.Due) {
		return domain.Invoice{}, invalid("payment amount %s exceeds amount due %s", req.Amount, invoice.Due)
	}
	method := defaultString(strings.TrimSpace(req.Method), invoice.PaymentMethod)
	if !isInvoicePaymentMethod(method) {
		return domain.Invoice{}, invalid("payment method must be one of Cash, CreditCard, BankTransfer")
	}

	invoice.PaymentHistory = append(invoice.PaymentHistory, domain.InvoicePayment{
		Amount: req.Amount,
		Date:   s.now(),
		Method: method,
	})
	invoice.Paid = invoice.Paid.Add(req.Amount)
	if err := s.recalculate(&invoice); err != nil {
		return domain.Invoice{}, err
	}

	saved, err := s.repo.UpdateInvoice(ctx, invoice)
	if err != nil {
		return domain.Invoice{}, err
	}
	s.logAudit(ctx, "invoice_payment", "invoice", saved.ID, fmt.Sprintf("amount=%s,due=%s,status=%s", req.Amount, saved.Due, saved.Status))
	return *saved, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound("invoice")
		}
		return err
	}
	s.logAudit(ctx, "invoice_delete", "invoice", id, "")
	return nil
}

// RefreshInvoiceStatuses persists the current status of every unpaid invoice
// whose stored status has drifted.
func (s *Service) RefreshInvoiceStatuses(ctx context.Context) (domain.InvoiceRefreshResult, error) {
	invoices, err := s.repo.ListInvoicesByStatus(ctx, []string{domain.InvoicePending, domain.InvoiceOverdue})
	if err != nil {
		return domain.InvoiceRefreshResult{}, err
	}

	result := domain.InvoiceRefreshResult{Checked: len(invoices)}
	for _, invoice := range invoices {
		current := invoiceStatus(invoice.Due, invoice.DueDate, s.now())
		if current == invoice.Status {
			continue
		}
		invoice.Status = current
		if _, err := s.repo.UpdateInvoice(ctx, invoice); err != nil {
			return result, fmt.Errorf("refresh invoice %s: %w", invoice.InvoiceNumber, err)
		}
		result.Updated++
	}
	if result.Updated > 0 {
		s.logAudit(ctx, "invoice_status_refresh", "invoice", "*", fmt.Sprintf("checked=%d,updated=%d", result.Checked, result.Updated))
	}
	return result, nil
}
