package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoicePaid    = "Paid"
	InvoicePending = "Pending"
	InvoiceOverdue = "Overdue"
)

// CustomerSnapshot is the customer as it looked when the invoice was written.
// It is never refreshed from the customer directory afterwards.
type CustomerSnapshot struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type InvoiceLineItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type InvoicePayment struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Method string          `json:"method"`
}

type Invoice struct {
	ID             string            `json:"id"`
	InvoiceNumber  string            `json:"invoice_number"`
	Date           time.Time         `json:"date"`
	CustomerID     string            `json:"customer_id"`
	Customer       CustomerSnapshot  `json:"customer"`
	DueDate        time.Time         `json:"due_date"`
	LineItems      []InvoiceLineItem `json:"line_items"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	Tax            decimal.Decimal   `json:"tax"`
	Discount       decimal.Decimal   `json:"discount"`
	Total          decimal.Decimal   `json:"total"`
	Paid           decimal.Decimal   `json:"paid"`
	Due            decimal.Decimal   `json:"due"`
	Status         string            `json:"status"`
	PaymentMethod  string            `json:"payment_method"`
	PaymentHistory []InvoicePayment  `json:"payment_history"`
	Notes          string            `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type InvoiceCreateRequest struct {
	CustomerID    string            `json:"customer_id"`
	LineItems     []InvoiceLineItem `json:"line_items"`
	PaymentMethod string            `json:"payment_method"`
	Date          string            `json:"date,omitempty"`
	DueDate       string            `json:"due_date,omitempty"`
	Tax           decimal.Decimal   `json:"tax"`
	Discount      decimal.Decimal   `json:"discount"`
	Paid          decimal.Decimal   `json:"paid"`
	Notes         string            `json:"notes,omitempty"`
}

type InvoiceUpdateRequest struct {
	CustomerID    *string            `json:"customer_id,omitempty"`
	LineItems     *[]InvoiceLineItem `json:"line_items,omitempty"`
	PaymentMethod *string            `json:"payment_method,omitempty"`
	Date          *string            `json:"date,omitempty"`
	DueDate       *string            `json:"due_date,omitempty"`
	Tax           *decimal.Decimal   `json:"tax,omitempty"`
	Discount      *decimal.Decimal   `json:"discount,omitempty"`
	Paid          *decimal.Decimal   `json:"paid,omitempty"`
	Notes         *string            `json:"notes,omitempty"`
}

type InvoicePaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
}

type InvoiceListResponse struct {
	Invoices    []Invoice `json:"invoices"`
	TotalPages  int       `json:"total_pages"`
	CurrentPage int       `json:"current_page"`
	TotalItems  int       `json:"total_items"`
}

type InvoiceRefreshResult struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
}
