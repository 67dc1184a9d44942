package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	GateInPaid    = "Paid"
	GateInPartial = "Partial"
	GateInPending = "Pending"

	GateOutPaid    = "Paid"
	GateOutOverdue = "Overdue"
	GateOutPending = "Pending"

	PaymentCash         = "Cash"
	PaymentBankTransfer = "BankTransfer"
	PaymentCheque       = "Cheque"
	PaymentOther        = "Other"
	PaymentCreditCard   = "CreditCard"
)

type GateInItem struct {
	Name      string          `json:"name"`
	Units     string          `json:"units"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

type GateInPayment struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
}

// GateInRecord is an incoming raw-material invoice from a vendor.
type GateInRecord struct {
	ID            string          `json:"id"`
	InvoiceNumber int64           `json:"invoice_number"`
	VendorID      string          `json:"vendor_id"`
	Items         []GateInItem    `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	Date          time.Time       `json:"date"`
	Payments      []GateInPayment `json:"payments"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (r GateInRecord) PaidAmount() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range r.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

type GateInCreateRequest struct {
	VendorID string       `json:"vendor_id"`
	Items    []GateInItem `json:"items"`
	Date     string       `json:"date,omitempty"`
}

// GateInUpdateRequest is merged field by field. Totals and payment status are
// taken as given and not recomputed.
type GateInUpdateRequest struct {
	VendorID      *string          `json:"vendor_id,omitempty"`
	Items         *[]GateInItem    `json:"items,omitempty"`
	TotalAmount   *decimal.Decimal `json:"total_amount,omitempty"`
	PaymentStatus *string          `json:"payment_status,omitempty"`
	Date          *string          `json:"date,omitempty"`
}

type GateInPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date,omitempty"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
}

// GateOutRecord is an outgoing goods entry with a single implicit line.
type GateOutRecord struct {
	ID            string          `json:"id"`
	Invoice       int64           `json:"invoice"`
	ItemID        string          `json:"item_id"`
	Units         string          `json:"units"`
	Quantity      decimal.Decimal `json:"quantity"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Total         decimal.Decimal `json:"total"`
	PaymentStatus string          `json:"payment_status"`
	Date          time.Time       `json:"date"`
	Source        string          `json:"source"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type GateOutCreateRequest struct {
	ItemID        string          `json:"item_id"`
	Units         string          `json:"units"`
	Quantity      decimal.Decimal `json:"quantity"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	PaymentStatus string          `json:"payment_status,omitempty"`
	Date          string          `json:"date,omitempty"`
	Source        string          `json:"source"`
}

type GateOutUpdateRequest struct {
	ItemID        *string          `json:"item_id,omitempty"`
	Units         *string          `json:"units,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	PaymentStatus *string          `json:"payment_status,omitempty"`
	Date          *string          `json:"date,omitempty"`
	Source        *string          `json:"source,omitempty"`
}
