package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EmployeeActive   = "active"
	EmployeeInactive = "inactive"

	SalaryPending   = "pending"
	SalaryPaid      = "paid"
	SalaryCancelled = "cancelled"

	AdvancePending  = "pending"
	AdvanceApproved = "approved"
	AdvanceRejected = "rejected"

	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceHalfDay = "half-day"
	AttendanceLeave   = "leave"

	BatchCreated = "created"
	BatchSkipped = "skipped"
)

type Employee struct {
	ID             string          `json:"id"`
	EmployeeNumber int64           `json:"employee_number"`
	Name           string          `json:"name"`
	Position       string          `json:"position"`
	Department     string          `json:"department"`
	BasicSalary    decimal.Decimal `json:"basic_salary"`
	JoinDate       time.Time       `json:"join_date"`
	Contact        string          `json:"contact"`
	Email          string          `json:"email,omitempty"`
	Status         string          `json:"status"`
	Avatar         string          `json:"avatar,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type EmployeeCreateRequest struct {
	Name        string           `json:"name"`
	Position    string           `json:"position"`
	Department  string           `json:"department"`
	BasicSalary *decimal.Decimal `json:"basic_salary"`
	JoinDate    string           `json:"join_date,omitempty"`
	Contact     string           `json:"contact"`
	Email       string           `json:"email,omitempty"`
	Avatar      string           `json:"avatar,omitempty"`
}

type EmployeeUpdateRequest struct {
	Name        *string          `json:"name,omitempty"`
	Position    *string          `json:"position,omitempty"`
	Department  *string          `json:"department,omitempty"`
	BasicSalary *decimal.Decimal `json:"basic_salary,omitempty"`
	JoinDate    *string          `json:"join_date,omitempty"`
	Contact     *string          `json:"contact,omitempty"`
	Email       *string          `json:"email,omitempty"`
	Status      *string          `json:"status,omitempty"`
	Avatar      *string          `json:"avatar,omitempty"`
}

type SalaryRecord struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	BasicSalary decimal.Decimal `json:"basic_salary"`
	Allowances  decimal.Decimal `json:"allowances"`
	Deductions  decimal.Decimal `json:"deductions"`
	Bonuses     decimal.Decimal `json:"bonuses"`
	NetSalary   decimal.Decimal `json:"net_salary"`
	Status      string          `json:"status"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type SalaryCreateRequest struct {
	EmployeeID string           `json:"employee_id"`
	Month      int              `json:"month"`
	Year       int              `json:"year"`
	Allowances decimal.Decimal  `json:"allowances"`
	Deductions decimal.Decimal  `json:"deductions"`
	Bonuses    decimal.Decimal  `json:"bonuses"`
	NetSalary  *decimal.Decimal `json:"net_salary,omitempty"`
	Status     string           `json:"status,omitempty"`
}

type SalaryBulkRequest struct {
	EmployeeIDs []string        `json:"employee_ids"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Allowances  decimal.Decimal `json:"allowances"`
	Deductions  decimal.Decimal `json:"deductions"`
	Bonuses     decimal.Decimal `json:"bonuses"`
}

type SalaryUpdateRequest struct {
	Allowances *decimal.Decimal `json:"allowances,omitempty"`
	Deductions *decimal.Decimal `json:"deductions,omitempty"`
	Bonuses    *decimal.Decimal `json:"bonuses,omitempty"`
}

type AdvanceRepayment struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// Advance is a cash advance paid to an employee and repaid over time.
// RepaidAmount and Balance are derived from Repayments on every write.
type Advance struct {
	ID           string             `json:"id"`
	EmployeeID   string             `json:"employee_id"`
	Amount       decimal.Decimal    `json:"amount"`
	Date         time.Time          `json:"date"`
	Reason       string             `json:"reason"`
	Status       string             `json:"status"`
	Repayments   []AdvanceRepayment `json:"repayments"`
	RepaidAmount decimal.Decimal    `json:"repaid_amount"`
	Balance      decimal.Decimal    `json:"balance"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type AdvanceCreateRequest struct {
	EmployeeID string          `json:"employee_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date,omitempty"`
	Reason     string          `json:"reason"`
}

type AdvanceRepaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date,omitempty"`
}

type AttendanceRecord struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	Date       time.Time  `json:"date"`
	Status     string     `json:"status"`
	CheckIn    *time.Time `json:"check_in,omitempty"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type AttendanceCreateRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	CheckIn    string `json:"check_in,omitempty"`
	CheckOut   string `json:"check_out,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type AttendanceBulkRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
	Date        string   `json:"date"`
	Status      string   `json:"status"`
	CheckIn     string   `json:"check_in,omitempty"`
	CheckOut    string   `json:"check_out,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

type AttendanceUpdateRequest struct {
	Status   *string `json:"status,omitempty"`
	CheckIn  *string `json:"check_in,omitempty"`
	CheckOut *string `json:"check_out,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// BatchResult is the outcome for one employee of a bulk create.
type BatchResult struct {
	EmployeeID string `json:"employee_id"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	RecordID   string `json:"record_id,omitempty"`
}

type BatchReport struct {
	Created int           `json:"created"`
	Skipped int           `json:"skipped"`
	Results []BatchResult `json:"results"`
}

// Add records the outcome for one employee. A non-empty reason marks it skipped.
func (r *BatchReport) Add(employeeID string, recordID string, reason string) {
	if reason != "" {
		r.Skipped++
		r.Results = append(r.Results, BatchResult{EmployeeID: employeeID, Outcome: BatchSkipped, Reason: reason})
		return
	}
	r.Created++
	r.Results = append(r.Results, BatchResult{EmployeeID: employeeID, Outcome: BatchCreated, RecordID: recordID})
}
