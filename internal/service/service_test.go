package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
	"backoffice/internal/store"
	"backoffice/internal/store/memory"
)

func newTestService() *Service {
	svc := New(memory.New())
	fixed := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func mustCustomer(t *testing.T, svc *Service) domain.Customer {
	t.Helper()
	customer, err := svc.CreateCustomer(context.Background(), domain.CustomerCreateRequest{
		Name:    "Acme Retail",
		Email:   "billing@acme.test",
		Phone:   "5550001111",
		Address: "1 Market St",
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return customer
}

func mustVendor(t *testing.T, svc *Service) domain.Vendor {
	t.Helper()
	vendor, err := svc.CreateVendor(context.Background(), domain.VendorCreateRequest{
		Name:    "Steelworks",
		Email:   "sales@steel.test",
		Phone:   "5551234567",
		Address: "9 Foundry Rd",
	})
	if err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
	return vendor
}

func mustEmployee(t *testing.T, svc *Service, contact string) domain.Employee {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.CreateDepartment(ctx, domain.DepartmentCreateRequest{Name: "Production"}); err != nil && !errors.Is(err, store.ErrConflict) {
		t.Fatalf("create department failed: %v", err)
	}
	employee, err := svc.CreateEmployee(ctx, domain.EmployeeCreateRequest{
		Name:        "Rina",
		Position:    "Operator",
		Department:  "Production",
		BasicSalary: decPtr(3000),
		JoinDate:    "2023-01-10",
		Contact:     contact,
	})
	if err != nil {
		t.Fatalf("create employee failed: %v", err)
	}
	return employee
}

func TestCreateInvoiceDerivesAmounts(t *testing.T) {
	svc := newTestService()
	customer := mustCustomer(t, svc)

	invoice, err := svc.CreateInvoice(context.Background(), domain.InvoiceCreateRequest{
		CustomerID:    customer.ID,
		LineItems:     []domain.InvoiceLineItem{{Name: "Widget", Quantity: 2, Price: dec(50)}},
		PaymentMethod: domain.PaymentCash,
		Tax:           dec(10),
		Discount:      dec(5),
		Paid:          dec(50),
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}
	if !invoice.Subtotal.Equal(dec(100)) {
		t.Fatalf("expected subtotal 100, got %s", invoice.Subtotal)
	}
	if !invoice.Total.Equal(dec(105)) {
		t.Fatalf("expected total 105, got %s", invoice.Total)
	}
	if !invoice.Due.Equal(dec(55)) {
		t.Fatalf("expected due 55, got %s", invoice.Due)
	}
	if invoice.Status != domain.InvoicePending {
		t.Fatalf("expected Pending, got %s", invoice.Status)
	}
	if invoice.InvoiceNumber != "INV-000001" {
		t.Fatalf("expected INV-000001, got %s", invoice.InvoiceNumber)
	}
	if invoice.Customer.Name != customer.Name {
		t.Fatalf("expected customer snapshot %q, got %q", customer.Name, invoice.Customer.Name)
	}
}

func TestCreateInvoiceRejectsOverpaymentAndUnknownCustomer(t *testing.T) {
	svc := newTestService()
	customer := mustCustomer(t, svc)
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		CustomerID:    customer.ID,
		LineItems:     []domain.InvoiceLineItem{{Name: "Widget", Quantity: 1, Price: dec(10)}},
		PaymentMethod: domain.PaymentCash,
		Paid:          dec(11),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for overpayment, got %v", err)
	}

	_, err = svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		CustomerID:    "cus-missing",
		LineItems:     []domain.InvoiceLineItem{{Name: "Widget", Quantity: 1, Price: dec(10)}},
		PaymentMethod: domain.PaymentCash,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown customer, got %v", err)
	}
}

func TestInvoicePaymentsSettleAndCapAtDue(t *testing.T) {
	svc := newTestService()
	customer := mustCustomer(t, svc)
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		CustomerID:    customer.ID,
		LineItems:     []domain.InvoiceLineItem{{Name: "Widget", Quantity: 2, Price: dec(50)}},
		PaymentMethod: domain.PaymentBankTransfer,
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}

	if _, err := svc.AddInvoicePayment(ctx, invoice.ID, domain.InvoicePaymentRequest{Amount: dec(101)}); err == nil {
		t.Fatalf("expected payment above due to fail")
	}

	paid, err := svc.AddInvoicePayment(ctx, invoice.ID, domain.InvoicePaymentRequest{Amount: dec(100)})
	if err != nil {
		t.Fatalf("add payment failed: %v", err)
	}
	if paid.Status != domain.InvoicePaid || !paid.Due.IsZero() {
		t.Fatalf("expected Paid with zero due, got %s due=%s", paid.Status, paid.Due)
	}
	if len(paid.PaymentHistory) != 1 || paid.PaymentHistory[0].Method != domain.PaymentBankTransfer {
		t.Fatalf("expected one payment defaulting to invoice method, got %+v", paid.PaymentHistory)
	}
}

func TestInvoiceStatusIsRecomputedOnRead(t *testing.T) {
	svc := newTestService()
	customer := mustCustomer(t, svc)
	ctx := context.Background()

	invoice, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		CustomerID:    customer.ID,
		LineItems:     []domain.InvoiceLineItem{{Name: "Widget", Quantity: 1, Price: dec(40)}},
		PaymentMethod: domain.PaymentCash,
		DueDate:       "2024-03-20",
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}
	if invoice.Status != domain.InvoicePending {
		t.Fatalf("expected Pending, got %s", invoice.Status)
	}

	later := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return later }

	got, err := svc.GetInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("get invoice failed: %v", err)
	}
	if got.Status != domain.InvoiceOverdue {
		t.Fatalf("expected Overdue at read time, got %s", got.Status)
	}

	result, err := svc.RefreshInvoiceStatuses(ctx)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if result.Checked != 1 || result.Updated != 1 {
		t.Fatalf("expected 1 checked and 1 updated, got %+v", result)
	}
	again, err := svc.RefreshInvoiceStatuses(ctx)
	if err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}
	if again.Updated != 0 {
		t.Fatalf("expected no further updates, got %d", again.Updated)
	}
}

func TestUpdateInvoiceResnapshotsCustomerAndRejectsOverpayment(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	first := mustCustomer(t, svc)
	second, err := svc.CreateCustomer(ctx, domain.CustomerCreateRequest{
		Name: "Beta Shop", Email: "ops@beta.test", Phone: "5559998888", Address: "2 Side St",
	})
	if err != nil {
		t.Fatalf("create second customer failed: %v", err)
	}

	invoice, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
		CustomerID:    first.ID,
		LineItems:     []domain.InvoiceLineItem{{Name: "Widget", Quantity: 1, Price: dec(30)}},
		PaymentMethod: domain.PaymentCreditCard,
	})
	if err != nil {
		t.Fatalf("create invoice failed: %v", err)
	}

	updated, err := svc.UpdateInvoice(ctx, invoice.ID, domain.InvoiceUpdateRequest{CustomerID: &second.ID})
	if err != nil {
		t.Fatalf("update invoice failed: %v", err)
	}
	if updated.Customer.Name != "Beta Shop" {
		t.Fatalf("expected snapshot of new customer, got %q", updated.Customer.Name)
	}

	if _, err := svc.UpdateInvoice(ctx, invoice.ID, domain.InvoiceUpdateRequest{Paid: decPtr(31)}); err == nil {
		t.Fatalf("expected update with paid above total to fail")
	}
}

func TestListInvoicesPaginatesAndSearches(t *testing.T) {
	svc := newTestService()
	customer := mustCustomer(t, svc)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if _, err := svc.CreateInvoice(ctx, domain.InvoiceCreateRequest{
			CustomerID:    customer.ID,
			LineItems:     []domain.InvoiceLineItem{{Name: "Widget", Quantity: 1, Price: dec(1)}},
			PaymentMethod: domain.PaymentCash,
		}); err != nil {
			t.Fatalf("create invoice failed: %v", err)
		}
	}

	page, err := svc.ListInvoices(ctx, 2, 5, "")
	if err != nil {
		t.Fatalf("list invoices failed: %v", err)
	}
	if page.TotalItems != 12 || page.TotalPages != 3 || page.CurrentPage != 2 || len(page.Invoices) != 5 {
		t.Fatalf("unexpected page: items=%d pages=%d current=%d len=%d", page.TotalItems, page.TotalPages, page.CurrentPage, len(page.Invoices))
	}
	if page.Invoices[0].InvoiceNumber != "INV-000007" {
		t.Fatalf("expected newest-first ordering, got %s", page.Invoices[0].InvoiceNumber)
	}

	found, err := svc.ListInvoices(ctx, 1, 10, "000011")
	if err != nil {
		t.Fatalf("search invoices failed: %v", err)
	}
	if found.TotalItems != 1 || found.Invoices[0].InvoiceNumber != "INV-000011" {
		t.Fatalf("expected single match INV-000011, got %+v", found)
	}
}

func TestGateInPaymentStatusProgression(t *testing.T) {
	svc := newTestService()
	vendor := mustVendor(t, svc)
	ctx := context.Background()

	record, err := svc.CreateGateIn(ctx, domain.GateInCreateRequest{
		VendorID: vendor.ID,
		Items:    []domain.GateInItem{{Name: "Steel", Units: "kg", Quantity: dec(10), UnitPrice: dec(20)}},
	})
	if err != nil {
		t.Fatalf("create gate-in failed: %v", err)
	}
	if !record.TotalAmount.Equal(dec(200)) {
		t.Fatalf("expected total 200, got %s", record.TotalAmount)
	}
	if record.PaymentStatus != domain.GateInPending {
		t.Fatalf("expected Pending, got %s", record.PaymentStatus)
	}
	if record.InvoiceNumber != 1000 {
		t.Fatalf("expected first gate-in invoice 1000, got %d", record.InvoiceNumber)
	}

	partial, err := svc.AddGateInPayment(ctx, record.ID, domain.GateInPaymentRequest{Amount: dec(50), Method: domain.PaymentCash})
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	if partial.PaymentStatus != domain.GateInPartial {
		t.Fatalf("expected Partial, got %s", partial.PaymentStatus)
	}

	paid, err := svc.AddGateInPayment(ctx, record.ID, domain.GateInPaymentRequest{Amount: dec(150), Method: domain.PaymentCheque})
	if err != nil {
		t.Fatalf("second payment failed: %v", err)
	}
	if paid.PaymentStatus != domain.GateInPaid {
		t.Fatalf("expected Paid, got %s", paid.PaymentStatus)
	}

	ledger, err := svc.VendorLedger(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("vendor ledger failed: %v", err)
	}
	if !ledger.Outstanding.IsZero() || !ledger.TotalPaid.Equal(dec(200)) {
		t.Fatalf("expected settled ledger, got paid=%s outstanding=%s", ledger.TotalPaid, ledger.Outstanding)
	}
}

func TestGateInSinglePaymentMarksPaid(t *testing.T) {
	svc := newTestService()
	vendor := mustVendor(t, svc)
	ctx := context.Background()

	record, err := svc.CreateGateIn(ctx, domain.GateInCreateRequest{
		VendorID: vendor.ID,
		Items:    []domain.GateInItem{{Name: "Steel", Units: "kg", Quantity: dec(10), UnitPrice: dec(20)}},
	})
	if err != nil {
		t.Fatalf("create gate-in failed: %v", err)
	}
	paid, err := svc.AddGateInPayment(ctx, record.ID, domain.GateInPaymentRequest{Amount: dec(200), Method: domain.PaymentBankTransfer})
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if paid.PaymentStatus != domain.GateInPaid {
		t.Fatalf("expected Paid, got %s", paid.PaymentStatus)
	}

	if _, err := svc.AddGateInPayment(ctx, record.ID, domain.GateInPaymentRequest{Amount: dec(1), Method: "Bitcoin"}); err == nil {
		t.Fatalf("expected unsupported payment method to fail")
	}
}

func TestGateInRejectsBadItems(t *testing.T) {
	svc := newTestService()
	vendor := mustVendor(t, svc)

	_, err := svc.CreateGateIn(context.Background(), domain.GateInCreateRequest{
		VendorID: vendor.ID,
		Items:    []domain.GateInItem{{Name: "Steel", Quantity: dec(0), UnitPrice: dec(20)}},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGateOutNumbersAndTotals(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.CreateGateOut(ctx, domain.GateOutCreateRequest{
		ItemID: "raw-1", Units: "pcs", Quantity: dec(3), SalePrice: dec(7), Source: "warehouse",
	})
	if err != nil {
		t.Fatalf("create gate-out failed: %v", err)
	}
	if first.Invoice != 1 || !first.Total.Equal(dec(21)) || first.PaymentStatus != domain.GateOutPending {
		t.Fatalf("unexpected gate-out: invoice=%d total=%s status=%s", first.Invoice, first.Total, first.PaymentStatus)
	}

	second, err := svc.CreateGateOut(ctx, domain.GateOutCreateRequest{
		ItemID: "raw-1", Quantity: dec(1), SalePrice: dec(7), PaymentStatus: domain.GateOutPaid,
	})
	if err != nil {
		t.Fatalf("create second gate-out failed: %v", err)
	}
	if second.Invoice != 2 {
		t.Fatalf("expected invoice 2, got %d", second.Invoice)
	}

	updated, err := svc.UpdateGateOut(ctx, first.ID, domain.GateOutUpdateRequest{Quantity: decPtr(5)})
	if err != nil {
		t.Fatalf("update gate-out failed: %v", err)
	}
	if !updated.Total.Equal(dec(35)) {
		t.Fatalf("expected recomputed total 35, got %s", updated.Total)
	}
}

func TestVendorUniqueness(t *testing.T) {
	svc := newTestService()
	mustVendor(t, svc)

	_, err := svc.CreateVendor(context.Background(), domain.VendorCreateRequest{
		Name: "Copy", Email: "SALES@steel.test", Phone: "5550000000", Address: "x",
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	_, err = svc.CreateVendor(context.Background(), domain.VendorCreateRequest{
		Name: "Short", Email: "short@steel.test", Phone: "12345", Address: "x",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["phone"] == "" {
		t.Fatalf("expected phone field error, got %v", err)
	}
}

func TestCreateEmployeeReportsFieldErrors(t *testing.T) {
	svc := newTestService()
	mustEmployee(t, svc, "081234567890")

	_, err := svc.CreateEmployee(context.Background(), domain.EmployeeCreateRequest{
		Name:       "",
		Position:   "Operator",
		Department: "Nowhere",
		JoinDate:   "2030-01-01",
		Contact:    "081234567890",
		Email:      "not-an-email",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"name", "department", "basic_salary", "join_date", "contact", "email"} {
		if verr.Fields[field] == "" {
			t.Fatalf("expected error for field %s, got %+v", field, verr.Fields)
		}
	}
}

func TestEmployeeNumbersAndSoftDelete(t *testing.T) {
	svc := newTestService()
	first := mustEmployee(t, svc, "081234567890")
	second := mustEmployee(t, svc, "081234567891")
	if first.EmployeeNumber != 1 || second.EmployeeNumber != 2 {
		t.Fatalf("expected employee numbers 1 and 2, got %d and %d", first.EmployeeNumber, second.EmployeeNumber)
	}

	deleted, err := svc.DeleteEmployee(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("delete employee failed: %v", err)
	}
	if deleted.Status != domain.EmployeeInactive {
		t.Fatalf("expected inactive, got %s", deleted.Status)
	}
	active, err := svc.ListEmployees(context.Background(), domain.EmployeeActive, "")
	if err != nil {
		t.Fatalf("list employees failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Fatalf("expected only second employee active, got %+v", active)
	}
}

func TestCreateInvoiceRejectsDiscountAboveGross(t *testing.T) {
	svc := newTestService()
	customer := mustCustomer(t, svc)

	_, err := svc.CreateInvoice(context.Background(), domain.InvoiceCreateRequest{
		CustomerID:    customer.ID,
		LineItems:     []domain.InvoiceLineItem{{Name: "Widget", Quantity: 1, Price: dec(20)}},
		PaymentMethod: domain.PaymentCash,
		Tax:           dec(5),
		Discount:      dec(35),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for oversized discount, got %v", err)
	}
	if verr.Fields["discount"] == "" {
		t.Fatalf("expected discount field error, got %+v", verr.Fields)
	}

	invoice, err := svc.CreateInvoice(context.Background(), domain.InvoiceCreateRequest{
		CustomerID:    customer.ID,
		LineItems:     []domain.InvoiceLineItem{{Name: "Widget", Quantity: 1, Price: dec(20)}},
		PaymentMethod: domain.PaymentCash,
		Tax:           dec(5),
		Discount:      dec(25),
	})
	if err != nil {
		t.Fatalf("expected full discount to be accepted, got %v", err)
	}
	if !invoice.Total.IsZero() || invoice.Status != domain.InvoicePaid {
		t.Fatalf("expected zero total and Paid, got %s %s", invoice.Total, invoice.Status)
	}
}

func TestSalaryNetAndStatusLifecycle(t *testing.T) {
	svc := newTestService()
	employee := mustEmployee(t, svc, "081234567890")
	ctx := context.Background()

	_, err := svc.CreateSalary(ctx, domain.SalaryCreateRequest{
		EmployeeID: employee.ID, Month: 3, Year: 2024,
		Allowances: dec(200), Deductions: dec(100), Bonuses: dec(50),
		NetSalary: decPtr(9999),
	})
	if err == nil {
		t.Fatalf("expected mismatched net salary to fail")
	}

	record, err := svc.CreateSalary(ctx, domain.SalaryCreateRequest{
		EmployeeID: employee.ID, Month: 3, Year: 2024,
		Allowances: dec(200), Deductions: dec(100), Bonuses: dec(50),
	})
	if err != nil {
		t.Fatalf("create salary failed: %v", err)
	}
	if !record.NetSalary.Equal(dec(3150)) {
		t.Fatalf("expected net 3150, got %s", record.NetSalary)
	}

	if _, err := svc.CreateSalary(ctx, domain.SalaryCreateRequest{EmployeeID: employee.ID, Month: 3, Year: 2024}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for duplicate period, got %v", err)
	}

	paid, err := svc.UpdateSalaryStatus(ctx, record.ID, domain.SalaryPaid)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.PaymentDate == nil {
		t.Fatalf("expected payment date when paid")
	}
	firstPaidAt := *paid.PaymentDate
	svc.now = func() time.Time { return firstPaidAt.Add(48 * time.Hour) }
	repaid, err := svc.UpdateSalaryStatus(ctx, record.ID, domain.SalaryPaid)
	if err != nil {
		t.Fatalf("repeat mark paid failed: %v", err)
	}
	if repaid.PaymentDate == nil || !repaid.PaymentDate.Equal(firstPaidAt) {
		t.Fatalf("expected payment date %v kept, got %v", firstPaidAt, repaid.PaymentDate)
	}
	if _, err := svc.UpdateSalary(ctx, record.ID, domain.SalaryUpdateRequest{Bonuses: decPtr(1)}); err == nil {
		t.Fatalf("expected update of paid salary to fail")
	}

	reverted, err := svc.UpdateSalaryStatus(ctx, record.ID, domain.SalaryPending)
	if err != nil {
		t.Fatalf("revert status failed: %v", err)
	}
	if reverted.PaymentDate != nil {
		t.Fatalf("expected payment date cleared")
	}
}

func TestSalaryBulkSkipsExistingAndUnknown(t *testing.T) {
	svc := newTestService()
	first := mustEmployee(t, svc, "081234567890")
	second := mustEmployee(t, svc, "081234567891")
	ctx := context.Background()

	if _, err := svc.CreateSalary(ctx, domain.SalaryCreateRequest{EmployeeID: first.ID, Month: 4, Year: 2024}); err != nil {
		t.Fatalf("seed salary failed: %v", err)
	}

	report, err := svc.CreateSalaryBulk(ctx, domain.SalaryBulkRequest{
		EmployeeIDs: []string{first.ID, second.ID, "emp-missing"},
		Month:       4,
		Year:        2024,
		Bonuses:     dec(10),
	})
	if err != nil {
		t.Fatalf("bulk create failed: %v", err)
	}
	if report.Created != 1 || report.Skipped != 2 {
		t.Fatalf("expected 1 created and 2 skipped, got %+v", report)
	}
	if report.Results[1].Outcome != domain.BatchCreated || report.Results[1].EmployeeID != second.ID {
		t.Fatalf("expected second employee created, got %+v", report.Results[1])
	}

	list, err := svc.ListSalaries(ctx, store.SalaryFilter{Month: 4, Year: 2024})
	if err != nil {
		t.Fatalf("list salaries failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 salary records, got %d", len(list))
	}
}

func TestAdvanceRepaymentsNeverExceedAmount(t *testing.T) {
	svc := newTestService()
	employee := mustEmployee(t, svc, "081234567890")
	ctx := context.Background()

	advance, err := svc.CreateAdvance(ctx, domain.AdvanceCreateRequest{EmployeeID: employee.ID, Amount: dec(500), Reason: "medical"})
	if err != nil {
		t.Fatalf("create advance failed: %v", err)
	}
	if _, err := svc.AddAdvanceRepayment(ctx, advance.ID, domain.AdvanceRepaymentRequest{Amount: dec(300)}); err != nil {
		t.Fatalf("first repayment failed: %v", err)
	}

	if _, err := svc.AddAdvanceRepayment(ctx, advance.ID, domain.AdvanceRepaymentRequest{Amount: dec(201)}); err == nil {
		t.Fatalf("expected repayment beyond amount to fail")
	}
	unchanged, err := svc.GetAdvance(ctx, advance.ID)
	if err != nil {
		t.Fatalf("get advance failed: %v", err)
	}
	if len(unchanged.Repayments) != 1 || !unchanged.Balance.Equal(dec(200)) {
		t.Fatalf("expected advance untouched with balance 200, got %d repayments balance=%s", len(unchanged.Repayments), unchanged.Balance)
	}

	settled, err := svc.AddAdvanceRepayment(ctx, advance.ID, domain.AdvanceRepaymentRequest{Amount: dec(200)})
	if err != nil {
		t.Fatalf("final repayment failed: %v", err)
	}
	if !settled.Balance.IsZero() || !settled.RepaidAmount.Equal(dec(500)) {
		t.Fatalf("expected settled advance, got repaid=%s balance=%s", settled.RepaidAmount, settled.Balance)
	}
}

func TestAttendanceIsUniquePerDay(t *testing.T) {
	svc := newTestService()
	employee := mustEmployee(t, svc, "081234567890")
	ctx := context.Background()

	record, err := svc.CreateAttendance(ctx, domain.AttendanceCreateRequest{
		EmployeeID: employee.ID, Date: "2024-03-05", Status: domain.AttendancePresent, CheckIn: "08:30", CheckOut: "17:00",
	})
	if err != nil {
		t.Fatalf("create attendance failed: %v", err)
	}
	if record.CheckIn == nil || record.CheckIn.Hour() != 8 || record.CheckIn.Minute() != 30 {
		t.Fatalf("expected check-in 08:30, got %v", record.CheckIn)
	}

	_, err = svc.CreateAttendance(ctx, domain.AttendanceCreateRequest{
		EmployeeID: employee.ID, Date: "2024-03-05T14:00:00Z", Status: domain.AttendanceLate,
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for same day, got %v", err)
	}

	list, err := svc.ListAttendances(ctx, employee.ID, "2024-03-05", "2024-03-05")
	if err != nil {
		t.Fatalf("list attendance failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one record, got %d", len(list))
	}
}

func TestAttendanceKeepsCalendarDayOfOffsetDate(t *testing.T) {
	svc := newTestService()
	employee := mustEmployee(t, svc, "081234567890")
	ctx := context.Background()

	record, err := svc.CreateAttendance(ctx, domain.AttendanceCreateRequest{
		EmployeeID: employee.ID, Date: "2024-03-05T23:30:00-05:00", Status: domain.AttendancePresent, CheckIn: "08:00",
	})
	if err != nil {
		t.Fatalf("create attendance failed: %v", err)
	}
	if got := record.Date.Format("2006-01-02"); got != "2024-03-05" {
		t.Fatalf("expected day 2024-03-05, got %s", got)
	}

	list, err := svc.ListAttendances(ctx, employee.ID, "2024-03-06", "2024-03-06")
	if err != nil {
		t.Fatalf("list attendance failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected nothing on 2024-03-06, got %d", len(list))
	}
}

func TestAttendanceBulkSkipsRecordedEmployees(t *testing.T) {
	svc := newTestService()
	first := mustEmployee(t, svc, "081234567890")
	second := mustEmployee(t, svc, "081234567891")
	ctx := context.Background()

	if _, err := svc.CreateAttendance(ctx, domain.AttendanceCreateRequest{EmployeeID: first.ID, Date: "2024-03-06", Status: domain.AttendanceLeave}); err != nil {
		t.Fatalf("seed attendance failed: %v", err)
	}

	report, err := svc.CreateAttendanceBulk(ctx, domain.AttendanceBulkRequest{
		EmployeeIDs: []string{first.ID, second.ID},
		Date:        "2024-03-06",
		Status:      domain.AttendancePresent,
	})
	if err != nil {
		t.Fatalf("bulk attendance failed: %v", err)
	}
	if report.Created != 1 || report.Skipped != 1 {
		t.Fatalf("expected 1 created and 1 skipped, got %+v", report)
	}
}

func TestDailyTransferCascadesToYearly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	result, err := svc.TransferDailyToMonthly(ctx, domain.DailyTransferRequest{
		Date:    "2024-03-05",
		Entries: []domain.DailyExpenseInput{{Date: "2024-03-05", Amount: dec(100)}},
	})
	if err != nil {
		t.Fatalf("transfer daily failed: %v", err)
	}
	if len(result.Rollups) != 1 || !result.Rollups[0].Transferred {
		t.Fatalf("expected one transferred rollup, got %+v", result.Rollups)
	}

	yearly, err := svc.GetYearlyExpense(ctx, "2024")
	if err != nil {
		t.Fatalf("get yearly failed: %v", err)
	}
	if len(yearly.Expenses) != 1 || yearly.Expenses[0].Month != "2024-03" || !yearly.Expenses[0].Amount.Equal(dec(100)) {
		t.Fatalf("expected 2024-03 = 100, got %+v", yearly.Expenses)
	}
}

func TestDailyTransferOverwritesDayAndGroupsEntries(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.TransferDailyToMonthly(ctx, domain.DailyTransferRequest{
		Date: "2024-03-05",
		Entries: []domain.DailyExpenseInput{
			{Amount: dec(30)},
			{Amount: dec(20)},
			{Date: "2024-03-06", Amount: dec(5)},
		},
	}); err != nil {
		t.Fatalf("first transfer failed: %v", err)
	}
	if _, err := svc.TransferDailyToMonthly(ctx, domain.DailyTransferRequest{
		Date:    "2024-03-05",
		Entries: []domain.DailyExpenseInput{{Amount: dec(70)}},
	}); err != nil {
		t.Fatalf("second transfer failed: %v", err)
	}

	month, err := svc.GetMonthlyExpense(ctx, "2024-03")
	if err != nil {
		t.Fatalf("get monthly failed: %v", err)
	}
	if len(month.Entries) != 2 || !month.Total().Equal(dec(75)) {
		t.Fatalf("expected two days totalling 75, got %+v", month.Entries)
	}
}

func TestMonthlyRollupIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.TransferDailyToMonthly(ctx, domain.DailyTransferRequest{
		Date:    "2024-02-10",
		Entries: []domain.DailyExpenseInput{{Amount: dec(40)}},
	}); err != nil {
		t.Fatalf("transfer daily failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		// A zero period means the previous month relative to 2024-03-15.
		result, err := svc.TransferMonthlyToYearly(ctx, domain.MonthlyTransferRequest{})
		if err != nil {
			t.Fatalf("monthly transfer failed: %v", err)
		}
		if result.YearMonth != "2024-02" || !result.Amount.Equal(dec(40)) {
			t.Fatalf("unexpected rollup: %+v", result)
		}
	}

	yearly, err := svc.GetYearlyExpense(ctx, "2024")
	if err != nil {
		t.Fatalf("get yearly failed: %v", err)
	}
	if len(yearly.Expenses) != 1 || !yearly.Expenses[0].Amount.Equal(dec(40)) {
		t.Fatalf("expected single 2024-02 entry of 40, got %+v", yearly.Expenses)
	}

	empty, err := svc.TransferMonthlyToYearly(ctx, domain.MonthlyTransferRequest{Year: 2023, Month: 12})
	if err != nil {
		t.Fatalf("empty month transfer failed: %v", err)
	}
	if empty.Transferred {
		t.Fatalf("expected no-op for missing month")
	}
}

func TestExpenseAnalytics(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.TransferDailyToMonthly(ctx, domain.DailyTransferRequest{
		Entries: []domain.DailyExpenseInput{
			{Date: "2024-01-02", Amount: dec(10)},
			{Date: "2024-01-03", Amount: dec(15)},
			{Date: "2024-02-01", Amount: dec(5)},
		},
	}); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	analytics, err := svc.ExpenseAnalytics(ctx)
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}
	if len(analytics.Monthly) != 2 || len(analytics.Yearly) != 1 {
		t.Fatalf("unexpected analytics shape: %+v", analytics)
	}
	if !analytics.Yearly[0].TotalAmount.Equal(dec(30)) || analytics.Yearly[0].Count != 2 {
		t.Fatalf("expected yearly total 30 over 2 months, got %+v", analytics.Yearly[0])
	}
}

func TestSeedDepartmentsIsRepeatable(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	added, err := svc.SeedDepartments(ctx, []string{"Finance", "Sales", "finance"})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 departments added, got %d", added)
	}
	added, err = svc.SeedDepartments(ctx, []string{"Finance", "Sales"})
	if err != nil {
		t.Fatalf("reseed failed: %v", err)
	}
	if added != 0 {
		t.Fatalf("expected reseed to add nothing, got %d", added)
	}
}

func TestMutationsWriteAuditLog(t *testing.T) {
	svc := newTestService()
	ctx := WithActor(context.Background(), domain.Actor{Subject: "clerk"})

	if _, err := svc.CreateRawProduct(ctx, domain.RawProductCreateRequest{Name: "Copper", Unit: "kg"}); err != nil {
		t.Fatalf("create raw product failed: %v", err)
	}
	if _, err := svc.CreateRawProduct(ctx, domain.RawProductCreateRequest{Name: "copper", Unit: "kg"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected duplicate raw product conflict, got %v", err)
	}

	logs, err := svc.ListAuditLogs(ctx, "raw_product", 10)
	if err != nil {
		t.Fatalf("list audit logs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Actor != "clerk" || logs[0].Action != "raw_product_create" {
		t.Fatalf("unexpected audit logs: %+v", logs)
	}
}
