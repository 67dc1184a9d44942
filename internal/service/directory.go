package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"backoffice/internal/domain"
)

func normalizeContactStatus(status string) (string, error) {
	switch strings.TrimSpace(status) {
	case "":
		return domain.StatusActive, nil
	case domain.StatusActive, domain.StatusInactive:
		return strings.TrimSpace(status), nil
	default:
		return "", invalid("status must be %s or %s", domain.StatusActive, domain.StatusInactive)
	}
}

func validateVendor(vendor domain.Vendor) error {
	fields := fieldErrors{}
	if vendor.Name == "" {
		fields.add("name", "name is required")
	}
	if !validEmail(vendor.Email) {
		fields.add("email", "a valid email is required")
	}
	if !isDigits(vendor.Phone) || len(vendor.Phone) < 10 {
		fields.add("phone", "phone must be at least 10 digits")
	}
	if vendor.Address == "" {
		fields.add("address", "address is required")
	}
	return fields.err()
}

// checkVendorUnique rejects an email or phone already used by another vendor.
func (s *Service) checkVendorUnique(ctx context.Context, vendor domain.Vendor) error {
	existing, err := s.repo.FindVendorByEmail(ctx, vendor.Email)
	if err != nil && !isNotFound(err) {
		return err
	}
	if existing != nil && existing.ID != vendor.ID {
		return conflict("vendor with this email already exists")
	}

	existing, err = s.repo.FindVendorByPhone(ctx, vendor.Phone)
	if err != nil && !isNotFound(err) {
		return err
	}
	if existing != nil && existing.ID != vendor.ID {
		return conflict("vendor with this phone already exists")
	}
	return nil
}

func (s *Service) CreateVendor(ctx context.Context, req domain.VendorCreateRequest) (domain.Vendor, error) {
	status, err := normalizeContactStatus(req.Status)
	if err != nil {
		return domain.Vendor{}, err
	}
	vendor := domain.Vendor{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Status:  status,
		Company: strings.TrimSpace(req.Company),
	}
	if err := validateVendor(vendor); err != nil {
		return domain.Vendor{}, err
	}
	if err := s.checkVendorUnique(ctx, vendor); err != nil {
		return domain.Vendor{}, err
	}

	created, err := s.repo.CreateVendor(ctx, vendor)
	if err != nil {
		return domain.Vendor{}, err
	}
	s.logAudit(ctx, "vendor_create", "vendor", created.ID, fmt.Sprintf("name=%s", created.Name))
	return *created, nil
}

func (s *Service) GetVendor(ctx context.Context, id string) (domain.Vendor, error) {
	vendor, err := s.repo.GetVendor(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.Vendor{}, notFound("vendor")
		}
		return domain.Vendor{}, err
	}
	return *vendor, nil
}

func (s *Service) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	return s.repo.ListVendors(ctx)
}

func (s *Service) UpdateVendor(ctx context.Context, id string, req domain.VendorUpdateRequest) (domain.Vendor, error) {
	updated, err := s.GetVendor(ctx, id)
	if err != nil {
		return domain.Vendor{}, err
	}

	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updated.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		updated.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		updated.Address = strings.TrimSpace(*req.Address)
	}
	if req.Company != nil {
		updated.Company = strings.TrimSpace(*req.Company)
	}
	if req.Status != nil {
		status, err := normalizeContactStatus(*req.Status)
		if err != nil {
			return domain.Vendor{}, err
		}
		updated.Status = status
	}
	if err := validateVendor(updated); err != nil {
		return domain.Vendor{}, err
	}
	if err := s.checkVendorUnique(ctx, updated); err != nil {
		return domain.Vendor{}, err
	}

	saved, err := s.repo.UpdateVendor(ctx, updated)
	if err != nil {
		return domain.Vendor{}, err
	}
	s.logAudit(ctx, "vendor_update", "vendor", saved.ID, "")
	return *saved, nil
}

// DeleteVendor removes the vendor. Gate-in records that reference it are left in place.
func (s *Service) DeleteVendor(ctx context.Context, id string) error {
	if err := s.repo.DeleteVendor(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound("vendor")
		}
		return err
	}
	s.logAudit(ctx, "vendor_delete", "vendor", id, "")
	return nil
}

// VendorLedger summarizes everything received from a vendor and what is still owed.
func (s *Service) VendorLedger(ctx context.Context, vendorID string) (domain.VendorLedger, error) {
	vendor, err := s.GetVendor(ctx, vendorID)
	if err != nil {
		return domain.VendorLedger{}, err
	}
	records, err := s.repo.ListGateIns(ctx, vendorID)
	if err != nil {
		return domain.VendorLedger{}, err
	}

	totalAmount := decimal.Zero
	totalPaid := decimal.Zero
	for _, record := range records {
		totalAmount = totalAmount.Add(record.TotalAmount)
		totalPaid = totalPaid.Add(record.PaidAmount())
	}
	return domain.VendorLedger{
		Vendor:      vendor,
		Records:     records,
		TotalAmount: totalAmount,
		TotalPaid:   totalPaid,
		Outstanding: totalAmount.Sub(totalPaid),
	}, nil
}

func validateCustomer(customer domain.Customer) error {
	fields := fieldErrors{}
	if customer.Name == "" {
		fields.add("name", "name is required")
	}
	if !validEmail(customer.Email) {
		fields.add("email", "a valid email is required")
	}
	if customer.Phone == "" {
		fields.add("phone", "phone is required")
	}
	if customer.Address == "" {
		fields.add("address", "address is required")
	}
	return fields.err()
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	status, err := normalizeContactStatus(req.Status)
	if err != nil {
		return domain.Customer{}, err
	}
	customer := domain.Customer{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Status:  status,
	}
	if err := validateCustomer(customer); err != nil {
		return domain.Customer{}, err
	}

	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}
	s.logAudit(ctx, "customer_create", "customer", created.ID, fmt.Sprintf("name=%s", created.Name))
	return *created, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.Customer{}, notFound("customer")
		}
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	updated, err := s.GetCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updated.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		updated.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		updated.Address = strings.TrimSpace(*req.Address)
	}
	if req.Status != nil {
		status, err := normalizeContactStatus(*req.Status)
		if err != nil {
			return domain.Customer{}, err
		}
		updated.Status = status
	}
	if err := validateCustomer(updated); err != nil {
		return domain.Customer{}, err
	}

	saved, err := s.repo.UpdateCustomer(ctx, updated)
	if err != nil {
		return domain.Customer{}, err
	}
	s.logAudit(ctx, "customer_update", "customer", saved.ID, "")
	return *saved, nil
}

// DeleteCustomer removes the customer. Invoices keep their snapshot.
func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound("customer")
		}
		return err
	}
	s.logAudit(ctx, "customer_delete", "customer", id, "")
	return nil
}
