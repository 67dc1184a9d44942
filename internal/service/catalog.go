package service

import (
	"context"
	"errors"
	"strings"

	"backoffice/internal/domain"
	"backoffice/internal/store"
)

func (s *Service) CreateRawProduct(ctx context.Context, req domain.RawProductCreateRequest) (domain.RawProduct, error) {
	product := domain.RawProduct{
		Name:        strings.TrimSpace(req.Name),
		Unit:        strings.TrimSpace(req.Unit),
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.validateRawProduct(ctx, product); err != nil {
		return domain.RawProduct{}, err
	}

	created, err := s.repo.CreateRawProduct(ctx, product)
	if err != nil {
		return domain.RawProduct{}, err
	}
	s.logAudit(ctx, "raw_product_create", "raw_product", created.ID, "name="+created.Name)
	return *created, nil
}

func (s *Service) validateRawProduct(ctx context.Context, product domain.RawProduct) error {
	fields := fieldErrors{}
	if product.Name == "" {
		fields.add("name", "name is required")
	}
	if product.Unit == "" {
		fields.add("unit", "unit is required")
	}
	if err := fields.err(); err != nil {
		return err
	}

	existing, err := s.repo.FindRawProductByName(ctx, product.Name)
	if err != nil && !isNotFound(err) {
		return err
	}
	if existing != nil && existing.ID != product.ID {
		return conflict("raw product with this name already exists")
	}
	return nil
}

func (s *Service) GetRawProduct(ctx context.Context, id string) (domain.RawProduct, error) {
	product, err := s.repo.GetRawProduct(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.RawProduct{}, notFound("raw product")
		}
		return domain.RawProduct{}, err
	}
	return *product, nil
}

func (s *Service) ListRawProducts(ctx context.Context) ([]domain.RawProduct, error) {
	return s.repo.ListRawProducts(ctx)
}

func (s *Service) UpdateRawProduct(ctx context.Context, id string, req domain.RawProductUpdateRequest) (domain.RawProduct, error) {
	updated, err := s.GetRawProduct(ctx, id)
	if err != nil {
		return domain.RawProduct{}, err
	}
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Unit != nil {
		updated.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if err := s.validateRawProduct(ctx, updated); err != nil {
		return domain.RawProduct{}, err
	}

	saved, err := s.repo.UpdateRawProduct(ctx, updated)
	if err != nil {
		return domain.RawProduct{}, err
	}
	s.logAudit(ctx, "raw_product_update", "raw_product", saved.ID, "")
	return *saved, nil
}

func (s *Service) DeleteRawProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteRawProduct(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound("raw product")
		}
		return err
	}
	s.logAudit(ctx, "raw_product_delete", "raw_product", id, "")
	return nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.repo.ListDepartments(ctx)
}

func (s *Service) CreateDepartment(ctx context.Context, req domain.DepartmentCreateRequest) (domain.Department, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Department{}, invalid("department name is required")
	}
	existing, err := s.repo.FindDepartmentByName(ctx, name)
	if err != nil && !isNotFound(err) {
		return domain.Department{}, err
	}
	if existing != nil {
		return domain.Department{}, conflict("department already exists")
	}

	created, err := s.repo.CreateDepartment(ctx, domain.Department{Name: name, CreatedAt: s.now()})
	if err != nil {
		return domain.Department{}, err
	}
	s.logAudit(ctx, "department_create", "department", created.ID, "name="+created.Name)
	return *created, nil
}

func (s *Service) DeleteDepartment(ctx context.Context, id string) error {
	if err := s.repo.DeleteDepartment(ctx, id); err != nil {
		if isNotFound(err) {
			return notFound("department")
		}
		return err
	}
	s.logAudit(ctx, "department_delete", "department", id, "")
	return nil
}

// SeedDepartments creates any of names that do not exist yet and reports how
// many were added.
func (s *Service) SeedDepartments(ctx context.Context, names []string) (int, error) {
	added := 0
	for _, name := range names {
		_, err := s.CreateDepartment(ctx, domain.DepartmentCreateRequest{Name: name})
		switch {
		case err == nil:
			added++
		case errors.Is(err, store.ErrConflict):
		default:
			var verr *ValidationError
			if errors.As(err, &verr) {
				continue
			}
			return added, err
		}
	}
	return added, nil
}

func (s *Service) departmentExists(ctx context.Context, name string) (bool, error) {
	_, err := s.repo.FindDepartmentByName(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
