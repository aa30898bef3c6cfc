package branch

import (
	"context"

	"tokopos/internal/core/id"
	"tokopos/pkg/logger"
)

// Service provides business logic for the Branch catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Branch service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new branch.
func (s *Service) Create(ctx context.Context, b *Branch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return err
	}
	logger.Info(ctx, "branch created", "id", b.ID, "name", b.Name)
	return nil
}

// GetByID retrieves a branch.
func (s *Service) GetByID(ctx context.Context, branchID id.ID) (*Branch, error) {
	return s.repo.GetByID(ctx, branchID)
}

// Update validates and persists branch changes.
func (s *Service) Update(ctx context.Context, b *Branch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, b)
}

// ListByTenant returns all branches of a tenant.
func (s *Service) ListByTenant(ctx context.Context, tenantID id.ID) ([]*Branch, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}
