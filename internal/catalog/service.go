package catalog

import (
	"context"
	"fmt"

	"github.com/talinda-pos/talinda-pos/internal/shared"
)

// Service exposes catalog management operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetProduct returns a product with its tax rate.
func (s *Service) GetProduct(ctx context.Context, id int64) (*PricedProduct, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListProducts lists catalog products.
func (s *Service) ListProducts(ctx context.Context, activeOnly bool) ([]PricedProduct, error) {
	return s.repo.ListProducts(ctx, activeOnly)
}

// CreateProduct validates and stores a new product.
func (s *Service) CreateProduct(ctx context.Context, p Product) (*PricedProduct, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCategory(ctx, p.CategoryID); err != nil {
		return nil, fmt.Errorf("verify category: %w", err)
	}
	id, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return s.repo.GetProduct(ctx, id)
}

// UpdateProduct validates and stores product changes.
func (s *Service) UpdateProduct(ctx context.Context, p Product) (*PricedProduct, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.repo.GetProduct(ctx, p.ID)
}

// DeleteProduct removes a product unless sales still reference it.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	refs, err := s.repo.CountSaleReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("count sale references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: cannot delete: referenced by %d sale lines", shared.ErrValidation, refs)
	}
	return s.repo.DeleteProduct(ctx, id)
}

// AdjustStock applies a signed delta to a product's stock count. Products
// that do not track stock are left untouched.
func (s *Service) AdjustStock(ctx context.Context, productID int64, delta int) error {
	return s.repo.AdjustStock(ctx, productID, delta)
}

// GetCategory returns a category.
func (s *Service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// ListCategories lists all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateCategory validates and stores a category.
func (s *Service) CreateCategory(ctx context.Context, c Category) (*Category, error) {
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	id, err := s.repo.CreateCategory(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return s.repo.GetCategory(ctx, id)
}

// UpdateCategory validates and stores category changes.
func (s *Service) UpdateCategory(ctx context.Context, c Category) (*Category, error) {
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.repo.GetCategory(ctx, c.ID)
}
