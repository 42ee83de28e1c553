package catalog

import (
	"fmt"
	"strings"

	"github.com/talinda-pos/talinda-pos/internal/shared"
)

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("%w: product code is required", shared.ErrValidation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", shared.ErrValidation)
	}
	if p.CategoryID <= 0 {
		return fmt.Errorf("%w: product category is required", shared.ErrValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: product price cannot be negative", shared.ErrValidation)
	}
	return nil
}

func validateCategory(c Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", shared.ErrValidation)
	}
	if c.TaxRate < 0 || c.TaxRate > 100 {
		return fmt.Errorf("%w: tax rate must be between 0 and 100", shared.ErrValidation)
	}
	return nil
}
