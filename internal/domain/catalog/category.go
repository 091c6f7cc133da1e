package catalog

import (
	"strings"

	"github.com/t1tandr/uevent/internal/domain/shared"
)

// ErrCategoryNotFound is returned when a category id does not resolve
var ErrCategoryNotFound = shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")

// DefaultCategoryNames are seeded by the initial migration
var DefaultCategoryNames = []string{
	"Technology",
	"Health",
	"Finance",
	"Education",
	"Entertainment",
	"Sports",
	"Travel",
	"Food & Drink",
	"Lifestyle",
	"Fashion",
	"Art & Culture",
	"Science",
	"Business",
}

// Category groups events for browsing
type Category struct {
	shared.BaseEntity
	Name        string
	Description string
}

// NewCategory creates a new category
func NewCategory(name, description string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	return &Category{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}, nil
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
