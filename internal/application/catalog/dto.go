package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/t1tandr/uevent/internal/domain/catalog"
)

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FilterOption is one selectable value of an event filter
type FilterOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// FiltersResponse lists every event filter
type FiltersResponse struct {
	Formats []FilterOption `json:"formats"`
	Themes  []FilterOption `json:"themes"`
}

// ToCategoryResponse converts a domain category
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
