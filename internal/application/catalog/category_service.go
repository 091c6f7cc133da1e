package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/t1tandr/uevent/internal/domain/catalog"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// CategoryService serves categories and the static event filters
type CategoryService struct {
	categories catalog.CategoryRepository
	logger     *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories catalog.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

// List returns all categories ordered by name
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, nil
}

// Get returns one category
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, err
	}
	resp := ToCategoryResponse(c)
	return &resp, nil
}

// EnsureDefaults creates any missing default category; used by the seed command
func (s *CategoryService) EnsureDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, name := range catalog.DefaultCategoryNames {
		exists, err := s.categories.ExistsByName(ctx, name)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		c, err := catalog.NewCategory(name, "")
		if err != nil {
			return created, err
		}
		if err := s.categories.Save(ctx, c); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		s.logger.Info("default categories created", zap.Int("count", created))
	}
	return created, nil
}

// Filters returns the format and theme options
func (s *CategoryService) Filters() FiltersResponse {
	return FiltersResponse{Formats: s.Formats(), Themes: s.Themes()}
}

// Formats returns the event format options
func (s *CategoryService) Formats() []FilterOption {
	out := make([]FilterOption, len(event.AllFormats))
	for i, f := range event.AllFormats {
		out[i] = option(string(f))
	}
	return out
}

// Themes returns the event theme options
func (s *CategoryService) Themes() []FilterOption {
	out := make([]FilterOption, len(event.AllThemes))
	for i, t := range event.AllThemes {
		out[i] = option(string(t))
	}
	return out
}

// option labels an enum value, e.g. "CONFERENCE" -> "Conference"
func option(value string) FilterOption {
	label := strings.ReplaceAll(strings.ToLower(value), "_", " ")
	return FilterOption{ID: value, Label: cases.Title(language.English).String(label)}
}
