package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/catalog"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/tests/testutil/mocks"
)

func TestCategoryService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.CategoryRepository)
	tech, err := catalog.NewCategory("Technology", "Tech events")
	require.NoError(t, err)
	repo.On("FindAll", ctx).Return([]catalog.Category{*tech}, nil)

	list, err := NewCategoryService(repo, zap.NewNop()).List(ctx)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Technology", list[0].Name)
	assert.Equal(t, "Tech events", list[0].Description)
}

func TestCategoryService_Get(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.CategoryRepository)
	id := uuid.New()
	repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	_, err := NewCategoryService(repo, zap.NewNop()).Get(ctx, id)

	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
}

func TestCategoryService_EnsureDefaults(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.CategoryRepository)
	repo.On("ExistsByName", ctx, "Technology").Return(true, nil)
	repo.On("ExistsByName", ctx, mock.Anything).Return(false, nil)
	repo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

	created, err := NewCategoryService(repo, zap.NewNop()).EnsureDefaults(ctx)

	require.NoError(t, err)
	assert.Equal(t, len(catalog.DefaultCategoryNames)-1, created)
}

func TestCategoryService_Filters(t *testing.T) {
	svc := NewCategoryService(new(mocks.CategoryRepository), zap.NewNop())

	filters := svc.Filters()

	require.NotEmpty(t, filters.Formats)
	assert.Equal(t, FilterOption{ID: "CONFERENCE", Label: "Conference"}, filters.Formats[0])
	assert.Contains(t, filters.Themes, FilterOption{ID: "TECHNOLOGY", Label: "Technology"})
	assert.Len(t, svc.Themes(), 9)
	assert.Len(t, svc.Formats(), 6)
}
