package persistence

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

func TestGormPromoCodeRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPromoCodeRepository(db)
	ctx := context.Background()
	eventID := uuid.New()

	promo, err := event.NewPromoCode(eventID, "SUMMER20", decimal.RequireFromString("0.2"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, promo))

	t.Run("code is globally unique", func(t *testing.T) {
		dup, err := event.NewPromoCode(uuid.New(), "SUMMER20", decimal.RequireFromString("0.5"))
		require.NoError(t, err)
		assert.Error(t, repo.Create(ctx, dup))

		exists, err := repo.ExistsByCode(ctx, " SUMMER20 ")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("find by code and event", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "SUMMER20")
		require.NoError(t, err)
		assert.Equal(t, promo.ID, found.ID)
		assert.True(t, decimal.RequireFromString("0.2").Equal(found.Discount))

		list, err := repo.FindByEvent(ctx, eventID)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		_, err = repo.FindByCode(ctx, "WINTER")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("mark used flips only once", func(t *testing.T) {
		changed, err := repo.MarkUsed(ctx, promo.ID)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = repo.MarkUsed(ctx, promo.ID)
		require.NoError(t, err)
		assert.False(t, changed)

		found, err := repo.FindByID(ctx, promo.ID)
		require.NoError(t, err)
		assert.True(t, found.IsUsed)
	})

	t.Run("update and delete", func(t *testing.T) {
		require.NoError(t, promo.SetDiscount(decimal.RequireFromString("0.35")))
		require.NoError(t, repo.Update(ctx, promo))

		found, err := repo.FindByID(ctx, promo.ID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("0.35").Equal(found.Discount))

		require.NoError(t, repo.Delete(ctx, promo.ID))
		assert.ErrorIs(t, repo.Delete(ctx, promo.ID), shared.ErrNotFound)
	})
}

func TestGormPromoCodeRepository_MarkUsedConcurrently(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPromoCodeRepository(db)
	ctx := context.Background()

	promo, err := event.NewPromoCode(uuid.New(), "ONCE", decimal.RequireFromString("1"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, promo))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := repo.MarkUsed(ctx, promo.ID)
			if err == nil && changed {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestGormCommentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCommentRepository(db)
	ctx := context.Background()
	eventID, userID := uuid.New(), uuid.New()

	root, err := event.NewComment(eventID, userID, "Great lineup", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, root))

	reply, err := event.NewComment(eventID, uuid.New(), "Agreed", root)
	require.NoError(t, err)
	reply.CreatedAt = root.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, reply))

	other, err := event.NewComment(eventID, userID, "See you there", nil)
	require.NoError(t, err)
	other.CreatedAt = root.CreatedAt.Add(2 * time.Second)
	require.NoError(t, repo.Create(ctx, other))

	all, err := repo.FindByEvent(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, root.ID, all[0].ID)
	require.NotNil(t, all[1].ParentID)
	assert.Equal(t, root.ID, *all[1].ParentID)

	require.NoError(t, root.Edit(userID, "Great lineup!"))
	require.NoError(t, repo.Update(ctx, root))
	edited, err := repo.FindByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "Great lineup!", edited.Content)

	require.NoError(t, repo.Delete(ctx, root.ID))
	_, err = repo.FindByID(ctx, reply.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound, "replies go with their parent")

	left, err := repo.FindByEvent(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, other.ID, left[0].ID)

	assert.ErrorIs(t, repo.Delete(ctx, root.ID), shared.ErrNotFound)
}
