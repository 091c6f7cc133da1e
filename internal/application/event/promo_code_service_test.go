package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

func TestPromoCodeService_Create(t *testing.T) {
	ctx := context.Background()
	organizer := uuid.New()

	t.Run("creates code", func(t *testing.T) {
		f := newEventFixture(time.Now())
		e := newDraft(t, organizer, time.Now().Add(time.Hour))
		f.events.On("FindByID", ctx, e.ID).Return(e, nil)
		f.promos.On("ExistsByCode", ctx, "EARLY").Return(false, nil)
		f.promos.On("Create", ctx, mock.AnythingOfType("*event.PromoCode")).Return(nil)

		resp, err := f.promoSvc.Create(ctx, e.ID, organizer, CreatePromoCodeRequest{Code: " EARLY ", Discount: decimal.RequireFromString("0.2")})
		require.NoError(t, err)
		assert.Equal(t, "EARLY", resp.Code)
		assert.Equal(t, e.ID, resp.EventID)
		assert.False(t, resp.IsUsed)
	})

	t.Run("duplicate code", func(t *testing.T) {
		f := newEventFixture(time.Now())
		e := newDraft(t, organizer, time.Now().Add(time.Hour))
		f.events.On("FindByID", ctx, e.ID).Return(e, nil)
		f.promos.On("ExistsByCode", ctx, "EARLY").Return(true, nil)

		_, err := f.promoSvc.Create(ctx, e.ID, organizer, CreatePromoCodeRequest{Code: "EARLY", Discount: decimal.Zero})
		assert.ErrorIs(t, err, event.ErrPromoCodeAlreadyExists)
	})

	t.Run("discount out of range", func(t *testing.T) {
		f := newEventFixture(time.Now())
		e := newDraft(t, organizer, time.Now().Add(time.Hour))
		f.events.On("FindByID", ctx, e.ID).Return(e, nil)

		_, err := f.promoSvc.Create(ctx, e.ID, organizer, CreatePromoCodeRequest{Code: "BIG", Discount: decimal.NewFromFloat(1.5)})
		assert.ErrorIs(t, err, event.ErrInvalidDiscount)
	})

	t.Run("only managers", func(t *testing.T) {
		f := newEventFixture(time.Now())
		e := newDraft(t, organizer, time.Now().Add(time.Hour))
		f.events.On("FindByID", ctx, e.ID).Return(e, nil)

		_, err := f.promoSvc.Create(ctx, e.ID, uuid.New(), CreatePromoCodeRequest{Code: "X", Discount: decimal.Zero})
		assert.ErrorIs(t, err, event.ErrNotEventManager)
	})
}

func TestPromoCodeService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	organizer := uuid.New()
	f := newEventFixture(time.Now())
	e := newDraft(t, organizer, time.Now().Add(time.Hour))
	promo, err := event.NewPromoCode(e.ID, "OLD", decimal.RequireFromString("0.1"))
	require.NoError(t, err)
	foreign, err := event.NewPromoCode(uuid.New(), "FOREIGN", decimal.Zero)
	require.NoError(t, err)

	f.events.On("FindByID", ctx, e.ID).Return(e, nil)
	f.promos.On("FindByID", ctx, promo.ID).Return(promo, nil)
	f.promos.On("FindByID", ctx, foreign.ID).Return(foreign, nil)
	f.promos.On("ExistsByCode", ctx, "NEW").Return(false, nil)
	f.promos.On("Update", ctx, promo).Return(nil)
	f.promos.On("Delete", ctx, promo.ID).Return(nil)

	code := "NEW"
	discount := decimal.RequireFromString("0.5")
	resp, err := f.promoSvc.Update(ctx, e.ID, promo.ID, organizer, UpdatePromoCodeRequest{Code: &code, Discount: &discount})
	require.NoError(t, err)
	assert.Equal(t, "NEW", resp.Code)
	assert.True(t, resp.Discount.Equal(discount))

	_, err = f.promoSvc.Update(ctx, e.ID, foreign.ID, organizer, UpdatePromoCodeRequest{})
	assert.ErrorIs(t, err, event.ErrPromoCodeNotFound)

	require.NoError(t, f.promoSvc.Delete(ctx, e.ID, promo.ID, organizer))
	f.promos.AssertCalled(t, "Delete", ctx, promo.ID)
}

func TestPromoCodeService_Validate(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture(time.Now())
	e := newPublished(t, uuid.New(), time.Now().Add(time.Hour))

	valid, err := event.NewPromoCode(e.ID, "QUARTER", decimal.RequireFromString("0.25"))
	require.NoError(t, err)
	used, err := event.NewPromoCode(e.ID, "USED", decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	used.IsUsed = true
	elsewhere, err := event.NewPromoCode(uuid.New(), "ELSEWHERE", decimal.RequireFromString("0.5"))
	require.NoError(t, err)

	f.events.On("FindByID", ctx, e.ID).Return(e, nil)
	f.promos.On("FindByCode", ctx, "QUARTER").Return(valid, nil)
	f.promos.On("FindByCode", ctx, "USED").Return(used, nil)
	f.promos.On("FindByCode", ctx, "ELSEWHERE").Return(elsewhere, nil)
	f.promos.On("FindByCode", ctx, "NOPE").Return(nil, shared.ErrNotFound)

	res, err := f.promoSvc.Validate(ctx, e.ID, ValidatePromoCodeRequest{Code: "QUARTER"})
	require.NoError(t, err)
	assert.True(t, res.OriginalPrice.Equal(decimal.NewFromInt(10)))
	assert.True(t, res.FinalPrice.Equal(decimal.RequireFromString("7.5")))

	for _, code := range []string{"USED", "ELSEWHERE", "NOPE"} {
		_, err := f.promoSvc.Validate(ctx, e.ID, ValidatePromoCodeRequest{Code: code})
		assert.ErrorIs(t, err, event.ErrPromoCodeInvalid, code)
	}
}
