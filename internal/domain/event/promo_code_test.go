package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPromoCode(t *testing.T) {
	eventID := uuid.New()

	p, err := NewPromoCode(eventID, " SAVE20 ", decimal.RequireFromString("0.2"))
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", p.Code)
	assert.False(t, p.IsUsed)

	_, err = NewPromoCode(eventID, "X", decimal.RequireFromString("1.5"))
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	_, err = NewPromoCode(eventID, "X", decimal.RequireFromString("-0.1"))
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	_, err = NewPromoCode(eventID, "", decimal.Zero)
	assert.Error(t, err)
}

func TestPromoCode_Redeemable(t *testing.T) {
	eventID := uuid.New()
	p, err := NewPromoCode(eventID, "CODE", decimal.RequireFromString("0.5"))
	require.NoError(t, err)

	assert.NoError(t, p.Redeemable(eventID))
	assert.ErrorIs(t, p.Redeemable(uuid.New()), ErrPromoCodeInvalid)

	p.IsUsed = true
	assert.ErrorIs(t, p.Redeemable(eventID), ErrPromoCodeInvalid)
}

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		price, discount, want string
	}{
		{"100", "0.2", "80"},
		{"19.99", "0.15", "16.99"},
		{"10", "1", "0"},
		{"10", "0", "10"},
	}
	for _, tt := range tests {
		got := DiscountedPrice(decimal.RequireFromString(tt.price), decimal.RequireFromString(tt.discount))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s * (1-%s) = %s, got %s", tt.price, tt.discount, tt.want, got)
	}
}
