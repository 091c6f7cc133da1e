package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

func TestGormTicketRepository(t *testing.T) {
	db := setupTestDB(t)
	users := NewGormUserRepository(db)
	repo := NewGormTicketRepository(db)
	ctx := context.Background()

	eventID := uuid.New()
	alice := newTestUser(t, "alice@example.com", "Alice")
	bob := newTestUser(t, "bob@example.com", "Bob")
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	aliceTicket, err := ticketing.NewTicket(eventID, alice.ID, decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, aliceTicket))

	bobTicket, err := ticketing.NewTicket(eventID, bob.ID, decimal.RequireFromString("7.25"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, bobTicket))

	t.Run("active ticket lookup", func(t *testing.T) {
		found, err := repo.FindActiveByEventAndUser(ctx, eventID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, aliceTicket.ID, found.ID)

		_, err = repo.FindActiveByEventAndUser(ctx, uuid.New(), alice.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("sum and count before cancellation", func(t *testing.T) {
		count, err := repo.CountActiveByEvent(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		sum, err := repo.SumActivePrices(ctx, eventID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("19.75").Equal(sum), sum.String())
	})

	t.Run("cancellation changes statistics", func(t *testing.T) {
		require.NoError(t, bobTicket.Cancel())
		require.NoError(t, repo.Update(ctx, bobTicket))

		stats, err := repo.CountByStatus(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats[ticketing.TicketStatusActive])
		assert.Equal(t, int64(1), stats[ticketing.TicketStatusCancelled])

		sum, err := repo.SumActivePrices(ctx, eventID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("12.5").Equal(sum))

		_, err = repo.FindActiveByEventAndUser(ctx, eventID, bob.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("attendee filters", func(t *testing.T) {
		all, err := repo.FindByEvent(ctx, eventID, ticketing.AttendeeFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		active := ticketing.TicketStatusActive
		onlyActive, err := repo.FindByEvent(ctx, eventID, ticketing.AttendeeFilter{Status: &active})
		require.NoError(t, err)
		require.Len(t, onlyActive, 1)
		assert.Equal(t, alice.ID, onlyActive[0].UserID)

		byName, err := repo.FindByEvent(ctx, eventID, ticketing.AttendeeFilter{Search: "BOB"})
		require.NoError(t, err)
		require.Len(t, byName, 1)
		assert.Equal(t, bob.ID, byName[0].UserID)
	})

	t.Run("empty event sums to zero", func(t *testing.T) {
		sum, err := repo.SumActivePrices(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})

	t.Run("user tickets", func(t *testing.T) {
		mine, err := repo.FindByUser(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.True(t, mine[0].IsActive())
	})
}

func TestGormPaymentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	ticket, err := ticketing.NewTicket(uuid.New(), uuid.New(), decimal.NewFromInt(25))
	require.NoError(t, err)

	payment, err := ticketing.NewCompletedPayment(ticket, ticket.Price, ticketing.DefaultCurrency, ticketing.ProviderStripe, "cs_test_123")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, payment))

	found, err := repo.FindBySessionID(ctx, "cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, found.TicketID)
	assert.Equal(t, ticketing.PaymentStatusCompleted, found.Status)

	_, err = repo.FindBySessionID(ctx, "cs_missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	dup, err := ticketing.NewCompletedPayment(ticket, ticket.Price, ticketing.DefaultCurrency, ticketing.ProviderStripe, "cs_test_123")
	require.NoError(t, err)
	assert.Error(t, repo.Create(ctx, dup), "session id is unique")

	byTicket, err := repo.FindByTicketIDs(ctx, []uuid.UUID{ticket.ID})
	require.NoError(t, err)
	assert.Len(t, byTicket, 1)

	byUser, err := repo.FindByUser(ctx, ticket.UserID)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
}
