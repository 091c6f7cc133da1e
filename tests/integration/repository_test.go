//go:build integration

package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/notification"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
	"github.com/t1tandr/uevent/internal/infrastructure/persistence"
	"github.com/t1tandr/uevent/tests/testutil"
)

func createUser(t *testing.T, tdb *TestDB, name string) *identity.User {
	t.Helper()
	u := testutil.NewUser(t, name)
	require.NoError(t, persistence.NewGormUserRepository(tdb.DB).Create(context.Background(), u))
	return u
}

func createEvent(t *testing.T, tdb *TestDB, e *event.Event) *event.Event {
	t.Helper()
	require.NoError(t, persistence.NewGormEventRepository(tdb.DB).Create(context.Background(), e))
	return e
}

func TestUserRepository(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormUserRepository(tdb.DB)
	ctx := context.Background()

	u := createUser(t, tdb, "alice")

	found, err := repo.FindByEmail(ctx, "  "+strings.ToUpper(u.Email))
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.True(t, found.VerifyPassword(testutil.TestPassword))

	dup, err := identity.NewUser(strings.ToUpper(u.Email), "Alice Again", "another1")
	require.NoError(t, err)
	assert.Error(t, repo.Create(ctx, dup), "emails are unique regardless of case")

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, found.SetName("Alice Cooper"))
	require.NoError(t, repo.Update(ctx, found))
	reloaded, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", reloaded.Name)
}

func TestEventRepository_Search(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormEventRepository(tdb.DB)
	ctx := context.Background()
	organizer := createUser(t, tdb, "organizer")

	soon := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	free := createEvent(t, tdb, testutil.NewPublishedEvent(t, organizer.ID, testutil.WithDate(soon)))
	paid := createEvent(t, tdb, testutil.NewPublishedEvent(t, organizer.ID,
		testutil.WithDate(soon.Add(24*time.Hour)), testutil.WithPrice("40")))
	createEvent(t, tdb, testutil.NewDraftEvent(t, organizer.ID))

	past := testutil.NewPublishedEvent(t, organizer.ID, testutil.WithDate(time.Now().Add(-48*time.Hour)))
	createEvent(t, tdb, past)

	now := time.Now()

	t.Run("only upcoming published events", func(t *testing.T) {
		got, total, err := repo.Search(ctx, event.ListFilter{Now: now}, event.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, got, 2)
		assert.Equal(t, free.ID, got[0].ID, "date ascending by default")
		assert.Equal(t, paid.ID, got[1].ID)
	})

	t.Run("price range", func(t *testing.T) {
		min := decimal.NewFromInt(10)
		got, total, err := repo.Search(ctx, event.ListFilter{Now: now, PriceMin: &min}, event.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, paid.ID, got[0].ID)
	})

	t.Run("text search is case-insensitive", func(t *testing.T) {
		_, total, err := repo.Search(ctx, event.ListFilter{Now: now, Search: "GO MEETUP"}, event.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)

		_, total, err = repo.Search(ctx, event.ListFilter{Now: now, Search: "100%"}, event.SearchOptions{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("paging and price order", func(t *testing.T) {
		got, total, err := repo.Search(ctx, event.ListFilter{Now: now}, event.SearchOptions{
			PageRequest: shared.PageRequest{Page: 1, Limit: 1},
			SortBy:      event.SortByPrice,
			SortOrder:   "desc",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, got, 1)
		assert.Equal(t, paid.ID, got[0].ID)
	})

	t.Run("reminder window", func(t *testing.T) {
		due, err := repo.FindDueForReminder(ctx, now, now.Add(49*time.Hour))
		require.NoError(t, err)
		ids := make([]uuid.UUID, 0, len(due))
		for _, e := range due {
			ids = append(ids, e.ID)
		}
		assert.Contains(t, ids, free.ID)
		assert.NotContains(t, ids, paid.ID)
	})
}

func TestTicketRepository_Counts(t *testing.T) {
	tdb := NewTestDB(t)
	tickets := persistence.NewGormTicketRepository(tdb.DB)
	ctx := context.Background()

	organizer := createUser(t, tdb, "organizer")
	e := createEvent(t, tdb, testutil.NewPublishedEvent(t, organizer.ID, testutil.WithPrice("15.50")))

	var issued []*ticketing.Ticket
	for _, name := range []string{"bob", "carol", "dave"} {
		buyer := createUser(t, tdb, name)
		tk, err := ticketing.NewTicket(e.ID, buyer.ID, e.Price)
		require.NoError(t, err)
		require.NoError(t, tickets.Create(ctx, tk))
		issued = append(issued, tk)
	}

	require.NoError(t, issued[0].Cancel())
	require.NoError(t, tickets.Update(ctx, issued[0]))

	active, err := tickets.CountActiveByEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), active)

	byStatus, err := tickets.CountByStatus(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byStatus[ticketing.TicketStatusActive])
	assert.Equal(t, int64(1), byStatus[ticketing.TicketStatusCancelled])

	sum, err := tickets.SumActivePrices(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("31").Equal(sum), sum.String())

	_, err = tickets.FindActiveByEventAndUser(ctx, e.ID, issued[0].UserID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	mine, err := tickets.FindActiveByEventAndUser(ctx, e.ID, issued[1].UserID)
	require.NoError(t, err)
	assert.Equal(t, issued[1].ID, mine.ID)
}

func TestPromoCodeRepository_MarkUsed(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormPromoCodeRepository(tdb.DB)
	ctx := context.Background()

	organizer := createUser(t, tdb, "organizer")
	e := createEvent(t, tdb, testutil.NewPublishedEvent(t, organizer.ID, testutil.WithPrice("20")))

	p, err := event.NewPromoCode(e.ID, "EARLY20", decimal.RequireFromString("0.2"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p))

	exists, err := repo.ExistsByCode(ctx, "EARLY20")
	require.NoError(t, err)
	assert.True(t, exists)

	first, err := repo.MarkUsed(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.MarkUsed(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, second, "a promo code is redeemed once")
}

func TestSubscriberRepository(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()
	companies := persistence.NewGormCompanyRepository(tdb.DB)
	subscribers := persistence.NewGormSubscriberRepository(tdb.DB)

	owner := createUser(t, tdb, "owner")
	fan := createUser(t, tdb, "fan")
	c := testutil.NewCompany(t, owner.ID, "Gophers")
	require.NoError(t, companies.Create(ctx, c))

	require.NoError(t, subscribers.Create(ctx, company.NewSubscriber(c.ID, fan.ID)))
	assert.Error(t, subscribers.Create(ctx, company.NewSubscriber(c.ID, fan.ID)), "one subscription per pair")

	ok, err := subscribers.Exists(ctx, c.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	counts, err := subscribers.CountByCompanies(ctx, []uuid.UUID{c.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[c.ID])

	require.NoError(t, subscribers.Delete(ctx, c.ID, fan.ID))
	n, err := subscribers.CountByCompany(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNotificationRepository(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormNotificationRepository(tdb.DB)
	ctx := context.Background()
	u := createUser(t, tdb, "reader")

	var batch []*notification.Notification
	for _, title := range []string{"One", "Two", "Three"} {
		n, err := notification.New(u.ID, notification.TypeEventReminder, title, "Tomorrow")
		require.NoError(t, err)
		batch = append(batch, n)
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))

	unread, err := repo.CountUnread(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	batch[0].MarkRead()
	require.NoError(t, repo.Update(ctx, batch[0]))

	onlyUnread, err := repo.FindByUser(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Len(t, onlyUnread, 2)

	updated, err := repo.MarkAllRead(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	_, err = repo.FindByIDForUser(ctx, batch[1].ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound, "notifications are private to their user")
}
