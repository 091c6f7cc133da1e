package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

func titles(events []*event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func TestGormEventRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormEventRepository(db)
	ctx := context.Background()

	maxAttendees := 50
	e := newTestEvent(t, uuid.New(), "GopherCon", withPrice("19.99"))
	e.MaxAttendees = &maxAttendees
	require.NoError(t, e.AddImages([]string{"https://cdn/1.png", "https://cdn/2.png"}))
	require.NoError(t, repo.Create(ctx, e))

	found, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "GopherCon", found.Title)
	assert.True(t, decimal.RequireFromString("19.99").Equal(found.Price))
	assert.Equal(t, []string{"https://cdn/1.png", "https://cdn/2.png"}, found.ImageURLs)
	require.NotNil(t, found.MaxAttendees)
	assert.Equal(t, 50, *found.MaxAttendees)
	assert.Equal(t, event.StatusDraft, found.Status)
	assert.Nil(t, found.ReminderSentAt)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	cancelled, err := repo.SetStatus(ctx, e.ID, event.StatusCancelled, event.StatusDraft, event.StatusPublished)
	require.NoError(t, err)
	assert.True(t, cancelled)
	again, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, event.StatusCancelled, again.Status)

	published, err := repo.SetStatus(ctx, e.ID, event.StatusPublished, event.StatusDraft)
	require.NoError(t, err)
	assert.False(t, published, "a cancelled event is never published")

	assert.ErrorIs(t, repo.Update(ctx, newTestEvent(t, uuid.New(), "Ghost")), shared.ErrNotFound)
}

func TestGormEventRepository_StaleUpdateKeepsStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormEventRepository(db)
	ctx := context.Background()

	e := newTestEvent(t, uuid.New(), "Launch party")
	require.NoError(t, repo.Create(ctx, e))
	stale, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)

	switched, err := repo.SetStatus(ctx, e.ID, event.StatusPublished, event.StatusDraft)
	require.NoError(t, err)
	require.True(t, switched)

	title := "Launch party v2"
	_, err = stale.ApplyUpdate(event.Update{Title: &title})
	require.NoError(t, err)
	require.Equal(t, event.StatusDraft, stale.Status)
	require.NoError(t, repo.Update(ctx, stale))

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, event.StatusPublished, got.Status)
	assert.Equal(t, "Launch party v2", got.Title)

	again, err := repo.SetStatus(ctx, e.ID, event.StatusPublished, event.StatusDraft)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestGormEventRepository_FindPublished(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormEventRepository(db)
	ctx := context.Background()
	org := uuid.New()
	music := uuid.New()

	fixtures := []*event.Event{
		newPublishedEvent(t, org, "Go Meetup", withDate(baseTime.Add(72*time.Hour)), withPrice("0"), withFormat(event.FormatMeetup)),
		newPublishedEvent(t, org, "Jazz Night", withDate(baseTime.Add(24*time.Hour)), withPrice("40"), withTheme(event.ThemeMusic), withCategory(music)),
		newPublishedEvent(t, org, "Old Conf", withDate(baseTime.Add(-24*time.Hour))),
		newTestEvent(t, org, "Draft Only", withDate(baseTime.Add(24*time.Hour))),
	}
	for _, e := range fixtures {
		require.NoError(t, repo.Create(ctx, e))
	}

	t.Run("upcoming published ordered by date", func(t *testing.T) {
		events, err := repo.FindPublished(ctx, event.ListFilter{Now: baseTime})
		require.NoError(t, err)
		assert.Equal(t, []string{"Jazz Night", "Go Meetup"}, titles(events))
	})

	t.Run("calendar day overrides upcoming", func(t *testing.T) {
		day := baseTime.Add(-24 * time.Hour)
		events, err := repo.FindPublished(ctx, event.ListFilter{Now: baseTime, Date: &day})
		require.NoError(t, err)
		assert.Equal(t, []string{"Old Conf"}, titles(events))
	})

	t.Run("search is case-insensitive across fields", func(t *testing.T) {
		events, err := repo.FindPublished(ctx, event.ListFilter{Now: baseTime, Search: "JAZZ"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Jazz Night"}, titles(events))

		events, err = repo.FindPublished(ctx, event.ListFilter{Now: baseTime, Search: "about go"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Go Meetup"}, titles(events))
	})

	t.Run("price range theme format and category", func(t *testing.T) {
		lo, hi := decimal.NewFromInt(1), decimal.NewFromInt(50)
		events, err := repo.FindPublished(ctx, event.ListFilter{Now: baseTime, PriceMin: &lo, PriceMax: &hi})
		require.NoError(t, err)
		assert.Equal(t, []string{"Jazz Night"}, titles(events))

		theme := event.ThemeMusic
		events, err = repo.FindPublished(ctx, event.ListFilter{Now: baseTime, Theme: &theme})
		require.NoError(t, err)
		assert.Equal(t, []string{"Jazz Night"}, titles(events))

		format := event.FormatMeetup
		events, err = repo.FindPublished(ctx, event.ListFilter{Now: baseTime, Format: &format})
		require.NoError(t, err)
		assert.Equal(t, []string{"Go Meetup"}, titles(events))

		events, err = repo.FindPublished(ctx, event.ListFilter{Now: baseTime, CategoryID: &music, Location: "kyi"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Jazz Night"}, titles(events))
	})
}

func TestGormEventRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormEventRepository(db)
	tickets := NewGormTicketRepository(db)
	ctx := context.Background()
	org := uuid.New()

	a := newPublishedEvent(t, org, "A", withDate(baseTime.Add(24*time.Hour)), withPrice("30"))
	b := newPublishedEvent(t, org, "B", withDate(baseTime.Add(48*time.Hour)), withPrice("10"))
	c := newPublishedEvent(t, org, "C", withDate(baseTime.Add(72*time.Hour)), withPrice("20"))
	for _, e := range []*event.Event{a, b, c} {
		require.NoError(t, repo.Create(ctx, e))
	}

	// C has two active tickets, B one, A none
	for _, evID := range []uuid.UUID{c.ID, c.ID, b.ID} {
		tk, err := ticketing.NewTicket(evID, uuid.New(), decimal.NewFromInt(1))
		require.NoError(t, err)
		require.NoError(t, tickets.Create(ctx, tk))
	}

	tests := []struct {
		name     string
		opts     event.SearchOptions
		expected []string
	}{
		{"default is date ascending", event.SearchOptions{}, []string{"A", "B", "C"}},
		{"price descending", event.SearchOptions{SortBy: event.SortByPrice, SortOrder: "desc"}, []string{"A", "C", "B"}},
		{"popularity descending", event.SearchOptions{SortBy: event.SortByPopularity, SortOrder: "desc"}, []string{"C", "B", "A"}},
		{"second page", event.SearchOptions{PageRequest: shared.PageRequest{Page: 2, Limit: 2}}, []string{"C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, total, err := repo.Search(ctx, event.ListFilter{Now: baseTime}, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, int64(3), total)
			assert.Equal(t, tt.expected, titles(events))
		})
	}

	t.Run("no matches", func(t *testing.T) {
		events, total, err := repo.Search(ctx, event.ListFilter{Now: baseTime, Search: "zzz"}, event.SearchOptions{})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, events)
	})
}

func TestGormEventRepository_FindSimilarCandidates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormEventRepository(db)
	ctx := context.Background()
	org := uuid.New()
	cat := uuid.New()

	base := newPublishedEvent(t, org, "Base", withCategory(cat), withTheme(event.ThemeArt), withFormat(event.FormatWorkshop))
	sameCat := newPublishedEvent(t, org, "Same category", withCategory(cat), withTheme(event.ThemeSports), withFormat(event.FormatFestival), withDate(baseTime.Add(96*time.Hour)))
	sameFormat := newPublishedEvent(t, org, "Same format", withTheme(event.ThemeSports), withFormat(event.FormatWorkshop), withDate(baseTime.Add(30*time.Hour)))
	unrelated := newPublishedEvent(t, org, "Unrelated", withTheme(event.ThemeSports), withFormat(event.FormatFestival))
	past := newPublishedEvent(t, org, "Past art", withTheme(event.ThemeArt), withDate(baseTime.Add(-time.Hour)))
	for _, e := range []*event.Event{base, sameCat, sameFormat, unrelated, past} {
		require.NoError(t, repo.Create(ctx, e))
	}

	events, err := repo.FindSimilarCandidates(ctx, base, baseTime, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Same format", "Same category"}, titles(events))
}

func TestGormEventRepository_OwnerListsAndReminders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormEventRepository(db)
	ctx := context.Background()
	org := uuid.New()
	companyID := uuid.New()

	soon := newPublishedEvent(t, org, "Soon", withCompany(companyID), withDate(baseTime.Add(2*time.Hour)))
	later := newPublishedEvent(t, org, "Later", withCompany(companyID), withDate(baseTime.Add(72*time.Hour)))
	draft := newTestEvent(t, org, "Draft", withDate(baseTime.Add(3*time.Hour)))
	reminded := newPublishedEvent(t, org, "Reminded", withDate(baseTime.Add(4*time.Hour)))
	reminded.MarkReminderSent(baseTime)
	for _, e := range []*event.Event{soon, later, draft, reminded} {
		require.NoError(t, repo.Create(ctx, e))
	}

	due, err := repo.FindDueForReminder(ctx, baseTime, baseTime.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"Soon"}, titles(due))

	byCompany, err := repo.FindByCompany(ctx, companyID, event.CompanyEventsFilter{Search: "lat"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Later"}, titles(byCompany))

	ops := newPublishedEvent(t, org, "Cloud night", withCompany(companyID), withDescription("Talks about Kubernetes operators"))
	require.NoError(t, repo.Create(ctx, ops))
	byDescription, err := repo.FindByCompany(ctx, companyID, event.CompanyEventsFilter{Search: "KUBERNETES"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cloud night"}, titles(byDescription))

	status := event.StatusDraft
	mine, err := repo.FindByOrganizer(ctx, org, &status)
	require.NoError(t, err)
	assert.Equal(t, []string{"Draft"}, titles(mine))

	all, err := repo.FindByOrganizer(ctx, org, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	byIDs, err := repo.FindByIDs(ctx, []uuid.UUID{soon.ID, later.ID})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)
}
