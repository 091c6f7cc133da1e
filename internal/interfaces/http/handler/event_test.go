package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appevent "github.com/t1tandr/uevent/internal/application/event"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/interfaces/http/dto"
	"github.com/t1tandr/uevent/tests/testutil/mocks"
)

type eventHandlerFixture struct {
	events *mocks.EventRepository
	users  *mocks.UserRepository
	router *gin.Engine
}

func newEventHandlerFixture() *eventHandlerFixture {
	f := &eventHandlerFixture{
		events: new(mocks.EventRepository),
		users:  new(mocks.UserRepository),
	}
	service := appevent.NewEventService(appevent.Repositories{
		Events:     f.events,
		PromoCodes: new(mocks.PromoCodeRepository),
		Comments:   new(mocks.CommentRepository),
		Tickets:    new(mocks.TicketRepository),
		Payments:   new(mocks.PaymentRepository),
		Users:      f.users,
		Companies:  new(mocks.CompanyRepository),
		Members:    new(mocks.MemberRepository),
		Categories: new(mocks.CategoryRepository),
	}, nil, nil, new(mocks.ObjectStorage), &mocks.EventPublisher{}, zap.NewNop())
	h := NewEventHandler(service, DefaultMaxUploadSize)

	f.router = gin.New()
	f.router.GET("/api/events/search", h.Search)
	f.router.GET("/api/events/:id", h.Get)
	return f
}

func (f *eventHandlerFixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func draftEvent(t *testing.T) *event.Event {
	t.Helper()
	date := time.Now().Add(14 * 24 * time.Hour)
	e, err := event.NewEvent(uuid.New(), event.Details{
		Title:       "Go Meetup",
		Description: "Talks about Go",
		Location:    "Kyiv",
		Date:        date,
		Price:       decimal.NewFromInt(10),
		Format:      event.FormatMeetup,
		Theme:       event.ThemeTechnology,
		PublishDate: date.Add(-72 * time.Hour),
	}, nil)
	require.NoError(t, err)
	return e
}

func TestEventHandler_Search(t *testing.T) {
	t.Run("returns the page with meta", func(t *testing.T) {
		f := newEventHandlerFixture()
		f.events.On("Search", mock.Anything, mock.MatchedBy(func(filter event.ListFilter) bool {
			return filter.Format != nil && *filter.Format == event.FormatMeetup
		}), mock.MatchedBy(func(opts event.SearchOptions) bool {
			return opts.Page == 2 && opts.Limit == 2
		})).Return([]*event.Event{draftEvent(t), draftEvent(t)}, int64(12), nil)

		w := f.get("/api/events/search?format=MEETUP&page=2&limit=2")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Len(t, resp.Data, 2)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(12), resp.Meta.Total)
		assert.Equal(t, 6, resp.Meta.TotalPages)
		assert.True(t, resp.Meta.HasNextPage)
		assert.True(t, resp.Meta.HasPreviousPage)
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		f := newEventHandlerFixture()
		w := f.get("/api/events/search?format=RAVE")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
		f.events.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEventHandler_Get(t *testing.T) {
	t.Run("unknown event", func(t *testing.T) {
		f := newEventHandlerFixture()
		id := uuid.New()
		f.events.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		w := f.get("/api/events/" + id.String())

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "EVENT_NOT_FOUND", decodeResponse(t, w).Error.Code)
	})

	t.Run("drafts are hidden from anonymous viewers", func(t *testing.T) {
		f := newEventHandlerFixture()
		e := draftEvent(t)
		f.events.On("FindByID", mock.Anything, e.ID).Return(e, nil)

		w := f.get("/api/events/" + e.ID.String())

		assert.Equal(t, http.StatusNotFound, w.Code)
		f.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newEventHandlerFixture()
		w := f.get("/api/events/not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
