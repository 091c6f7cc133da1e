package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

func TestAttendeeService_List(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture(time.Now())
	organizer := uuid.New()
	e := newPublished(t, organizer, time.Now().Add(time.Hour))
	bob := newUser(t, "bob@example.com", "Bob")

	ticket, err := ticketing.NewTicket(e.ID, bob.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	payment, err := ticketing.NewCompletedPayment(ticket, decimal.NewFromInt(10), ticketing.DefaultCurrency, ticketing.ProviderStripe, "cs_test_1")
	require.NoError(t, err)

	f.events.On("FindByID", ctx, e.ID).Return(e, nil)
	f.tickets.On("FindByEvent", ctx, e.ID, mock.MatchedBy(func(filter ticketing.AttendeeFilter) bool {
		return filter.Search == "bob" && filter.Status != nil && *filter.Status == ticketing.TicketStatusActive
	})).Return([]*ticketing.Ticket{ticket}, nil)
	f.users.On("FindByIDs", ctx, []uuid.UUID{bob.ID}).Return([]*identity.User{bob}, nil)
	f.payments.On("FindByTicketIDs", ctx, []uuid.UUID{ticket.ID}).Return([]*ticketing.Payment{payment}, nil)

	out, err := f.attendees.List(ctx, e.ID, organizer, AttendeeQuery{Status: "ACTIVE", Search: " bob "})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "bob@example.com", out[0].User.Email)
	assert.Equal(t, "COMPLETED", out[0].PaymentStatus)
	require.NotNil(t, out[0].PaymentAmount)
	assert.True(t, out[0].PaymentAmount.Equal(decimal.NewFromInt(10)))

	_, err = f.attendees.List(ctx, e.ID, uuid.New(), AttendeeQuery{})
	assert.ErrorIs(t, err, event.ErrNotEventManager)
}

func TestAttendeeService_Statistics(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture(time.Now())
	organizer := uuid.New()
	e := newPublished(t, organizer, time.Now().Add(time.Hour))

	f.events.On("FindByID", ctx, e.ID).Return(e, nil)
	f.tickets.On("CountByStatus", ctx, e.ID).Return(map[ticketing.TicketStatus]int64{ticketing.TicketStatusActive: 3}, nil)
	f.tickets.On("SumActivePrices", ctx, e.ID).Return(decimal.RequireFromString("25.50"), nil)

	stats, err := f.attendees.Statistics(ctx, e.ID, organizer)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Statistics["ACTIVE"])
	assert.Equal(t, int64(0), stats.Statistics["CANCELLED"])
	assert.True(t, stats.TotalAmount.Equal(decimal.RequireFromString("25.5")))
}

func TestAttendeeService_Export(t *testing.T) {
	ctx := context.Background()
	organizer := uuid.New()

	t.Run("renders through the exporter", func(t *testing.T) {
		f := newEventFixture(time.Now())
		e := newPublished(t, organizer, time.Now().Add(time.Hour))
		f.events.On("FindByID", ctx, e.ID).Return(e, nil)
		f.tickets.On("FindByEvent", ctx, e.ID, ticketing.AttendeeFilter{}).Return([]*ticketing.Ticket{}, nil)
		f.exporter.On("Export", ctx, mock.MatchedBy(func(s AttendeeSheet) bool {
			return s.EventTitle == e.Title && len(s.Attendees) == 0
		})).Return([]byte("xlsx"), nil)

		out, err := f.attendees.Export(ctx, e.ID, organizer)
		require.NoError(t, err)
		assert.Equal(t, "attendees-"+e.ID.String()+".xlsx", out.Filename)
		assert.Equal(t, []byte("xlsx"), out.Data)
	})

	t.Run("exporter failure", func(t *testing.T) {
		f := newEventFixture(time.Now())
		e := newPublished(t, organizer, time.Now().Add(time.Hour))
		f.events.On("FindByID", ctx, e.ID).Return(e, nil)
		f.tickets.On("FindByEvent", ctx, e.ID, ticketing.AttendeeFilter{}).Return([]*ticketing.Ticket{}, nil)
		f.exporter.On("Export", ctx, mock.Anything).Return(nil, errors.New("disk full"))

		_, err := f.attendees.Export(ctx, e.ID, organizer)
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestAttendeeService_CancelTicket(t *testing.T) {
	ctx := context.Background()
	organizer := uuid.New()

	t.Run("cancels active ticket", func(t *testing.T) {
		f := newEventFixture(time.Now())
		e := newPublished(t, organizer, time.Now().Add(time.Hour))
		bob := newUser(t, "bob@example.com", "Bob")
		ticket, err := ticketing.NewTicket(e.ID, bob.ID, decimal.Zero)
		require.NoError(t, err)

		f.events.On("FindByID", ctx, e.ID).Return(e, nil)
		f.tickets.On("FindByID", ctx, ticket.ID).Return(ticket, nil)
		f.tickets.On("Update", ctx, ticket).Return(nil)
		f.users.On("FindByIDs", ctx, []uuid.UUID{bob.ID}).Return([]*identity.User{bob}, nil)

		resp, err := f.attendees.CancelTicket(ctx, e.ID, ticket.ID, organizer)
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)

		_, err = f.attendees.CancelTicket(ctx, e.ID, ticket.ID, organizer)
		assert.ErrorIs(t, err, ticketing.ErrTicketNotActive)
	})

	t.Run("ticket of another event", func(t *testing.T) {
		f := newEventFixture(time.Now())
		e := newPublished(t, organizer, time.Now().Add(time.Hour))
		ticket, err := ticketing.NewTicket(uuid.New(), uuid.New(), decimal.Zero)
		require.NoError(t, err)

		f.events.On("FindByID", ctx, e.ID).Return(e, nil)
		f.tickets.On("FindByID", ctx, ticket.ID).Return(ticket, nil)

		_, err = f.attendees.CancelTicket(ctx, e.ID, ticket.ID, organizer)
		assert.ErrorIs(t, err, ticketing.ErrTicketNotFound)
	})
}
