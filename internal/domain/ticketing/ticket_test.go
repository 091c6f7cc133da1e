package ticketing

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t1tandr/uevent/internal/domain/shared"
)

func TestNewTicket(t *testing.T) {
	ticket, err := NewTicket(uuid.New(), uuid.New(), decimal.RequireFromString("12.345"))
	require.NoError(t, err)

	assert.Equal(t, TicketStatusActive, ticket.Status)
	assert.True(t, ticket.Price.Equal(decimal.RequireFromString("12.35")))

	_, err = NewTicket(uuid.New(), uuid.New(), decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestTicket_QRPayload(t *testing.T) {
	eventID, userID := uuid.New(), uuid.New()
	ticket, err := NewTicket(eventID, userID, decimal.NewFromInt(10))
	require.NoError(t, err)

	var content QRContent
	require.NoError(t, json.Unmarshal([]byte(ticket.QRData()), &content))
	assert.Equal(t, eventID.String(), content.EventID)
	assert.Equal(t, userID.String(), content.UserID)
	assert.Equal(t, ticket.ID.String(), content.TicketID)
	assert.Equal(t, ticket.CreatedAt.UnixMilli(), content.Timestamp)

	ticket.QRPayload = ""
	assert.Contains(t, ticket.QRData(), ticket.ID.String())
}

func TestTicket_Cancel(t *testing.T) {
	ticket, err := NewTicket(uuid.New(), uuid.New(), decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, ticket.Cancel())
	assert.False(t, ticket.IsActive())
	assert.ErrorIs(t, ticket.Cancel(), ErrTicketNotActive)
}

func TestNewCompletedPayment(t *testing.T) {
	ticket, err := NewTicket(uuid.New(), uuid.New(), decimal.NewFromInt(20))
	require.NoError(t, err)

	p, err := NewCompletedPayment(ticket, decimal.NewFromInt(20), "USD", ProviderStripe, "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusCompleted, p.Status)
	assert.Equal(t, "usd", p.Currency)
	assert.Equal(t, ticket.ID, p.TicketID)
	assert.Equal(t, ticket.UserID, p.UserID)
	assert.Equal(t, ticket.EventID, p.EventID)

	_, err = NewCompletedPayment(ticket, decimal.Zero, "", "paypal", "x")
	assert.Error(t, err)

	_, err = NewCompletedPayment(ticket, decimal.Zero, "", ProviderFree, "")
	assert.Error(t, err)

	free, err := NewCompletedPayment(ticket, decimal.Zero, "", ProviderFree, FreeSessionID())
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, free.Currency)
	assert.True(t, strings.HasPrefix(free.ProviderSessionID, "free_"))
}

func TestNewTicketPurchasedEvent(t *testing.T) {
	ticket, err := NewTicket(uuid.New(), uuid.New(), decimal.NewFromInt(5))
	require.NoError(t, err)
	p, err := NewCompletedPayment(ticket, decimal.NewFromInt(5), "usd", ProviderStripe, "cs_1")
	require.NoError(t, err)

	evt := NewTicketPurchasedEvent(ticket, p)
	assert.Equal(t, EventTypeTicketPurchased, evt.EventType())
	assert.Equal(t, ticket.ID, evt.AggregateID())
	assert.Equal(t, ticket.EventID.String(), evt.TicketEventID)
	assert.NotEqual(t, uuid.Nil, evt.EventID())

	var de shared.DomainEvent = evt
	assert.Equal(t, ticket.ID, de.AggregateID())

	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"event_id":"`+ticket.EventID.String()+`"`)
}
