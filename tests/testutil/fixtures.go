package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
)

// TestPassword is the password of users built by NewUser.
const TestPassword = "secret123"

// NewUser builds a password account with a unique email derived from name.
func NewUser(t *testing.T, name string) *identity.User {
	t.Helper()

	u, err := identity.NewUser(fmt.Sprintf("%s.%s@uevent.test", name, uuid.NewString()[:8]), name, TestPassword)
	require.NoError(t, err)
	return u
}

// NewCompany builds a company owned by ownerID.
func NewCompany(t *testing.T, ownerID uuid.UUID, name string) *company.Company {
	t.Helper()

	c, err := company.NewCompany(ownerID, company.CompanyDetails{
		Name:     name,
		Email:    "team@" + uuid.NewString()[:8] + ".test",
		Location: "Kyiv, Ukraine",
	})
	require.NoError(t, err)
	return c
}

// EventOption adjusts the details NewDraftEvent starts from.
type EventOption func(*event.Details)

// WithPrice sets the ticket price.
func WithPrice(price string) EventOption {
	return func(d *event.Details) { d.Price = decimal.RequireFromString(price) }
}

// WithCapacity caps the number of tickets.
func WithCapacity(n int) EventOption {
	return func(d *event.Details) { d.MaxAttendees = &n }
}

// WithCompany attaches the event to a company.
func WithCompany(companyID uuid.UUID) EventOption {
	return func(d *event.Details) { d.CompanyID = &companyID }
}

// WithDate moves the event; the publish date stays three days earlier.
func WithDate(date time.Time) EventOption {
	return func(d *event.Details) {
		d.Date = date
		d.PublishDate = date.Add(-72 * time.Hour)
	}
}

// NewDraftEvent builds a free meetup two weeks from now.
func NewDraftEvent(t *testing.T, organizerID uuid.UUID, opts ...EventOption) *event.Event {
	t.Helper()

	date := time.Now().Add(14 * 24 * time.Hour).Truncate(time.Second)
	d := event.Details{
		Title:       "Go Meetup",
		Description: "Talks about Go",
		Location:    "Kyiv",
		Date:        date,
		Price:       decimal.Zero,
		Format:      event.FormatMeetup,
		Theme:       event.ThemeTechnology,
		PublishDate: date.Add(-72 * time.Hour),
	}
	for _, opt := range opts {
		opt(&d)
	}

	e, err := event.NewEvent(organizerID, d, nil)
	require.NoError(t, err)
	return e
}

// NewPublishedEvent is NewDraftEvent already published, with its domain
// events cleared.
func NewPublishedEvent(t *testing.T, organizerID uuid.UUID, opts ...EventOption) *event.Event {
	t.Helper()

	e := NewDraftEvent(t, organizerID, opts...)
	e.Publish()
	e.ClearDomainEvents()
	return e
}
