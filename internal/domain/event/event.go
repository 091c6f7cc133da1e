package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

// MaxImages is the number of images an event may carry
const MaxImages = 10

// Event errors
var (
	ErrEventNotFound    = shared.NewDomainError("EVENT_NOT_FOUND", "Event not found")
	ErrEventCancelled   = shared.NewDomainError("INVALID_STATE", "Event is already cancelled")
	ErrTooManyImages    = shared.NewDomainError("INVALID_IMAGES", "An event can have at most 10 images")
	ErrNotEventManager  = shared.NewDomainError("INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
	ErrEventNotOnSale   = shared.NewDomainError("EVENT_NOT_AVAILABLE", "Event is not available for purchase")
	ErrEventAlreadyPast = shared.NewDomainError("EVENT_NOT_AVAILABLE", "Event has already taken place")
	ErrEventFull        = shared.NewDomainError("EVENT_FULL", "Event is sold out")
)

// Event is a dated happening that sells tickets
type Event struct {
	shared.BaseAggregateRoot
	Title             string
	Description       string
	Location          string
	Coordinates       string
	Date              time.Time
	Price             decimal.Decimal
	MaxAttendees      *int
	ImageURLs         []string
	Status            Status
	Format            Format
	Theme             Theme
	IsAttendeesHidden bool
	RedirectURL       string
	PublishDate       time.Time
	NotifyOrganizer   bool
	OrganizerID       uuid.UUID
	CompanyID         *uuid.UUID
	CategoryID        *uuid.UUID
	ReminderSentAt    *time.Time
}

// Details holds the attributes supplied when creating an event
type Details struct {
	Title             string
	Description       string
	Location          string
	Coordinates       string
	Date              time.Time
	Price             decimal.Decimal
	MaxAttendees      *int
	Format            Format
	Theme             Theme
	IsAttendeesHidden bool
	RedirectURL       string
	PublishDate       time.Time
	NotifyOrganizer   bool
	CompanyID         *uuid.UUID
	CategoryID        *uuid.UUID
}

// NewEvent creates a draft event. A zero publish date means publish now.
func NewEvent(organizerID uuid.UUID, d Details, imageURLs []string) (*Event, error) {
	if organizerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZER", "Organizer is required")
	}
	if len(imageURLs) > MaxImages {
		return nil, ErrTooManyImages
	}
	if d.PublishDate.IsZero() {
		d.PublishDate = time.Now()
	}
	e := &Event{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            StatusDraft,
		OrganizerID:       organizerID,
		ImageURLs:         append([]string{}, imageURLs...),
	}
	if err := e.apply(d); err != nil {
		return nil, err
	}
	return e, nil
}

// Update carries a partial update; nil fields are left unchanged
type Update struct {
	Title             *string
	Description       *string
	Location          *string
	Coordinates       *string
	Date              *time.Time
	Price             *decimal.Decimal
	MaxAttendees      *int
	Format            *Format
	Theme             *Theme
	IsAttendeesHidden *bool
	RedirectURL       *string
	PublishDate       *time.Time
	NotifyOrganizer   *bool
	CategoryID        *uuid.UUID
}

// ApplyUpdate applies a partial update. It reports whether the publish
// date of a draft changed, in which case the publish job must be rescheduled.
func (e *Event) ApplyUpdate(u Update) (bool, error) {
	if e.Status == StatusCancelled {
		return false, ErrEventCancelled
	}
	d := e.details()
	if u.Title != nil {
		d.Title = *u.Title
	}
	if u.Description != nil {
		d.Description = *u.Description
	}
	if u.Location != nil {
		d.Location = *u.Location
	}
	if u.Coordinates != nil {
		d.Coordinates = *u.Coordinates
	}
	if u.Date != nil {
		d.Date = *u.Date
	}
	if u.Price != nil {
		d.Price = *u.Price
	}
	if u.MaxAttendees != nil {
		v := *u.MaxAttendees
		d.MaxAttendees = &v
	}
	if u.Format != nil {
		d.Format = *u.Format
	}
	if u.Theme != nil {
		d.Theme = *u.Theme
	}
	if u.IsAttendeesHidden != nil {
		d.IsAttendeesHidden = *u.IsAttendeesHidden
	}
	if u.RedirectURL != nil {
		d.RedirectURL = *u.RedirectURL
	}
	if u.PublishDate != nil {
		d.PublishDate = *u.PublishDate
	}
	if u.NotifyOrganizer != nil {
		d.NotifyOrganizer = *u.NotifyOrganizer
	}
	if u.CategoryID != nil {
		id := *u.CategoryID
		d.CategoryID = &id
	}

	before := e.details()
	reschedule := e.Status == StatusDraft && !d.PublishDate.Equal(e.PublishDate)
	if err := e.apply(d); err != nil {
		return false, err
	}
	e.Touch()
	e.AddDomainEvent(NewEventUpdatedEvent(e, describeChanges(before, e.details())))
	return reschedule, nil
}

// describeChanges lists the attendee-visible differences between two versions
func describeChanges(before, after Details) []string {
	var out []string
	if before.Title != after.Title {
		out = append(out, "New title: "+after.Title)
	}
	if !before.Date.Equal(after.Date) {
		out = append(out, "New date: "+after.Date.Format("Jan 2, 2006 15:04"))
	}
	if before.Location != after.Location {
		out = append(out, "New location: "+after.Location)
	}
	if !before.Price.Equal(after.Price) {
		out = append(out, "New price: $"+after.Price.StringFixed(2))
	}
	if before.Description != after.Description {
		out = append(out, "The description was updated")
	}
	return out
}

// Publish moves a draft to PUBLISHED. It returns false without error when
// there is nothing to do because the event is cancelled or already live.
func (e *Event) Publish() bool {
	if e.Status != StatusDraft {
		return false
	}
	e.Status = StatusPublished
	e.Touch()
	e.AddDomainEvent(NewEventPublishedEvent(e))
	return true
}

// Cancel marks the event CANCELLED
func (e *Event) Cancel() error {
	if e.Status == StatusCancelled {
		return ErrEventCancelled
	}
	e.Status = StatusCancelled
	e.Touch()
	e.AddDomainEvent(NewEventCancelledEvent(e))
	return nil
}

// AddImages appends image urls, keeping the total within MaxImages
func (e *Event) AddImages(urls []string) error {
	if len(e.ImageURLs)+len(urls) > MaxImages {
		return ErrTooManyImages
	}
	e.ImageURLs = append(e.ImageURLs, urls...)
	e.Touch()
	return nil
}

// RemoveImages drops the given urls and returns the ones actually removed
func (e *Event) RemoveImages(urls []string) []string {
	drop := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		drop[u] = struct{}{}
	}
	kept := make([]string, 0, len(e.ImageURLs))
	removed := make([]string, 0, len(urls))
	for _, u := range e.ImageURLs {
		if _, ok := drop[u]; ok {
			removed = append(removed, u)
			continue
		}
		kept = append(kept, u)
	}
	e.ImageURLs = kept
	if len(removed) > 0 {
		e.Touch()
	}
	return removed
}

// IsPast reports whether the event date is before now
func (e *Event) IsPast(now time.Time) bool {
	return e.Date.Before(now)
}

// HasCapacity reports whether another ticket fits given the active count
func (e *Event) HasCapacity(activeTickets int64) bool {
	if e.MaxAttendees == nil {
		return true
	}
	return activeTickets < int64(*e.MaxAttendees)
}

// EnsurePurchasable checks status, date and capacity for a new ticket
func (e *Event) EnsurePurchasable(now time.Time, activeTickets int64) error {
	if e.Status != StatusPublished {
		return ErrEventNotOnSale
	}
	if e.IsPast(now) {
		return ErrEventAlreadyPast
	}
	if !e.HasCapacity(activeTickets) {
		return ErrEventFull
	}
	return nil
}

// MarkReminderSent records that the reminder sweep handled this event
func (e *Event) MarkReminderSent(at time.Time) {
	e.ReminderSentAt = &at
}

// IsOrganizer reports whether userID created the event
func (e *Event) IsOrganizer(userID uuid.UUID) bool {
	return e.OrganizerID == userID
}

func (e *Event) details() Details {
	return Details{
		Title:             e.Title,
		Description:       e.Description,
		Location:          e.Location,
		Coordinates:       e.Coordinates,
		Date:              e.Date,
		Price:             e.Price,
		MaxAttendees:      e.MaxAttendees,
		Format:            e.Format,
		Theme:             e.Theme,
		IsAttendeesHidden: e.IsAttendeesHidden,
		RedirectURL:       e.RedirectURL,
		PublishDate:       e.PublishDate,
		NotifyOrganizer:   e.NotifyOrganizer,
		CompanyID:         e.CompanyID,
		CategoryID:        e.CategoryID,
	}
}

func (e *Event) apply(d Details) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Event title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Event title cannot exceed 200 characters")
	}
	location := strings.TrimSpace(d.Location)
	if location == "" {
		return shared.NewDomainError("INVALID_LOCATION", "Event location cannot be empty")
	}
	if d.Date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Event date is required")
	}
	if d.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if d.MaxAttendees != nil && *d.MaxAttendees < 1 {
		return shared.NewDomainError("INVALID_MAX_ATTENDEES", "Max attendees must be positive")
	}
	if !d.Format.IsValid() {
		return shared.NewDomainError("INVALID_FORMAT", "Invalid event format")
	}
	if !d.Theme.IsValid() {
		return shared.NewDomainError("INVALID_THEME", "Invalid event theme")
	}

	e.Title = title
	e.Description = strings.TrimSpace(d.Description)
	e.Location = location
	e.Coordinates = strings.TrimSpace(d.Coordinates)
	e.Date = d.Date
	e.Price = d.Price.Round(2)
	e.MaxAttendees = d.MaxAttendees
	e.Format = d.Format
	e.Theme = d.Theme
	e.IsAttendeesHidden = d.IsAttendeesHidden
	e.RedirectURL = strings.TrimSpace(d.RedirectURL)
	e.PublishDate = d.PublishDate
	e.NotifyOrganizer = d.NotifyOrganizer
	e.CompanyID = d.CompanyID
	e.CategoryID = d.CategoryID
	return nil
}
