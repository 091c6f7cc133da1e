package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
)

const dateLayout = "2006-01-02"

// Filter converts the query into a repository filter relative to now
func (q ListEventsQuery) Filter(now time.Time) (event.ListFilter, error) {
	f := event.ListFilter{
		Search:   strings.TrimSpace(q.Search),
		Location: strings.TrimSpace(q.Location),
		Now:      now,
	}
	if q.Format != "" {
		format := event.Format(strings.ToUpper(q.Format))
		f.Format = &format
	}
	if q.Theme != "" {
		theme := event.Theme(strings.ToUpper(q.Theme))
		f.Theme = &theme
	}
	if q.Date != "" {
		day, err := time.ParseInLocation(dateLayout, q.Date, time.UTC)
		if err != nil {
			return f, shared.NewDomainError("INVALID_INPUT", "date must be YYYY-MM-DD")
		}
		f.Date = &day
	}
	var err error
	if f.PriceMin, err = parsePrice(q.PriceMin, "priceMin"); err != nil {
		return f, err
	}
	if f.PriceMax, err = parsePrice(q.PriceMax, "priceMax"); err != nil {
		return f, err
	}
	if q.Category != "" {
		id, err := uuid.Parse(q.Category)
		if err != nil {
			return f, shared.NewDomainError("INVALID_INPUT", "category must be a UUID")
		}
		f.CategoryID = &id
	}
	return f, nil
}

// Options returns normalized paging and sorting
func (q SearchEventsQuery) Options() event.SearchOptions {
	return event.SearchOptions{
		PageRequest: shared.PageRequest{Page: q.Page, Limit: q.Limit},
		SortBy:      q.SortBy,
		SortOrder:   q.SortOrder,
	}.Normalize()
}

func parsePrice(raw, field string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", field+" must be a non-negative number")
	}
	return &d, nil
}
