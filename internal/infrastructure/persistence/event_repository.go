package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
	"github.com/t1tandr/uevent/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// activeTicketCountColumn selects the popularity of each event row
const activeTicketCountColumn = "(SELECT COUNT(*) FROM tickets WHERE tickets.event_id = events.id AND tickets.status = ?) AS ticket_count"

// GormEventRepository implements EventRepository using GORM
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// Create creates a new event
func (r *GormEventRepository) Create(ctx context.Context, e *event.Event) error {
	return r.db.WithContext(ctx).Create(models.EventModelFromDomain(e)).Error
}

// Update writes every column but status, which only SetStatus changes so a
// stale copy cannot undo a publish or a cancellation
func (r *GormEventRepository) Update(ctx context.Context, e *event.Event) error {
	result := r.db.WithContext(ctx).
		Model(&models.EventModel{}).
		Where("id = ?", e.ID).
		Select("*").
		Omit("id", "status", "created_at").
		Updates(models.EventModelFromDomain(e))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetStatus is a compare-and-set on the status column
func (r *GormEventRepository) SetStatus(ctx context.Context, id uuid.UUID, to event.Status, from ...event.Status) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.EventModel{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByID finds an event by ID
func (r *GormEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	return findOne(r.db.WithContext(ctx), (*models.EventModel).ToDomain, "id = ?", id)
}

// FindByIDs loads several events at once
func (r *GormEventRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*event.Event, error) {
	if len(ids) == 0 {
		return []*event.Event{}, nil
	}
	var rows []models.EventModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return eventsToDomain(rows), nil
}

// FindPublished lists PUBLISHED events matching the filter, date ascending
func (r *GormEventRepository) FindPublished(ctx context.Context, filter event.ListFilter) ([]*event.Event, error) {
	var rows []models.EventModel
	err := applyListFilter(r.db.WithContext(ctx).Model(&models.EventModel{}), filter).
		Order("events.date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return eventsToDomain(rows), nil
}

// Search is FindPublished with paging and sorting
func (r *GormEventRepository) Search(ctx context.Context, filter event.ListFilter, opts event.SearchOptions) ([]*event.Event, int64, error) {
	opts = opts.Normalize()

	var total int64
	if err := applyListFilter(r.db.WithContext(ctx).Model(&models.EventModel{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*event.Event{}, 0, nil
	}

	var rows []models.EventModel
	err := applyListFilter(r.db.WithContext(ctx).Model(&models.EventModel{}), filter).
		Select("events.*, "+activeTicketCountColumn, ticketing.TicketStatusActive).
		Order(eventOrderClause(opts.SortBy, opts.SortOrder)).
		Offset(opts.Offset()).
		Limit(opts.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return eventsToDomain(rows), total, nil
}

// FindSimilarCandidates returns upcoming PUBLISHED events sharing the
// category, theme or format of base, date ascending
func (r *GormEventRepository) FindSimilarCandidates(ctx context.Context, base *event.Event, now time.Time, limit int) ([]*event.Event, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND date >= ? AND id <> ?", event.StatusPublished, now, base.ID)

	if base.CategoryID != nil {
		query = query.Where("(category_id = ? OR theme = ? OR format = ?)", *base.CategoryID, base.Theme, base.Format)
	} else {
		query = query.Where("(theme = ? OR format = ?)", base.Theme, base.Format)
	}

	var rows []models.EventModel
	if err := query.Order("date ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return eventsToDomain(rows), nil
}

// FindByCompany lists a company's events, newest first
func (r *GormEventRepository) FindByCompany(ctx context.Context, companyID uuid.UUID, filter event.CompanyEventsFilter) ([]*event.Event, error) {
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := likePattern(s)
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	var rows []models.EventModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return eventsToDomain(rows), nil
}

// FindByOrganizer lists events created by a user, newest first
func (r *GormEventRepository) FindByOrganizer(ctx context.Context, organizerID uuid.UUID, status *event.Status) ([]*event.Event, error) {
	query := r.db.WithContext(ctx).Where("organizer_id = ?", organizerID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var rows []models.EventModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return eventsToDomain(rows), nil
}

// FindDueForReminder lists PUBLISHED events in (from, to] without a sent reminder
func (r *GormEventRepository) FindDueForReminder(ctx context.Context, from, to time.Time) ([]*event.Event, error) {
	var rows []models.EventModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND date > ? AND date <= ? AND reminder_sent_at IS NULL", event.StatusPublished, from, to).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return eventsToDomain(rows), nil
}

// applyListFilter narrows a query on events to the public listing filter
func applyListFilter(query *gorm.DB, f event.ListFilter) *gorm.DB {
	query = query.Where("events.status = ?", event.StatusPublished)

	if f.Date != nil {
		d := f.Date
		start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		query = query.Where("events.date >= ? AND events.date < ?", start, start.AddDate(0, 0, 1))
	} else if !f.Now.IsZero() {
		query = query.Where("events.date >= ?", f.Now)
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := likePattern(s)
		query = query.Where(
			"(LOWER(events.title) LIKE ? OR LOWER(events.description) LIKE ? OR LOWER(events.location) LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if f.Format != nil {
		query = query.Where("events.format = ?", *f.Format)
	}
	if f.Theme != nil {
		query = query.Where("events.theme = ?", *f.Theme)
	}
	if f.PriceMin != nil {
		query = query.Where("events.price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		query = query.Where("events.price <= ?", *f.PriceMax)
	}
	if f.CategoryID != nil {
		query = query.Where("events.category_id = ?", *f.CategoryID)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		query = query.Where("LOWER(events.location) LIKE ?", likePattern(loc))
	}
	return query
}

// likePattern builds a lowercase substring pattern, escaping LIKE wildcards
func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
	return "%" + s + "%"
}

func eventsToDomain(rows []models.EventModel) []*event.Event {
	out := make([]*event.Event, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormEventRepository implements EventRepository
var _ event.EventRepository = (*GormEventRepository)(nil)
