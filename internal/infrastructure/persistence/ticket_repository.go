package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
	"github.com/t1tandr/uevent/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTicketRepository implements TicketRepository using GORM
type GormTicketRepository struct {
	db *gorm.DB
}

// NewGormTicketRepository creates a new GormTicketRepository
func NewGormTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

// Create creates a ticket
func (r *GormTicketRepository) Create(ctx context.Context, t *ticketing.Ticket) error {
	return r.db.WithContext(ctx).Create(models.TicketModelFromDomain(t)).Error
}

// Update saves a ticket
func (r *GormTicketRepository) Update(ctx context.Context, t *ticketing.Ticket) error {
	result := r.db.WithContext(ctx).Save(models.TicketModelFromDomain(t))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a ticket by ID
func (r *GormTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticketing.Ticket, error) {
	return findOne(r.db.WithContext(ctx), (*models.TicketModel).ToDomain, "id = ?", id)
}

// FindByUser lists a user's tickets, newest first
func (r *GormTicketRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*ticketing.Ticket, error) {
	var rows []models.TicketModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return ticketsToDomain(rows), nil
}

// FindByEvent lists tickets for an event, newest first
func (r *GormTicketRepository) FindByEvent(ctx context.Context, eventID uuid.UUID, filter ticketing.AttendeeFilter) ([]*ticketing.Ticket, error) {
	query := r.db.WithContext(ctx).Model(&models.TicketModel{}).
		Select("tickets.*").
		Where("tickets.event_id = ?", eventID)
	if filter.Status != nil {
		query = query.Where("tickets.status = ?", *filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := likePattern(s)
		query = query.Joins("JOIN users ON users.id = tickets.user_id").
			Where("(LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?)", pattern, pattern)
	}

	var rows []models.TicketModel
	if err := query.Order("tickets.created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return ticketsToDomain(rows), nil
}

// FindActiveByEventAndUser returns the user's ACTIVE ticket for an event
func (r *GormTicketRepository) FindActiveByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*ticketing.Ticket, error) {
	query := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, ticketing.TicketStatusActive)
	return findOne(query, (*models.TicketModel).ToDomain)
}

// CountActiveByEvent counts ACTIVE tickets of an event
func (r *GormTicketRepository) CountActiveByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TicketModel{}).
		Where("event_id = ? AND status = ?", eventID, ticketing.TicketStatusActive).
		Count(&count).Error
	return count, err
}

// CountByStatus returns ticket counts per status for an event
func (r *GormTicketRepository) CountByStatus(ctx context.Context, eventID uuid.UUID) (map[ticketing.TicketStatus]int64, error) {
	var rows []struct {
		Status ticketing.TicketStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.TicketModel{}).
		Select("status, COUNT(*) AS total").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[ticketing.TicketStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// SumActivePrices totals the prices of ACTIVE tickets for an event
func (r *GormTicketRepository) SumActivePrices(ctx context.Context, eventID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).Model(&models.TicketModel{}).
		Select("SUM(price)").
		Where("event_id = ? AND status = ?", eventID, ticketing.TicketStatusActive).
		Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func ticketsToDomain(rows []models.TicketModel) []*ticketing.Ticket {
	out := make([]*ticketing.Ticket, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create records a payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *ticketing.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(p)).Error
}

// FindBySessionID finds the payment created for a provider session
func (r *GormPaymentRepository) FindBySessionID(ctx context.Context, sessionID string) (*ticketing.Payment, error) {
	return findOne(r.db.WithContext(ctx).Where("provider_session_id = ?", sessionID), (*models.PaymentModel).ToDomain)
}

// FindByTicketIDs loads the payments of several tickets
func (r *GormPaymentRepository) FindByTicketIDs(ctx context.Context, ticketIDs []uuid.UUID) ([]*ticketing.Payment, error) {
	if len(ticketIDs) == 0 {
		return []*ticketing.Payment{}, nil
	}
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).Where("ticket_id IN ?", ticketIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

// FindByUser lists a user's payments, newest first
func (r *GormPaymentRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*ticketing.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

func paymentsToDomain(rows []models.PaymentModel) []*ticketing.Payment {
	out := make([]*ticketing.Payment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var (
	_ ticketing.TicketRepository  = (*GormTicketRepository)(nil)
	_ ticketing.PaymentRepository = (*GormPaymentRepository)(nil)
)
