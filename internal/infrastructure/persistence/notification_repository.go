package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/notification"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// notificationBatchSize bounds the rows of one INSERT
const notificationBatchSize = 200

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create stores one notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(models.NotificationModelFromDomain(n)).Error
}

// CreateBatch inserts many notifications at once
func (r *GormNotificationRepository) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	rows := make([]*models.NotificationModel, len(ns))
	for i, n := range ns {
		rows[i] = models.NotificationModelFromDomain(n)
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, notificationBatchSize).Error
}

// FindByUser lists a user's notifications newest first
func (r *GormNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var rows []models.NotificationModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*notification.Notification, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByIDForUser returns a notification only when userID owns it
func (r *GormNotificationRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*notification.Notification, error) {
	query := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID)
	return findOne(query, (*models.NotificationModel).ToDomain)
}

// Update saves a notification
func (r *GormNotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	result := r.db.WithContext(ctx).Save(models.NotificationModelFromDomain(n))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountUnread counts unread notifications of a user
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkAllRead marks every unread notification of a user as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "updated_at": gorm.Expr("CURRENT_TIMESTAMP")})
	return result.RowsAffected, result.Error
}

// Delete removes a notification owned by userID
func (r *GormNotificationRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.NotificationModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormNotificationRepository implements notification.Repository
var _ notification.Repository = (*GormNotificationRepository)(nil)
