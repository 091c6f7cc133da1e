package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCommentRepository implements CommentRepository using GORM
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create creates a comment
func (r *GormCommentRepository) Create(ctx context.Context, c *event.Comment) error {
	return r.db.WithContext(ctx).Create(models.CommentModelFromDomain(c)).Error
}

// Update saves edited content
func (r *GormCommentRepository) Update(ctx context.Context, c *event.Comment) error {
	result := r.db.WithContext(ctx).Save(models.CommentModelFromDomain(c))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a comment together with its replies
func (r *GormCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.CommentModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.CommentModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a comment by ID
func (r *GormCommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*event.Comment, error) {
	return findOne(r.db.WithContext(ctx), (*models.CommentModel).ToDomain, "id = ?", id)
}

// FindByEvent returns every comment of an event, oldest first
func (r *GormCommentRepository) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.Comment, error) {
	var rows []models.CommentModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*event.Comment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Ensure GormCommentRepository implements CommentRepository
var _ event.CommentRepository = (*GormCommentRepository)(nil)
