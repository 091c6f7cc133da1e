package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPromoCodeRepository implements PromoCodeRepository using GORM
type GormPromoCodeRepository struct {
	db *gorm.DB
}

// NewGormPromoCodeRepository creates a new GormPromoCodeRepository
func NewGormPromoCodeRepository(db *gorm.DB) *GormPromoCodeRepository {
	return &GormPromoCodeRepository{db: db}
}

// Create creates a promo code
func (r *GormPromoCodeRepository) Create(ctx context.Context, p *event.PromoCode) error {
	return r.db.WithContext(ctx).Create(models.PromoCodeModelFromDomain(p)).Error
}

// Update saves a promo code
func (r *GormPromoCodeRepository) Update(ctx context.Context, p *event.PromoCode) error {
	result := r.db.WithContext(ctx).Save(models.PromoCodeModelFromDomain(p))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a promo code
func (r *GormPromoCodeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PromoCodeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a promo code by ID
func (r *GormPromoCodeRepository) FindByID(ctx context.Context, id uuid.UUID) (*event.PromoCode, error) {
	return findOne(r.db.WithContext(ctx), (*models.PromoCodeModel).ToDomain, "id = ?", id)
}

// FindByEvent lists the promo codes of an event
func (r *GormPromoCodeRepository) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*event.PromoCode, error) {
	var rows []models.PromoCodeModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*event.PromoCode, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByCode looks a code up globally
func (r *GormPromoCodeRepository) FindByCode(ctx context.Context, code string) (*event.PromoCode, error) {
	return findOne(r.db.WithContext(ctx).Where("code = ?", strings.TrimSpace(code)), (*models.PromoCodeModel).ToDomain)
}

// ExistsByCode checks if a code is already taken
func (r *GormPromoCodeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PromoCodeModel{}).
		Where("code = ?", strings.TrimSpace(code)).
		Count(&count).Error
	return count > 0, err
}

// MarkUsed flips is_used only while it is still false
func (r *GormPromoCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.PromoCodeModel{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]any{"is_used": true, "updated_at": gorm.Expr("CURRENT_TIMESTAMP")})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Ensure GormPromoCodeRepository implements PromoCodeRepository
var _ event.PromoCodeRepository = (*GormPromoCodeRepository)(nil)
