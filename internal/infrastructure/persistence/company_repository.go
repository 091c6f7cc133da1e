package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Create creates a new company
func (r *GormCompanyRepository) Create(ctx context.Context, c *company.Company) error {
	return r.db.WithContext(ctx).Create(models.CompanyModelFromDomain(c)).Error
}

// Update saves changed company attributes
func (r *GormCompanyRepository) Update(ctx context.Context, c *company.Company) error {
	result := r.db.WithContext(ctx).Save(models.CompanyModelFromDomain(c))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a company by ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	return findOne(r.db.WithContext(ctx), (*models.CompanyModel).ToDomain, "id = ?", id)
}

// FindAll returns all companies, newest first
func (r *GormCompanyRepository) FindAll(ctx context.Context) ([]*company.Company, error) {
	var rows []models.CompanyModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return companiesToDomain(rows), nil
}

// FindByIDs loads several companies at once
func (r *GormCompanyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*company.Company, error) {
	if len(ids) == 0 {
		return []*company.Company{}, nil
	}
	var rows []models.CompanyModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return companiesToDomain(rows), nil
}

func companiesToDomain(rows []models.CompanyModel) []*company.Company {
	out := make([]*company.Company, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// GormMemberRepository implements MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// Create adds a membership row
func (r *GormMemberRepository) Create(ctx context.Context, m *company.Member) error {
	return r.db.WithContext(ctx).Create(models.CompanyMemberModelFromDomain(m)).Error
}

// Update saves a changed role
func (r *GormMemberRepository) Update(ctx context.Context, m *company.Member) error {
	result := r.db.WithContext(ctx).Save(models.CompanyMemberModelFromDomain(m))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a membership by ID
func (r *GormMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CompanyMemberModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a membership by ID
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Member, error) {
	return findOne(r.db.WithContext(ctx), (*models.CompanyMemberModel).ToDomain, "id = ?", id)
}

// FindByCompanyAndUser returns the membership of a user in a company
func (r *GormMemberRepository) FindByCompanyAndUser(ctx context.Context, companyID, userID uuid.UUID) (*company.Member, error) {
	query := r.db.WithContext(ctx).Where("company_id = ? AND user_id = ?", companyID, userID)
	return findOne(query, (*models.CompanyMemberModel).ToDomain)
}

// FindByCompany lists members, optionally restricted to one role
func (r *GormMemberRepository) FindByCompany(ctx context.Context, companyID uuid.UUID, role *company.Role) ([]*company.Member, error) {
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if role != nil {
		query = query.Where("role = ?", *role)
	}
	var rows []models.CompanyMemberModel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return membersToDomain(rows), nil
}

// FindByUser lists every membership of a user
func (r *GormMemberRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*company.Member, error) {
	var rows []models.CompanyMemberModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return membersToDomain(rows), nil
}

func membersToDomain(rows []models.CompanyMemberModel) []*company.Member {
	out := make([]*company.Member, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// GormSubscriberRepository implements SubscriberRepository using GORM
type GormSubscriberRepository struct {
	db *gorm.DB
}

// NewGormSubscriberRepository creates a new GormSubscriberRepository
func NewGormSubscriberRepository(db *gorm.DB) *GormSubscriberRepository {
	return &GormSubscriberRepository{db: db}
}

// Create subscribes a user to a company
func (r *GormSubscriberRepository) Create(ctx context.Context, s *company.Subscriber) error {
	return r.db.WithContext(ctx).Create(models.SubscriberModelFromDomain(s)).Error
}

// Delete removes a subscription
func (r *GormSubscriberRepository) Delete(ctx context.Context, companyID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Delete(&models.SubscriberModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Exists reports whether the user follows the company
func (r *GormSubscriberRepository) Exists(ctx context.Context, companyID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SubscriberModel{}).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Count(&count).Error
	return count > 0, err
}

// FindByCompany lists the subscribers of a company
func (r *GormSubscriberRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]*company.Subscriber, error) {
	var rows []models.SubscriberModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return subscribersToDomain(rows), nil
}

// FindByUser lists the companies a user follows
func (r *GormSubscriberRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*company.Subscriber, error) {
	var rows []models.SubscriberModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return subscribersToDomain(rows), nil
}

// CountByCompany counts subscribers of one company
func (r *GormSubscriberRepository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SubscriberModel{}).
		Where("company_id = ?", companyID).
		Count(&count).Error
	return count, err
}

// CountByCompanies returns subscriber counts keyed by company id.
// Companies without subscribers are absent from the map.
func (r *GormSubscriberRepository) CountByCompanies(ctx context.Context, companyIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(companyIDs))
	if len(companyIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		CompanyID uuid.UUID
		Total     int64
	}
	if err := r.db.WithContext(ctx).Model(&models.SubscriberModel{}).
		Select("company_id, COUNT(*) AS total").
		Where("company_id IN ?", companyIDs).
		Group("company_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CompanyID] = row.Total
	}
	return counts, nil
}

func subscribersToDomain(rows []models.SubscriberModel) []*company.Subscriber {
	out := make([]*company.Subscriber, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var (
	_ company.CompanyRepository    = (*GormCompanyRepository)(nil)
	_ company.MemberRepository     = (*GormMemberRepository)(nil)
	_ company.SubscriberRepository = (*GormSubscriberRepository)(nil)
)
