package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/t1tandr/uevent/internal/domain/catalog"
	"github.com/t1tandr/uevent/internal/domain/event"
)

// CategoryModel is the persistence model for an event category.
type CategoryModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
	}
}

// CategoryModelFromDomain creates a new persistence model from a domain Category.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{Name: c.Name, Description: c.Description}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// EventModel is the persistence model for the Event aggregate.
type EventModel struct {
	BaseModel
	Title             string          `gorm:"type:varchar(200);not null"`
	Description       string          `gorm:"type:text"`
	Location          string          `gorm:"type:varchar(500);not null"`
	Coordinates       string          `gorm:"type:varchar(100)"`
	Date              time.Time       `gorm:"not null;index"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MaxAttendees      *int
	ImageURLs         []string     `gorm:"column:image_urls;type:jsonb;serializer:json"`
	Status            event.Status `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Format            event.Format `gorm:"type:varchar(20);not null"`
	Theme             event.Theme  `gorm:"type:varchar(20);not null"`
	IsAttendeesHidden bool         `gorm:"not null;default:false"`
	RedirectURL       string       `gorm:"type:varchar(1000)"`
	PublishDate       time.Time    `gorm:"not null"`
	NotifyOrganizer   bool         `gorm:"not null;default:false"`
	OrganizerID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	CompanyID         *uuid.UUID   `gorm:"type:uuid;index"`
	CategoryID        *uuid.UUID   `gorm:"type:uuid;index"`
	ReminderSentAt    *time.Time
}

// TableName returns the table name for GORM
func (EventModel) TableName() string {
	return "events"
}

// ToDomain converts the persistence model to a domain Event.
func (m *EventModel) ToDomain() *event.Event {
	images := m.ImageURLs
	if images == nil {
		images = []string{}
	}
	return &event.Event{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Title:             m.Title,
		Description:       m.Description,
		Location:          m.Location,
		Coordinates:       m.Coordinates,
		Date:              m.Date,
		Price:             m.Price,
		MaxAttendees:      m.MaxAttendees,
		ImageURLs:         images,
		Status:            m.Status,
		Format:            m.Format,
		Theme:             m.Theme,
		IsAttendeesHidden: m.IsAttendeesHidden,
		RedirectURL:       m.RedirectURL,
		PublishDate:       m.PublishDate,
		NotifyOrganizer:   m.NotifyOrganizer,
		OrganizerID:       m.OrganizerID,
		CompanyID:         m.CompanyID,
		CategoryID:        m.CategoryID,
		ReminderSentAt:    m.ReminderSentAt,
	}
}

// EventModelFromDomain creates a new persistence model from a domain Event.
func EventModelFromDomain(e *event.Event) *EventModel {
	m := &EventModel{
		Title:             e.Title,
		Description:       e.Description,
		Location:          e.Location,
		Coordinates:       e.Coordinates,
		Date:              e.Date,
		Price:             e.Price,
		MaxAttendees:      e.MaxAttendees,
		ImageURLs:         e.ImageURLs,
		Status:            e.Status,
		Format:            e.Format,
		Theme:             e.Theme,
		IsAttendeesHidden: e.IsAttendeesHidden,
		RedirectURL:       e.RedirectURL,
		PublishDate:       e.PublishDate,
		NotifyOrganizer:   e.NotifyOrganizer,
		OrganizerID:       e.OrganizerID,
		CompanyID:         e.CompanyID,
		CategoryID:        e.CategoryID,
		ReminderSentAt:    e.ReminderSentAt,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// PromoCodeModel is the persistence model for a promo code.
type PromoCodeModel struct {
	BaseModel
	Code     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Discount decimal.Decimal `gorm:"type:decimal(5,4);not null"`
	EventID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	IsUsed   bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PromoCodeModel) TableName() string {
	return "promo_codes"
}

// ToDomain converts the persistence model to a domain PromoCode.
func (m *PromoCodeModel) ToDomain() *event.PromoCode {
	return &event.PromoCode{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Discount:   m.Discount,
		EventID:    m.EventID,
		IsUsed:     m.IsUsed,
	}
}

// PromoCodeModelFromDomain creates a new persistence model from a domain PromoCode.
func PromoCodeModelFromDomain(p *event.PromoCode) *PromoCodeModel {
	m := &PromoCodeModel{
		Code:     p.Code,
		Discount: p.Discount,
		EventID:  p.EventID,
		IsUsed:   p.IsUsed,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// CommentModel is the persistence model for an event comment.
type CommentModel struct {
	BaseModel
	Content  string     `gorm:"type:text;not null"`
	EventID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (CommentModel) TableName() string {
	return "comments"
}

// ToDomain converts the persistence model to a domain Comment.
func (m *CommentModel) ToDomain() *event.Comment {
	return &event.Comment{
		BaseEntity: m.BaseModel.ToDomain(),
		Content:    m.Content,
		EventID:    m.EventID,
		UserID:     m.UserID,
		ParentID:   m.ParentID,
	}
}

// CommentModelFromDomain creates a new persistence model from a domain Comment.
func CommentModelFromDomain(c *event.Comment) *CommentModel {
	m := &CommentModel{
		Content:  c.Content,
		EventID:  c.EventID,
		UserID:   c.UserID,
		ParentID: c.ParentID,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
