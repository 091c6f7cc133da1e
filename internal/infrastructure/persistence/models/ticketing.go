package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
)

// TicketModel is the persistence model for the Ticket aggregate.
type TicketModel struct {
	BaseModel
	EventID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Price     decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	Status    ticketing.TicketStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	QRPayload string                 `gorm:"column:qr_payload;type:text"`
}

// TableName returns the table name for GORM
func (TicketModel) TableName() string {
	return "tickets"
}

// ToDomain converts the persistence model to a domain Ticket.
func (m *TicketModel) ToDomain() *ticketing.Ticket {
	return &ticketing.Ticket{
		BaseAggregateRoot: m.ToAggregateRoot(),
		EventID:           m.EventID,
		UserID:            m.UserID,
		Price:             m.Price,
		Status:            m.Status,
		QRPayload:         m.QRPayload,
	}
}

// TicketModelFromDomain creates a new persistence model from a domain Ticket.
func TicketModelFromDomain(t *ticketing.Ticket) *TicketModel {
	m := &TicketModel{
		EventID:   t.EventID,
		UserID:    t.UserID,
		Price:     t.Price,
		Status:    t.Status,
		QRPayload: t.QRPayload,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// PaymentModel is the persistence model for a Payment.
type PaymentModel struct {
	BaseModel
	TicketID          uuid.UUID               `gorm:"type:uuid;not null;index"`
	UserID            uuid.UUID               `gorm:"type:uuid;not null;index"`
	EventID           uuid.UUID               `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal         `gorm:"type:decimal(12,2);not null"`
	Currency          string                  `gorm:"type:varchar(10);not null"`
	Status            ticketing.PaymentStatus `gorm:"type:varchar(20);not null"`
	Provider          string                  `gorm:"type:varchar(20);not null"`
	ProviderSessionID string                  `gorm:"type:varchar(255);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *ticketing.Payment {
	return &ticketing.Payment{
		BaseEntity:        m.BaseModel.ToDomain(),
		TicketID:          m.TicketID,
		UserID:            m.UserID,
		EventID:           m.EventID,
		Amount:            m.Amount,
		Currency:          m.Currency,
		Status:            m.Status,
		Provider:          m.Provider,
		ProviderSessionID: m.ProviderSessionID,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *ticketing.Payment) *PaymentModel {
	m := &PaymentModel{
		TicketID:          p.TicketID,
		UserID:            p.UserID,
		EventID:           p.EventID,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            p.Status,
		Provider:          p.Provider,
		ProviderSessionID: p.ProviderSessionID,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
