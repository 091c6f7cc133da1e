package persistence

import (
	"context"

	appcompany "github.com/t1tandr/uevent/internal/application/company"
	appevent "github.com/t1tandr/uevent/internal/application/event"
	appticketing "github.com/t1tandr/uevent/internal/application/ticketing"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/ticketing"
	"gorm.io/gorm"
)

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Events returns the event repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Events() event.EventRepository {
	return NewGormEventRepository(r.tx)
}

// PromoCodes returns the promo code repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PromoCodes() event.PromoCodeRepository {
	return NewGormPromoCodeRepository(r.tx)
}

// Tickets returns the ticket repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Tickets() ticketing.TicketRepository {
	return NewGormTicketRepository(r.tx)
}

// Payments returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Payments() ticketing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Companies returns the company repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Companies() company.CompanyRepository {
	return NewGormCompanyRepository(r.tx)
}

// Members returns the membership repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Members() company.MemberRepository {
	return NewGormMemberRepository(r.tx)
}

func runInTransaction(ctx context.Context, db *gorm.DB, fn func(repos *gormTransactionalRepositories) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormTicketingScope runs checkout confirmation atomically.
type GormTicketingScope struct {
	db *gorm.DB
}

// NewGormTicketingScope creates a new GormTicketingScope.
func NewGormTicketingScope(db *gorm.DB) *GormTicketingScope {
	return &GormTicketingScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTicketingScope) Execute(ctx context.Context, fn func(repos appticketing.TransactionalRepositories) error) error {
	return runInTransaction(ctx, s.db, func(repos *gormTransactionalRepositories) error {
		return fn(repos)
	})
}

// GormEventScope creates an event together with its promo codes.
type GormEventScope struct {
	db *gorm.DB
}

// NewGormEventScope creates a new GormEventScope.
func NewGormEventScope(db *gorm.DB) *GormEventScope {
	return &GormEventScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormEventScope) Execute(ctx context.Context, fn func(repos appevent.TransactionalRepositories) error) error {
	return runInTransaction(ctx, s.db, func(repos *gormTransactionalRepositories) error {
		return fn(repos)
	})
}

// GormCompanyScope creates a company together with its owner membership.
type GormCompanyScope struct {
	db *gorm.DB
}

// NewGormCompanyScope creates a new GormCompanyScope.
func NewGormCompanyScope(db *gorm.DB) *GormCompanyScope {
	return &GormCompanyScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormCompanyScope) Execute(ctx context.Context, fn func(repos appcompany.TransactionalRepositories) error) error {
	return runInTransaction(ctx, s.db, func(repos *gormTransactionalRepositories) error {
		return fn(repos)
	})
}

var (
	_ appticketing.TransactionScope          = (*GormTicketingScope)(nil)
	_ appticketing.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ appevent.TransactionScope              = (*GormEventScope)(nil)
	_ appevent.TransactionalRepositories     = (*gormTransactionalRepositories)(nil)
	_ appcompany.TransactionScope            = (*GormCompanyScope)(nil)
	_ appcompany.TransactionalRepositories   = (*gormTransactionalRepositories)(nil)
)
