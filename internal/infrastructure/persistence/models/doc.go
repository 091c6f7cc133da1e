// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model converts to and from its
// domain type with ToDomain and FromDomain.
//
// Structure:
//   - base.go: shared columns (id, created_at, updated_at)
//   - identity.go: users
//   - company.go: companies, members, subscribers
//   - event.go: categories, events, promo codes, comments
//   - ticketing.go: tickets, payments
//   - notification.go: notifications
package models
