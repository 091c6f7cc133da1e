package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
	"github.com/t1tandr/uevent/internal/infrastructure/persistence/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every pooled connection would otherwise get its own empty in-memory db
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&models.UserModel{},
		&models.CategoryModel{},
		&models.CompanyModel{},
		&models.CompanyMemberModel{},
		&models.SubscriberModel{},
		&models.EventModel{},
		&models.PromoCodeModel{},
		&models.CommentModel{},
		&models.TicketModel{},
		&models.PaymentModel{},
		&models.NotificationModel{},
	)
	require.NoError(t, err)

	return db
}

var baseTime = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestUser(t *testing.T, email, name string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, name, "secret123")
	require.NoError(t, err)
	return u
}

type eventOption func(d *event.Details)

func withDate(d time.Time) eventOption {
	return func(det *event.Details) { det.Date = d }
}

func withPrice(p string) eventOption {
	return func(det *event.Details) { det.Price = decimal.RequireFromString(p) }
}

func withTheme(th event.Theme) eventOption {
	return func(det *event.Details) { det.Theme = th }
}

func withFormat(f event.Format) eventOption {
	return func(det *event.Details) { det.Format = f }
}

func withCategory(id uuid.UUID) eventOption {
	return func(det *event.Details) { det.CategoryID = &id }
}

func withDescription(text string) eventOption {
	return func(det *event.Details) { det.Description = text }
}

func withCompany(id uuid.UUID) eventOption {
	return func(det *event.Details) { det.CompanyID = &id }
}

func newTestEvent(t *testing.T, organizerID uuid.UUID, title string, opts ...eventOption) *event.Event {
	t.Helper()
	d := event.Details{
		Title:       title,
		Description: "An event about " + title,
		Location:    "Kyiv",
		Date:        baseTime.Add(48 * time.Hour),
		Price:       decimal.NewFromInt(10),
		Format:      event.FormatConference,
		Theme:       event.ThemeTechnology,
		PublishDate: baseTime,
	}
	for _, opt := range opts {
		opt(&d)
	}
	e, err := event.NewEvent(organizerID, d, nil)
	require.NoError(t, err)
	return e
}

func newPublishedEvent(t *testing.T, organizerID uuid.UUID, title string, opts ...eventOption) *event.Event {
	t.Helper()
	e := newTestEvent(t, organizerID, title, opts...)
	require.True(t, e.Publish())
	return e
}
