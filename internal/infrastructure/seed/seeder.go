// Package seed fills a development database with fake users, companies
// and published events.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/catalog"
	"github.com/t1tandr/uevent/internal/domain/company"
	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/domain/identity"
)

// DefaultPassword is given to every seeded account
const DefaultPassword = "password123"

// Repositories are the stores the seeder writes to
type Repositories struct {
	Users       identity.UserRepository
	Companies   company.CompanyRepository
	Members     company.MemberRepository
	Subscribers company.SubscriberRepository
	Events      event.EventRepository
	PromoCodes  event.PromoCodeRepository
	Categories  catalog.CategoryRepository
}

// Options sizes the generated data set
type Options struct {
	Users            int
	Companies        int
	EventsPerCompany int
	Password         string
}

// Result counts what was written
type Result struct {
	Users       int
	Companies   int
	Events      int
	PromoCodes  int
	Subscribers int
}

// Seeder generates fake marketplace data through the domain constructors,
// so everything it writes passes the same validation as API input
type Seeder struct {
	repos  Repositories
	faker  *gofakeit.Faker
	logger *zap.Logger
	now    func() time.Time
}

// NewSeeder creates a seeder. The same non-zero seed reproduces the same
// data; 0 picks a random one.
func NewSeeder(repos Repositories, seed uint64, logger *zap.Logger) *Seeder {
	return &Seeder{
		repos:  repos,
		faker:  gofakeit.New(seed),
		logger: logger,
		now:    time.Now,
	}
}

// Run writes opts.Users users, opts.Companies companies owned by the first
// users, their events and a round of subscriptions
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Users < 1 {
		return nil, fmt.Errorf("at least one user is required")
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}

	categories, err := s.repos.Categories.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	res := &Result{}
	users := make([]*identity.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := identity.NewUser(s.email(i), s.faker.Name(), opts.Password)
		if err != nil {
			return res, fmt.Errorf("build user: %w", err)
		}
		if err := s.repos.Users.Create(ctx, u); err != nil {
			return res, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		users = append(users, u)
		res.Users++
	}

	companies := make([]*company.Company, 0, opts.Companies)
	for i := 0; i < opts.Companies; i++ {
		owner := users[i%len(users)]
		c, err := s.createCompany(ctx, owner.ID)
		if err != nil {
			return res, err
		}
		companies = append(companies, c)
		res.Companies++

		for j := 0; j < opts.EventsPerCompany; j++ {
			e, err := s.createEvent(ctx, owner.ID, c.ID, categories)
			if err != nil {
				return res, err
			}
			res.Events++

			if e.Price.IsPositive() {
				if err := s.createPromoCode(ctx, e.ID); err != nil {
					return res, err
				}
				res.PromoCodes++
			}
		}
	}

	if len(companies) > 0 {
		for i, u := range users {
			c := companies[(i+1)%len(companies)]
			if c.OwnerID == u.ID {
				continue
			}
			if err := s.repos.Subscribers.Create(ctx, company.NewSubscriber(c.ID, u.ID)); err != nil {
				return res, fmt.Errorf("subscribe %s: %w", u.Email, err)
			}
			res.Subscribers++
		}
	}

	s.logger.Info("Seed data written",
		zap.Int("users", res.Users),
		zap.Int("companies", res.Companies),
		zap.Int("events", res.Events),
		zap.Int("promo_codes", res.PromoCodes),
		zap.Int("subscribers", res.Subscribers),
	)
	return res, nil
}

// email is unique per index so reruns against a fresh database never collide
func (s *Seeder) email(i int) string {
	return fmt.Sprintf("%s.%d@uevent.test", strings.ToLower(s.faker.Username()), i+1)
}

func (s *Seeder) createCompany(ctx context.Context, ownerID uuid.UUID) (*company.Company, error) {
	name := s.faker.Company()
	c, err := company.NewCompany(ownerID, company.CompanyDetails{
		Name:        name,
		Email:       "hello@" + strings.ToLower(s.faker.DomainName()),
		Location:    s.faker.City() + ", " + s.faker.Country(),
		Description: s.faker.Paragraph(1, 3, 12, " "),
		Website:     s.faker.URL(),
		Phone:       s.faker.Phone(),
		SocialMedia: []string{"https://x.com/" + strings.ToLower(s.faker.Username())},
	})
	if err != nil {
		return nil, fmt.Errorf("build company: %w", err)
	}
	if err := s.repos.Companies.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create company %s: %w", name, err)
	}
	if err := s.repos.Members.Create(ctx, company.NewOwner(c.ID, ownerID)); err != nil {
		return nil, fmt.Errorf("add owner of %s: %w", name, err)
	}
	return c, nil
}

func (s *Seeder) createEvent(ctx context.Context, organizerID, companyID uuid.UUID, categories []catalog.Category) (*event.Event, error) {
	price := decimal.Zero
	if s.faker.Bool() {
		price = decimal.NewFromFloat(s.faker.Price(5, 150)).Round(2)
	}
	var maxAttendees *int
	if s.faker.Bool() {
		n := s.faker.Number(20, 500)
		maxAttendees = &n
	}
	var categoryID *uuid.UUID
	if len(categories) > 0 {
		id := categories[s.faker.IntN(len(categories))].ID
		categoryID = &id
	}

	now := s.now()
	e, err := event.NewEvent(organizerID, event.Details{
		Title:        strings.TrimSuffix(s.faker.HackerPhrase(), "!"),
		Description:  s.faker.Paragraph(2, 4, 15, "\n\n"),
		Location:     s.faker.Street() + ", " + s.faker.City(),
		Coordinates:  fmt.Sprintf("%.5f,%.5f", s.faker.Latitude(), s.faker.Longitude()),
		Date:         s.faker.DateRange(now.Add(24*time.Hour), now.AddDate(0, 3, 0)).Truncate(time.Hour),
		Price:        price,
		MaxAttendees: maxAttendees,
		Format:       event.AllFormats[s.faker.IntN(len(event.AllFormats))],
		Theme:        event.AllThemes[s.faker.IntN(len(event.AllThemes))],
		PublishDate:  now,
		CompanyID:    &companyID,
		CategoryID:   categoryID,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("build event: %w", err)
	}
	e.Publish()
	e.ClearDomainEvents()

	if err := s.repos.Events.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create event %s: %w", e.Title, err)
	}
	return e, nil
}

func (s *Seeder) createPromoCode(ctx context.Context, eventID uuid.UUID) error {
	code := strings.ToUpper(s.faker.LetterN(6)) + fmt.Sprintf("%02d", s.faker.Number(10, 50))
	discount := decimal.NewFromInt(int64(s.faker.Number(1, 5))).Div(decimal.NewFromInt(10))
	p, err := event.NewPromoCode(eventID, code, discount)
	if err != nil {
		return fmt.Errorf("build promo code: %w", err)
	}
	if err := s.repos.PromoCodes.Create(ctx, p); err != nil {
		return fmt.Errorf("create promo code %s: %w", code, err)
	}
	return nil
}
