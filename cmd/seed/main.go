package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	catalogapp "github.com/t1tandr/uevent/internal/application/catalog"
	"github.com/t1tandr/uevent/internal/infrastructure/config"
	"github.com/t1tandr/uevent/internal/infrastructure/logger"
	"github.com/t1tandr/uevent/internal/infrastructure/migration"
	"github.com/t1tandr/uevent/internal/infrastructure/persistence"
	"github.com/t1tandr/uevent/internal/infrastructure/seed"
	"github.com/t1tandr/uevent/migrations"
)

func main() {
	var (
		users     = flag.Int("users", 20, "Number of users")
		companies = flag.Int("companies", 5, "Number of companies, owned by the first users")
		events    = flag.Int("events", 4, "Events per company")
		seedValue = flag.Uint64("seed", 0, "Random seed; 0 picks a random one")
		password  = flag.String("password", seed.DefaultPassword, "Password for every seeded account")
		migrate   = flag.Bool("migrate", false, "Apply pending migrations before seeding")
		timeout   = flag.Duration("timeout", 2*time.Minute, "Give up after this long")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if cfg.App.Env == "production" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := persistence.Open(&cfg.Database,
		persistence.WithGormLogger(logger.NewGormLogger(log, logger.MapGormLogLevel("warn"))))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if *migrate {
		if err := applyMigrations(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	created, err := catalogapp.NewCategoryService(categoryRepo, log).EnsureDefaults(ctx)
	if err != nil {
		log.Fatal("Failed to create default categories", zap.Error(err))
	}
	if created > 0 {
		log.Info("Default categories created", zap.Int("count", created))
	}

	seeder := seed.NewSeeder(seed.Repositories{
		Users:       persistence.NewGormUserRepository(db.DB),
		Companies:   persistence.NewGormCompanyRepository(db.DB),
		Members:     persistence.NewGormMemberRepository(db.DB),
		Subscribers: persistence.NewGormSubscriberRepository(db.DB),
		Events:      persistence.NewGormEventRepository(db.DB),
		PromoCodes:  persistence.NewGormPromoCodeRepository(db.DB),
		Categories:  categoryRepo,
	}, *seedValue, log)

	if _, err := seeder.Run(ctx, seed.Options{
		Users:            *users,
		Companies:        *companies,
		EventsPerCompany: *events,
		Password:         *password,
	}); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Seeded accounts share one password", zap.String("password", *password))
}

func applyMigrations(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	src, err := migration.FromFS(migrations.FS)
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, src, log)
	if err != nil {
		return err
	}
	// Close would also close the shared *sql.DB
	return m.Up()
}
