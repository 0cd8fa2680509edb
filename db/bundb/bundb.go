package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	activitydb "github.com/capital-ladder/backend/app/modules/activity/infrastructure/repositories"
	challengedb "github.com/capital-ladder/backend/app/modules/challenge/infrastructure/repositories"
	profiledb "github.com/capital-ladder/backend/app/modules/profile/infrastructure/repositories"
	"github.com/capital-ladder/backend/config"
	"github.com/capital-ladder/backend/db/bundb/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// DBService bundles the repositories over one connection pool.
type DBService struct {
	ProfileDB   *profiledb.ProfileRepoImpl
	ChallengeDB *challengedb.ChallengeRepoImpl
	ActivityDB  *activitydb.ActivityRepoImpl
	db          *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// NewBunDBService initializes a DBService from the Postgres configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*DBService, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("Database connection established")

	return &DBService{
		ProfileDB:   &profiledb.ProfileRepoImpl{DB: db},
		ChallengeDB: &challengedb.ChallengeRepoImpl{DB: db},
		ActivityDB:  &activitydb.ActivityRepoImpl{DB: db},
		db:          db,
	}, nil
}

// Migrate runs any pending migrations.
func (s *DBService) Migrate(ctx context.Context, logger *slog.Logger) error {
	migrator := migrate.NewMigrator(s.db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migrator: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if group.IsZero() {
		logger.Info("No new migrations to run")
		return nil
	}
	logger.Info("Migrations applied", slog.String("group", group.String()))
	return nil
}
