package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies all pending schema migrations and returns the number applied.
func Migrate(ctx context.Context, sqlDB *sql.DB) (int, error) {
	migrationsFS, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrationsFS)
	if err != nil {
		return 0, fmt.Errorf("create goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	for _, r := range results {
		log.Debugf("migration applied: %d [%s]", r.Source.Version, r.Source.Path)
	}

	return len(results), nil
}

// MigrateURL opens a short-lived database/sql connection and migrates through it.
func MigrateURL(ctx context.Context, params NewDBPoolParams) (int, error) {
	connStr := ConnString(params)
	if params.DBHost == "localhost" || params.DBHost == "127.0.0.1" {
		connStr += "?sslmode=disable"
	}

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return 0, fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Warnf("close migration db conn: %s", err)
		}
	}()

	if err := sqlDB.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("ping db: %w", err)
	}

	return Migrate(ctx, sqlDB)
}
