package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/rufit/rufitserver/internal/db"
)

func migrate(ctx context.Context) error {
	applied, err := db.MigrateURL(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("RUFIT_DB_PASSWORD"),
	})
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log.Infof("migrations done, %d applied", applied)
	return nil
}
