package db

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NewDBPoolParams struct {
	DBHost         string
	DBPort         string
	DBName         string
	DBUser         string
	DBPassword     string
	TracingEnabled bool
}

// ConnString builds the postgres URL shared by the pgx pool and the migrator.
func ConnString(params NewDBPoolParams) string {
	user := params.DBUser
	if user == "" {
		user = "postgres"
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(params.DBHost, params.DBPort),
		Path:   "/" + params.DBName,
	}
	if params.DBPassword != "" {
		u.User = url.UserPassword(user, params.DBPassword)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

func NewDBPool(ctx context.Context, params NewDBPoolParams) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(ConnString(params))
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if params.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return db, nil
}
