package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rufit/rufitserver/internal/telemetry/tracing"
	"github.com/rufit/rufitserver/pkg"
)

type User struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type UsersRepo struct {
	db *pgxpool.Pool
}

func NewUsersRepo(db *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{
		db: db,
	}
}

func (r *UsersRepo) Create(ctx context.Context, username, email, passwordHash string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var emailArg *string
	if email != "" {
		emailArg = &email
	}

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO users (username, email, password_hash, created_at)
			VALUES ($1, $2, $3, now())
			RETURNING id;`,
		username, emailArg, passwordHash,
	).Scan(&id)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return 0, ErrUserExists
		}
		return 0, err
	}

	return id, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByUsername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var u User
	var email *string
	err = r.db.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1;`,
		username,
	).Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if email != nil {
		u.Email = *email
	}

	return &u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1;`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
