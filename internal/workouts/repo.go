package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rufit/rufitserver/internal/telemetry/tracing"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// AddSession stores every workout of one session in a single transaction.
func (r *Repo) AddSession(ctx context.Context, session []Workout) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workouts.count", len(session)))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	added, err := insertWorkouts(ctx, tx, session)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return added, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID int) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listByUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, workout_name, session_id::text, exercise, sets, reps, weight, performed_at
			FROM workout
			WHERE user_id = $1
			ORDER BY performed_at DESC, id DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Workout, 0)
	for rows.Next() {
		var w Workout
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.WorkoutName, &w.SessionID, &w.Exercise,
			&w.Sets, &w.Reps, &w.Weight, &w.PerformedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		list = append(list, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// ReplaceSession swaps all rows of a session for the given ones, keeping the
// original performed_at time of the session.
func (r *Repo) ReplaceSession(ctx context.Context, userID int, sessionID string, session []Workout) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.replaceSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID), attribute.String("session.id", sessionID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	var performedAt *time.Time
	if err := tx.QueryRow(
		ctx,
		`SELECT min(performed_at) FROM workout WHERE user_id = $1 AND session_id = $2;`,
		userID, sessionID,
	).Scan(&performedAt); err != nil {
		return err
	}
	if performedAt == nil {
		return ErrSessionNotFound
	}

	if _, err := tx.Exec(
		ctx,
		`DELETE FROM workout WHERE user_id = $1 AND session_id = $2;`,
		userID, sessionID,
	); err != nil {
		return err
	}

	for i := range session {
		session[i].UserID = userID
		session[i].SessionID = sessionID
		session[i].PerformedAt = *performedAt
	}
	if _, err := insertWorkouts(ctx, tx, session); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repo) DeleteSession(ctx context.Context, userID int, sessionID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID), attribute.String("session.id", sessionID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workout WHERE user_id = $1 AND session_id = $2;`,
		userID, sessionID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func insertWorkouts(ctx context.Context, tx pgx.Tx, session []Workout) ([]Workout, error) {
	added := make([]Workout, 0, len(session))
	for _, w := range session {
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO workout
					(user_id, workout_name, session_id, exercise, sets, reps, weight, performed_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id;`,
			w.UserID, w.WorkoutName, w.SessionID, w.Exercise, w.Sets, w.Reps, w.Weight, w.PerformedAt,
		).Scan(&w.ID); err != nil {
			return nil, fmt.Errorf("insert workout [%s]: %w", w.Exercise, err)
		}
		added = append(added, w)
	}
	return added, nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		log.Errorf("rollback tx: %s", err)
	}
}
