package userinfo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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

func (r *Repo) Get(ctx context.Context, userID int) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.userinfo.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var p Profile
	var email *string
	err = r.db.QueryRow(
		ctx,
		`SELECT ui.user_id, u.username, u.email, ui.gender, ui.age, ui.weight, ui.weight_unit,
				ui.height_ft, ui.height_in, ui.height_unit, ui.training_intensity, ui.goal, ui.streak_goal
			FROM user_info ui
			JOIN users u ON u.id = ui.user_id
			WHERE ui.user_id = $1;`,
		userID,
	).Scan(
		&p.UserID, &p.Username, &email, &p.Gender, &p.Age, &p.Weight, &p.WeightUnit,
		&p.HeightFt, &p.HeightIn, &p.HeightUnit, &p.TrainingIntensity, &p.Goal, &p.StreakGoal,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if email != nil {
		p.Email = *email
	}

	return &p, nil
}

// Upsert stores the profile and reports whether a new row was created.
func (r *Repo) Upsert(ctx context.Context, p Profile) (created bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.userinfo.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", p.UserID))

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO user_info
				(user_id, gender, age, weight, weight_unit, height_ft, height_in, height_unit,
				 training_intensity, goal, streak_goal, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
			ON CONFLICT (user_id) DO UPDATE SET
				gender = EXCLUDED.gender,
				age = EXCLUDED.age,
				weight = EXCLUDED.weight,
				weight_unit = EXCLUDED.weight_unit,
				height_ft = EXCLUDED.height_ft,
				height_in = EXCLUDED.height_in,
				height_unit = EXCLUDED.height_unit,
				training_intensity = EXCLUDED.training_intensity,
				goal = EXCLUDED.goal,
				streak_goal = EXCLUDED.streak_goal,
				updated_at = now()
			RETURNING (xmax = 0);`,
		p.UserID, p.Gender, p.Age, p.Weight, p.WeightUnit, p.HeightFt, p.HeightIn, p.HeightUnit,
		p.TrainingIntensity, p.Goal, p.StreakGoal,
	).Scan(&created)
	if err != nil {
		return false, err
	}

	return created, nil
}
