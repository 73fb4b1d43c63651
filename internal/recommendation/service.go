package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rufit/rufitserver/internal/telemetry/metrics"
	"github.com/rufit/rufitserver/internal/telemetry/tracing"
	"github.com/rufit/rufitserver/internal/userinfo"
	"github.com/rufit/rufitserver/internal/workouts"
)

const (
	MsgProfileNotFound = "User profile data not found."
	MsgNoHistory       = "Log your first workout to start receiving recommendations!"
	noteLogAgain       = "Log this exercise again to get your first recommendation."
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=recommendation_test

type profileSource interface {
	Get(ctx context.Context, userID int) (*userinfo.Profile, error)
}

type historySource interface {
	ListByUser(ctx context.Context, userID int) ([]workouts.Workout, error)
}

// Result holds exactly one of Error, Message or Recommendations.
type Result struct {
	Error           string
	Message         string
	Recommendations map[string]Recommendation
}

func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.Error != "":
		return json.Marshal(map[string]string{"error": r.Error})
	case r.Message != "":
		return json.Marshal(map[string]string{"message": r.Message})
	case r.Recommendations == nil:
		return []byte("{}"), nil
	default:
		return json.Marshal(r.Recommendations)
	}
}

type Service struct {
	profiles     profileSource
	history      historySource
	alternatives alternativeFinder
	plateaus     PlateauStore
	metrics      *metrics.Manager
	// Pick chooses among alternative exercises; nil means uniform random.
	Pick func(n int) int
}

// NewService wires the engine. A nil plateau store keeps the cycle per run only.
func NewService(
	profiles profileSource,
	history historySource,
	alternatives alternativeFinder,
	plateaus PlateauStore,
	metricsManager *metrics.Manager,
) *Service {
	if plateaus == nil {
		plateaus = EphemeralPlateauStore{}
	}
	return &Service{
		profiles:     profiles,
		history:      history,
		alternatives: alternatives,
		plateaus:     plateaus,
		metrics:      metricsManager,
	}
}

// CalculateRecommendations computes the next target per exercise for the user.
// The error return is reserved for failing collaborators; a missing profile or
// an empty history is reported through the Result.
func (s *Service) CalculateRecommendations(ctx context.Context, userID int) (_ *Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.recommendations.calculate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.HistogramRecommendationDuration.Observe(time.Since(start).Seconds())
		}
	}()

	profile, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, userinfo.ErrProfileNotFound) || (err == nil && profile == nil) {
		log.Warnf("cannot generate recommendations: user info not found for user %d", userID)
		return &Result{Error: MsgProfileNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	history, err := s.history.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get workout history: %w", err)
	}
	if len(history) == 0 {
		log.Debugf("no workout history for user %d", userID)
		return &Result{Message: MsgNoHistory}, nil
	}

	stored, err := s.plateaus.Load(ctx, userID)
	if err != nil {
		log.Errorf("load plateau state for user %d: %s", userID, err)
		stored = nil
	}
	cycler := NewPlateauCycler(s.alternatives, s.Pick, stored)

	class := Classify(*profile)
	repRange := RepRangeForGoal(profile.Goal)
	log.Tracef("user %d classified as %s/%s", userID, class.BMICategory, class.Gender)

	sorted := make([]workouts.Workout, len(history))
	copy(sorted, history)
	// rows of one logged session share PerformedAt; ID keeps their logging order
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PerformedAt.Equal(sorted[j].PerformedAt) {
			return sorted[i].PerformedAt.Before(sorted[j].PerformedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var order []string
	byExercise := make(map[string][]workouts.Workout)
	for _, w := range sorted {
		if _, seen := byExercise[w.Exercise]; !seen {
			order = append(order, w.Exercise)
		}
		byExercise[w.Exercise] = append(byExercise[w.Exercise], w)
	}

	recommendations := make(map[string]Recommendation, len(order))
	for _, exercise := range order {
		analysis := Analyze(byExercise[exercise])
		if s.metrics != nil {
			s.metrics.CounterExerciseStates.WithLabelValues(string(analysis.State)).Inc()
		}

		last := analysis.Last
		switch analysis.State {
		case StateInsufficient:
			recommendations[exercise] = Recommendation{
				Sets:   last.Sets,
				Reps:   last.Reps,
				Weight: last.Weight,
				Notes:  noteLogAgain,
			}
		case StateProgressing:
			recommendations[exercise] = NextTarget(last, profile.TrainingIntensity, class, repRange, profile.WeightUnit)
		case StatePlateaued:
			rec, strategy := cycler.Recommend(exercise, last, profile.Goal, repRange, profile.WeightUnit)
			recommendations[exercise] = rec
			log.Debugf("plateau for user %d, exercise [%s]: %s", userID, exercise, strategy)
			if s.metrics != nil {
				s.metrics.CounterPlateauStrategies.WithLabelValues(strategy.String()).Inc()
			}
			if err := s.plateaus.Save(ctx, userID, exercise, strategy); err != nil {
				log.Errorf("save plateau state for user %d, exercise [%s]: %s", userID, exercise, err)
			}
		case StateStalled:
			recommendations[exercise] = Recommendation{
				Sets:   last.Sets,
				Reps:   last.Reps,
				Weight: last.Weight,
				Notes: fmt.Sprintf(
					"Try repeating %dx%d at %.1f %s, focus on technique.",
					last.Sets, last.Reps, last.Weight, unitLabel(profile.WeightUnit),
				),
			}
		}
	}

	log.Debugf("generated %d recommendations for user %d", len(recommendations), userID)
	return &Result{Recommendations: recommendations}, nil
}
