package recommendation

import (
	"fmt"
	"math"

	"github.com/rufit/rufitserver/internal/userinfo"
	"github.com/rufit/rufitserver/internal/workouts"
	"github.com/rufit/rufitserver/pkg"
)

const (
	DeloadFactor        = 0.8
	PlateauWeightFactor = 0.95
)

// Strategy is a position in the plateau intervention cycle.
type Strategy int

const (
	StrategyNone Strategy = iota - 1
	StrategyReduceWeightIncreaseReps
	StrategyHoldWeightDecreaseRepsAddSet
	StrategyChangeRepRange
	StrategyDeload
	StrategySuggestAlternative

	strategiesCount = 5
)

func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyReduceWeightIncreaseReps:
		return "reduce_weight_increase_reps"
	case StrategyHoldWeightDecreaseRepsAddSet:
		return "hold_weight_decrease_reps_add_set"
	case StrategyChangeRepRange:
		return "change_rep_range"
	case StrategyDeload:
		return "deload"
	case StrategySuggestAlternative:
		return "suggest_alternative"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

func (s Strategy) valid() bool {
	return s >= 0 && s < strategiesCount
}

// next advances the cycle. Anything that is not a known strategy restarts it.
func (s Strategy) next() Strategy {
	if !s.valid() {
		return StrategyReduceWeightIncreaseReps
	}
	return (s + 1) % strategiesCount
}

type alternativeFinder interface {
	Alternative(name string, pick func(n int) int) (string, bool)
}

// PlateauCycler walks the intervention cycle per exercise. It is not safe
// for concurrent use; each recommendation run owns its own cycler.
type PlateauCycler struct {
	alternatives alternativeFinder
	pick         func(n int) int
	last         map[string]Strategy
}

// NewPlateauCycler starts from the given per-exercise strategies, which may be nil.
func NewPlateauCycler(alternatives alternativeFinder, pick func(n int) int, initial map[string]Strategy) *PlateauCycler {
	last := make(map[string]Strategy, len(initial))
	for exercise, s := range initial {
		last[exercise] = s
	}
	return &PlateauCycler{
		alternatives: alternatives,
		pick:         pick,
		last:         last,
	}
}

// LastStrategy returns StrategyNone for exercises without a recorded plateau.
func (c *PlateauCycler) LastStrategy(exercise string) Strategy {
	s, ok := c.last[exercise]
	if !ok {
		return StrategyNone
	}
	return s
}

func (c *PlateauCycler) Recommend(
	exercise string,
	last workouts.Workout,
	goal userinfo.Goal,
	repRange RepRange,
	unit userinfo.WeightUnit,
) (Recommendation, Strategy) {
	label := unitLabel(unit)
	strategy := c.LastStrategy(exercise).next()

	var rec Recommendation
	applied := true
	switch strategy {
	case StrategyReduceWeightIncreaseReps:
		rec = Recommendation{
			Sets:   last.Sets,
			Reps:   repRange.Max,
			Weight: pkg.Round2(last.Weight * PlateauWeightFactor),
		}
		rec.Notes = fmt.Sprintf(
			"Plateau detected. Drop to ~%.1f %s and aim for %d reps.",
			rec.Weight, label, rec.Reps,
		)
	case StrategyHoldWeightDecreaseRepsAddSet:
		rec = Recommendation{
			Sets:   last.Sets + 1,
			Reps:   repRange.Min,
			Weight: pkg.Round2(last.Weight),
		}
		rec.Notes = fmt.Sprintf(
			"Plateau persists. Keep %.1f %s and do %d sets of %d reps.",
			rec.Weight, label, rec.Sets, rec.Reps,
		)
	case StrategyChangeRepRange:
		if goal != userinfo.GoalSurplus || repRange != StrengthRange {
			applied = false
			break
		}
		rec = Recommendation{
			Sets:   last.Sets,
			Reps:   HypertrophyRange.Min,
			Weight: pkg.Round2(last.Weight),
		}
		rec.Notes = fmt.Sprintf(
			"Plateau persists. Switch to the %d-%d rep range: %d reps at %.1f %s.",
			HypertrophyRange.Min, HypertrophyRange.Max, rec.Reps, rec.Weight, label,
		)
	case StrategyDeload:
		rec = deload(last, label)
	case StrategySuggestAlternative:
		var alt string
		if c.alternatives != nil {
			alt, applied = c.alternatives.Alternative(exercise, c.pick)
		} else {
			applied = false
		}
		if !applied {
			break
		}
		rec = Recommendation{
			Sets:   3,
			Reps:   10,
			Weight: 0,
			Notes:  fmt.Sprintf("Plateau persists. Try an alternative exercise like '%s' focusing on good form.", alt),
		}
	}

	if !applied {
		strategy = StrategyDeload
		rec = deload(last, label)
	}

	c.last[exercise] = strategy
	return rec, strategy
}

func deload(last workouts.Workout, label string) Recommendation {
	rec := Recommendation{
		Sets:   max(1, int(math.Floor(float64(last.Sets)*DeloadFactor))),
		Reps:   last.Reps,
		Weight: pkg.Round2(last.Weight * DeloadFactor),
	}
	rec.Notes = fmt.Sprintf(
		"Plateau detected. Deload: %d sets at ~%.1f %s to recover, then build back up.",
		rec.Sets, rec.Weight, label,
	)
	return rec
}
