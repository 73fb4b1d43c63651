package recommendation

import (
	"fmt"
	"strings"

	"github.com/rufit/rufitserver/internal/userinfo"
	"github.com/rufit/rufitserver/internal/workouts"
	"github.com/rufit/rufitserver/pkg"
)

// LargeJumpThreshold is the relative weight increase above which non-amateurs
// keep the weight and add a rep instead.
const LargeJumpThreshold = 0.075

type RepRange struct {
	Min int
	Max int
}

var (
	StrengthRange    = RepRange{Min: 4, Max: 8}
	EnduranceRange   = RepRange{Min: 8, Max: 15}
	HypertrophyRange = RepRange{Min: 8, Max: 12}
)

func RepRangeForGoal(goal userinfo.Goal) RepRange {
	switch goal {
	case userinfo.GoalSurplus:
		return StrengthRange
	case userinfo.GoalMaintain, userinfo.GoalDeficit:
		return EnduranceRange
	default:
		return HypertrophyRange
	}
}

type Recommendation struct {
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
	Notes  string  `json:"notes"`
}

func baseIncrement(intensity userinfo.TrainingIntensity, unit userinfo.WeightUnit) float64 {
	amateur := intensity == userinfo.IntensityAmateur
	if unit == userinfo.WeightUnitLB {
		if amateur {
			return 2.5
		}
		return 5.0
	}
	if amateur {
		return 1.0
	}
	return 2.5
}

func unitLabel(unit userinfo.WeightUnit) string {
	if unit == "" {
		return "kg"
	}
	return strings.ToLower(string(unit))
}

// NextTarget applies progressive overload: fill the rep range first, then add weight.
func NextTarget(
	last workouts.Workout,
	intensity userinfo.TrainingIntensity,
	class ProfileClass,
	repRange RepRange,
	unit userinfo.WeightUnit,
) Recommendation {
	increment := baseIncrement(intensity, unit) * AdjustmentFactor(class)
	label := unitLabel(unit)

	rec := Recommendation{
		Sets:   last.Sets,
		Reps:   last.Reps,
		Weight: last.Weight,
	}

	if last.Reps < repRange.Max {
		rec.Reps = min(last.Reps+1, repRange.Max)
		rec.Weight = pkg.Round2(rec.Weight)
		rec.Notes = fmt.Sprintf("Aim for %d reps at %.1f %s.", rec.Reps, rec.Weight, label)
		return rec
	}

	relative := 0.1
	if last.Weight > 0 {
		relative = increment / last.Weight
	}

	if intensity != userinfo.IntensityAmateur && last.Weight > 0 && relative > LargeJumpThreshold {
		rec.Reps = last.Reps + 1
		rec.Weight = pkg.Round2(rec.Weight)
		rec.Notes = fmt.Sprintf(
			"Good work! Stay at %.1f %s and push for %d reps if your form is solid.",
			rec.Weight, label, rec.Reps,
		)
		return rec
	}

	rec.Weight = pkg.Round2(last.Weight + increment)
	rec.Reps = repRange.Min
	rec.Notes = fmt.Sprintf("Increase weight to ~%.1f %s. Aim for %d reps.", rec.Weight, label, rec.Reps)
	return rec
}
