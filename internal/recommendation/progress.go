package recommendation

import (
	"math"

	"github.com/rufit/rufitserver/internal/workouts"
)

const (
	PlateauWindow     = 3
	ProgressThreshold = 0.02
)

type State string

const (
	StateInsufficient State = "insufficient"
	StateProgressing  State = "progressing"
	StatePlateaued    State = "plateaued"
	StateStalled      State = "stalled"
)

type Analysis struct {
	State State
	Last  workouts.Workout
	// Volumes of the analysed window, oldest first.
	Volumes []float64
}

// Volume is sets x reps x weight, with weight floored at 1.0 so bodyweight
// work still registers.
func Volume(sets, reps int, weight float64) float64 {
	return float64(sets) * float64(reps) * math.Max(weight, 1.0)
}

// Analyze classifies the trend of one exercise. history must be sorted by
// PerformedAt ascending.
func Analyze(history []workouts.Workout) Analysis {
	if len(history) == 0 {
		return Analysis{State: StateInsufficient}
	}

	last := history[len(history)-1]
	if len(history) < 2 {
		return Analysis{State: StateInsufficient, Last: last}
	}

	recent := history[max(0, len(history)-(PlateauWindow+1)):]
	volumes := make([]float64, 0, len(recent))
	for _, w := range recent {
		volumes = append(volumes, Volume(w.Sets, w.Reps, w.Weight))
	}

	a := Analysis{Last: last, Volumes: volumes}
	n := len(volumes)
	switch {
	case volumes[n-1] > volumes[n-2]*(1+ProgressThreshold):
		a.State = StateProgressing
	case n >= PlateauWindow && flatWindow(volumes[n-PlateauWindow:]):
		a.State = StatePlateaued
	default:
		a.State = StateStalled
	}

	return a
}

// flatWindow reports whether no session in window rose meaningfully above its first one.
func flatWindow(window []float64) bool {
	limit := window[0] * (1 + ProgressThreshold)
	for _, v := range window[1:] {
		if v > limit {
			return false
		}
	}
	return true
}
