package workouts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSessionNotFound = errors.New("workout session not found")
	ErrInvalidWorkout  = errors.New("invalid workout")
)

// Workout is one logged exercise of a workout session. Weight 0 means bodyweight.
type Workout struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	WorkoutName string    `json:"workout_name"`
	SessionID   string    `json:"session_id"`
	Exercise    string    `json:"exercise"`
	Sets        int       `json:"sets"`
	Reps        int       `json:"reps"`
	Weight      float64   `json:"weight"`
	PerformedAt time.Time `json:"performed_at"`
}

type ExerciseEntry struct {
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

type SessionRequest struct {
	WorkoutName string          `json:"workout_name"`
	Exercises   []ExerciseEntry `json:"exercises"`
}

func (r *SessionRequest) Validate() error {
	r.WorkoutName = strings.TrimSpace(r.WorkoutName)
	if r.WorkoutName == "" {
		return fmt.Errorf("%w: workout name missing", ErrInvalidWorkout)
	}
	if len(r.Exercises) == 0 {
		return fmt.Errorf("%w: no exercises", ErrInvalidWorkout)
	}
	for i, e := range r.Exercises {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("%w: exercise %d has no name", ErrInvalidWorkout, i)
		}
		if e.Sets <= 0 || e.Reps <= 0 {
			return fmt.Errorf("%w: exercise [%s] needs positive sets and reps", ErrInvalidWorkout, e.Name)
		}
		if e.Weight < 0 {
			return fmt.Errorf("%w: exercise [%s] has negative weight", ErrInvalidWorkout, e.Name)
		}
	}
	return nil
}
