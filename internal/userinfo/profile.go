package userinfo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProfileNotFound = errors.New("user info not found")
	ErrInvalidProfile  = errors.New("invalid user info")
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type WeightUnit string

const (
	WeightUnitKG WeightUnit = "KG"
	WeightUnitLB WeightUnit = "LB"
)

// HeightUnit US means feet + inches; SI means centimeters, stored in HeightFt.
type HeightUnit string

const (
	HeightUnitUS HeightUnit = "US"
	HeightUnitSI HeightUnit = "SI"
)

type TrainingIntensity string

const (
	IntensityAmateur      TrainingIntensity = "AMATEUR"
	IntensityExperienced  TrainingIntensity = "EXPERIENCED"
	IntensityProfessional TrainingIntensity = "PROFESSIONAL"
)

type Goal string

const (
	GoalDeficit  Goal = "DEFICIT"
	GoalSurplus  Goal = "SURPLUS"
	GoalMaintain Goal = "MAINTAIN"
)

type Profile struct {
	UserID            int               `json:"-"`
	Username          string            `json:"username,omitempty"`
	Email             string            `json:"email,omitempty"`
	Gender            Gender            `json:"gender"`
	Age               int               `json:"age"`
	Weight            float64           `json:"weight"`
	WeightUnit        WeightUnit        `json:"weight_unit"`
	HeightFt          float64           `json:"height_ft"`
	HeightIn          float64           `json:"height_in"`
	HeightUnit        HeightUnit        `json:"height_unit"`
	TrainingIntensity TrainingIntensity `json:"training_intensity"`
	Goal              Goal              `json:"goal"`
	StreakGoal        int               `json:"streak_goal"`
}

// Normalize upper-cases the enum fields and validates the profile.
func (p *Profile) Normalize() error {
	p.Gender = Gender(strings.ToUpper(strings.TrimSpace(string(p.Gender))))
	p.WeightUnit = WeightUnit(strings.ToUpper(strings.TrimSpace(string(p.WeightUnit))))
	p.HeightUnit = HeightUnit(strings.ToUpper(strings.TrimSpace(string(p.HeightUnit))))
	p.TrainingIntensity = TrainingIntensity(strings.ToUpper(strings.TrimSpace(string(p.TrainingIntensity))))
	p.Goal = Goal(strings.ToUpper(strings.TrimSpace(string(p.Goal))))

	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return fmt.Errorf("%w: gender [%s]", ErrInvalidProfile, p.Gender)
	}
	switch p.WeightUnit {
	case WeightUnitKG, WeightUnitLB:
	default:
		return fmt.Errorf("%w: weight unit [%s]", ErrInvalidProfile, p.WeightUnit)
	}
	switch p.HeightUnit {
	case HeightUnitUS, HeightUnitSI:
	default:
		return fmt.Errorf("%w: height unit [%s]", ErrInvalidProfile, p.HeightUnit)
	}
	switch p.TrainingIntensity {
	case IntensityAmateur, IntensityExperienced, IntensityProfessional:
	default:
		return fmt.Errorf("%w: training intensity [%s]", ErrInvalidProfile, p.TrainingIntensity)
	}
	switch p.Goal {
	case GoalDeficit, GoalSurplus, GoalMaintain:
	default:
		return fmt.Errorf("%w: goal [%s]", ErrInvalidProfile, p.Goal)
	}

	if p.Age < 0 || p.Weight < 0 || p.HeightFt < 0 || p.HeightIn < 0 || p.StreakGoal < 0 {
		return fmt.Errorf("%w: negative value", ErrInvalidProfile)
	}

	return nil
}
