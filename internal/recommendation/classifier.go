package recommendation

import (
	"errors"
	"fmt"

	"github.com/rufit/rufitserver/internal/userinfo"
)

const (
	poundsPerKilogram = 2.20462
	metersPerInch     = 0.0254
)

var errClassification = errors.New("cannot classify profile")

type BMICategory string

const (
	BMIUnderweight BMICategory = "underweight"
	BMINormal      BMICategory = "normal"
	BMIOverweight  BMICategory = "overweight"
	BMIObese       BMICategory = "obese"
	BMIUnknown     BMICategory = "unknown"
)

type ProfileClass struct {
	BMICategory BMICategory
	Gender      userinfo.Gender
}

// adjustmentFactors scales the weight increment per (bmi category, gender).
var adjustmentFactors = map[ProfileClass]float64{
	{BMINormal, userinfo.GenderMale}:        1.0,
	{BMINormal, userinfo.GenderFemale}:      0.9,
	{BMINormal, userinfo.GenderOther}:       0.95,
	{BMIUnderweight, userinfo.GenderMale}:   0.9,
	{BMIUnderweight, userinfo.GenderFemale}: 0.85,
	{BMIOverweight, userinfo.GenderMale}:    0.9,
	{BMIOverweight, userinfo.GenderFemale}:  0.85,
	{BMIObese, userinfo.GenderMale}:         0.8,
	{BMIObese, userinfo.GenderFemale}:       0.8,
	{BMIUnknown, userinfo.GenderMale}:       1.0,
	{BMIUnknown, userinfo.GenderFemale}:     0.9,
	{BMIUnknown, userinfo.GenderOther}:      0.95,
}

// BMI computes the body mass index from the stored profile units.
// With the SI height unit, HeightFt holds centimeters.
func BMI(p userinfo.Profile) (float64, error) {
	var kg float64
	switch p.WeightUnit {
	case userinfo.WeightUnitKG:
		kg = p.Weight
	case userinfo.WeightUnitLB:
		kg = p.Weight / poundsPerKilogram
	default:
		return 0, fmt.Errorf("%w: weight unit [%s]", errClassification, p.WeightUnit)
	}

	var meters float64
	switch p.HeightUnit {
	case userinfo.HeightUnitUS:
		meters = (p.HeightFt*12 + p.HeightIn) * metersPerInch
	case userinfo.HeightUnitSI:
		meters = p.HeightFt / 100.0
	default:
		return 0, fmt.Errorf("%w: height unit [%s]", errClassification, p.HeightUnit)
	}

	if kg <= 0 || meters <= 0 {
		return 0, fmt.Errorf("%w: weight %.2f kg, height %.2f m", errClassification, kg, meters)
	}

	return kg / (meters * meters), nil
}

func categorize(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// Classify never fails: bad body data yields the Unknown category.
func Classify(p userinfo.Profile) ProfileClass {
	bmi, err := BMI(p)
	if err != nil {
		return ProfileClass{BMICategory: BMIUnknown, Gender: p.Gender}
	}
	return ProfileClass{BMICategory: categorize(bmi), Gender: p.Gender}
}

func AdjustmentFactor(class ProfileClass) float64 {
	if f, ok := adjustmentFactors[class]; ok {
		return f
	}
	if f, ok := adjustmentFactors[ProfileClass{BMICategory: BMINormal, Gender: class.Gender}]; ok {
		return f
	}
	return 1.0
}
