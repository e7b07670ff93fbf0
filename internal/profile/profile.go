// Package profile manages the user profile and onboarding draft documents.
package profile

import (
	"log/slog"
	"time"

	"github.com/apexfit/apexfit/internal/calories"
	"github.com/apexfit/apexfit/internal/errors"
)

// Unit preferences. Biometrics are stored normalized (kg, cm); the
// preferences only steer presentation and input parsing.
const (
	WeightUnitKg   = "kg"
	WeightUnitLbs  = "lbs"
	HeightUnitCm   = "cm"
	HeightUnitFtIn = "ft_in"
)

const lbsPerKg = 0.453592

// TrackingMode selects how much detail the workout logger asks for.
const (
	TrackingSimple   = "simple"
	TrackingAdvanced = "advanced"
)

var ErrInvalidProfile = errors.NewSentinel("invalid profile")

type Units struct {
	Weight string `json:"weight"`
	Height string `json:"height"`
}

// Profile is the per-user identity, biometrics, and fitness metadata.
type Profile struct {
	Email        string                   `json:"email"`
	Name         string                   `json:"name"`
	Surname      string                   `json:"surname"`
	DateOfBirth  string                   `json:"dob"`
	Sex          calories.Sex             `json:"gender"`
	HeightCm     float64                  `json:"heightCm"`
	WeightKg     float64                  `json:"weightKg"`
	// Weight is input only, expressed in the preferred weight unit.
	// Save folds it into WeightKg.
	Weight       float64                  `json:"weight,omitempty"`
	Units        Units                    `json:"units"`
	FitnessLevel calories.ExperienceLevel `json:"fitnessLevel"`
	Goals        []string                 `json:"goals"`
	TrackingMode string                   `json:"trackingMode"`
	AvatarURL    string                   `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// Validate checks the profile against the ranges the engine relies on.
func (p Profile) Validate(now time.Time) error {
	dob, err := time.Parse(time.DateOnly, p.DateOfBirth)
	if err != nil {
		return errors.Wrap(ErrInvalidProfile, "parse date of birth", slog.String("dob", p.DateOfBirth))
	}
	if dob.After(now) {
		return errors.Wrap(ErrInvalidProfile, "date of birth in the future")
	}
	if p.Sex != calories.SexMale && p.Sex != calories.SexFemale {
		return errors.Wrap(ErrInvalidProfile, "unknown gender", slog.String("gender", string(p.Sex)))
	}
	if p.HeightCm <= 0 || p.WeightKg <= 0 {
		return errors.Wrap(ErrInvalidProfile, "non-positive biometrics")
	}
	switch p.FitnessLevel {
	case calories.ExperienceBeginner, calories.ExperienceIntermediate,
		calories.ExperienceAdvanced, calories.ExperienceExpert:
	default:
		return errors.Wrap(ErrInvalidProfile, "unknown fitness level",
			slog.String("level", string(p.FitnessLevel)))
	}
	switch p.TrackingMode {
	case TrackingSimple, TrackingAdvanced:
	default:
		return errors.Wrap(ErrInvalidProfile, "unknown tracking mode",
			slog.String("mode", p.TrackingMode))
	}
	return nil
}

// NormalizeWeight converts a weight entered in the profile's preferred
// unit to kilograms.
func (p Profile) NormalizeWeight(value float64) float64 {
	if p.Units.Weight == WeightUnitLbs {
		return value * lbsPerKg
	}
	return value
}

// Metrics are the figures derived from the biometrics.
type Metrics struct {
	Age              int     `json:"age"`
	BMR              float64 `json:"bmr"`
	TDEE             float64 `json:"tdee"`
	DailyWaterGoalMl float64 `json:"dailyWaterGoalMl"`
}

// DeriveMetrics computes age, BMR, TDEE, and the hydration goal. The
// profile must have passed Validate.
func (p Profile) DeriveMetrics(now time.Time) Metrics {
	dob, _ := time.Parse(time.DateOnly, p.DateOfBirth)
	age := calories.Age(dob, now)
	bmr := calories.BMR(p.Sex, p.WeightKg, p.HeightCm, age)
	return Metrics{
		Age:              age,
		BMR:              bmr,
		TDEE:             calories.TDEE(bmr, p.FitnessLevel),
		DailyWaterGoalMl: calories.DailyWaterGoal(p.WeightKg),
	}
}

// Draft is the partially filled onboarding form, persisted on every
// change so a closed tab can pick up where it left off.
type Draft struct {
	Name      string `json:"name,omitempty"`
	Surname   string `json:"surname,omitempty"`
	DOB       string `json:"dob,omitempty"`
	Gender    string `json:"gender,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
}
