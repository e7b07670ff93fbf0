// Package calories implements the energy and hydration formulas.
//
// BMR uses the Mifflin-St Jeor equation and workout energy expenditure uses
// the standard MET equation (METs x 3.5 x kg / 200 per minute).
package calories

import (
	"math"
	"time"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceExpert       ExperienceLevel = "expert"
)

// activityFactors maps experience level to the TDEE multiplier.
var activityFactors = map[ExperienceLevel]float64{
	ExperienceBeginner:     1.2,
	ExperienceIntermediate: 1.375,
	ExperienceAdvanced:     1.55,
	ExperienceExpert:       1.725,
}

// defaultMETs is assumed for exercises with no MET value on record.
const defaultMETs = 5.0

// Age returns whole years between dateOfBirth and now, never negative.
func Age(dateOfBirth, now time.Time) int {
	years := now.Year() - dateOfBirth.Year()
	if now.Month() < dateOfBirth.Month() ||
		(now.Month() == dateOfBirth.Month() && now.Day() < dateOfBirth.Day()) {
		years--
	}
	return max(years, 0)
}

// BMR returns the basal metabolic rate in kcal/day.
func BMR(sex Sex, weightKg, heightCm float64, ageYears int) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	if sex == SexMale {
		return base + 5
	}
	return base - 161
}

// TDEE scales BMR by the activity factor for the experience level.
// Unknown levels fall back to the beginner factor.
func TDEE(bmr float64, level ExperienceLevel) float64 {
	factor, ok := activityFactors[level]
	if !ok {
		factor = activityFactors[ExperienceBeginner]
	}
	return bmr * factor
}

// DailyWaterGoal returns the resting hydration target in ml (30 ml per kg).
func DailyWaterGoal(weightKg float64) float64 {
	return weightKg * 30
}

// WorkoutWaterBonus returns the extra hydration earned by a workout:
// 250 ml per full 15 minutes.
func WorkoutWaterBonus(duration time.Duration) float64 {
	return math.Floor(duration.Minutes()/15) * 250
}

// HydrationRecommendation returns the in-workout sip target in ml,
// scaling with body weight and elapsed time.
func HydrationRecommendation(weightKg float64, duration time.Duration) float64 {
	return weightKg * 2 * (duration.Minutes() / 15)
}

// AverageMETs averages MET values across the exercises of a session.
// Exercises missing from mets count as defaultMETs. An empty session
// also yields defaultMETs.
func AverageMETs(exerciseIDs []string, mets map[string]float64) float64 {
	if len(exerciseIDs) == 0 {
		return defaultMETs
	}
	var sum float64
	for _, id := range exerciseIDs {
		if value, ok := mets[id]; ok {
			sum += value
		} else {
			sum += defaultMETs
		}
	}
	return sum / float64(len(exerciseIDs))
}

// Workout describes a finished session for energy estimation.
type Workout struct {
	AverageMETs float64
	Duration    time.Duration
	// Strength workouts with long average rests between sets burn less
	// than the raw MET equation suggests.
	IsStrength     bool
	AverageRestSec float64
}

// WorkoutCalories estimates the energy expenditure of a workout in kcal.
// A strength session resting over 180 s per set on average is discounted
// to 70% of the MET estimate.
func WorkoutCalories(weightKg float64, w Workout) float64 {
	perMinute := w.AverageMETs * 3.5 * weightKg / 200
	kcal := perMinute * w.Duration.Minutes()
	if w.IsStrength && w.AverageRestSec > 180 {
		kcal *= 0.7
	}
	return kcal
}

// OneRepMax estimates the one-repetition maximum from a completed set.
// One rep is its own max; up to ten reps uses the Epley formula; beyond
// that the Brzycki formula. Non-positive reps, or reps at which Brzycki
// diverges, yield 0.
func OneRepMax(weightKg float64, reps int) float64 {
	switch {
	case reps <= 0 || reps >= 37:
		return 0
	case reps == 1:
		return weightKg
	case reps <= 10:
		return weightKg * (1 + float64(reps)/30)
	default:
		return weightKg * 36 / (37 - float64(reps))
	}
}
