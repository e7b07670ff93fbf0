package calories_test

import (
	"math"
	"testing"
	"time"

	"github.com/apexfit/apexfit/internal/calories"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAge(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		dob  time.Time
		want int
	}{
		{"birthday passed", time.Date(1996, time.March, 1, 0, 0, 0, 0, time.UTC), 30},
		{"birthday today", time.Date(1996, time.June, 15, 0, 0, 0, 0, time.UTC), 30},
		{"birthday tomorrow", time.Date(1996, time.June, 16, 0, 0, 0, 0, time.UTC), 29},
		{"born later this month", time.Date(1996, time.June, 20, 0, 0, 0, 0, time.UTC), 29},
		{"future date of birth", time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := calories.Age(tt.dob, now); got != tt.want {
				t.Errorf("Age() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBMR(t *testing.T) {
	t.Parallel()
	// 10*80 + 6.25*180 - 5*30 + 5 = 1780.
	if got := calories.BMR(calories.SexMale, 80, 180, 30); !almostEqual(got, 1780) {
		t.Errorf("male BMR = %v, want 1780", got)
	}
	// Same body, female offset: 1775 - 161 = 1614.
	if got := calories.BMR(calories.SexFemale, 80, 180, 30); !almostEqual(got, 1614) {
		t.Errorf("female BMR = %v, want 1614", got)
	}
}

func TestTDEE(t *testing.T) {
	t.Parallel()
	tests := []struct {
		level calories.ExperienceLevel
		want  float64
	}{
		{calories.ExperienceBeginner, 2000 * 1.2},
		{calories.ExperienceIntermediate, 2000 * 1.375},
		{calories.ExperienceAdvanced, 2000 * 1.55},
		{calories.ExperienceExpert, 2000 * 1.725},
		{calories.ExperienceLevel("unknown"), 2000 * 1.2},
	}
	for _, tt := range tests {
		if got := calories.TDEE(2000, tt.level); !almostEqual(got, tt.want) {
			t.Errorf("TDEE(2000, %s) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestWater(t *testing.T) {
	t.Parallel()
	if got := calories.DailyWaterGoal(70); !almostEqual(got, 2100) {
		t.Errorf("DailyWaterGoal(70) = %v, want 2100", got)
	}
	if got := calories.WorkoutWaterBonus(44 * time.Minute); !almostEqual(got, 500) {
		t.Errorf("WorkoutWaterBonus(44m) = %v, want 500", got)
	}
	if got := calories.WorkoutWaterBonus(14 * time.Minute); !almostEqual(got, 0) {
		t.Errorf("WorkoutWaterBonus(14m) = %v, want 0", got)
	}
	if got := calories.HydrationRecommendation(70, 30*time.Minute); !almostEqual(got, 280) {
		t.Errorf("HydrationRecommendation(70, 30m) = %v, want 280", got)
	}
}

func TestAverageMETs(t *testing.T) {
	t.Parallel()
	mets := map[string]float64{"a": 6, "b": 4}
	if got := calories.AverageMETs([]string{"a", "b"}, mets); !almostEqual(got, 5) {
		t.Errorf("AverageMETs = %v, want 5", got)
	}
	// Unknown exercise falls back to the 5.0 default.
	if got := calories.AverageMETs([]string{"a", "missing"}, mets); !almostEqual(got, 5.5) {
		t.Errorf("AverageMETs with unknown = %v, want 5.5", got)
	}
	if got := calories.AverageMETs(nil, mets); !almostEqual(got, 5) {
		t.Errorf("AverageMETs(empty) = %v, want 5", got)
	}
}

func TestWorkoutCalories(t *testing.T) {
	t.Parallel()
	workout := calories.Workout{
		AverageMETs: 6,
		Duration:    time.Hour,
	}
	// 6 * 3.5 * 80 / 200 * 60 = 504.
	if got := calories.WorkoutCalories(80, workout); !almostEqual(got, 504) {
		t.Errorf("WorkoutCalories = %v, want 504", got)
	}

	rested := workout
	rested.IsStrength = true
	rested.AverageRestSec = 200
	if got := calories.WorkoutCalories(80, rested); !almostEqual(got, 504*0.7) {
		t.Errorf("discounted WorkoutCalories = %v, want %v", got, 504*0.7)
	}

	// At exactly 180 s average rest the discount does not apply.
	boundary := rested
	boundary.AverageRestSec = 180
	if got := calories.WorkoutCalories(80, boundary); !almostEqual(got, 504) {
		t.Errorf("boundary WorkoutCalories = %v, want 504", got)
	}

	// Cardio never gets the rest discount.
	cardio := workout
	cardio.AverageRestSec = 300
	if got := calories.WorkoutCalories(80, cardio); !almostEqual(got, 504) {
		t.Errorf("cardio WorkoutCalories = %v, want 504", got)
	}
}

func TestOneRepMax(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		weight float64
		reps   int
		want   float64
	}{
		{"single is its own max", 100, 1, 100},
		{"epley at ten reps", 100, 10, 100 * (1 + 10.0/30)},
		{"brzycki above ten", 100, 12, 100 * 36 / 25},
		{"zero reps", 100, 0, 0},
		{"negative reps", 100, -3, 0},
		{"divergent reps", 100, 37, 0},
		{"beyond divergence", 100, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := calories.OneRepMax(tt.weight, tt.reps); !almostEqual(got, tt.want) {
				t.Errorf("OneRepMax(%v, %d) = %v, want %v", tt.weight, tt.reps, got, tt.want)
			}
		})
	}
}
