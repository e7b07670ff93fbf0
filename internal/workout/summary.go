package workout

import (
	"math"
	"time"

	"github.com/apexfit/apexfit/internal/calories"
	"github.com/apexfit/apexfit/internal/catalog"
	"github.com/apexfit/apexfit/internal/session"
	"github.com/google/uuid"
)

// newLogID is swapped out in tests for deterministic IDs.
var newLogID = func() string { return uuid.NewString() }

// Summary carries the caller-provided context of a finished session.
type Summary struct {
	FeelingRPE int
	Notes      string
}

// BuildLog flattens a finished session into a persistable log. Only
// completed sets are kept; each gets a fresh identity and an estimated
// one-rep max. Volume is the weight times reps sum over the kept sets.
func BuildLog(snap session.Snapshot, weightKg float64, exercises map[string]catalog.Exercise, summary Summary) Log {
	log := Log{
		ID:          newLogID(),
		Name:        snap.WorkoutName,
		StartTime:   snap.StartedAt,
		DurationSec: snap.ElapsedSec,
		Duration:    time.Duration(snap.ElapsedSec) * time.Second,
		FeelingRPE:  summary.FeelingRPE,
		Notes:       summary.Notes,
		Status:      StatusFinished,
		SyncStatus:  SyncPending,
	}

	var (
		exerciseIDs   []string
		strengthCount int
		restSum       int
		restCount     int
	)
	for _, exercise := range snap.Exercises {
		exerciseIDs = append(exerciseIDs, exercise.ExerciseID)
		if info, ok := exercises[exercise.ExerciseID]; ok && info.Category == "Strength" {
			strengthCount++
		}
		restSum += exercise.TargetRestSec
		restCount++
		for _, set := range exercise.Sets {
			if !set.Completed {
				continue
			}
			log.Sets = append(log.Sets, LogSet{
				ID:           newLogID(),
				ExerciseID:   exercise.ExerciseID,
				ExerciseName: exercise.ExerciseName,
				Order:        set.Order,
				WeightKg:     set.WeightKg,
				Reps:         set.Reps,
				Type:         set.Type,
				Estimated1RM: math.Round(calories.OneRepMax(set.WeightKg, set.Reps)),
			})
			log.TotalVolumeKg += set.WeightKg * float64(set.Reps)
		}
	}
	log.SetCount = len(log.Sets)

	mets := make(map[string]float64, len(exercises))
	for id, info := range exercises {
		mets[id] = info.METs
	}
	var averageRestSec float64
	if restCount > 0 {
		averageRestSec = float64(restSum) / float64(restCount)
	}
	log.Calories = math.Round(calories.WorkoutCalories(weightKg, calories.Workout{
		AverageMETs:    calories.AverageMETs(exerciseIDs, mets),
		Duration:       log.Duration,
		IsStrength:     strengthCount*2 > len(snap.Exercises),
		AverageRestSec: averageRestSec,
	}))
	return log
}
