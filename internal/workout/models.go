// Package workout persists finished workout logs and planned workouts,
// and turns a finished session into a log.
package workout

import (
	"fmt"
	"time"

	"github.com/apexfit/apexfit/internal/session"
)

const dateFormat = time.DateOnly

// Log statuses.
const (
	StatusFinished = "finished"
)

// Sync statuses. Logs are written locally first and marked pending until
// a later upload pass confirms them.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
)

// LogSet is a flattened, completed set belonging to a log.
type LogSet struct {
	ID           string          `json:"id"`
	ExerciseID   string          `json:"exerciseId"`
	ExerciseName string          `json:"exerciseName"`
	Order        int             `json:"setOrder"`
	WeightKg     float64         `json:"weightKg"`
	Reps         int             `json:"reps"`
	Type         session.SetType `json:"setType"`
	Estimated1RM float64         `json:"estimated1rm"`
}

// Log is a finished workout session.
type Log struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	StartTime     time.Time     `json:"startTime"`
	Duration      time.Duration `json:"-"`
	DurationSec   int           `json:"durationSec"`
	FeelingRPE    int           `json:"feelingRpe,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	TotalVolumeKg float64       `json:"totalVolumeKg"`
	Calories      float64       `json:"calories"`
	Status        string        `json:"status"`
	SyncStatus    string        `json:"syncStatus"`
	Sets          []LogSet      `json:"sets,omitempty"`
	SetCount      int           `json:"setCount"`
}

// PlanItem is one exercise slot of a planned workout.
type PlanItem struct {
	ExerciseID     string  `json:"exerciseId"`
	ExerciseName   string  `json:"exerciseName,omitempty"`
	TargetSets     int     `json:"targetSets"`
	TargetReps     int     `json:"targetReps"`
	TargetWeightKg float64 `json:"targetWeightKg"`
	TargetRestSec  int     `json:"targetRestSec"`
}

// Plan is a named workout scheduled for a calendar date.
type Plan struct {
	Date  string     `json:"date"`
	Name  string     `json:"name"`
	Items []PlanItem `json:"items"`
}

func parseDate(date string) (time.Time, error) {
	t, err := time.Parse(dateFormat, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}
