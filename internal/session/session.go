// Package session tracks the mutable state of an in-progress workout.
package session

import (
	"log/slog"
	"time"

	"github.com/apexfit/apexfit/internal/errors"
	"github.com/google/uuid"
)

// SetType classifies a set within an exercise.
type SetType string

const (
	SetTypeWarmup  SetType = "warmup"
	SetTypeNormal  SetType = "normal"
	SetTypeFailure SetType = "failure"
	SetTypeDrop    SetType = "drop"
)

// ErrUnknownSetType is returned for set types outside the known four.
var ErrUnknownSetType = errors.NewSentinel("unknown set type")

func (t SetType) Validate() error {
	switch t {
	case SetTypeWarmup, SetTypeNormal, SetTypeFailure, SetTypeDrop:
		return nil
	}
	return errors.Wrap(ErrUnknownSetType, "validate set type", slog.String("type", string(t)))
}

// Set is one planned or performed set of an exercise.
type Set struct {
	ID        string  `json:"id"`
	Order     int     `json:"setOrder"`
	WeightKg  float64 `json:"weightKg"`
	Reps      int     `json:"reps"`
	Type      SetType `json:"setType"`
	Completed bool    `json:"completed"`
}

// ExerciseSession is one exercise slot within the active workout.
type ExerciseSession struct {
	ExerciseID    string `json:"exerciseId"`
	ExerciseName  string `json:"exerciseName"`
	Sets          []Set  `json:"sets"`
	TargetRestSec int    `json:"targetRestSec"`
	Notes         string `json:"notes,omitempty"`
}

// Snapshot is the persisted form of an in-progress workout, written on
// every mutation so the session survives a process restart.
type Snapshot struct {
	WorkoutName string            `json:"workoutName"`
	PlanDate    string            `json:"planDate,omitempty"`
	StartedAt   time.Time         `json:"startedAt"`
	ElapsedSec  int               `json:"elapsedSec"`
	Exercises   []ExerciseSession `json:"exercises"`
	// Timestamp records when the snapshot was taken. Snapshots older
	// than the recovery window are discarded instead of resumed.
	Timestamp time.Time `json:"timestamp"`
}

// RecoveryWindow bounds how long an abandoned session remains resumable.
const RecoveryWindow = 24 * time.Hour

// Defaults applied when a new set has no sibling to inherit from.
const (
	defaultWeightKg = 20.0
	defaultReps     = 10
)

// newSetID is swapped out in tests for deterministic IDs.
var newSetID = func() string { return uuid.NewString() }

// NewSetID mints a fresh set identity.
func NewSetID() string { return newSetID() }
