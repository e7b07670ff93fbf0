package workout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apexfit/apexfit/internal/catalog"
	"github.com/apexfit/apexfit/internal/session"
	"github.com/apexfit/apexfit/internal/sqlite"
)

// Service exposes plans, history, and session finishing to the handlers.
type Service struct {
	logs      *sqliteLogRepository
	plans     *sqlitePlanRepository
	exercises *catalog.Repository
	logger    *slog.Logger
}

func NewService(db *sqlite.Database, exercises *catalog.Repository, logger *slog.Logger) *Service {
	return &Service{
		logs:      newSQLiteLogRepository(db, logger),
		plans:     newSQLitePlanRepository(db, logger),
		exercises: exercises,
		logger:    logger,
	}
}

// Plan returns the planned workout for a date.
func (s *Service) Plan(ctx context.Context, userEmail, date string) (Plan, error) {
	return s.plans.Get(ctx, userEmail, date)
}

// Plans returns all planned workouts of a user.
func (s *Service) Plans(ctx context.Context, userEmail string) ([]Plan, error) {
	return s.plans.List(ctx, userEmail)
}

// SavePlan validates the referenced exercises and replaces the plan.
func (s *Service) SavePlan(ctx context.Context, userEmail string, plan Plan) error {
	if _, err := parseDate(plan.Date); err != nil {
		return err
	}
	for _, item := range plan.Items {
		if _, err := s.exercises.Get(ctx, item.ExerciseID); err != nil {
			return fmt.Errorf("plan item %q: %w", item.ExerciseID, err)
		}
	}
	return s.plans.Put(ctx, userEmail, plan)
}

// DeletePlan removes the plan for a date.
func (s *Service) DeletePlan(ctx context.Context, userEmail, date string) error {
	return s.plans.Delete(ctx, userEmail, date)
}

// SessionExercises expands a plan into the exercise slots of a new
// session: each item becomes one slot with target_sets identical
// not-yet-completed sets at the target weight and reps.
func (s *Service) SessionExercises(ctx context.Context, userEmail, date string) (string, []session.ExerciseSession, error) {
	plan, err := s.plans.Get(ctx, userEmail, date)
	if err != nil {
		return "", nil, err
	}
	exercises := make([]session.ExerciseSession, 0, len(plan.Items))
	for _, item := range plan.Items {
		slot := session.ExerciseSession{
			ExerciseID:    item.ExerciseID,
			ExerciseName:  item.ExerciseName,
			TargetRestSec: item.TargetRestSec,
		}
		for i := range item.TargetSets {
			slot.Sets = append(slot.Sets, session.Set{
				ID:       session.NewSetID(),
				Order:    i + 1,
				WeightKg: item.TargetWeightKg,
				Reps:     item.TargetReps,
				Type:     session.SetTypeNormal,
			})
		}
		exercises = append(exercises, slot)
	}
	return plan.Name, exercises, nil
}

// History returns the user's logs, most recent first.
func (s *Service) History(ctx context.Context, userEmail string) ([]Log, error) {
	return s.logs.List(ctx, userEmail)
}

// HistoryEntry returns one log with its sets.
func (s *Service) HistoryEntry(ctx context.Context, userEmail, id string) (Log, error) {
	return s.logs.Get(ctx, userEmail, id)
}

// DeleteHistoryEntry removes a log.
func (s *Service) DeleteHistoryEntry(ctx context.Context, userEmail, id string) error {
	return s.logs.Delete(ctx, userEmail, id)
}

// MarkSynced marks a log as uploaded.
func (s *Service) MarkSynced(ctx context.Context, userEmail, id string) error {
	return s.logs.MarkSynced(ctx, userEmail, id)
}

// FinishSession summarizes a finished session and persists the log.
func (s *Service) FinishSession(ctx context.Context, userEmail string, snap session.Snapshot, weightKg float64, summary Summary) (Log, error) {
	exercises := make(map[string]catalog.Exercise, len(snap.Exercises))
	for _, slot := range snap.Exercises {
		if _, ok := exercises[slot.ExerciseID]; ok {
			continue
		}
		info, err := s.exercises.Get(ctx, slot.ExerciseID)
		if err != nil {
			return Log{}, fmt.Errorf("resolve exercise %q: %w", slot.ExerciseID, err)
		}
		exercises[slot.ExerciseID] = info
	}
	log := BuildLog(snap, weightKg, exercises, summary)
	if err := s.logs.Create(ctx, userEmail, log); err != nil {
		return Log{}, err
	}
	return log, nil
}
