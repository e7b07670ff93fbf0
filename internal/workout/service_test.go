package workout_test

import (
	"testing"
	"time"

	"github.com/apexfit/apexfit/internal/catalog"
	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/session"
	"github.com/apexfit/apexfit/internal/sqlite"
	"github.com/apexfit/apexfit/internal/testhelpers"
	"github.com/apexfit/apexfit/internal/workout"
)

const userEmail = "lifter@example.com"

func newService(t *testing.T) *workout.Service {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return workout.NewService(db, catalog.NewRepository(db, logger), logger)
}

func benchPlan() workout.Plan {
	return workout.Plan{
		Date: "2026-05-01",
		Name: "Push Day",
		Items: []workout.PlanItem{{
			ExerciseID:     "bp_bb",
			TargetSets:     3,
			TargetReps:     8,
			TargetWeightKg: 60,
			TargetRestSec:  90,
		}},
	}
}

func TestPlanRoundTrip(t *testing.T) {
	t.Parallel()
	service := newService(t)
	ctx := t.Context()

	if _, err := service.Plan(ctx, userEmail, "2026-05-01"); !errors.Is(err, workout.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := service.SavePlan(ctx, userEmail, benchPlan()); err != nil {
		t.Fatal(err)
	}

	plan, err := service.Plan(ctx, userEmail, "2026-05-01")
	if err != nil {
		t.Fatal(err)
	}
	if plan.Name != "Push Day" || len(plan.Items) != 1 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	// The item picks up the exercise name from the library.
	if plan.Items[0].ExerciseName != "Bench Press (Barbell)" {
		t.Errorf("unexpected exercise name %q", plan.Items[0].ExerciseName)
	}

	// Saving again replaces the items instead of accumulating them.
	replacement := benchPlan()
	replacement.Items[0].TargetWeightKg = 62.5
	if err := service.SavePlan(ctx, userEmail, replacement); err != nil {
		t.Fatal(err)
	}
	plan, err = service.Plan(ctx, userEmail, "2026-05-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Items) != 1 || plan.Items[0].TargetWeightKg != 62.5 {
		t.Fatalf("plan not replaced: %+v", plan)
	}

	if err := service.DeletePlan(ctx, userEmail, "2026-05-01"); err != nil {
		t.Fatal(err)
	}
	if err := service.DeletePlan(ctx, userEmail, "2026-05-01"); !errors.Is(err, workout.ErrNotFound) {
		t.Fatalf("double delete: want ErrNotFound, got %v", err)
	}
}

func TestSavePlanRejectsBadInput(t *testing.T) {
	t.Parallel()
	service := newService(t)
	ctx := t.Context()

	bad := benchPlan()
	bad.Date = "01.05.2026"
	if err := service.SavePlan(ctx, userEmail, bad); err == nil {
		t.Error("malformed date accepted")
	}

	unknown := benchPlan()
	unknown.Items[0].ExerciseID = "made_up"
	if err := service.SavePlan(ctx, userEmail, unknown); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("unknown exercise: want catalog.ErrNotFound, got %v", err)
	}
}

func TestSessionExercisesSeeding(t *testing.T) {
	t.Parallel()
	service := newService(t)
	ctx := t.Context()
	if err := service.SavePlan(ctx, userEmail, benchPlan()); err != nil {
		t.Fatal(err)
	}

	name, exercises, err := service.SessionExercises(ctx, userEmail, "2026-05-01")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Push Day" {
		t.Errorf("unexpected name %q", name)
	}
	if len(exercises) != 1 || len(exercises[0].Sets) != 3 {
		t.Fatalf("unexpected seeding %+v", exercises)
	}
	for i, set := range exercises[0].Sets {
		if set.Completed {
			t.Error("seeded set already completed")
		}
		if set.Order != i+1 || set.WeightKg != 60 || set.Reps != 8 || set.Type != session.SetTypeNormal {
			t.Errorf("unexpected seeded set %+v", set)
		}
		if set.ID == "" {
			t.Error("seeded set has no identity")
		}
	}
}

func TestFinishSessionBuildsHistory(t *testing.T) {
	t.Parallel()
	service := newService(t)
	ctx := t.Context()

	snap := session.Snapshot{
		WorkoutName: "Push Day",
		StartedAt:   time.Date(2026, time.May, 1, 7, 0, 0, 0, time.UTC),
		ElapsedSec:  1800,
		Exercises: []session.ExerciseSession{{
			ExerciseID:    "bp_bb",
			ExerciseName:  "Bench Press (Barbell)",
			TargetRestSec: 90,
			Sets: []session.Set{
				{ID: "a", Order: 1, WeightKg: 60, Reps: 8, Type: session.SetTypeNormal, Completed: true},
				{ID: "b", Order: 2, WeightKg: 60, Reps: 8, Type: session.SetTypeNormal, Completed: true},
				{ID: "c", Order: 3, WeightKg: 60, Reps: 6, Type: session.SetTypeFailure, Completed: true},
				{ID: "d", Order: 4, WeightKg: 60, Reps: 8, Type: session.SetTypeNormal, Completed: false},
			},
		}},
	}
	log, err := service.FinishSession(ctx, userEmail, snap, 80, workout.Summary{FeelingRPE: 8, Notes: "solid"})
	if err != nil {
		t.Fatal(err)
	}

	// Only the three completed sets count.
	if log.SetCount != 3 {
		t.Errorf("set count = %d, want 3", log.SetCount)
	}
	wantVolume := 60.0*8 + 60.0*8 + 60.0*6
	if log.TotalVolumeKg != wantVolume {
		t.Errorf("volume = %v, want %v", log.TotalVolumeKg, wantVolume)
	}
	// 5.0 METs, 30 min, 80 kg: 5*3.5*80/200*30 = 210. Rest stays below
	// the long-rest discount threshold.
	if log.Calories != 210 {
		t.Errorf("calories = %v, want 210", log.Calories)
	}
	if log.Status != workout.StatusFinished || log.SyncStatus != workout.SyncPending {
		t.Errorf("unexpected statuses %q/%q", log.Status, log.SyncStatus)
	}

	stored, err := service.HistoryEntry(ctx, userEmail, log.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Sets) != 3 {
		t.Fatalf("stored sets = %d, want 3", len(stored.Sets))
	}
	// Flattened sets get fresh identities and an estimated one-rep max.
	for _, set := range stored.Sets {
		if set.ID == "a" || set.ID == "b" || set.ID == "c" {
			t.Errorf("set kept its session identity %q", set.ID)
		}
	}
	if got := stored.Sets[0].Estimated1RM; got != 76 {
		t.Errorf("estimated 1RM = %v, want 76", got)
	}

	// A second workout lands first in the history.
	later := snap
	later.WorkoutName = "Evening Pump"
	later.StartedAt = snap.StartedAt.Add(12 * time.Hour)
	if _, err := service.FinishSession(ctx, userEmail, later, 80, workout.Summary{}); err != nil {
		t.Fatal(err)
	}
	history, err := service.History(ctx, userEmail)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[0].Name != "Evening Pump" {
		t.Fatalf("history not most-recent-first: %+v", history)
	}
	if history[0].SetCount != 3 {
		t.Errorf("history entry set count = %d, want 3", history[0].SetCount)
	}

	if err := service.MarkSynced(ctx, userEmail, log.ID); err != nil {
		t.Fatal(err)
	}
	stored, err = service.HistoryEntry(ctx, userEmail, log.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.SyncStatus != workout.SyncSynced {
		t.Errorf("sync status = %q, want synced", stored.SyncStatus)
	}

	if err := service.DeleteHistoryEntry(ctx, userEmail, log.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := service.HistoryEntry(ctx, userEmail, log.ID); !errors.Is(err, workout.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}
