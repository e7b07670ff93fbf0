package session

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/kv"
	"github.com/apexfit/apexfit/internal/ptr"
	"github.com/apexfit/apexfit/internal/testhelpers"
	"github.com/google/go-cmp/cmp"
)

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T) (*Store, *fakeClock, *kv.MemoryStore) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, time.May, 1, 7, 0, 0, 0, time.UTC)}
	documents := kv.NewMemoryStore()
	store := NewStore("lifter@example.com", documents, clock.Now,
		testhelpers.NewLogger(testhelpers.NewWriter(t)))

	var counter int
	originalNewSetID := newSetID
	newSetID = func() string {
		counter++
		return fmt.Sprintf("set-%d", counter)
	}
	t.Cleanup(func() { newSetID = originalNewSetID })
	return store, clock, documents
}

func benchExercise() ExerciseSession {
	return ExerciseSession{
		ExerciseID:    "bp_bb",
		ExerciseName:  "Bench Press (Barbell)",
		TargetRestSec: 90,
		Sets: []Set{
			{ID: "a", Order: 1, WeightKg: 60, Reps: 8, Type: SetTypeNormal},
			{ID: "b", Order: 2, WeightKg: 60, Reps: 8, Type: SetTypeNormal},
		},
	}
}

func TestStartAndTick(t *testing.T) {
	t.Parallel()
	store, clock, _ := newTestStore(t)
	ctx := t.Context()

	state, err := store.Start(ctx, "Push Day", "2026-05-01", []ExerciseSession{benchExercise()})
	if err != nil {
		t.Fatal(err)
	}
	if state.ElapsedSec != 0 {
		t.Errorf("fresh session elapsed = %d", state.ElapsedSec)
	}
	if _, err := store.Start(ctx, "Again", "", nil); err != ErrSessionActive {
		t.Fatalf("second start: want ErrSessionActive, got %v", err)
	}

	for range 5 {
		clock.Advance(time.Second)
		store.Tick(ctx)
	}
	state, err = store.State()
	if err != nil {
		t.Fatal(err)
	}
	if state.ElapsedSec != 5 {
		t.Errorf("elapsed = %d, want 5", state.ElapsedSec)
	}
	// The rest timer only runs after a completed set.
	if state.Resting || state.RestSec != 0 {
		t.Errorf("rest timer running before any completed set: %+v", state)
	}
}

func TestToggleSetDrivesRestTimer(t *testing.T) {
	t.Parallel()
	store, clock, _ := newTestStore(t)
	ctx := t.Context()
	if _, err := store.Start(ctx, "Push Day", "", []ExerciseSession{benchExercise()}); err != nil {
		t.Fatal(err)
	}

	state, err := store.ToggleSet(ctx, 0, "a")
	if err != nil {
		t.Fatal(err)
	}
	if !state.Exercises[0].Sets[0].Completed {
		t.Error("set not marked completed")
	}
	if !state.Resting || state.RestTargetSec != 90 {
		t.Errorf("rest timer not started: %+v", state)
	}

	clock.Advance(3 * time.Second)
	for range 3 {
		store.Tick(ctx)
	}
	state, _ = store.State()
	if state.RestSec != 3 {
		t.Errorf("rest = %d, want 3", state.RestSec)
	}

	// Completing another set restarts the rest timer from zero.
	state, err = store.ToggleSet(ctx, 0, "b")
	if err != nil {
		t.Fatal(err)
	}
	if state.RestSec != 0 {
		t.Errorf("rest not restarted: %d", state.RestSec)
	}

	// Un-completing is an undo and leaves the timer running.
	state, err = store.ToggleSet(ctx, 0, "b")
	if err != nil {
		t.Fatal(err)
	}
	if state.Exercises[0].Sets[1].Completed {
		t.Error("undo did not clear completed")
	}
	if !state.Resting {
		t.Error("undo stopped the rest timer")
	}

	if _, err := store.ToggleSet(ctx, 0, "zzz"); !errors.Is(err, ErrSetNotFound) {
		t.Fatalf("want ErrSetNotFound, got %v", err)
	}
	if _, err := store.ToggleSet(ctx, 7, "a"); !errors.Is(err, ErrExerciseIndex) {
		t.Fatalf("want ErrExerciseIndex, got %v", err)
	}
}

func TestUpdateSet(t *testing.T) {
	t.Parallel()
	store, _, _ := newTestStore(t)
	ctx := t.Context()
	if _, err := store.Start(ctx, "Push Day", "", []ExerciseSession{benchExercise()}); err != nil {
		t.Fatal(err)
	}

	state, err := store.UpdateSet(ctx, 0, "a", SetUpdate{
		WeightKg: ptr.Ref(62.5),
		Reps:     ptr.Ref(6),
		Type:     ptr.Ref(SetTypeFailure),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := Set{ID: "a", Order: 1, WeightKg: 62.5, Reps: 6, Type: SetTypeFailure}
	if diff := cmp.Diff(want, state.Exercises[0].Sets[0]); diff != "" {
		t.Errorf("set mismatch (-want +got):\n%s", diff)
	}

	if _, err := store.UpdateSet(ctx, 0, "a", SetUpdate{Type: ptr.Ref(SetType("superset"))}); err == nil {
		t.Fatal("invalid set type accepted")
	}

	// Edits to a completed set are silently ignored.
	if _, err := store.ToggleSet(ctx, 0, "a"); err != nil {
		t.Fatal(err)
	}
	state, err = store.UpdateSet(ctx, 0, "a", SetUpdate{WeightKg: ptr.Ref(100.0)})
	if err != nil {
		t.Fatal(err)
	}
	if got := state.Exercises[0].Sets[0].WeightKg; got != 62.5 {
		t.Errorf("completed set was edited: weight = %v", got)
	}
}

func TestAddSet(t *testing.T) {
	t.Parallel()
	store, _, _ := newTestStore(t)
	ctx := t.Context()
	if _, err := store.Start(ctx, "Push Day", "", []ExerciseSession{benchExercise()}); err != nil {
		t.Fatal(err)
	}

	// A normal set appends and inherits from the last set.
	state, err := store.AddSet(ctx, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	sets := state.Exercises[0].Sets
	added := sets[len(sets)-1]
	if added.Type != SetTypeNormal || added.WeightKg != 60 || added.Reps != 8 || added.Order != 3 {
		t.Errorf("unexpected appended set %+v", added)
	}

	// A warm-up set goes before the first non-warm-up set and inherits
	// from whatever precedes the insertion point. Here nothing does, so
	// it gets the defaults.
	state, err = store.AddSet(ctx, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	sets = state.Exercises[0].Sets
	if sets[0].Type != SetTypeWarmup {
		t.Fatalf("warm-up not inserted first: %+v", sets)
	}
	if sets[0].WeightKg != 20 || sets[0].Reps != 10 || sets[0].Order != 1 {
		t.Errorf("warm-up defaults wrong: %+v", sets[0])
	}
	// Existing orders are not renumbered.
	if sets[1].ID != "a" || sets[1].Order != 1 {
		t.Errorf("existing set disturbed: %+v", sets[1])
	}

	// A second warm-up lands after the first one and inherits from it.
	state, err = store.AddSet(ctx, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	sets = state.Exercises[0].Sets
	if sets[1].Type != SetTypeWarmup || sets[1].WeightKg != 20 || sets[1].Order != 2 {
		t.Errorf("second warm-up misplaced: %+v", sets[1])
	}
}

func TestRemoveSet(t *testing.T) {
	t.Parallel()
	store, _, _ := newTestStore(t)
	ctx := t.Context()
	if _, err := store.Start(ctx, "Push Day", "", []ExerciseSession{benchExercise()}); err != nil {
		t.Fatal(err)
	}
	state, err := store.RemoveSet(ctx, 0, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Exercises[0].Sets) != 1 || state.Exercises[0].Sets[0].ID != "b" {
		t.Errorf("unexpected sets after removal: %+v", state.Exercises[0].Sets)
	}
	if _, err := store.RemoveSet(ctx, 0, "a"); !errors.Is(err, ErrSetNotFound) {
		t.Fatalf("want ErrSetNotFound, got %v", err)
	}
}

func TestResumeWithinWindow(t *testing.T) {
	t.Parallel()
	store, clock, documents := newTestStore(t)
	ctx := t.Context()
	if _, err := store.Start(ctx, "Push Day", "2026-05-01", []ExerciseSession{benchExercise()}); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10 * time.Second)
	for range 10 {
		store.Tick(ctx)
	}

	// A new store simulates a restarted process.
	fresh := NewStore("lifter@example.com", documents, clock.Now,
		testhelpers.NewLogger(testhelpers.NewWriter(t)))
	state, ok, err := fresh.Resume(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("session not resumed")
	}
	if state.ElapsedSec != 10 || state.WorkoutName != "Push Day" {
		t.Errorf("resumed state wrong: %+v", state)
	}
	if state.Resting || state.RestSec != 0 {
		t.Errorf("rest timer survived restart: %+v", state)
	}
}

func TestResumeOutsideWindowDiscards(t *testing.T) {
	t.Parallel()
	store, clock, documents := newTestStore(t)
	ctx := t.Context()
	if _, err := store.Start(ctx, "Push Day", "", []ExerciseSession{benchExercise()}); err != nil {
		t.Fatal(err)
	}

	clock.Advance(RecoveryWindow + time.Minute)
	fresh := NewStore("lifter@example.com", documents, clock.Now,
		testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if _, ok, err := fresh.Resume(ctx); err != nil || ok {
		t.Fatalf("stale snapshot resumed: ok=%v err=%v", ok, err)
	}
	if _, err := documents.Get(ctx, "lifter@example.com", kv.KeyActiveSession); err != kv.ErrNotFound {
		t.Fatalf("stale snapshot not deleted: %v", err)
	}
}

func TestResumeDiscardsMalformedSnapshot(t *testing.T) {
	t.Parallel()
	store, _, documents := newTestStore(t)
	ctx := t.Context()
	if err := documents.Set(ctx, "lifter@example.com", kv.KeyActiveSession, []byte("{broken")); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := store.Resume(ctx); err != nil || ok {
		t.Fatalf("malformed snapshot resumed: ok=%v err=%v", ok, err)
	}
}

func TestFinishClearsSnapshot(t *testing.T) {
	t.Parallel()
	store, _, documents := newTestStore(t)
	ctx := t.Context()
	if _, err := store.Start(ctx, "Push Day", "", []ExerciseSession{benchExercise()}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ToggleSet(ctx, 0, "a"); err != nil {
		t.Fatal(err)
	}
	final, err := store.Finish(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !final.Exercises[0].Sets[0].Completed {
		t.Error("final snapshot lost completed set")
	}
	if _, err := documents.Get(ctx, "lifter@example.com", kv.KeyActiveSession); err != kv.ErrNotFound {
		t.Fatalf("snapshot not cleared: %v", err)
	}
	if _, err := store.Finish(ctx); err != ErrNoActiveSession {
		t.Fatalf("double finish: want ErrNoActiveSession, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	snap := Snapshot{
		WorkoutName: "Leg Day",
		StartedAt:   time.Date(2026, time.May, 1, 7, 0, 0, 0, time.UTC),
		ElapsedSec:  321,
		Exercises:   []ExerciseSession{benchExercise()},
		Timestamp:   time.Date(2026, time.May, 1, 7, 5, 21, 0, time.UTC),
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(snap, decoded); diff != "" {
		t.Errorf("snapshot round trip mismatch (-want +got):\n%s", diff)
	}
}
