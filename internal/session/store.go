package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/kv"
)

// Sentinels for invalid mutations.
var (
	ErrNoActiveSession = errors.NewSentinel("no active session")
	ErrSessionActive   = errors.NewSentinel("a session is already active")
	ErrSetNotFound     = errors.NewSentinel("set not found")
	ErrExerciseIndex   = errors.NewSentinel("exercise index out of range")
)

// Store owns the state of one user's in-progress workout. Every mutation
// persists a fresh snapshot so a crashed or closed client can resume.
type Store struct {
	mu        sync.Mutex
	userEmail string
	documents kv.Store
	clock     func() time.Time
	logger    *slog.Logger

	active bool
	snap   Snapshot

	// Rest timer state is deliberately not part of the snapshot. A
	// resumed session starts with the rest timer idle.
	resting       bool
	restSec       int
	restTargetSec int
}

func NewStore(userEmail string, documents kv.Store, clock func() time.Time, logger *slog.Logger) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		userEmail: userEmail,
		documents: documents,
		clock:     clock,
		logger:    logger,
	}
}

// State is the full client-facing view of the session.
type State struct {
	Snapshot
	Resting       bool `json:"resting"`
	RestSec       int  `json:"restSec"`
	RestTargetSec int  `json:"restTargetSec"`
}

// Start begins a new session with the given exercise slots.
func (s *Store) Start(ctx context.Context, name, planDate string, exercises []ExerciseSession) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return State{}, ErrSessionActive
	}
	now := s.clock()
	s.snap = Snapshot{
		WorkoutName: name,
		PlanDate:    planDate,
		StartedAt:   now,
		Exercises:   exercises,
		Timestamp:   now,
	}
	s.active = true
	s.resting = false
	s.restSec = 0
	s.restTargetSec = 0
	if err := s.persist(ctx); err != nil {
		s.active = false
		return State{}, err
	}
	return s.state(), nil
}

// Resume restores a session from its persisted snapshot. A snapshot older
// than the recovery window is discarded and ok is false.
func (s *Store) Resume(ctx context.Context) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return s.state(), true, nil
	}
	raw, err := s.documents.Get(ctx, s.userEmail, kv.KeyActiveSession)
	if errors.Is(err, kv.ErrNotFound) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, errors.Wrap(err, "load session snapshot")
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A malformed snapshot is unrecoverable. Drop it.
		s.logger.LogAttrs(ctx, slog.LevelWarn, "discarding malformed session snapshot",
			errors.SlogError(err))
		return State{}, false, s.clear(ctx)
	}
	if s.clock().Sub(snap.Timestamp) > RecoveryWindow {
		return State{}, false, s.clear(ctx)
	}
	s.snap = snap
	s.active = true
	return s.state(), true, nil
}

// Tick advances the session clocks by one second.
func (s *Store) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.snap.ElapsedSec++
	if s.resting {
		s.restSec++
	}
	s.snap.Timestamp = s.clock()
	if err := s.persist(ctx); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to persist session tick",
			errors.SlogError(err))
	}
}

// ToggleSet flips the completed flag of a set. Completing a set restarts
// the rest timer with the exercise's target rest. Un-completing a set is
// allowed as an undo and leaves the rest timer running.
func (s *Store) ToggleSet(ctx context.Context, exerciseIndex int, setID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exercise, set, err := s.findSet(exerciseIndex, setID)
	if err != nil {
		return State{}, err
	}
	set.Completed = !set.Completed
	if set.Completed {
		s.resting = true
		s.restSec = 0
		s.restTargetSec = exercise.TargetRestSec
	}
	if err := s.persistMutation(ctx); err != nil {
		return State{}, err
	}
	return s.state(), nil
}

// SetUpdate carries the editable fields of a set. Nil fields are left
// untouched.
type SetUpdate struct {
	WeightKg *float64 `json:"weightKg"`
	Reps     *int     `json:"reps"`
	Type     *SetType `json:"setType"`
}

// UpdateSet edits a not-yet-completed set. Updating a completed set is a
// silent no-op so a late edit cannot rewrite performed work.
func (s *Store) UpdateSet(ctx context.Context, exerciseIndex int, setID string, update SetUpdate) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, set, err := s.findSet(exerciseIndex, setID)
	if err != nil {
		return State{}, err
	}
	if set.Completed {
		return s.state(), nil
	}
	if update.Type != nil {
		if err := update.Type.Validate(); err != nil {
			return State{}, err
		}
		set.Type = *update.Type
	}
	if update.WeightKg != nil {
		set.WeightKg = *update.WeightKg
	}
	if update.Reps != nil {
		set.Reps = *update.Reps
	}
	if err := s.persistMutation(ctx); err != nil {
		return State{}, err
	}
	return s.state(), nil
}

// AddSet appends a set to an exercise. A warm-up set is inserted before
// the first non-warm-up set instead of at the end. The new set inherits
// weight and reps from the set preceding the insertion point, falling
// back to 20 kg for 10 reps in an empty exercise. Its order is the
// insertion index plus one; existing orders are not renumbered.
func (s *Store) AddSet(ctx context.Context, exerciseIndex int, warmup bool) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return State{}, ErrNoActiveSession
	}
	if exerciseIndex < 0 || exerciseIndex >= len(s.snap.Exercises) {
		return State{}, errors.Wrap(ErrExerciseIndex, "add set", slog.Int("index", exerciseIndex))
	}
	exercise := &s.snap.Exercises[exerciseIndex]

	insertIndex := len(exercise.Sets)
	setType := SetTypeNormal
	if warmup {
		setType = SetTypeWarmup
		insertIndex = slices.IndexFunc(exercise.Sets, func(set Set) bool {
			return set.Type != SetTypeWarmup
		})
		if insertIndex < 0 {
			insertIndex = len(exercise.Sets)
		}
	}

	set := Set{
		ID:       newSetID(),
		Order:    insertIndex + 1,
		WeightKg: defaultWeightKg,
		Reps:     defaultReps,
		Type:     setType,
	}
	if insertIndex > 0 {
		previous := exercise.Sets[insertIndex-1]
		set.WeightKg = previous.WeightKg
		set.Reps = previous.Reps
	}
	exercise.Sets = slices.Insert(exercise.Sets, insertIndex, set)

	if err := s.persistMutation(ctx); err != nil {
		return State{}, err
	}
	return s.state(), nil
}

// RemoveSet deletes a set from an exercise.
func (s *Store) RemoveSet(ctx context.Context, exerciseIndex int, setID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return State{}, ErrNoActiveSession
	}
	if exerciseIndex < 0 || exerciseIndex >= len(s.snap.Exercises) {
		return State{}, errors.Wrap(ErrExerciseIndex, "remove set", slog.Int("index", exerciseIndex))
	}
	exercise := &s.snap.Exercises[exerciseIndex]
	index := slices.IndexFunc(exercise.Sets, func(set Set) bool { return set.ID == setID })
	if index < 0 {
		return State{}, errors.Wrap(ErrSetNotFound, "remove set", slog.String("set_id", setID))
	}
	exercise.Sets = slices.Delete(exercise.Sets, index, index+1)
	if err := s.persistMutation(ctx); err != nil {
		return State{}, err
	}
	return s.state(), nil
}

// SetExerciseNotes replaces the free-form notes of an exercise slot.
func (s *Store) SetExerciseNotes(ctx context.Context, exerciseIndex int, notes string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return State{}, ErrNoActiveSession
	}
	if exerciseIndex < 0 || exerciseIndex >= len(s.snap.Exercises) {
		return State{}, errors.Wrap(ErrExerciseIndex, "set notes", slog.Int("index", exerciseIndex))
	}
	s.snap.Exercises[exerciseIndex].Notes = notes
	if err := s.persistMutation(ctx); err != nil {
		return State{}, err
	}
	return s.state(), nil
}

// SkipRest dismisses the running rest timer.
func (s *Store) SkipRest(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return State{}, ErrNoActiveSession
	}
	s.resting = false
	s.restSec = 0
	s.restTargetSec = 0
	return s.state(), nil
}

// Finish ends the session, removes the snapshot and returns the final
// state for summarizing.
func (s *Store) Finish(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Snapshot{}, ErrNoActiveSession
	}
	final := s.snap
	if err := s.clear(ctx); err != nil {
		return Snapshot{}, err
	}
	return final, nil
}

// Cancel discards the session without producing a log.
func (s *Store) Cancel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrNoActiveSession
	}
	return s.clear(ctx)
}

// Active reports whether a session is in progress.
func (s *Store) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// State returns a copy of the current session state.
func (s *Store) State() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return State{}, ErrNoActiveSession
	}
	return s.state(), nil
}

func (s *Store) findSet(exerciseIndex int, setID string) (*ExerciseSession, *Set, error) {
	if !s.active {
		return nil, nil, ErrNoActiveSession
	}
	if exerciseIndex < 0 || exerciseIndex >= len(s.snap.Exercises) {
		return nil, nil, errors.Wrap(ErrExerciseIndex, "find set", slog.Int("index", exerciseIndex))
	}
	exercise := &s.snap.Exercises[exerciseIndex]
	for i := range exercise.Sets {
		if exercise.Sets[i].ID == setID {
			return exercise, &exercise.Sets[i], nil
		}
	}
	return nil, nil, errors.Wrap(ErrSetNotFound, "find set", slog.String("set_id", setID))
}

func (s *Store) persistMutation(ctx context.Context) error {
	s.snap.Timestamp = s.clock()
	return s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	raw, err := json.Marshal(s.snap)
	if err != nil {
		return errors.Wrap(err, "marshal session snapshot")
	}
	if err := s.documents.Set(ctx, s.userEmail, kv.KeyActiveSession, raw); err != nil {
		return errors.Wrap(err, "persist session snapshot")
	}
	return nil
}

func (s *Store) clear(ctx context.Context) error {
	s.active = false
	s.resting = false
	s.restSec = 0
	s.restTargetSec = 0
	s.snap = Snapshot{}
	if err := s.documents.Delete(ctx, s.userEmail, kv.KeyActiveSession); err != nil {
		return errors.Wrap(err, "clear session snapshot")
	}
	return nil
}

// state returns a deep copy so callers cannot mutate internals. Caller
// must hold s.mu.
func (s *Store) state() State {
	snap := s.snap
	snap.Exercises = make([]ExerciseSession, len(s.snap.Exercises))
	for i, exercise := range s.snap.Exercises {
		exercise.Sets = slices.Clone(exercise.Sets)
		snap.Exercises[i] = exercise
	}
	return State{
		Snapshot:      snap,
		Resting:       s.resting,
		RestSec:       s.restSec,
		RestTargetSec: s.restTargetSec,
	}
}
