package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/apexfit/apexfit/internal/calories"
	"github.com/apexfit/apexfit/internal/contexthelpers"
	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/profile"
	"github.com/apexfit/apexfit/internal/session"
	"github.com/apexfit/apexfit/internal/workout"
)

// sessionStartPOST begins a workout from the plan of the given date.
func (app *application) sessionStartPOST(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	email := contexthelpers.AuthenticatedEmail(ctx)

	name, exercises, err := app.workouts.SessionExercises(ctx, email, date)
	if errors.Is(err, workout.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	state, err := app.sessions.Store(email).Start(ctx, name, date, exercises)
	if errors.Is(err, session.ErrSessionActive) {
		app.clientError(w, r, http.StatusConflict, "a workout is already in progress")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessions.EnsureTicking(email)
	app.writeJSON(w, r, http.StatusCreated, state)
}

// sessionStateGET returns the live session, resuming a persisted one if
// it is recent enough.
func (app *application) sessionStateGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := contexthelpers.AuthenticatedEmail(ctx)
	store := app.sessions.Store(email)

	state, resumed, err := store.Resume(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if !resumed {
		app.notFound(w, r)
		return
	}
	app.sessions.EnsureTicking(email)
	app.writeJSON(w, r, http.StatusOK, state)
}

func (app *application) parseExerciseIndexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("exerciseIndex"))
	if err != nil {
		app.notFound(w, r)
		return 0, false
	}
	return index, true
}

// sessionMutation runs fn against the user's live session and writes the
// resulting state, translating the engine's sentinels to status codes.
func (app *application) sessionMutation(
	w http.ResponseWriter,
	r *http.Request,
	fn func(store *session.Store) (session.State, error),
) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	state, err := fn(app.sessions.Store(email))
	switch {
	case errors.Is(err, session.ErrNoActiveSession):
		app.clientError(w, r, http.StatusConflict, "no workout in progress")
	case errors.Is(err, session.ErrSetNotFound), errors.Is(err, session.ErrExerciseIndex):
		app.notFound(w, r)
	case errors.Is(err, session.ErrUnknownSetType):
		app.clientError(w, r, http.StatusUnprocessableEntity, "unknown set type")
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(w, r, http.StatusOK, state)
	}
}

func (app *application) sessionSetTogglePOST(w http.ResponseWriter, r *http.Request) {
	index, ok := app.parseExerciseIndexParam(w, r)
	if !ok {
		return
	}
	setID := r.PathValue("setID")
	app.sessionMutation(w, r, func(store *session.Store) (session.State, error) {
		return store.ToggleSet(r.Context(), index, setID)
	})
}

func (app *application) sessionSetUpdatePOST(w http.ResponseWriter, r *http.Request) {
	index, ok := app.parseExerciseIndexParam(w, r)
	if !ok {
		return
	}
	setID := r.PathValue("setID")
	var update session.SetUpdate
	if !app.readJSON(w, r, &update) {
		return
	}
	app.sessionMutation(w, r, func(store *session.Store) (session.State, error) {
		return store.UpdateSet(r.Context(), index, setID, update)
	})
}

func (app *application) sessionSetAddPOST(w http.ResponseWriter, r *http.Request) {
	index, ok := app.parseExerciseIndexParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Warmup bool `json:"warmup"`
	}
	if !app.readJSON(w, r, &body) {
		return
	}
	app.sessionMutation(w, r, func(store *session.Store) (session.State, error) {
		return store.AddSet(r.Context(), index, body.Warmup)
	})
}

func (app *application) sessionSetDELETE(w http.ResponseWriter, r *http.Request) {
	index, ok := app.parseExerciseIndexParam(w, r)
	if !ok {
		return
	}
	setID := r.PathValue("setID")
	app.sessionMutation(w, r, func(store *session.Store) (session.State, error) {
		return store.RemoveSet(r.Context(), index, setID)
	})
}

func (app *application) sessionNotesPUT(w http.ResponseWriter, r *http.Request) {
	index, ok := app.parseExerciseIndexParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Notes string `json:"notes"`
	}
	if !app.readJSON(w, r, &body) {
		return
	}
	app.sessionMutation(w, r, func(store *session.Store) (session.State, error) {
		return store.SetExerciseNotes(r.Context(), index, body.Notes)
	})
}

func (app *application) sessionSkipRestPOST(w http.ResponseWriter, r *http.Request) {
	app.sessionMutation(w, r, func(store *session.Store) (session.State, error) {
		return store.SkipRest(r.Context())
	})
}

// sessionHydrationGET recommends how much to have drunk by now.
func (app *application) sessionHydrationGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := contexthelpers.AuthenticatedEmail(ctx)
	state, err := app.sessions.Store(email).State()
	if errors.Is(err, session.ErrNoActiveSession) {
		app.clientError(w, r, http.StatusConflict, "no workout in progress")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	p, err := app.profiles.Get(ctx, email)
	if errors.Is(err, profile.ErrNoProfile) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	elapsed := time.Duration(state.ElapsedSec) * time.Second
	app.writeJSON(w, r, http.StatusOK, map[string]float64{
		"recommendedMl": calories.HydrationRecommendation(p.WeightKg, elapsed),
		"bonusMl":       calories.WorkoutWaterBonus(elapsed),
	})
}

// sessionFinishPOST closes the session and records the log.
func (app *application) sessionFinishPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := contexthelpers.AuthenticatedEmail(ctx)
	var body struct {
		FeelingRPE int    `json:"feelingRpe"`
		Notes      string `json:"notes"`
	}
	if !app.readJSON(w, r, &body) {
		return
	}
	if body.FeelingRPE < 0 || body.FeelingRPE > 10 {
		app.clientError(w, r, http.StatusUnprocessableEntity, "feelingRpe must be between 1 and 10")
		return
	}

	p, err := app.profiles.Get(ctx, email)
	if errors.Is(err, profile.ErrNoProfile) {
		app.clientError(w, r, http.StatusConflict, "complete onboarding first")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	store := app.sessions.Store(email)
	state, err := store.State()
	if errors.Is(err, session.ErrNoActiveSession) {
		app.clientError(w, r, http.StatusConflict, "no workout in progress")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	// Persist the log before tearing the session down, so a failed insert
	// leaves the workout recoverable.
	log, err := app.workouts.FinishSession(ctx, email, state.Snapshot, p.WeightKg, workout.Summary{
		FeelingRPE: body.FeelingRPE,
		Notes:      body.Notes,
	})
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if _, err = store.Finish(ctx); err != nil {
		// The log is already recorded; a stale snapshot only means the
		// client may be offered a recovery it can discard.
		app.logger.LogAttrs(ctx, slog.LevelWarn, "failed to clear finished session",
			errors.SlogError(err))
	}
	app.writeJSON(w, r, http.StatusCreated, log)
}

func (app *application) sessionCancelPOST(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	err := app.sessions.Store(email).Cancel(r.Context())
	if errors.Is(err, session.ErrNoActiveSession) {
		app.clientError(w, r, http.StatusConflict, "no workout in progress")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
