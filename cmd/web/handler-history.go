package main

import (
	"net/http"

	"github.com/apexfit/apexfit/internal/contexthelpers"
	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/workout"
)

func (app *application) historyGET(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	logs, err := app.workouts.History(r.Context(), email)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if logs == nil {
		logs = []workout.Log{}
	}
	app.writeJSON(w, r, http.StatusOK, logs)
}

func (app *application) historyEntryGET(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	log, err := app.workouts.HistoryEntry(r.Context(), email, r.PathValue("id"))
	if errors.Is(err, workout.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, log)
}

func (app *application) historyEntryDELETE(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	err := app.workouts.DeleteHistoryEntry(r.Context(), email, r.PathValue("id"))
	if errors.Is(err, workout.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// historyEntrySyncPOST acknowledges a completed upload of a pending log.
func (app *application) historyEntrySyncPOST(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	err := app.workouts.MarkSynced(r.Context(), email, r.PathValue("id"))
	if errors.Is(err, workout.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
