package main

import (
	"net/http"
	"time"

	"github.com/apexfit/apexfit/internal/catalog"
	"github.com/apexfit/apexfit/internal/contexthelpers"
	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/workout"
)

// parseDateParam parses the "date" path parameter from the request URL.
// On failure it sends the 404 response itself.
func (app *application) parseDateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	dateStr := r.PathValue("date")
	if _, err := time.Parse(time.DateOnly, dateStr); err != nil {
		app.notFound(w, r)
		return "", false
	}
	return dateStr, true
}

func (app *application) plansGET(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	plans, err := app.workouts.Plans(r.Context(), email)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if plans == nil {
		plans = []workout.Plan{}
	}
	app.writeJSON(w, r, http.StatusOK, plans)
}

func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	email := contexthelpers.AuthenticatedEmail(r.Context())
	plan, err := app.workouts.Plan(r.Context(), email, date)
	if errors.Is(err, workout.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, plan)
}

func (app *application) planPUT(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	email := contexthelpers.AuthenticatedEmail(r.Context())
	var plan workout.Plan
	if !app.readJSON(w, r, &plan) {
		return
	}
	plan.Date = date
	if err := app.workouts.SavePlan(r.Context(), email, plan); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.clientError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		app.serverError(w, r, err)
		return
	}
	saved, err := app.workouts.Plan(r.Context(), email, date)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, saved)
}

func (app *application) planDELETE(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	email := contexthelpers.AuthenticatedEmail(r.Context())
	err := app.workouts.DeletePlan(r.Context(), email, date)
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
