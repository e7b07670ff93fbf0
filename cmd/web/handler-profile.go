package main

import (
	"net/http"

	"github.com/apexfit/apexfit/internal/contexthelpers"
	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/profile"
)

func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	p, err := app.profiles.Get(r.Context(), email)
	if errors.Is(err, profile.ErrNoProfile) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}

// profilePUT creates or replaces the profile. This is both the last step
// of onboarding and the profile editor's save.
func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	var p profile.Profile
	if !app.readJSON(w, r, &p) {
		return
	}
	saved, err := app.profiles.Save(r.Context(), email, p)
	if errors.Is(err, profile.ErrInvalidProfile) {
		app.clientError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, saved)
}

func (app *application) profileMetricsGET(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	metrics, err := app.profiles.Metrics(r.Context(), email)
	if errors.Is(err, profile.ErrNoProfile) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, metrics)
}

func (app *application) onboardingDraftGET(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	draft, err := app.profiles.Draft(r.Context(), email)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, draft)
}

func (app *application) onboardingDraftPUT(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	var draft profile.Draft
	if !app.readJSON(w, r, &draft) {
		return
	}
	if err := app.profiles.SaveDraft(r.Context(), email, draft); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, draft)
}

func (app *application) onboardingDraftDELETE(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	if err := app.profiles.ClearDraft(r.Context(), email); err != nil {
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
