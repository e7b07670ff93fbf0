package main

import (
	"net/http"

	"github.com/apexfit/apexfit/internal/auth"
	"github.com/apexfit/apexfit/internal/contexthelpers"
	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/profile"
)

const sessionKeyEmail = "userEmail"

// loginRequestPOST issues a one-time code for the address. Resending is
// the same call again.
func (app *application) loginRequestPOST(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !app.readJSON(w, r, &body) {
		return
	}
	if err := app.otp.RequestCode(r.Context(), body.Email); err != nil {
		if errors.Is(err, auth.ErrInvalidEmail) {
			app.clientError(w, r, http.StatusBadRequest, "invalid email address")
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "code sent"})
}

// loginVerifyPOST trades a valid code for an authenticated session.
func (app *application) loginVerifyPOST(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !app.readJSON(w, r, &body) {
		return
	}
	if err := app.otp.VerifyCode(r.Context(), body.Email, body.Code); err != nil {
		if errors.Is(err, auth.ErrInvalidCode) {
			app.clientError(w, r, http.StatusUnauthorized, "invalid or expired code")
			return
		}
		app.serverError(w, r, err)
		return
	}
	// A fresh token on privilege change blocks session fixation.
	if err := app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.sessionManager.Put(r.Context(), sessionKeyEmail, body.Email)

	onboarded := true
	if _, err := app.profiles.Get(r.Context(), body.Email); errors.Is(err, profile.ErrNoProfile) {
		onboarded = false
	} else if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"email":     body.Email,
		"onboarded": onboarded,
	})
}

// logoutPOST ends the session and clears the stored profile, so the next
// sign-in starts from onboarding.
func (app *application) logoutPOST(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	if err := app.profiles.Delete(r.Context(), email); err != nil {
		app.serverError(w, r, err)
		return
	}
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "logged out"})
}

// sessionGET reports who is signed in, for client boot.
func (app *application) sessionGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !contexthelpers.IsAuthenticated(ctx) {
		app.writeJSON(w, r, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"authenticated": true,
		"email":         contexthelpers.AuthenticatedEmail(ctx),
	})
}
