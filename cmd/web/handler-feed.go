package main

import (
	"net/http"

	"github.com/apexfit/apexfit/internal/contexthelpers"
	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/feed"
)

type postRequest struct {
	Content string       `json:"content"`
	Media   []feed.Media `json:"media"`
}

func (app *application) postsGET(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	posts, err := app.feed.List(r.Context(), email)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if posts == nil {
		posts = []feed.Post{}
	}
	app.writeJSON(w, r, http.StatusOK, posts)
}

func (app *application) postsPOST(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	var body postRequest
	if !app.readJSON(w, r, &body) {
		return
	}
	post, err := app.feed.Create(r.Context(), email, body.Content, body.Media)
	if errors.Is(err, feed.ErrInvalidPost) {
		app.clientError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, post)
}

func (app *application) postPUT(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	var body postRequest
	if !app.readJSON(w, r, &body) {
		return
	}
	post, err := app.feed.Update(r.Context(), email, r.PathValue("id"), body.Content, body.Media)
	switch {
	case errors.Is(err, feed.ErrPostNotFound):
		app.notFound(w, r)
	case errors.Is(err, feed.ErrInvalidPost):
		app.clientError(w, r, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(w, r, http.StatusOK, post)
	}
}

func (app *application) postDELETE(w http.ResponseWriter, r *http.Request) {
	email := contexthelpers.AuthenticatedEmail(r.Context())
	err := app.feed.Delete(r.Context(), email, r.PathValue("id"))
	if errors.Is(err, feed.ErrPostNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
