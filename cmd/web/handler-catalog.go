package main

import (
	"net/http"

	"github.com/apexfit/apexfit/internal/catalog"
	"github.com/apexfit/apexfit/internal/errors"
)

func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	exercises, err := app.catalog.List(r.Context(), catalog.Filter{
		MuscleGroup: query.Get("muscleGroup"),
		Equipment:   query.Get("equipment"),
		Category:    query.Get("category"),
	})
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if exercises == nil {
		exercises = []catalog.Exercise{}
	}
	app.writeJSON(w, r, http.StatusOK, exercises)
}

func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	exercise, err := app.catalog.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, exercise)
}
