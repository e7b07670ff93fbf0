// Package catalog serves the exercise library.
package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"

	"github.com/apexfit/apexfit/internal/errors"
	"github.com/apexfit/apexfit/internal/sqlite"
	"github.com/yuin/goldmark"
)

// ErrNotFound is returned when an exercise does not exist.
var ErrNotFound = errors.NewSentinel("exercise not found")

type Exercise struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	MuscleGroup string  `json:"muscleGroup"`
	Equipment   string  `json:"equipment"`
	Category    string  `json:"category"`
	Difficulty  string  `json:"difficulty"`
	METs        float64 `json:"mets"`
	// DescriptionHTML and TipsHTML are rendered from the stored markdown.
	DescriptionHTML string `json:"descriptionHtml,omitempty"`
	TipsHTML        string `json:"tipsHtml,omitempty"`
}

// Repository reads the exercise library from the database.
type Repository struct {
	db       *sqlite.Database
	markdown goldmark.Markdown
	logger   *slog.Logger
}

func NewRepository(db *sqlite.Database, logger *slog.Logger) *Repository {
	return &Repository{
		db:       db,
		markdown: goldmark.New(),
		logger:   logger,
	}
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	MuscleGroup string
	Equipment   string
	Category    string
}

func (r *Repository) List(ctx context.Context, filter Filter) ([]Exercise, error) {
	query := `
SELECT id, name, muscle_group, equipment, category, difficulty, mets, description_markdown, tips_markdown
FROM exercises
WHERE (?1 = '' OR muscle_group = ?1)
  AND (?2 = '' OR equipment = ?2)
  AND (?3 = '' OR category = ?3)
ORDER BY name`
	rows, err := r.db.ReadOnly.QueryContext(ctx, query,
		filter.MuscleGroup, filter.Equipment, filter.Category)
	if err != nil {
		return nil, errors.Wrap(err, "list exercises")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to close rows", errors.SlogError(err))
		}
	}()
	var exercises []Exercise
	for rows.Next() {
		exercise, err := r.scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate exercises")
	}
	return exercises, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Exercise, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `
SELECT id, name, muscle_group, equipment, category, difficulty, mets, description_markdown, tips_markdown
FROM exercises WHERE id = ?`, id)
	exercise, err := r.scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	if err != nil {
		return Exercise{}, errors.Wrap(err, "get exercise", slog.String("id", id))
	}
	return exercise, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanExercise(row scanner) (Exercise, error) {
	var (
		exercise    Exercise
		description string
		tips        string
	)
	if err := row.Scan(&exercise.ID, &exercise.Name, &exercise.MuscleGroup, &exercise.Equipment,
		&exercise.Category, &exercise.Difficulty, &exercise.METs, &description, &tips); err != nil {
		return Exercise{}, err
	}
	var err error
	if exercise.DescriptionHTML, err = r.render(description); err != nil {
		return Exercise{}, errors.Wrap(err, "render description", slog.String("id", exercise.ID))
	}
	if exercise.TipsHTML, err = r.render(tips); err != nil {
		return Exercise{}, errors.Wrap(err, "render tips", slog.String("id", exercise.ID))
	}
	return exercise, nil
}

func (r *Repository) render(markdown string) (string, error) {
	if markdown == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
