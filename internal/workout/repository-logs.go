package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/apexfit/apexfit/internal/sqlite"
)

// ErrNotFound is returned when a log or plan does not exist.
var ErrNotFound = errors.New("not found")

// sqliteLogRepository stores finished workout logs.
type sqliteLogRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newSQLiteLogRepository(db *sqlite.Database, logger *slog.Logger) *sqliteLogRepository {
	return &sqliteLogRepository{db: db, logger: logger}
}

// Create persists a log and its sets in one transaction.
func (r *sqliteLogRepository) Create(ctx context.Context, userEmail string, log Log) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rollbackErr))
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workout_logs
			(id, user_email, name, start_time, duration_sec, feeling_rpe, notes,
			 total_volume_kg, calories, status, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, userEmail, log.Name, log.StartTime.UTC().Format(time.RFC3339),
		log.DurationSec, nullableInt(log.FeelingRPE), log.Notes,
		log.TotalVolumeKg, log.Calories, log.Status, log.SyncStatus)
	if err != nil {
		return fmt.Errorf("insert workout log: %w", err)
	}

	for _, set := range log.Sets {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO workout_sets
				(id, workout_log_id, exercise_id, set_order, weight_kg, reps, set_type, completed, estimated_1rm)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)`,
			set.ID, log.ID, set.ExerciseID, set.Order, set.WeightKg, set.Reps, set.Type, set.Estimated1RM)
		if err != nil {
			return fmt.Errorf("insert workout set: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit workout log: %w", err)
	}
	return nil
}

// List returns a user's logs, most recent first, without their sets.
func (r *sqliteLogRepository) List(ctx context.Context, userEmail string) (_ []Log, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT l.id, l.name, l.start_time, l.duration_sec, l.feeling_rpe, l.notes,
		       l.total_volume_kg, l.calories, l.status, l.sync_status,
		       (SELECT COUNT(*) FROM workout_sets s WHERE s.workout_log_id = l.id)
		FROM workout_logs l
		WHERE l.user_email = ?
		ORDER BY l.start_time DESC`, userEmail)
	if err != nil {
		return nil, fmt.Errorf("query workout logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var logs []Log
	for rows.Next() {
		log, scanErr := scanLog(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		logs = append(logs, log)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return logs, nil
}

// Get returns one log with its sets.
func (r *sqliteLogRepository) Get(ctx context.Context, userEmail, id string) (Log, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT l.id, l.name, l.start_time, l.duration_sec, l.feeling_rpe, l.notes,
		       l.total_volume_kg, l.calories, l.status, l.sync_status,
		       (SELECT COUNT(*) FROM workout_sets s WHERE s.workout_log_id = l.id)
		FROM workout_logs l
		WHERE l.user_email = ? AND l.id = ?`, userEmail, id)
	log, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Log{}, ErrNotFound
	}
	if err != nil {
		return Log{}, err
	}
	if log.Sets, err = r.loadSets(ctx, id); err != nil {
		return Log{}, err
	}
	return log, nil
}

// Delete removes a log and, through the foreign key cascade, its sets.
func (r *sqliteLogRepository) Delete(ctx context.Context, userEmail, id string) error {
	result, err := r.db.ReadWrite.ExecContext(ctx,
		"DELETE FROM workout_logs WHERE user_email = ? AND id = ?", userEmail, id)
	if err != nil {
		return fmt.Errorf("delete workout log: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSynced flips a pending log to synced.
func (r *sqliteLogRepository) MarkSynced(ctx context.Context, userEmail, id string) error {
	result, err := r.db.ReadWrite.ExecContext(ctx,
		"UPDATE workout_logs SET sync_status = ? WHERE user_email = ? AND id = ?",
		SyncSynced, userEmail, id)
	if err != nil {
		return fmt.Errorf("mark log synced: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteLogRepository) loadSets(ctx context.Context, logID string) (_ []LogSet, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT s.id, s.exercise_id, e.name, s.set_order, s.weight_kg, s.reps, s.set_type, s.estimated_1rm
		FROM workout_sets s
		JOIN exercises e ON e.id = s.exercise_id
		WHERE s.workout_log_id = ?
		ORDER BY s.set_order, s.rowid`, logID)
	if err != nil {
		return nil, fmt.Errorf("query workout sets: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var sets []LogSet
	for rows.Next() {
		var (
			set          LogSet
			estimated1RM sql.NullFloat64
		)
		if err = rows.Scan(&set.ID, &set.ExerciseID, &set.ExerciseName, &set.Order,
			&set.WeightKg, &set.Reps, &set.Type, &estimated1RM); err != nil {
			return nil, fmt.Errorf("scan set row: %w", err)
		}
		set.Estimated1RM = estimated1RM.Float64
		sets = append(sets, set)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return sets, nil
}

func scanLog(row interface{ Scan(...any) error }) (Log, error) {
	var (
		log          Log
		startTimeStr string
		feelingRPE   sql.NullInt32
	)
	err := row.Scan(&log.ID, &log.Name, &startTimeStr, &log.DurationSec, &feelingRPE,
		&log.Notes, &log.TotalVolumeKg, &log.Calories, &log.Status, &log.SyncStatus, &log.SetCount)
	if err != nil {
		return Log{}, err
	}
	if log.StartTime, err = time.Parse(time.RFC3339, startTimeStr); err != nil {
		return Log{}, fmt.Errorf("parse start time: %w", err)
	}
	log.Duration = time.Duration(log.DurationSec) * time.Second
	log.FeelingRPE = int(feelingRPE.Int32)
	return log, nil
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
