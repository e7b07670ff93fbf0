package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/apexfit/apexfit/internal/sqlite"
)

// maxConcurrentPlanLoads bounds parallel plan reads against the read pool.
const maxConcurrentPlanLoads = 4

// sqlitePlanRepository stores planned workouts keyed by calendar date.
type sqlitePlanRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newSQLitePlanRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePlanRepository {
	return &sqlitePlanRepository{db: db, logger: logger}
}

// Get returns the plan for a date with its items in position order.
func (r *sqlitePlanRepository) Get(ctx context.Context, userEmail, date string) (_ Plan, err error) {
	var plan Plan
	err = r.db.ReadOnly.QueryRowContext(ctx,
		"SELECT plan_date, name FROM workout_plans WHERE user_email = ? AND plan_date = ?",
		userEmail, date).Scan(&plan.Date, &plan.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Plan{}, ErrNotFound
	}
	if err != nil {
		return Plan{}, fmt.Errorf("query plan: %w", err)
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT i.exercise_id, e.name, i.target_sets, i.target_reps, i.target_weight_kg, i.target_rest_sec
		FROM workout_plan_items i
		JOIN exercises e ON e.id = i.exercise_id
		WHERE i.user_email = ? AND i.plan_date = ?
		ORDER BY i.position`, userEmail, date)
	if err != nil {
		return Plan{}, fmt.Errorf("query plan items: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	for rows.Next() {
		var item PlanItem
		if err = rows.Scan(&item.ExerciseID, &item.ExerciseName, &item.TargetSets,
			&item.TargetReps, &item.TargetWeightKg, &item.TargetRestSec); err != nil {
			return Plan{}, fmt.Errorf("scan plan item: %w", err)
		}
		plan.Items = append(plan.Items, item)
	}
	if err = rows.Err(); err != nil {
		return Plan{}, fmt.Errorf("rows error: %w", err)
	}
	return plan, nil
}

// List returns all plans of a user ordered by date, items included.
func (r *sqlitePlanRepository) List(ctx context.Context, userEmail string) (_ []Plan, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx,
		"SELECT plan_date FROM workout_plans WHERE user_email = ? ORDER BY plan_date", userEmail)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var dates []string
	for rows.Next() {
		var date string
		if err = rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan plan date: %w", err)
		}
		dates = append(dates, date)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	// The read pool serves the per-date loads concurrently.
	plans := make([]Plan, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPlanLoads)
	for i, date := range dates {
		g.Go(func() error {
			plan, getErr := r.Get(gctx, userEmail, date)
			if getErr != nil {
				return getErr
			}
			plans[i] = plan
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

// Put replaces the plan for a date, items included, in one transaction.
func (r *sqlitePlanRepository) Put(ctx context.Context, userEmail string, plan Plan) (err error) {
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
		INSERT INTO workout_plans (user_email, plan_date, name) VALUES (?, ?, ?)
		ON CONFLICT (user_email, plan_date) DO UPDATE SET name = excluded.name`,
		userEmail, plan.Date, plan.Name)
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"DELETE FROM workout_plan_items WHERE user_email = ? AND plan_date = ?",
		userEmail, plan.Date)
	if err != nil {
		return fmt.Errorf("clear plan items: %w", err)
	}
	for position, item := range plan.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO workout_plan_items
				(user_email, plan_date, position, exercise_id, target_sets, target_reps, target_weight_kg, target_rest_sec)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			userEmail, plan.Date, position, item.ExerciseID, item.TargetSets,
			item.TargetReps, item.TargetWeightKg, item.TargetRestSec)
		if err != nil {
			return fmt.Errorf("insert plan item: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit plan: %w", err)
	}
	return nil
}

// Delete removes the plan for a date.
func (r *sqlitePlanRepository) Delete(ctx context.Context, userEmail, date string) error {
	result, err := r.db.ReadWrite.ExecContext(ctx,
		"DELETE FROM workout_plans WHERE user_email = ? AND plan_date = ?", userEmail, date)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
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
