package pg

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DueCheck defers an idempotent conditional state check to a wall-clock
// time. Unlike an in-process timer it survives restarts; the sweeper polls
// for due rows and runs the check.
type DueCheck struct {
	ID          uuid.UUID
	Kind        string
	AggregateID uuid.UUID
	DueAt       time.Time
	CreatedAt   time.Time
	DoneAt      *time.Time
	Attempts    int
}

const (
	CheckKindDiscountFinalize  = "discount_finalize"
	CheckKindReservationExpiry = "reservation_expiry"
)

func (r *Repository) ScheduleCheck(ctx context.Context, kind string, aggregateID uuid.UUID, dueAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO due_checks (id, kind, aggregate_id, due_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (kind, aggregate_id) DO NOTHING
	`, uuid.New(), kind, aggregateID, dueAt)
	return err
}

func (r *Repository) GetDueChecks(ctx context.Context, tx pgx.Tx, now time.Time, limit int) ([]DueCheck, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, kind, aggregate_id, due_at, created_at, done_at, attempts
		FROM due_checks
		WHERE done_at IS NULL AND due_at <= $1
		ORDER BY due_at ASC LIMIT $2 FOR UPDATE SKIP LOCKED
	`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []DueCheck
	for rows.Next() {
		var c DueCheck
		if err := rows.Scan(&c.ID, &c.Kind, &c.AggregateID, &c.DueAt, &c.CreatedAt, &c.DoneAt, &c.Attempts); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

func (r *Repository) MarkCheckDone(ctx context.Context, tx pgx.Tx, id uuid.UUID, doneAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE due_checks SET done_at = $2 WHERE id = $1
	`, id, doneAt)
	return err
}

// RescheduleCheck pushes a not-yet-satisfiable check into the future and
// counts the attempt.
func (r *Repository) RescheduleCheck(ctx context.Context, tx pgx.Tx, id uuid.UUID, dueAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE due_checks SET due_at = $2, attempts = attempts + 1 WHERE id = $1
	`, id, dueAt)
	return err
}
