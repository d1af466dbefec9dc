package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"agrly/internal/data/entity"
	"agrly/pkg/database"
)

// OutboxRepository hands pending events to the background worker. Rows are
// inserted by BookingRepository inside the booking transaction.
type OutboxRepository interface {
	// ClaimNext picks the oldest due pending event and bumps its attempt
	// counter. SKIP LOCKED keeps concurrent workers from claiming the same
	// row. Returns nil when nothing is due.
	ClaimNext(ctx context.Context) (*entity.OutboxEvent, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, nextRetry time.Time, lastError string) error
	MarkDead(ctx context.Context, id uuid.UUID, lastError string) error
}

type outboxRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOutboxRepository(db database.PgxIface, log *zap.Logger) OutboxRepository {
	return &outboxRepository{
		db:  db,
		log: log.With(zap.String("repository", "outbox")),
	}
}

func (r *outboxRepository) ClaimNext(ctx context.Context) (*entity.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET attempts = attempts + 1
		WHERE id = (
			SELECT id FROM outbox_events
			WHERE status = 'pending' AND next_retry_at <= NOW()
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, name, aggregate_id, payload, status, attempts, next_retry_at, last_error, created_at
	`

	var event entity.OutboxEvent
	err := r.db.QueryRow(ctx, query).Scan(
		&event.ID,
		&event.Name,
		&event.AggregateID,
		&event.Payload,
		&event.Status,
		&event.Attempts,
		&event.NextRetryAt,
		&event.LastError,
		&event.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to claim outbox event", zap.Error(err))
		return nil, fmt.Errorf("claim outbox event: %w", err)
	}

	return &event, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE outbox_events SET status = 'sent', last_error = NULL WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		r.log.Error("Failed to mark outbox event sent",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("mark outbox event %s sent: %w", id.String(), err)
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, nextRetry time.Time, lastError string) error {
	query := `UPDATE outbox_events SET next_retry_at = $2, last_error = $3 WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, nextRetry, lastError); err != nil {
		r.log.Error("Failed to mark outbox event for retry",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("mark outbox event %s for retry: %w", id.String(), err)
	}
	return nil
}

func (r *outboxRepository) MarkDead(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `UPDATE outbox_events SET status = 'failed', last_error = $2 WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, lastError); err != nil {
		r.log.Error("Failed to mark outbox event dead",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("mark outbox event %s dead: %w", id.String(), err)
	}
	return nil
}
