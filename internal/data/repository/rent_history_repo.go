package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agrly/internal/data/entity"
	"agrly/pkg/database"
)

// RentHistoryRepository is the history log: an append-only, denormalized
// record of stays, independent from the booking ledger.
type RentHistoryRepository interface {
	Create(ctx context.Context, history *entity.RentHistory) error
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.RentHistory, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

type rentHistoryRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRentHistoryRepository(db database.PgxIface, log *zap.Logger) RentHistoryRepository {
	return &rentHistoryRepository{
		db:  db,
		log: log.With(zap.String("repository", "rent_history")),
	}
}

func (r *rentHistoryRepository) Create(ctx context.Context, history *entity.RentHistory) error {
	// ON CONFLICT keeps outbox retries idempotent: projecting the same booking
	// twice must not produce two history rows
	query := `
		INSERT INTO rent_history (id, user_id, apartment_id, start_date, end_date, status, booking_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (booking_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query,
		history.ID,
		history.UserID,
		history.ApartmentID,
		history.StartDate,
		history.EndDate,
		history.Status,
		history.BookingID,
		history.CreatedAt,
		history.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create rent history entry",
			zap.Error(err),
			zap.String("booking_id", history.BookingID.String()),
			zap.String("user_id", history.UserID.String()),
		)
		return fmt.Errorf("create rent history for booking %s: %w", history.BookingID.String(), err)
	}

	return nil
}

func (r *rentHistoryRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.RentHistory, error) {
	query := `
		SELECT id, user_id, apartment_id, start_date, end_date, status, booking_id, created_at, updated_at
		FROM rent_history
		WHERE user_id = $1
		ORDER BY start_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find rent history by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find rent history by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var entries []*entity.RentHistory
	for rows.Next() {
		var entry entity.RentHistory
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ApartmentID,
			&entry.StartDate,
			&entry.EndDate,
			&entry.Status,
			&entry.BookingID,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan rent history row", zap.Error(err))
			return nil, fmt.Errorf("scan rent history row: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

func (r *rentHistoryRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM rent_history WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count rent history by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count rent history by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}
