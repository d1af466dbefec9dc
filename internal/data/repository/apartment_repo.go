package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"agrly/internal/data/entity"
	"agrly/pkg/database"
)

// ApartmentRepository is the read-only listing directory. The booking engine
// never writes apartments.
type ApartmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Apartment, error)
	FindAvailable(ctx context.Context, limit, offset int) ([]*entity.Apartment, error)
	CountAvailable(ctx context.Context) (int64, error)
}

type apartmentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewApartmentRepository(db database.PgxIface, log *zap.Logger) ApartmentRepository {
	return &apartmentRepository{
		db:  db,
		log: log.With(zap.String("repository", "apartment")),
	}
}

const apartmentColumns = `
	id, owner_id, title, description, location, price_per_night, rating, is_active,
	created_at, updated_at, deleted_at
`

func (r *apartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Apartment, error) {
	query := `SELECT ` + apartmentColumns + ` FROM apartments WHERE id = $1 AND deleted_at IS NULL`

	apartment, err := r.scanApartment(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find apartment by ID",
			zap.Error(err),
			zap.String("apartment_id", id.String()),
		)
		return nil, fmt.Errorf("find apartment by ID %s: %w", id.String(), err)
	}

	return apartment, nil
}

func (r *apartmentRepository) FindAvailable(ctx context.Context, limit, offset int) ([]*entity.Apartment, error) {
	query := `
		SELECT ` + apartmentColumns + `
		FROM apartments
		WHERE is_active = TRUE AND deleted_at IS NULL
		ORDER BY rating DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list available apartments",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("list available apartments: %w", err)
	}
	defer rows.Close()

	var apartments []*entity.Apartment
	for rows.Next() {
		apartment, err := r.scanApartment(rows)
		if err != nil {
			r.log.Error("Failed to scan apartment row", zap.Error(err))
			return nil, fmt.Errorf("scan apartment row: %w", err)
		}
		apartments = append(apartments, apartment)
	}

	return apartments, nil
}

func (r *apartmentRepository) CountAvailable(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM apartments WHERE is_active = TRUE AND deleted_at IS NULL`

	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count available apartments", zap.Error(err))
		return 0, fmt.Errorf("count available apartments: %w", err)
	}

	return count, nil
}

func (r *apartmentRepository) scanApartment(row pgx.Row) (*entity.Apartment, error) {
	var apartment entity.Apartment
	err := row.Scan(
		&apartment.ID,
		&apartment.OwnerID,
		&apartment.Title,
		&apartment.Description,
		&apartment.Location,
		&apartment.PricePerNight,
		&apartment.Rating,
		&apartment.IsActive,
		&apartment.CreatedAt,
		&apartment.UpdatedAt,
		&apartment.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &apartment, nil
}
