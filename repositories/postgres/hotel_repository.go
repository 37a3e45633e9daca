package postgres

import (
	"context"
	"fmt"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"go.uber.org/zap"
)

const hotelColumns = `id, name, address, rating, country_id, created_at, updated_at`

// HotelRepository implements repositories.HotelRepository
type HotelRepository struct {
	db     *DB
	tx     *Transaction
	logger *zap.Logger
}

// NewHotelRepository creates a new hotel repository
func NewHotelRepository(db *DB, logger *zap.Logger) repositories.HotelRepository {
	return &HotelRepository{db: db, logger: logger}
}

// List returns every hotel ordered by id
func (r *HotelRepository) List(ctx context.Context) ([]*models.Hotel, error) {
	return r.query(ctx, `SELECT `+hotelColumns+` FROM hotels ORDER BY id`)
}

// ListPaged returns one window of hotels plus the total count
func (r *HotelRepository) ListPaged(ctx context.Context, params models.QueryParameters) ([]*models.Hotel, int, error) {
	params = params.Normalize()

	var total int
	if err := executorFor(ctx, r.db, r.tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM hotels`).Scan(&total); err != nil {
		return nil, 0, mapError("count hotels", err)
	}

	hotels, err := r.query(ctx,
		`SELECT `+hotelColumns+` FROM hotels ORDER BY id OFFSET $1 LIMIT $2`,
		params.StartIndex, params.PageSize)
	if err != nil {
		return nil, 0, err
	}
	return hotels, total, nil
}

// GetByID retrieves a hotel by id
func (r *HotelRepository) GetByID(ctx context.Context, id int) (*models.Hotel, error) {
	h := &models.Hotel{}
	err := executorFor(ctx, r.db, r.tx).QueryRowContext(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE id = $1`, id).Scan(
		&h.ID, &h.Name, &h.Address, &h.Rating, &h.CountryID, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, mapError("get hotel", err)
	}
	return h, nil
}

// Create inserts a hotel and sets its generated id
func (r *HotelRepository) Create(ctx context.Context, hotel *models.Hotel) error {
	query := `
		INSERT INTO hotels (name, address, rating, country_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at
	`

	err := executorFor(ctx, r.db, r.tx).QueryRowContext(ctx, query,
		hotel.Name, hotel.Address, hotel.Rating, hotel.CountryID,
	).Scan(&hotel.ID, &hotel.CreatedAt, &hotel.UpdatedAt)
	if err != nil {
		return mapError("create hotel", err)
	}

	r.logger.Debug("hotel created", zap.Int("id", hotel.ID), zap.Int("country_id", hotel.CountryID))
	return nil
}

// Update overwrites the editable fields
func (r *HotelRepository) Update(ctx context.Context, hotel *models.Hotel) error {
	query := `
		UPDATE hotels
		SET name = $2,
		    address = $3,
		    rating = $4,
		    country_id = $5,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := executorFor(ctx, r.db, r.tx).ExecContext(ctx, query,
		hotel.ID, hotel.Name, hotel.Address, hotel.Rating, hotel.CountryID,
	)
	if err != nil {
		return mapError("update hotel", err)
	}
	if err := requireRow("update hotel", result); err != nil {
		return err
	}

	r.logger.Debug("hotel updated", zap.Int("id", hotel.ID))
	return nil
}

// Delete removes a hotel
func (r *HotelRepository) Delete(ctx context.Context, id int) error {
	result, err := executorFor(ctx, r.db, r.tx).ExecContext(ctx, `DELETE FROM hotels WHERE id = $1`, id)
	if err != nil {
		return mapError("delete hotel", err)
	}
	if err := requireRow("delete hotel", result); err != nil {
		return err
	}

	r.logger.Debug("hotel deleted", zap.Int("id", id))
	return nil
}

// Exists reports whether a hotel with id exists
func (r *HotelRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := executorFor(ctx, r.db, r.tx).QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM hotels WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, mapError("check hotel exists", err)
	}
	return exists, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *HotelRepository) WithTx(tx repositories.Transaction) repositories.HotelRepository {
	return &HotelRepository{db: r.db, tx: boundTx(tx), logger: r.logger}
}

func (r *HotelRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Hotel, error) {
	rows, err := executorFor(ctx, r.db, r.tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("query hotels", err)
	}
	defer rows.Close()

	hotels := []*models.Hotel{}
	for rows.Next() {
		h := &models.Hotel{}
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.Rating, &h.CountryID, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hotel rows: %w", err)
	}

	return hotels, nil
}
