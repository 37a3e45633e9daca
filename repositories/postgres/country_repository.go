package postgres

import (
	"context"
	"fmt"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"go.uber.org/zap"
)

// CountryRepository implements repositories.CountryRepository
type CountryRepository struct {
	db     *DB
	tx     *Transaction
	logger *zap.Logger
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(db *DB, logger *zap.Logger) repositories.CountryRepository {
	return &CountryRepository{db: db, logger: logger}
}

// List returns every country ordered by id
func (r *CountryRepository) List(ctx context.Context) ([]*models.Country, error) {
	return r.query(ctx, `SELECT id, name, short_name, created_at, updated_at FROM countries ORDER BY id`)
}

// ListPaged returns one window of countries plus the total count
func (r *CountryRepository) ListPaged(ctx context.Context, params models.QueryParameters) ([]*models.Country, int, error) {
	params = params.Normalize()
	executor := executorFor(ctx, r.db, r.tx)

	var total int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM countries`).Scan(&total); err != nil {
		return nil, 0, mapError("count countries", err)
	}

	countries, err := r.query(ctx,
		`SELECT id, name, short_name, created_at, updated_at FROM countries ORDER BY id OFFSET $1 LIMIT $2`,
		params.StartIndex, params.PageSize)
	if err != nil {
		return nil, 0, err
	}
	return countries, total, nil
}

// GetByID retrieves a country without its hotels
func (r *CountryRepository) GetByID(ctx context.Context, id int) (*models.Country, error) {
	query := `SELECT id, name, short_name, created_at, updated_at FROM countries WHERE id = $1`

	c := &models.Country{}
	err := executorFor(ctx, r.db, r.tx).QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.ShortName, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, mapError("get country", err)
	}
	return c, nil
}

// GetDetails loads the country together with its hotels
func (r *CountryRepository) GetDetails(ctx context.Context, id int) (*models.Country, error) {
	country, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, address, rating, country_id, created_at, updated_at
		FROM hotels
		WHERE country_id = $1
		ORDER BY id
	`
	rows, err := executorFor(ctx, r.db, r.tx).QueryContext(ctx, query, id)
	if err != nil {
		return nil, mapError("get country hotels", err)
	}
	defer rows.Close()

	country.Hotels = []models.Hotel{}
	for rows.Next() {
		var h models.Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.Rating, &h.CountryID, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		country.Hotels = append(country.Hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hotel rows: %w", err)
	}

	return country, nil
}

// Create inserts a country and sets its generated id
func (r *CountryRepository) Create(ctx context.Context, country *models.Country) error {
	query := `
		INSERT INTO countries (name, short_name, created_at, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at
	`

	err := executorFor(ctx, r.db, r.tx).QueryRowContext(ctx, query, country.Name, country.ShortName).Scan(
		&country.ID, &country.CreatedAt, &country.UpdatedAt,
	)
	if err != nil {
		return mapError("create country", err)
	}

	r.logger.Debug("country created", zap.Int("id", country.ID))
	return nil
}

// Update overwrites the editable fields
func (r *CountryRepository) Update(ctx context.Context, country *models.Country) error {
	query := `
		UPDATE countries
		SET name = $2,
		    short_name = $3,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := executorFor(ctx, r.db, r.tx).ExecContext(ctx, query, country.ID, country.Name, country.ShortName)
	if err != nil {
		return mapError("update country", err)
	}
	if err := requireRow("update country", result); err != nil {
		return err
	}

	r.logger.Debug("country updated", zap.Int("id", country.ID))
	return nil
}

// Delete removes a country and, by cascade, its hotels
func (r *CountryRepository) Delete(ctx context.Context, id int) error {
	result, err := executorFor(ctx, r.db, r.tx).ExecContext(ctx, `DELETE FROM countries WHERE id = $1`, id)
	if err != nil {
		return mapError("delete country", err)
	}
	if err := requireRow("delete country", result); err != nil {
		return err
	}

	r.logger.Debug("country deleted", zap.Int("id", id))
	return nil
}

// Exists reports whether a country with id exists
func (r *CountryRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := executorFor(ctx, r.db, r.tx).QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM countries WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, mapError("check country exists", err)
	}
	return exists, nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *CountryRepository) WithTx(tx repositories.Transaction) repositories.CountryRepository {
	return &CountryRepository{db: r.db, tx: boundTx(tx), logger: r.logger}
}

func (r *CountryRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Country, error) {
	rows, err := executorFor(ctx, r.db, r.tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("query countries", err)
	}
	defer rows.Close()

	countries := []*models.Country{}
	for rows.Next() {
		c := &models.Country{}
		if err := rows.Scan(&c.ID, &c.Name, &c.ShortName, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating country rows: %w", err)
	}

	return countries, nil
}
