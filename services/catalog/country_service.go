// Package catalog serves the countries and hotels listings.
package catalog

import (
	"context"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"github.com/upb/hotel-listing/services"
	"go.uber.org/zap"
)

// CountryService handles country reads and writes
type CountryService struct {
	countries repositories.CountryRepository
	logger    *zap.Logger
}

// NewCountryService creates a new CountryService instance
func NewCountryService(countries repositories.CountryRepository, logger *zap.Logger) *CountryService {
	return &CountryService{countries: countries, logger: logger}
}

// List returns every country
func (s *CountryService) List(ctx context.Context) ([]*models.Country, error) {
	countries, err := s.countries.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, "GetCountries", nil)
	}
	return countries, nil
}

// Query returns the countries selected by the v2 listing options
func (s *CountryService) Query(ctx context.Context, q models.CountryQuery) ([]*models.Country, error) {
	countries, err := s.countries.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, "GetCountries", nil)
	}
	return applyCountryQuery(countries, q)
}

// ListPaged returns one page of countries
func (s *CountryService) ListPaged(ctx context.Context, params models.QueryParameters) (*models.PagedResult[*models.Country], error) {
	params = params.Normalize()
	countries, total, err := s.countries.ListPaged(ctx, params)
	if err != nil {
		return nil, mapRepoError(err, "GetPagedCountries", nil)
	}
	return models.NewPagedResult(params, countries, total), nil
}

// Get returns a country with its hotels
func (s *CountryService) Get(ctx context.Context, id int) (*models.Country, error) {
	country, err := s.countries.GetDetails(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "GetDetails", id)
	}
	return country, nil
}

// Create stores a new country
func (s *CountryService) Create(ctx context.Context, req models.CountryRequest) (*models.Country, error) {
	country := &models.Country{Name: req.Name, ShortName: req.ShortName}
	if err := s.countries.Create(ctx, country); err != nil {
		return nil, mapRepoError(err, "PostCountry", req.Name)
	}

	s.logger.Info("country created", zap.Int("id", country.ID), zap.String("name", country.Name))
	return country, nil
}

// Update overwrites country id. The body id must match.
func (s *CountryService) Update(ctx context.Context, id int, req models.CountryRequest) error {
	if id != req.ID {
		return services.ErrInvalidRecordID
	}

	country := &models.Country{ID: id, Name: req.Name, ShortName: req.ShortName}
	if err := s.countries.Update(ctx, country); err != nil {
		return mapRepoError(err, "PutCountry", id)
	}
	return nil
}

// Delete removes country id and its hotels
func (s *CountryService) Delete(ctx context.Context, id int) error {
	if err := s.countries.Delete(ctx, id); err != nil {
		return mapRepoError(err, "DeleteCountry", id)
	}

	s.logger.Info("country deleted", zap.Int("id", id))
	return nil
}

// Exists reports whether country id exists
func (s *CountryService) Exists(ctx context.Context, id int) (bool, error) {
	exists, err := s.countries.Exists(ctx, id)
	if err != nil {
		return false, mapRepoError(err, "CountryExists", id)
	}
	return exists, nil
}
