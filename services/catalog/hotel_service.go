package catalog

import (
	"context"
	"fmt"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"github.com/upb/hotel-listing/services"
	"go.uber.org/zap"
)

// HotelService handles hotel reads and writes
type HotelService struct {
	hotels    repositories.HotelRepository
	countries repositories.CountryRepository
	txManager repositories.TransactionManager
	logger    *zap.Logger
}

// NewHotelService creates a new HotelService instance
func NewHotelService(
	hotels repositories.HotelRepository,
	countries repositories.CountryRepository,
	txManager repositories.TransactionManager,
	logger *zap.Logger,
) *HotelService {
	return &HotelService{hotels: hotels, countries: countries, txManager: txManager, logger: logger}
}

// List returns every hotel
func (s *HotelService) List(ctx context.Context) ([]*models.Hotel, error) {
	hotels, err := s.hotels.List(ctx)
	if err != nil {
		return nil, mapRepoError(err, "GetHotels", nil)
	}
	return hotels, nil
}

// ListPaged returns one page of hotels
func (s *HotelService) ListPaged(ctx context.Context, params models.QueryParameters) (*models.PagedResult[*models.Hotel], error) {
	params = params.Normalize()
	hotels, total, err := s.hotels.ListPaged(ctx, params)
	if err != nil {
		return nil, mapRepoError(err, "GetPagedHotels", nil)
	}
	return models.NewPagedResult(params, hotels, total), nil
}

// Get returns hotel id
func (s *HotelService) Get(ctx context.Context, id int) (*models.Hotel, error) {
	hotel, err := s.hotels.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "GetHotel", id)
	}
	return hotel, nil
}

// Create stores a new hotel after checking its country inside the same transaction
func (s *HotelService) Create(ctx context.Context, req models.HotelRequest) (*models.Hotel, error) {
	hotel, err := services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.Hotel, error) {
		if err := s.requireCountry(ctx, tx, req.CountryID); err != nil {
			return nil, err
		}
		hotel := &models.Hotel{Name: req.Name, Address: req.Address, Rating: req.Rating, CountryID: req.CountryID}
		if err := s.hotels.WithTx(tx).Create(ctx, hotel); err != nil {
			return nil, mapRepoError(err, "PostHotel", req.Name)
		}
		return hotel, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("hotel created", zap.Int("id", hotel.ID), zap.Int("country_id", hotel.CountryID))
	return hotel, nil
}

// Update overwrites hotel id. The body id must match.
func (s *HotelService) Update(ctx context.Context, id int, req models.HotelRequest) error {
	if id != req.ID {
		return services.ErrInvalidRecordID
	}

	hotel := &models.Hotel{ID: id, Name: req.Name, Address: req.Address, Rating: req.Rating, CountryID: req.CountryID}
	return services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.requireCountry(ctx, tx, req.CountryID); err != nil {
			return err
		}
		if err := s.hotels.WithTx(tx).Update(ctx, hotel); err != nil {
			return mapRepoError(err, "PutHotel", id)
		}
		return nil
	})
}

func (s *HotelService) requireCountry(ctx context.Context, tx repositories.Transaction, countryID int) error {
	exists, err := s.countries.WithTx(tx).Exists(ctx, countryID)
	if err != nil {
		return mapRepoError(err, "CountryExists", countryID)
	}
	if !exists {
		return services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("country %d does not exist", countryID), nil).
			WithDetail("countryId", countryID)
	}
	return nil
}

// Delete removes hotel id
func (s *HotelService) Delete(ctx context.Context, id int) error {
	if err := s.hotels.Delete(ctx, id); err != nil {
		return mapRepoError(err, "DeleteHotel", id)
	}

	s.logger.Info("hotel deleted", zap.Int("id", id))
	return nil
}

// Exists reports whether hotel id exists
func (s *HotelService) Exists(ctx context.Context, id int) (bool, error) {
	exists, err := s.hotels.Exists(ctx, id)
	if err != nil {
		return false, mapRepoError(err, "HotelExists", id)
	}
	return exists, nil
}
