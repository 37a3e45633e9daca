package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
	"github.com/upb/hotel-listing/services"
	"go.uber.org/zap"
)

func TestCountryService_ListPaged(t *testing.T) {
	repo := new(MockCountryRepository)
	svc := NewCountryService(repo, zap.NewNop())

	want := models.QueryParameters{StartIndex: 0, PageSize: models.DefaultPageSize, PageNumber: 1}
	repo.On("ListPaged", mock.Anything, want).Return([]*models.Country{{ID: 1, Name: "Jamaica"}}, 3, nil)

	page, err := svc.ListPaged(context.Background(), models.QueryParameters{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, models.DefaultPageSize, page.RecordNumber)
	assert.Len(t, page.Items, 1)
	repo.AssertExpectations(t)
}

func TestCountryService_GetMissing(t *testing.T) {
	repo := new(MockCountryRepository)
	svc := NewCountryService(repo, zap.NewNop())
	repo.On("GetDetails", mock.Anything, 9).Return(nil, fmt.Errorf("get country: %w", repositories.ErrNotFound))

	_, err := svc.Get(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, services.IsNotFoundError(err))
	assert.Contains(t, err.Error(), "GetDetails (9) was not found")
}

func TestCountryService_Update(t *testing.T) {
	tests := []struct {
		name      string
		pathID    int
		req       models.CountryRequest
		repoErr   error
		callsRepo bool
		check     func(*testing.T, error)
	}{
		{
			name:      "updates matching record",
			pathID:    1,
			req:       models.CountryRequest{ID: 1, Name: "Jamaica", ShortName: "JA"},
			callsRepo: true,
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name:   "rejects mismatched id",
			pathID: 1,
			req:    models.CountryRequest{ID: 2, Name: "Jamaica"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, services.ErrInvalidRecordID)
				assert.Equal(t, "Invalid Record Id", services.ErrInvalidRecordID.Message)
			},
		},
		{
			name:      "missing record",
			pathID:    7,
			req:       models.CountryRequest{ID: 7, Name: "Atlantis"},
			repoErr:   repositories.ErrNotFound,
			callsRepo: true,
			check:     func(t *testing.T, err error) { assert.True(t, services.IsNotFoundError(err)) },
		},
		{
			name:      "database failure",
			pathID:    1,
			req:       models.CountryRequest{ID: 1, Name: "Jamaica"},
			repoErr:   errors.New("connection reset"),
			callsRepo: true,
			check:     func(t *testing.T, err error) { assert.True(t, services.IsInternalError(err)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCountryRepository)
			svc := NewCountryService(repo, zap.NewNop())
			if tt.callsRepo {
				repo.On("Update", mock.Anything, &models.Country{ID: tt.pathID, Name: tt.req.Name, ShortName: tt.req.ShortName}).Return(tt.repoErr)
			}

			tt.check(t, svc.Update(context.Background(), tt.pathID, tt.req))
			if !tt.callsRepo {
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCountryService_CreateAndDelete(t *testing.T) {
	repo := new(MockCountryRepository)
	svc := NewCountryService(repo, zap.NewNop())

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Country")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Country).ID = 4
	}).Return(nil)
	repo.On("Delete", mock.Anything, 4).Return(nil)
	repo.On("Delete", mock.Anything, 5).Return(repositories.ErrNotFound)

	country, err := svc.Create(context.Background(), models.CountryRequest{Name: "Barbados", ShortName: "BB"})
	require.NoError(t, err)
	assert.Equal(t, 4, country.ID)

	assert.NoError(t, svc.Delete(context.Background(), 4))
	assert.True(t, services.IsNotFoundError(svc.Delete(context.Background(), 5)))
}

func newHotelService() (*HotelService, *MockHotelRepository, *MockCountryRepository, *MockTransaction) {
	hotels := new(MockHotelRepository)
	countries := new(MockCountryRepository)
	txMgr := new(MockTransactionManager)
	tx := new(MockTransaction)
	txMgr.On("Begin", mock.Anything).Return(tx, nil)
	return NewHotelService(hotels, countries, txMgr, zap.NewNop()), hotels, countries, tx
}

func TestHotelService_Create(t *testing.T) {
	svc, hotels, countries, tx := newHotelService()
	countries.On("Exists", mock.Anything, 1).Return(true, nil)
	hotels.On("Create", mock.Anything, mock.AnythingOfType("*models.Hotel")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Hotel).ID = 10
	}).Return(nil)
	tx.On("Commit").Return(nil)

	hotel, err := svc.Create(context.Background(), models.HotelRequest{Name: "Sandals", Address: "Negril", Rating: 4.5, CountryID: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, hotel.ID)
	tx.AssertCalled(t, "Commit")
}

func TestHotelService_CreateCommitFailure(t *testing.T) {
	svc, hotels, countries, tx := newHotelService()
	countries.On("Exists", mock.Anything, 1).Return(true, nil)
	hotels.On("Create", mock.Anything, mock.AnythingOfType("*models.Hotel")).Return(nil)
	tx.On("Commit").Return(errors.New("connection reset"))

	hotel, err := svc.Create(context.Background(), models.HotelRequest{Name: "Sandals", CountryID: 1})
	require.Error(t, err)
	assert.Nil(t, hotel)
	assert.Contains(t, err.Error(), "failed to commit transaction")
	tx.AssertNotCalled(t, "Rollback")
}

func TestHotelService_CreateUnknownCountry(t *testing.T) {
	svc, hotels, countries, tx := newHotelService()
	countries.On("Exists", mock.Anything, 99).Return(false, nil)
	tx.On("Rollback").Return(nil)

	_, err := svc.Create(context.Background(), models.HotelRequest{Name: "Nowhere Inn", CountryID: 99})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
	assert.Equal(t, 99, services.GetErrorDetails(err)["countryId"])
	hotels.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	tx.AssertCalled(t, "Rollback")
}

func TestHotelService_UpdateMismatchedID(t *testing.T) {
	svc, hotels, _, _ := newHotelService()

	err := svc.Update(context.Background(), 3, models.HotelRequest{ID: 4, Name: "x", CountryID: 1})
	assert.ErrorIs(t, err, services.ErrInvalidRecordID)
	hotels.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestHotelService_UpdateMissing(t *testing.T) {
	svc, hotels, countries, tx := newHotelService()
	countries.On("Exists", mock.Anything, 1).Return(true, nil)
	hotels.On("Update", mock.Anything, mock.Anything).Return(repositories.ErrNotFound)
	tx.On("Rollback").Return(nil)

	err := svc.Update(context.Background(), 3, models.HotelRequest{ID: 3, Name: "x", CountryID: 1})
	assert.True(t, services.IsNotFoundError(err))
}

func TestHotelService_GetAndExists(t *testing.T) {
	svc, hotels, _, _ := newHotelService()
	hotels.On("GetByID", mock.Anything, 1).Return(&models.Hotel{ID: 1, Name: "Comfort Suites"}, nil)
	hotels.On("Exists", mock.Anything, 2).Return(false, nil)

	hotel, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Comfort Suites", hotel.Name)

	exists, err := svc.Exists(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, exists)
}
