package catalog

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/repositories"
)

// MockCountryRepository is a mock implementation of CountryRepository
type MockCountryRepository struct {
	mock.Mock
}

func (m *MockCountryRepository) List(ctx context.Context) ([]*models.Country, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.([]*models.Country), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCountryRepository) ListPaged(ctx context.Context, params models.QueryParameters) ([]*models.Country, int, error) {
	args := m.Called(ctx, params)
	if c := args.Get(0); c != nil {
		return c.([]*models.Country), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockCountryRepository) GetByID(ctx context.Context, id int) (*models.Country, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Country), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCountryRepository) GetDetails(ctx context.Context, id int) (*models.Country, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Country), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCountryRepository) Create(ctx context.Context, country *models.Country) error {
	return m.Called(ctx, country).Error(0)
}

func (m *MockCountryRepository) Update(ctx context.Context, country *models.Country) error {
	return m.Called(ctx, country).Error(0)
}

func (m *MockCountryRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCountryRepository) Exists(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCountryRepository) WithTx(tx repositories.Transaction) repositories.CountryRepository {
	return m
}

// MockHotelRepository is a mock implementation of HotelRepository
type MockHotelRepository struct {
	mock.Mock
}

func (m *MockHotelRepository) List(ctx context.Context) ([]*models.Hotel, error) {
	args := m.Called(ctx)
	if h := args.Get(0); h != nil {
		return h.([]*models.Hotel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHotelRepository) ListPaged(ctx context.Context, params models.QueryParameters) ([]*models.Hotel, int, error) {
	args := m.Called(ctx, params)
	if h := args.Get(0); h != nil {
		return h.([]*models.Hotel), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockHotelRepository) GetByID(ctx context.Context, id int) (*models.Hotel, error) {
	args := m.Called(ctx, id)
	if h := args.Get(0); h != nil {
		return h.(*models.Hotel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHotelRepository) Create(ctx context.Context, hotel *models.Hotel) error {
	return m.Called(ctx, hotel).Error(0)
}

func (m *MockHotelRepository) Update(ctx context.Context, hotel *models.Hotel) error {
	return m.Called(ctx, hotel).Error(0)
}

func (m *MockHotelRepository) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockHotelRepository) Exists(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockHotelRepository) WithTx(tx repositories.Transaction) repositories.HotelRepository {
	return m
}

// MockTransactionManager is a mock implementation of TransactionManager
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(repositories.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return m.Called(ctx, fn).Error(0)
}

// MockTransaction is a mock implementation of Transaction
type MockTransaction struct {
	mock.Mock
}

func (m *MockTransaction) Commit() error {
	return m.Called().Error(0)
}

func (m *MockTransaction) Rollback() error {
	return m.Called().Error(0)
}

func (m *MockTransaction) Context() context.Context {
	return context.Background()
}
