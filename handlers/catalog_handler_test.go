package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/services"
	"go.uber.org/zap"
)

// MockCountryService is a mock implementation of CountryService
type MockCountryService struct {
	mock.Mock
}

func (m *MockCountryService) List(ctx context.Context) ([]*models.Country, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.([]*models.Country), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCountryService) ListPaged(ctx context.Context, params models.QueryParameters) (*models.PagedResult[*models.Country], error) {
	args := m.Called(ctx, params)
	if p := args.Get(0); p != nil {
		return p.(*models.PagedResult[*models.Country]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCountryService) Query(ctx context.Context, q models.CountryQuery) ([]*models.Country, error) {
	args := m.Called(ctx, q)
	if c := args.Get(0); c != nil {
		return c.([]*models.Country), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCountryService) Get(ctx context.Context, id int) (*models.Country, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Country), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCountryService) Create(ctx context.Context, req models.CountryRequest) (*models.Country, error) {
	args := m.Called(ctx, req)
	if c := args.Get(0); c != nil {
		return c.(*models.Country), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCountryService) Update(ctx context.Context, id int, req models.CountryRequest) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *MockCountryService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

// MockHotelService is a mock implementation of HotelService
type MockHotelService struct {
	mock.Mock
}

func (m *MockHotelService) List(ctx context.Context) ([]*models.Hotel, error) {
	args := m.Called(ctx)
	if h := args.Get(0); h != nil {
		return h.([]*models.Hotel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHotelService) ListPaged(ctx context.Context, params models.QueryParameters) (*models.PagedResult[*models.Hotel], error) {
	args := m.Called(ctx, params)
	if p := args.Get(0); p != nil {
		return p.(*models.PagedResult[*models.Hotel]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHotelService) Get(ctx context.Context, id int) (*models.Hotel, error) {
	args := m.Called(ctx, id)
	if h := args.Get(0); h != nil {
		return h.(*models.Hotel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHotelService) Create(ctx context.Context, req models.HotelRequest) (*models.Hotel, error) {
	args := m.Called(ctx, req)
	if h := args.Get(0); h != nil {
		return h.(*models.Hotel), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHotelService) Update(ctx context.Context, id int, req models.HotelRequest) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *MockHotelService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func countryRouter(svc CountryService) http.Handler {
	h := NewCountryHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/api/v1/countries/GetAll", h.HandleGetAll)
	r.Get("/api/v1/countries", h.HandleList)
	r.Post("/api/v1/countries", h.HandleCreate)
	r.Get("/api/v1/countries/{id}", h.HandleGet)
	r.Put("/api/v1/countries/{id}", h.HandleUpdate)
	r.Delete("/api/v1/countries/{id}", h.HandleDelete)
	r.Get("/api/v2/countries", h.HandleQuery)
	return r
}

func hotelRouter(svc HotelService) http.Handler {
	h := NewHotelHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/api/hotels/GetAll", h.HandleGetAll)
	r.Get("/api/hotels", h.HandleList)
	r.Post("/api/hotels", h.HandleCreate)
	r.Get("/api/hotels/{id}", h.HandleGet)
	r.Put("/api/hotels/{id}", h.HandleUpdate)
	r.Delete("/api/hotels/{id}", h.HandleDelete)
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCountryHandler(t *testing.T) {
	t.Run("get all", func(t *testing.T) {
		svc := new(MockCountryService)
		svc.On("List", mock.Anything).Return([]*models.Country{{ID: 1, Name: "Jamaica", ShortName: "JM"}}, nil)

		w := serve(countryRouter(svc), http.MethodGet, "/api/v1/countries/GetAll", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":1,"name":"Jamaica","shortName":"JM"}]`, w.Body.String())
	})

	t.Run("paged listing reads query parameters", func(t *testing.T) {
		svc := new(MockCountryService)
		params := models.QueryParameters{StartIndex: 10, PageSize: 5, PageNumber: 3}
		svc.On("ListPaged", mock.Anything, params).Return(&models.PagedResult[*models.Country]{
			TotalCount: 12, PageNumber: 3, RecordNumber: 5, Items: []*models.Country{{ID: 11, Name: "Cuba"}},
		}, nil)

		w := serve(countryRouter(svc), http.MethodGet, "/api/v1/countries?startIndex=10&pageSize=5&pageNumber=3", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"totalCount":12,"pageNumber":3,"recordNumber":5,"items":[{"id":11,"name":"Cuba","shortName":""}]}`, w.Body.String())
	})

	t.Run("get missing returns 404", func(t *testing.T) {
		svc := new(MockCountryService)
		svc.On("Get", mock.Anything, 7).Return(nil, services.NewNotFoundError("GetDetails", 7))

		w := serve(countryRouter(svc), http.MethodGet, "/api/v1/countries/7", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "GetDetails (7) was not found")
	})

	t.Run("non numeric id returns 400", func(t *testing.T) {
		w := serve(countryRouter(new(MockCountryService)), http.MethodGet, "/api/v1/countries/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("create returns 201 with location", func(t *testing.T) {
		svc := new(MockCountryService)
		svc.On("Create", mock.Anything, models.CountryRequest{Name: "Barbados", ShortName: "BB"}).
			Return(&models.Country{ID: 4, Name: "Barbados", ShortName: "BB"}, nil)

		w := serve(countryRouter(svc), http.MethodPost, "/api/v1/countries", `{"name":"Barbados","shortName":"BB"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "/api/v1/countries/4", w.Header().Get("Location"))
	})

	t.Run("update with mismatched id returns 400", func(t *testing.T) {
		svc := new(MockCountryService)
		svc.On("Update", mock.Anything, 1, models.CountryRequest{ID: 2, Name: "Jamaica"}).Return(services.ErrInvalidRecordID)

		w := serve(countryRouter(svc), http.MethodPut, "/api/v1/countries/1", `{"id":2,"name":"Jamaica"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid Record Id")
	})

	t.Run("delete returns 204", func(t *testing.T) {
		svc := new(MockCountryService)
		svc.On("Delete", mock.Anything, 3).Return(nil)

		w := serve(countryRouter(svc), http.MethodDelete, "/api/v1/countries/3", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("v2 query passes listing options through", func(t *testing.T) {
		svc := new(MockCountryService)
		top, skip := 2, 1
		q := models.CountryQuery{Filter: "contains(name,'a')", OrderBy: "name desc", Top: &top, Skip: &skip}
		svc.On("Query", mock.Anything, q).Return([]*models.Country{{ID: 2, Name: "Cuba", ShortName: "CU"}}, nil)

		w := serve(countryRouter(svc), http.MethodGet,
			"/api/v2/countries?$filter=contains(name,'a')&$orderby=name%20desc&$top=2&$skip=1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":2,"name":"Cuba","shortName":"CU"}]`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("v2 query rejects a non numeric $top", func(t *testing.T) {
		svc := new(MockCountryService)

		w := serve(countryRouter(svc), http.MethodGet, "/api/v2/countries?$top=many", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "$top must be an integer")
		svc.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	})
}

func TestHotelHandler(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		svc := new(MockHotelService)
		svc.On("Get", mock.Anything, 2).Return(&models.Hotel{ID: 2, Name: "Sandals", Address: "Negril", Rating: 4.5, CountryID: 1}, nil)

		w := serve(hotelRouter(svc), http.MethodGet, "/api/hotels/2", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":2,"name":"Sandals","address":"Negril","rating":4.5,"countryId":1}`, w.Body.String())
	})

	t.Run("create validates rating", func(t *testing.T) {
		svc := new(MockHotelService)

		w := serve(hotelRouter(svc), http.MethodPost, "/api/hotels", `{"name":"Sandals","rating":9,"countryId":1}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "rating")
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("create with unknown country returns 400", func(t *testing.T) {
		svc := new(MockHotelService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil,
			services.NewDomainError(services.ErrorTypeValidation, "country 99 does not exist", nil).WithDetail("countryId", 99))

		w := serve(hotelRouter(svc), http.MethodPost, "/api/hotels", `{"name":"Nowhere","countryId":99}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "countryId")
	})

	t.Run("update missing returns 404", func(t *testing.T) {
		svc := new(MockHotelService)
		svc.On("Update", mock.Anything, 5, mock.Anything).Return(services.NewNotFoundError("PutHotel", 5))

		w := serve(hotelRouter(svc), http.MethodPut, "/api/hotels/5", `{"id":5,"name":"Gone","countryId":1}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
