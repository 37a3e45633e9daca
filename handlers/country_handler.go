package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/utils"
	"go.uber.org/zap"
)

// CountryService defines the country operations used by the handler
type CountryService interface {
	List(ctx context.Context) ([]*models.Country, error)
	ListPaged(ctx context.Context, params models.QueryParameters) (*models.PagedResult[*models.Country], error)
	Query(ctx context.Context, q models.CountryQuery) ([]*models.Country, error)
	Get(ctx context.Context, id int) (*models.Country, error)
	Create(ctx context.Context, req models.CountryRequest) (*models.Country, error)
	Update(ctx context.Context, id int, req models.CountryRequest) error
	Delete(ctx context.Context, id int) error
}

// CountryHandler handles /api/v1/countries and /api/v2/countries
type CountryHandler struct {
	service CountryService
	logger  *zap.Logger
}

// NewCountryHandler creates a new CountryHandler
func NewCountryHandler(service CountryService, logger *zap.Logger) *CountryHandler {
	return &CountryHandler{service: service, logger: logger}
}

// HandleGetAll handles GET /GetAll
func (h *CountryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	countries, err := h.service.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, countries)
}

// HandleList handles GET / with paging query parameters
func (h *CountryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListPaged(r.Context(), queryParameters(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, page)
}

// HandleQuery handles the v2 GET / with $filter, $orderby, $top and $skip
func (h *CountryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	q, err := countryQuery(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	countries, err := h.service.Query(r.Context(), q)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, countries)
}

// HandleGet handles GET /{id}
func (h *CountryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	country, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, country)
}

// HandleCreate handles POST /
func (h *CountryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CountryRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	country, err := h.service.Create(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, fmt.Sprintf("%s/%d", strings.TrimSuffix(r.URL.Path, "/"), country.ID), country)
}

// HandleUpdate handles PUT /{id}
func (h *CountryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	var req models.CountryRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	if err := h.service.Update(r.Context(), id, req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	utils.WriteNoContent(w)
}

// HandleDelete handles DELETE /{id}
func (h *CountryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	utils.WriteNoContent(w)
}
