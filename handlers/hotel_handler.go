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

// HotelService defines the hotel operations used by the handler
type HotelService interface {
	List(ctx context.Context) ([]*models.Hotel, error)
	ListPaged(ctx context.Context, params models.QueryParameters) (*models.PagedResult[*models.Hotel], error)
	Get(ctx context.Context, id int) (*models.Hotel, error)
	Create(ctx context.Context, req models.HotelRequest) (*models.Hotel, error)
	Update(ctx context.Context, id int, req models.HotelRequest) error
	Delete(ctx context.Context, id int) error
}

// HotelHandler handles /api/hotels
type HotelHandler struct {
	service HotelService
	logger  *zap.Logger
}

// NewHotelHandler creates a new HotelHandler
func NewHotelHandler(service HotelService, logger *zap.Logger) *HotelHandler {
	return &HotelHandler{service: service, logger: logger}
}

// HandleGetAll handles GET /GetAll
func (h *HotelHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.service.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, hotels)
}

// HandleList handles GET / with paging query parameters
func (h *HotelHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListPaged(r.Context(), queryParameters(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, page)
}

// HandleGet handles GET /{id}
func (h *HotelHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	hotel, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, hotel)
}

// HandleCreate handles POST /
func (h *HotelHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.HotelRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	hotel, err := h.service.Create(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, fmt.Sprintf("%s/%d", strings.TrimSuffix(r.URL.Path, "/"), hotel.ID), hotel)
}

// HandleUpdate handles PUT /{id}
func (h *HotelHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	var req models.HotelRequest
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
func (h *HotelHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
