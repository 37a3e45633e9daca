package handlers

import (
	"context"
	"net/http"

	"github.com/upb/hotel-listing/middleware"
	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/utils"
	"go.uber.org/zap"
)

// AccountService is the auth surface the account endpoints need
type AccountService interface {
	Register(ctx context.Context, req models.RegisterRequest) ([]models.IdentityError, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	VerifyRefreshToken(ctx context.Context, req models.AuthResponse) (*models.AuthResponse, error)
}

// AccountHandler serves register, login and refresh
type AccountHandler struct {
	service AccountService
	logger  *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger,
	}
}

// HandleRegister handles POST /api/account/register
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("register request rejected",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	identityErrs, err := h.service.Register(ctx, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if len(identityErrs) > 0 {
		_ = utils.WriteBadRequest(w, "Registration failed", map[string]interface{}{
			"errors": identityErrs,
		})
		return
	}

	w.WriteHeader(http.StatusOK)
}

// HandleLogin handles POST /api/account/login
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, resp)
}

// HandleRefreshToken handles POST /api/account/refreshtoken
func (h *AccountHandler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.AuthResponse
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	resp, err := h.service.VerifyRefreshToken(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, resp)
}
