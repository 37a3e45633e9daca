package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/hotel-listing/services"
	"github.com/upb/hotel-listing/utils"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedError   string
		expectedMessage string
	}{
		{
			name:            "not found error",
			err:             services.NewNotFoundError("GetDetails", 7),
			expectedStatus:  http.StatusNotFound,
			expectedError:   "not_found",
			expectedMessage: "GetDetails (7) was not found",
		},
		{
			name:            "invalid record id",
			err:             services.ErrInvalidRecordID,
			expectedStatus:  http.StatusBadRequest,
			expectedError:   "bad_request",
			expectedMessage: "Invalid Record Id",
		},
		{
			name:            "not authenticated hides the reason",
			err:             services.ErrNotAuthenticated,
			expectedStatus:  http.StatusUnauthorized,
			expectedError:   "unauthorized",
			expectedMessage: "Authentication required",
		},
		{
			name:           "forbidden error",
			err:            services.ErrInsufficientPermissions,
			expectedStatus: http.StatusForbidden,
			expectedError:  "forbidden",
		},
		{
			name:           "conflict error",
			err:            services.ErrDuplicateEmail,
			expectedStatus: http.StatusConflict,
			expectedError:  "conflict",
		},
		{
			name:            "internal error hides the cause",
			err:             services.WrapInternal("failed to store refresh token", errors.New("connection refused")),
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   "internal_error",
			expectedMessage: "An internal error occurred",
		},
		{
			name:            "unknown error",
			err:             errors.New("boom"),
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   "internal_error",
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedError, response.Error)
			if tt.expectedMessage != "" {
				assert.Equal(t, tt.expectedMessage, response.Message)
			}
		})
	}
}

func TestHandleServiceErrorWithDetails(t *testing.T) {
	err := services.NewDomainError(services.ErrorTypeValidation, "country 9 does not exist", nil).
		WithDetail("countryId", 9)

	w := httptest.NewRecorder()
	HandleServiceError(w, err, zap.NewNop())

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "country 9 does not exist", response.Message)
	assert.Equal(t, float64(9), response.Details["countryId"])
}

func TestHandleServiceErrorNil(t *testing.T) {
	w := httptest.NewRecorder()

	HandleServiceError(w, nil, zap.NewNop())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleValidationError(t *testing.T) {
	t.Run("field errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := &utils.ValidationError{
			Message: "Validation failed",
			Fields:  map[string]string{"email": "email is required"},
		}

		HandleValidationError(w, err, zap.NewNop())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response utils.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Validation failed", response.Message)
		assert.Equal(t, "email is required", response.Details["email"])
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()

		HandleValidationError(w, utils.ErrInvalidBody, zap.NewNop())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response utils.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Invalid request body", response.Message)
	})
}
