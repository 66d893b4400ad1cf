package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fueleu-compliance-ledger/internal/api_gateway/middleware"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "Validation",
			err:         shared.NewValidationError("cannot apply non-positive amount"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "BAD_REQUEST",
			wantMessage: "cannot apply non-positive amount",
		},
		{
			name:        "Wrapped validation",
			err:         fmt.Errorf("bank surplus: %w", shared.NewValidationError("amount 5 exceeds available surplus 3")),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "BAD_REQUEST",
			wantMessage: "amount 5 exceeds available surplus 3",
		},
		{
			name:        "NotFound",
			err:         shared.NotFoundError{Resource: "pool", Key: "7"},
			wantStatus:  http.StatusNotFound,
			wantCode:    "NOT_FOUND",
			wantMessage: "pool not found: 7",
		},
		{
			name:        "Anything else hides the cause",
			err:         errors.New("pq: connection reset"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_SERVER_ERROR",
			wantMessage: "An internal server error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()
			router.Use(middleware.CorrelationID())
			router.GET("/err", func(c *gin.Context) { RespondServiceError(c, tt.err) })

			rr := serve(router, http.MethodGet, "/err", nil)

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decode[Response](t, rr)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
			assert.Equal(t, rr.Header().Get(middleware.CorrelationIDHeader), body.CorrelationID)
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	response := NewPaginatedResponse([]string{"a"}, 3, 20, 41)

	require.NotNil(t, response.Meta)
	assert.Equal(t, 3, response.Meta.TotalPages)
	assert.Equal(t, 41, response.Meta.TotalItems)

	exact := NewPaginatedResponse(nil, 1, 10, 20)
	assert.Equal(t, 2, exact.Meta.TotalPages)
}

func TestRespondServiceError_AttachesInternalCause(t *testing.T) {
	cause := shared.ConsistencyError{ShipID: "ROUTE-003", Requested: decimal.NewFromInt(7), Remaining: decimal.NewFromInt(2)}
	var recorded []error

	router := newTestRouter()
	router.GET("/err", func(c *gin.Context) {
		RespondServiceError(c, cause)
		for _, e := range c.Errors {
			recorded = append(recorded, e.Err)
		}
	})

	rr := serve(router, http.MethodGet, "/err", nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Len(t, recorded, 1)
	assert.ErrorIs(t, recorded[0], cause)
}
