package handler

import (
	"errors"
	"net/http"

	"github.com/fueleu-compliance-ledger/internal/api_gateway/middleware"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

const (
	codeBadRequest    = "BAD_REQUEST"
	codeNotFound      = "NOT_FOUND"
	codeInternalError = "INTERNAL_SERVER_ERROR"

	internalErrorMessage = "An internal server error occurred"
)

// Response is the envelope every API endpoint answers with
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo describes the page returned by list endpoints
type MetaInfo struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
	TotalItems int `json:"total_items,omitempty"`
}

// NewPaginatedResponse wraps one page of data with its paging metadata
func NewPaginatedResponse(data interface{}, page, perPage, totalItems int) *Response {
	totalPages := 0
	if perPage > 0 {
		totalPages = (totalItems + perPage - 1) / perPage
	}

	return &Response{
		Data: data,
		Meta: &MetaInfo{
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
			TotalItems: totalItems,
		},
	}
}

func respond(c *gin.Context, statusCode int, response *Response) {
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

func respondError(c *gin.Context, statusCode int, code, message string) {
	respond(c, statusCode, &Response{Error: &ErrorInfo{Code: code, Message: message}})
}

func RespondWithPaginatedData(c *gin.Context, statusCode int, data interface{}, page, perPage, totalItems int) {
	respond(c, statusCode, NewPaginatedResponse(data, page, perPage, totalItems))
}

func RespondOK(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, &Response{Data: data})
}

func RespondCreated(c *gin.Context, data interface{}) {
	respond(c, http.StatusCreated, &Response{Data: data})
}

// RespondBadRequest is used for malformed input that never reached the ledger
func RespondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, codeBadRequest, message)
}

func RespondInternalError(c *gin.Context) {
	respondError(c, http.StatusInternalServerError, codeInternalError, internalErrorMessage)
}

// RespondServiceError maps ledger error kinds to HTTP statuses. Anything that is not a
// validation or not-found error is reported as an internal error without its message;
// the cause is attached to the gin context so the request logger records it.
func RespondServiceError(c *gin.Context, err error) {
	var validationErr shared.ValidationError
	var notFoundErr shared.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		respondError(c, http.StatusBadRequest, codeBadRequest, validationErr.Message)
	case errors.As(err, &notFoundErr):
		respondError(c, http.StatusNotFound, codeNotFound, notFoundErr.Error())
	default:
		_ = c.Error(err)
		RespondInternalError(c)
	}
}
