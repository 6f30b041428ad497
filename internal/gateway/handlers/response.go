package handlers

import (
	"errors"
	"net/http"

	"feedmart-pos/internal/cart"
	"feedmart-pos/internal/catalog"
	"feedmart-pos/internal/checkout"
	"feedmart-pos/internal/closure"
	"feedmart-pos/internal/gateway/middleware"
	"feedmart-pos/internal/journal"
	"feedmart-pos/internal/session"
	"feedmart-pos/internal/upstream"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func codedErrorResponse(code, message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Error:   code,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

// handleError maps domain errors onto HTTP statuses and aborts the request.
func handleError(c *gin.Context, err error) {
	var ve *cart.ValidationError
	var se *checkout.SubmissionError
	var apiErr *upstream.APIError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, codedErrorResponse(ve.Code, ve.Message))
	case errors.Is(err, session.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, codedErrorResponse("CHECKOUT_IN_PROGRESS", "A checkout is already in progress for this cart"))
	case errors.As(err, &se):
		c.JSON(http.StatusBadGateway, codedErrorResponse("SUBMISSION_FAILED", "Sale could not be recorded, please retry: "+se.Err.Error()))
	case errors.Is(err, checkout.ErrAbandoned):
		c.JSON(http.StatusRequestTimeout, codedErrorResponse("ABANDONED", "Checkout was abandoned"))
	case errors.Is(err, closure.ErrUnparsedAmount):
		c.JSON(http.StatusUnprocessableEntity, codedErrorResponse("UNPARSED_AMOUNT", err.Error()))
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, journal.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, upstream.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, cart.ErrInvalidUnit),
		errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, errorResponse("Store API error: "+apiErr.Message))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("Internal error"))
	}
	c.Abort()
}

func cashierFrom(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserIDFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("No cashier on this session"))
	}
	return id, ok
}
