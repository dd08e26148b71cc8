package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/clients"
	"github.com/staybook/reservation-backend/internal/services"
)

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func abortWithError(c *gin.Context, status int, errType, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   errType,
		Message: message,
		Code:    code,
	})
}

func validationError(c *gin.Context, message string) {
	abortWithError(c, http.StatusBadRequest, "validation_error", "VALIDATION_ERROR", message)
}

// respondError maps a service error onto its HTTP status
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var statusErr *clients.StatusError

	switch {
	case errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrRoomIDRequired),
		errors.Is(err, services.ErrInvalidRequestID):
		validationError(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrNoRoomsAvailable),
		errors.Is(err, services.ErrRoomNotFound),
		errors.Is(err, services.ErrReservationNotFound),
		errors.Is(err, services.ErrHotelNotFound):
		abortWithError(c, http.StatusNotFound, "not_found", "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, "forbidden", "ACCESS_DENIED", "You don't have permission to access this resource")
	case errors.Is(err, clients.ErrRemoteUnavailable):
		logger.WithError(err).Warn("Inventory service unavailable")
		abortWithError(c, http.StatusServiceUnavailable, "service_unavailable", "SERVICE_UNAVAILABLE", "Inventory service is unavailable")
	case errors.As(err, &statusErr):
		logger.WithError(err).Warn("Inventory service rejected the call")
		abortWithError(c, http.StatusBadGateway, "bad_gateway", "UPSTREAM_ERROR", "Inventory service returned an unexpected response")
	default:
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("Request failed")
		abortWithError(c, http.StatusInternalServerError, "internal_error", "INTERNAL_ERROR", "An unexpected error occurred")
	}
}
