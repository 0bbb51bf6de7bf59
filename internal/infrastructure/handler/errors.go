package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/damon-houk/fxconv/internal/application/service"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

var validate = validator.New()

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}

	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	json.NewEncoder(w).Encode(resp)
}

// sendJSON writes v with the given status
func sendJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// sendServiceError maps a service error to an error response
func sendServiceError(w http.ResponseWriter, log logger.Logger, err error, requestID string) {
	switch {
	case errors.Is(err, service.ErrInvalidCurrency):
		sendErrorResponse(w, log, "Invalid currency code",
			"Currency codes must be 3 upper-case letters (e.g., EUR, GBP, PKR)", http.StatusBadRequest, requestID)
	case errors.Is(err, service.ErrInvalidAmount):
		sendErrorResponse(w, log, "Invalid amount",
			"Amount must be a finite number", http.StatusBadRequest, requestID)
	case errors.Is(err, service.ErrInvalidPeriod):
		sendErrorResponse(w, log, "Invalid period",
			"Days must be between 1 and 365", http.StatusBadRequest, requestID)
	case errors.Is(err, service.ErrNoRates):
		sendErrorResponse(w, log, "Rates not available",
			"Exchange rates have not been loaded yet. Please try again later.", http.StatusServiceUnavailable, requestID)
	case errors.Is(err, service.ErrWatcherStopped):
		sendErrorResponse(w, log, "Service shutting down",
			"The rate service is no longer accepting requests", http.StatusServiceUnavailable, requestID)
	default:
		log.Error("Unexpected service error", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Internal server error",
			"An unexpected error occurred. Please try again later.", http.StatusInternalServerError, requestID)
	}
}

// validationDescription turns validator errors into one readable line
func validationDescription(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required", "min":
		return fe.Field() + " is required"
	default:
		return fe.Field() + " must be a 3-letter upper-case currency code"
	}
}
