// Package handler internal/infrastructure/handler/conversion_handler.go
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/damon-houk/fxconv/internal/application/service"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
	"github.com/damon-houk/fxconv/internal/infrastructure/middleware"
)

// ConversionHandler handles HTTP requests for currency conversion
type ConversionHandler struct {
	service *service.ConversionService
	logger  logger.Logger
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service *service.ConversionService, log logger.Logger) *ConversionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionHandler{
		service: service,
		logger:  log,
	}
}

// Convert handles converting an amount into one or more currencies
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	h.logger.Info("Handling convert request", map[string]interface{}{
		"request_id": requestID,
		"query":      r.URL.RawQuery,
	})

	// Parse amount
	amountParam := q.Get("amount")
	if amountParam == "" {
		sendErrorResponse(w, h.logger, "Missing amount parameter",
			"The 'amount' query parameter is required", http.StatusBadRequest, requestID)
		return
	}

	amount, err := strconv.ParseFloat(amountParam, 64)
	if err != nil {
		h.logger.Warn("Invalid amount", map[string]interface{}{
			"request_id": requestID,
			"amount":     amountParam,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid amount",
			"Amount must be a number (e.g., 100 or 12.50)", http.StatusBadRequest, requestID)
		return
	}

	// Validate currencies
	query := ConvertQuery{From: q.Get("from")}
	for _, code := range strings.Split(q.Get("to"), ",") {
		if code = strings.TrimSpace(code); code != "" {
			query.To = append(query.To, code)
		}
	}

	if err := validate.Struct(query); err != nil {
		h.logger.Warn("Invalid conversion request", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid currency code",
			validationDescription(err), http.StatusBadRequest, requestID)
		return
	}

	// Call service
	results, err := h.service.Convert(r.Context(), amount, query.From, query.To)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	resp := ConversionResponse{
		FromCurrency: query.From,
		Amount:       amount,
		Results:      make([]ConversionResultResponse, 0, len(results)),
	}

	for _, result := range results {
		resp.AsOfDate = result.AsOfDate

		item := ConversionResultResponse{
			ToCurrency: result.ToCurrency,
			Formatted:  service.FormatAmount(result.ConvertedAmount, result.ToCurrency),
		}

		if result.Valid() {
			converted, rate := result.ConvertedAmount, result.EffectiveRate
			item.ConvertedAmount = &converted
			item.EffectiveRate = &rate
		} else {
			item.Error = "No exchange rate available for " + result.FromCurrency + " to " + result.ToCurrency
		}

		resp.Results = append(resp.Results, item)
	}

	h.logger.Info("Conversion completed successfully", map[string]interface{}{
		"request_id": requestID,
		"from":       query.From,
		"targets":    len(resp.Results),
	})

	sendJSON(w, http.StatusOK, resp)
}

// RegisterRoutes registers the conversion handler routes
func (h *ConversionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/convert", h.Convert).Methods("GET")

	h.logger.Info("Conversion routes registered", map[string]interface{}{
		"routes": []string{
			"GET /convert",
		},
	})
}
