package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/damon-houk/fxconv/internal/application/service"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
	"github.com/damon-houk/fxconv/internal/infrastructure/middleware"
)

// defaultHistoryDays is used when the days parameter is omitted
const defaultHistoryDays = 7

// HistoryHandler handles HTTP requests for historical rate series
type HistoryHandler struct {
	service *service.HistoryService
	logger  logger.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service *service.HistoryService, log logger.Logger) *HistoryHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &HistoryHandler{
		service: service,
		logger:  log,
	}
}

// GetHistory returns the daily rate of target in base
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()

	base, target := q.Get("base"), q.Get("target")
	if base == "" || target == "" {
		sendErrorResponse(w, h.logger, "Missing currency parameter",
			"The 'base' and 'target' query parameters are required", http.StatusBadRequest, requestID)
		return
	}

	days := defaultHistoryDays
	if raw := q.Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			sendErrorResponse(w, h.logger, "Invalid period",
				"Days must be a whole number between 1 and 365", http.StatusBadRequest, requestID)
			return
		}
		days = parsed
	}

	h.logger.Info("Handling history request", map[string]interface{}{
		"request_id": requestID,
		"base":       base,
		"target":     target,
		"days":       days,
	})

	series, err := h.service.Series(r.Context(), base, target, days)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, http.StatusOK, series)
}

// RegisterRoutes registers the history handler routes
func (h *HistoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/history", h.GetHistory).Methods("GET")

	h.logger.Info("History routes registered", map[string]interface{}{
		"routes": []string{
			"GET /history",
		},
	})
}
