package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/damon-houk/fxconv/internal/application/service"
	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
	"github.com/damon-houk/fxconv/internal/infrastructure/middleware"
)

// RatesHandler handles HTTP requests for the current rate table
type RatesHandler struct {
	watcher *service.RateWatcher
	logger  logger.Logger
}

// NewRatesHandler creates a new rates handler
func NewRatesHandler(watcher *service.RateWatcher, log logger.Logger) *RatesHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RatesHandler{
		watcher: watcher,
		logger:  log,
	}
}

// ListCurrencies returns the supported currency catalogue
func (h *RatesHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, CurrenciesResponse{
		Currencies: entity.Currencies,
		Periods:    entity.HistoricalPeriods,
	})
}

// GetRates returns the current rate table, switching base when ?base= is given
func (h *RatesHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	status := h.watcher.Current()

	if base := strings.TrimSpace(r.URL.Query().Get("base")); base != "" && base != status.Base {
		h.logger.Info("Switching base currency", map[string]interface{}{
			"request_id": requestID,
			"from":       status.Base,
			"to":         base,
		})

		var err error
		status, err = h.watcher.SetBase(r.Context(), base)
		if err != nil {
			sendServiceError(w, h.logger, err, requestID)
			return
		}
	}

	h.sendStatus(w, status, requestID)
}

// RefreshRates fetches new rates regardless of staleness
func (h *RatesHandler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	h.logger.Info("Handling manual rate refresh", map[string]interface{}{
		"request_id": requestID,
	})

	status, err := h.watcher.Refresh(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	h.sendStatus(w, status, requestID)
}

func (h *RatesHandler) sendStatus(w http.ResponseWriter, status service.WatcherStatus, requestID string) {
	if status.Snapshot == nil {
		sendServiceError(w, h.logger, service.ErrNoRates, requestID)
		return
	}

	snapshot := status.Snapshot
	sendJSON(w, http.StatusOK, RatesResponse{
		Base:        snapshot.Base,
		Date:        snapshot.Date,
		Rates:       snapshot.Rates,
		Timestamp:   snapshot.FetchedAtEpochMs,
		Provenance:  snapshot.Provenance,
		Reason:      snapshot.Reason,
		State:       string(status.State),
		Stale:       status.Stale,
		LastUpdated: formatTime(status.LastUpdated),
	})
}

// RegisterRoutes registers the rates handler routes
func (h *RatesHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/currencies", h.ListCurrencies).Methods("GET")
	router.HandleFunc("/rates", h.GetRates).Methods("GET")
	router.HandleFunc("/rates/refresh", h.RefreshRates).Methods("POST")

	h.logger.Info("Rates routes registered", map[string]interface{}{
		"routes": []string{
			"GET /currencies",
			"GET /rates",
			"POST /rates/refresh",
		},
	})
}
