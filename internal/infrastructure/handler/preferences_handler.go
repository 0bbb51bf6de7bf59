package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/damon-houk/fxconv/internal/application/service"
	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
	"github.com/damon-houk/fxconv/internal/infrastructure/middleware"
)

// PreferencesHandler handles HTTP requests for user preferences
type PreferencesHandler struct {
	service *service.PreferencesService
	logger  logger.Logger
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(service *service.PreferencesService, log logger.Logger) *PreferencesHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &PreferencesHandler{
		service: service,
		logger:  log,
	}
}

// GetPreferences returns the current preferences
func (h *PreferencesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, h.service.Get())
}

// ToggleDarkMode flips the dark mode flag
func (h *PreferencesHandler) ToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "toggle dark mode")(h.service.ToggleDarkMode(r.Context()))
}

// ToggleReversed flips the conversion direction
func (h *PreferencesHandler) ToggleReversed(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "toggle reversed")(h.service.ToggleReversed(r.Context()))
}

// AddFavorite adds the currency in the path to the favorites
func (h *PreferencesHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	h.respond(w, r, "add favorite")(h.service.AddFavorite(r.Context(), code))
}

// RemoveFavorite removes the currency in the path from the favorites
func (h *PreferencesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	h.respond(w, r, "remove favorite")(h.service.RemoveFavorite(r.Context(), code))
}

// UpdateLastUsed stores the last conversion selection
func (h *PreferencesHandler) UpdateLastUsed(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req UpdateLastUsedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	if err := validate.Struct(req); err != nil {
		sendErrorResponse(w, h.logger, "Invalid currency code",
			validationDescription(err), http.StatusBadRequest, requestID)
		return
	}

	if req.To == nil {
		req.To = []string{}
	}

	h.respond(w, r, "update last used")(h.service.UpdateLastUsed(r.Context(), req.From, req.To))
}

// Reset restores the default preferences
func (h *PreferencesHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "reset")(h.service.Reset(r.Context()))
}

// respond returns a function writing the outcome of a preferences mutation
func (h *PreferencesHandler) respond(w http.ResponseWriter, r *http.Request, op string) func(*entity.UserPreferences, error) {
	requestID := middleware.GetRequestID(r.Context())

	return func(prefs *entity.UserPreferences, err error) {
		if err != nil {
			h.logger.Warn("Preferences update failed", map[string]interface{}{
				"request_id": requestID,
				"operation":  op,
				"error":      err.Error(),
			})
			sendServiceError(w, h.logger, err, requestID)
			return
		}

		h.logger.Info("Preferences updated", map[string]interface{}{
			"request_id": requestID,
			"operation":  op,
		})
		sendJSON(w, http.StatusOK, prefs)
	}
}

// RegisterRoutes registers the preferences handler routes
func (h *PreferencesHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/preferences", h.GetPreferences).Methods("GET")
	router.HandleFunc("/preferences/dark-mode/toggle", h.ToggleDarkMode).Methods("POST")
	router.HandleFunc("/preferences/reversed/toggle", h.ToggleReversed).Methods("POST")
	router.HandleFunc("/preferences/favorites/{code}", h.AddFavorite).Methods("PUT")
	router.HandleFunc("/preferences/favorites/{code}", h.RemoveFavorite).Methods("DELETE")
	router.HandleFunc("/preferences/last-used", h.UpdateLastUsed).Methods("PUT")
	router.HandleFunc("/preferences/reset", h.Reset).Methods("POST")

	h.logger.Info("Preferences routes registered", map[string]interface{}{
		"routes": []string{
			"GET /preferences",
			"POST /preferences/dark-mode/toggle",
			"POST /preferences/reversed/toggle",
			"PUT /preferences/favorites/{code}",
			"DELETE /preferences/favorites/{code}",
			"PUT /preferences/last-used",
			"POST /preferences/reset",
		},
	})
}
