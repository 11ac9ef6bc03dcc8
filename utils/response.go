package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"go-storefront/models"
)

// RespondWithError writes {"message": message} with the given status
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"message": message})
}

// RespondWithJSON writes payload as a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrPrecondition):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithServiceError writes err with the status of its kind. Failures
// without a kind are logged and reported generically.
func RespondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg(fallback)
		RespondWithError(w, code, fallback)
		return
	}
	RespondWithError(w, code, err.Error())
}
