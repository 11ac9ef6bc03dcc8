package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/middleware"
	"go-storefront/utils"
)

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// On failure the response has been written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Debug().Err(err).Msg("failed to decode request body")
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			utils.RespondWithError(w, http.StatusBadRequest, formatValidationErrors(validationErrors))
			return false
		}
		log.Error().Err(err).Msg("unexpected error during validation")
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return false
	}
	return true
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	details := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			details = append(details, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		details = append(details, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(details, ", ")
}

// currentUser returns the authenticated caller's claims and id.
func currentUser(w http.ResponseWriter, r *http.Request) (*utils.Claims, primitive.ObjectID, bool) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, primitive.NilObjectID, false
	}
	return claims, userID, true
}

// pathID parses the {id} path variable.
func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Invalid ObjectId of: "+raw)
		return primitive.NilObjectID, false
	}
	return id, true
}
