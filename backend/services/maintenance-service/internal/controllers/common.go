package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	shared_dtos "github.com/lazar0830/sos-condo-sub000/backend/shared/go-dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-middleware"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

var validate = validator.New()

// requireActor pulls the authenticated actor, answering 401 when there is none.
func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No actor in context", nil, nil)
		return models.Actor{}, false
	}
	return actor, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid id in path", nil, err)
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional uuid query parameter.
func queryID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid "+name, nil, err)
		return nil, false
	}
	return &id, true
}

// decodeBody reads the JSON body into dst and runs struct validation.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err)
		return false
	}
	if err := validate.StructCtx(r.Context(), dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed", validationDetails(validationErrors), err)
		} else {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request data", nil, err)
		}
		return false
	}
	return true
}

func validationDetails(errs validator.ValidationErrors) []shared_dtos.ValidationErrorDetail {
	out := make([]shared_dtos.ValidationErrorDetail, 0, len(errs))
	for _, fe := range errs {
		out = append(out, shared_dtos.ValidationErrorDetail{
			Field:   fe.Field(),
			Message: "failed on " + fe.Tag(),
			Code:    utils.ErrCodeValidation,
		})
	}
	return out
}

func respondServiceError(w http.ResponseWriter, err error) {
	utils.HandleAppError(w, internal_utils.ToAppError(err))
}
