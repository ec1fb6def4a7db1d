package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/models"
	"crm-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// writeServiceError maps service errors onto HTTP statuses. A duplicate
// lead answers 409 with the existing lead's identity so the client can
// jump straight to it.
func writeServiceError(w http.ResponseWriter, err error) {
	var dup *apperrors.DuplicateLeadError
	if errors.As(err, &dup) {
		utils.JSON(w, http.StatusConflict, &models.DuplicateLeadResponse{
			Error:      "Ya existe un lead con este teléfono",
			LeadID:     dup.LeadID,
			AssignedTo: dup.AssignedTo,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrValidation):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrUnauthorized):
		utils.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, apperrors.ErrDuplicate):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		utils.Error(w, http.StatusConflict, err.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, err.Error())
	}
}

// pathID extracts a numeric {id}-style path variable
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
