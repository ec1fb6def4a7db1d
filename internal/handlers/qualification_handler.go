package handlers

import (
	"encoding/json"
	"net/http"

	"crm-backend/internal/models"
	"crm-backend/internal/services"
	"crm-backend/pkg/utils"
)

type QualificationHandler struct {
	Service *services.QualificationService
}

func NewQualificationHandler(service *services.QualificationService) *QualificationHandler {
	return &QualificationHandler{Service: service}
}

// GetForLead returns a lead's credit qualification bundle
func (h *QualificationHandler) GetForLead(w http.ResponseWriter, r *http.Request) {
	leadID, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.Service.GetForLead(r.Context(), leadID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, q)
}

// Save replaces the qualification data wholesale
func (h *QualificationHandler) Save(w http.ResponseWriter, r *http.Request) {
	leadID, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.SaveQualificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	q, err := h.Service.Save(r.Context(), leadID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, q)
}
