package handlers

import (
	"encoding/json"
	"net/http"

	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/services"
	"crm-backend/internal/validator"
	"crm-backend/pkg/utils"
)

type InteractionHandler struct {
	Service *services.InteractionService
}

func NewInteractionHandler(service *services.InteractionService) *InteractionHandler {
	return &InteractionHandler{Service: service}
}

// ListByLead returns a lead's timeline
func (h *InteractionHandler) ListByLead(w http.ResponseWriter, r *http.Request) {
	leadID, err := pathID(r, "lead_id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	interactions, err := h.Service.ListByLead(r.Context(), leadID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, interactions)
}

// AddNote appends a note to a lead's timeline
func (h *InteractionHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	leadID, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.Service.AddNote(r.Context(), leadID, userID, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, note)
}

// LogCall runs the call logging workflow
func (h *InteractionHandler) LogCall(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.LogCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.Service.LogCall(r.Context(), &req, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, resp)
}
