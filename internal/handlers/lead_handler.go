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

type LeadHandler struct {
	Service *services.LeadService
}

func NewLeadHandler(service *services.LeadService) *LeadHandler {
	return &LeadHandler{Service: service}
}

// ListLeads returns the canonical lead list
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Service.ListLeads(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, leads)
}

// CreateLead registers a new lead. Duplicate phone numbers answer 409
// with the existing lead's id and owner.
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	lead, err := h.Service.CreateLead(r.Context(), &req, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, lead)
}

// GetLead fetches one lead
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	lead, err := h.Service.GetLead(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lead)
}

// UpdateLead applies a partial update
func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lead, err := h.Service.UpdateLead(r.Context(), id, &req, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lead)
}

// Board returns the six-column Kanban projection
func (h *LeadHandler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.Service.Board(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, board)
}

// MoveStage handles board drag-and-drop. The response is the recomputed
// board so the client can rerender every column after the move.
func (h *LeadHandler) MoveStage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.MoveLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.Service.MoveStage(r.Context(), id, req.Stage, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	board, err := h.Service.Board(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, board)
}

// SearchLeads does a name search for the appointment dialog
func (h *LeadHandler) SearchLeads(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	leads, err := h.Service.SearchLeads(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, leads)
}
