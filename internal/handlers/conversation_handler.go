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

type ConversationHandler struct {
	Service *services.ConversationService
}

func NewConversationHandler(service *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{Service: service}
}

// ListConversations returns the chat inbox
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.Service.ListConversations(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, conversations)
}

// GetConversation returns one conversation with context and transcript
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.Service.GetDetail(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, detail)
}

// ConvertToLead promotes a conversation into a lead. The conversation
// id travels in the body, matching the intake form payload.
func (h *ConversationHandler) ConvertToLead(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.ConvertConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	lead, err := h.Service.ConvertToLead(r.Context(), &req, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, lead)
}
