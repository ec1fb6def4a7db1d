package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"crm-backend/internal/middleware"
	"crm-backend/internal/models"
	"crm-backend/internal/services"
	"crm-backend/internal/timeutil"
	"crm-backend/internal/validator"
	"crm-backend/pkg/utils"
)

type AppointmentHandler struct {
	Service *services.AppointmentService
}

func NewAppointmentHandler(service *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Service: service}
}

// ListAppointments returns the calendar window given by ?from= and ?to=
// (both 2006-01-02, optional)
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := timeutil.ParseLocal(timeutil.DateLayout, v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid from date")
			return
		}
		from = timeutil.StartOfDay(t)
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := timeutil.ParseLocal(timeutil.DateLayout, v)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid to date")
			return
		}
		to = timeutil.EndOfDay(t)
	}

	appointments, err := h.Service.ListAppointments(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, appointments)
}

// CreateAppointment schedules an appointment
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	appt, err := h.Service.CreateAppointment(r.Context(), &req, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, appt)
}

// ListByLead returns a lead's appointment history
func (h *AppointmentHandler) ListByLead(w http.ResponseWriter, r *http.Request) {
	leadID, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	appointments, err := h.Service.ListByLead(r.Context(), leadID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, appointments)
}

// UpdateAppointment reschedules, annotates, confirms or cancels
func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	appt, err := h.Service.UpdateAppointment(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, appt)
}

// RecordOutcome resolves an appointment and cascades into the lead
func (h *AppointmentHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.AppointmentOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.Service.RecordOutcome(r.Context(), id, &req, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}
