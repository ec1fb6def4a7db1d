package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/metrics"
	"crm-backend/internal/models"
	"crm-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// AppointmentStore is the part of the appointment repository this
// service consumes
type AppointmentStore interface {
	Create(ctx context.Context, a *models.Appointment) error
	Get(ctx context.Context, id int) (*models.Appointment, error)
	List(ctx context.Context, from, to time.Time) ([]*models.Appointment, error)
	ListByLead(ctx context.Context, leadID int) ([]*models.Appointment, error)
	Update(ctx context.Context, a *models.Appointment) error
	UpdateStatus(ctx context.Context, id int, status string) error
}

// validTransitions is the appointment status machine. Terminal statuses
// (completada, cancelada, no_show) have no outgoing edges.
var validTransitions = map[string][]string{
	models.AppointmentProgramada: {models.AppointmentConfirmada, models.AppointmentCancelada},
	models.AppointmentConfirmada: {models.AppointmentCancelada},
}

type AppointmentService struct {
	appointments AppointmentStore
	leads        LeadStore
	tasks        TaskCreator
	interactions InteractionLogger
}

func NewAppointmentService(appointments AppointmentStore, leads LeadStore, tasks TaskCreator, interactions InteractionLogger) *AppointmentService {
	return &AppointmentService{appointments: appointments, leads: leads, tasks: tasks, interactions: interactions}
}

// CreateAppointment schedules an appointment and moves the lead to
// cita_programada when it is still earlier in the pipeline.
func (s *AppointmentService) CreateAppointment(ctx context.Context, req *models.CreateAppointmentRequest, userID int) (*models.Appointment, error) {
	lead, err := s.leads.Get(ctx, req.LeadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lead %d: %w", req.LeadID, apperrors.ErrNotFound)
		}
		return nil, err
	}

	if !req.ScheduledAt.After(timeutil.Now()) {
		return nil, fmt.Errorf("scheduled_at must be in the future: %w", apperrors.ErrValidation)
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = 60
	}

	appt := &models.Appointment{
		LeadID:          req.LeadID,
		CreatedBy:       userID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: duration,
		Type:            req.Type,
		Status:          models.AppointmentProgramada,
		Notes:           req.Notes,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	// Early-pipeline leads advance to cita_programada automatically
	switch models.NormalizeStatus(lead.Status) {
	case models.StatusNuevo, models.StatusContactado, models.StatusCalificado:
		lead.Status = models.StatusCitaProgramada
		if err := s.leads.Update(ctx, lead); err != nil {
			log.Printf("[Appointments] Could not advance lead %d to cita_programada: %v", lead.ID, err)
		} else {
			metrics.LeadStageMovesTotal.WithLabelValues(models.StatusCitaProgramada).Inc()
		}
	}

	return appt, nil
}

// ListAppointments returns appointments in a calendar window. A zero
// window defaults to the surrounding two months.
func (s *AppointmentService) ListAppointments(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	if from.IsZero() {
		from = timeutil.StartOfDay(timeutil.Now().AddDate(0, -1, 0))
	}
	if to.IsZero() {
		to = timeutil.EndOfDay(timeutil.Now().AddDate(0, 1, 0))
	}
	return s.appointments.List(ctx, from, to)
}

// ListByLead returns a lead's appointment history
func (s *AppointmentService) ListByLead(ctx context.Context, leadID int) ([]*models.Appointment, error) {
	return s.appointments.ListByLead(ctx, leadID)
}

// UpdateAppointment reschedules, annotates, or moves an appointment to
// confirmada/cancelada. Resolution into completada or no_show goes
// through RecordOutcome instead.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, id int, req *models.UpdateAppointmentRequest) (*models.Appointment, error) {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	if req.Status != nil {
		if err := s.checkTransition(appt.Status, *req.Status); err != nil {
			return nil, err
		}
		appt.Status = *req.Status
	}
	if req.ScheduledAt != nil {
		if !req.ScheduledAt.After(timeutil.Now()) {
			return nil, fmt.Errorf("scheduled_at must be in the future: %w", apperrors.ErrValidation)
		}
		appt.ScheduledAt = *req.ScheduledAt
	}
	if req.DurationMinutes != nil {
		appt.DurationMinutes = *req.DurationMinutes
	}
	if req.Notes != nil {
		appt.Notes = *req.Notes
	}

	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("updating appointment %d: %w", id, err)
	}
	return appt, nil
}

// checkTransition enforces the status machine for plain updates
func (s *AppointmentService) checkTransition(from, to string) error {
	if to == models.AppointmentCompletada || to == models.AppointmentNoShow {
		return fmt.Errorf("status %q is set through the outcome endpoint: %w", to, apperrors.ErrValidation)
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("cannot move appointment from %q to %q: %w", from, to, apperrors.ErrConflict)
}

// RecordOutcome resolves a kept (or missed) appointment and cascades
// into the lead. The appointment status update is the atomic core; the
// lead mutation and follow-up task are reported in the response, and
// their failures are logged rather than rolled back.
func (s *AppointmentService) RecordOutcome(ctx context.Context, id int, req *models.AppointmentOutcomeRequest, userID int) (*models.AppointmentOutcomeResponse, error) {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	if appt.Status != models.AppointmentProgramada && appt.Status != models.AppointmentConfirmada {
		return nil, fmt.Errorf("appointment %d already resolved (%s): %w", id, appt.Status, apperrors.ErrConflict)
	}

	lead, err := s.leads.Get(ctx, appt.LeadID)
	if err != nil {
		return nil, fmt.Errorf("fetching lead %d: %w", appt.LeadID, err)
	}

	// Outcome-specific preconditions checked before anything mutates
	switch req.Outcome {
	case models.AppointmentOutcomeVendido:
		if req.DealAmount == nil || *req.DealAmount <= 0 {
			return nil, fmt.Errorf("vendido requires deal_amount: %w", apperrors.ErrValidation)
		}
	case models.AppointmentOutcomePerdido:
		if !models.IsValidLostReason(req.LostReason) {
			return nil, fmt.Errorf("perdido requires a valid lost_reason: %w", apperrors.ErrValidation)
		}
	}

	newApptStatus := models.AppointmentCompletada
	if req.Outcome == models.AppointmentOutcomeNoShow {
		newApptStatus = models.AppointmentNoShow
	}
	if err := s.appointments.UpdateStatus(ctx, id, newApptStatus); err != nil {
		return nil, fmt.Errorf("resolving appointment %d: %w", id, err)
	}
	appt.Status = newApptStatus

	resp := &models.AppointmentOutcomeResponse{Appointment: appt}
	oldStatus := models.NormalizeStatus(lead.Status)

	switch req.Outcome {
	case models.AppointmentOutcomeVendido:
		lead.Status = models.StatusCerrado
		lead.DealAmount = req.DealAmount
		lead.Commission = req.Commission
		now := timeutil.Now()
		lead.DealClosedAt = &now
		s.applyLeadOutcome(ctx, lead, oldStatus, userID, "Cita completada: venta cerrada")
		resp.Lead = lead

	case models.AppointmentOutcomePerdido:
		lead.Status = models.StatusPerdido
		lead.LostReason = req.LostReason
		s.applyLeadOutcome(ctx, lead, oldStatus, userID, "Cita completada: lead perdido ("+req.LostReason+")")
		resp.Lead = lead

	case models.AppointmentOutcomeSeguimiento:
		s.logOutcomeNote(ctx, lead, userID, "Cita completada: requiere seguimiento")
		resp.Task = s.createOutcomeTask(ctx, lead, "Seguimiento post-cita: "+lead.Name, "seguimiento", "media",
			timeutil.TomorrowAt(timeutil.Now(), 10))

	case models.AppointmentOutcomeNoShow:
		s.logOutcomeNote(ctx, lead, userID, "Cliente no se presentó a la cita")
		resp.Task = s.createOutcomeTask(ctx, lead, "Reagendar cita: "+lead.Name, "llamar", "alta",
			timeutil.Now().Add(2*time.Hour))
	}

	if req.Notes != "" {
		s.logOutcomeNote(ctx, lead, userID, req.Notes)
	}

	log.Printf("[Appointments] Appointment %d resolved as %s (lead %d)", id, req.Outcome, lead.ID)
	return resp, nil
}

// applyLeadOutcome persists a terminal lead transition and logs it
func (s *AppointmentService) applyLeadOutcome(ctx context.Context, lead *models.Lead, oldStatus string, userID int, note string) {
	if err := s.leads.Update(ctx, lead); err != nil {
		log.Printf("[Appointments] Could not update lead %d after outcome: %v", lead.ID, err)
		return
	}
	metrics.LeadStageMovesTotal.WithLabelValues(models.PipelineStage(lead.Status)).Inc()

	change := &models.Interaction{
		LeadID:   lead.ID,
		UserID:   userID,
		Type:     models.InteractionCambioEstado,
		Notes:    note,
		Metadata: map[string]interface{}{"from": oldStatus, "to": lead.Status},
	}
	if err := s.interactions.Create(ctx, change); err != nil {
		log.Printf("[Appointments] Could not log outcome for lead %d: %v", lead.ID, err)
	}
}

func (s *AppointmentService) logOutcomeNote(ctx context.Context, lead *models.Lead, userID int, note string) {
	entry := &models.Interaction{
		LeadID: lead.ID,
		UserID: userID,
		Type:   models.InteractionNota,
		Notes:  note,
	}
	if err := s.interactions.Create(ctx, entry); err != nil {
		log.Printf("[Appointments] Could not log note for lead %d: %v", lead.ID, err)
	}
}

func (s *AppointmentService) createOutcomeTask(ctx context.Context, lead *models.Lead, title, taskType, priority string, due time.Time) *models.Task {
	task := &models.Task{
		LeadID:        lead.ID,
		AssignedTo:    lead.AssignedTo,
		Title:         title,
		Type:          taskType,
		Priority:      priority,
		DueAt:         due,
		Status:        "pendiente",
		AutoGenerated: true,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		log.Printf("[Appointments] Could not create task for lead %d: %v", lead.ID, err)
		return nil
	}
	return task
}
