package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/models"
	"crm-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// InteractionStore is the part of the interaction repository this
// service consumes
type InteractionStore interface {
	Create(ctx context.Context, i *models.Interaction) error
	ListByLead(ctx context.Context, leadID int) ([]*models.Interaction, error)
}

type InteractionService struct {
	interactions InteractionStore
	leads        LeadStore
	tasks        TaskCreator
}

func NewInteractionService(interactions InteractionStore, leads LeadStore, tasks TaskCreator) *InteractionService {
	return &InteractionService{interactions: interactions, leads: leads, tasks: tasks}
}

// ListByLead returns the lead's full timeline, newest first
func (s *InteractionService) ListByLead(ctx context.Context, leadID int) ([]*models.Interaction, error) {
	return s.interactions.ListByLead(ctx, leadID)
}

// AddNote appends a free-text note to a lead's timeline
func (s *InteractionService) AddNote(ctx context.Context, leadID, userID int, notes string) (*models.Interaction, error) {
	if notes == "" {
		return nil, fmt.Errorf("note text is required: %w", apperrors.ErrValidation)
	}
	entry := &models.Interaction{
		LeadID: leadID,
		UserID: userID,
		Type:   models.InteractionNota,
		Notes:  notes,
	}
	if err := s.interactions.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}
	return entry, nil
}

// LogCall records a phone call and runs the side effect selected by
// next_action. The interaction insert is the atomic core: if it fails,
// nothing else happens. Side effects come after and are individually
// reported in the response.
func (s *InteractionService) LogCall(ctx context.Context, req *models.LogCallRequest, userID int) (*models.LogCallResponse, error) {
	lead, err := s.leads.Get(ctx, req.LeadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lead %d: %w", req.LeadID, apperrors.ErrNotFound)
		}
		return nil, err
	}

	entry := &models.Interaction{
		LeadID:          req.LeadID,
		UserID:          userID,
		Type:            models.InteractionLlamada,
		Outcome:         req.Outcome,
		Notes:           req.Notes,
		DurationSeconds: callDuration(req.DurationMinutes, req.DurationSeconds),
	}
	// The next-action selector only exists for answered calls; an
	// unanswered call logs the attempt and nothing more
	if req.Outcome != models.OutcomeContestada {
		req.NextAction = ""
	}
	if req.NextAction != "" {
		entry.Metadata = map[string]interface{}{"next_action": req.NextAction}
	}

	if err := s.interactions.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("logging call for lead %d: %w", req.LeadID, err)
	}

	resp := &models.LogCallResponse{Interaction: entry}

	switch req.NextAction {
	case models.NextActionSeguimiento:
		resp.Task = s.createFollowUpTask(ctx, lead, req)
	case models.NextActionEnviarInfo:
		resp.Task = s.createSendInfoTask(ctx, lead)
	case models.NextActionCalificado:
		resp.LeadStatus = s.setStatusAfterCall(ctx, lead, models.StatusCalificado, userID)
	case models.NextActionNoInteresado:
		resp.LeadStatus = s.setStatusAfterCall(ctx, lead, models.StatusNoInteresado, userID)
	case models.NextActionCita:
		// The appointment is scheduled through its own endpoint
	}

	return resp, nil
}

// callDuration converts the form's minutes+seconds into total seconds.
// Zero duration means the call length was not recorded.
func callDuration(minutes, seconds int) *int {
	total := minutes*60 + seconds
	if total == 0 {
		return nil
	}
	return &total
}

// followUpDue resolves the follow-up selector into a due time. A custom
// date that fails to parse or lies in the past falls back to tomorrow
// at 10:00, same as manana.
func followUpDue(now time.Time, req *models.LogCallRequest) time.Time {
	switch req.FollowUpWhen {
	case "dos_dias":
		return timeutil.TomorrowAt(now.AddDate(0, 0, 1), 10)
	case "tres_dias":
		return timeutil.TomorrowAt(now.AddDate(0, 0, 2), 10)
	case "custom":
		due, err := timeutil.ParseLocal(timeutil.DateLayout+" "+timeutil.TimeLayout, req.FollowUpDate+" "+req.FollowUpTime)
		if err != nil || !due.After(now) {
			log.Printf("[Interactions] Invalid custom follow-up %q %q, falling back to tomorrow", req.FollowUpDate, req.FollowUpTime)
			return timeutil.TomorrowAt(now, 10)
		}
		return due
	default: // manana
		return timeutil.TomorrowAt(now, 10)
	}
}

func (s *InteractionService) createFollowUpTask(ctx context.Context, lead *models.Lead, req *models.LogCallRequest) *models.Task {
	task := &models.Task{
		LeadID:        lead.ID,
		AssignedTo:    lead.AssignedTo,
		Title:         "Seguimiento: " + lead.Name,
		Type:          "seguimiento",
		Priority:      "media",
		DueAt:         followUpDue(timeutil.Now(), req),
		Status:        "pendiente",
		AutoGenerated: true,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		log.Printf("[Interactions] Could not create follow-up task for lead %d: %v", lead.ID, err)
		return nil
	}
	return task
}

func (s *InteractionService) createSendInfoTask(ctx context.Context, lead *models.Lead) *models.Task {
	task := &models.Task{
		LeadID:        lead.ID,
		AssignedTo:    lead.AssignedTo,
		Title:         "Enviar información a " + lead.Name,
		Type:          "enviar_info",
		Priority:      "media",
		DueAt:         timeutil.Now().Add(2 * time.Hour),
		Status:        "pendiente",
		AutoGenerated: true,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		log.Printf("[Interactions] Could not create send-info task for lead %d: %v", lead.ID, err)
		return nil
	}
	return task
}

// setStatusAfterCall moves the lead and records the change. Returns the
// resulting status, or empty when the update failed.
func (s *InteractionService) setStatusAfterCall(ctx context.Context, lead *models.Lead, newStatus string, userID int) string {
	from := models.NormalizeStatus(lead.Status)
	if from == newStatus {
		return newStatus
	}
	lead.Status = newStatus
	if err := s.leads.Update(ctx, lead); err != nil {
		log.Printf("[Interactions] Could not move lead %d to %s: %v", lead.ID, newStatus, err)
		return ""
	}

	change := &models.Interaction{
		LeadID:   lead.ID,
		UserID:   userID,
		Type:     models.InteractionCambioEstado,
		Notes:    fmt.Sprintf("Estado cambiado de %s a %s", from, newStatus),
		Metadata: map[string]interface{}{"from": from, "to": newStatus},
	}
	if err := s.interactions.Create(ctx, change); err != nil {
		log.Printf("[Interactions] Could not log status change for lead %d: %v", lead.ID, err)
	}
	return newStatus
}
