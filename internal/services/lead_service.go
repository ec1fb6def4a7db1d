package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"crm-backend/internal/alerts"
	"crm-backend/internal/apperrors"
	"crm-backend/internal/metrics"
	"crm-backend/internal/models"
	"crm-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// LeadStore is the part of the lead repository this service consumes
type LeadStore interface {
	Create(ctx context.Context, l *models.Lead) error
	Get(ctx context.Context, id int) (*models.Lead, error)
	List(ctx context.Context) ([]*models.Lead, error)
	SearchByName(ctx context.Context, query string, limit int) ([]*models.Lead, error)
	Update(ctx context.Context, l *models.Lead) error
}

// TaskCreator is the slice of the task repository used for auto-generated
// follow-up tasks
type TaskCreator interface {
	Create(ctx context.Context, t *models.Task) error
}

// InteractionLogger appends timeline entries for a lead
type InteractionLogger interface {
	Create(ctx context.Context, i *models.Interaction) error
}

type LeadService struct {
	leads        LeadStore
	tasks        TaskCreator
	interactions InteractionLogger
	alerter      alerts.Dispatcher
}

func NewLeadService(leads LeadStore, tasks TaskCreator, interactions InteractionLogger, alerter alerts.Dispatcher) *LeadService {
	return &LeadService{leads: leads, tasks: tasks, interactions: interactions, alerter: alerter}
}

// CreateLead registers a new lead. The lead row is the atomic core; the
// follow-up call task and the team alert are best-effort side effects.
// A duplicate phone number surfaces as *apperrors.DuplicateLeadError so
// the handler can answer 409 with the existing lead's identity.
func (s *LeadService) CreateLead(ctx context.Context, req *models.CreateLeadRequest, createdBy int) (*models.Lead, error) {
	urgency := req.UrgencyLevel
	if urgency == "" {
		urgency = "media"
	}
	assignedTo := req.AssignedTo
	if assignedTo == 0 {
		assignedTo = createdBy
	}

	lead := &models.Lead{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		Source:          req.Source,
		Status:          models.StatusNuevo,
		UrgencyLevel:    urgency,
		VehicleInterest: req.VehicleInterest,
		BudgetRange:     req.BudgetRange,
		CreditType:      req.CreditType,
		DownPayment:     req.DownPayment,
		TradeInDetails:  req.TradeInDetails,
		AssignedTo:      assignedTo,
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		var dup *apperrors.DuplicateLeadError
		if errors.As(err, &dup) {
			return nil, dup
		}
		return nil, fmt.Errorf("creating lead: %w", err)
	}

	metrics.LeadsCreatedTotal.WithLabelValues(lead.Source).Inc()
	log.Printf("[Leads] Created lead %d (%s, source=%s)", lead.ID, lead.Name, lead.Source)

	s.createFirstCallTask(ctx, lead)
	s.alerter.NewLead(ctx, lead)

	return lead, nil
}

// createFirstCallTask schedules the initial contact call. Failure is
// logged, not returned: the lead itself is already saved.
func (s *LeadService) createFirstCallTask(ctx context.Context, lead *models.Lead) {
	priority := "alta"
	if lead.UrgencyLevel == "urgente" {
		priority = "urgente"
	}
	task := &models.Task{
		LeadID:        lead.ID,
		AssignedTo:    lead.AssignedTo,
		Title:         "Llamar a nuevo lead: " + lead.Name,
		Type:          "llamar",
		Priority:      priority,
		DueAt:         timeutil.Now().Add(5 * time.Minute),
		Status:        "pendiente",
		AutoGenerated: true,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		log.Printf("[Leads] Could not create first-call task for lead %d: %v", lead.ID, err)
	}
}

// GetLead fetches one lead with its status normalized
func (s *LeadService) GetLead(ctx context.Context, id int) (*models.Lead, error) {
	lead, err := s.leads.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	lead.Status = models.NormalizeStatus(lead.Status)
	return lead, nil
}

// ListLeads returns the canonical lead list, statuses normalized
func (s *LeadService) ListLeads(ctx context.Context) ([]*models.Lead, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range leads {
		l.Status = models.NormalizeStatus(l.Status)
	}
	return leads, nil
}

// SearchLeads does a case-insensitive name search (appointment dialog)
func (s *LeadService) SearchLeads(ctx context.Context, query string) ([]*models.Lead, error) {
	if query == "" {
		return []*models.Lead{}, nil
	}
	return s.leads.SearchByName(ctx, query, 10)
}

// Board returns the Kanban projection. The board is never stored; it is
// recomputed from the lead list on every call.
func (s *LeadService) Board(ctx context.Context) (*models.PipelineBoard, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.GroupByStage(leads), nil
}

// UpdateLead applies a partial update. A status change is validated
// against the terminal-state rules and logged on the lead's timeline.
func (s *LeadService) UpdateLead(ctx context.Context, id int, req *models.UpdateLeadRequest, userID int) (*models.Lead, error) {
	lead, err := s.leads.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	oldStatus := models.NormalizeStatus(lead.Status)

	if req.Name != nil {
		lead.Name = *req.Name
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.UrgencyLevel != nil {
		lead.UrgencyLevel = *req.UrgencyLevel
	}
	if req.VehicleInterest != nil {
		lead.VehicleInterest = *req.VehicleInterest
	}
	if req.BudgetRange != nil {
		lead.BudgetRange = *req.BudgetRange
	}
	if req.CreditType != nil {
		lead.CreditType = *req.CreditType
	}
	if req.DownPayment != nil {
		lead.DownPayment = req.DownPayment
	}
	if req.TradeInDetails != nil {
		lead.TradeInDetails = *req.TradeInDetails
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}
	if req.AssignedTo != nil {
		lead.AssignedTo = *req.AssignedTo
	}
	if req.DealAmount != nil {
		lead.DealAmount = req.DealAmount
	}
	if req.Commission != nil {
		lead.Commission = req.Commission
	}
	if req.LostReason != nil {
		lead.LostReason = *req.LostReason
	}

	if req.Status != nil {
		newStatus := models.NormalizeStatus(*req.Status)
		if err := s.applyStatusChange(lead, newStatus); err != nil {
			return nil, err
		}
	}

	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("updating lead %d: %w", id, err)
	}

	if req.Status != nil && lead.Status != oldStatus {
		s.logStatusChange(ctx, lead, oldStatus, lead.Status, userID)
		metrics.LeadStageMovesTotal.WithLabelValues(models.PipelineStage(lead.Status)).Inc()
	}

	return lead, nil
}

// MoveStage handles board drag-and-drop: a pure status transition
func (s *LeadService) MoveStage(ctx context.Context, id int, stage string, userID int) (*models.Lead, error) {
	if !models.IsValidStatus(stage) {
		return nil, fmt.Errorf("unknown stage %q: %w", stage, apperrors.ErrValidation)
	}
	return s.UpdateLead(ctx, id, &models.UpdateLeadRequest{Status: &stage}, userID)
}

// applyStatusChange enforces terminal-state requirements before the
// status mutates: cerrado needs a deal amount, perdido needs a reason.
func (s *LeadService) applyStatusChange(lead *models.Lead, newStatus string) error {
	switch newStatus {
	case models.StatusCerrado:
		if lead.DealAmount == nil || *lead.DealAmount <= 0 {
			return fmt.Errorf("closing a deal requires deal_amount: %w", apperrors.ErrValidation)
		}
		now := timeutil.Now()
		lead.DealClosedAt = &now
	case models.StatusPerdido:
		if !models.IsValidLostReason(lead.LostReason) {
			return fmt.Errorf("marking a lead lost requires lost_reason: %w", apperrors.ErrValidation)
		}
	}
	lead.Status = newStatus
	return nil
}

// logStatusChange appends a cambio_estado entry; failures only log
func (s *LeadService) logStatusChange(ctx context.Context, lead *models.Lead, from, to string, userID int) {
	entry := &models.Interaction{
		LeadID: lead.ID,
		UserID: userID,
		Type:   models.InteractionCambioEstado,
		Notes:  fmt.Sprintf("Estado cambiado de %s a %s", from, to),
		Metadata: map[string]interface{}{
			"from": from,
			"to":   to,
		},
	}
	if err := s.interactions.Create(ctx, entry); err != nil {
		log.Printf("[Leads] Could not log status change for lead %d: %v", lead.ID, err)
	}
}
