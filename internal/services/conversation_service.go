package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"crm-backend/internal/alerts"
	"crm-backend/internal/apperrors"
	"crm-backend/internal/metrics"
	"crm-backend/internal/models"
	"crm-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// ConversationStore is the part of the conversation repository this
// service consumes
type ConversationStore interface {
	Get(ctx context.Context, id int) (*models.Conversation, error)
	List(ctx context.Context) ([]*models.Conversation, error)
	GetContext(ctx context.Context, conversationID int) (*models.ConversationContext, error)
	ListMessages(ctx context.Context, conversationID int) ([]*models.Message, error)
	UpdateStatus(ctx context.Context, id int, status string) error
}

type ConversationService struct {
	conversations ConversationStore
	leads         LeadStore
	tasks         TaskCreator
	alerter       alerts.Dispatcher
}

func NewConversationService(conversations ConversationStore, leads LeadStore, tasks TaskCreator, alerter alerts.Dispatcher) *ConversationService {
	return &ConversationService{conversations: conversations, leads: leads, tasks: tasks, alerter: alerter}
}

// ListConversations returns every conversation for the inbox view
func (s *ConversationService) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	return s.conversations.List(ctx)
}

// GetDetail returns a conversation with its context and full transcript.
// The context row may be absent for short conversations; that is not an
// error.
func (s *ConversationService) GetDetail(ctx context.Context, id int) (*models.ConversationDetail, error) {
	conv, err := s.conversations.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	detail := &models.ConversationDetail{Conversation: conv, Messages: []*models.Message{}}

	if cc, err := s.conversations.GetContext(ctx, id); err == nil {
		detail.Context = cc
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("fetching context for conversation %d: %w", id, err)
	}

	messages, err := s.conversations.ListMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching messages for conversation %d: %w", id, err)
	}
	detail.Messages = messages

	return detail, nil
}

// ConvertToLead promotes a conversation into a lead. The lead insert is
// the atomic core; the follow-up call task is best-effort and the team
// alert is fire-and-forget. A duplicate phone surfaces as
// *apperrors.DuplicateLeadError for the 409 response.
func (s *ConversationService) ConvertToLead(ctx context.Context, req *models.ConvertConversationRequest, userID int) (*models.Lead, error) {
	conv, err := s.conversations.Get(ctx, req.ConversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("conversation %d: %w", req.ConversationID, apperrors.ErrNotFound)
		}
		return nil, err
	}

	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = conv.PhoneNumber
	}
	if phone == "" {
		return nil, fmt.Errorf("conversation has no phone number; one must be provided: %w", apperrors.ErrValidation)
	}

	assignedTo := req.AssignedTo
	if assignedTo == 0 {
		assignedTo = userID
	}

	lead := &models.Lead{
		Name:           req.Name,
		Phone:          phone,
		Source:         sourceForPlatform(conv.Platform),
		Status:         models.StatusNuevo,
		UrgencyLevel:   conv.UrgencyLevel,
		AssignedTo:     assignedTo,
		ConversationID: &conv.ID,
	}
	if lead.UrgencyLevel == "" {
		lead.UrgencyLevel = "media"
	}

	// Carry over what the chat automation already learned
	if cc, err := s.conversations.GetContext(ctx, conv.ID); err == nil {
		lead.VehicleInterest = cc.VehicleInterest
		lead.BudgetRange = cc.BudgetRange
		lead.CreditType = cc.CreditSituation
		lead.Notes = contextNotes(cc)
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		var dup *apperrors.DuplicateLeadError
		if errors.As(err, &dup) {
			return nil, dup
		}
		return nil, fmt.Errorf("creating lead from conversation %d: %w", conv.ID, err)
	}

	metrics.LeadsCreatedTotal.WithLabelValues(lead.Source).Inc()
	log.Printf("[Conversations] Converted conversation %d into lead %d", conv.ID, lead.ID)

	// A converted conversation is closed; the lead carries it forward
	if err := s.conversations.UpdateStatus(ctx, conv.ID, "closed"); err != nil {
		log.Printf("[Conversations] Could not close conversation %d after conversion: %v", conv.ID, err)
	}

	task := &models.Task{
		LeadID:        lead.ID,
		AssignedTo:    lead.AssignedTo,
		Title:         "Llamar a nuevo lead: " + lead.Name,
		Type:          "llamar",
		Priority:      "urgente",
		DueAt:         timeutil.Now().Add(5 * time.Minute),
		Status:        "pendiente",
		AutoGenerated: true,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		log.Printf("[Conversations] Could not create call task for lead %d: %v", lead.ID, err)
	}

	s.alerter.NewLead(ctx, lead)

	return lead, nil
}

// sourceForPlatform maps a chat platform to a lead source
func sourceForPlatform(platform string) string {
	switch platform {
	case "whatsapp":
		return "phone"
	default:
		return "facebook"
	}
}

// contextNotes folds the remaining context fields into the lead notes
func contextNotes(cc *models.ConversationContext) string {
	var parts []string
	if cc.Concerns != "" {
		parts = append(parts, "Inquietudes: "+cc.Concerns)
	}
	if cc.Timeline != "" {
		parts = append(parts, "Plazo: "+cc.Timeline)
	}
	return strings.Join(parts, "\n")
}
