package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/alerts"
	"crm-backend/internal/apperrors"
	"crm-backend/internal/models"
)

type conversationStoreMock struct {
	convs         map[int]*models.Conversation
	contexts      map[int]*models.ConversationContext
	messages      map[int][]*models.Message
	statusUpdates map[int]string
	updateErr     error
}

func newConversationStoreMock() *conversationStoreMock {
	return &conversationStoreMock{
		convs:         map[int]*models.Conversation{},
		contexts:      map[int]*models.ConversationContext{},
		messages:      map[int][]*models.Message{},
		statusUpdates: map[int]string{},
	}
}

func (m *conversationStoreMock) Get(ctx context.Context, id int) (*models.Conversation, error) {
	c, ok := m.convs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (m *conversationStoreMock) List(ctx context.Context) ([]*models.Conversation, error) {
	out := make([]*models.Conversation, 0, len(m.convs))
	for _, c := range m.convs {
		out = append(out, c)
	}
	return out, nil
}

func (m *conversationStoreMock) GetContext(ctx context.Context, conversationID int) (*models.ConversationContext, error) {
	cc, ok := m.contexts[conversationID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cc, nil
}

func (m *conversationStoreMock) ListMessages(ctx context.Context, conversationID int) ([]*models.Message, error) {
	return m.messages[conversationID], nil
}

func (m *conversationStoreMock) UpdateStatus(ctx context.Context, id int, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.statusUpdates[id] = status
	return nil
}

func newConversationServiceForTest() (*ConversationService, *conversationStoreMock, *leadStoreMock, *taskCreatorMock) {
	convs := newConversationStoreMock()
	leads := newLeadStoreMock()
	tasks := &taskCreatorMock{}
	svc := NewConversationService(convs, leads, tasks, alerts.NoopDispatcher{})
	return svc, convs, leads, tasks
}

func TestGetDetail_NotFound(t *testing.T) {
	svc, _, _, _ := newConversationServiceForTest()

	_, err := svc.GetDetail(context.Background(), 5)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetDetail_MissingContextIsTolerated(t *testing.T) {
	svc, convs, _, _ := newConversationServiceForTest()
	convs.convs[5] = &models.Conversation{ID: 5, Platform: "facebook", Status: "active"}
	convs.messages[5] = []*models.Message{{ID: 1, ConversationID: 5, Role: "user", Content: "Hola"}}

	detail, err := svc.GetDetail(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, detail.Context)
	require.Len(t, detail.Messages, 1)
}

func TestConvertToLead_ConversationNotFound(t *testing.T) {
	svc, _, _, _ := newConversationServiceForTest()

	_, err := svc.ConvertToLead(context.Background(), &models.ConvertConversationRequest{
		ConversationID: 9,
		Name:           "Juan",
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConvertToLead_NoPhoneAnywhere(t *testing.T) {
	svc, convs, _, _ := newConversationServiceForTest()
	convs.convs[5] = &models.Conversation{ID: 5, Platform: "facebook"}

	_, err := svc.ConvertToLead(context.Background(), &models.ConvertConversationRequest{
		ConversationID: 5,
		Name:           "Juan",
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestConvertToLead_CopiesContext(t *testing.T) {
	svc, convs, _, tasks := newConversationServiceForTest()
	convs.convs[5] = &models.Conversation{
		ID:           5,
		Platform:     "facebook",
		PhoneNumber:  "5551112222",
		UrgencyLevel: "alta",
	}
	convs.contexts[5] = &models.ConversationContext{
		ConversationID:  5,
		VehicleInterest: "Mazda CX-5 2024",
		BudgetRange:     "400-450k",
		CreditSituation: "credito_bancario",
		Concerns:        "Tasa de interés",
		Timeline:        "este mes",
	}

	lead, err := svc.ConvertToLead(context.Background(), &models.ConvertConversationRequest{
		ConversationID: 5,
		Name:           "Juan Pérez",
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, "5551112222", lead.Phone)
	assert.Equal(t, "facebook", lead.Source)
	assert.Equal(t, "alta", lead.UrgencyLevel)
	assert.Equal(t, models.StatusNuevo, lead.Status)
	assert.Equal(t, 7, lead.AssignedTo)
	require.NotNil(t, lead.ConversationID)
	assert.Equal(t, 5, *lead.ConversationID)

	assert.Equal(t, "Mazda CX-5 2024", lead.VehicleInterest)
	assert.Equal(t, "400-450k", lead.BudgetRange)
	assert.Equal(t, "credito_bancario", lead.CreditType)
	assert.Equal(t, "Inquietudes: Tasa de interés\nPlazo: este mes", lead.Notes)

	// Conversation closed after conversion, urgent call task created
	assert.Equal(t, "closed", convs.statusUpdates[5])
	require.Len(t, tasks.tasks, 1)
	assert.Equal(t, "urgente", tasks.tasks[0].Priority)
	assert.Equal(t, lead.ID, tasks.tasks[0].LeadID)
}

func TestConvertToLead_WhatsappMapsToPhoneSource(t *testing.T) {
	svc, convs, _, _ := newConversationServiceForTest()
	convs.convs[5] = &models.Conversation{ID: 5, Platform: "whatsapp", PhoneNumber: "5551112222"}

	lead, err := svc.ConvertToLead(context.Background(), &models.ConvertConversationRequest{
		ConversationID: 5,
		Name:           "Juan",
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, "phone", lead.Source)
	assert.Equal(t, "media", lead.UrgencyLevel, "missing urgency defaults")
}

func TestConvertToLead_RequestPhoneWins(t *testing.T) {
	svc, convs, _, _ := newConversationServiceForTest()
	convs.convs[5] = &models.Conversation{ID: 5, Platform: "facebook", PhoneNumber: "5550000000"}

	lead, err := svc.ConvertToLead(context.Background(), &models.ConvertConversationRequest{
		ConversationID: 5,
		Name:           "Juan",
		Phone:          " 5559999999 ",
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, "5559999999", lead.Phone)
}

func TestConvertToLead_DuplicatePhonePassesThrough(t *testing.T) {
	svc, convs, leads, tasks := newConversationServiceForTest()
	convs.convs[5] = &models.Conversation{ID: 5, Platform: "facebook", PhoneNumber: "5551112222"}
	leads.createErr = &apperrors.DuplicateLeadError{LeadID: 42, AssignedTo: 9}

	_, err := svc.ConvertToLead(context.Background(), &models.ConvertConversationRequest{
		ConversationID: 5,
		Name:           "Juan",
	}, 7)

	var dup *apperrors.DuplicateLeadError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 42, dup.LeadID)
	assert.Empty(t, tasks.tasks)
	assert.Empty(t, convs.statusUpdates, "conversation stays unconverted")
}

func TestConvertToLead_StatusUpdateFailureIsNotFatal(t *testing.T) {
	svc, convs, _, _ := newConversationServiceForTest()
	convs.convs[5] = &models.Conversation{ID: 5, Platform: "facebook", PhoneNumber: "5551112222"}
	convs.updateErr = errors.New("update failed")

	lead, err := svc.ConvertToLead(context.Background(), &models.ConvertConversationRequest{
		ConversationID: 5,
		Name:           "Juan",
	}, 7)

	require.NoError(t, err)
	assert.NotZero(t, lead.ID)
}
