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

// --- mocks ---

type leadStoreMock struct {
	leads     map[int]*models.Lead
	createErr error
	updateErr error
	created   []*models.Lead
	updated   []*models.Lead
	nextID    int
}

func newLeadStoreMock() *leadStoreMock {
	return &leadStoreMock{leads: map[int]*models.Lead{}, nextID: 1}
}

func (m *leadStoreMock) Create(ctx context.Context, l *models.Lead) error {
	if m.createErr != nil {
		return m.createErr
	}
	l.ID = m.nextID
	m.nextID++
	m.leads[l.ID] = l
	m.created = append(m.created, l)
	return nil
}

func (m *leadStoreMock) Get(ctx context.Context, id int) (*models.Lead, error) {
	l, ok := m.leads[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (m *leadStoreMock) List(ctx context.Context) ([]*models.Lead, error) {
	out := make([]*models.Lead, 0, len(m.leads))
	for _, l := range m.leads {
		out = append(out, l)
	}
	return out, nil
}

func (m *leadStoreMock) SearchByName(ctx context.Context, query string, limit int) ([]*models.Lead, error) {
	return nil, nil
}

func (m *leadStoreMock) Update(ctx context.Context, l *models.Lead) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.leads[l.ID] = l
	m.updated = append(m.updated, l)
	return nil
}

type taskCreatorMock struct {
	tasks []*models.Task
	err   error
}

func (m *taskCreatorMock) Create(ctx context.Context, t *models.Task) error {
	if m.err != nil {
		return m.err
	}
	m.tasks = append(m.tasks, t)
	return nil
}

type interactionLoggerMock struct {
	entries []*models.Interaction
	err     error
}

func (m *interactionLoggerMock) Create(ctx context.Context, i *models.Interaction) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, i)
	return nil
}

func newLeadServiceForTest() (*LeadService, *leadStoreMock, *taskCreatorMock, *interactionLoggerMock) {
	leads := newLeadStoreMock()
	tasks := &taskCreatorMock{}
	interactions := &interactionLoggerMock{}
	svc := NewLeadService(leads, tasks, interactions, alerts.NoopDispatcher{})
	return svc, leads, tasks, interactions
}

// --- tests ---

func TestCreateLead_Defaults(t *testing.T) {
	svc, _, tasks, _ := newLeadServiceForTest()

	lead, err := svc.CreateLead(context.Background(), &models.CreateLeadRequest{
		Name:   "Juan Pérez",
		Phone:  "5551234567",
		Source: "facebook",
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, models.StatusNuevo, lead.Status)
	assert.Equal(t, "media", lead.UrgencyLevel)
	assert.Equal(t, 7, lead.AssignedTo, "unassigned leads go to the creator")

	// First-call task is scheduled automatically
	require.Len(t, tasks.tasks, 1)
	task := tasks.tasks[0]
	assert.Equal(t, lead.ID, task.LeadID)
	assert.Equal(t, "Llamar a nuevo lead: Juan Pérez", task.Title)
	assert.Equal(t, "llamar", task.Type)
	assert.Equal(t, "alta", task.Priority)
	assert.True(t, task.AutoGenerated)
}

func TestCreateLead_UrgentLeadGetsUrgentTask(t *testing.T) {
	svc, _, tasks, _ := newLeadServiceForTest()

	_, err := svc.CreateLead(context.Background(), &models.CreateLeadRequest{
		Name:         "Ana",
		Phone:        "5550000001",
		Source:       "website",
		UrgencyLevel: "urgente",
		AssignedTo:   3,
	}, 7)

	require.NoError(t, err)
	require.Len(t, tasks.tasks, 1)
	assert.Equal(t, "urgente", tasks.tasks[0].Priority)
	assert.Equal(t, 3, tasks.tasks[0].AssignedTo)
}

func TestCreateLead_DuplicatePhone(t *testing.T) {
	svc, leads, tasks, _ := newLeadServiceForTest()
	leads.createErr = &apperrors.DuplicateLeadError{LeadID: 42, AssignedTo: 9}

	_, err := svc.CreateLead(context.Background(), &models.CreateLeadRequest{
		Name:   "Juan",
		Phone:  "5551234567",
		Source: "phone",
	}, 7)

	var dup *apperrors.DuplicateLeadError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 42, dup.LeadID)
	assert.Equal(t, 9, dup.AssignedTo)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicate))
	assert.Empty(t, tasks.tasks, "no side effects when the lead insert fails")
}

func TestCreateLead_TaskFailureIsNotFatal(t *testing.T) {
	svc, _, tasks, _ := newLeadServiceForTest()
	tasks.err = errors.New("tasks table gone")

	lead, err := svc.CreateLead(context.Background(), &models.CreateLeadRequest{
		Name:   "Juan",
		Phone:  "5551234567",
		Source: "referral",
	}, 7)

	require.NoError(t, err)
	assert.NotZero(t, lead.ID)
}

func TestGetLead_NotFound(t *testing.T) {
	svc, _, _, _ := newLeadServiceForTest()

	_, err := svc.GetLead(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetLead_NormalizesLegacyStatus(t *testing.T) {
	svc, leads, _, _ := newLeadServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Name: "Ana", Status: "appointment_scheduled"}

	lead, err := svc.GetLead(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCitaProgramada, lead.Status)
}

func TestUpdateLead_CloseRequiresDealAmount(t *testing.T) {
	svc, leads, _, _ := newLeadServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Status: models.StatusNegociacion}

	status := models.StatusCerrado
	_, err := svc.UpdateLead(context.Background(), 1, &models.UpdateLeadRequest{Status: &status}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, leads.updated)
}

func TestUpdateLead_CloseSetsDealClosedAt(t *testing.T) {
	svc, leads, _, interactions := newLeadServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Status: models.StatusNegociacion}

	status := models.StatusCerrado
	amount := 250000.0
	lead, err := svc.UpdateLead(context.Background(), 1, &models.UpdateLeadRequest{
		Status:     &status,
		DealAmount: &amount,
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, models.StatusCerrado, lead.Status)
	require.NotNil(t, lead.DealClosedAt)
	require.Len(t, interactions.entries, 1)
	assert.Equal(t, models.InteractionCambioEstado, interactions.entries[0].Type)
	assert.Equal(t, "Estado cambiado de negociacion a cerrado", interactions.entries[0].Notes)
}

func TestUpdateLead_LostRequiresReason(t *testing.T) {
	svc, leads, _, _ := newLeadServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Status: models.StatusContactado}

	status := models.StatusPerdido
	_, err := svc.UpdateLead(context.Background(), 1, &models.UpdateLeadRequest{Status: &status}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	reason := "precio"
	lead, err := svc.UpdateLead(context.Background(), 1, &models.UpdateLeadRequest{
		Status:     &status,
		LostReason: &reason,
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPerdido, lead.Status)
	assert.Equal(t, "precio", lead.LostReason)
}

func TestUpdateLead_SameStatusNotLogged(t *testing.T) {
	svc, leads, _, interactions := newLeadServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Status: models.StatusContactado}

	status := models.StatusContactado
	_, err := svc.UpdateLead(context.Background(), 1, &models.UpdateLeadRequest{Status: &status}, 7)
	require.NoError(t, err)
	assert.Empty(t, interactions.entries)
}

func TestMoveStage_RejectsUnknownStage(t *testing.T) {
	svc, _, _, _ := newLeadServiceForTest()

	_, err := svc.MoveStage(context.Background(), 1, "limbo", 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSearchLeads_EmptyQuery(t *testing.T) {
	svc, _, _, _ := newLeadServiceForTest()

	out, err := svc.SearchLeads(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, out)
}
