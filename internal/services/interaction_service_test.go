package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/models"
	"crm-backend/internal/timeutil"
)

type interactionStoreMock struct {
	interactionLoggerMock
}

func (m *interactionStoreMock) ListByLead(ctx context.Context, leadID int) ([]*models.Interaction, error) {
	return m.entries, nil
}

func newInteractionServiceForTest() (*InteractionService, *leadStoreMock, *interactionStoreMock, *taskCreatorMock) {
	leads := newLeadStoreMock()
	interactions := &interactionStoreMock{}
	tasks := &taskCreatorMock{}
	svc := NewInteractionService(interactions, leads, tasks)
	return svc, leads, interactions, tasks
}

func TestCallDuration(t *testing.T) {
	assert.Nil(t, callDuration(0, 0), "zero means not recorded")

	d := callDuration(2, 30)
	require.NotNil(t, d)
	assert.Equal(t, 150, *d)

	d = callDuration(0, 45)
	require.NotNil(t, d)
	assert.Equal(t, 45, *d)
}

func TestFollowUpDue(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, timeutil.MX)

	t.Run("manana default", func(t *testing.T) {
		due := followUpDue(now, &models.LogCallRequest{FollowUpWhen: "manana"})
		assert.Equal(t, time.Date(2025, 3, 11, 10, 0, 0, 0, timeutil.MX), due)
	})

	t.Run("empty selector behaves like manana", func(t *testing.T) {
		due := followUpDue(now, &models.LogCallRequest{})
		assert.Equal(t, time.Date(2025, 3, 11, 10, 0, 0, 0, timeutil.MX), due)
	})

	t.Run("dos_dias", func(t *testing.T) {
		due := followUpDue(now, &models.LogCallRequest{FollowUpWhen: "dos_dias"})
		assert.Equal(t, time.Date(2025, 3, 12, 10, 0, 0, 0, timeutil.MX), due)
	})

	t.Run("tres_dias", func(t *testing.T) {
		due := followUpDue(now, &models.LogCallRequest{FollowUpWhen: "tres_dias"})
		assert.Equal(t, time.Date(2025, 3, 13, 10, 0, 0, 0, timeutil.MX), due)
	})

	t.Run("custom future date", func(t *testing.T) {
		due := followUpDue(now, &models.LogCallRequest{
			FollowUpWhen: "custom",
			FollowUpDate: "2025-03-20",
			FollowUpTime: "16:30",
		})
		assert.Equal(t, time.Date(2025, 3, 20, 16, 30, 0, 0, timeutil.MX), due)
	})

	t.Run("custom past date falls back to tomorrow", func(t *testing.T) {
		due := followUpDue(now, &models.LogCallRequest{
			FollowUpWhen: "custom",
			FollowUpDate: "2025-03-01",
			FollowUpTime: "09:00",
		})
		assert.Equal(t, time.Date(2025, 3, 11, 10, 0, 0, 0, timeutil.MX), due)
	})

	t.Run("custom unparseable falls back to tomorrow", func(t *testing.T) {
		due := followUpDue(now, &models.LogCallRequest{
			FollowUpWhen: "custom",
			FollowUpDate: "20/03/2025",
			FollowUpTime: "sixteen",
		})
		assert.Equal(t, time.Date(2025, 3, 11, 10, 0, 0, 0, timeutil.MX), due)
	})
}

func TestLogCall_LeadNotFound(t *testing.T) {
	svc, _, _, _ := newInteractionServiceForTest()

	_, err := svc.LogCall(context.Background(), &models.LogCallRequest{
		LeadID:  99,
		Outcome: models.OutcomeContestada,
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLogCall_InsertFailureAbortsSideEffects(t *testing.T) {
	svc, leads, interactions, tasks := newInteractionServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Name: "Ana", Status: models.StatusContactado}
	interactions.err = errors.New("insert failed")

	_, err := svc.LogCall(context.Background(), &models.LogCallRequest{
		LeadID:     1,
		Outcome:    models.OutcomeContestada,
		NextAction: models.NextActionSeguimiento,
	}, 7)

	require.Error(t, err)
	assert.Empty(t, tasks.tasks, "no task when the call insert fails")
}

func TestLogCall_SeguimientoCreatesTask(t *testing.T) {
	svc, leads, _, tasks := newInteractionServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Name: "Ana", AssignedTo: 3, Status: models.StatusContactado}

	resp, err := svc.LogCall(context.Background(), &models.LogCallRequest{
		LeadID:       1,
		Outcome:      models.OutcomeContestada,
		NextAction:   models.NextActionSeguimiento,
		FollowUpWhen: "manana",
	}, 7)

	require.NoError(t, err)
	require.NotNil(t, resp.Task)
	require.Len(t, tasks.tasks, 1)
	assert.Equal(t, "Seguimiento: Ana", resp.Task.Title)
	assert.Equal(t, "seguimiento", resp.Task.Type)
	assert.Equal(t, 3, resp.Task.AssignedTo)
	assert.True(t, resp.Task.AutoGenerated)
}

func TestLogCall_EnviarInfoCreatesTask(t *testing.T) {
	svc, leads, _, _ := newInteractionServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Name: "Ana", Status: models.StatusContactado}

	resp, err := svc.LogCall(context.Background(), &models.LogCallRequest{
		LeadID:     1,
		Outcome:    models.OutcomeContestada,
		NextAction: models.NextActionEnviarInfo,
	}, 7)

	require.NoError(t, err)
	require.NotNil(t, resp.Task)
	assert.Equal(t, "Enviar información a Ana", resp.Task.Title)
	assert.Equal(t, "enviar_info", resp.Task.Type)
}

func TestLogCall_CalificadoMovesLead(t *testing.T) {
	svc, leads, interactions, _ := newInteractionServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Name: "Ana", Status: models.StatusContactado}

	resp, err := svc.LogCall(context.Background(), &models.LogCallRequest{
		LeadID:          1,
		Outcome:         models.OutcomeContestada,
		NextAction:      models.NextActionCalificado,
		DurationMinutes: 5,
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, models.StatusCalificado, resp.LeadStatus)
	assert.Equal(t, models.StatusCalificado, leads.leads[1].Status)

	// Call entry plus the status-change entry
	require.Len(t, interactions.entries, 2)
	assert.Equal(t, models.InteractionLlamada, interactions.entries[0].Type)
	assert.Equal(t, models.InteractionCambioEstado, interactions.entries[1].Type)
}

func TestLogCall_UnansweredCallIgnoresNextAction(t *testing.T) {
	svc, leads, interactions, tasks := newInteractionServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Name: "Ana", Status: models.StatusContactado}

	resp, err := svc.LogCall(context.Background(), &models.LogCallRequest{
		LeadID:     1,
		Outcome:    models.OutcomeBuzon,
		NextAction: models.NextActionCalificado,
	}, 7)

	require.NoError(t, err)
	assert.Empty(t, resp.LeadStatus)
	assert.Nil(t, resp.Task)
	assert.Equal(t, models.StatusContactado, leads.leads[1].Status, "unanswered call never moves the lead")
	assert.Empty(t, tasks.tasks)

	// Only the call attempt is recorded, without a next_action marker
	require.Len(t, interactions.entries, 1)
	assert.Nil(t, interactions.entries[0].Metadata)
}

func TestLogCall_StatusUpdateFailureReportedEmpty(t *testing.T) {
	svc, leads, _, _ := newInteractionServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Name: "Ana", Status: models.StatusContactado}
	leads.updateErr = errors.New("update failed")

	resp, err := svc.LogCall(context.Background(), &models.LogCallRequest{
		LeadID:     1,
		Outcome:    models.OutcomeContestada,
		NextAction: models.NextActionNoInteresado,
	}, 7)

	require.NoError(t, err, "the call itself is already recorded")
	assert.Empty(t, resp.LeadStatus)
}

func TestAddNote(t *testing.T) {
	svc, _, interactions, _ := newInteractionServiceForTest()

	_, err := svc.AddNote(context.Background(), 1, 7, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	entry, err := svc.AddNote(context.Background(), 1, 7, "Cliente pidió cotización")
	require.NoError(t, err)
	assert.Equal(t, models.InteractionNota, entry.Type)
	require.Len(t, interactions.entries, 1)
}
