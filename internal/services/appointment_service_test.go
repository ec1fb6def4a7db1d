package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/models"
	"crm-backend/internal/timeutil"
)

type appointmentStoreMock struct {
	appts  map[int]*models.Appointment
	nextID int
}

func newAppointmentStoreMock() *appointmentStoreMock {
	return &appointmentStoreMock{appts: map[int]*models.Appointment{}, nextID: 1}
}

func (m *appointmentStoreMock) Create(ctx context.Context, a *models.Appointment) error {
	a.ID = m.nextID
	m.nextID++
	m.appts[a.ID] = a
	return nil
}

func (m *appointmentStoreMock) Get(ctx context.Context, id int) (*models.Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *appointmentStoreMock) List(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	return nil, nil
}

func (m *appointmentStoreMock) ListByLead(ctx context.Context, leadID int) ([]*models.Appointment, error) {
	return nil, nil
}

func (m *appointmentStoreMock) Update(ctx context.Context, a *models.Appointment) error {
	m.appts[a.ID] = a
	return nil
}

func (m *appointmentStoreMock) UpdateStatus(ctx context.Context, id int, status string) error {
	m.appts[id].Status = status
	return nil
}

func newAppointmentServiceForTest() (*AppointmentService, *appointmentStoreMock, *leadStoreMock, *taskCreatorMock, *interactionLoggerMock) {
	appts := newAppointmentStoreMock()
	leads := newLeadStoreMock()
	tasks := &taskCreatorMock{}
	interactions := &interactionLoggerMock{}
	svc := NewAppointmentService(appts, leads, tasks, interactions)
	return svc, appts, leads, tasks, interactions
}

func futureTime() time.Time {
	return timeutil.Now().Add(48 * time.Hour)
}

func TestCreateAppointment_LeadNotFound(t *testing.T) {
	svc, _, _, _, _ := newAppointmentServiceForTest()

	_, err := svc.CreateAppointment(context.Background(), &models.CreateAppointmentRequest{
		LeadID:      99,
		ScheduledAt: futureTime(),
		Type:        "test_drive",
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateAppointment_PastTimeRejected(t *testing.T) {
	svc, _, leads, _, _ := newAppointmentServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Status: models.StatusContactado}

	_, err := svc.CreateAppointment(context.Background(), &models.CreateAppointmentRequest{
		LeadID:      1,
		ScheduledAt: timeutil.Now().Add(-time.Hour),
		Type:        "test_drive",
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateAppointment_AdvancesEarlyPipelineLead(t *testing.T) {
	svc, _, leads, _, _ := newAppointmentServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Status: models.StatusNuevo}

	appt, err := svc.CreateAppointment(context.Background(), &models.CreateAppointmentRequest{
		LeadID:      1,
		ScheduledAt: futureTime(),
		Type:        "test_drive",
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, models.AppointmentProgramada, appt.Status)
	assert.Equal(t, 60, appt.DurationMinutes, "duration defaults to an hour")
	assert.Equal(t, models.StatusCitaProgramada, leads.leads[1].Status)
}

func TestCreateAppointment_LateLeadKeepsStatus(t *testing.T) {
	svc, _, leads, _, _ := newAppointmentServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Status: models.StatusNegociacion}

	_, err := svc.CreateAppointment(context.Background(), &models.CreateAppointmentRequest{
		LeadID:      1,
		ScheduledAt: futureTime(),
		Type:        "delivery",
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, models.StatusNegociacion, leads.leads[1].Status)
	assert.Empty(t, leads.updated)
}

func TestUpdateAppointment_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{"programada to confirmada", models.AppointmentProgramada, models.AppointmentConfirmada, nil},
		{"programada to cancelada", models.AppointmentProgramada, models.AppointmentCancelada, nil},
		{"confirmada to cancelada", models.AppointmentConfirmada, models.AppointmentCancelada, nil},
		{"confirmada back to programada", models.AppointmentConfirmada, models.AppointmentProgramada, apperrors.ErrConflict},
		{"cancelada is terminal", models.AppointmentCancelada, models.AppointmentConfirmada, apperrors.ErrConflict},
		{"completada only via outcome", models.AppointmentProgramada, models.AppointmentCompletada, apperrors.ErrValidation},
		{"no_show only via outcome", models.AppointmentConfirmada, models.AppointmentNoShow, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, appts, _, _, _ := newAppointmentServiceForTest()
			appts.appts[1] = &models.Appointment{ID: 1, LeadID: 1, Status: tt.from}

			_, err := svc.UpdateAppointment(context.Background(), 1, &models.UpdateAppointmentRequest{Status: &tt.to})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.to, appts.appts[1].Status)
			}
		})
	}
}

func TestRecordOutcome_AlreadyResolved(t *testing.T) {
	svc, appts, leads, _, _ := newAppointmentServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Status: models.StatusCitaProgramada}
	appts.appts[1] = &models.Appointment{ID: 1, LeadID: 1, Status: models.AppointmentCompletada}

	_, err := svc.RecordOutcome(context.Background(), 1, &models.AppointmentOutcomeRequest{
		Outcome: models.AppointmentOutcomeSeguimiento,
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRecordOutcome_VendidoRequiresDealAmount(t *testing.T) {
	svc, appts, leads, _, _ := newAppointmentServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Status: models.StatusCitaProgramada}
	appts.appts[1] = &models.Appointment{ID: 1, LeadID: 1, Status: models.AppointmentConfirmada}

	_, err := svc.RecordOutcome(context.Background(), 1, &models.AppointmentOutcomeRequest{
		Outcome: models.AppointmentOutcomeVendido,
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, models.AppointmentConfirmada, appts.appts[1].Status, "nothing mutated")
}

func TestRecordOutcome_VendidoClosesLead(t *testing.T) {
	svc, appts, leads, _, interactions := newAppointmentServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Name: "Ana", Status: models.StatusCitaProgramada}
	appts.appts[1] = &models.Appointment{ID: 1, LeadID: 1, Status: models.AppointmentProgramada}

	amount := 380000.0
	commission := 7600.0
	resp, err := svc.RecordOutcome(context.Background(), 1, &models.AppointmentOutcomeRequest{
		Outcome:    models.AppointmentOutcomeVendido,
		DealAmount: &amount,
		Commission: &commission,
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompletada, resp.Appointment.Status)
	require.NotNil(t, resp.Lead)
	assert.Equal(t, models.StatusCerrado, resp.Lead.Status)
	require.NotNil(t, resp.Lead.DealAmount)
	assert.Equal(t, 380000.0, *resp.Lead.DealAmount)
	assert.NotNil(t, resp.Lead.DealClosedAt)

	assert.Equal(t, models.StatusCerrado, leads.leads[1].Status)
	require.Len(t, interactions.entries, 1)
	assert.Equal(t, models.InteractionCambioEstado, interactions.entries[0].Type)
}

func TestRecordOutcome_PerdidoRequiresReason(t *testing.T) {
	svc, appts, leads, _, _ := newAppointmentServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Status: models.StatusCitaProgramada}
	appts.appts[1] = &models.Appointment{ID: 1, LeadID: 1, Status: models.AppointmentProgramada}

	_, err := svc.RecordOutcome(context.Background(), 1, &models.AppointmentOutcomeRequest{
		Outcome:    models.AppointmentOutcomePerdido,
		LostReason: "bad reason",
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	resp, err := svc.RecordOutcome(context.Background(), 1, &models.AppointmentOutcomeRequest{
		Outcome:    models.AppointmentOutcomePerdido,
		LostReason: "compro_en_otro_lado",
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPerdido, resp.Lead.Status)
	assert.Equal(t, "compro_en_otro_lado", resp.Lead.LostReason)
}

func TestRecordOutcome_SeguimientoCreatesTask(t *testing.T) {
	svc, appts, leads, tasks, interactions := newAppointmentServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Name: "Ana", AssignedTo: 3, Status: models.StatusCitaProgramada}
	appts.appts[1] = &models.Appointment{ID: 1, LeadID: 1, Status: models.AppointmentConfirmada}

	resp, err := svc.RecordOutcome(context.Background(), 1, &models.AppointmentOutcomeRequest{
		Outcome: models.AppointmentOutcomeSeguimiento,
	}, 7)

	require.NoError(t, err)
	assert.Nil(t, resp.Lead, "lead status untouched")
	require.NotNil(t, resp.Task)
	assert.Equal(t, "Seguimiento post-cita: Ana", resp.Task.Title)
	assert.Equal(t, 3, resp.Task.AssignedTo)
	require.Len(t, tasks.tasks, 1)
	require.Len(t, interactions.entries, 1)
	assert.Equal(t, models.InteractionNota, interactions.entries[0].Type)
}

func TestRecordOutcome_NoShow(t *testing.T) {
	svc, appts, leads, _, interactions := newAppointmentServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Name: "Ana", Status: models.StatusCitaProgramada}
	appts.appts[1] = &models.Appointment{ID: 1, LeadID: 1, Status: models.AppointmentConfirmada}

	resp, err := svc.RecordOutcome(context.Background(), 1, &models.AppointmentOutcomeRequest{
		Outcome: models.AppointmentOutcomeNoShow,
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, models.AppointmentNoShow, resp.Appointment.Status)
	require.NotNil(t, resp.Task)
	assert.Equal(t, "Reagendar cita: Ana", resp.Task.Title)
	assert.Equal(t, "llamar", resp.Task.Type)
	assert.Equal(t, "alta", resp.Task.Priority)
	require.Len(t, interactions.entries, 1)
	assert.Equal(t, "Cliente no se presentó a la cita", interactions.entries[0].Notes)
}

func TestRecordOutcome_ExtraNotesLogged(t *testing.T) {
	svc, appts, leads, _, interactions := newAppointmentServiceForTest()
	leads.leads[1] = &models.Lead{ID: 1, Name: "Ana", Status: models.StatusCitaProgramada}
	appts.appts[1] = &models.Appointment{ID: 1, LeadID: 1, Status: models.AppointmentProgramada}

	_, err := svc.RecordOutcome(context.Background(), 1, &models.AppointmentOutcomeRequest{
		Outcome: models.AppointmentOutcomeSeguimiento,
		Notes:   "Quiere ver otro color",
	}, 7)

	require.NoError(t, err)
	require.Len(t, interactions.entries, 2)
	assert.Equal(t, "Quiere ver otro color", interactions.entries[1].Notes)
}
