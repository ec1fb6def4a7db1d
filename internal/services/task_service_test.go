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
)

type taskStoreMock struct {
	taskCreatorMock
	byID map[int]*models.Task
}

func newTaskStoreMock() *taskStoreMock {
	return &taskStoreMock{byID: map[int]*models.Task{}}
}

func (m *taskStoreMock) Get(ctx context.Context, id int) (*models.Task, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m *taskStoreMock) List(ctx context.Context, status string) ([]*models.Task, error) {
	return m.tasks, nil
}

func (m *taskStoreMock) ListByLead(ctx context.Context, leadID int) ([]*models.Task, error) {
	return m.tasks, nil
}

func (m *taskStoreMock) Complete(ctx context.Context, id int, completedAt time.Time) error {
	m.byID[id].Status = "completada"
	m.byID[id].CompletedAt = &completedAt
	return nil
}

func TestCreateTask_Defaults(t *testing.T) {
	store := newTaskStoreMock()
	svc := NewTaskService(store)

	task, err := svc.CreateTask(context.Background(), &models.CreateTaskRequest{
		LeadID: 1,
		Title:  "Enviar cotización",
		Type:   "enviar_info",
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, "media", task.Priority)
	assert.Equal(t, 7, task.AssignedTo)
	assert.Equal(t, "pendiente", task.Status)
	assert.False(t, task.AutoGenerated)
}

func TestListTasks_RejectsUnknownStatus(t *testing.T) {
	svc := NewTaskService(newTaskStoreMock())

	_, err := svc.ListTasks(context.Background(), "archived")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.ListTasks(context.Background(), "")
	assert.NoError(t, err)
	_, err = svc.ListTasks(context.Background(), "pendiente")
	assert.NoError(t, err)
}

func TestCompleteTask(t *testing.T) {
	store := newTaskStoreMock()
	store.byID[1] = &models.Task{ID: 1, Status: "pendiente"}
	svc := NewTaskService(store)

	task, err := svc.CompleteTask(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "completada", task.Status)
	require.NotNil(t, task.CompletedAt)

	// Completing twice is a conflict
	_, err = svc.CompleteTask(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCompleteTask_NotFound(t *testing.T) {
	svc := NewTaskService(newTaskStoreMock())

	_, err := svc.CompleteTask(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
