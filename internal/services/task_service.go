package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/models"
	"crm-backend/internal/timeutil"

	"github.com/jackc/pgx/v5"
)

// TaskStore is the part of the task repository this service consumes
type TaskStore interface {
	Create(ctx context.Context, t *models.Task) error
	Get(ctx context.Context, id int) (*models.Task, error)
	List(ctx context.Context, status string) ([]*models.Task, error)
	ListByLead(ctx context.Context, leadID int) ([]*models.Task, error)
	Complete(ctx context.Context, id int, completedAt time.Time) error
}

type TaskService struct {
	tasks TaskStore
}

func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

// CreateTask registers a manual task for a lead
func (s *TaskService) CreateTask(ctx context.Context, req *models.CreateTaskRequest, userID int) (*models.Task, error) {
	priority := req.Priority
	if priority == "" {
		priority = "media"
	}
	assignedTo := req.AssignedTo
	if assignedTo == 0 {
		assignedTo = userID
	}

	task := &models.Task{
		LeadID:        req.LeadID,
		AssignedTo:    assignedTo,
		Title:         req.Title,
		Type:          req.Type,
		Priority:      priority,
		DueAt:         req.DueAt,
		Status:        "pendiente",
		AutoGenerated: false,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return task, nil
}

// ListTasks returns tasks, optionally filtered by status
func (s *TaskService) ListTasks(ctx context.Context, status string) ([]*models.Task, error) {
	if status != "" && status != "pendiente" && status != "completada" {
		return nil, fmt.Errorf("unknown task status %q: %w", status, apperrors.ErrValidation)
	}
	return s.tasks.List(ctx, status)
}

// ListByLead returns every task attached to a lead
func (s *TaskService) ListByLead(ctx context.Context, leadID int) ([]*models.Task, error) {
	return s.tasks.ListByLead(ctx, leadID)
}

// CompleteTask marks a task done. Completing an already-completed task
// is a conflict, not a no-op, so double-clicks surface in the UI.
func (s *TaskService) CompleteTask(ctx context.Context, id int) (*models.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if task.Status == "completada" {
		return nil, fmt.Errorf("task %d already completed: %w", id, apperrors.ErrConflict)
	}

	now := timeutil.Now()
	if err := s.tasks.Complete(ctx, id, now); err != nil {
		return nil, fmt.Errorf("completing task %d: %w", id, err)
	}
	task.Status = "completada"
	task.CompletedAt = &now
	return task, nil
}
