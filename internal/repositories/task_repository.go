package repositories

import (
	"context"
	"time"

	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	DB *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	var assignedTo interface{}
	if t.AssignedTo != 0 {
		assignedTo = t.AssignedTo
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO tasks(lead_id, assigned_to, title, type, priority, due_at, status, auto_generated)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at`,
		t.LeadID, assignedTo, t.Title, t.Type, t.Priority, t.DueAt, t.Status, t.AutoGenerated,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *TaskRepository) Get(ctx context.Context, id int) (*models.Task, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, lead_id, COALESCE(assigned_to, 0) as assigned_to, title, type, priority,
             due_at, status, auto_generated, completed_at, created_at
         FROM tasks WHERE id=$1`, id)

	var t models.Task
	err := row.Scan(&t.ID, &t.LeadID, &t.AssignedTo, &t.Title, &t.Type, &t.Priority,
		&t.DueAt, &t.Status, &t.AutoGenerated, &t.CompletedAt, &t.CreatedAt)
	return &t, err
}

func (r *TaskRepository) List(ctx context.Context, status string) ([]*models.Task, error) {
	query := `SELECT id, lead_id, COALESCE(assigned_to, 0) as assigned_to, title, type, priority,
             due_at, status, auto_generated, completed_at, created_at
         FROM tasks`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY due_at ASC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		var t models.Task
		err := rows.Scan(&t.ID, &t.LeadID, &t.AssignedTo, &t.Title, &t.Type, &t.Priority,
			&t.DueAt, &t.Status, &t.AutoGenerated, &t.CompletedAt, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) ListByLead(ctx context.Context, leadID int) ([]*models.Task, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, lead_id, COALESCE(assigned_to, 0) as assigned_to, title, type, priority,
             due_at, status, auto_generated, completed_at, created_at
         FROM tasks WHERE lead_id=$1 ORDER BY due_at ASC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		var t models.Task
		err := rows.Scan(&t.ID, &t.LeadID, &t.AssignedTo, &t.Title, &t.Type, &t.Priority,
			&t.DueAt, &t.Status, &t.AutoGenerated, &t.CompletedAt, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// ListDueBefore returns pending tasks due before the cutoff (today's tasks
// plus everything overdue), soonest first.
func (r *TaskRepository) ListDueBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Task, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, lead_id, COALESCE(assigned_to, 0) as assigned_to, title, type, priority,
             due_at, status, auto_generated, completed_at, created_at
         FROM tasks WHERE status='pendiente' AND due_at <= $1 ORDER BY due_at ASC LIMIT $2`,
		cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		var t models.Task
		err := rows.Scan(&t.ID, &t.LeadID, &t.AssignedTo, &t.Title, &t.Type, &t.Priority,
			&t.DueAt, &t.Status, &t.AutoGenerated, &t.CompletedAt, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Complete(ctx context.Context, id int, completedAt time.Time) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE tasks SET status='completada', completed_at=$1 WHERE id=$2`,
		completedAt, id)
	return err
}
