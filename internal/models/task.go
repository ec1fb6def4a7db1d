package models

import "time"

type Task struct {
	ID            int        `json:"id"`
	LeadID        int        `json:"lead_id"`
	AssignedTo    int        `json:"assigned_to,omitempty"`
	Title         string     `json:"title"`
	Type          string     `json:"type"`     // llamar, seguimiento, enviar_info
	Priority      string     `json:"priority"` // baja, media, alta, urgente
	DueAt         time.Time  `json:"due_at"`
	Status        string     `json:"status"` // pendiente, completada
	AutoGenerated bool       `json:"auto_generated"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	LeadID     int       `json:"lead_id" validate:"required"`
	Title      string    `json:"title" validate:"required"`
	Type       string    `json:"type" validate:"required,oneof=llamar seguimiento enviar_info"`
	Priority   string    `json:"priority" validate:"omitempty,oneof=baja media alta urgente"`
	DueAt      time.Time `json:"due_at" validate:"required"`
	AssignedTo int       `json:"assigned_to"`
}

// UpdateTaskRequest only supports completion; tasks are otherwise immutable
type UpdateTaskRequest struct {
	Status string `json:"status" validate:"required,oneof=completada"`
}
