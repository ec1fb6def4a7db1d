package models

import "time"

// Appointment statuses
const (
	AppointmentProgramada = "programada"
	AppointmentConfirmada = "confirmada"
	AppointmentCompletada = "completada"
	AppointmentCancelada  = "cancelada"
	AppointmentNoShow     = "no_show"
)

// Appointment outcomes (resolution of a kept appointment)
const (
	AppointmentOutcomeVendido     = "vendido"
	AppointmentOutcomePerdido     = "perdido"
	AppointmentOutcomeSeguimiento = "seguimiento"
	AppointmentOutcomeNoShow      = "no_show"
)

var AppointmentTypes = []string{"test_drive", "credit_approval", "delivery", "trade_in", "consultation"}

type Appointment struct {
	ID              int       `json:"id"`
	LeadID          int       `json:"lead_id"`
	CreatedBy       int       `json:"created_by,omitempty"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateAppointmentRequest represents the request body for scheduling
type CreateAppointmentRequest struct {
	LeadID          int       `json:"lead_id" validate:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,gte=15,lte=480"`
	Type            string    `json:"type" validate:"required,oneof=test_drive credit_approval delivery trade_in consultation"`
	Notes           string    `json:"notes"`
}

// UpdateAppointmentRequest reschedules or annotates an appointment
type UpdateAppointmentRequest struct {
	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	Status          *string    `json:"status"`
	Notes           *string    `json:"notes"`
}

// AppointmentOutcomeRequest resolves an appointment into a terminal state
// and optionally cascades into the lead.
type AppointmentOutcomeRequest struct {
	Outcome    string   `json:"outcome" validate:"required,oneof=vendido perdido seguimiento no_show"`
	Notes      string   `json:"notes"`
	DealAmount *float64 `json:"deal_amount"` // required for vendido
	Commission *float64 `json:"commission"`
	LostReason string   `json:"lost_reason"` // required for perdido
}

// AppointmentOutcomeResponse reports the full cascade result
type AppointmentOutcomeResponse struct {
	Appointment *Appointment `json:"appointment"`
	Lead        *Lead        `json:"lead,omitempty"`
	Task        *Task        `json:"task,omitempty"`
}
