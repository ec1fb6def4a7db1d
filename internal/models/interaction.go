package models

import "time"

// Interaction types
const (
	InteractionLlamada      = "llamada"
	InteractionNota         = "nota"
	InteractionCambioEstado = "cambio_estado"
)

// Call outcomes
const (
	OutcomeContestada       = "contestada"
	OutcomeBuzon            = "buzon"
	OutcomeNoContesta       = "no_contesta"
	OutcomeNumeroEquivocado = "numero_equivocado"
)

// Next actions after an answered call
const (
	NextActionCita         = "cita"
	NextActionSeguimiento  = "seguimiento"
	NextActionEnviarInfo   = "enviar_info"
	NextActionCalificado   = "calificado"
	NextActionNoInteresado = "no_interesado"
)

// Interaction is an append-only log entry attached to a lead. Rows are
// never updated or deleted.
type Interaction struct {
	ID              int                    `json:"id"`
	LeadID          int                    `json:"lead_id"`
	UserID          int                    `json:"user_id,omitempty"`
	Type            string                 `json:"type"`
	Outcome         string                 `json:"outcome,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	DurationSeconds *int                   `json:"duration_seconds,omitempty"` // nil = not recorded
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// LogCallRequest is the single server-side entry point for the call
// logging workflow: one interaction row plus the side effect selected by
// next_action.
type LogCallRequest struct {
	LeadID          int    `json:"lead_id" validate:"required"`
	Outcome         string `json:"outcome" validate:"required,oneof=contestada buzon no_contesta numero_equivocado"`
	NextAction      string `json:"next_action" validate:"omitempty,oneof=cita seguimiento enviar_info calificado no_interesado"`
	Notes           string `json:"notes"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0,lte=59"`

	// Follow-up scheduling, used when next_action = seguimiento
	FollowUpWhen string `json:"follow_up_when" validate:"omitempty,oneof=manana dos_dias tres_dias custom"`
	FollowUpDate string `json:"follow_up_date"` // 2006-01-02, custom only
	FollowUpTime string `json:"follow_up_time"` // 15:04, custom only
}

// LogCallResponse reports the interaction plus what the side effect did
type LogCallResponse struct {
	Interaction *Interaction `json:"interaction"`
	Task        *Task        `json:"task,omitempty"`
	LeadStatus  string       `json:"lead_status,omitempty"`
}
