package models

import (
	"log"
	"time"
)

// Lead statuses. Spanish names are canonical; English strings from the old
// system are normalized through legacyStatusMap before use.
const (
	StatusNuevo          = "nuevo"
	StatusContactado     = "contactado"
	StatusCalificado     = "calificado"
	StatusCitaProgramada = "cita_programada"
	StatusNegociacion    = "negociacion"
	StatusCerrado        = "cerrado"
	StatusPerdido        = "perdido"
	StatusNoInteresado   = "no_interesado"
)

// LeadStatuses is the full status enumeration
var LeadStatuses = []string{
	StatusNuevo,
	StatusContactado,
	StatusCalificado,
	StatusCitaProgramada,
	StatusNegociacion,
	StatusCerrado,
	StatusPerdido,
	StatusNoInteresado,
}

// PipelineStages are the six Kanban columns, in display order. Terminal
// statuses (perdido, no_interesado) render inside the cerrado column.
var PipelineStages = []string{
	StatusNuevo,
	StatusContactado,
	StatusCalificado,
	StatusCitaProgramada,
	StatusNegociacion,
	StatusCerrado,
}

// legacyStatusMap translates status strings written by the old system
var legacyStatusMap = map[string]string{
	"new":                   StatusNuevo,
	"contacted":             StatusContactado,
	"qualified":             StatusCalificado,
	"appointment_scheduled": StatusCitaProgramada,
	"scheduled":             StatusCitaProgramada,
	"negotiating":           StatusNegociacion,
	"negotiation":           StatusNegociacion,
	"closed":                StatusCerrado,
	"won":                   StatusCerrado,
	"lost":                  StatusPerdido,
	"not_interested":        StatusNoInteresado,
}

// LostReasons is the fixed enumeration for why a lead was lost
var LostReasons = []string{
	"precio",
	"financiamiento",
	"compro_en_otro_lado",
	"no_responde",
	"cambio_de_opinion",
	"otro",
}

// LeadSources
var LeadSources = []string{"facebook", "website", "phone", "referral", "walkin"}

// UrgencyLevels shared by leads and conversations
var UrgencyLevels = []string{"baja", "media", "alta", "urgente"}

type Lead struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email,omitempty"`
	Source          string     `json:"source"`
	Status          string     `json:"status"`
	UrgencyLevel    string     `json:"urgency_level"`
	VehicleInterest string     `json:"vehicle_interest,omitempty"`
	BudgetRange     string     `json:"budget_range,omitempty"`
	CreditType      string     `json:"credit_type,omitempty"`
	DownPayment     *float64   `json:"down_payment,omitempty"`
	TradeInDetails  string     `json:"trade_in_details,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	AssignedTo      int        `json:"assigned_to"`
	ConversationID  *int       `json:"conversation_id,omitempty"`
	DealAmount      *float64   `json:"deal_amount,omitempty"`
	Commission      *float64   `json:"commission,omitempty"`
	DealClosedAt    *time.Time `json:"deal_closed_at,omitempty"`
	LostReason      string     `json:"lost_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsValidStatus reports whether s is a canonical lead status
func IsValidStatus(s string) bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidLostReason reports whether r belongs to the fixed lost-reason set
func IsValidLostReason(r string) bool {
	for _, v := range LostReasons {
		if v == r {
			return true
		}
	}
	return false
}

// NormalizeStatus maps any stored status (canonical or legacy English) to a
// canonical Spanish status. Unknown strings fall back to "nuevo" with a
// warning so mis-bucketed legacy rows are visible in the logs.
func NormalizeStatus(s string) string {
	if IsValidStatus(s) {
		return s
	}
	if mapped, ok := legacyStatusMap[s]; ok {
		return mapped
	}
	log.Printf("[Pipeline] Unrecognized lead status %q, bucketing as %q", s, StatusNuevo)
	return StatusNuevo
}

// PipelineStage maps a raw lead status to its Kanban column. Terminal
// statuses collapse into the cerrado column so the board stays at six
// fixed columns.
func PipelineStage(status string) string {
	s := NormalizeStatus(status)
	switch s {
	case StatusPerdido, StatusNoInteresado:
		return StatusCerrado
	default:
		return s
	}
}

// PipelineBoard is the grouped Kanban projection of the canonical lead list
type PipelineBoard struct {
	Stages map[string][]*Lead `json:"stages"`
	Order  []string           `json:"order"`
	Total  int                `json:"total"`
}

// GroupByStage computes the board as a pure projection of the canonical
// lead list. Every lead lands in exactly one of the six columns; ordering
// within a column is the fetch order of the input.
func GroupByStage(leads []*Lead) *PipelineBoard {
	board := &PipelineBoard{
		Stages: make(map[string][]*Lead, len(PipelineStages)),
		Order:  PipelineStages,
	}
	for _, stage := range PipelineStages {
		board.Stages[stage] = []*Lead{}
	}
	for _, lead := range leads {
		stage := PipelineStage(lead.Status)
		board.Stages[stage] = append(board.Stages[stage], lead)
		board.Total++
	}
	return board
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	Name            string   `json:"name" validate:"required"`
	Phone           string   `json:"phone" validate:"required"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Source          string   `json:"source" validate:"required,oneof=facebook website phone referral walkin"`
	UrgencyLevel    string   `json:"urgency_level" validate:"omitempty,oneof=baja media alta urgente"`
	VehicleInterest string   `json:"vehicle_interest"`
	BudgetRange     string   `json:"budget_range"`
	CreditType      string   `json:"credit_type"`
	DownPayment     *float64 `json:"down_payment"`
	TradeInDetails  string   `json:"trade_in_details"`
	AssignedTo      int      `json:"assigned_to"`
}

// UpdateLeadRequest is a partial update; nil pointers leave fields untouched
type UpdateLeadRequest struct {
	Name            *string  `json:"name"`
	Email           *string  `json:"email"`
	Status          *string  `json:"status"`
	UrgencyLevel    *string  `json:"urgency_level"`
	VehicleInterest *string  `json:"vehicle_interest"`
	BudgetRange     *string  `json:"budget_range"`
	CreditType      *string  `json:"credit_type"`
	DownPayment     *float64 `json:"down_payment"`
	TradeInDetails  *string  `json:"trade_in_details"`
	Notes           *string  `json:"notes"`
	AssignedTo      *int     `json:"assigned_to"`
	DealAmount      *float64 `json:"deal_amount"`
	Commission      *float64 `json:"commission"`
	LostReason      *string  `json:"lost_reason"`
}

// MoveLeadRequest moves a lead to another pipeline stage (board drag-drop)
type MoveLeadRequest struct {
	Stage string `json:"stage" validate:"required"`
}

// DuplicateLeadResponse is the 409 payload when a phone number already exists
type DuplicateLeadResponse struct {
	Error      string `json:"error"`
	LeadID     int    `json:"lead_id"`
	AssignedTo int    `json:"assigned_to"`
}
