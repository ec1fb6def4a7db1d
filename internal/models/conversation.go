package models

import "time"

type Conversation struct {
	ID           int       `json:"id"`
	PhoneNumber  string    `json:"phone_number"` // empty until captured
	Platform     string    `json:"platform"`     // facebook, whatsapp
	Status       string    `json:"status"`       // active, closed
	UrgencyLevel string    `json:"urgency_level"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConversationContext is the derived summary row the chat automation keeps
// per conversation. It may be absent for very short conversations.
type ConversationContext struct {
	ID              int       `json:"id"`
	ConversationID  int       `json:"conversation_id"`
	VehicleInterest string    `json:"vehicle_interest"`
	BudgetRange     string    `json:"budget_range"`
	CreditSituation string    `json:"credit_situation"`
	Concerns        string    `json:"concerns"`
	Timeline        string    `json:"timeline"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Message struct {
	ID             int       `json:"id"`
	ConversationID int       `json:"conversation_id"`
	Role           string    `json:"role"` // user, assistant
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationDetail bundles a conversation with its context and messages
type ConversationDetail struct {
	Conversation *Conversation        `json:"conversation"`
	Context      *ConversationContext `json:"context,omitempty"`
	Messages     []*Message           `json:"messages"`
}

// ConvertConversationRequest promotes a conversation into a lead.
// Phone is required only when the conversation has no captured number.
type ConvertConversationRequest struct {
	ConversationID int    `json:"conversation_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Phone          string `json:"phone"`
	AssignedTo     int    `json:"assigned_to"`
}
