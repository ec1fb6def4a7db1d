package models

// Notification is a feed item shown in the dashboard bell. Built on the
// fly from conversations, leads, appointments and tasks; never persisted.
type Notification struct {
	ID       string `json:"id"`   // e.g. "conversation-12"
	Type     string `json:"type"` // conversation, lead, appointment, task
	Title    string `json:"title"`
	Message  string `json:"message"`
	Time     string `json:"time"` // relative, e.g. "hace 5 min"
	Read     bool   `json:"read"` // always false as constructed
	LeadID   int    `json:"lead_id,omitempty"`
	Urgency  string `json:"urgency,omitempty"`
	LinkPath string `json:"link_path,omitempty"`
}
