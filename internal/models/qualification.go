package models

import "time"

// Qualification sub-records collected to assess credit eligibility.
// Each is a one-to-many child of a lead.

type Employment struct {
	ID            int       `json:"id"`
	LeadID        int       `json:"lead_id"`
	Employer      string    `json:"employer"`
	Position      string    `json:"position"`
	MonthlyIncome *float64  `json:"monthly_income,omitempty"`
	YearsEmployed *float64  `json:"years_employed,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type BankAccount struct {
	ID           int       `json:"id"`
	LeadID       int       `json:"lead_id"`
	BankName     string    `json:"bank_name"`
	AccountType  string    `json:"account_type"`
	HasDebitCard bool      `json:"has_debit_card"`
	CreatedAt    time.Time `json:"created_at"`
}

type LegalDocument struct {
	ID           int       `json:"id"`
	LeadID       int       `json:"lead_id"`
	DocumentType string    `json:"document_type"`
	Available    bool      `json:"available"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Cosigner struct {
	ID           int       `json:"id"`
	LeadID       int       `json:"lead_id"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

type VehicleInterestRecord struct {
	ID          int       `json:"id"`
	LeadID      int       `json:"lead_id"`
	VehicleID   *int      `json:"vehicle_id,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Qualification bundles all sub-records for a lead
type Qualification struct {
	Employments      []*Employment            `json:"employments"`
	BankAccounts     []*BankAccount           `json:"bank_accounts"`
	LegalDocuments   []*LegalDocument         `json:"legal_documents"`
	Cosigners        []*Cosigner              `json:"cosigners"`
	VehicleInterests []*VehicleInterestRecord `json:"vehicle_interests"`
}

// SaveQualificationRequest replaces a lead's qualification data wholesale.
// The qualification dialog always submits the full form.
type SaveQualificationRequest struct {
	Employments      []*Employment            `json:"employments"`
	BankAccounts     []*BankAccount           `json:"bank_accounts"`
	LegalDocuments   []*LegalDocument         `json:"legal_documents"`
	Cosigners        []*Cosigner              `json:"cosigners"`
	VehicleInterests []*VehicleInterestRecord `json:"vehicle_interests"`
}
