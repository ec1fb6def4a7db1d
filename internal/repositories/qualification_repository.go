package repositories

import (
	"context"

	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type QualificationRepository struct {
	DB *pgxpool.Pool
}

func NewQualificationRepository(db *pgxpool.Pool) *QualificationRepository {
	return &QualificationRepository{DB: db}
}

// GetForLead loads every qualification sub-record for a lead
func (r *QualificationRepository) GetForLead(ctx context.Context, leadID int) (*models.Qualification, error) {
	q := &models.Qualification{
		Employments:      []*models.Employment{},
		BankAccounts:     []*models.BankAccount{},
		LegalDocuments:   []*models.LegalDocument{},
		Cosigners:        []*models.Cosigner{},
		VehicleInterests: []*models.VehicleInterestRecord{},
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, lead_id, COALESCE(employer, '') as employer, COALESCE(position, '') as position,
             monthly_income, years_employed, created_at
         FROM lead_employments WHERE lead_id=$1 ORDER BY id`, leadID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var e models.Employment
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Employer, &e.Position, &e.MonthlyIncome, &e.YearsEmployed, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		q.Employments = append(q.Employments, &e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx,
		`SELECT id, lead_id, COALESCE(bank_name, '') as bank_name, COALESCE(account_type, '') as account_type,
             has_debit_card, created_at
         FROM lead_bank_accounts WHERE lead_id=$1 ORDER BY id`, leadID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var b models.BankAccount
		if err := rows.Scan(&b.ID, &b.LeadID, &b.BankName, &b.AccountType, &b.HasDebitCard, &b.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		q.BankAccounts = append(q.BankAccounts, &b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx,
		`SELECT id, lead_id, document_type, available, COALESCE(notes, '') as notes, created_at
         FROM lead_legal_documents WHERE lead_id=$1 ORDER BY id`, leadID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var d models.LegalDocument
		if err := rows.Scan(&d.ID, &d.LeadID, &d.DocumentType, &d.Available, &d.Notes, &d.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		q.LegalDocuments = append(q.LegalDocuments, &d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx,
		`SELECT id, lead_id, COALESCE(name, '') as name, COALESCE(relationship, '') as relationship,
             COALESCE(phone, '') as phone, created_at
         FROM lead_cosigners WHERE lead_id=$1 ORDER BY id`, leadID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var c models.Cosigner
		if err := rows.Scan(&c.ID, &c.LeadID, &c.Name, &c.Relationship, &c.Phone, &c.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		q.Cosigners = append(q.Cosigners, &c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx,
		`SELECT id, lead_id, vehicle_id, COALESCE(description, '') as description, created_at
         FROM lead_vehicle_interests WHERE lead_id=$1 ORDER BY id`, leadID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var v models.VehicleInterestRecord
		if err := rows.Scan(&v.ID, &v.LeadID, &v.VehicleID, &v.Description, &v.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		q.VehicleInterests = append(q.VehicleInterests, &v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return q, nil
}

// ReplaceForLead swaps a lead's qualification data wholesale inside one
// transaction, because the qualification dialog always submits the full
// form.
func (r *QualificationRepository) ReplaceForLead(ctx context.Context, leadID int, q *models.Qualification) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{
		"lead_employments", "lead_bank_accounts", "lead_legal_documents",
		"lead_cosigners", "lead_vehicle_interests",
	} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE lead_id=$1`, leadID); err != nil {
			return err
		}
	}

	for _, e := range q.Employments {
		_, err := tx.Exec(ctx,
			`INSERT INTO lead_employments(lead_id, employer, position, monthly_income, years_employed)
             VALUES($1, $2, $3, $4, $5)`,
			leadID, e.Employer, e.Position, e.MonthlyIncome, e.YearsEmployed)
		if err != nil {
			return err
		}
	}
	for _, b := range q.BankAccounts {
		_, err := tx.Exec(ctx,
			`INSERT INTO lead_bank_accounts(lead_id, bank_name, account_type, has_debit_card)
             VALUES($1, $2, $3, $4)`,
			leadID, b.BankName, b.AccountType, b.HasDebitCard)
		if err != nil {
			return err
		}
	}
	for _, d := range q.LegalDocuments {
		_, err := tx.Exec(ctx,
			`INSERT INTO lead_legal_documents(lead_id, document_type, available, notes)
             VALUES($1, $2, $3, $4)`,
			leadID, d.DocumentType, d.Available, d.Notes)
		if err != nil {
			return err
		}
	}
	for _, c := range q.Cosigners {
		_, err := tx.Exec(ctx,
			`INSERT INTO lead_cosigners(lead_id, name, relationship, phone)
             VALUES($1, $2, $3, $4)`,
			leadID, c.Name, c.Relationship, c.Phone)
		if err != nil {
			return err
		}
	}
	for _, v := range q.VehicleInterests {
		_, err := tx.Exec(ctx,
			`INSERT INTO lead_vehicle_interests(lead_id, vehicle_id, description)
             VALUES($1, $2, $3)`,
			leadID, v.VehicleID, v.Description)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
