package repositories

import (
	"context"
	"errors"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	DB *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, name, phone, COALESCE(email, '') as email, source, status, urgency_level,
    COALESCE(vehicle_interest, '') as vehicle_interest, COALESCE(budget_range, '') as budget_range,
    COALESCE(credit_type, '') as credit_type, down_payment, COALESCE(trade_in_details, '') as trade_in_details,
    COALESCE(notes, '') as notes, COALESCE(assigned_to, 0) as assigned_to, conversation_id,
    deal_amount, commission, deal_closed_at, COALESCE(lost_reason, '') as lost_reason, created_at, updated_at`

func scanLead(row pgx.Row) (*models.Lead, error) {
	var lead models.Lead
	err := row.Scan(&lead.ID, &lead.Name, &lead.Phone, &lead.Email, &lead.Source, &lead.Status,
		&lead.UrgencyLevel, &lead.VehicleInterest, &lead.BudgetRange, &lead.CreditType,
		&lead.DownPayment, &lead.TradeInDetails, &lead.Notes, &lead.AssignedTo,
		&lead.ConversationID, &lead.DealAmount, &lead.Commission, &lead.DealClosedAt,
		&lead.LostReason, &lead.CreatedAt, &lead.UpdatedAt)
	return &lead, err
}

// Create inserts a lead. A unique violation on phone is reported as a
// DuplicateLeadError carrying the existing lead's id and assignee.
func (r *LeadRepository) Create(ctx context.Context, l *models.Lead) error {
	var assignedTo interface{}
	if l.AssignedTo != 0 {
		assignedTo = l.AssignedTo
	}
	err := r.DB.QueryRow(ctx,
		`INSERT INTO leads(name, phone, email, source, status, urgency_level, vehicle_interest,
             budget_range, credit_type, down_payment, trade_in_details, notes, assigned_to, conversation_id)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
         RETURNING id, created_at, updated_at`,
		l.Name, l.Phone, l.Email, l.Source, l.Status, l.UrgencyLevel, l.VehicleInterest,
		l.BudgetRange, l.CreditType, l.DownPayment, l.TradeInDetails, l.Notes, assignedTo, l.ConversationID,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		existing, lookupErr := r.GetByPhone(ctx, l.Phone)
		if lookupErr == nil {
			return &apperrors.DuplicateLeadError{LeadID: existing.ID, AssignedTo: existing.AssignedTo}
		}
		return apperrors.ErrDuplicate
	}
	return err
}

func (r *LeadRepository) Get(ctx context.Context, id int) (*models.Lead, error) {
	return scanLead(r.DB.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id=$1`, id))
}

func (r *LeadRepository) GetByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	return scanLead(r.DB.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE phone=$1`, phone))
}

func (r *LeadRepository) List(ctx context.Context) ([]*models.Lead, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// SearchByName powers the appointment-creation combobox
func (r *LeadRepository) SearchByName(ctx context.Context, query string, limit int) ([]*models.Lead, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE name ILIKE '%' || $1 || '%' ORDER BY created_at DESC LIMIT $2`,
		query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// ListRecent returns leads created within the window, newest first
func (r *LeadRepository) ListRecent(ctx context.Context, limit int) ([]*models.Lead, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// Update writes the full mutable column set back
func (r *LeadRepository) Update(ctx context.Context, l *models.Lead) error {
	var assignedTo interface{}
	if l.AssignedTo != 0 {
		assignedTo = l.AssignedTo
	}
	var lostReason interface{}
	if l.LostReason != "" {
		lostReason = l.LostReason
	}
	_, err := r.DB.Exec(ctx,
		`UPDATE leads SET name=$1, email=$2, status=$3, urgency_level=$4, vehicle_interest=$5,
             budget_range=$6, credit_type=$7, down_payment=$8, trade_in_details=$9, notes=$10,
             assigned_to=$11, deal_amount=$12, commission=$13, deal_closed_at=$14, lost_reason=$15,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$16`,
		l.Name, l.Email, l.Status, l.UrgencyLevel, l.VehicleInterest, l.BudgetRange,
		l.CreditType, l.DownPayment, l.TradeInDetails, l.Notes, assignedTo,
		l.DealAmount, l.Commission, l.DealClosedAt, lostReason, l.ID)
	return err
}

