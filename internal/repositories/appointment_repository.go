package repositories

import (
	"context"
	"time"

	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AppointmentRepository struct {
	DB *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{DB: db}
}

const appointmentColumns = `id, lead_id, COALESCE(created_by, 0) as created_by, scheduled_at,
    duration_minutes, type, status, COALESCE(notes, '') as notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(&a.ID, &a.LeadID, &a.CreatedBy, &a.ScheduledAt, &a.DurationMinutes,
		&a.Type, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	var createdBy interface{}
	if a.CreatedBy != 0 {
		createdBy = a.CreatedBy
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO appointments(lead_id, created_by, scheduled_at, duration_minutes, type, status, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at, updated_at`,
		a.LeadID, createdBy, a.ScheduledAt, a.DurationMinutes, a.Type, a.Status, a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AppointmentRepository) Get(ctx context.Context, id int) (*models.Appointment, error) {
	return scanAppointment(r.DB.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id=$1`, id))
}

func (r *AppointmentRepository) List(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
         WHERE scheduled_at >= $1 AND scheduled_at < $2 ORDER BY scheduled_at ASC`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func (r *AppointmentRepository) ListByLead(ctx context.Context, leadID int) ([]*models.Appointment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE lead_id=$1 ORDER BY scheduled_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

// ListUpcoming returns confirmed/scheduled appointments starting within the
// window, used by the notification feed ("due within 2 hours").
func (r *AppointmentRepository) ListUpcoming(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
         WHERE status IN ('programada', 'confirmada') AND scheduled_at >= $1 AND scheduled_at <= $2
         ORDER BY scheduled_at ASC`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func (r *AppointmentRepository) Update(ctx context.Context, a *models.Appointment) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE appointments SET scheduled_at=$1, duration_minutes=$2, status=$3, notes=$4,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$5`,
		a.ScheduledAt, a.DurationMinutes, a.Status, a.Notes, a.ID)
	return err
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE appointments SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		status, id)
	return err
}
