package repositories

import (
	"context"
	"time"

	"crm-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository runs the aggregate queries behind the reports page.
// Status filters match both canonical Spanish statuses and the English
// strings the old system wrote; finer normalization happens in the
// service layer.
type ReportRepository struct {
	DB *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{DB: db}
}

// Totals returns the headline lead figures since the given instant
func (r *ReportRepository) Totals(ctx context.Context, since time.Time) (*models.ReportTotals, error) {
	t := &models.ReportTotals{}
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*),
                COUNT(*) FILTER (WHERE status IN ('cerrado', 'closed', 'won')),
                COUNT(*) FILTER (WHERE status IN ('perdido', 'lost', 'no_interesado', 'not_interested')),
                COALESCE(SUM(deal_amount) FILTER (WHERE status IN ('cerrado', 'closed', 'won')), 0),
                COALESCE(SUM(commission) FILTER (WHERE status IN ('cerrado', 'closed', 'won')), 0)
         FROM leads WHERE created_at >= $1`, since).
		Scan(&t.Leads, &t.Closed, &t.Lost, &t.Revenue, &t.Commission)
	if err != nil {
		return nil, err
	}
	if t.Leads > 0 {
		t.ConversionRate = float64(t.Closed) / float64(t.Leads)
	}
	return t, nil
}

// CountBySource groups leads by acquisition source
func (r *ReportRepository) CountBySource(ctx context.Context, since time.Time) ([]*models.CountBucket, error) {
	return r.countBuckets(ctx,
		`SELECT source, COUNT(*) FROM leads
         WHERE created_at >= $1 GROUP BY source ORDER BY COUNT(*) DESC`, since)
}

// CountByStatus groups leads by raw stored status
func (r *ReportRepository) CountByStatus(ctx context.Context, since time.Time) ([]*models.CountBucket, error) {
	return r.countBuckets(ctx,
		`SELECT status, COUNT(*) FROM leads
         WHERE created_at >= $1 GROUP BY status ORDER BY COUNT(*) DESC`, since)
}

// CountLostReasons groups lost leads by reason
func (r *ReportRepository) CountLostReasons(ctx context.Context, since time.Time) ([]*models.CountBucket, error) {
	return r.countBuckets(ctx,
		`SELECT lost_reason, COUNT(*) FROM leads
         WHERE created_at >= $1 AND status IN ('perdido', 'lost')
           AND lost_reason IS NOT NULL AND lost_reason <> ''
         GROUP BY lost_reason ORDER BY COUNT(*) DESC`, since)
}

// CountAppointmentStatuses groups appointments scheduled in the window
// by their current status
func (r *ReportRepository) CountAppointmentStatuses(ctx context.Context, since time.Time) ([]*models.CountBucket, error) {
	return r.countBuckets(ctx,
		`SELECT status, COUNT(*) FROM appointments
         WHERE scheduled_at >= $1 GROUP BY status ORDER BY COUNT(*) DESC`, since)
}

// CountAppointmentTypes groups appointments scheduled in the window by type
func (r *ReportRepository) CountAppointmentTypes(ctx context.Context, since time.Time) ([]*models.CountBucket, error) {
	return r.countBuckets(ctx,
		`SELECT type, COUNT(*) FROM appointments
         WHERE scheduled_at >= $1 GROUP BY type ORDER BY COUNT(*) DESC`, since)
}

func (r *ReportRepository) countBuckets(ctx context.Context, query string, since time.Time) ([]*models.CountBucket, error) {
	rows, err := r.DB.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := []*models.CountBucket{}
	for rows.Next() {
		b := &models.CountBucket{}
		if err := rows.Scan(&b.Key, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// MonthlyClosed returns the closed-deal series per calendar month
func (r *ReportRepository) MonthlyClosed(ctx context.Context, since time.Time) ([]*models.MonthBucket, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT to_char(deal_closed_at, 'YYYY-MM') AS month,
                COUNT(*), COALESCE(SUM(deal_amount), 0)
         FROM leads
         WHERE status IN ('cerrado', 'closed', 'won') AND deal_closed_at >= $1
         GROUP BY month ORDER BY month`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := []*models.MonthBucket{}
	for rows.Next() {
		b := &models.MonthBucket{}
		if err := rows.Scan(&b.Month, &b.Closed, &b.Revenue); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
