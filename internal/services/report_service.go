package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crm-backend/internal/apperrors"
	"crm-backend/internal/cache"
	"crm-backend/internal/models"
	"crm-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// ReportStore is the aggregate-query surface this service consumes
type ReportStore interface {
	Totals(ctx context.Context, since time.Time) (*models.ReportTotals, error)
	CountBySource(ctx context.Context, since time.Time) ([]*models.CountBucket, error)
	CountByStatus(ctx context.Context, since time.Time) ([]*models.CountBucket, error)
	CountLostReasons(ctx context.Context, since time.Time) ([]*models.CountBucket, error)
	CountAppointmentStatuses(ctx context.Context, since time.Time) ([]*models.CountBucket, error)
	CountAppointmentTypes(ctx context.Context, since time.Time) ([]*models.CountBucket, error)
	MonthlyClosed(ctx context.Context, since time.Time) ([]*models.MonthBucket, error)
}

type ReportService struct {
	store ReportStore
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

// rangeStart maps a report window onto its starting instant
func rangeStart(rng string, now time.Time) time.Time {
	switch rng {
	case "7d":
		return now.AddDate(0, 0, -7)
	case "90d":
		return now.AddDate(0, 0, -90)
	case "1y":
		return now.AddDate(-1, 0, 0)
	default: // 30d
		return now.AddDate(0, 0, -30)
	}
}

// Summary builds the dashboard report for one window. Lead aggregates
// are cached for a few minutes; the appointment panel is recomputed
// from live rows on every call and merged in after the cache.
func (s *ReportService) Summary(ctx context.Context, rng string) (*models.ReportSummary, error) {
	if rng == "" {
		rng = "30d"
	}
	if !models.IsValidReportRange(rng) {
		return nil, fmt.Errorf("unknown report range %q: %w", rng, apperrors.ErrValidation)
	}

	now := timeutil.Now()
	since := rangeStart(rng, now)

	summary, err := s.cachedLeadAggregates(ctx, rng, since, now)
	if err != nil {
		return nil, err
	}

	appointments, err := s.store.CountAppointmentStatuses(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("aggregating appointments: %w", err)
	}
	summary.Appointments = appointments

	byType, err := s.store.CountAppointmentTypes(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("aggregating appointment types: %w", err)
	}
	summary.AppointmentTypes = byType

	return summary, nil
}

func (s *ReportService) cachedLeadAggregates(ctx context.Context, rng string, since, now time.Time) (*models.ReportSummary, error) {
	if data, ok := cache.GetCachedReport(ctx, rng); ok {
		var cached models.ReportSummary
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	totals, err := s.store.Totals(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("aggregating totals: %w", err)
	}
	bySource, err := s.store.CountBySource(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("aggregating sources: %w", err)
	}
	byStatus, err := s.store.CountByStatus(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("aggregating statuses: %w", err)
	}
	lostReasons, err := s.store.CountLostReasons(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("aggregating lost reasons: %w", err)
	}
	monthly, err := s.store.MonthlyClosed(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("aggregating monthly series: %w", err)
	}

	summary := &models.ReportSummary{
		Range:           rng,
		Totals:          *totals,
		BySource:        bySource,
		ByStatus:        normalizeStatusBuckets(byStatus),
		LostReasons:     lostReasons,
		Monthly:         monthly,
		GeneratedAtUnix: now.Unix(),
	}

	if data, err := json.Marshal(summary); err == nil {
		cache.CacheReport(ctx, rng, data)
	}
	return summary, nil
}

// normalizeStatusBuckets folds legacy English status rows into their
// canonical Spanish buckets so the chart shows at most eight slices
func normalizeStatusBuckets(raw []*models.CountBucket) []*models.CountBucket {
	counts := make(map[string]int)
	order := []string{}
	for _, b := range raw {
		key := models.NormalizeStatus(b.Key)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key] += b.Count
	}
	out := make([]*models.CountBucket, 0, len(order))
	for _, key := range order {
		out = append(out, &models.CountBucket{Key: key, Count: counts[key]})
	}
	return out
}

// ExportPDF renders the summary as a one-page PDF for printing
func (s *ReportService) ExportPDF(ctx context.Context, rng string) ([]byte, error) {
	summary, err := s.Summary(ctx, rng)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Reporte de Ventas")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Periodo: %s   Generado: %s", summary.Range,
		time.Unix(summary.GeneratedAtUnix, 0).In(timeutil.MX).Format(timeutil.DateTimeLayout)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Totales")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Leads: %d   Cerrados: %d   Perdidos: %d   Conversion: %.1f%%",
		summary.Totals.Leads, summary.Totals.Closed, summary.Totals.Lost, summary.Totals.ConversionRate*100))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Ingresos: $%.2f   Comisiones: $%.2f",
		summary.Totals.Revenue, summary.Totals.Commission))
	pdf.Ln(10)

	writeBucketSection(pdf, "Leads por fuente", summary.BySource)
	writeBucketSection(pdf, "Leads por estado", summary.ByStatus)
	writeBucketSection(pdf, "Motivos de perdida", summary.LostReasons)
	writeBucketSection(pdf, "Citas por estado", summary.Appointments)
	writeBucketSection(pdf, "Citas por tipo", summary.AppointmentTypes)

	if len(summary.Monthly) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Cierres por mes")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		for _, m := range summary.Monthly {
			pdf.Cell(0, 6, fmt.Sprintf("%s: %d cierres, $%.2f", m.Month, m.Closed, m.Revenue))
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writeBucketSection(pdf *gofpdf.Fpdf, title string, buckets []*models.CountBucket) {
	if len(buckets) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, b := range buckets {
		pdf.Cell(0, 6, fmt.Sprintf("%s: %d", b.Key, b.Count))
		pdf.Ln(6)
	}
	pdf.Ln(4)
}
