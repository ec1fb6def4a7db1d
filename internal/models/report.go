package models

// ReportRanges are the accepted report windows
var ReportRanges = []string{"7d", "30d", "90d", "1y"}

// IsValidReportRange reports whether r is an accepted window
func IsValidReportRange(r string) bool {
	for _, v := range ReportRanges {
		if v == r {
			return true
		}
	}
	return false
}

// ReportTotals are the headline figures for a window
type ReportTotals struct {
	Leads          int     `json:"leads"`
	Closed         int     `json:"closed"`
	Lost           int     `json:"lost"`
	ConversionRate float64 `json:"conversion_rate"` // closed / leads, 0 when no leads
	Revenue        float64 `json:"revenue"`
	Commission     float64 `json:"commission"`
}

// CountBucket is one row in a grouped breakdown
type CountBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// MonthBucket is one point in the monthly closed-deals series
type MonthBucket struct {
	Month   string  `json:"month"` // 2006-01
	Closed  int     `json:"closed"`
	Revenue float64 `json:"revenue"`
}

// ReportSummary is the full dashboard report for one window. The
// appointment panel is always computed from live rows, never cached
// snapshots.
type ReportSummary struct {
	Range            string         `json:"range"`
	Totals           ReportTotals   `json:"totals"`
	BySource         []*CountBucket `json:"by_source"`
	ByStatus         []*CountBucket `json:"by_status"`
	LostReasons      []*CountBucket `json:"lost_reasons"`
	Monthly          []*MonthBucket `json:"monthly"`
	Appointments     []*CountBucket `json:"appointments"`
	AppointmentTypes []*CountBucket `json:"appointment_types"`
	GeneratedAtUnix  int64          `json:"generated_at"`
}
