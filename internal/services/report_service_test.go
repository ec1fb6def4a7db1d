package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crm-backend/internal/models"
	"crm-backend/internal/timeutil"
)

func TestRangeStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, timeutil.MX)

	assert.Equal(t, time.Date(2025, 6, 8, 12, 0, 0, 0, timeutil.MX), rangeStart("7d", now))
	assert.Equal(t, time.Date(2025, 5, 16, 12, 0, 0, 0, timeutil.MX), rangeStart("30d", now))
	assert.Equal(t, time.Date(2025, 3, 17, 12, 0, 0, 0, timeutil.MX), rangeStart("90d", now))
	assert.Equal(t, time.Date(2024, 6, 15, 12, 0, 0, 0, timeutil.MX), rangeStart("1y", now))
}

func TestNormalizeStatusBuckets(t *testing.T) {
	raw := []*models.CountBucket{
		{Key: "nuevo", Count: 5},
		{Key: "new", Count: 3},
		{Key: "closed", Count: 2},
		{Key: "won", Count: 1},
		{Key: "cerrado", Count: 4},
	}

	out := normalizeStatusBuckets(raw)

	assert.Equal(t, []*models.CountBucket{
		{Key: "nuevo", Count: 8},
		{Key: "cerrado", Count: 7},
	}, out)
}

func TestIsValidReportRange(t *testing.T) {
	for _, r := range models.ReportRanges {
		assert.True(t, models.IsValidReportRange(r), r)
	}
	assert.False(t, models.IsValidReportRange("14d"))
	assert.False(t, models.IsValidReportRange(""))
}
