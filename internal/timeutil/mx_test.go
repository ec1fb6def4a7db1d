package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTomorrowAt(t *testing.T) {
	now := time.Date(2025, 3, 10, 22, 45, 0, 0, MX)
	got := TomorrowAt(now, 10)
	assert.Equal(t, time.Date(2025, 3, 11, 10, 0, 0, 0, MX), got)

	// Month boundary
	now = time.Date(2025, 3, 31, 8, 0, 0, 0, MX)
	got = TomorrowAt(now, 9)
	assert.Equal(t, time.Date(2025, 4, 1, 9, 0, 0, 0, MX), got)
}

func TestStartEndOfDay(t *testing.T) {
	ts := time.Date(2025, 3, 10, 15, 30, 45, 123, MX)

	start := StartOfDay(ts)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, MX), start)

	end := EndOfDay(ts)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, ts.Day(), end.Day())
}

func TestParseLocal(t *testing.T) {
	got, err := ParseLocal(DateLayout+" "+TimeLayout, "2025-03-20 16:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 20, 16, 30, 0, 0, MX), got)

	_, err = ParseLocal(DateLayout, "20/03/2025")
	assert.Error(t, err)
}
