package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportPeriodDefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2026, 3, 18, 14, 30, 0, 0, time.UTC)

	start, end, err := ParseReportPeriod("", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC), end)
}

func TestParseReportPeriodIncludesWholeEndDay(t *testing.T) {
	now := time.Date(2026, 3, 18, 14, 30, 0, 0, time.UTC)

	start, end, err := ParseReportPeriod("2026-01-01", "2026-02-15", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 2, 15, 23, 59, 59, 0, time.UTC), end)
}

func TestParseReportPeriodRejectsBadDates(t *testing.T) {
	now := time.Now().UTC()

	_, _, err := ParseReportPeriod("not-a-date", "", now)
	assertHTTPStatus(t, err, 422)

	_, _, err = ParseReportPeriod("", "15/02/2026", now)
	assertHTTPStatus(t, err, 422)
}

func TestUtilizationRate(t *testing.T) {
	assert.Equal(t, 0.0, utilizationRate(3, 0), "empty fleet divides to zero")
	assert.Equal(t, 50.0, utilizationRate(5, 10))
	assert.Equal(t, 100.0, utilizationRate(10, 10))
}
