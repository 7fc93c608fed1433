package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// localEndOf is the expected end bound for an instant: the last millisecond
// of its local calendar day.
func localEndOf(instant time.Time) time.Time {
	y, m, d := instant.In(time.Local).Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.Local)
}

func TestOptionalRangeEndUsesLocalDay(t *testing.T) {
	// -05:00 differs from most CI zones, so a bound kept in the input offset
	// would land on a different instant.
	raw := "2024-03-15T23:00:00-05:00"
	instant, err := time.Parse(time.RFC3339, raw)
	require.NoError(t, err)

	start, end, err := OptionalRange(nil, &raw)
	require.NoError(t, err)
	assert.Nil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, time.Local, end.Location())
	assert.True(t, localEndOf(instant).Equal(*end), "got %s", end)
	assert.False(t, end.Before(instant))
}

func TestOptionalRangeDateOnly(t *testing.T) {
	start, end, err := OptionalRange(strPtr("2024-03-01"), strPtr("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), *start)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, int(999*time.Millisecond), time.Local), *end)

	_, _, err = OptionalRange(strPtr("2024-03-02"), strPtr("2024-03-01"))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestDateRangeRFC3339EndIsLocal(t *testing.T) {
	raw := "2024-03-15T23:00:00Z"
	instant, err := time.Parse(time.RFC3339, raw)
	require.NoError(t, err)

	_, end, err := dateRange(strPtr("2024-03-01"), &raw, fixedNow, defaultReportDays)
	require.NoError(t, err)
	assert.Equal(t, time.Local, end.Location())
	assert.True(t, localEndOf(instant).Equal(end), "got %s", end)
}

func TestDateRangeDefaults(t *testing.T) {
	start, end, err := dateRange(nil, nil, fixedNow, defaultReportDays)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.AddDate(0, 0, -defaultReportDays), start)
	assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, int(999*time.Millisecond), time.Local), end)
}
