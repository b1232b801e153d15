package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestLocalTime_ZeroOffsetIsUTC(t *testing.T) {
	clock := fixedClock(time.Date(2024, 12, 3, 14, 30, 0, 0, time.UTC))
	assert.Equal(t, "02:30 PM", LocalTime(clock, 0))
}

func TestLocalTime_PositiveOffsetShiftsForward(t *testing.T) {
	clock := fixedClock(time.Date(2024, 12, 3, 14, 30, 0, 0, time.UTC))
	assert.Equal(t, "03:30 PM", LocalTime(clock, 3600))
}

func TestLocalTime_NegativeOffsetShiftsBack(t *testing.T) {
	// Ottawa in winter: UTC-5.
	clock := fixedClock(time.Date(2024, 12, 3, 14, 30, 0, 0, time.UTC))
	assert.Equal(t, "09:30 AM", LocalTime(clock, -18000))
}

func TestLocalTime_CrossesMidnight(t *testing.T) {
	clock := fixedClock(time.Date(2024, 12, 3, 23, 45, 0, 0, time.UTC))
	assert.Equal(t, "12:45 AM", LocalTime(clock, 3600))
}

func TestLocalTime_NilClockUsesWallClock(t *testing.T) {
	// Only shape can be asserted without pinning the clock.
	got := LocalTime(nil, 0)
	assert.Regexp(t, `^\d{2}:\d{2} (AM|PM)$`, got)
}
