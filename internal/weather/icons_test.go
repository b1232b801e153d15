package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapIcon_KnownCodes(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"01d", "sun.max.fill"},
		{"01n", "moon.stars.fill"},
		{"02d", "cloud.sun.fill"},
		{"02n", "cloud.moon.fill"},
		{"03d", "cloud.fill"},
		{"03n", "cloud.fill"},
		{"04d", "smoke.fill"},
		{"04n", "smoke.fill"},
		{"09d", "cloud.drizzle.fill"},
		{"09n", "cloud.drizzle.fill"},
		{"10d", "cloud.sun.rain.fill"},
		{"10n", "cloud.moon.rain.fill"},
		{"11d", "cloud.bolt.fill"},
		{"11n", "cloud.bolt.fill"},
		{"13d", "snowflake"},
		{"13n", "snowflake"},
		{"50d", "cloud.fog.fill"},
		{"50n", "cloud.fog.fill"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, MapIcon(tt.code))
		})
	}
}

func TestMapIcon_UnknownCodesFallBack(t *testing.T) {
	for _, code := range []string{"", "unknown", "99x", "01D", "sun.max.fill"} {
		assert.Equal(t, IconFallback, MapIcon(code), "code %q", code)
	}
}

func TestMapIcon_Idempotent(t *testing.T) {
	assert.Equal(t, MapIcon("10d"), MapIcon("10d"))
	assert.Equal(t, MapIcon("nope"), MapIcon("nope"))
}
