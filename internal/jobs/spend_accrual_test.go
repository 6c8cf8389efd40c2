package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPreviousMonth(t *testing.T) {
	got := PreviousMonth(time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), got)

	// Year boundary.
	got = PreviousMonth(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestDefaultAccrualConfig(t *testing.T) {
	cfg := NewDefaultAccrualConfig()
	assert.NotEmpty(t, cfg.Schedule)
	assert.Equal(t, "America/Chicago", cfg.TimeZone)
}
