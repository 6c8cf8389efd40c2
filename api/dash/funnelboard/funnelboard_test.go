package funnelboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseRate(t *testing.T) {
	assert.Equal(t, 0.0, closeRate(0, 0))
	assert.Equal(t, 0.0, closeRate(0, 10))
	assert.Equal(t, 0.5, closeRate(5, 10))
	assert.Equal(t, 1.0, closeRate(10, 10))
}

func TestParseRange(t *testing.T) {
	lo, hi := parseRange("2026-01-01", "2026-01-31")
	require.NotNil(t, lo)
	require.NotNil(t, hi)
	assert.Equal(t, 1, lo.Day())
	// Upper bound is exclusive, one day past the requested end.
	assert.Equal(t, 1, hi.Day())
	assert.Equal(t, 2, int(hi.Month()))

	lo, hi = parseRange("", "garbage")
	assert.Nil(t, lo)
	assert.Nil(t, hi)
}
