package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationSupportsDays(t *testing.T) {
	d, err := ParseDuration("7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)

	d, err = ParseDuration("30m")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, d)

	_, err = ParseDuration("xd")
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "3天", FormatDuration(72*time.Hour))
	assert.Equal(t, "2小时", FormatDuration(2*time.Hour))
	assert.Equal(t, "45分钟", FormatDuration(45*time.Minute))
}
