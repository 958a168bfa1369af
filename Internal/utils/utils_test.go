package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5}, 5},
		{"odd count", []float64{3, 1, 2}, 2},
		{"even count", []float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.values))
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.2345, 2))
	assert.Equal(t, 1.24, Round(1.235, 2))
	assert.Equal(t, -1.23, Round(-1.2349, 2))
	assert.Equal(t, 0.9731, Round(0.97305, 4))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
	assert.Equal(t, 0.0, Clamp(-2, 0, 1))
	assert.Equal(t, 1.0, Clamp(3, 0, 1))
}

func TestInExecutionWindow(t *testing.T) {
	day := func(hour, minute int) time.Time {
		return time.Date(2025, 6, 2, hour, minute, 0, 0, Chicago())
	}

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"exact target", day(8, 40), true},
		{"lower edge", day(8, 38), true},
		{"upper edge", day(8, 42), true},
		{"just before", day(8, 37), false},
		{"just after", day(8, 43), false},
		{"wrong hour", day(9, 40), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InExecutionWindow(tt.t, 8, 40, 2))
		})
	}
}

func TestFormatChicagoTimestamp(t *testing.T) {
	ts := time.Date(2025, 6, 2, 8, 40, 12, 0, Chicago())
	assert.Equal(t, "2025-06-02 08:40:12 CT", FormatChicagoTimestamp(ts))
}

func TestDateStr(t *testing.T) {
	ts := time.Date(2025, 6, 2, 23, 59, 0, 0, Chicago())
	assert.Equal(t, "2025-06-02", DateStr(ts))
}

func TestRetryWithBackoffSucceedsAfterFailures(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}

	calls := 0
	err := RetryWithBackoff(func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, cfg)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}

	calls := 0
	sentinel := errors.New("down")
	err := RetryWithBackoff(func() error {
		calls++
		return sentinel
	}, cfg)

	assert.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, calls)
}
