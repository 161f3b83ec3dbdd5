package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name         string
		createdAgo   time.Duration
		limitMinutes int
		expected     float64
	}{
		{"just created", 0, 30, 1800},
		{"25 of 30 minutes elapsed", 25 * time.Minute, 30, 300},
		{"limit exactly reached", 30 * time.Minute, 30, 0},
		{"limit long past, clamped at zero", 2 * time.Hour, 30, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Remaining(now.Add(-tc.createdAgo), tc.limitMinutes, now)
			assert.InDelta(t, tc.expected, got, 0.001)
		})
	}
}

func TestUrgent(t *testing.T) {
	assert.False(t, Urgent(301))
	assert.True(t, Urgent(300))
	assert.True(t, Urgent(10))
	assert.True(t, Urgent(0))
}
