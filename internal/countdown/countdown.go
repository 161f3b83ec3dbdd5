// Package countdown derives the remaining lifetime of a pending order from
// its server-recorded creation time and per-order minute limit.
package countdown

import "time"

// UrgentThresholdSeconds is the remaining time below which the board marks
// an order visually urgent (5 minutes).
const UrgentThresholdSeconds = 300

// Remaining returns the number of seconds left before the order's time
// limit runs out, clamped at zero. Hitting zero never changes the order's
// status; that transition is outside this service.
func Remaining(createdAt time.Time, timeLimitMinutes int, now time.Time) float64 {
	elapsed := now.Sub(createdAt).Seconds()
	remaining := float64(timeLimitMinutes)*60 - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Urgent reports whether the given remaining seconds are inside the urgent
// display window.
func Urgent(remainingSeconds float64) bool {
	return remainingSeconds <= UrgentThresholdSeconds
}
