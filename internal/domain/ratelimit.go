package domain

import "time"

// RateDecision is the outcome of one fixed-window rate limit check.
type RateDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Count      int
	RetryAfter time.Duration // 0 when allowed
	ResetAt    time.Time
}
