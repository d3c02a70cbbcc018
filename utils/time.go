package utils

import "time"

// TimeProvider interface for time operations
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider implements TimeProvider using actual system time
type RealTimeProvider struct{}

func (p RealTimeProvider) Now() time.Time {
	return time.Now()
}

// FixedTimeProvider always returns the same instant.
type FixedTimeProvider struct {
	Time time.Time
}

func (p FixedTimeProvider) Now() time.Time {
	return p.Time
}

// FileTimestamp formats t the way output file names are suffixed.
func FileTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}
