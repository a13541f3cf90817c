package data

import "time"

// TimeProvider supplies the clock for created_at, updated_at and published_at stamps.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider reads the system clock at the microsecond precision Postgres keeps,
// so a stamp written and read back compares equal.
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time {
	return time.Now().Truncate(time.Microsecond)
}

// FixedTimeProvider always reports the same instant.
type FixedTimeProvider struct {
	at time.Time
}

func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{at: t}
}

func (f *FixedTimeProvider) Now() time.Time {
	return f.at
}
