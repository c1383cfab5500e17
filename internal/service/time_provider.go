package service

import "time"

// TimeProvider supplies the current time so calendar-day rules can be tested.
type TimeProvider interface {
	Now() time.Time
}

type timeProvider struct{}

func NewTimeProvider() TimeProvider {
	return &timeProvider{}
}

func (t timeProvider) Now() time.Time {
	return time.Now()
}
