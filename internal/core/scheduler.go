package core

import "time"

// Scheduler runs f once after d. Implementations must not block the caller.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
