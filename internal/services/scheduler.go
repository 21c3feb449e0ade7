package services

import "time"

// Timer is a handle to a task scheduled with a Scheduler
type Timer interface {
	// Stop prevents the task from running. It returns false if the task already ran or was stopped.
	Stop() bool
}

// Scheduler runs a function after a delay on its own goroutine
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// realScheduler schedules tasks on the runtime timer heap
type realScheduler struct{}

// NewRealScheduler returns a Scheduler backed by time.AfterFunc
func NewRealScheduler() Scheduler {
	return realScheduler{}
}

// AfterFunc implements Scheduler
func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
