package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrSweepAlreadyRunning is returned when a sweep is still in progress
	ErrSweepAlreadyRunning = errors.New("retention sweep already in progress")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
