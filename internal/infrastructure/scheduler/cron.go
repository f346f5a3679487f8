// Package scheduler runs the portal's nightly maintenance: expiring
// documents past their retention period and pruning old activity log
// entries. The trigger is a minute ticker checked against a fixed
// daily time parsed from a cron-style expression.
package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// cronTickerInterval is how often the scheduler checks whether it is
// time to run.
const cronTickerInterval = 1 * time.Minute

// ParseCronSchedule parses a cron expression "minute hour * * *" into its
// hour and minute. Defaults to 03:00 when the expression is empty or a
// field is "*".
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour = 3
	minute = 0

	if cronExpr == "" {
		return hour, minute, nil
	}

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return hour, minute, nil
	}

	if parts[0] != "*" {
		if val, parseErr := parseCronField(parts[0]); parseErr == nil {
			minute = val
		}
	}
	if parts[1] != "*" {
		if val, parseErr := parseCronField(parts[1]); parseErr == nil {
			hour = val
		}
	}

	if minute < 0 || minute > 59 {
		return 3, 0, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 3, 0, fmt.Errorf("hour must be 0-23, got %d", hour)
	}

	return hour, minute, nil
}

func parseCronField(s string) (int, error) {
	val := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, ErrInvalidConfig
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// nextRunAfter computes the next daily run time at hour:minute after now.
func nextRunAfter(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
