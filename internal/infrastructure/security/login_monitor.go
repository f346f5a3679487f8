// Package security tracks failed login activity across the portal and
// decides when a brute-force alert should fire. Counters live in memory;
// a restart resets them, which is acceptable because account lockout
// state is persisted on the user aggregate.
package security

import (
	"sync"
	"time"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
)

// PolicyProvider returns the current security policy. Settings can change
// at runtime, so the monitor asks on every decision instead of caching.
type PolicyProvider func() settings.SecurityPolicy

type failureBucket struct {
	count       int
	windowStart time.Time
	alerted     bool
}

func (b *failureBucket) expired(window time.Duration, now time.Time) bool {
	return now.Sub(b.windowStart) > window
}

// Alert describes a burst of failed logins that crossed the alert threshold.
type Alert struct {
	Key        string // "ip:1.2.3.4" or "email:user@example.com"
	Failures   int
	WindowFrom time.Time
}

// LoginMonitor counts failed logins per source IP and per email address
// inside a sliding window. It reports at most one alert per key per
// window so a sustained attack does not flood the recipients.
type LoginMonitor struct {
	mu      sync.Mutex
	buckets map[string]*failureBucket
	policy  PolicyProvider

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewLoginMonitor creates a monitor and starts a background sweep that
// drops buckets whose window has passed.
func NewLoginMonitor(policy PolicyProvider, sweepInterval time.Duration) *LoginMonitor {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}

	m := &LoginMonitor{
		buckets:  make(map[string]*failureBucket),
		policy:   policy,
		stopChan: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.sweepLoop(sweepInterval)

	return m
}

// RecordFailure registers one failed login attempt for the given email and
// source IP. It returns a non-nil Alert for each key that just crossed the
// alert threshold in the current window.
func (m *LoginMonitor) RecordFailure(email, sourceIP string) []Alert {
	policy := m.policy()
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var alerts []Alert
	for _, key := range failureKeys(email, sourceIP) {
		if alert := m.record(key, policy, now); alert != nil {
			alerts = append(alerts, *alert)
		}
	}
	return alerts
}

// RecordSuccess clears the failure counters for the email and IP. A
// successful login ends the suspicion for both keys.
func (m *LoginMonitor) RecordSuccess(email, sourceIP string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range failureKeys(email, sourceIP) {
		delete(m.buckets, key)
	}
}

// FailureCount returns the current in-window failure count for a key.
func (m *LoginMonitor) FailureCount(key string) int {
	policy := m.policy()
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok || b.expired(policy.AlertWindow, now) {
		return 0
	}
	return b.count
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (m *LoginMonitor) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
	return nil
}

func (m *LoginMonitor) record(key string, policy settings.SecurityPolicy, now time.Time) *Alert {
	b, ok := m.buckets[key]
	if !ok || b.expired(policy.AlertWindow, now) {
		b = &failureBucket{windowStart: now}
		m.buckets[key] = b
	}

	b.count++

	if policy.AlertThreshold > 0 && b.count >= policy.AlertThreshold && !b.alerted {
		b.alerted = true
		return &Alert{Key: key, Failures: b.count, WindowFrom: b.windowStart}
	}
	return nil
}

func failureKeys(email, sourceIP string) []string {
	keys := make([]string, 0, 2)
	if email != "" {
		keys = append(keys, "email:"+email)
	}
	if sourceIP != "" {
		keys = append(keys, "ip:"+sourceIP)
	}
	return keys
}

func (m *LoginMonitor) sweepLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *LoginMonitor) sweep() {
	policy := m.policy()
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, b := range m.buckets {
		if b.expired(policy.AlertWindow, now) {
			delete(m.buckets, key)
		}
	}
}

// Size returns the number of tracked buckets (for testing/monitoring).
func (m *LoginMonitor) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}
