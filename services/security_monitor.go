package services

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	failedLoginWindow    = 10 * time.Minute
	failedLoginThreshold = 5
	alertCooldown        = time.Hour
	maxAlertHistory      = 100
)

// SecurityEventMonitor counts failed admin logins per IP, blocks an IP once
// it crosses the threshold and raises at most one alert per IP per hour.
type SecurityEventMonitor struct {
	mu           sync.Mutex
	failedLogins map[string][]time.Time // IP -> failure timestamps inside the window
	alertedIPs   map[string]time.Time   // IP -> last alert time
	alerts       []SecurityAlert        // newest first

	// Alert is called outside the lock for every new alert. Optional.
	Alert func(SecurityAlert)

	now func() time.Time
}

// SecurityAlert represents a triggered security alert
type SecurityAlert struct {
	Timestamp time.Time
	IP        string
	Reason    string
	Level     string // "WARNING", "CRITICAL"
}

// NewSecurityMonitor creates an empty monitor
func NewSecurityMonitor(alert func(SecurityAlert)) *SecurityEventMonitor {
	return &SecurityEventMonitor{
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
		Alert:        alert,
		now:          time.Now,
	}
}

// TrackFailedLogin records a failed login attempt and alerts once the IP
// reaches the threshold
func (m *SecurityEventMonitor) TrackFailedLogin(ip string) {
	m.mu.Lock()
	now := m.now()
	attempts := append(m.recentLocked(ip, now), now)
	m.failedLogins[ip] = attempts

	var alert *SecurityAlert
	if len(attempts) >= failedLoginThreshold {
		alert = m.triggerAlertLocked(ip, "Multiple failed admin logins", now)
	}
	m.mu.Unlock()

	if alert != nil {
		log.Error().Str("ip", alert.IP).Str("reason", alert.Reason).Msg("Security alert")
		if m.Alert != nil {
			m.Alert(*alert)
		}
	}
}

// Blocked reports whether ip has too many recent failures to try again
func (m *SecurityEventMonitor) Blocked(ip string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recentLocked(ip, m.now())) >= failedLoginThreshold
}

// recentLocked returns the failures of ip still inside the window
func (m *SecurityEventMonitor) recentLocked(ip string, now time.Time) []time.Time {
	windowStart := now.Add(-failedLoginWindow)
	var valid []time.Time
	for _, t := range m.failedLogins[ip] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	return valid
}

// triggerAlertLocked stores an alert unless ip was alerted within the cooldown
func (m *SecurityEventMonitor) triggerAlertLocked(ip, reason string, now time.Time) *SecurityAlert {
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < alertCooldown {
		return nil
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{
		Timestamp: now,
		IP:        ip,
		Reason:    reason,
		Level:     "CRITICAL",
	}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlertHistory {
		m.alerts = m.alerts[:maxAlertHistory]
	}
	return &alert
}

// GetRecentAlerts returns a copy of recent alerts
func (m *SecurityEventMonitor) GetRecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	alertsCopy := make([]SecurityAlert, len(m.alerts))
	copy(alertsCopy, m.alerts)
	return alertsCopy
}

// Cleanup drops failure lists and alert marks that no longer matter
func (m *SecurityEventMonitor) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for ip := range m.failedLogins {
		if recent := m.recentLocked(ip, now); len(recent) > 0 {
			m.failedLogins[ip] = recent
		} else {
			delete(m.failedLogins, ip)
		}
	}
	for ip, lastAlert := range m.alertedIPs {
		if now.Sub(lastAlert) > alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}
