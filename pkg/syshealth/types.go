// Package syshealth samples host resource usage and derives a
// concurrency budget for background workers from it.
package syshealth

import "time"

// HealthZone buckets current host load into three regimes.
type HealthZone string

const (
	HealthZoneSafe     HealthZone = "safe"
	HealthZoneWarning  HealthZone = "warning"
	HealthZoneCritical HealthZone = "critical"
)

// Health is a point-in-time snapshot of host load.
type Health struct {
	CPUPercent float64
	MemPercent float64
	Zone       HealthZone
	SampledAt  time.Time
	Stale      bool
}

// Monitor is the read side of host health sampling.
type Monitor interface {
	GetHealth() Health
}
