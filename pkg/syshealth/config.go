package syshealth

import "time"

// Config controls sampling cadence and the thresholds that separate
// the safe/warning/critical zones.
type Config struct {
	SampleInterval    time.Duration
	StaleAfter        time.Duration
	WarningCPUPercent float64
	CriticalCPUPercent float64
	WarningMemPercent float64
	CriticalMemPercent float64
}

// DefaultConfig returns reasonable defaults for a background worker host.
func DefaultConfig() Config {
	return Config{
		SampleInterval:     5 * time.Second,
		StaleAfter:         30 * time.Second,
		WarningCPUPercent:  70,
		CriticalCPUPercent: 90,
		WarningMemPercent:  75,
		CriticalMemPercent: 92,
	}
}
