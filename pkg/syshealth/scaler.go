package syshealth

import (
	"math"
	"sync"
	"time"

	"github.com/vectorize-go/vectorize/pkg/mathutil"
)

// ConcurrencyScaler adjusts a worker's allowed concurrency based on
// host health, in three zones (safe/warning/critical) with asymmetric
// cooldowns: scale-downs apply within a minute (immediately under
// critical load), scale-ups wait five minutes and grow by at most 50%
// of the current value at a time.
type ConcurrencyScaler struct {
	monitor        Monitor
	workerType     string
	enabled        bool
	minConcurrency int
	maxConcurrency int

	mu                 sync.Mutex
	currentConcurrency int
	lastAdjustment     time.Time
}

// NewConcurrencyScaler creates a scaler bounded to [min, max].
func NewConcurrencyScaler(monitor Monitor, workerType string, enabled bool, min, max int) *ConcurrencyScaler {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}

	return &ConcurrencyScaler{
		monitor:            monitor,
		workerType:         workerType,
		enabled:            enabled,
		minConcurrency:     min,
		maxConcurrency:     max,
		currentConcurrency: max,
		lastAdjustment:     time.Now(),
	}
}

// GetConcurrency returns the currently allowed concurrency. When
// disabled, it returns staticValue unchanged so callers can fall back
// to a fixed worker pool size.
func (s *ConcurrencyScaler) GetConcurrency(staticValue int) int {
	if !s.enabled {
		return staticValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	health := s.monitor.GetHealth()
	now := time.Now()
	sinceLastAdj := now.Sub(s.lastAdjustment)

	zone := health.Zone
	if health.Stale {
		zone = HealthZoneWarning
	}

	target := s.currentConcurrency
	switch zone {
	case HealthZoneCritical:
		target = s.minConcurrency
	case HealthZoneWarning:
		target = int(math.Max(float64(s.minConcurrency), float64(s.maxConcurrency)*0.5))
	case HealthZoneSafe:
		target = s.maxConcurrency
	}

	switch {
	case target < s.currentConcurrency:
		if zone == HealthZoneCritical || sinceLastAdj >= time.Minute {
			s.currentConcurrency = target
			s.lastAdjustment = now
		}
	case target > s.currentConcurrency:
		if sinceLastAdj >= 5*time.Minute {
			maxIncrease := int(math.Max(1.0, float64(s.currentConcurrency)*0.5))
			s.currentConcurrency = int(math.Min(float64(target), float64(s.currentConcurrency+maxIncrease)))
			s.lastAdjustment = now
		}
	}

	s.currentConcurrency = mathutil.ClampInt(s.currentConcurrency, s.minConcurrency, s.maxConcurrency)

	return s.currentConcurrency
}
