package syshealth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/vectorize-go/vectorize/internal/logger"
)

// HostMonitor samples CPU and memory usage on a timer and exposes the
// latest snapshot to concurrent readers.
type HostMonitor struct {
	cfg Config
	log *slog.Logger

	mu      sync.RWMutex
	current Health

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHostMonitor creates a monitor with the given sampling config.
func NewHostMonitor(cfg Config, log *slog.Logger) *HostMonitor {
	return &HostMonitor{
		cfg:    cfg,
		log:    log.With(logger.Scope("syshealth")),
		stopCh: make(chan struct{}),
		current: Health{
			Zone:      HealthZoneSafe,
			SampledAt: time.Time{},
			Stale:     true,
		},
	}
}

// Start begins the periodic sampling loop until ctx is canceled or Stop is called.
func (m *HostMonitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.cfg.SampleInterval)
		defer ticker.Stop()

		m.sample(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.sample(ctx)
			}
		}
	}()
}

// Stop terminates the sampling loop.
func (m *HostMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *HostMonitor) sample(ctx context.Context) {
	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		m.log.Warn("cpu sample failed", logger.Error(err))
		return
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		m.log.Warn("mem sample failed", logger.Error(err))
		return
	}

	var cpuPct float64
	if len(cpuPercents) > 0 {
		cpuPct = cpuPercents[0]
	}

	h := Health{
		CPUPercent: cpuPct,
		MemPercent: vm.UsedPercent,
		SampledAt:  time.Now(),
		Zone:       m.classify(cpuPct, vm.UsedPercent),
	}

	m.mu.Lock()
	m.current = h
	m.mu.Unlock()
}

func (m *HostMonitor) classify(cpuPct, memPct float64) HealthZone {
	if cpuPct >= m.cfg.CriticalCPUPercent || memPct >= m.cfg.CriticalMemPercent {
		return HealthZoneCritical
	}
	if cpuPct >= m.cfg.WarningCPUPercent || memPct >= m.cfg.WarningMemPercent {
		return HealthZoneWarning
	}
	return HealthZoneSafe
}

// GetHealth returns the most recent snapshot, marking it stale if it
// hasn't been refreshed within StaleAfter.
func (m *HostMonitor) GetHealth() Health {
	m.mu.RLock()
	h := m.current
	m.mu.RUnlock()

	if h.SampledAt.IsZero() || time.Since(h.SampledAt) > m.cfg.StaleAfter {
		h.Stale = true
	}
	return h
}
