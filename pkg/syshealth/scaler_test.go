package syshealth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeMonitor struct {
	health Health
}

func (f *fakeMonitor) GetHealth() Health { return f.health }

func TestConcurrencyScaler_Disabled(t *testing.T) {
	s := NewConcurrencyScaler(&fakeMonitor{health: Health{Zone: HealthZoneCritical}}, "worker", false, 1, 10)
	require.Equal(t, 7, s.GetConcurrency(7))
}

func TestConcurrencyScaler_CriticalDropsImmediately(t *testing.T) {
	m := &fakeMonitor{health: Health{Zone: HealthZoneCritical}}
	s := NewConcurrencyScaler(m, "worker", true, 2, 16)
	require.Equal(t, 2, s.GetConcurrency(0))
}

func TestConcurrencyScaler_WarningHalvesMax(t *testing.T) {
	m := &fakeMonitor{health: Health{Zone: HealthZoneWarning}}
	s := NewConcurrencyScaler(m, "worker", true, 2, 16)
	// Non-critical scale-downs wait out the 1m cooldown.
	s.lastAdjustment = time.Now().Add(-2 * time.Minute)
	require.Equal(t, 8, s.GetConcurrency(0))
}

func TestConcurrencyScaler_NeverExceedsBounds(t *testing.T) {
	m := &fakeMonitor{health: Health{Zone: HealthZoneSafe}}
	s := NewConcurrencyScaler(m, "worker", true, 3, 9)
	for i := 0; i < 10; i++ {
		c := s.GetConcurrency(0)
		require.GreaterOrEqual(t, c, 3)
		require.LessOrEqual(t, c, 9)
	}
}

func TestConcurrencyScaler_ScaleUpWaitsCooldown(t *testing.T) {
	m := &fakeMonitor{health: Health{Zone: HealthZoneCritical}}
	s := NewConcurrencyScaler(m, "worker", true, 1, 16)
	require.Equal(t, 1, s.GetConcurrency(0))

	m.health = Health{Zone: HealthZoneSafe}
	// Scale-up cooldown (5m) hasn't elapsed; stays at min.
	require.Equal(t, 1, s.GetConcurrency(0))

	s.lastAdjustment = time.Now().Add(-6 * time.Minute)
	c := s.GetConcurrency(0)
	require.Greater(t, c, 1)
}
