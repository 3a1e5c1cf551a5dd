package types

import (
	"testing"
	"time"
)

func TestPoolStats(t *testing.T) {
	t.Run("Pending", func(t *testing.T) {
		stats := PoolStats{Submitted: 10, Completed: 6, Failed: 1}
		if stats.Pending() != 3 {
			t.Errorf("expected 3 pending, got %d", stats.Pending())
		}
	})

	t.Run("Utilization", func(t *testing.T) {
		tests := []struct {
			stats    PoolStats
			expected float64
		}{
			{PoolStats{PoolSize: 4, BusyWorkers: 0}, 0},
			{PoolStats{PoolSize: 4, BusyWorkers: 2}, 0.5},
			{PoolStats{PoolSize: 4, BusyWorkers: 4}, 1},
			{PoolStats{}, 0},
		}

		for _, tt := range tests {
			if got := tt.stats.Utilization(); got != tt.expected {
				t.Errorf("expected utilization %v, got %v", tt.expected, got)
			}
		}
	})
}

func TestRealClock(t *testing.T) {
	clock := NewRealClock()

	start := clock.Now()
	clock.Sleep(5 * time.Millisecond)

	if elapsed := clock.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("expected at least 5ms elapsed, got %v", elapsed)
	}
}
