package engine

import (
	"sync/atomic"
	"time"
)

// Metrics is a point-in-time view of the training counters.
type Metrics struct {
	Playouts   int64   `json:"playouts"`
	Plies      int64   `json:"plies"`
	PerSecond  float64 `json:"playouts_per_second"`
	SinceStart float64 `json:"uptime_seconds"`
}

// collector accumulates playout counters across every simulation task
// of one engine.
type collector struct {
	playouts atomic.Int64
	plies    atomic.Int64
	started  time.Time
}

func (c *collector) addPlayout(plies int) {
	c.playouts.Add(1)
	c.plies.Add(int64(plies))
}

func (c *collector) snapshot() Metrics {
	elapsed := time.Since(c.started).Seconds()
	playouts := c.playouts.Load()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(playouts) / elapsed
	}
	return Metrics{
		Playouts:   playouts,
		Plies:      c.plies.Load(),
		PerSecond:  rate,
		SinceStart: elapsed,
	}
}
