// Package engine provides the simulation context and the tick-based
// campaign loop.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Engine drives the simulation forward in real time. Tests bypass it and
// call Simulation.Advance directly. TickDays, Interval, and OnTick are
// set before Run; speed and the running flag may be changed from other
// goroutines (signal handler, API) while the loop runs.
type Engine struct {
	TickDays float64       // Simulated days per tick
	Interval time.Duration // Base tick interval (default 1 second)

	// OnTick is invoked once per tick with the elapsed days.
	OnTick func(tickSize float64)

	mu      sync.Mutex
	speed   float64 // Multiplier: 1.0 = real-time, 0 = paused
	running bool
}

// NewEngine creates a campaign engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		TickDays: 1,
		Interval: time.Second,
		speed:    1.0,
	}
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Zero pauses the loop; negative
// values clamp to zero.
func (e *Engine) SetSpeed(v float64) {
	if v < 0 {
		v = 0
	}
	e.mu.Lock()
	e.speed = v
	e.mu.Unlock()
}

// Running reports whether the campaign loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run starts the campaign loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("campaign engine started", "tick_days", e.TickDays, "speed", e.Speed())

	for e.Running() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		if e.OnTick != nil {
			e.OnTick(e.TickDays)
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("campaign engine stopped")
}

// Stop halts the campaign loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// SimDate renders an elapsed-day count as a saga-style date. The
// campaign opens in the raiding summer of 793.
func SimDate(day float64) string {
	whole := int(math.Floor(day))
	year := 793 + whole/360
	dayOfYear := whole%360 + 1
	return fmt.Sprintf("Year %d, Day %d", year, dayOfYear)
}
