package engine

import (
	"testing"
	"time"
)

func TestEngineSpeedClamped(t *testing.T) {
	eng := NewEngine()
	if got := eng.Speed(); got != 1.0 {
		t.Errorf("default speed = %v, want 1.0", got)
	}
	eng.SetSpeed(-2)
	if got := eng.Speed(); got != 0 {
		t.Errorf("speed after negative set = %v, want 0 (paused)", got)
	}
	eng.SetSpeed(4)
	if got := eng.Speed(); got != 4 {
		t.Errorf("speed = %v, want 4", got)
	}
}

func TestEngineStopHaltsRun(t *testing.T) {
	eng := NewEngine()
	eng.Interval = time.Millisecond

	// Stop is called from the tick callback itself, standing in for the
	// signal handler goroutine.
	ticks := 0
	eng.OnTick = func(float64) {
		ticks++
		if ticks >= 3 {
			eng.Stop()
		}
	}

	done := make(chan struct{})
	go func() {
		eng.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}
	if eng.Running() {
		t.Error("engine still reports running after Stop")
	}
	if ticks < 3 {
		t.Errorf("ticks = %d, want at least 3 before stopping", ticks)
	}
}
