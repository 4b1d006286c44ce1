package sim

import (
	"context"
	"log"
	"time"

	"corridor_dispatch/internal/models"
)

// StartSimulation starts the ticker loop. It is a no-op when the loop is
// already running or every train has completed.
func (e *Engine) StartSimulation() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked()
}

// StopSimulation pauses the ticker loop. State is kept as is.
func (e *Engine) StopSimulation() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseLocked()
}

// ToggleSimulation flips between running and paused and returns the new mode.
func (e *Engine) ToggleSimulation() models.SimMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == models.ModeRunning {
		e.pauseLocked()
	} else {
		e.startLocked()
	}
	return e.mode
}

func (e *Engine) pauseLocked() {
	if e.mode != models.ModeRunning {
		return
	}
	e.stopLoopLocked()
	e.mode = models.ModePaused
	e.addEventLocked("Simulation paused.", models.EventOperator)
	log.Printf("[sim] paused at tick %d", e.tick)
}

func (e *Engine) startLocked() {
	if e.mode == models.ModeRunning || e.allCompletedLocked() {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.mode = models.ModeRunning
	e.addEventLocked("Simulation started.", models.EventAI)
	log.Printf("[sim] started (interval=%s)", e.interval)
	go e.run(ctx, e.interval)
}

func (e *Engine) stopLoopLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.advanceLoop(ctx)
		}
	}
}

// advanceLoop re-checks cancellation under the lock so a tick that fired
// just before a pause is dropped rather than applied after it.
func (e *Engine) advanceLoop(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	e.tickLocked()
}
