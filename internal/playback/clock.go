// Package playback drives the paced word-advance loop: a reconfigurable
// words-per-minute clock and the state machine that consumes its ticks.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/Aryan-Shakya/FlowRead/internal/logger"
	"github.com/Aryan-Shakya/FlowRead/internal/model"
)

const (
	// MinWPM and MaxWPM bound the reading speed.
	MinWPM = 50
	MaxWPM = 1000
	// DefaultWPM is used when no speed is configured.
	DefaultWPM = 300
	// SpeedStep is the increment applied by speed up/down inputs.
	SpeedStep = 50
)

// ClampWPM forces a speed into the supported range.
func ClampWPM(wpm int) int {
	if wpm < MinWPM {
		return MinWPM
	}
	if wpm > MaxWPM {
		return MaxWPM
	}
	return wpm
}

// Clock emits ticks at a words-per-minute cadence. It owns its timer
// goroutine: Stop cancels it and no new tick is delivered once Stop
// returns. Rate changes while running restart the cadence immediately.
type Clock struct {
	log *logger.Logger

	mu      sync.Mutex
	wpm     int
	onTick  func()
	parent  context.Context
	cancel  context.CancelFunc
	running bool
	gen     int
}

// NewClock creates a stopped clock at the default rate.
func NewClock(log *logger.Logger) *Clock {
	return &Clock{log: log, wpm: DefaultWPM}
}

// OnTick sets the tick callback. The callback runs on the clock's
// goroutine and must not call back into the clock.
func (c *Clock) OnTick(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTick = fn
}

// SetRate changes the cadence. Non-positive rates are rejected and
// leave the previous cadence in place; range clamping is the caller's
// job. A rate change while running reschedules the next tick.
func (c *Clock) SetRate(wpm int) error {
	if wpm <= 0 {
		return model.ErrInvalidRate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wpm = wpm
	if c.running {
		c.restartLocked()
	}
	return nil
}

// Rate returns the configured words per minute.
func (c *Clock) Rate() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wpm
}

// Interval returns the current tick interval.
func (c *Clock) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return intervalFor(c.wpm)
}

func intervalFor(wpm int) time.Duration {
	return time.Minute / time.Duration(wpm)
}

// Start begins ticking. Starting a running clock restarts it; there is
// never more than one live tick source.
func (c *Clock) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parent = ctx
	c.running = true
	c.restartLocked()
	c.log.Debugf("clock started (wpm=%d, interval=%s)", c.wpm, intervalFor(c.wpm))
}

// Stop cancels the tick loop. No new tick is delivered once Stop
// returns; a consumer that needs a hard cutoff also checks its own
// state, as the controller does with its playing flag.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.cancel()
	c.cancel = nil
	c.running = false
	c.gen++
	c.log.Debugf("clock stopped")
}

// Running reports whether the tick loop is live.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) restartLocked() {
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.parent)
	c.cancel = cancel
	c.gen++
	go c.loop(ctx, c.gen, intervalFor(c.wpm))
}

func (c *Clock) loop(ctx context.Context, gen int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.deliver(gen)
		}
	}
}

// deliver drops ticks from superseded loops so that a stopped or
// rescheduled clock never advances the consumer.
func (c *Clock) deliver(gen int) {
	c.mu.Lock()
	live := c.running && gen == c.gen
	fn := c.onTick
	c.mu.Unlock()
	if live && fn != nil {
		fn()
	}
}
