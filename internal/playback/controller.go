package playback

import (
	"context"
	"sync"
	"time"

	"github.com/Aryan-Shakya/FlowRead/internal/logger"
	"github.com/Aryan-Shakya/FlowRead/internal/model"
)

// Snapshot is the complete observable playback state. Every
// notification carries one, so observers never need to read the
// controller back.
type Snapshot struct {
	Index       int
	Playing     bool
	WPM         int
	WordsRead   int
	TimeSpentMs int64
	Bookmark    int // -1 when unset
	StartedAt   time.Time
	Completed   bool
}

// Observer receives playback state changes. Completion is delivered at
// most once per controller. Callbacks may run on the clock goroutine
// and must not call back into the controller.
type Observer interface {
	PlaybackChanged(Snapshot)
	PlaybackCompleted(Snapshot)
}

// Controller owns the playback position, play/pause state, bookmark,
// and pacing statistics for one document. Ticks from its clock advance
// the position; manual seeks move it without touching statistics.
type Controller struct {
	log   *logger.Logger
	clock *Clock
	ctx   context.Context

	mu          sync.Mutex
	words       []model.Word
	index       int
	playing     bool
	wpm         int
	bookmark    int
	wordsRead   int
	timeSpentMs int64
	startedAt   time.Time
	lastTickAt  time.Time
	completed   bool
	observers   []Observer
}

// NewController creates a paused controller positioned at the first
// word. The speed is clamped into the supported range.
func NewController(ctx context.Context, words []model.Word, wpm int, log *logger.Logger) *Controller {
	c := &Controller{
		log:      log,
		ctx:      ctx,
		words:    words,
		wpm:      ClampWPM(wpm),
		bookmark: -1,
	}
	c.clock = NewClock(log)
	c.clock.OnTick(c.advance)
	// Clamped rate is always positive.
	_ = c.clock.SetRate(c.wpm)
	return c
}

// WordCount returns the number of words in the loaded document.
func (c *Controller) WordCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.words)
}

// CurrentWord returns the word at the playback position. The second
// return is false for an empty document.
func (c *Controller) CurrentWord() (model.Word, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.words) == 0 {
		return model.Word{}, false
	}
	return c.words[c.index], true
}

// WordAt returns the word at an arbitrary index.
func (c *Controller) WordAt(i int) (model.Word, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.words) {
		return model.Word{}, false
	}
	return c.words[i], true
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// AddObserver registers an observer for subsequent state changes.
func (c *Controller) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Play starts paced advancement. It is a no-op for an empty document
// and while already playing.
func (c *Controller) Play() {
	c.mu.Lock()
	if len(c.words) == 0 || c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = true
	now := time.Now()
	if c.startedAt.IsZero() {
		c.startedAt = now
	}
	c.lastTickAt = now
	c.clock.Start(c.ctx)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.Debugf("playback started at word %d", snap.Index)
	c.notifyChanged(snap)
}

// Pause stops paced advancement. Idempotent.
func (c *Controller) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	c.pauseLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notifyChanged(snap)
}

// TogglePlay flips between playing and paused.
func (c *Controller) TogglePlay() {
	if c.Playing() {
		c.Pause()
	} else {
		c.Play()
	}
}

// Playing reports whether paced advancement is active.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// SeekForward moves one word ahead. Boundary calls are no-ops and
// manual movement never counts toward statistics.
func (c *Controller) SeekForward() {
	c.seekBy(1)
}

// SeekBackward moves one word back.
func (c *Controller) SeekBackward() {
	c.seekBy(-1)
}

func (c *Controller) seekBy(delta int) {
	c.mu.Lock()
	if len(c.words) == 0 {
		c.mu.Unlock()
		return
	}
	target := c.index + delta
	if target < 0 {
		target = 0
	}
	if last := len(c.words) - 1; target > last {
		target = last
	}
	if target == c.index {
		c.mu.Unlock()
		return
	}
	c.index = target
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notifyChanged(snap)
}

// SetSpeed clamps the requested rate into [MinWPM, MaxWPM] and applies
// it. While playing, the clock reschedules without pausing.
func (c *Controller) SetSpeed(wpm int) {
	c.mu.Lock()
	clamped := ClampWPM(wpm)
	if clamped == c.wpm {
		c.mu.Unlock()
		return
	}
	c.wpm = clamped
	_ = c.clock.SetRate(clamped)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.log.Debugf("speed set to %d wpm", clamped)
	c.notifyChanged(snap)
}

// SpeedUp raises the rate by one step.
func (c *Controller) SpeedUp() {
	c.SetSpeed(c.Speed() + SpeedStep)
}

// SlowDown lowers the rate by one step.
func (c *Controller) SlowDown() {
	c.SetSpeed(c.Speed() - SpeedStep)
}

// Speed returns the effective words per minute.
func (c *Controller) Speed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wpm
}

// SetBookmark remembers the current position.
func (c *Controller) SetBookmark() {
	c.mu.Lock()
	if len(c.words) == 0 {
		c.mu.Unlock()
		return
	}
	c.bookmark = c.index
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notifyChanged(snap)
}

// JumpToBookmark returns to the remembered position. No-op when no
// bookmark is set.
func (c *Controller) JumpToBookmark() {
	c.mu.Lock()
	if c.bookmark < 0 || c.bookmark == c.index {
		c.mu.Unlock()
		return
	}
	c.index = c.bookmark
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notifyChanged(snap)
}

// Restore positions the controller from a persisted session without
// touching statistics.
func (c *Controller) Restore(index, wpm int) {
	c.mu.Lock()
	if len(c.words) > 0 {
		if index < 0 {
			index = 0
		}
		if index > len(c.words)-1 {
			index = len(c.words) - 1
		}
		c.index = index
	}
	if wpm > 0 {
		c.wpm = ClampWPM(wpm)
		_ = c.clock.SetRate(c.wpm)
	}
	c.mu.Unlock()
}

// Close tears the controller down. The clock is cancelled before Close
// returns, so no advance fires afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.playing = false
	c.mu.Unlock()
	c.clock.Stop()
}

// advance consumes one clock tick. Reaching the tick while on the final
// word pauses playback and fires completion exactly once; late ticks
// after a pause are dropped.
func (c *Controller) advance() {
	c.mu.Lock()
	if !c.playing || len(c.words) == 0 {
		c.mu.Unlock()
		return
	}
	now := time.Now()
	if c.index >= len(c.words)-1 {
		c.pauseLocked()
		first := !c.completed
		c.completed = true
		snap := c.snapshotLocked()
		c.mu.Unlock()

		if first {
			c.log.Debugf("document finished at word %d", snap.Index)
			c.notifyCompleted(snap)
		} else {
			c.notifyChanged(snap)
		}
		return
	}
	c.index++
	c.wordsRead++
	c.timeSpentMs += now.Sub(c.lastTickAt).Milliseconds()
	c.lastTickAt = now
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notifyChanged(snap)
}

func (c *Controller) pauseLocked() {
	c.playing = false
	c.clock.Stop()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Index:       c.index,
		Playing:     c.playing,
		WPM:         c.wpm,
		WordsRead:   c.wordsRead,
		TimeSpentMs: c.timeSpentMs,
		Bookmark:    c.bookmark,
		StartedAt:   c.startedAt,
		Completed:   c.completed,
	}
}

// Notifications run outside the state lock; each carries a full
// snapshot, so a reordered delivery is superseded by the next one.
func (c *Controller) notifyChanged(snap Snapshot) {
	for _, o := range c.observerList() {
		o.PlaybackChanged(snap)
	}
}

func (c *Controller) notifyCompleted(snap Snapshot) {
	for _, o := range c.observerList() {
		o.PlaybackCompleted(snap)
	}
}

func (c *Controller) observerList() []Observer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Observer(nil), c.observers...)
}
