package reader

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Aryan-Shakya/FlowRead/internal/playback"
)

// PlaybackMsg carries a playback snapshot into the Bubble Tea loop.
type PlaybackMsg struct {
	Snapshot playback.Snapshot
}

// CompletedMsg signals that pacing reached the final word.
type CompletedMsg struct {
	Snapshot playback.Snapshot
}

// Relay forwards playback notifications into a running Bubble Tea
// program. Notifications can fire on the clock goroutine or on the
// program's own event loop; the relay queues them and pumps from a
// separate goroutine so a notification never blocks the loop that
// produced it.
type Relay struct {
	events chan tea.Msg
	quit   chan struct{}
	once   sync.Once
}

// NewRelay creates a relay with room for a burst of notifications.
func NewRelay() *Relay {
	return &Relay{
		events: make(chan tea.Msg, 64),
		quit:   make(chan struct{}),
	}
}

// PlaybackChanged implements playback.Observer. It never blocks; if
// the queue is full the snapshot is dropped, the next one supersedes
// it.
func (r *Relay) PlaybackChanged(snap playback.Snapshot) {
	select {
	case r.events <- PlaybackMsg{Snapshot: snap}:
	default:
	}
}

// PlaybackCompleted implements playback.Observer. Completion is
// delivered once per document and must not be dropped, so it waits for
// queue room unless the relay is closed.
func (r *Relay) PlaybackCompleted(snap playback.Snapshot) {
	select {
	case r.events <- CompletedMsg{Snapshot: snap}:
	case <-r.quit:
	}
}

// Forward pumps queued notifications into send until Close is called.
// Run it on its own goroutine.
func (r *Relay) Forward(send func(tea.Msg)) {
	for {
		select {
		case msg := <-r.events:
			send(msg)
		case <-r.quit:
			return
		}
	}
}

// Close releases the pump goroutine and unblocks pending senders.
func (r *Relay) Close() {
	r.once.Do(func() { close(r.quit) })
}
