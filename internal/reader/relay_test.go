package reader

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Aryan-Shakya/FlowRead/internal/playback"
)

type msgSink struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *msgSink) send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *msgSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func (s *msgSink) at(i int) tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msgs[i]
}

func waitForCount(t *testing.T, sink *msgSink, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sink.len() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d messages, have %d", want, sink.len())
}

func TestRelayForwardsNotificationsInOrder(t *testing.T) {
	relay := NewRelay()
	defer relay.Close()
	sink := &msgSink{}
	go relay.Forward(sink.send)

	relay.PlaybackChanged(playback.Snapshot{Index: 1})
	relay.PlaybackChanged(playback.Snapshot{Index: 2})
	relay.PlaybackCompleted(playback.Snapshot{Index: 2, Completed: true})

	waitForCount(t, sink, 3)
	if msg, ok := sink.at(0).(PlaybackMsg); !ok || msg.Snapshot.Index != 1 {
		t.Fatalf("unexpected first message: %#v", sink.at(0))
	}
	if msg, ok := sink.at(1).(PlaybackMsg); !ok || msg.Snapshot.Index != 2 {
		t.Fatalf("unexpected second message: %#v", sink.at(1))
	}
	if msg, ok := sink.at(2).(CompletedMsg); !ok || !msg.Snapshot.Completed {
		t.Fatalf("unexpected third message: %#v", sink.at(2))
	}
}

func TestRelayChangeNeverBlocksWithoutConsumer(t *testing.T) {
	relay := NewRelay()
	defer relay.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			relay.PlaybackChanged(playback.Snapshot{Index: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PlaybackChanged blocked without a consumer")
	}
}

func TestRelayCloseUnblocksCompletion(t *testing.T) {
	relay := NewRelay()
	for i := 0; i < cap(relay.events); i++ {
		relay.PlaybackChanged(playback.Snapshot{Index: i})
	}

	done := make(chan struct{})
	go func() {
		relay.PlaybackCompleted(playback.Snapshot{Completed: true})
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	relay.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock a pending completion")
	}
}

func TestRelayCloseStopsForward(t *testing.T) {
	relay := NewRelay()
	sink := &msgSink{}

	stopped := make(chan struct{})
	go func() {
		relay.Forward(sink.send)
		close(stopped)
	}()

	relay.PlaybackChanged(playback.Snapshot{Index: 1})
	waitForCount(t, sink, 1)

	relay.Close()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Forward did not stop after Close")
	}
}
