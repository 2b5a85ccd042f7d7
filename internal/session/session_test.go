package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Aryan-Shakya/FlowRead/internal/logger"
	"github.com/Aryan-Shakya/FlowRead/internal/model"
	"github.com/Aryan-Shakya/FlowRead/internal/playback"
)

// fakeStore records saves and serves a canned existing session.
type fakeStore struct {
	mu       sync.Mutex
	saved    []model.ReadingSession
	existing *model.ReadingSession
	saveErr  error
	loadErr  error
}

func (f *fakeStore) SaveSession(_ context.Context, sess model.ReadingSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, sess)
	return nil
}

func (f *fakeStore) LatestSession(_ context.Context, documentID string) (model.ReadingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return model.ReadingSession{}, f.loadErr
	}
	if f.existing == nil {
		return model.ReadingSession{}, fmt.Errorf("session for document %q: %w", documentID, model.ErrNotFound)
	}
	return *f.existing, nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func (f *fakeStore) lastSaved() model.ReadingSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[len(f.saved)-1]
}

func testDoc() model.Document {
	return model.Document{ID: "doc-1", Title: "Sample", WordCount: 100}
}

func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestOpenCreatesFreshSession(t *testing.T) {
	store := &fakeStore{}
	m := New(store, logger.New(logger.LevelOff, nil))

	sess, resumed := m.Open(context.Background(), testDoc(), 300)
	if resumed {
		t.Fatal("expected a fresh session")
	}
	if sess.ID == "" {
		t.Fatal("expected generated session id")
	}
	if sess.DocumentID != "doc-1" || sess.TotalWords != 100 || sess.SpeedWPM != 300 {
		t.Fatalf("unexpected fresh session: %+v", sess)
	}
	if sess.CurrentWordIndex != 0 || sess.WordsRead != 0 || sess.TimeSpentMs != 0 || sess.Completed {
		t.Fatalf("fresh session must start zeroed: %+v", sess)
	}
	if store.saveCount() != 1 {
		t.Fatalf("expected the fresh record to be persisted once, got %d", store.saveCount())
	}
}

func TestOpenResumesExistingSession(t *testing.T) {
	store := &fakeStore{existing: &model.ReadingSession{
		ID: "sess-7", DocumentID: "doc-1", CurrentWordIndex: 7,
		TotalWords: 100, WordsRead: 500, TimeSpentMs: 90000, SpeedWPM: 480,
	}}
	m := New(store, logger.New(logger.LevelOff, nil))

	sess, resumed := m.Open(context.Background(), testDoc(), 300)
	if !resumed {
		t.Fatal("expected resume")
	}
	if sess.ID != "sess-7" || sess.CurrentWordIndex != 7 || sess.SpeedWPM != 480 {
		t.Fatalf("unexpected resumed session: %+v", sess)
	}
	if store.saveCount() != 0 {
		t.Fatalf("resume must not create a new record, got %d saves", store.saveCount())
	}
}

func TestOpenIgnoresCompletedSession(t *testing.T) {
	store := &fakeStore{existing: &model.ReadingSession{
		ID: "sess-done", DocumentID: "doc-1", Completed: true,
	}}
	m := New(store, logger.New(logger.LevelOff, nil))

	sess, resumed := m.Open(context.Background(), testDoc(), 300)
	if resumed {
		t.Fatal("completed sessions must not resume")
	}
	if sess.ID == "sess-done" {
		t.Fatal("expected a new session id")
	}
}

func TestOpenFallsBackToFreshOnLoadFailure(t *testing.T) {
	store := &fakeStore{loadErr: fmt.Errorf("disk on fire")}
	m := New(store, logger.New(logger.LevelOff, nil))

	sess, resumed := m.Open(context.Background(), testDoc(), 300)
	if resumed {
		t.Fatal("expected fresh session after load failure")
	}
	if sess.DocumentID != "doc-1" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestOpenSurvivesCreateFailure(t *testing.T) {
	store := &fakeStore{saveErr: fmt.Errorf("disk full")}
	m := New(store, logger.New(logger.LevelOff, nil))

	sess, _ := m.Open(context.Background(), testDoc(), 300)
	if sess.ID == "" {
		t.Fatal("in-memory session must exist despite persistence failure")
	}
	if got := m.Session().ID; got != sess.ID {
		t.Fatalf("manager lost the session: %q", got)
	}
}

func TestPeriodicSaveWaitsForProgress(t *testing.T) {
	store := &fakeStore{}
	m := New(store, logger.New(logger.LevelOff, nil), WithSaveInterval(30*time.Millisecond))
	m.Open(context.Background(), testDoc(), 300)
	created := store.saveCount()

	m.Start(context.Background())
	defer m.Stop()

	m.PlaybackChanged(playback.Snapshot{Index: 0, WPM: 300})
	time.Sleep(120 * time.Millisecond)
	if got := store.saveCount(); got != created {
		t.Fatalf("saved before progressing past the first word: %d -> %d", created, got)
	}

	m.PlaybackChanged(playback.Snapshot{Index: 3, WordsRead: 3, TimeSpentMs: 600, WPM: 300})
	waitFor(t, 2*time.Second, "periodic save", func() bool {
		return store.saveCount() > created
	})

	rec := store.lastSaved()
	if rec.CurrentWordIndex != 3 || rec.WordsRead != 3 || rec.TimeSpentMs != 600 {
		t.Fatalf("unexpected saved record: %+v", rec)
	}
	if rec.Completed {
		t.Fatal("periodic save must not mark completion")
	}
}

func TestCompletionPushedExactlyOnce(t *testing.T) {
	store := &fakeStore{}
	m := New(store, logger.New(logger.LevelOff, nil))
	m.Open(context.Background(), testDoc(), 300)
	created := store.saveCount()

	snap := playback.Snapshot{Index: 99, WordsRead: 99, TimeSpentMs: 20000, WPM: 300, Completed: true}
	m.PlaybackCompleted(snap)
	m.PlaybackCompleted(snap)

	if got := store.saveCount() - created; got != 1 {
		t.Fatalf("expected exactly one completion push, got %d", got)
	}
	rec := store.lastSaved()
	if !rec.Completed || rec.CurrentWordIndex != 99 || rec.WordsRead != 99 {
		t.Fatalf("unexpected completion record: %+v", rec)
	}
}

func TestFlushPushesFinalUpdate(t *testing.T) {
	store := &fakeStore{}
	m := New(store, logger.New(logger.LevelOff, nil))
	m.Open(context.Background(), testDoc(), 300)
	created := store.saveCount()

	// Nothing observed yet, nothing to flush.
	m.Flush(context.Background())
	if got := store.saveCount(); got != created {
		t.Fatalf("flush without activity saved %d records", got-created)
	}

	m.PlaybackChanged(playback.Snapshot{Index: 12, WordsRead: 12, TimeSpentMs: 2400, WPM: 350})
	m.Flush(context.Background())
	if got := store.saveCount() - created; got != 1 {
		t.Fatalf("expected one flush save, got %d", got)
	}
	rec := store.lastSaved()
	if rec.CurrentWordIndex != 12 || rec.SpeedWPM != 350 || rec.Completed {
		t.Fatalf("unexpected flushed record: %+v", rec)
	}
}

func TestFlushAfterCompletionIsNoOp(t *testing.T) {
	store := &fakeStore{}
	m := New(store, logger.New(logger.LevelOff, nil))
	m.Open(context.Background(), testDoc(), 300)

	m.PlaybackCompleted(playback.Snapshot{Index: 99, WordsRead: 99, Completed: true})
	count := store.saveCount()

	m.PlaybackChanged(playback.Snapshot{Index: 50})
	m.Flush(context.Background())
	if got := store.saveCount(); got != count {
		t.Fatalf("flush after completion saved %d extra records", got-count)
	}
	if !m.Session().Completed {
		t.Fatal("session must stay completed")
	}
}

func TestResumeOverwritesPersistedTotals(t *testing.T) {
	store := &fakeStore{existing: &model.ReadingSession{
		ID: "sess-7", DocumentID: "doc-1", CurrentWordIndex: 7,
		TotalWords: 100, WordsRead: 500, TimeSpentMs: 90000, SpeedWPM: 480,
	}}
	m := New(store, logger.New(logger.LevelOff, nil), WithSaveInterval(20*time.Millisecond))
	m.Open(context.Background(), testDoc(), 300)

	m.Start(context.Background())
	defer m.Stop()

	// The restarted in-memory statistics replace the stored totals.
	m.PlaybackChanged(playback.Snapshot{Index: 7, WordsRead: 0, TimeSpentMs: 0, WPM: 480})
	waitFor(t, 2*time.Second, "periodic save", func() bool {
		return store.saveCount() > 0
	})

	rec := store.lastSaved()
	if rec.ID != "sess-7" {
		t.Fatalf("expected the resumed record id, got %q", rec.ID)
	}
	if rec.WordsRead != 0 || rec.TimeSpentMs != 0 {
		t.Fatalf("expected stats restart to overwrite totals: %+v", rec)
	}
}

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	store := &fakeStore{saveErr: fmt.Errorf("disk full")}
	m := New(store, logger.New(logger.LevelOff, nil), WithSaveInterval(20*time.Millisecond))
	m.Open(context.Background(), testDoc(), 300)

	m.Start(context.Background())
	defer m.Stop()

	m.PlaybackChanged(playback.Snapshot{Index: 5, WordsRead: 5, WPM: 300})
	m.PlaybackCompleted(playback.Snapshot{Index: 99, WordsRead: 99, Completed: true})
	m.Flush(context.Background())
	time.Sleep(80 * time.Millisecond)

	// The in-memory record is still authoritative.
	if got := m.Session(); got.ID == "" || !got.Completed {
		t.Fatalf("manager state lost after persistence failures: %+v", got)
	}
}
