// Package session manages the lifecycle of one reading session: create
// or resume, periodic saves while reading, a single completion push,
// and a best-effort flush on exit.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Aryan-Shakya/FlowRead/internal/logger"
	"github.com/Aryan-Shakya/FlowRead/internal/model"
	"github.com/Aryan-Shakya/FlowRead/internal/playback"
)

// Store is the persistence surface the manager needs.
type Store interface {
	SaveSession(ctx context.Context, sess model.ReadingSession) error
	LatestSession(ctx context.Context, documentID string) (model.ReadingSession, error)
}

// Option configures the manager.
type Option func(*Manager)

// WithSaveInterval overrides the periodic save cadence.
func WithSaveInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.saveInterval = d
	}
}

// Manager owns the single in-flight session record for the current
// document. It observes playback snapshots and decides when to persist:
// every save interval once the reader moved past the first word, once
// on completion, and once on exit. Persistence failures are logged and
// dropped; the in-memory state stays authoritative.
type Manager struct {
	store        Store
	log          *logger.Logger
	saveInterval time.Duration

	mu              sync.Mutex
	sess            model.ReadingSession
	active          bool
	latest          playback.Snapshot
	haveSnap        bool
	completedPushed bool

	pushCtx context.Context
	running bool
	cancel  context.CancelFunc
}

// New creates a manager with the given store.
func New(store Store, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:        store,
		log:          log,
		saveInterval: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open resumes the latest non-completed session for the document or
// creates a fresh one. The second return reports whether an existing
// session was resumed. A resumed session restores position and speed
// only; statistics restart at zero and overwrite the persisted totals
// on the next save.
func (m *Manager) Open(ctx context.Context, doc model.Document, defaultWPM int) (model.ReadingSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.store.LatestSession(ctx, doc.ID)
	if err == nil && !existing.Completed {
		m.sess = existing
		m.active = true
		m.haveSnap = false
		m.completedPushed = false
		m.log.Debugf("resuming session %s at word %d", existing.ID, existing.CurrentWordIndex)
		return existing, true
	}
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		// Load failure degrades to a fresh session.
		m.log.Errorf("loading session for document %s: %v", doc.ID, err)
	}

	sess := model.ReadingSession{
		ID:          uuid.New().String(),
		DocumentID:  doc.ID,
		TotalWords:  doc.WordCount,
		SpeedWPM:    defaultWPM,
		LastUpdated: time.Now().UTC(),
	}
	m.sess = sess
	m.active = true
	m.haveSnap = false
	m.completedPushed = false
	if err := m.store.SaveSession(ctx, sess); err != nil {
		m.log.Errorf("creating session: %v", err)
	}
	return sess, false
}

// Session returns the current record.
func (m *Manager) Session() model.ReadingSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// PlaybackChanged records the newest playback snapshot. Saving is
// deferred to the periodic loop.
func (m *Manager) PlaybackChanged(snap playback.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = snap
	m.haveSnap = true
}

// PlaybackCompleted pushes the completed record. At most one completion
// is persisted per opened session; the lifecycle ends there and later
// snapshots are not saved.
func (m *Manager) PlaybackCompleted(snap playback.Snapshot) {
	m.mu.Lock()
	if !m.active || m.completedPushed {
		m.mu.Unlock()
		return
	}
	m.latest = snap
	m.haveSnap = true
	m.completedPushed = true
	rec := m.recordLocked(snap, true)
	m.sess = rec
	ctx := m.pushCtx
	m.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	if err := m.store.SaveSession(ctx, rec); err != nil {
		m.log.Errorf("saving completed session: %v", err)
		return
	}
	m.log.Infof("session %s completed after %d words", rec.ID, rec.WordsRead)
}

// Start begins the periodic save loop. Non-blocking.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.log.Warnf("session saver already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	m.pushCtx = ctx
	m.cancel = cancel
	m.running = true

	go m.loop(childCtx)

	m.log.Debugf("session saver started (every %s)", m.saveInterval)
}

// Stop shuts down the periodic save loop.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	m.cancel()
	m.running = false
	m.log.Debugf("session saver stopped")
}

// Flush pushes a final non-completed update synchronously, best-effort.
// It is a no-op before any playback activity and after completion.
func (m *Manager) Flush(ctx context.Context) {
	m.mu.Lock()
	if !m.active || !m.haveSnap || m.completedPushed {
		m.mu.Unlock()
		return
	}
	rec := m.recordLocked(m.latest, false)
	m.sess = rec
	m.mu.Unlock()

	if err := m.store.SaveSession(ctx, rec); err != nil {
		m.log.Errorf("final session save: %v", err)
	}
}

func (m *Manager) loop(ctx context.Context) {
	ticker := time.NewTicker(m.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick runs one periodic save cycle. Nothing is pushed until the reader
// has progressed past the first word.
func (m *Manager) tick(ctx context.Context) {
	m.mu.Lock()
	if !m.active || !m.haveSnap || m.completedPushed || m.latest.Index == 0 {
		m.mu.Unlock()
		return
	}
	rec := m.recordLocked(m.latest, false)
	m.sess = rec
	m.mu.Unlock()

	if err := m.store.SaveSession(ctx, rec); err != nil {
		m.log.Errorf("periodic session save: %v", err)
		return
	}
	m.log.Debugf("session %s saved at word %d", rec.ID, rec.CurrentWordIndex)
}

func (m *Manager) recordLocked(snap playback.Snapshot, completed bool) model.ReadingSession {
	rec := m.sess
	rec.CurrentWordIndex = snap.Index
	rec.WordsRead = snap.WordsRead
	rec.TimeSpentMs = snap.TimeSpentMs
	rec.SpeedWPM = snap.WPM
	rec.LastUpdated = time.Now().UTC()
	rec.Completed = completed
	return rec
}
