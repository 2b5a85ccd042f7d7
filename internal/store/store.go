// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Aryan-Shakya/FlowRead/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for documents and reading sessions.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			hash TEXT NOT NULL,
			word_count INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS document_words (
			document_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			text TEXT NOT NULL,
			syllables TEXT NOT NULL,
			vowel_indices TEXT NOT NULL,
			PRIMARY KEY (document_id, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS reading_sessions (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			current_word_index INTEGER NOT NULL,
			total_words INTEGER NOT NULL,
			words_read INTEGER NOT NULL,
			time_spent_ms INTEGER NOT NULL,
			speed_wpm INTEGER NOT NULL,
			last_updated TEXT NOT NULL,
			completed INTEGER NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_hash ON documents(hash);`,
		`CREATE INDEX IF NOT EXISTS idx_reading_sessions_document ON reading_sessions(document_id, last_updated);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertDocument stores a document and its processed words.
func (s *Store) InsertDocument(ctx context.Context, doc model.Document, words []model.Word) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, hash, word_count, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		doc.ID,
		doc.Title,
		doc.Hash,
		doc.WordCount,
		doc.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	if len(words) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO document_words (document_id, idx, text, syllables, vowel_indices)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, w := range words {
			syl, err := json.Marshal(w.Syllables)
			if err != nil {
				return err
			}
			vow, err := json.Marshal(w.VowelIndices)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, doc.ID, i, w.Text, string(syl), string(vow)); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetDocument loads a document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, hash, word_count, created_at FROM documents WHERE id = ?`, id)
	return scanDocument(row, id)
}

// FindDocumentByHash looks up a document by content hash.
func (s *Store) FindDocumentByHash(ctx context.Context, hash string) (model.Document, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, hash, word_count, created_at FROM documents WHERE hash = ?`, hash)
	doc, err := scanDocument(row, hash)
	if err != nil {
		if isNotFound(err) {
			return model.Document{}, false, nil
		}
		return model.Document{}, false, err
	}
	return doc, true, nil
}

// ResolveDocument resolves a user-supplied reference to a document.
// It tries an exact id, then an exact title, then a unique id prefix.
func (s *Store) ResolveDocument(ctx context.Context, ref string) (model.Document, error) {
	doc, err := s.GetDocument(ctx, ref)
	if err == nil {
		return doc, nil
	}
	if !isNotFound(err) {
		return model.Document{}, err
	}

	docs, err := s.ListDocuments(ctx)
	if err != nil {
		return model.Document{}, err
	}
	for _, d := range docs {
		if d.Title == ref {
			return d, nil
		}
	}
	var matches []model.Document
	for _, d := range docs {
		if len(ref) > 0 && len(d.ID) >= len(ref) && d.ID[:len(ref)] == ref {
			matches = append(matches, d)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return model.Document{}, fmt.Errorf("document reference %q is ambiguous", ref)
	}
	return model.Document{}, fmt.Errorf("document %q: %w", ref, model.ErrNotFound)
}

// ListDocuments returns all documents, newest import first.
func (s *Store) ListDocuments(ctx context.Context) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, hash, word_count, created_at FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		var createdAt string
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Hash, &doc.WordCount, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		doc.CreatedAt = parsed
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes a document, its words, and its sessions.
func (s *Store) DeleteDocument(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("document %q: %w", id, model.ErrNotFound)
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM document_words WHERE document_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM reading_sessions WHERE document_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// GetWords loads the processed words of a document in display order.
func (s *Store) GetWords(ctx context.Context, documentID string) ([]model.Word, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, syllables, vowel_indices FROM document_words
		 WHERE document_id = ? ORDER BY idx ASC`, documentID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var words []model.Word
	for rows.Next() {
		var w model.Word
		var syl, vow string
		if err := rows.Scan(&w.Text, &syl, &vow); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(syl), &w.Syllables); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(vow), &w.VowelIndices); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// SaveSession inserts or updates a reading session.
func (s *Store) SaveSession(ctx context.Context, sess model.ReadingSession) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reading_sessions (id, document_id, current_word_index, total_words, words_read, time_spent_ms, speed_wpm, last_updated, completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			current_word_index = excluded.current_word_index,
			total_words = excluded.total_words,
			words_read = excluded.words_read,
			time_spent_ms = excluded.time_spent_ms,
			speed_wpm = excluded.speed_wpm,
			last_updated = excluded.last_updated,
			completed = excluded.completed`,
		sess.ID,
		sess.DocumentID,
		sess.CurrentWordIndex,
		sess.TotalWords,
		sess.WordsRead,
		sess.TimeSpentMs,
		sess.SpeedWPM,
		sess.LastUpdated.Format(time.RFC3339Nano),
		sess.Completed,
	)
	return err
}

// LatestSession returns the most recently updated session for a document.
func (s *Store) LatestSession(ctx context.Context, documentID string) (model.ReadingSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, current_word_index, total_words, words_read, time_spent_ms, speed_wpm, last_updated, completed
		 FROM reading_sessions
		 WHERE document_id = ?
		 ORDER BY last_updated DESC
		 LIMIT 1`, documentID)

	var sess model.ReadingSession
	var lastUpdated string
	err := row.Scan(&sess.ID, &sess.DocumentID, &sess.CurrentWordIndex, &sess.TotalWords,
		&sess.WordsRead, &sess.TimeSpentMs, &sess.SpeedWPM, &lastUpdated, &sess.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReadingSession{}, fmt.Errorf("session for document %q: %w", documentID, model.ErrNotFound)
	}
	if err != nil {
		return model.ReadingSession{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, lastUpdated)
	if err != nil {
		return model.ReadingSession{}, err
	}
	sess.LastUpdated = parsed
	return sess, nil
}

// Summary aggregates reading activity across all documents.
func (s *Store) Summary(ctx context.Context) (model.ReadingSummary, error) {
	var sum model.ReadingSummary
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`)
	if err := row.Scan(&sum.TotalDocuments); err != nil {
		return model.ReadingSummary{}, err
	}
	row = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(words_read), 0), COALESCE(SUM(time_spent_ms), 0),
			COALESCE(AVG(CASE WHEN speed_wpm > 0 THEN speed_wpm END), 0),
			COUNT(DISTINCT CASE WHEN completed = 1 THEN document_id END)
		 FROM reading_sessions`)
	if err := row.Scan(&sum.TotalWordsRead, &sum.TotalTimeMs, &sum.AverageWPM, &sum.DocumentsCompleted); err != nil {
		return model.ReadingSummary{}, err
	}
	return sum, nil
}

// ListProgress returns every document with its latest session, if any,
// newest import first.
func (s *Store) ListProgress(ctx context.Context) ([]model.DocumentProgress, error) {
	query := `WITH latest AS (
		SELECT document_id, MAX(last_updated) AS last_updated
		FROM reading_sessions
		GROUP BY document_id
	)
	SELECT d.id, d.title, d.hash, d.word_count, d.created_at,
		COALESCE(rs.words_read, 0), COALESCE(rs.current_word_index, 0),
		COALESCE(rs.speed_wpm, 0), COALESCE(rs.time_spent_ms, 0), COALESCE(rs.completed, 0)
	FROM documents d
	LEFT JOIN latest l ON l.document_id = d.id
	LEFT JOIN reading_sessions rs ON rs.document_id = l.document_id AND rs.last_updated = l.last_updated
	ORDER BY d.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.DocumentProgress
	for rows.Next() {
		var p model.DocumentProgress
		var createdAt string
		if err := rows.Scan(&p.Document.ID, &p.Document.Title, &p.Document.Hash, &p.Document.WordCount,
			&createdAt, &p.WordsRead, &p.Position, &p.SpeedWPM, &p.TimeMs, &p.Completed); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		p.Document.CreatedAt = parsed
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListRecentSpeeds returns the speeds of the most recent sessions in
// chronological order, skipping sessions without a recorded speed.
func (s *Store) ListRecentSpeeds(ctx context.Context, limit int) ([]int, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT speed_wpm FROM (
			SELECT speed_wpm, last_updated FROM reading_sessions
			WHERE speed_wpm > 0
			ORDER BY last_updated DESC
			LIMIT ?
		) ORDER BY last_updated ASC`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var speeds []int
	for rows.Next() {
		var wpm int
		if err := rows.Scan(&wpm); err != nil {
			return nil, err
		}
		speeds = append(speeds, wpm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return speeds, nil
}

func scanDocument(row *sql.Row, ref string) (model.Document, error) {
	var doc model.Document
	var createdAt string
	err := row.Scan(&doc.ID, &doc.Title, &doc.Hash, &doc.WordCount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, fmt.Errorf("document %q: %w", ref, model.ErrNotFound)
	}
	if err != nil {
		return model.Document{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Document{}, err
	}
	doc.CreatedAt = parsed
	return doc, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
