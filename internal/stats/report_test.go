package stats

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Aryan-Shakya/FlowRead/internal/document"
	"github.com/Aryan-Shakya/FlowRead/internal/model"
	"github.com/Aryan-Shakya/FlowRead/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "flowread.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	base := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		words := document.Process("reading flows one word at a time")
		doc := model.Document{
			ID:        fmt.Sprintf("doc-%d", i+1),
			Title:     fmt.Sprintf("title-%d", i+1),
			Hash:      fmt.Sprintf("hash-%d", i+1),
			WordCount: len(words),
			CreatedAt: base,
		}
		if err := st.InsertDocument(ctx, doc, words); err != nil {
			t.Fatalf("insert document: %v", err)
		}
	}

	sessions := []model.ReadingSession{
		{
			ID: "sess-1", DocumentID: "doc-1", CurrentWordIndex: 3, TotalWords: 7,
			WordsRead: 3, TimeSpentMs: 10000, SpeedWPM: 300, LastUpdated: base,
		},
		{
			ID: "sess-2", DocumentID: "doc-2", CurrentWordIndex: 6, TotalWords: 7,
			WordsRead: 7, TimeSpentMs: 20000, SpeedWPM: 400,
			LastUpdated: base.Add(time.Minute), Completed: true,
		},
	}
	for _, sess := range sessions {
		if err := st.SaveSession(ctx, sess); err != nil {
			t.Fatalf("save session: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, 10)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Summary.TotalDocuments != 2 {
		t.Fatalf("total documents = %d, want 2", report.Summary.TotalDocuments)
	}
	if report.Summary.TotalWordsRead != 10 {
		t.Fatalf("total words read = %d, want 10", report.Summary.TotalWordsRead)
	}
	if report.Summary.DocumentsCompleted != 1 {
		t.Fatalf("documents completed = %d, want 1", report.Summary.DocumentsCompleted)
	}
	if len(report.Progress) != 2 {
		t.Fatalf("progress rows = %d, want 2", len(report.Progress))
	}
	if len(report.RecentSpeeds) != 2 || report.RecentSpeeds[0] != 300 || report.RecentSpeeds[1] != 400 {
		t.Fatalf("unexpected recent speeds: %v", report.RecentSpeeds)
	}
}
