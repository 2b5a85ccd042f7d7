// Package document imports text files and prepares their words for
// paced display.
package document

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"github.com/Aryan-Shakya/FlowRead/internal/model"
)

// FromFile reads a text file and builds a document plus its processed
// words. An empty title falls back to the file name without extension.
func FromFile(path, title string) (model.Document, []model.Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, nil, err
	}
	words := Process(string(data))
	if len(words) == 0 {
		return model.Document{}, nil, fmt.Errorf("document has no words")
	}
	if title == "" {
		title = TitleFromPath(path)
	}
	doc := model.Document{
		ID:        uuid.New().String(),
		Title:     title,
		Hash:      hashBytes(data),
		WordCount: len(words),
		CreatedAt: time.Now().UTC(),
	}
	return doc, words, nil
}

// TitleFromPath derives a document title from a file path.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func hashBytes(data []byte) string {
	h := blake3.New(32, nil)
	// hash.Hash writes never fail.
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
