// Package model defines shared data structures.
package model

import "time"

// Config defines reading settings.
type Config struct {
	WPM            int
	Preset         string
	VowelColor     string
	ConsonantColor string
	Theme          string
	Notify         bool
}

// Word is a single display unit of a document. Syllables holds the
// hyphenation split of Text; VowelIndices holds, per syllable, the rune
// positions of its vowels.
type Word struct {
	Text         string
	Syllables    []string
	VowelIndices [][]int
}

// Document describes an imported text.
type Document struct {
	ID        string
	Title     string
	Hash      string
	WordCount int
	CreatedAt time.Time
}

// ReadingSession captures reading progress through a document.
type ReadingSession struct {
	ID               string
	DocumentID       string
	CurrentWordIndex int
	TotalWords       int
	WordsRead        int
	TimeSpentMs      int64
	SpeedWPM         int
	LastUpdated      time.Time
	Completed        bool
}

// DocumentProgress pairs a document with its latest session for reporting.
type DocumentProgress struct {
	Document  Document
	WordsRead int
	Position  int
	SpeedWPM  int
	TimeMs    int64
	Completed bool
}

// ReadingSummary aggregates reading activity across all documents.
type ReadingSummary struct {
	TotalDocuments     int
	TotalWordsRead     int
	TotalTimeMs        int64
	AverageWPM         float64
	DocumentsCompleted int
}
