package document

import (
	"strings"
	"unicode"

	"github.com/Aryan-Shakya/FlowRead/internal/model"
)

// IsVowel reports whether r is one of a, e, i, o, u in either case.
// The letter y is never a vowel for highlighting purposes.
func IsVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// nucleus treats y as a vowel for syllable detection when it is not the
// first rune of the word (rhythm, syllable).
func nucleus(r rune, first bool) bool {
	if IsVowel(r) {
		return true
	}
	return !first && unicode.ToLower(r) == 'y'
}

// Split breaks a word into syllables. The split is a heuristic over
// vowel groups: a single consonant between groups starts the next
// syllable, a longer cluster is cut after its first consonant, and a
// trailing silent e is folded into the previous syllable. Words with a
// single vowel group come back whole.
func Split(word string) []string {
	runes := []rune(word)

	type span struct{ start, end int }
	var groups []span
	for i := 0; i < len(runes); {
		if !nucleus(runes[i], i == 0) {
			i++
			continue
		}
		j := i
		for j < len(runes) && nucleus(runes[j], j == 0) {
			j++
		}
		groups = append(groups, span{i, j})
		i = j
	}
	if len(groups) <= 1 {
		return []string{word}
	}

	var cuts []int
	for k := 0; k+1 < len(groups); k++ {
		gap := groups[k+1].start - groups[k].end
		if gap == 1 {
			cuts = append(cuts, groups[k].end)
		} else {
			cuts = append(cuts, groups[k].end+1)
		}
	}

	var parts []string
	prev := 0
	for _, c := range cuts {
		parts = append(parts, string(runes[prev:c]))
		prev = c
	}
	parts = append(parts, string(runes[prev:]))

	// A final syllable whose only vowel is a trailing e is silent
	// (make, edge); merge it back. Consonant-le endings stay their own
	// syllable (ap-ple, whis-tle).
	last := []rune(parts[len(parts)-1])
	if unicode.ToLower(last[len(last)-1]) == 'e' && vowelCount(last) == 1 &&
		!(len(last) >= 2 && unicode.ToLower(last[len(last)-2]) == 'l') {
		parts[len(parts)-2] += parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}
	return parts
}

func vowelCount(runes []rune) int {
	n := 0
	for _, r := range runes {
		if IsVowel(r) {
			n++
		}
	}
	return n
}

// VowelIndices returns the rune positions of vowels within a syllable.
func VowelIndices(syllable string) []int {
	indices := []int{}
	for i, r := range []rune(syllable) {
		if IsVowel(r) {
			indices = append(indices, i)
		}
	}
	return indices
}

// Analyze builds the display model for a single word. Hyphens inside
// the token are explicit syllable separators (the markup hyphenators
// emit) and win over the heuristic; the separators are dropped so the
// display text always equals the joined syllables.
func Analyze(text string) model.Word {
	syllables := markedSyllables(text)
	if syllables == nil {
		syllables = Split(text)
	} else {
		text = strings.Join(syllables, "")
	}
	vowels := make([][]int, len(syllables))
	for i, syl := range syllables {
		vowels[i] = VowelIndices(syl)
	}
	return model.Word{Text: text, Syllables: syllables, VowelIndices: vowels}
}

// markedSyllables splits hyphen markup, reporting nil unless the token
// carries at least two non-empty parts. Bare or dangling hyphens are
// left to the heuristic.
func markedSyllables(text string) []string {
	if !strings.Contains(text, "-") {
		return nil
	}
	parts := strings.Split(text, "-")
	syllables := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			syllables = append(syllables, part)
		}
	}
	if len(syllables) < 2 {
		return nil
	}
	return syllables
}

// Process tokenizes document content on whitespace and analyzes every word.
func Process(content string) []model.Word {
	fields := strings.Fields(content)
	words := make([]model.Word, 0, len(fields))
	for _, field := range fields {
		words = append(words, Analyze(field))
	}
	return words
}
