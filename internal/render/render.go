// Package render maps words to colored character spans for the reader
// display. The mapping is pure: word structure in, spans out, no state.
package render

import (
	"github.com/Aryan-Shakya/FlowRead/internal/model"
)

// Theme selects the display background the colors sit on.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const (
	pureBlack = "#000000"
	pureWhite = "#FFFFFF"
)

// Colors is the effective vowel/consonant pair used for one render.
type Colors struct {
	Vowel     string
	Consonant string
}

// Span is one display character with its resolved color.
type Span struct {
	Char  rune
	Color string
}

// Map renders a word into colored spans. Syllables are concatenated in
// order; each character is classified through its syllable's vowel
// index set. On a dark theme the literal pure-black color flips to
// pure white so text stays visible; nothing else is adjusted.
func Map(word model.Word, colors Colors, theme Theme) []Span {
	total := 0
	for _, syl := range word.Syllables {
		total += len([]rune(syl))
	}
	spans := make([]Span, 0, total)

	for si, syl := range word.Syllables {
		var vowels map[int]bool
		if si < len(word.VowelIndices) {
			vowels = make(map[int]bool, len(word.VowelIndices[si]))
			for _, idx := range word.VowelIndices[si] {
				vowels[idx] = true
			}
		}
		for ci, r := range []rune(syl) {
			color := colors.Consonant
			if vowels[ci] {
				color = colors.Vowel
			}
			spans = append(spans, Span{Char: r, Color: themed(color, theme)})
		}
	}
	return spans
}

func themed(color string, theme Theme) string {
	if theme == ThemeDark && color == pureBlack {
		return pureWhite
	}
	return color
}
