package render

import (
	"reflect"
	"testing"

	"github.com/Aryan-Shakya/FlowRead/internal/model"
)

func sampleWord() model.Word {
	return model.Word{
		Text:         "reading",
		Syllables:    []string{"rea", "ding"},
		VowelIndices: [][]int{{1, 2}, {1}},
	}
}

func spanText(spans []Span) string {
	out := make([]rune, 0, len(spans))
	for _, s := range spans {
		out = append(out, s.Char)
	}
	return string(out)
}

func TestMapClassifiesVowelsPerSyllable(t *testing.T) {
	colors := Colors{Vowel: "#FF0000", Consonant: "#111111"}
	spans := Map(sampleWord(), colors, ThemeLight)

	if got := spanText(spans); got != "reading" {
		t.Fatalf("spans rebuild %q, want %q", got, "reading")
	}
	wantVowel := map[int]bool{1: true, 2: true, 4: true}
	for i, s := range spans {
		want := colors.Consonant
		if wantVowel[i] {
			want = colors.Vowel
		}
		if s.Color != want {
			t.Fatalf("span %d (%q) color %q, want %q", i, string(s.Char), s.Color, want)
		}
	}
}

func TestMapIsPure(t *testing.T) {
	colors := Colors{Vowel: "#FF0000", Consonant: "#000000"}

	first := Map(sampleWord(), colors, ThemeDark)
	second := Map(sampleWord(), colors, ThemeDark)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different spans:\n%v\n%v", first, second)
	}

	// Mutating a result must not leak into later calls.
	first[0].Color = "mutated"
	third := Map(sampleWord(), colors, ThemeDark)
	if !reflect.DeepEqual(second, third) {
		t.Fatal("mapper is not stateless")
	}
}

func TestMapDarkThemeFlipsOnlyPureBlack(t *testing.T) {
	colors := Colors{Vowel: "#E63946", Consonant: "#000000"}

	light := Map(sampleWord(), colors, ThemeLight)
	dark := Map(sampleWord(), colors, ThemeDark)

	for i := range dark {
		if light[i].Color == "#000000" {
			if dark[i].Color != "#FFFFFF" {
				t.Fatalf("span %d: pure black not flipped, got %q", i, dark[i].Color)
			}
			continue
		}
		if dark[i].Color != light[i].Color {
			t.Fatalf("span %d: non-black color changed %q -> %q", i, light[i].Color, dark[i].Color)
		}
	}
}

func TestMapDarkThemeLeavesNearBlackAlone(t *testing.T) {
	colors := Colors{Vowel: "#000001", Consonant: "#010101"}
	spans := Map(sampleWord(), colors, ThemeDark)
	for i, s := range spans {
		if s.Color == "#FFFFFF" {
			t.Fatalf("span %d: near-black was flipped", i)
		}
	}
}

func TestMapToleratesMissingVowelData(t *testing.T) {
	word := model.Word{
		Text:         "data",
		Syllables:    []string{"da", "ta"},
		VowelIndices: [][]int{{1}},
	}
	colors := Colors{Vowel: "#FF0000", Consonant: "#111111"}
	spans := Map(word, colors, ThemeLight)
	if len(spans) != 4 {
		t.Fatalf("expected 4 spans, got %d", len(spans))
	}
	if spans[3].Color != colors.Consonant {
		t.Fatalf("syllable without vowel data must render as consonants, got %q", spans[3].Color)
	}
}

func TestMapEmptyWord(t *testing.T) {
	if spans := Map(model.Word{}, Colors{}, ThemeLight); len(spans) != 0 {
		t.Fatalf("expected no spans, got %d", len(spans))
	}
}

func TestResolveDefaults(t *testing.T) {
	classic, _ := PresetByKey(DefaultPreset)

	got := Resolve(model.Config{})
	if got != classic.Colors {
		t.Fatalf("empty config should resolve to %s, got %+v", DefaultPreset, got)
	}

	got = Resolve(model.Config{Preset: "no-such-preset"})
	if got != classic.Colors {
		t.Fatalf("unknown preset should fall back to %s, got %+v", DefaultPreset, got)
	}
}

func TestResolvePresetAndOverrides(t *testing.T) {
	ocean, ok := PresetByKey("ocean")
	if !ok {
		t.Fatal("ocean preset missing from catalog")
	}
	if got := Resolve(model.Config{Preset: "ocean"}); got != ocean.Colors {
		t.Fatalf("preset not applied: %+v", got)
	}

	got := Resolve(model.Config{Preset: "ocean", VowelColor: "#ABCDEF"})
	if got.Vowel != "#ABCDEF" || got.Consonant != ocean.Colors.Consonant {
		t.Fatalf("single override misapplied: %+v", got)
	}

	got = Resolve(model.Config{Preset: CustomPreset, VowelColor: "#101010", ConsonantColor: "#202020"})
	if got.Vowel != "#101010" || got.Consonant != "#202020" {
		t.Fatalf("custom colors misapplied: %+v", got)
	}
}

func TestPresetsCatalogIsStable(t *testing.T) {
	list := Presets()
	if len(list) == 0 {
		t.Fatal("empty preset catalog")
	}
	if list[0].Key != DefaultPreset {
		t.Fatalf("expected %s first, got %s", DefaultPreset, list[0].Key)
	}

	list[0].Name = "mutated"
	again := Presets()
	if again[0].Name == "mutated" {
		t.Fatal("Presets must return a copy")
	}
}
