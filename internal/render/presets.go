package render

import "github.com/Aryan-Shakya/FlowRead/internal/model"

// Preset pairs a catalog key with its display name and colors.
type Preset struct {
	Key    string
	Name   string
	Colors Colors
}

// CustomPreset selects user-supplied colors instead of a catalog entry.
const CustomPreset = "custom"

// DefaultPreset is used when nothing is configured.
const DefaultPreset = "classic"

var presets = []Preset{
	{Key: "classic", Name: "Classic", Colors: Colors{Vowel: "#E63946", Consonant: "#000000"}},
	{Key: "ember", Name: "Ember", Colors: Colors{Vowel: "#FFB703", Consonant: "#9D0208"}},
	{Key: "ocean", Name: "Ocean", Colors: Colors{Vowel: "#48CAE4", Consonant: "#023E8A"}},
	{Key: "forest", Name: "Forest", Colors: Colors{Vowel: "#74C69D", Consonant: "#1B4332"}},
	{Key: "violet", Name: "Violet", Colors: Colors{Vowel: "#C77DFF", Consonant: "#3C096C"}},
	{Key: "mono", Name: "Mono", Colors: Colors{Vowel: "#000000", Consonant: "#6C757D"}},
}

// Presets returns the fixed catalog in display order.
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// PresetByKey looks up a catalog entry.
func PresetByKey(key string) (Preset, bool) {
	for _, p := range presets {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

// Resolve reduces the reading configuration to one effective color
// pair: the selected preset's colors, with any explicit overrides
// applied on top. The custom preset is all overrides over the default.
func Resolve(cfg model.Config) Colors {
	colors := mustPreset(DefaultPreset).Colors
	if p, ok := PresetByKey(cfg.Preset); ok {
		colors = p.Colors
	}
	if cfg.VowelColor != "" {
		colors.Vowel = cfg.VowelColor
	}
	if cfg.ConsonantColor != "" {
		colors.Consonant = cfg.ConsonantColor
	}
	return colors
}

func mustPreset(key string) Preset {
	p, ok := PresetByKey(key)
	if !ok {
		panic("unknown builtin preset: " + key)
	}
	return p
}
