package model

import "sort"

func ptr(v float64) *float64 { return &v }

// presets maps a name to a constructor so every call hands out an
// independent Config.
var presets = map[string]func() Config{
	"separator": func() Config {
		return Config{
			Name:     "separator",
			Segments: 100,
			Plate: &Plate{
				Width:          91.85,
				Height:         44.20,
				Thickness:      2.28,
				CornerRadius:   15,
				CornerSegments: 50,
			},
			Notches: []Notch{{Width: 3, Height: 4, Depth: 1.2}},
		}
	},
	"siding-wedge": func() Config {
		return Config{
			Name:     "siding-wedge",
			Segments: 100,
			Taper: &Taper{
				Height:          151,
				Width:           43.5,
				TopThickness:    23,
				BottomThickness: 2,
				HoleClearance:   2,
			},
			Holes: []Hole{
				{FromTop: ptr(16.5), Diameter: 3.75},
				{FromBottom: ptr(21.5), Diameter: 3.75},
			},
			Corners: &Corners{Radius: 18, Top: true, Bottom: true},
			Relief: &Relief{
				TopOffset:    21,
				BottomOffset: 23,
				Depth:        5,
				Overlap:      0.2,
				Raised:       true,
				Marker:       &ReliefMarker{Width: 4, Height: 1.35},
			},
		}
	},
}

// Preset returns a fresh copy of the named built-in product.
func Preset(name string) (Config, bool) {
	fn, ok := presets[name]
	if !ok {
		return Config{}, false
	}
	return fn(), true
}

// PresetNames returns the built-in product names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
