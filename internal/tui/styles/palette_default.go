package styles

// DefaultTheme is the baseline dark palette. The two band tones stand in
// for the light grey and white backgrounds of a graphical timeline.
var DefaultTheme = Theme{
	Name:         "default",
	AgentPalette: append([]string(nil), AgentColorPalette...),
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
	},
	Band: BandColors{
		Primary:   "236",
		Secondary: "234",
	},
	Text: TextColors{
		Header: "246",
		Body:   "252",
	},
	Chrome: ChromeColors{
		Header:          "111",
		Footer:          "110",
		ScrollbarTrack:  "238",
		ScrollbarThumb:  "246",
		Error:           "203",
		StatusFetching:  "220",
		StatusExhausted: "243",
	},
}
