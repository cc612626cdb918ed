package styles

// HighContrastTheme maximizes readability on low-quality terminals.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	AgentPalette: []string{
		"15", "14", "11", "13", "12", "10", "9", "208",
	},
	Base: BaseColors{
		Background: "16",
		Foreground: "15",
		Muted:      "250",
		Accent:     "14",
	},
	Band: BandColors{
		Primary:   "238",
		Secondary: "16",
	},
	Text: TextColors{
		Header: "14",
		Body:   "15",
	},
	Chrome: ChromeColors{
		Header:          "15",
		Footer:          "15",
		ScrollbarTrack:  "244",
		ScrollbarThumb:  "15",
		Error:           "9",
		StatusFetching:  "11",
		StatusExhausted: "250",
	},
}
