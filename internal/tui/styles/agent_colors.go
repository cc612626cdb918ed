package styles

import (
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
)

// AgentColorPalette is a curated ANSI 256 palette for stable sender colors.
// Red slots are left to error text.
var AgentColorPalette = []string{
	"33", "39", "45", "69", "75", "81", "87", "99",
	"111", "117", "123", "147", "153", "159", "183", "189",
}

// AgentColorMapper resolves a deterministic color per user id and caches it.
type AgentColorMapper struct {
	palette []string

	mu         sync.RWMutex
	colorCache map[string]string
}

// NewAgentColorMapper returns a mapper over palette, or the default palette
// when palette is empty.
func NewAgentColorMapper(palette []string) *AgentColorMapper {
	if len(palette) == 0 {
		palette = AgentColorPalette
	}
	paletteCopy := make([]string, len(palette))
	copy(paletteCopy, palette)

	return &AgentColorMapper{
		palette:    paletteCopy,
		colorCache: make(map[string]string, 64),
	}
}

// ColorCode returns the ANSI-256 color code selected for userID.
func (m *AgentColorMapper) ColorCode(userID string) string {
	key := normalizeUser(userID)

	m.mu.RLock()
	if colorCode, ok := m.colorCache[key]; ok {
		m.mu.RUnlock()
		return colorCode
	}
	m.mu.RUnlock()

	colorCode := m.palette[hashToPalette(key, len(m.palette))]

	m.mu.Lock()
	m.colorCache[key] = colorCode
	m.mu.Unlock()

	return colorCode
}

func normalizeUser(userID string) string {
	normalized := strings.ToLower(strings.TrimSpace(userID))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}

func hashToPalette(key string, paletteLen int) int {
	if paletteLen == 0 {
		return 0
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(paletteLen))
}

// ContrastingTextColor picks black or white text for an ANSI-256 background.
func ContrastingTextColor(code string) string {
	index, err := strconv.Atoi(code)
	if err != nil {
		return "231"
	}

	r, g, b := ansi256ToRGB(index)
	brightness := (299*r + 587*g + 114*b) / 1000
	if brightness >= 150 {
		return "16"
	}
	return "231"
}

func ansi256ToRGB(index int) (int, int, int) {
	if index < 0 {
		return 255, 255, 255
	}

	if index < 16 {
		table := [16][3]int{
			{0, 0, 0}, {128, 0, 0}, {0, 128, 0}, {128, 128, 0},
			{0, 0, 128}, {128, 0, 128}, {0, 128, 128}, {192, 192, 192},
			{128, 128, 128}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
			{0, 0, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
		}
		return table[index][0], table[index][1], table[index][2]
	}

	if index <= 231 {
		cube := index - 16
		return channelValue(cube / 36), channelValue((cube / 6) % 6), channelValue(cube % 6)
	}

	if index <= 255 {
		gray := 8 + (index-232)*10
		return gray, gray, gray
	}

	return 255, 255, 255
}

func channelValue(v int) int {
	if v == 0 {
		return 0
	}
	return 55 + v*40
}
