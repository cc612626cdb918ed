package styles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColorCodeIsStable(t *testing.T) {
	m := NewAgentColorMapper(nil)
	first := m.ColorCode("@alice:local")
	require.Equal(t, first, m.ColorCode("@alice:local"))
	require.Equal(t, first, m.ColorCode("  @ALICE:local "))
	require.Contains(t, AgentColorPalette, first)
}

func TestColorCodeUsesGivenPalette(t *testing.T) {
	m := NewAgentColorMapper([]string{"9"})
	require.Equal(t, "9", m.ColorCode("@bob:local"))
	require.Equal(t, "9", m.ColorCode(""))
}

func TestContrastingTextColor(t *testing.T) {
	require.Equal(t, "16", ContrastingTextColor("15"))
	require.Equal(t, "231", ContrastingTextColor("16"))
	require.Equal(t, "231", ContrastingTextColor("not-a-number"))
	require.Equal(t, "16", ContrastingTextColor("231"))
}

func TestByName(t *testing.T) {
	theme, ok := ByName("high-contrast")
	require.True(t, ok)
	require.Equal(t, "high-contrast", theme.Name)

	theme, ok = ByName("matrix")
	require.False(t, ok)
	require.Equal(t, "default", theme.Name)
}
