package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAvatarCacheSharesAndEvicts(t *testing.T) {
	built := 0
	cache := NewAvatarCache(2, func(userID, name string) *Avatar {
		built++
		return &Avatar{UserID: userID, Initials: Initials(name, userID), Color: "#fff"}
	})

	a1 := cache.Avatar("@a:local", "Ann")
	a2 := cache.Avatar("@a:local", "Ann")
	require.Same(t, a1, a2)
	require.Equal(t, 1, built)

	cache.Avatar("@b:local", "Bo")
	cache.Avatar("@a:local", "Ann")
	cache.Avatar("@c:local", "Cy")
	require.Equal(t, 2, cache.Len())

	// b was least recently used when c arrived
	require.Equal(t, 3, built)
	require.Same(t, a1, cache.Avatar("@a:local", "Ann"))
	require.Equal(t, 3, built)

	cache.Avatar("@b:local", "Bo")
	require.Equal(t, 4, built)
	require.Same(t, a1, cache.Avatar("@a:local", "Ann"), "c was evicted, not a")

	require.Equal(t, "A", a1.Initials, "evicted avatars stay usable")
}

func TestInitials(t *testing.T) {
	require.Equal(t, "AL", Initials("Ada Lovelace", "@ada:local"))
	require.Equal(t, "B", Initials("bob", "@bob:local"))
	require.Equal(t, "Z", Initials("", "@zed:local"))
	require.Equal(t, "JD", Initials("  (john) doe smith", "@j:local"))
	require.Equal(t, "?", Initials("", ""))
}
