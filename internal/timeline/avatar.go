package timeline

import (
	"container/list"
	"strings"
	"sync"
	"unicode"
)

const defaultAvatarCacheSize = 256

// Avatar is the picture drawn beside a block. Blocks from the same sender
// share one Avatar; it lives as long as any block references it.
type Avatar struct {
	UserID   string
	Initials string
	Color    string
}

// AvatarSource hands out shared avatars.
type AvatarSource interface {
	Avatar(userID, name string) *Avatar
}

// AvatarCache keeps the most recently used avatars. Evicted avatars stay
// valid for the blocks still holding them; a later lookup builds a new one.
type AvatarCache struct {
	mu       sync.Mutex
	capacity int
	build    func(userID, name string) *Avatar
	order    *list.List
	entries  map[string]*list.Element
}

type avatarCacheEntry struct {
	key    string
	avatar *Avatar
}

var _ AvatarSource = (*AvatarCache)(nil)

// NewAvatarCache returns a cache holding up to capacity avatars. A nil build
// makes initials-only avatars.
func NewAvatarCache(capacity int, build func(userID, name string) *Avatar) *AvatarCache {
	if capacity <= 0 {
		capacity = defaultAvatarCacheSize
	}
	if build == nil {
		build = func(userID, name string) *Avatar {
			return &Avatar{UserID: userID, Initials: Initials(name, userID)}
		}
	}
	return &AvatarCache{
		capacity: capacity,
		build:    build,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

func (c *AvatarCache) Avatar(userID, name string) *Avatar {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[userID]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*avatarCacheEntry).avatar
	}

	entry := &avatarCacheEntry{key: userID, avatar: c.build(userID, name)}
	c.entries[userID] = c.order.PushFront(entry)

	for c.order.Len() > c.capacity {
		last := c.order.Back()
		if last == nil {
			break
		}
		c.order.Remove(last)
		delete(c.entries, last.Value.(*avatarCacheEntry).key)
	}
	return entry.avatar
}

func (c *AvatarCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Initials picks up to two letters for an avatar: the first letters of the
// first two words of name, else the first letter of the user id localpart.
func Initials(name, userID string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) > 0 {
		return string(out)
	}
	for _, r := range strings.TrimPrefix(userID, "@") {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return string(unicode.ToUpper(r))
		}
	}
	return "?"
}
