package room

import (
	"fmt"
	"strconv"
	"strings"
)

// Tokens name the position just before a sequence number: "s42" sits between
// events 41 and 42. Backward pages from s42 return seq < 42, forward pages
// return seq >= 42.

const tokenPrefix = "s"

func formatToken(seq int64) string {
	return tokenPrefix + strconv.FormatInt(seq, 10)
}

func parseToken(token string) (int64, error) {
	raw := strings.TrimSpace(token)
	if !strings.HasPrefix(raw, tokenPrefix) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(raw, tokenPrefix), 10, 64)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	return seq, nil
}

// pageTokens derives Start/End for a page given the request token and the
// sequence numbers of the returned events in response order. An empty token
// with no events means an empty room, whose only position is s0.
func pageTokens(dir Direction, token string, seqs []int64) (string, string) {
	start := token
	if start == "" {
		start = formatToken(0)
	}
	if len(seqs) == 0 {
		return start, start
	}
	last := seqs[len(seqs)-1]
	if dir == Backward {
		if token == "" {
			start = formatToken(seqs[0] + 1)
		}
		return start, formatToken(last)
	}
	return start, formatToken(last + 1)
}
