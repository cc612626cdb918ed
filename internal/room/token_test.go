package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	seq, err := parseToken("s42")
	require.NoError(t, err)
	require.Equal(t, int64(42), seq)

	for _, bad := range []string{"", "42", "s", "s-1", "sx"} {
		_, err := parseToken(bad)
		require.ErrorIs(t, err, ErrInvalidToken, bad)
	}
}

func TestPageTokens(t *testing.T) {
	tests := []struct {
		name  string
		dir   Direction
		token string
		seqs  []int64
		start string
		end   string
	}{
		{"empty room", Backward, "", nil, "s0", "s0"},
		{"live edge backward", Backward, "", []int64{9, 8, 7}, "s10", "s7"},
		{"continued backward", Backward, "s7", []int64{6, 5}, "s7", "s5"},
		{"exhausted backward", Backward, "s1", nil, "s1", "s1"},
		{"forward from start", Forward, "", []int64{1, 2}, "s0", "s3"},
		{"forward caught up", Forward, "s10", nil, "s10", "s10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := pageTokens(tt.dir, tt.token, tt.seqs)
			require.Equal(t, tt.start, start)
			require.Equal(t, tt.end, end)
		})
	}
}

func TestWithRetryRetriesBusyErrors(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestWithRetryStopsOnOtherErrors(t *testing.T) {
	attempts := 0
	boom := errors.New("constraint failed")
	err := withRetry(context.Background(), 5, time.Millisecond, func() error {
		attempts++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, attempts)
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := withRetry(ctx, 3, time.Millisecond, func() error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}
