package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/roomview/internal/testutil"
)

func TestRedisStoreContract(t *testing.T) {
	store, err := OpenRedis(context.Background(), testutil.RedisURL(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	runStoreContract(t, store)
}

func TestOpenRedisRejectsBadURL(t *testing.T) {
	_, err := OpenRedis(context.Background(), "not a url")
	require.Error(t, err)
}
