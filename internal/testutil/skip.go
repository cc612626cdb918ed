// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"testing"
)

// RedisURLEnv names the Redis server used by integration tests.
const RedisURLEnv = "ROOMVIEW_TEST_REDIS_URL"

// SkipIfNoNetwork skips the test if ROOMVIEW_TEST_SKIP_NETWORK is set.
// Use this for tests that need TCP connectivity, which sandboxed
// environments may not have.
func SkipIfNoNetwork(t *testing.T) {
	t.Helper()
	if os.Getenv("ROOMVIEW_TEST_SKIP_NETWORK") != "" {
		t.Skip("skipping network test: ROOMVIEW_TEST_SKIP_NETWORK is set")
	}
}

// RedisURL returns the Redis server for integration tests, skipping the test
// when none is configured.
func RedisURL(t *testing.T) string {
	t.Helper()
	SkipIfNoNetwork(t)
	url := os.Getenv(RedisURLEnv)
	if url == "" {
		t.Skipf("skipping redis test: %s not set", RedisURLEnv)
	}
	return url
}
