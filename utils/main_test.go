package utils

import (
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

// TestMain wires the package's singletons for testing: the config loader
// refuses to run without a signing secret, and the Redis client dials
// whatever host the environment names, so an in-process server must be up
// before the first GetRedis call.
func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-signing-secret")

	mr, err := miniredis.Run()
	if err == nil {
		os.Setenv("REDIS_HOST", mr.Host())
		os.Setenv("REDIS_PORT", mr.Port())
	}

	code := m.Run()
	if mr != nil {
		mr.Close()
	}
	os.Exit(code)
}
