package testutil

import (
	"testing"

	"github.com/nhle/teamflow/internal/cache"
)

// NewTestCache creates an in-memory cache and closes it when the test
// completes.
func NewTestCache(t *testing.T, opts ...cache.Option) *cache.Cache {
	t.Helper()

	c, err := cache.New(opts...)
	if err != nil {
		t.Fatalf("creating test cache: %v", err)
	}

	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("closing test cache: %v", err)
		}
	})

	return c
}
