package testsupport

import (
	"testing"

	"scriber/internal/config"
	"scriber/internal/jobs"
)

// MustOpenStore opens the job store for cfg and closes it when the
// test finishes.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open job store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close job store: %v", err)
		}
	})
	return store
}
