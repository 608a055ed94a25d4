package telemetry

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// forget drops names from the instrument registry so a test can be run repeatedly.
func forget(t *testing.T, names ...string) {
	t.Helper()

	drop := func() {
		registeredMu.Lock()
		defer registeredMu.Unlock()
		for _, name := range names {
			delete(registered, name)
		}
	}
	drop()
	t.Cleanup(drop)
}
