package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMainReturnsWhenRunSkipped(t *testing.T) {
	t.Setenv("SKIP_SERVER_RUN", "1")
	main()
}

func TestRunFailsOnMalformedProvidersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	if err := os.WriteFile(path, []byte("routes: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PROVIDERS_FILE", path)
	if code := run(); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunFailsOnUnknownStoreDriver(t *testing.T) {
	t.Setenv("PROVIDERS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("METRICS_ENABLED", "false")
	if code := run(); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}
