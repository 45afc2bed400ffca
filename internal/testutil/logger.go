package testutil

import (
	"bytes"
	"log/slog"

	"github.com/preston-bernstein/prop-grader/internal/logging"
)

// NewBufferLogger builds a debug-level text logger the way the service does
// and returns the buffer it writes to.
func NewBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.NewLogger(logging.Config{Level: "debug", Format: "text", Output: &buf}), &buf
}
