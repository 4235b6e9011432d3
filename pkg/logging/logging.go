// Package logging provides the default slog handler for casgraph
// command-line tools. Library packages never log on their own; they
// receive a *slog.Logger through their options when they need one.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a colorized stderr logger at the given level.
func New(level slog.Leveler) *slog.Logger {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})
	return slog.New(handler)
}
