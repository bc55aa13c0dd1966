// Package logger provides leveled diagnostic logging for the Lexica CLI.
// Debug and info lines appear only with the --verbose flag; warnings are
// always printed because they flag skipped chunks and failed documents.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type state struct {
	mu      sync.RWMutex
	verbose bool
	out     io.Writer
}

var std = state{out: os.Stderr}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	std.mu.Lock()
	std.verbose = v
	std.mu.Unlock()
}

// SetOutput redirects log output, which defaults to os.Stderr.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	std.out = w
	std.mu.Unlock()
}

func emit(always bool, prefix, format string, args ...any) {
	std.mu.RLock()
	defer std.mu.RUnlock()
	if !always && !std.verbose {
		return
	}
	fmt.Fprintf(std.out, prefix+format+"\n", args...)
}

// Debug prints a verbose-only trace line.
func Debug(format string, args ...any) {
	emit(false, "[DEBUG] ", format, args...)
}

// Info prints a verbose-only informational line.
func Info(format string, args ...any) {
	emit(false, "[INFO] ", format, args...)
}

// Warn prints a warning. Warnings are printed regardless of verbosity.
func Warn(format string, args ...any) {
	emit(true, "[WARN] ", format, args...)
}

// Section prints a verbose-only header separating pipeline stages.
func Section(name string) {
	emit(false, "", "\n=== %s ===", name)
}
