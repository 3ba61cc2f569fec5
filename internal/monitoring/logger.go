package monitoring

import "log"

// Logf is the package-level diagnostic logger for the density pipeline. It
// defaults to log.Printf but may be replaced by SetLogger, so tests can mute
// it and callers can redirect engine diagnostics (sampler fallbacks,
// insufficient-data warnings) into their own log stream.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
