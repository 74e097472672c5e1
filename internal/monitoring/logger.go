// Package monitoring carries the run's diagnostics: a swappable progress
// logger and a Prometheus collector describing what a run produced.
package monitoring

import "log"

// Logf receives every progress line a run prints. It defaults to log.Printf.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger redirects progress output. nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
