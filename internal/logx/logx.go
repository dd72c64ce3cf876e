// Package logx is the thin leveled-logging wrapper every other package in
// this module calls through, the same way heplify's decoder calls
// negbie/logp directly rather than the standard library log package.
package logx

import "github.com/negbie/logp"

// Selectors group related TRACE/DEBUG lines the way heplify groups
// "payload", "defrag", "layer" selectors under logp.Debug.
const (
	SelDissect  = "dissect"
	SelDriver   = "driver"
	SelICSRule  = "icsrule"
	SelSuricata = "suricata"
	SelFlowbits = "flowbits"
)

// Trace logs per-packet flow detail (spec severity TRACE).
func Trace(selector, format string, v ...interface{}) {
	logp.Debug(selector, format, v...)
}

// Debug logs protocol-dispatch decisions (spec severity DEBUG).
func Debug(selector, format string, v ...interface{}) {
	logp.Debug(selector, format, v...)
}

// Warn logs boundary misuse (spec severity WARN): null FFI pointers,
// malformed rule lines that were skipped, discarded duplicate frames.
func Warn(format string, v ...interface{}) {
	logp.Warn(format, v...)
}

// Error logs rule parse failures that aborted a whole load (spec
// severity ERROR).
func Error(format string, v ...interface{}) {
	logp.Err(format, v...)
}
