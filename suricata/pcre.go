package suricata

import "regexp"

// Pcre is a `pcre:"/regex/flags";` rule option. The corpus carries no
// PCRE-compatible regex engine (none of the retrieved repos import
// one), so this is the one payload-option matcher built on the
// standard library's regexp — documented as a standard-library gap in
// DESIGN.md rather than silently reached for.
type Pcre struct {
	Re       *regexp.Regexp
	Relative bool
}

// Check runs the compiled pattern against payload from lastPos onward
// (or the whole payload, if not Relative).
func (p Pcre) Check(payload []byte, lastPos int) bool {
	if p.Re == nil {
		return false
	}
	start := 0
	if p.Relative {
		start = lastPos
	}
	if start > len(payload) {
		return false
	}
	return p.Re.Match(payload[start:])
}
