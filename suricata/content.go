package suricata

import "bytes"

// PosKind discriminates which positional constraint a Content option
// carries, grounded on original_source's content.rs PosKey enum.
type PosKind int

const (
	PosNotSet PosKind = iota
	PosStartsWith
	PosEndsWith
	PosAbsolute
	PosRelative
)

// Content is one `content:"...";` rule option with its positional
// modifiers (depth/offset/within/distance) and case sensitivity.
type Content struct {
	Pattern []byte
	Nocase  bool
	Pos     PosKind

	// PosAbsolute
	Depth  int
	Offset int

	// PosRelative
	Within   int
	Distance int
}

// normalize returns b lowercased when Nocase is set, matching the
// original's nocase handling by lowering both pattern and payload
// before comparison.
func (c Content) normalize(b []byte) []byte {
	if !c.Nocase {
		return b
	}
	return bytes.ToLower(b)
}

// Match attempts to find c within payload given the running cursor
// lastPos (the end of the previous content match, or 0 if this is the
// first content option). It returns the new cursor position (the end
// of this match) and whether a match was found, reproducing
// content.rs's exact positional semantics:
//
//   - NotSet: plain bytes.Index search from lastPos onward.
//   - StartsWith: payload must begin with the pattern (depth implied
//     by pattern length, offset 0).
//   - EndsWith: payload must end with the pattern.
//   - Absolute{depth,offset}: search the window
//     [offset, offset+depth) of the payload from its start.
//   - Relative{within,distance}: search the window
//     [lastPos+distance, lastPos+distance+within) relative to the
//     running cursor.
func (c Content) Match(payload []byte, lastPos int) (int, bool) {
	needle := c.normalize(c.Pattern)
	hay := c.normalize(payload)

	switch c.Pos {
	case PosNotSet:
		if lastPos > len(hay) {
			return lastPos, false
		}
		idx := bytes.Index(hay[lastPos:], needle)
		if idx < 0 {
			return lastPos, false
		}
		return lastPos + idx + len(needle), true

	case PosStartsWith:
		if !bytes.HasPrefix(hay, needle) {
			return lastPos, false
		}
		return len(needle), true

	case PosEndsWith:
		if !bytes.HasSuffix(hay, needle) {
			return lastPos, false
		}
		return len(hay), true

	case PosAbsolute:
		start := c.Offset
		end := c.Offset + c.Depth
		if start < 0 {
			start = 0
		}
		if end > len(hay) {
			end = len(hay)
		}
		if start > end {
			return lastPos, false
		}
		idx := bytes.Index(hay[start:end], needle)
		if idx < 0 {
			return lastPos, false
		}
		return start + idx + len(needle), true

	case PosRelative:
		start := lastPos + c.Distance
		end := start + c.Within
		if start < 0 {
			start = 0
		}
		if start > len(hay) {
			return lastPos, false
		}
		if end > len(hay) {
			end = len(hay)
		}
		if start > end {
			return lastPos, false
		}
		idx := bytes.Index(hay[start:end], needle)
		if idx < 0 {
			return lastPos, false
		}
		return start + idx + len(needle), true

	default:
		return lastPos, false
	}
}
