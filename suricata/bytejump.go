package suricata

import "encoding/binary"

// NumType selects the radix a string-extracted number is parsed in.
type NumType int

const (
	NumDec NumType = iota
	NumHex
	NumOct
)

// ByteJump is a `byte_jump:...;` rule option: extract a number from the
// payload and move the running cursor by (that number, possibly scaled
// and aligned) bytes, grounded on original_source's byte_jump.rs.
type ByteJump struct {
	NumBytes   int
	Offset     int
	Relative   bool
	BigEndian  bool // default true (big endian) per the original
	AsString   bool
	StringType NumType // only meaningful if AsString; default NumDec
	Multiplier *int    // nil means "do not multiply" (decision D.3)
	Align      bool    // round result up to the next multiple of 4
	Bitmask    *uint64
	FromBeginning bool
	FromEnd       bool
	PostOffset    int
}

// extractNumber reads NumBytes bytes starting at pos and parses them
// either as a raw binary integer or, if AsString, as text in
// StringType's radix.
func (b ByteJump) extractNumber(payload []byte, pos int) (uint64, bool) {
	if pos < 0 || pos+b.NumBytes > len(payload) || b.NumBytes <= 0 {
		return 0, false
	}
	raw := payload[pos : pos+b.NumBytes]
	if b.AsString {
		return parseNumString(raw, b.StringType)
	}
	return decodeBinary(raw, b.BigEndian), true
}

func decodeBinary(raw []byte, bigEndian bool) uint64 {
	var buf [8]byte
	if bigEndian {
		copy(buf[8-len(raw):], raw)
		return binary.BigEndian.Uint64(buf[:])
	}
	copy(buf[:len(raw)], raw)
	return binary.LittleEndian.Uint64(buf[:])
}

func parseNumString(raw []byte, numType NumType) (uint64, bool) {
	var v uint64
	base := uint64(10)
	switch numType {
	case NumHex:
		base = 16
	case NumOct:
		base = 8
	}
	any := false
	for _, ch := range raw {
		var d uint64
		switch {
		case ch >= '0' && ch <= '9':
			d = uint64(ch - '0')
		case base == 16 && ch >= 'a' && ch <= 'f':
			d = uint64(ch-'a') + 10
		case base == 16 && ch >= 'A' && ch <= 'F':
			d = uint64(ch-'A') + 10
		case ch == ' ':
			continue
		default:
			continue
		}
		if d >= base {
			continue
		}
		v = v*base + d
		any = true
	}
	return v, any
}

// Apply evaluates the byte_jump against payload with running cursor
// lastPos, returning the new cursor position and whether extraction
// succeeded. The multiplier, when present, scales the extracted value
// before it is added to the jump base; when absent the extracted value
// is used unscaled (decision D.3, grounded on byte_jump.rs: `if let
// Some(m) = multiplier { num *= m }`).
func (b ByteJump) Apply(payload []byte, lastPos int) (int, bool) {
	pos := b.Offset
	if b.Relative {
		pos += lastPos
	}
	num, ok := b.extractNumber(payload, pos)
	if !ok {
		return lastPos, false
	}
	if b.Bitmask != nil {
		num &= *b.Bitmask
	}
	if b.Multiplier != nil {
		num *= uint64(*b.Multiplier)
	}
	if b.Align && num%4 != 0 {
		num += 4 - num%4
	}

	var base int
	switch {
	case b.FromBeginning:
		base = 0
	case b.FromEnd:
		base = len(payload)
	default:
		base = pos + b.NumBytes
	}
	newPos := base + int(num) + b.PostOffset
	if newPos < 0 || newPos > len(payload) {
		return lastPos, false
	}
	return newPos, true
}
