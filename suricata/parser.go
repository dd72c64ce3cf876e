package suricata

import (
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"

	"github.com/quinspect/quinspect/addrset"
)

// ParseRule hand-parses one Suricata-style rule line:
//
//	action proto src_addr src_port direction dst_addr dst_port (options)
//
// A recursive-descent reader is used rather than a parser-combinator or
// regex-based grammar (per the redesign flag against combinator
// frameworks): each clause is consumed left to right by a small cursor
// over the rule text, the same shape as the byte dissectors' approach
// to binary framing applied to rule grammar instead.
func ParseRule(line string) (*Surule, error) {
	p := &ruleParser{text: line}
	return p.parse()
}

type ruleParser struct {
	text string
	pos  int
}

func (p *ruleParser) parse() (*Surule, error) {
	action, err := p.token()
	if err != nil {
		return nil, err
	}
	actionVal, err := parseAction(action)
	if err != nil {
		return nil, err
	}

	proto, err := p.token()
	if err != nil {
		return nil, err
	}
	transport, err := parseTransport(proto)
	if err != nil {
		return nil, err
	}

	srcAddrTok, err := p.token()
	if err != nil {
		return nil, err
	}
	srcPortTok, err := p.token()
	if err != nil {
		return nil, err
	}
	dirTok, err := p.token()
	if err != nil {
		return nil, err
	}
	direction, err := parseDirectionToken(dirTok)
	if err != nil {
		return nil, err
	}
	dstAddrTok, err := p.token()
	if err != nil {
		return nil, err
	}
	dstPortTok, err := p.token()
	if err != nil {
		return nil, err
	}

	srcAddr, err := parseAddrToken(srcAddrTok)
	if err != nil {
		return nil, err
	}
	dstAddr, err := parseAddrToken(dstAddrTok)
	if err != nil {
		return nil, err
	}
	srcPort, err := parsePortToken(srcPortTok)
	if err != nil {
		return nil, err
	}
	dstPort, err := parsePortToken(dstPortTok)
	if err != nil {
		return nil, err
	}

	rest := strings.TrimSpace(p.text[p.pos:])
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return nil, fmt.Errorf("suricata: rule missing (options)")
	}
	body := rest[1 : len(rest)-1]
	options, sid, rev, msg, err := parseOptions(body)
	if err != nil {
		return nil, err
	}

	return &Surule{
		Sid: sid, Rev: rev, Msg: msg, Action: actionVal, Transport: transport,
		SrcAddr: srcAddr, SrcPort: srcPort, Direction: direction,
		DstAddr: dstAddr, DstPort: dstPort, Options: options,
	}, nil
}

// token consumes the next whitespace-delimited word, stopping before a
// "(" that begins the option body.
func (p *ruleParser) token() (string, error) {
	for p.pos < len(p.text) && p.text[p.pos] == ' ' {
		p.pos++
	}
	if p.pos >= len(p.text) {
		return "", fmt.Errorf("suricata: unexpected end of rule")
	}
	start := p.pos
	for p.pos < len(p.text) && p.text[p.pos] != ' ' && p.text[p.pos] != '(' {
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("suricata: empty token")
	}
	return p.text[start:p.pos], nil
}

func parseAction(s string) (Action, error) {
	switch s {
	case "alert":
		return ActionAlert, nil
	case "pass":
		return ActionPass, nil
	case "drop":
		return ActionDrop, nil
	case "reject":
		return ActionReject, nil
	default:
		return 0, fmt.Errorf("suricata: unknown action %q", s)
	}
}

func parseTransport(s string) (Transport, error) {
	switch strings.ToLower(s) {
	case "tcp":
		return TransportTCP, nil
	case "udp":
		return TransportUDP, nil
	default:
		return 0, fmt.Errorf("suricata: unsupported transport %q", s)
	}
}

func parseDirectionToken(s string) (Direction, error) {
	switch s {
	case "->":
		return DirUni, nil
	case "<>":
		return DirBi, nil
	default:
		return 0, fmt.Errorf("suricata: unknown direction %q", s)
	}
}

// parseAddrToken accepts "any" (match-all), a single CIDR/address, or
// a bracketed comma list "[a,b,c]"; "!" negates an entry into the
// Except side, and "![a,b]" negates every entry of the group. A list
// with no accept entry leaves Accept nil, so it accepts any address not
// excepted.
func parseAddrToken(tok string) (*addrset.List, error) {
	if tok == "any" {
		return &addrset.List{}, nil
	}
	groupNegate := strings.HasPrefix(tok, "![")
	if groupNegate {
		tok = tok[1:]
	}
	entries := splitBracketList(tok)
	list := &addrset.List{Accept: addrset.NewAddressSet(), Except: addrset.NewAddressSet()}
	accepted := false
	for _, e := range entries {
		negate := strings.HasPrefix(e, "!") != groupNegate
		e = strings.TrimPrefix(e, "!")
		set := list.Accept
		if negate {
			set = list.Except
		} else {
			accepted = true
		}
		if err := addAddrEntry(set, e); err != nil {
			return nil, err
		}
	}
	if !accepted {
		list.Accept = nil
	}
	return list, nil
}

func addAddrEntry(set *addrset.AddressSet, e string) error {
	if strings.Contains(e, "/") {
		pfx, err := netip.ParsePrefix(e)
		if err != nil {
			return fmt.Errorf("suricata: bad CIDR %q: %w", e, err)
		}
		set.AddCIDR(pfx)
		return nil
	}
	addr, err := netip.ParseAddr(e)
	if err != nil {
		return fmt.Errorf("suricata: bad address %q: %w", e, err)
	}
	set.AddExact(addr)
	return nil
}

func parsePortToken(tok string) (*addrset.PortList, error) {
	if tok == "any" {
		return &addrset.PortList{}, nil
	}
	entries := splitBracketList(tok)
	list := &addrset.PortList{Accept: addrset.NewPortSet(), Except: addrset.NewPortSet()}
	for _, e := range entries {
		negate := strings.HasPrefix(e, "!")
		e = strings.TrimPrefix(e, "!")
		set := list.Accept
		if negate {
			set = list.Except
		}
		if strings.Contains(e, ":") {
			parts := strings.SplitN(e, ":", 2)
			lo, err := strconv.ParseUint(parts[0], 10, 16)
			if err != nil {
				return nil, fmt.Errorf("suricata: bad port range %q: %w", e, err)
			}
			hi, err := strconv.ParseUint(parts[1], 10, 16)
			if err != nil {
				return nil, fmt.Errorf("suricata: bad port range %q: %w", e, err)
			}
			set.AddRange(uint16(lo), uint16(hi))
			continue
		}
		port, err := strconv.ParseUint(e, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("suricata: bad port %q: %w", e, err)
		}
		set.AddExact(uint16(port))
	}
	return list, nil
}

func splitBracketList(tok string) []string {
	tok = strings.TrimPrefix(tok, "[")
	tok = strings.TrimSuffix(tok, "]")
	return strings.Split(tok, ",")
}

// parseOptions walks the semicolon-separated `key:value;` / `key;`
// option body, using a pooled scratch buffer to lower nocase content
// patterns before copying each result into its own slice (spec's
// domain-stack wiring for valyala/bytebufferpool).
func parseOptions(body string) ([]Option, uint32, int, string, error) {
	var options []Option
	var sid uint32
	var rev int
	var msg string

	for _, clause := range splitClauses(body) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		key, val := splitKeyVal(clause)
		switch key {
		case "msg":
			msg = strings.Trim(val, "\"")
		case "sid":
			n, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return nil, 0, 0, "", fmt.Errorf("suricata: bad sid %q: %w", val, err)
			}
			sid = uint32(n)
		case "rev":
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, 0, 0, "", fmt.Errorf("suricata: bad rev %q: %w", val, err)
			}
			rev = n
		case "content":
			opt, err := parseContentOption(val, &options)
			if err != nil {
				return nil, 0, 0, "", err
			}
			options = append(options, opt)
		case "nocase":
			if len(options) == 0 || options[len(options)-1].Kind != OptContent {
				return nil, 0, 0, "", fmt.Errorf("suricata: nocase without preceding content")
			}
			options[len(options)-1].Content.Nocase = true
			options[len(options)-1].Content.Pattern = lowerPooled(options[len(options)-1].Content.Pattern)
		case "depth":
			if err := applyContentInt(options, val, func(c *Content, n int) { c.Pos = PosAbsolute; c.Depth = n }); err != nil {
				return nil, 0, 0, "", err
			}
		case "offset":
			if err := applyContentInt(options, val, func(c *Content, n int) { c.Pos = PosAbsolute; c.Offset = n }); err != nil {
				return nil, 0, 0, "", err
			}
		case "within":
			if err := applyContentInt(options, val, func(c *Content, n int) { c.Pos = PosRelative; c.Within = n }); err != nil {
				return nil, 0, 0, "", err
			}
		case "distance":
			if err := applyContentInt(options, val, func(c *Content, n int) { c.Pos = PosRelative; c.Distance = n }); err != nil {
				return nil, 0, 0, "", err
			}
		case "startswith":
			if len(options) > 0 && options[len(options)-1].Kind == OptContent {
				options[len(options)-1].Content.Pos = PosStartsWith
			}
		case "endswith":
			if len(options) > 0 && options[len(options)-1].Kind == OptContent {
				options[len(options)-1].Content.Pos = PosEndsWith
			}
		case "pcre":
			re, relative, err := parsePcreVal(val)
			if err != nil {
				return nil, 0, 0, "", err
			}
			options = append(options, Option{Kind: OptPcre, Pcre: Pcre{Re: re, Relative: relative}})
		case "dsize":
			d, err := parseDsizeVal(val)
			if err != nil {
				return nil, 0, 0, "", err
			}
			options = append(options, Option{Kind: OptDsize, Dsize: d})
		case "isdataat":
			iso, err := parseIsDataAtVal(val)
			if err != nil {
				return nil, 0, 0, "", err
			}
			options = append(options, Option{Kind: OptIsDataAt, IsDataAt: iso})
		case "byte_jump":
			bj, err := parseByteJumpVal(val)
			if err != nil {
				return nil, 0, 0, "", err
			}
			options = append(options, Option{Kind: OptByteJump, ByteJump: bj})
		case "byte_test":
			bt, err := parseByteTestVal(val)
			if err != nil {
				return nil, 0, 0, "", err
			}
			options = append(options, Option{Kind: OptByteTest, ByteTest: bt})
		case "flowbits":
			fb, err := parseFlowbitsVal(val)
			if err != nil {
				return nil, 0, 0, "", err
			}
			options = append(options, Option{Kind: OptFlowbits, Flowbits: fb})
		case "flow":
			if strings.Contains(val, "established") {
				options = append(options, Option{Kind: OptFlowEstablished})
			}
		case "classtype", "reference", "metadata", "priority":
			// metadata-only clauses carry no runtime matching behavior.
		default:
			return nil, 0, 0, "", fmt.Errorf("suricata: unknown rule option %q", key)
		}
	}
	return options, sid, rev, msg, nil
}

func applyContentInt(options []Option, val string, apply func(*Content, int)) error {
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("suricata: bad integer %q: %w", val, err)
	}
	if len(options) == 0 || options[len(options)-1].Kind != OptContent {
		return fmt.Errorf("suricata: positional modifier without preceding content")
	}
	apply(&options[len(options)-1].Content, n)
	return nil
}

func lowerPooled(b []byte) []byte {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for _, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		buf.WriteByte(c)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

func parseContentOption(val string, existing *[]Option) (Option, error) {
	_ = existing
	raw := strings.Trim(val, "\"")
	negate := strings.HasPrefix(raw, "!")
	raw = strings.TrimPrefix(raw, "!")
	pattern, err := decodeContentPattern(raw)
	if err != nil {
		return Option{}, err
	}
	_ = negate // negated content (non-match) is a non-goal per spec scope
	return Option{Kind: OptContent, Content: Content{Pattern: pattern, Pos: PosNotSet}}, nil
}

// decodeContentPattern expands Suricata's `|hex bytes|` escape segments
// inside an otherwise literal ASCII content string.
func decodeContentPattern(raw string) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	i := 0
	for i < len(raw) {
		if raw[i] == '|' {
			end := strings.IndexByte(raw[i+1:], '|')
			if end < 0 {
				return nil, fmt.Errorf("suricata: unterminated hex segment in content %q", raw)
			}
			hexPart := raw[i+1 : i+1+end]
			hexPart = strings.ReplaceAll(hexPart, " ", "")
			if len(hexPart)%2 != 0 {
				return nil, fmt.Errorf("suricata: odd hex length in content %q", raw)
			}
			for j := 0; j < len(hexPart); j += 2 {
				var b byte
				if _, err := fmt.Sscanf(hexPart[j:j+2], "%02x", &b); err != nil {
					return nil, fmt.Errorf("suricata: bad hex byte %q", hexPart[j:j+2])
				}
				buf.WriteByte(b)
			}
			i += 1 + end + 1
			continue
		}
		buf.WriteByte(raw[i])
		i++
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func splitClauses(body string) []string {
	return strings.Split(body, ";")
}

func splitKeyVal(clause string) (string, string) {
	idx := strings.IndexByte(clause, ':')
	if idx < 0 {
		return strings.TrimSpace(clause), ""
	}
	return strings.TrimSpace(clause[:idx]), strings.TrimSpace(clause[idx+1:])
}

func parsePcreVal(val string) (*regexp.Regexp, bool, error) {
	raw := strings.Trim(val, "\"")
	if !strings.HasPrefix(raw, "/") {
		return nil, false, fmt.Errorf("suricata: bad pcre value %q", val)
	}
	end := strings.LastIndexByte(raw, '/')
	if end <= 0 {
		return nil, false, fmt.Errorf("suricata: bad pcre value %q", val)
	}
	pattern := raw[1:end]
	flags := raw[end+1:]
	relative := strings.Contains(flags, "R")
	goFlags := ""
	if strings.Contains(flags, "i") {
		goFlags += "i"
	}
	if strings.Contains(flags, "s") {
		goFlags += "s"
	}
	if goFlags != "" {
		pattern = "(?" + goFlags + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false, fmt.Errorf("suricata: bad pcre pattern %q: %w", pattern, err)
	}
	return re, relative, nil
}

func parseDsizeVal(val string) (Dsize, error) {
	val = strings.TrimSpace(val)
	switch {
	case strings.HasPrefix(val, ">="):
		n, err := strconv.Atoi(strings.TrimSpace(val[2:]))
		return Dsize{Op: DsizeGreater, Value: n - 1}, err
	case strings.HasPrefix(val, "<="):
		n, err := strconv.Atoi(strings.TrimSpace(val[2:]))
		return Dsize{Op: DsizeLess, Value: n + 1}, err
	case strings.HasPrefix(val, "!"):
		n, err := strconv.Atoi(strings.TrimSpace(val[1:]))
		return Dsize{Op: DsizeNotEqual, Value: n}, err
	case strings.HasPrefix(val, ">"):
		n, err := strconv.Atoi(strings.TrimSpace(val[1:]))
		return Dsize{Op: DsizeGreater, Value: n}, err
	case strings.HasPrefix(val, "<"):
		n, err := strconv.Atoi(strings.TrimSpace(val[1:]))
		return Dsize{Op: DsizeLess, Value: n}, err
	case strings.Contains(val, "<>"):
		parts := strings.SplitN(val, "<>", 2)
		lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return Dsize{}, err
		}
		hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return Dsize{}, err
		}
		return Dsize{Op: DsizeRange, RangeMin: lo, RangeMax: hi}, nil
	default:
		n, err := strconv.Atoi(val)
		return Dsize{Op: DsizeEqual, Value: n}, err
	}
}

func parseIsDataAtVal(val string) (IsDataAt, error) {
	parts := strings.Split(val, ",")
	posStr := strings.TrimSpace(parts[0])
	negate := strings.HasPrefix(posStr, "!")
	posStr = strings.TrimPrefix(posStr, "!")
	pos, err := strconv.Atoi(posStr)
	if err != nil {
		return IsDataAt{}, fmt.Errorf("suricata: bad isdataat %q: %w", val, err)
	}
	relative := len(parts) > 1 && strings.TrimSpace(parts[1]) == "relative"
	return IsDataAt{Pos: pos, Relative: relative, Negate: negate}, nil
}

func parseByteJumpVal(val string) (ByteJump, error) {
	parts := splitArgs(val)
	if len(parts) < 2 {
		return ByteJump{}, fmt.Errorf("suricata: byte_jump needs at least numbytes,offset")
	}
	numBytes, err := strconv.Atoi(parts[0])
	if err != nil {
		return ByteJump{}, err
	}
	offset, err := strconv.Atoi(parts[1])
	if err != nil {
		return ByteJump{}, err
	}
	bj := ByteJump{NumBytes: numBytes, Offset: offset, BigEndian: true}
	for _, opt := range parts[2:] {
		applyByteJumpOpt(&bj, opt)
	}
	return bj, nil
}

func applyByteJumpOpt(bj *ByteJump, opt string) {
	fields := strings.Fields(opt)
	if len(fields) == 0 {
		return
	}
	key, val := fields[0], ""
	if len(fields) > 1 {
		val = fields[1]
	}
	switch key {
	case "relative":
		bj.Relative = true
	case "big":
		bj.BigEndian = true
	case "little":
		bj.BigEndian = false
	case "string":
		bj.AsString = true
	case "hex":
		bj.StringType = NumHex
	case "dec":
		bj.StringType = NumDec
	case "oct":
		bj.StringType = NumOct
	case "align":
		bj.Align = true
	case "from_beginning":
		bj.FromBeginning = true
	case "from_end":
		bj.FromEnd = true
	case "multiplier":
		if n, err := strconv.Atoi(val); err == nil {
			bj.Multiplier = &n
		}
	case "post_offset":
		if n, err := strconv.Atoi(val); err == nil {
			bj.PostOffset = n
		}
	}
}

func parseByteTestVal(val string) (ByteTest, error) {
	parts := splitArgs(val)
	if len(parts) < 3 {
		return ByteTest{}, fmt.Errorf("suricata: byte_test needs at least numbytes,operator,value")
	}
	numBytes, err := strconv.Atoi(parts[0])
	if err != nil {
		return ByteTest{}, err
	}
	opStr := strings.TrimPrefix(parts[1], "!")
	negate := strings.HasPrefix(parts[1], "!")
	op, err := parseByteTestOp(opStr)
	if err != nil {
		return ByteTest{}, err
	}
	value, err := strconv.ParseUint(parts[2], 0, 64)
	if err != nil {
		return ByteTest{}, err
	}
	bt := ByteTest{NumBytes: numBytes, Op: op, Value: value, BigEndian: true, Negate: negate, StringType: NumHex}
	if len(parts) > 3 {
		offset, err := strconv.Atoi(parts[3])
		if err == nil {
			bt.Offset = offset
		}
	}
	for _, opt := range parts[4:] {
		switch strings.TrimSpace(opt) {
		case "relative":
			bt.Relative = true
		case "string":
			bt.AsString = true
		case "hex":
			bt.StringType = NumHex
		case "dec":
			bt.StringType = NumDec
		case "oct":
			bt.StringType = NumOct
		case "big":
			bt.BigEndian = true
		case "little":
			bt.BigEndian = false
		}
	}
	return bt, nil
}

func parseByteTestOp(s string) (ByteTestOp, error) {
	switch s {
	case "=":
		return ByteTestEqual, nil
	case ">":
		return ByteTestGreater, nil
	case ">=":
		return ByteTestGreaterEqual, nil
	case "<":
		return ByteTestLess, nil
	case "<=":
		return ByteTestLessEqual, nil
	case "&":
		return ByteTestAnd, nil
	case "^":
		return ByteTestOr, nil
	default:
		return 0, fmt.Errorf("suricata: unknown byte_test operator %q", s)
	}
}

func parseFlowbitsVal(val string) (Flowbits, error) {
	parts := strings.SplitN(val, ",", 2)
	cmdStr := strings.TrimSpace(parts[0])
	name := ""
	if len(parts) > 1 {
		name = strings.TrimSpace(parts[1])
	}
	var cmd FlowbitCmd
	switch cmdStr {
	case "set":
		cmd = FlowbitSet
	case "unset":
		cmd = FlowbitUnset
	case "toggle":
		cmd = FlowbitToggle
	case "isset":
		cmd = FlowbitIsSet
	case "isnotset":
		cmd = FlowbitIsNotSet
	case "noalert":
		cmd = FlowbitNoAlert
	default:
		return Flowbits{}, fmt.Errorf("suricata: unknown flowbits command %q", cmdStr)
	}
	return Flowbits{Cmd: cmd, Name: name}, nil
}

func splitArgs(val string) []string {
	parts := strings.Split(val, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
