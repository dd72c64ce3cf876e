package suricata

import (
	"net/netip"

	"github.com/quinspect/quinspect/addrset"
)

// Action is the verdict a matching signature carries.
type Action int

const (
	ActionAlert Action = iota
	ActionPass
	ActionDrop
	ActionReject
)

// Direction selects whether a rule's address/port fields must match in
// one fixed orientation ("->") or are checked symmetrically ("<>"),
// grounded on original_source's rule.rs detect_header: Bi tries both
// the forward and swapped orientation (decision D.1).
type Direction int

const (
	DirUni Direction = iota
	DirBi
)

// Transport selects which of a rule's two wire-layout buckets a Surule
// belongs to; payload options differ slightly in what they can
// reference (e.g. TCP flow flags) between the two.
type Transport int

const (
	TransportTCP Transport = iota
	TransportUDP
)

// OptionKind discriminates which field of Option is populated.
type OptionKind int

const (
	OptContent OptionKind = iota
	OptPcre
	OptByteJump
	OptByteTest
	OptIsDataAt
	OptDsize
	OptFlowbits
	OptFlowEstablished
)

// Option is one ordered rule-body option. Exactly one of the typed
// fields is populated, selected by Kind. The payload options are
// evaluated in declaration order against a single running cursor
// (lastPos), matching original_source's rule.rs detect_option
// iteration; flowbits options are evaluated after all of them.
type Option struct {
	Kind     OptionKind
	Content  Content
	Pcre     Pcre
	ByteJump ByteJump
	ByteTest ByteTest
	IsDataAt IsDataAt
	Dsize    Dsize
	Flowbits Flowbits
}

// Surule is one parsed Suricata-style signature.
type Surule struct {
	Sid       uint32
	Rev       int
	Msg       string
	Action    Action
	Transport Transport
	SrcAddr   *addrset.List
	SrcPort   *addrset.PortList
	Direction Direction
	DstAddr   *addrset.List
	DstPort   *addrset.PortList
	Options   []Option
}

// Packet is the minimal view of an observed flow a Surule is evaluated
// against: the 4-tuple, transport protocol, and application payload
// bytes the payload options scan.
type Packet struct {
	SrcIP     netip.Addr
	SrcPort   uint16
	DstIP     netip.Addr
	DstPort   uint16
	Transport Transport
	Payload   []byte
}

// checkAddr implements the original's IPv6 bypass (decision D.2,
// grounded on rule.rs's `if let IpAddr::V4(...) = addr { list.check(v4) }
// else { true }`): an IPv6 runtime address always satisfies an address
// list, regardless of its accept/except entries. This is a known,
// permanent limitation carried forward from the original rather than a
// bug to fix — IPv6 rule matching was never implemented upstream.
func checkAddr(list *addrset.List, addr netip.Addr) bool {
	if !addr.Is4() {
		return true
	}
	return list.Check(addr)
}

// detectHeader implements the address/port/direction match, trying
// both orientations for DirBi (symmetric OR over src-vs-src-and-dst-
// vs-dst, then swapped), grounded on rule.rs.
func (r *Surule) detectHeader(p Packet) bool {
	forward := checkAddr(r.SrcAddr, p.SrcIP) && r.SrcPort.Check(p.SrcPort) &&
		checkAddr(r.DstAddr, p.DstIP) && r.DstPort.Check(p.DstPort)
	if r.Direction == DirUni {
		return forward
	}
	backward := checkAddr(r.SrcAddr, p.DstIP) && r.SrcPort.Check(p.DstPort) &&
		checkAddr(r.DstAddr, p.SrcIP) && r.DstPort.Check(p.SrcPort)
	return forward || backward
}

// Detect evaluates the full rule against p and store: header match,
// then the ordered payload-option walk with a running cursor, matching
// original_source's rule.rs detect_option loop, then the flowbits
// options. Detect returns true only if every option (content/pcre/
// byte_jump/byte_test/isdataat/dsize/flowbits) succeeds.
func (r *Surule) Detect(p Packet, store *FlowStore) bool {
	if r.Transport != p.Transport {
		return false
	}
	if !r.detectHeader(p) {
		return false
	}
	lastPos := 0
	for _, opt := range r.Options {
		var ok bool
		switch opt.Kind {
		case OptContent:
			lastPos, ok = opt.Content.Match(p.Payload, lastPos)
		case OptPcre:
			ok = opt.Pcre.Check(p.Payload, lastPos)
		case OptByteJump:
			lastPos, ok = opt.ByteJump.Apply(p.Payload, lastPos)
		case OptByteTest:
			lastPos, ok = opt.ByteTest.Apply(p.Payload, lastPos)
		case OptIsDataAt:
			ok = opt.IsDataAt.Check(p.Payload, lastPos)
		case OptDsize:
			ok = opt.Dsize.Check(len(p.Payload))
		case OptFlowbits:
			continue // evaluated after every payload option, below
		case OptFlowEstablished:
			ok = true // stream state tracking is an explicit non-goal; always passes
		}
		if !ok {
			return false
		}
	}
	for _, opt := range r.Options {
		if opt.Kind == OptFlowbits && !opt.Flowbits.Check(store) {
			return false
		}
	}
	return true
}
