package dissect

import (
	"github.com/google/gopacket/layers"

	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

// DissectIPv4 parses a (possibly option-bearing) IPv4 header. The
// variable-length options region is kept as a borrowed slice rather
// than discarded, per SPEC_FULL's rule-introspection supplement.
func DissectIPv4(c *bytesio.Cursor) (*decode.IPv4Header, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Network(protocol.NetworkIPv4), c.Pos())
	}
	verIHL, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	version := verIHL >> 4
	ihl := verIHL & 0x0F
	if version != 4 || ihl < 5 {
		return nil, errAt()
	}
	dscpEcn, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	totalLen, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	id, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	flagsFrag, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	ttl, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	proto, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	checksum, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	srcIP, err := c.IPv4()
	if err != nil {
		return nil, errAt()
	}
	dstIP, err := c.IPv4()
	if err != nil {
		return nil, errAt()
	}
	optLen := int(ihl)*4 - 20
	var opts []byte
	if optLen > 0 {
		opts, err = c.Take(optLen)
		if err != nil {
			return nil, errAt()
		}
	}
	return &decode.IPv4Header{
		Version:      version,
		HeaderLength: ihl,
		DiffServ:     dscpEcn >> 2,
		ECN:          dscpEcn & 0x3,
		TotalLength:  totalLen,
		ID:           id,
		Flags:        uint8(flagsFrag >> 13),
		FragOffset:   flagsFrag & 0x1FFF,
		TTL:          ttl,
		Protocol:     proto,
		Checksum:     checksum,
		SrcIP:        srcIP,
		DstIP:        dstIP,
		Options:      opts,
	}, nil
}

// ipv4NextTransport maps the IP protocol number to a TransportProtocol
// using gopacket/layers.IPProtocol as the canonical constant source.
func ipv4NextTransport(p uint8) (protocol.TransportProtocol, bool) {
	switch layers.IPProtocol(p) {
	case layers.IPProtocolTCP:
		return protocol.TransportTCP, true
	case layers.IPProtocolUDP:
		return protocol.TransportUDP, true
	default:
		return 0, false
	}
}
