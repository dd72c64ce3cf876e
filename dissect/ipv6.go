package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

// DissectIPv6 parses the fixed 40-byte IPv6 header. Extension-header
// chain traversal is an explicit non-goal (spec §1). ExtensionBytes is
// not populated: the cursor is left right after the fixed header, so
// any extension headers remain in the unparsed bytes.
func DissectIPv6(c *bytesio.Cursor) (*decode.IPv6Header, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Network(protocol.NetworkIPv6), c.Pos())
	}
	verClassFlow, err := c.BeU32()
	if err != nil {
		return nil, errAt()
	}
	payloadLen, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	nextHeader, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	hopLimit, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	srcIP, err := c.IPv6()
	if err != nil {
		return nil, errAt()
	}
	dstIP, err := c.IPv6()
	if err != nil {
		return nil, errAt()
	}
	return &decode.IPv6Header{
		Version:       uint8(verClassFlow >> 28),
		TrafficClass:  uint8(verClassFlow>>20) & 0xFF,
		FlowLabel:     verClassFlow & 0xFFFFF,
		PayloadLength: payloadLen,
		NextHeader:    nextHeader,
		HopLimit:      hopLimit,
		SrcIP:         srcIP,
		DstIP:         dstIP,
	}, nil
}

func ipv6NextTransport(nextHeader uint8) (protocol.TransportProtocol, bool) {
	switch nextHeader {
	case 6:
		return protocol.TransportTCP, true
	case 17:
		return protocol.TransportUDP, true
	default:
		return 0, false
	}
}
