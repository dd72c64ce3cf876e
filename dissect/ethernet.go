// Package dissect holds the hand-rolled, zero-copy protocol dissectors
// (spec §4.2) and the Protocol-Switch Driver that chains them (spec
// §4.3). Each dissector is a pure function over a bytesio.Cursor; it
// either returns its decoded header or a *protocol.ParseError, never
// both, and never panics. The Driver assembles the headers into
// decode.Decode levels and records a ParseError at the level reached.
//
// Dissection never reparses bytes gopacket/layers already classified
// for us at a type level; each function still reads raw bytes via
// bytesio.Cursor itself, the way heplify's decoder.go hand-assembles a
// DecodingLayerParser pipeline rather than delegating the whole frame
// to a single black-box Decode call.
package dissect

import (
	"github.com/google/gopacket/layers"

	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

const ethernetHeaderLen = 14

// DissectEthernet parses an Ethernet II header from c, returning the
// header and leaving the cursor at the first payload byte.
func DissectEthernet(c *bytesio.Cursor) (*decode.EthernetHeader, *protocol.ParseError) {
	dst, err := c.MAC()
	if err != nil {
		return nil, protocol.NewParsingHeader(protocol.Link(protocol.LinkEthernet), c.Pos())
	}
	src, err := c.MAC()
	if err != nil {
		return nil, protocol.NewParsingHeader(protocol.Link(protocol.LinkEthernet), c.Pos())
	}
	etherType, err := c.BeU16()
	if err != nil {
		return nil, protocol.NewParsingHeader(protocol.Link(protocol.LinkEthernet), c.Pos())
	}
	return &decode.EthernetHeader{DstMAC: dst, SrcMAC: src, EtherType: etherType}, nil
}

// nextFromEtherType maps an EtherType to the network-layer protocol it
// announces, using gopacket/layers' canonical constants as the dispatch
// keys rather than inline magic numbers (spec's domain-stack wiring).
func nextFromEtherType(et uint16) (protocol.NetworkProtocol, bool) {
	switch layers.EthernetType(et) {
	case layers.EthernetTypeIPv4:
		return protocol.NetworkIPv4, true
	case layers.EthernetTypeIPv6:
		return protocol.NetworkIPv6, true
	case layers.EthernetTypeDot1Q, layers.EthernetTypeQinQ:
		return protocol.NetworkVLAN, true
	case 0x88B8: // GOOSE EtherType, not modeled in gopacket/layers
		return protocol.NetworkGOOSE, true
	default:
		return 0, false
	}
}
