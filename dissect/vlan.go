package dissect

import (
	"github.com/google/gopacket/layers"

	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

// DissectVLAN parses an 802.1Q tag (TCI + inner EtherType).
func DissectVLAN(c *bytesio.Cursor) (*decode.VLANHeader, *protocol.ParseError) {
	tci, err := c.BeU16()
	if err != nil {
		return nil, protocol.NewParsingHeader(protocol.Network(protocol.NetworkVLAN), c.Pos())
	}
	innerType, err := c.BeU16()
	if err != nil {
		return nil, protocol.NewParsingHeader(protocol.Network(protocol.NetworkVLAN), c.Pos())
	}
	return &decode.VLANHeader{
		Priority:  uint8(tci >> 13),
		DEI:       uint8((tci >> 12) & 0x1),
		ID:        tci & 0x0FFF,
		InnerType: innerType,
	}, nil
}

func vlanInnerProtocol(innerType uint16) (protocol.NetworkProtocol, bool) {
	switch layers.EthernetType(innerType) {
	case layers.EthernetTypeIPv4:
		return protocol.NetworkIPv4, true
	case layers.EthernetTypeIPv6:
		return protocol.NetworkIPv6, true
	default:
		return 0, false
	}
}
