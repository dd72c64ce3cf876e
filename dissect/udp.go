package dissect

import (
	"github.com/google/gopacket/layers"

	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

// DissectUDP parses a UDP datagram header and returns the borrowed
// application payload.
func DissectUDP(c *bytesio.Cursor) (*decode.UDPHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Transport(protocol.TransportUDP), c.Pos())
	}
	srcPort, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	dstPort, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	length, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	checksum, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	payload := c.Remainder()
	return &decode.UDPHeader{
		SrcPort:  srcPort,
		DstPort:  dstPort,
		Length:   length,
		Checksum: checksum,
		Payload:  payload,
	}, nil
}

// fins TCP/UDP ports, S7comm/ISO-on-TCP port, DNP3/Modbus/IEC104 and
// other well-known ports, plus the GOOSE/SV EtherTypes. Every port is
// typed as a gopacket/layers TCPPort or UDPPort; the EtherTypes are
// untyped constants.
const (
	PortModbus        = layers.TCPPort(502)
	PortS7comm        = layers.TCPPort(102) // shared with ISO-on-TCP/COTP
	PortDNP3          = layers.TCPPort(20000)
	PortIEC104        = layers.TCPPort(2404)
	PortOPCUA         = layers.TCPPort(4840)
	PortBACnetIP      = layers.UDPPort(47808)
	PortFinsUDP       = layers.UDPPort(9600)
	PortFinsTCP       = layers.TCPPort(9600)
	PortHTTP          = layers.TCPPort(80)
	PortMMS           = layers.TCPPort(102)
	SVEtherType       = 0x88BA
	GOOSEEtherType    = 0x88B8
)
