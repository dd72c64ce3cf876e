package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

const finsTCPHeaderMagic = "FINS"

// finsCommandOrder maps a FINS command code's high byte (the "main
// code") to the coarse command-family order spec §4.2 requires for
// rule dispatch.
func finsCommandOrder(cmd uint16) decode.FinsCmdOrder {
	switch cmd >> 8 {
	case 0x01:
		return decode.FinsMemoryArea
	case 0x02, 0x03, 0x04, 0x05, 0x06, 0x07:
		return decode.FinsParameter
	default:
		return decode.FinsRun
	}
}

// DissectFinsTCP parses a FINS/TCP frame: either the connection
// handshake ("FINS" magic + node addresses) or a connected frame
// carrying an ICF/DA2/SA2/SID header and command code.
func DissectFinsTCP(c *bytesio.Cursor) (*decode.FinsHeader, *protocol.ParseError) {
	errAt := func(proto protocol.ApplicationProtocol) *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(proto), c.Pos())
	}
	startPos := c.Pos()
	magic, err := c.Take(4)
	if err != nil {
		return nil, errAt(protocol.AppFinsTCPReq)
	}
	if string(magic) == finsTCPHeaderMagic {
		if _, err := c.Take(4); err != nil { // length
			return nil, errAt(protocol.AppFinsTCPReq)
		}
		if _, err := c.Take(4); err != nil { // command (0 = node address request)
			return nil, errAt(protocol.AppFinsTCPReq)
		}
		return &decode.FinsHeader{IsHandshake: true}, nil
	}
	rewound := bytesio.NewCursor(c.Data[startPos:])
	return parseFinsConnectedFrame(rewound, protocol.AppFinsTCPReq)
}

// DissectFinsUDP parses a FINS/UDP connected frame directly (no
// handshake, per spec §1's framing-over-UDP requirement).
func DissectFinsUDP(c *bytesio.Cursor) (*decode.FinsHeader, *protocol.ParseError) {
	return parseFinsConnectedFrame(c, protocol.AppFinsUDPReq)
}

func parseFinsConnectedFrame(c *bytesio.Cursor, proto protocol.ApplicationProtocol) (*decode.FinsHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(proto), c.Pos())
	}
	icf, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	if _, err := c.ReadU8(); err != nil { // RSV
		return nil, errAt()
	}
	if _, err := c.ReadU8(); err != nil { // GCT
		return nil, errAt()
	}
	da1, err := c.ReadU8() // DNA
	if err != nil {
		return nil, errAt()
	}
	_ = da1
	da2, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	if _, err := c.ReadU8(); err != nil { // DA3
		return nil, errAt()
	}
	if _, err := c.ReadU8(); err != nil { // SNA
		return nil, errAt()
	}
	sa2, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	if _, err := c.ReadU8(); err != nil { // SA3
		return nil, errAt()
	}
	sid, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	cmd, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	return &decode.FinsHeader{
		ICF: icf, DA2: da2, SA2: sa2, SID: sid,
		CmdCode: cmd, Order: finsCommandOrder(cmd),
	}, nil
}
