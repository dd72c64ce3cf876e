package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

const (
	cotpDataPDU    = 0xF0
	cotpConnectPDU = 0xE0
)

// DissectISOonTCP parses TPKT (RFC 1006) + COTP, the carrier for
// S7comm over port 102.
func DissectISOonTCP(c *bytesio.Cursor) (*decode.ISOonTCPHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(protocol.AppISOonTCP), c.Pos())
	}
	version, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	reserved, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	length, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	cotpLen, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	pduType, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	remaining := int(cotpLen) - 1
	if remaining > 0 {
		if _, err := c.Take(remaining); err != nil {
			return nil, errAt()
		}
	}
	return &decode.ISOonTCPHeader{
		TPKTVersion:  version,
		TPKTReserved: reserved,
		TPKTLength:   length,
		COTPLength:   cotpLen,
		COTPPDUType:  pduType & 0xF0,
		IsConnect:    pduType&0xF0 == cotpConnectPDU,
		IsData:       pduType&0xF0 == cotpDataPDU,
	}, nil
}
