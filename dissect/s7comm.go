package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

const s7commProtocolID = 0x32

// DissectS7Comm parses the S7comm header following a COTP Data TPDU.
// Only frames beginning with the 0x32 protocol ID are S7comm; anything
// else is an UnknownPayload at this level.
func DissectS7Comm(c *bytesio.Cursor) (*decode.S7CommHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(protocol.AppS7comm), c.Pos())
	}
	protoID, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	if protoID != s7commProtocolID {
		return nil, protocol.NewUnknownPayload(protocol.Application(protocol.AppS7comm))
	}
	rosctr, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	redundancy, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	pduRef, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	paramLen, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	dataLen, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	return &decode.S7CommHeader{
		ProtocolID: protoID,
		ROSCTR:     rosctr,
		Redundancy: redundancy,
		PDURef:     pduRef,
		ParamLen:   paramLen,
		DataLen:    dataLen,
	}, nil
}
