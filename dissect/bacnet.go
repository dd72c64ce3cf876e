package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

const bvlcType = 0x81

// DissectBACnet parses BVLC (Annex J, BACnet/IP over UDP) framing plus
// the leading APDU type/service-choice byte pair.
func DissectBACnet(c *bytesio.Cursor) (*decode.BACnetHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(protocol.AppBACnet), c.Pos())
	}
	typ, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	if typ != bvlcType {
		return nil, protocol.NewUnknownPayload(protocol.Application(protocol.AppBACnet))
	}
	fn, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	if _, err := c.BeU16(); err != nil { // BVLC length
		return nil, errAt()
	}
	apduType, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	var serviceChoice uint8
	// Confirmed requests carry two invoke-id/segmentation bytes before
	// the service choice; unconfirmed requests start with it; other PDU
	// types leave serviceChoice zero.
	switch apduType >> 4 {
	case 0x0: // confirmed request
		if _, err := c.Take(2); err != nil {
			return nil, errAt()
		}
		serviceChoice, err = c.ReadU8()
	case 0x1: // unconfirmed request
		serviceChoice, err = c.ReadU8()
	default:
		err = nil
	}
	if err != nil {
		return nil, errAt()
	}
	return &decode.BACnetHeader{
		BVLCFunction:  fn,
		APDUType:      apduType >> 4,
		ServiceChoice: serviceChoice,
	}, nil
}
