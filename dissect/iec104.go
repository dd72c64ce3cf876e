package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

const iec104StartByte = 0x68

// DissectIEC104 parses the APCI start byte + length + control field,
// classifying I/S/U frames, and for I-frames the leading ASDU header
// fields (TypeID, CauseOfTx, common address).
func DissectIEC104(c *bytesio.Cursor) (*decode.IEC104Header, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(protocol.AppIEC104), c.Pos())
	}
	start, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	if start != iec104StartByte {
		return nil, protocol.NewUnknownPayload(protocol.Application(protocol.AppIEC104))
	}
	apduLen, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	ctrl, err := c.Take(4)
	if err != nil {
		return nil, errAt()
	}
	var kind decode.IEC104FrameKind
	switch {
	case ctrl[0]&0x01 == 0:
		kind = decode.IEC104IFrame
	case ctrl[0]&0x03 == 0x01:
		kind = decode.IEC104SFrame
	default:
		kind = decode.IEC104UFrame
	}
	h := &decode.IEC104Header{Kind: kind}
	_ = apduLen
	if kind == decode.IEC104IFrame {
		typeID, err := c.ReadU8()
		if err != nil {
			return nil, errAt()
		}
		vsq, err := c.ReadU8()
		if err != nil {
			return nil, errAt()
		}
		_ = vsq
		cot, err := c.ReadU8()
		if err != nil {
			return nil, errAt()
		}
		if _, err := c.ReadU8(); err != nil { // originator address (or skip if not present)
			return nil, errAt()
		}
		addr, err := c.LeU16()
		if err != nil {
			return nil, errAt()
		}
		h.TypeID = typeID
		h.CauseOfTx = cot
		h.Address = addr
		h.HasASDU = true
	}
	return h, nil
}
