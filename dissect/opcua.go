package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

// DissectOPCUA parses the OPC UA TCP message header (3-byte type +
// 1-byte chunk + 4-byte size), and for MSG frames the leading service
// node id.
func DissectOPCUA(c *bytesio.Cursor) (*decode.OPCUAHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(protocol.AppOPCUA), c.Pos())
	}
	typeBytes, err := c.Take(3)
	if err != nil {
		return nil, errAt()
	}
	chunkType, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	size, err := c.LeU32()
	if err != nil {
		return nil, errAt()
	}
	msgType, ok := opcuaMsgType(typeBytes)
	if !ok {
		return nil, protocol.NewUnknownPayload(protocol.Application(protocol.AppOPCUA))
	}
	h := &decode.OPCUAHeader{MsgType: msgType, ChunkType: chunkType, MessageSize: size}
	if msgType == decode.OPCUAMessage {
		if _, err := c.Take(4); err != nil { // secure channel id
			return nil, errAt()
		}
		encMask, err := c.ReadU8()
		if err != nil {
			return nil, errAt()
		}
		switch {
		case encMask == 0x00:
			nodeID, err := c.ReadU8()
			if err != nil {
				return nil, errAt()
			}
			h.NodeIDKind = decode.OPCUANodeTwoByte
			h.NodeID = uint32(nodeID)
		case encMask == 0x01:
			nsIdx, err := c.ReadU8()
			if err != nil {
				return nil, errAt()
			}
			_ = nsIdx
			nodeID, err := c.LeU16()
			if err != nil {
				return nil, errAt()
			}
			h.NodeIDKind = decode.OPCUANodeFourByte
			h.NodeID = uint32(nodeID)
		default:
			if _, err := c.ReadU8(); err != nil { // namespace index
				return nil, errAt()
			}
			nodeID, err := c.LeU32()
			if err != nil {
				return nil, errAt()
			}
			h.NodeIDKind = decode.OPCUANodeNumeric
			h.NodeID = nodeID
		}
	}
	return h, nil
}

func opcuaMsgType(b []byte) (decode.OPCUAMsgType, bool) {
	switch string(b) {
	case "HEL":
		return decode.OPCUAHello, true
	case "ACK":
		return decode.OPCUAAck, true
	case "ERR":
		return decode.OPCUAErr, true
	case "RHE":
		return decode.OPCUAReverseHello, true
	case "MSG":
		return decode.OPCUAMessage, true
	case "OPN":
		return decode.OPCUAOpenSecureChannel, true
	case "CLO":
		return decode.OPCUACloseSecureChannel, true
	default:
		return 0, false
	}
}
