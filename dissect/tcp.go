package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

// DissectTCP parses a TCP segment header, including variable-length
// options, and returns the borrowed application payload.
func DissectTCP(c *bytesio.Cursor) (*decode.TCPHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Transport(protocol.TransportTCP), c.Pos())
	}
	srcPort, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	dstPort, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	seq, err := c.BeU32()
	if err != nil {
		return nil, errAt()
	}
	ack, err := c.BeU32()
	if err != nil {
		return nil, errAt()
	}
	offsetReservedFlags, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	dataOffset := uint8(offsetReservedFlags >> 12)
	if dataOffset < 5 {
		return nil, errAt()
	}
	window, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	checksum, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	urgent, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	optLen := int(dataOffset)*4 - 20
	var opts []byte
	if optLen > 0 {
		opts, err = c.Take(optLen)
		if err != nil {
			return nil, errAt()
		}
	}
	payload := c.Remainder()
	return &decode.TCPHeader{
		SrcPort:    srcPort,
		DstPort:    dstPort,
		Seq:        seq,
		Ack:        ack,
		DataOffset: dataOffset,
		Reserved:   uint8((offsetReservedFlags >> 9) & 0x7),
		Flags:      decode.TCPFlags(offsetReservedFlags & 0x1FF),
		Window:     window,
		Checksum:   checksum,
		Urgent:     urgent,
		Options:    opts,
		Payload:    payload,
	}, nil
}
