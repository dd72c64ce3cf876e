package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

const (
	dnp3StartByte1 = 0x05
	dnp3StartByte2 = 0x64
	dnp3BlockSize  = 16 // data bytes per CRC-protected block
)

// stripDNP3Blocks removes the trailing 2-byte CRC-16/0x3D65 from each
// 16-byte data block (and the shorter final block), verifying each
// before stripping, per spec §4.1/§4.2's CRC-protected block framing.
func stripDNP3Blocks(data []byte) ([]byte, bool) {
	var out []byte
	for len(data) > 0 {
		n := dnp3BlockSize
		if len(data) < dnp3BlockSize+2 {
			n = len(data) - 2
		}
		if n < 0 || len(data) < n+2 {
			return nil, false
		}
		block := data[:n]
		// DNP3 CRC is transmitted little-endian.
		crcLE := uint16(data[n+1])<<8 | uint16(data[n])
		if !bytesio.VerifyCRC16(bytesio.CRC16_3D65, crcLE, block, 0) {
			return nil, false
		}
		out = append(out, block...)
		data = data[n+2:]
	}
	return out, true
}

// DissectDNP3 parses the DNP3 data-link header, strips and verifies
// CRC-protected transport blocks, then decodes the transport header
// and application function code from the reassembled fragment.
func DissectDNP3(c *bytesio.Cursor) (*decode.Dnp3Header, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(protocol.AppDNP3), c.Pos())
	}
	start1, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	start2, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	if start1 != dnp3StartByte1 || start2 != dnp3StartByte2 {
		return nil, protocol.NewUnknownPayload(protocol.Application(protocol.AppDNP3))
	}
	length, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	ctrl, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	dest, err := c.LeU16()
	if err != nil {
		return nil, errAt()
	}
	src, err := c.LeU16()
	if err != nil {
		return nil, errAt()
	}
	headerCRCLE, err := c.LeU16()
	if err != nil {
		return nil, errAt()
	}
	headerBytes := []byte{dnp3StartByte1, dnp3StartByte2, length, ctrl,
		byte(dest), byte(dest >> 8), byte(src), byte(src >> 8)}
	if !bytesio.VerifyCRC16(bytesio.CRC16_3D65, headerCRCLE, headerBytes, 0) {
		// Offset is reported against the 8-byte CRC-protected header
		// region itself, not the cursor's post-read position (which has
		// already consumed the trailing 2-byte CRC).
		return nil, protocol.NewParsingHeader(protocol.Application(protocol.AppDNP3), 0)
	}

	// length counts ctrl+dest+src+application bytes (not the two start
	// bytes or the length byte itself); remaining data after the header
	// CRC is (length-5) application bytes split into CRC-protected
	// blocks.
	appByteCount := int(length) - 5
	if appByteCount < 0 {
		return nil, errAt()
	}
	nBlocks := appByteCount/dnp3BlockSize + 1
	rawLen := appByteCount + nBlocks*2
	raw, err := c.Take(rawLen)
	if err != nil {
		return nil, errAt()
	}
	fragment, ok := stripDNP3Blocks(raw)
	if !ok {
		return nil, errAt()
	}
	if len(fragment) < 3 {
		return nil, errAt()
	}
	transportByte := fragment[0]
	fn, ok := dnp3FunctionFromCode(fragment[2])
	if !ok {
		return nil, errAt()
	}

	return &decode.Dnp3Header{
		Direction:    ctrl&0x80 != 0,
		Primary:      ctrl&0x40 != 0,
		FCB:          ctrl&0x20 != 0,
		FCV:          ctrl&0x10 != 0,
		DLFunction:   ctrl & 0x0F,
		Destination:  dest,
		Source:       src,
		HeaderCRC:    headerCRCLE,
		TransportFIN: transportByte&0x80 != 0,
		TransportFIR: transportByte&0x40 != 0,
		TransportSeq: transportByte & 0x3F,
		Function:     fn,
		AppPayload:   fragment[2:],
	}, nil
}

// dnp3FunctionFromCode maps an application-layer function code to its
// decoded form. Any code not in the recognized set fails: 0x82 maps to
// UnsolicitedResponse, "other codes fail" (spec §4.2), matching
// original_source's parse_dnp3_application_layer, which returns a
// Verify error on an unmatched function_code.
func dnp3FunctionFromCode(code uint8) (decode.Dnp3Function, bool) {
	switch code {
	case 0x00:
		return decode.Dnp3Confirm, true
	case 0x01:
		return decode.Dnp3Read, true
	case 0x02:
		return decode.Dnp3Write, true
	case 0x03:
		return decode.Dnp3Select, true
	case 0x0D:
		return decode.Dnp3ColdRestart, true
	case 0x0E:
		return decode.Dnp3WarmRestart, true
	case 0x12:
		return decode.Dnp3StopApplication, true
	case 0x14:
		return decode.Dnp3EnableSpontaneous, true
	case 0x15:
		return decode.Dnp3DisableSpontaneous, true
	case 0x19:
		return decode.Dnp3OpenFile, true
	case 0x81:
		return decode.Dnp3Response, true
	case 0x82:
		return decode.Dnp3UnsolicitedResponse, true
	default:
		return 0, false
	}
}
