package dissect

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/protocol"
)

func TestDissectVLANParsesPriorityAndInnerType(t *testing.T) {
	// TCI: priority=5 (101), DEI=1, ID=0x123; inner type 0x0800 (IPv4).
	tci := uint16(5)<<13 | uint16(1)<<12 | 0x123
	buf := make([]byte, 4)
	binary.BigEndian.PutUint16(buf[0:2], tci)
	binary.BigEndian.PutUint16(buf[2:4], 0x0800)

	h, perr := DissectVLAN(bytesio.NewCursor(buf))
	require.Nil(t, perr)
	assert.Equal(t, uint8(5), h.Priority)
	assert.Equal(t, uint8(1), h.DEI)
	assert.Equal(t, uint16(0x123), h.ID)
	assert.Equal(t, uint16(0x0800), h.InnerType)

	proto, ok := vlanInnerProtocol(h.InnerType)
	assert.True(t, ok)
	assert.Equal(t, protocol.NetworkIPv4, proto)
}

func TestDissectVLANTruncatedReturnsError(t *testing.T) {
	_, perr := DissectVLAN(bytesio.NewCursor([]byte{0x00}))
	require.NotNil(t, perr)
}

func TestDissectIPv6ParsesFixedHeader(t *testing.T) {
	buf := make([]byte, 40)
	verClassFlow := uint32(6)<<28 | uint32(0x12)<<20 | 0x34567
	binary.BigEndian.PutUint32(buf[0:4], verClassFlow)
	binary.BigEndian.PutUint16(buf[4:6], 100) // payload length
	buf[6] = 6                                // next header: TCP
	buf[7] = 64                               // hop limit
	srcIP := []byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	dstIP := []byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2}
	copy(buf[8:24], srcIP)
	copy(buf[24:40], dstIP)

	h, perr := DissectIPv6(bytesio.NewCursor(buf))
	require.Nil(t, perr)
	assert.Equal(t, uint8(6), h.Version)
	assert.Equal(t, uint8(0x12), h.TrafficClass)
	assert.Equal(t, uint32(0x34567), h.FlowLabel)
	assert.Equal(t, uint16(100), h.PayloadLength)
	assert.Equal(t, uint8(6), h.NextHeader)
	assert.Equal(t, uint8(64), h.HopLimit)
	assert.Equal(t, "2001:db8::1", h.SrcIP.String())
	assert.Equal(t, "2001:db8::2", h.DstIP.String())

	trans, ok := ipv6NextTransport(h.NextHeader)
	assert.True(t, ok)
	assert.Equal(t, protocol.TransportTCP, trans)
}

func TestDissectIPv6TruncatedReturnsError(t *testing.T) {
	_, perr := DissectIPv6(bytesio.NewCursor(make([]byte, 10)))
	require.NotNil(t, perr)
}

func TestDissectUDPParsesHeaderAndPayload(t *testing.T) {
	buf := make([]byte, 8+5)
	binary.BigEndian.PutUint16(buf[0:2], 47808)
	binary.BigEndian.PutUint16(buf[2:4], 47808)
	binary.BigEndian.PutUint16(buf[4:6], 13)
	binary.BigEndian.PutUint16(buf[6:8], 0xBEEF)
	copy(buf[8:], []byte("hello"))

	h, perr := DissectUDP(bytesio.NewCursor(buf))
	require.Nil(t, perr)
	assert.Equal(t, uint16(47808), h.SrcPort)
	assert.Equal(t, uint16(47808), h.DstPort)
	assert.Equal(t, uint16(13), h.Length)
	assert.Equal(t, uint16(0xBEEF), h.Checksum)
	assert.Equal(t, []byte("hello"), h.Payload)
}

func TestDissectModbusRspExceptionFrame(t *testing.T) {
	buf := []byte{
		0x00, 0x01, // transaction id
		0x00, 0x00, // protocol id
		0x00, 0x03, // length
		0x01,       // unit id
		0x81,       // function code 1 with exception bit set
		0x02,       // exception code: illegal data address
	}
	h, perr := DissectModbusRsp(bytesio.NewCursor(buf))
	require.Nil(t, perr)
	assert.True(t, h.IsException)
	assert.Equal(t, uint8(0x02), h.ExceptionCode)
	assert.Equal(t, uint8(0x81), h.FunctionCode)
}

func TestDissectModbusRspReadHoldingRegisters(t *testing.T) {
	buf := []byte{
		0x00, 0x02, 0x00, 0x00, 0x00, 0x07, 0x01,
		0x03,       // function: read holding registers
		0x04,       // byte count
		0x00, 0x0A, // register 1
		0x00, 0x0B, // register 2
	}
	h, perr := DissectModbusRsp(bytesio.NewCursor(buf))
	require.Nil(t, perr)
	assert.False(t, h.IsException)
	require.NotNil(t, h.PDU.ReadRegisters)
	assert.Equal(t, uint8(4), h.PDU.ReadRegisters.ByteCount)
	assert.Equal(t, []byte{0x00, 0x0A, 0x00, 0x0B}, h.PDU.ReadRegisters.Data)
}

func buildDNP3Frame(t *testing.T, appPayload []byte) []byte {
	t.Helper()
	ctrl := uint8(0xC4) // direction+primary set, DL function 4 (unconfirmed user data)
	dest := uint16(4)
	src := uint16(3)
	length := uint8(5 + len(appPayload))

	header := []byte{0x05, 0x64, length, ctrl, byte(dest), byte(dest >> 8), byte(src), byte(src >> 8)}
	headerCRC := ^bytesio.CRC16(bytesio.CRC16_3D65, header, 0)

	buf := append([]byte{}, header...)
	buf = append(buf, byte(headerCRC), byte(headerCRC>>8))

	remaining := appPayload
	for len(remaining) > 0 {
		n := 16
		if len(remaining) < n {
			n = len(remaining)
		}
		block := remaining[:n]
		crc := ^bytesio.CRC16(bytesio.CRC16_3D65, block, 0)
		buf = append(buf, block...)
		buf = append(buf, byte(crc), byte(crc>>8))
		remaining = remaining[n:]
	}
	return buf
}

func TestDissectDNP3ValidFrameDecodesFunctionCode(t *testing.T) {
	// transport byte: FIN+FIR set, seq 0; app control 0xC0 | function READ (0x01)
	appPayload := []byte{0xC0, 0xC0, 0x01, 0x3C, 0x01, 0x06}
	frame := buildDNP3Frame(t, appPayload)

	h, perr := DissectDNP3(bytesio.NewCursor(frame))
	require.Nil(t, perr)
	assert.True(t, h.TransportFIN)
	assert.True(t, h.TransportFIR)
	assert.Equal(t, uint16(4), h.Destination)
	assert.Equal(t, uint16(3), h.Source)
	assert.Equal(t, decode.Dnp3Read, h.Function)
}

func TestDissectDNP3BadStartBytesIsUnknownPayload(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	_, perr := DissectDNP3(bytesio.NewCursor(buf))
	require.NotNil(t, perr)
}

func TestDissectDNP3CorruptHeaderCRCFails(t *testing.T) {
	frame := buildDNP3Frame(t, []byte{0xC0, 0xC0, 0x01, 0x3C, 0x01, 0x06})
	frame[9] ^= 0xFF // corrupt header CRC high byte
	_, perr := DissectDNP3(bytesio.NewCursor(frame))
	require.NotNil(t, perr)
}

func TestDissectDNP3UnrecognizedFunctionCodeFails(t *testing.T) {
	// app control 0xFE, function code 0x3C, which dnp3FunctionFromCode maps to nothing
	appPayload := []byte{0xC0, 0xFE, 0x3C, 0x01, 0x06}
	frame := buildDNP3Frame(t, appPayload)

	_, perr := DissectDNP3(bytesio.NewCursor(frame))
	require.NotNil(t, perr)
}

func berTag(tag byte, value []byte) []byte {
	out := []byte{tag, byte(len(value))}
	return append(out, value...)
}

func TestDissectGOOSEParsesStNumAndGoID(t *testing.T) {
	inner := berTag(tagGoCBRef, []byte("GoCB1"))
	inner = append(inner, berTag(tagGoID, []byte("breaker1"))...)
	inner = append(inner, berTag(tagStNum, []byte{0x00, 0x00, 0x00, 0x0A})...)
	inner = append(inner, berTag(tagSqNum, []byte{0x00, 0x00, 0x00, 0x01})...)

	outer := append([]byte{0x60, byte(len(inner))}, inner...)
	envelope := make([]byte, 8)
	binary.BigEndian.PutUint16(envelope[0:2], 1)
	binary.BigEndian.PutUint16(envelope[2:4], uint16(8+len(outer)))
	frame := append(envelope, outer...)

	h, perr := DissectGOOSE(bytesio.NewCursor(frame))
	require.Nil(t, perr)
	assert.Equal(t, []byte("breaker1"), h.GoID)
	assert.Equal(t, uint32(10), h.StNum)
	assert.Equal(t, uint32(1), h.SqNum)
}

func TestDissectSVParsesSvIDFromASDU(t *testing.T) {
	asduInner := berTag(tagSvID, []byte("MSVCB1"))
	asduInner = append(asduInner, berTag(tagSmpCnt, []byte{0x00, 0x01})...)
	asdu := append([]byte{tagASDU, byte(len(asduInner))}, asduInner...)

	seqASDU := append([]byte{tagSeqASDU, byte(len(asdu))}, asdu...)
	noASDU := berTag(0x80, []byte{0x01})
	inner := append(noASDU, seqASDU...)

	outer := append([]byte{0x60, byte(len(inner))}, inner...)
	envelope := make([]byte, 8)
	binary.BigEndian.PutUint16(envelope[0:2], 0x4000)
	binary.BigEndian.PutUint16(envelope[2:4], uint16(8+len(outer)))
	frame := append(envelope, outer...)

	h, perr := DissectSV(bytesio.NewCursor(frame))
	require.Nil(t, perr)
	require.Len(t, h.ASDUs, 1)
	assert.Equal(t, []byte("MSVCB1"), h.ASDUs[0].SvID)
	assert.Equal(t, uint16(1), h.ASDUs[0].SmpCnt)
}
