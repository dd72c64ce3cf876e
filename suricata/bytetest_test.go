package suricata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteTestEqualMatches(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0x2A}
	bt := ByteTest{NumBytes: 4, Op: ByteTestEqual, Value: 42, BigEndian: true}
	pos, ok := bt.Apply(payload, 0)
	assert.True(t, ok)
	assert.Equal(t, 0, pos, "byte_test never advances the cursor")
}

func TestByteTestGreaterFails(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0x05}
	bt := ByteTest{NumBytes: 4, Op: ByteTestGreater, Value: 42, BigEndian: true}
	_, ok := bt.Apply(payload, 0)
	assert.False(t, ok)
}

func TestByteTestNegateInvertsResult(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0x05}
	bt := ByteTest{NumBytes: 4, Op: ByteTestGreater, Value: 42, BigEndian: true, Negate: true}
	_, ok := bt.Apply(payload, 0)
	assert.True(t, ok)
}

func TestByteTestAndOr(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0b0000_0110}
	and := ByteTest{NumBytes: 4, Op: ByteTestAnd, Value: 0b0000_0010, BigEndian: true}
	_, ok := and.Apply(payload, 0)
	assert.True(t, ok)

	or := ByteTest{NumBytes: 4, Op: ByteTestOr, Value: 0b0000_0110, BigEndian: true}
	_, ok = or.Apply(payload, 0)
	assert.True(t, ok)
}

func TestByteTestStringHex(t *testing.T) {
	payload := append([]byte("2A"), make([]byte, 4)...)
	bt := ByteTest{NumBytes: 2, Op: ByteTestEqual, Value: 0x2A, AsString: true, StringType: NumHex}
	_, ok := bt.Apply(payload, 0)
	assert.True(t, ok)
}
