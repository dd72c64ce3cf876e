package bytesio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC16RoundTrip(t *testing.T) {
	data := []byte{0x05, 0x64, 0x0B, 0xC4, 0x01, 0x00, 0x02, 0x00}
	crc := CRC16(CRC16_3D65, data, 0)
	complemented := ^crc
	assert.True(t, VerifyCRC16(CRC16_3D65, complemented, data, 0))
	assert.False(t, VerifyCRC16(CRC16_3D65, complemented+1, data, 0))
}

func TestCRC16DifferentPolynomialsDiverge(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	a := CRC16(CRC16_3D65, data, 0)
	b := CRC16(CRC16_9949, data, 0)
	assert.NotEqual(t, a, b)
}
