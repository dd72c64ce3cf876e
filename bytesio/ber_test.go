package bytesio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBerTLShortForm(t *testing.T) {
	c := NewCursor([]byte{0x80, 0x03, 0x01, 0x02, 0x03})
	tl, v, err := c.BerTLV()
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), tl.Tag)
	assert.Equal(t, 3, tl.Length)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, v)
}

func TestBerTLLongForm(t *testing.T) {
	// length byte 0x82 => 2 following length bytes, value 0x0100 = 256
	payload := make([]byte, 256)
	data := append([]byte{0x81, 0x82, 0x01, 0x00}, payload...)
	c := NewCursor(data)
	tl, v, err := c.BerTLV()
	require.NoError(t, err)
	assert.Equal(t, 256, tl.Length)
	assert.Len(t, v, 256)
}

func TestBerTLIndefiniteForm(t *testing.T) {
	// indefinite: sum 16-bit words until a zero word
	data := []byte{0x81, 0x80, 0x00, 0x02, 0x00, 0x03, 0x00, 0x00, 0xAA, 0xBB, 0xCC, 0xCC, 0xDD}
	c := NewCursor(data)
	tl, _, err := c.BerTLV()
	require.NoError(t, err)
	assert.Equal(t, 5, tl.Length)
}
