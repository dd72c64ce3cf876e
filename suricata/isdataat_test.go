package suricata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDataAtAbsoluteWithinBounds(t *testing.T) {
	payload := make([]byte, 10)
	d := IsDataAt{Pos: 10}
	assert.True(t, d.Check(payload, 0))
	d2 := IsDataAt{Pos: 11}
	assert.False(t, d2.Check(payload, 0))
}

func TestIsDataAtRelativeMeasuresFromLastPos(t *testing.T) {
	payload := make([]byte, 10)
	d := IsDataAt{Pos: 4, Relative: true}
	assert.True(t, d.Check(payload, 6))
	assert.False(t, d.Check(payload, 7))
}

func TestIsDataAtNegateInverts(t *testing.T) {
	payload := make([]byte, 10)
	d := IsDataAt{Pos: 11, Negate: true}
	assert.True(t, d.Check(payload, 0))
}
