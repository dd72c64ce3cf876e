package suricata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var contentTestPayload = []byte{1, 2, 3, 4, 5, 6, 1, 2, 3, 4, 5, 6}

func TestContentNotSetFindsFirstOccurrence(t *testing.T) {
	c := Content{Pattern: []byte{1, 2, 3}, Pos: PosNotSet}
	pos, ok := c.Match(contentTestPayload, 0)
	assert.True(t, ok)
	assert.Equal(t, 3, pos)
}

func TestContentRelativeSearchesPastLastPos(t *testing.T) {
	first := Content{Pattern: []byte{1, 2, 3}, Pos: PosNotSet}
	pos, ok := first.Match(contentTestPayload, 0)
	assert.True(t, ok)

	second := Content{Pattern: []byte{1, 2, 3}, Pos: PosRelative, Distance: 3, Within: 3}
	pos2, ok := second.Match(contentTestPayload, pos)
	assert.True(t, ok)
	assert.Equal(t, 9, pos2)
}

func TestContentAbsoluteWindow(t *testing.T) {
	c := Content{Pattern: []byte{4, 5, 6}, Pos: PosAbsolute, Offset: 0, Depth: 6}
	pos, ok := c.Match(contentTestPayload, 0)
	assert.True(t, ok)
	assert.Equal(t, 6, pos)
}

func TestContentAbsoluteWindowMiss(t *testing.T) {
	c := Content{Pattern: []byte{4, 5, 6}, Pos: PosAbsolute, Offset: 0, Depth: 3}
	_, ok := c.Match(contentTestPayload, 0)
	assert.False(t, ok)
}

func TestContentStartsWithAndEndsWith(t *testing.T) {
	sw := Content{Pattern: []byte{1, 2}, Pos: PosStartsWith}
	_, ok := sw.Match(contentTestPayload, 0)
	assert.True(t, ok)

	ew := Content{Pattern: []byte{5, 6}, Pos: PosEndsWith}
	_, ok = ew.Match(contentTestPayload, 0)
	assert.True(t, ok)
}

func TestContentNocaseLowersBothSides(t *testing.T) {
	c := Content{Pattern: []byte("ABC"), Nocase: true, Pos: PosNotSet}
	pos, ok := c.Match([]byte("xxabcxx"), 0)
	assert.True(t, ok)
	assert.Equal(t, 5, pos)
}
