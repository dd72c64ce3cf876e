package addrset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortSetExactAndRange(t *testing.T) {
	s := NewPortSet()
	s.AddExact(502)
	s.AddRange(8000, 8010)

	assert.True(t, s.Contains(502))
	assert.True(t, s.Contains(8005))
	assert.False(t, s.Contains(503))
	assert.False(t, s.Contains(7999))
}

func TestPortListAcceptExceptRule(t *testing.T) {
	accept := NewPortSet()
	accept.AddRange(1, 1024)
	except := NewPortSet()
	except.AddExact(502)

	l := &PortList{Accept: accept, Except: except}
	assert.True(t, l.Check(80))
	assert.False(t, l.Check(502), "excepted port always fails")
	assert.False(t, l.Check(2000), "outside accept range fails")
}

func TestPortListNilMeansAny(t *testing.T) {
	l := &PortList{}
	assert.True(t, l.Check(65000))
}
