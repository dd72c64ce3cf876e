package suricata

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRuleBracketedAddressAndPortLists(t *testing.T) {
	r, err := ParseRule(`alert tcp [10.0.0.1,10.0.0.2] [502,503] -> ![192.168.1.0/24] any (msg:"test"; sid:1;)`)
	require.NoError(t, err)

	a1 := netip.MustParseAddr("10.0.0.1")
	a2 := netip.MustParseAddr("10.0.0.2")
	assert.True(t, r.SrcAddr.Check(a1))
	assert.True(t, r.SrcAddr.Check(a2))
	assert.True(t, r.SrcPort.Check(502))
	assert.True(t, r.SrcPort.Check(503))
	assert.False(t, r.SrcPort.Check(504))

	inRange := netip.MustParseAddr("192.168.1.5")
	assert.False(t, r.DstAddr.Check(inRange), "except CIDR must exclude")
	outside := netip.MustParseAddr("192.168.2.5")
	assert.True(t, r.DstAddr.Check(outside))
}

func TestParsePortTokenRange(t *testing.T) {
	list, err := parsePortToken("1000:2000")
	require.NoError(t, err)
	assert.True(t, list.Check(1500))
	assert.False(t, list.Check(999))
	assert.False(t, list.Check(2001))
}

func TestParseRuleBidirectionalToken(t *testing.T) {
	r, err := ParseRule(`alert udp any any <> any any (msg:"bi"; sid:2;)`)
	require.NoError(t, err)
	assert.Equal(t, DirBi, r.Direction)
	assert.Equal(t, TransportUDP, r.Transport)
}

func TestParseRuleMissingOptionsErrors(t *testing.T) {
	_, err := ParseRule(`alert tcp any any -> any any`)
	assert.Error(t, err)
}

func TestParseRuleUnknownOptionErrors(t *testing.T) {
	_, err := ParseRule(`alert tcp any any -> any any (msg:"x"; sid:3; bogus_option:1;)`)
	assert.Error(t, err)
}

func TestDecodeContentPatternExpandsHexSegment(t *testing.T) {
	pattern, err := decodeContentPattern(`ab|00 06|cd`)
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 'b', 0x00, 0x06, 'c', 'd'}, pattern)
}

func TestDecodeContentPatternUnterminatedHexErrors(t *testing.T) {
	_, err := decodeContentPattern(`ab|0006`)
	assert.Error(t, err)
}

func TestParseDsizeValGreaterEqualAndLessEqual(t *testing.T) {
	ge, err := parseDsizeVal(">=10")
	require.NoError(t, err)
	assert.Equal(t, Dsize{Op: DsizeGreater, Value: 9}, ge)

	le, err := parseDsizeVal("<=10")
	require.NoError(t, err)
	assert.Equal(t, Dsize{Op: DsizeLess, Value: 11}, le)
}

func TestParseDsizeValRange(t *testing.T) {
	d, err := parseDsizeVal("10<>20")
	require.NoError(t, err)
	assert.Equal(t, Dsize{Op: DsizeRange, RangeMin: 10, RangeMax: 20}, d)
}

func TestParsePcreValWithRelativeAndCaseInsensitive(t *testing.T) {
	re, relative, err := parsePcreVal(`"/^abc$/iR"`)
	require.NoError(t, err)
	assert.True(t, relative)
	assert.True(t, re.MatchString("ABC"))
}

func TestParseByteJumpValWithOptions(t *testing.T) {
	bj, err := parseByteJumpVal("2,0,relative,little,multiplier 4")
	require.NoError(t, err)
	assert.Equal(t, 2, bj.NumBytes)
	assert.Equal(t, 0, bj.Offset)
	assert.True(t, bj.Relative)
	assert.False(t, bj.BigEndian)
	require.NotNil(t, bj.Multiplier)
	assert.Equal(t, 4, *bj.Multiplier)
}

func TestParseByteTestValDefaultsAndNegate(t *testing.T) {
	bt, err := parseByteTestVal("4,!=,100,0")
	require.NoError(t, err)
	assert.True(t, bt.Negate)
	assert.Equal(t, ByteTestEqual, bt.Op)
	assert.Equal(t, uint64(100), bt.Value)
	assert.True(t, bt.BigEndian)
	assert.Equal(t, NumHex, bt.StringType)
}
