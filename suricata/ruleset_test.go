package suricata

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSetSeparatesTCPAndUDPBuckets(t *testing.T) {
	rs := NewRuleSet()
	text := `alert tcp any any -> any 502 (msg:"tcp rule"; sid:1;)
alert udp any any -> any 47808 (msg:"udp rule"; sid:2;)
`
	require.NoError(t, rs.LoadRules(text))
	assert.Equal(t, 2, rs.Len())

	tcpPkt := Packet{
		SrcIP: netip.MustParseAddr("10.0.0.1"), SrcPort: 40000,
		DstIP: netip.MustParseAddr("10.0.0.2"), DstPort: 502,
		Transport: TransportTCP, Payload: []byte("x"),
	}
	r, ok := rs.Detect(tcpPkt)
	require.True(t, ok)
	assert.Equal(t, uint32(1), r.Sid)

	udpPkt := tcpPkt
	udpPkt.Transport = TransportUDP
	udpPkt.DstPort = 47808
	r, ok = rs.Detect(udpPkt)
	require.True(t, ok)
	assert.Equal(t, uint32(2), r.Sid)

	// A TCP packet never matches a UDP-bucketed rule even with a
	// matching destination port.
	mismatched := tcpPkt
	mismatched.DstPort = 47808
	_, ok = rs.Detect(mismatched)
	assert.False(t, ok)
}

func TestRuleSetLoadRulesSkipsCommentsAndBlankLines(t *testing.T) {
	rs := NewRuleSet()
	text := "# a comment\n\nalert tcp any any -> any 502 (msg:\"m\"; sid:5;)\n"
	require.NoError(t, rs.LoadRules(text))
	assert.Equal(t, 1, rs.Len())
}

func TestRuleSetLoadRulesPropagatesParseError(t *testing.T) {
	rs := NewRuleSet()
	err := rs.LoadRules("not a valid rule line\n")
	assert.Error(t, err)
}
