package suricata

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRuleAndDetectModbusWrite(t *testing.T) {
	rule, err := ParseRule(`alert tcp any any -> any 502 (msg:"Modbus single write"; content:"|00 06|"; offset:7; depth:2; sid:1000001; rev:1;)`)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000001), rule.Sid)
	assert.Equal(t, TransportTCP, rule.Transport)

	payload := make([]byte, 12)
	payload[7] = 0x00
	payload[8] = 0x06

	store := NewFlowStore()
	p := Packet{
		SrcIP: netip.MustParseAddr("10.0.0.1"), SrcPort: 40000,
		DstIP: netip.MustParseAddr("10.0.0.2"), DstPort: 502,
		Transport: TransportTCP, Payload: payload,
	}
	assert.True(t, rule.Detect(p, store))
}

func TestDetectHeaderBidirectional(t *testing.T) {
	rule, err := ParseRule(`alert tcp 10.0.0.1 any <> 10.0.0.2 502 (msg:"any"; sid:2; rev:1;)`)
	require.NoError(t, err)
	store := NewFlowStore()

	forward := Packet{
		SrcIP: netip.MustParseAddr("10.0.0.1"), SrcPort: 1234,
		DstIP: netip.MustParseAddr("10.0.0.2"), DstPort: 502,
		Transport: TransportTCP,
	}
	swapped := Packet{
		SrcIP: netip.MustParseAddr("10.0.0.2"), SrcPort: 502,
		DstIP: netip.MustParseAddr("10.0.0.1"), DstPort: 1234,
		Transport: TransportTCP,
	}
	assert.True(t, rule.Detect(forward, store))
	assert.True(t, rule.Detect(swapped, store))
}

func TestIPv6BypassAlwaysPasses(t *testing.T) {
	rule, err := ParseRule(`alert tcp 10.0.0.1 any -> 10.0.0.2 502 (msg:"any"; sid:3; rev:1;)`)
	require.NoError(t, err)
	store := NewFlowStore()

	p := Packet{
		SrcIP: netip.MustParseAddr("2001:db8::1"), SrcPort: 1234,
		DstIP: netip.MustParseAddr("2001:db8::2"), DstPort: 502,
		Transport: TransportTCP,
	}
	assert.True(t, rule.Detect(p, store), "IPv6 addresses bypass address-list checks, per upstream limitation")
}

func TestFlowbitsSetThenIsSet(t *testing.T) {
	store := NewFlowStore()
	setter, err := ParseRule(`alert tcp any any -> any any (msg:"set"; flowbits:set,seen; sid:10; rev:1;)`)
	require.NoError(t, err)
	checker, err := ParseRule(`alert tcp any any -> any any (msg:"check"; flowbits:isset,seen; sid:11; rev:1;)`)
	require.NoError(t, err)

	p := Packet{SrcIP: netip.MustParseAddr("10.0.0.1"), DstIP: netip.MustParseAddr("10.0.0.2"), Transport: TransportTCP}
	assert.False(t, checker.Detect(p, store), "flowbit not yet set")
	assert.True(t, setter.Detect(p, store))
	assert.True(t, checker.Detect(p, store))
}

func TestRuleSetDedupSkipsRepeatedSidRev(t *testing.T) {
	rs := NewRuleSet()
	text := `alert tcp any any -> any 502 (msg:"a"; sid:1; rev:1;)
alert tcp any any -> any 502 (msg:"a"; sid:1; rev:1;)
alert tcp any any -> any 502 (msg:"b"; sid:2; rev:1;)`
	require.NoError(t, rs.LoadRules(text))
	assert.Equal(t, 2, rs.Len())
}
