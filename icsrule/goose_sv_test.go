package icsrule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quinspect/quinspect/addrset"
	"github.com/quinspect/quinspect/decode"
)

func TestBasicRuleMatchesGOOSEViaNetworkLayer(t *testing.T) {
	minStNum := uint32(5)
	r := &BasicRule{
		RID: 1, Action: ActionAllow, Direction: DirUni,
		SrcIP: &addrset.List{}, SrcPort: &addrset.PortList{}, DstIP: &addrset.List{}, DstPort: &addrset.PortList{},
		Arg:    GOOSEArg{GoID: []byte("breaker1"), MinStNum: &minStNum},
		Active: true,
	}

	match := Flow{Net: &decode.NetworkLayer{GOOSE: &decode.GOOSEHeader{GoID: []byte("breaker1"), StNum: 10}}}
	assert.True(t, r.Match(match))

	staleOrWrong := Flow{Net: &decode.NetworkLayer{GOOSE: &decode.GOOSEHeader{GoID: []byte("breaker1"), StNum: 1}}}
	assert.False(t, r.Match(staleOrWrong), "stNum below MinStNum must not match")

	noNet := Flow{}
	assert.False(t, r.Match(noNet))
}

func TestBasicRuleMatchesSVViaTransportLayer(t *testing.T) {
	r := &BasicRule{
		RID: 2, Action: ActionAllow, Direction: DirUni,
		SrcIP: &addrset.List{}, SrcPort: &addrset.PortList{}, DstIP: &addrset.List{}, DstPort: &addrset.PortList{},
		Arg:    SVArg{SvID: []byte("MSVCB1")},
		Active: true,
	}

	match := Flow{Trans: &decode.TransportLayer{SV: &decode.SVHeader{ASDUs: []decode.SVASDU{{SvID: []byte("MSVCB1")}}}}}
	assert.True(t, r.Match(match))

	noMatch := Flow{Trans: &decode.TransportLayer{SV: &decode.SVHeader{ASDUs: []decode.SVASDU{{SvID: []byte("other")}}}}}
	assert.False(t, r.Match(noMatch))
}

func TestRuleSetDetectsGOOSERuleAheadOfAppBuckets(t *testing.T) {
	rs := NewRuleSet(nil)
	rs.insert(&BasicRule{
		RID: 3, Action: ActionAlert, Direction: DirUni,
		SrcIP: &addrset.List{}, SrcPort: &addrset.PortList{}, DstIP: &addrset.List{}, DstPort: &addrset.PortList{},
		Arg:    GOOSEArg{GoID: []byte("breaker1")},
		Active: true,
	})

	flow := Flow{Net: &decode.NetworkLayer{GOOSE: &decode.GOOSEHeader{GoID: []byte("breaker1")}}}
	rule, ok := rs.Detect(flow)
	assert.True(t, ok)
	assert.Equal(t, uint32(3), rule.RID)
}
