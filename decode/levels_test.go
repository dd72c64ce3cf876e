package decode

import (
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quinspect/quinspect/protocol"
)

func buildL4Decode() *Decode {
	net4 := &NetworkLayer{
		Type: protocol.Network(protocol.NetworkIPv4),
		IPv4: &IPv4Header{SrcIP: net.ParseIP("10.0.0.1"), DstIP: net.ParseIP("10.0.0.2")},
	}
	trans := &TransportLayer{
		Type: protocol.Transport(protocol.TransportTCP),
		TCP:  &TCPHeader{SrcPort: 40000, DstPort: 502},
	}
	l3 := L3Packet{L2Packet: L2Packet{Link: &LinkLayer{}}, Net: net4}
	l4 := &L4Packet{L3Packet: l3, Trans: trans}
	return &Decode{Level: LevelL4, L4: l4}
}

func TestTransLevelExposesFourTupleAndTypes(t *testing.T) {
	d := buildL4Decode()

	transLevel := d.AsTransLevel()
	require.NotNil(t, transLevel)
	assert.Equal(t, netip.MustParseAddr("10.0.0.1"), transLevel.GetSrcIP())
	assert.Equal(t, netip.MustParseAddr("10.0.0.2"), transLevel.GetDstIP())
	assert.Equal(t, protocol.NetworkIPv4, transLevel.GetNetType())
	assert.Equal(t, uint16(40000), transLevel.GetSrcPort())
	assert.Equal(t, uint16(502), transLevel.GetDstPort())
	assert.Equal(t, protocol.TransportTCP, transLevel.GetTranType())
}

func TestNetLevelIPAccessorsReturnZeroAddrForGOOSE(t *testing.T) {
	l2 := L2Packet{Link: &LinkLayer{}}
	l3 := &L3Packet{
		L2Packet: l2,
		Net:      &NetworkLayer{Type: protocol.Network(protocol.NetworkGOOSE), GOOSE: &GOOSEHeader{}},
	}
	d := &Decode{Level: LevelL3, L3: l3}

	netLevel := d.AsNetLevel()
	require.NotNil(t, netLevel)
	assert.False(t, netLevel.GetSrcIP().IsValid())
	assert.False(t, netLevel.GetDstIP().IsValid())
	assert.Equal(t, protocol.NetworkGOOSE, netLevel.GetNetType())
}

func TestAppLevelGetAppType(t *testing.T) {
	d := buildL4Decode()
	l5 := &L5Packet{
		L4Packet: *d.L4,
		App: &ApplicationLayer{
			Type:      protocol.Application(protocol.AppModbusRsp),
			ModbusRsp: &ModbusRspHeader{},
		},
	}
	d.Level = LevelL5
	d.L5 = l5

	appLevel := d.AsAppLevel()
	require.NotNil(t, appLevel)
	assert.Equal(t, protocol.AppModbusRsp, appLevel.GetAppType())
}

func TestAsTransLevelNilBelowL4(t *testing.T) {
	d := &Decode{Level: LevelL3, L3: &L3Packet{L2Packet: L2Packet{Link: &LinkLayer{}}, Net: &NetworkLayer{}}}
	assert.Nil(t, d.AsTransLevel())
}
