package icsrule

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quinspect/quinspect/addrset"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

func acceptOnly(cidr string) *addrset.List {
	set := addrset.NewAddressSet()
	pfx, _ := netip.ParsePrefix(cidr)
	set.AddCIDR(pfx)
	return &addrset.List{Accept: set}
}

func anyPort() *addrset.PortList { return &addrset.PortList{} }

func TestBasicRuleUniDirectionMatchesForwardOnly(t *testing.T) {
	r := &BasicRule{
		RID: 1, Action: ActionAllow, Direction: DirUni,
		SrcIP: acceptOnly("10.0.0.0/24"), SrcPort: anyPort(),
		DstIP: acceptOnly("10.0.1.0/24"), DstPort: anyPort(),
		Active: true,
	}
	forward := Flow{SrcIP: netip.MustParseAddr("10.0.0.5"), DstIP: netip.MustParseAddr("10.0.1.5")}
	backward := Flow{SrcIP: netip.MustParseAddr("10.0.1.5"), DstIP: netip.MustParseAddr("10.0.0.5")}
	assert.True(t, r.Match(forward))
	assert.False(t, r.Match(backward), "Uni direction must not accept the swapped orientation")
}

func TestBasicRuleBiDirectionMatchesEitherOrientation(t *testing.T) {
	r := &BasicRule{
		RID: 2, Action: ActionAllow, Direction: DirBi,
		SrcIP: acceptOnly("10.0.0.0/24"), SrcPort: anyPort(),
		DstIP: acceptOnly("10.0.1.0/24"), DstPort: anyPort(),
		Active: true,
	}
	forward := Flow{SrcIP: netip.MustParseAddr("10.0.0.5"), DstIP: netip.MustParseAddr("10.0.1.5")}
	backward := Flow{SrcIP: netip.MustParseAddr("10.0.1.5"), DstIP: netip.MustParseAddr("10.0.0.5")}
	assert.True(t, r.Match(forward))
	assert.True(t, r.Match(backward))
}

func TestBasicRuleWithArgRequiresAppLayerAndFamilyMatch(t *testing.T) {
	fc := uint8(0x05)
	r := &BasicRule{
		RID: 3, Action: ActionAllow, Direction: DirUni,
		SrcIP: &addrset.List{}, SrcPort: anyPort(), DstIP: &addrset.List{}, DstPort: anyPort(),
		Arg:    ModbusReqArg{FunctionCode: &fc},
		Active: true,
	}

	noApp := Flow{}
	assert.False(t, r.Match(noApp), "rule with an Arg requires an application layer")

	wrongFamily := Flow{App: &decode.ApplicationLayer{
		Type:   protocol.Application(protocol.AppDNP3),
		DNP3:   &decode.Dnp3Header{},
	}}
	assert.False(t, r.Match(wrongFamily))

	matching := Flow{App: &decode.ApplicationLayer{
		Type: protocol.Application(protocol.AppModbusReq),
		ModbusReq: &decode.ModbusReqHeader{
			FunctionCode: 0x05,
			PDU:          decode.ModbusReqPDU{WriteSingleCoil: &decode.WriteSingleCoilReq{OutputAddress: 100, OutputValue: 0xFF00}},
		},
	}}
	assert.True(t, r.Match(matching))
}

func TestModbusReqArgWildcardFunctionCode(t *testing.T) {
	a := ModbusReqArg{}
	app := &decode.ApplicationLayer{ModbusReq: &decode.ModbusReqHeader{FunctionCode: 0x03,
		PDU: decode.ModbusReqPDU{ReadRegisters: &decode.ReadRegistersReq{StartAddress: 10, Count: 4}}}}
	require.NotNil(t, app.ModbusReq)
	assert.True(t, a.Match(app))
}

func TestModbusRspArgExceptionCode(t *testing.T) {
	code := uint8(2)
	a := ModbusRspArg{ExceptionCode: &code}
	isExc := true
	a.IsException = &isExc
	app := &decode.ApplicationLayer{ModbusRsp: &decode.ModbusRspHeader{FunctionCode: 0x81, IsException: true, ExceptionCode: 2}}
	assert.True(t, a.Match(app))

	app2 := &decode.ApplicationLayer{ModbusRsp: &decode.ModbusRspHeader{FunctionCode: 0x81, IsException: true, ExceptionCode: 3}}
	assert.False(t, a.Match(app2))
}
