package quinspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/dissect"
	"github.com/quinspect/quinspect/protocol"
)

func TestInspectFlagsSuricataSignatureOnModbusWrite(t *testing.T) {
	data := buildEthIPv4TCPModbusWriteForQuinspect(t)

	ins := NewInspector(nil, 0)
	require.NoError(t, ins.Suricata.LoadRules(
		`alert tcp any any -> any 502 (msg:"modbus single coil write"; content:"|05|"; offset:7; depth:1; sid:100; rev:1;)`,
	))

	verdict := ins.Inspect(data, nil)
	require.NotNil(t, verdict.SuricataHit)
	assert.Equal(t, uint32(100), verdict.SuricataHit.Sid)
	require.Len(t, verdict.Alerts, 1)
	assert.Equal(t, "modbus single coil write", verdict.Alerts[0].Msg)
	assert.Equal(t, "10.0.0.1", verdict.Alerts[0].SrcIP)
}

func TestInspectNoRuleSetsProducesNoAlerts(t *testing.T) {
	data := buildEthIPv4TCPModbusWriteForQuinspect(t)
	ins := &Inspector{Driver: dissect.NewDriver(0)}
	verdict := ins.Inspect(data, nil)
	assert.Empty(t, verdict.Alerts)
	assert.Nil(t, verdict.ICSHit)
	assert.Nil(t, verdict.SuricataHit)
}

func TestInspectBelowTransportLevelSkipsSuricataDetection(t *testing.T) {
	data := buildEthIPv4TCPModbusWriteForQuinspect(t)

	ins := NewInspector(nil, 0)
	require.NoError(t, ins.Suricata.LoadRules(
		`alert tcp any any -> any 502 (msg:"modbus single coil write"; content:"|05|"; offset:7; depth:1; sid:100; rev:1;)`,
	))

	stop := protocol.Network(protocol.NetworkIPv4)
	verdict := ins.Inspect(data, &stop)
	require.Equal(t, decode.LevelL3, verdict.Decode.Level)
	assert.Nil(t, verdict.SuricataHit)
	assert.Empty(t, verdict.Alerts)
}

// buildEthIPv4TCPModbusWriteForQuinspect duplicates the dissect
// package's test fixture builder since test helpers aren't exported
// across packages.
func buildEthIPv4TCPModbusWriteForQuinspect(t *testing.T) []byte {
	t.Helper()
	var buf []byte
	buf = append(buf, make([]byte, 6)...)
	buf = append(buf, make([]byte, 6)...)
	buf = append(buf, 0x08, 0x00)

	modbus := []byte{0x05, 0x00, 0x64, 0xFF, 0x00}
	mbap := make([]byte, 7)
	putU16 := func(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
	putU16(mbap[0:2], 1)
	putU16(mbap[2:4], 0)
	putU16(mbap[4:6], uint16(1+len(modbus)))
	mbap[6] = 1
	tcpPayload := append(mbap, modbus...)

	tcp := make([]byte, 20)
	putU16(tcp[0:2], 40000)
	putU16(tcp[2:4], 502)
	tcp[12] = 5 << 4
	tcp[13] = 0x18
	putU16(tcp[14:16], 65535)
	tcp = append(tcp, tcpPayload...)

	ip := make([]byte, 20)
	ip[0] = 0x45
	totalLen := 20 + len(tcp)
	putU16(ip[2:4], uint16(totalLen))
	ip[8] = 64
	ip[9] = 6
	copy(ip[12:16], []byte{10, 0, 0, 1})
	copy(ip[16:20], []byte{10, 0, 0, 2})
	ip = append(ip, tcp...)

	buf = append(buf, ip...)
	return buf
}
