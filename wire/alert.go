// Package wire defines the native-adapter boundary struct emitted for
// every rule hit, tagged for gogo/protobuf the way heplify tags its HEP
// chunks for wire transmission to a collector.
package wire

import "github.com/gogo/protobuf/proto"

// EngineKind names which rule engine produced an AlertEvent.
type EngineKind int32

const (
	EngineICSWhitelist EngineKind = 0
	EngineSuricata     EngineKind = 1
)

// AlertEvent is the flat wire record emitted at the native-adapter
// boundary (spec §6): which engine and rule fired, the action taken,
// and enough of the observed flow to correlate the alert downstream.
type AlertEvent struct {
	Engine    EngineKind `protobuf:"varint,1,opt,name=engine,proto3,enum=quinspect.wire.EngineKind" json:"engine,omitempty"`
	RuleID    uint32     `protobuf:"varint,2,opt,name=rule_id,json=ruleId,proto3" json:"rule_id,omitempty"`
	Action    string     `protobuf:"bytes,3,opt,name=action,proto3" json:"action,omitempty"`
	Msg       string     `protobuf:"bytes,4,opt,name=msg,proto3" json:"msg,omitempty"`
	SrcIP     string     `protobuf:"bytes,5,opt,name=src_ip,json=srcIp,proto3" json:"src_ip,omitempty"`
	SrcPort   uint32     `protobuf:"varint,6,opt,name=src_port,json=srcPort,proto3" json:"src_port,omitempty"`
	DstIP     string     `protobuf:"bytes,7,opt,name=dst_ip,json=dstIp,proto3" json:"dst_ip,omitempty"`
	DstPort   uint32     `protobuf:"varint,8,opt,name=dst_port,json=dstPort,proto3" json:"dst_port,omitempty"`
	Protocol  string     `protobuf:"bytes,9,opt,name=protocol,proto3" json:"protocol,omitempty"`
}

func (m *AlertEvent) Reset()         { *m = AlertEvent{} }
func (m *AlertEvent) String() string { return proto.CompactTextString(m) }
func (*AlertEvent) ProtoMessage()    {}

// Marshal encodes the event using gogo/protobuf's reflection-free
// Marshal path, matching heplify's HEP chunk encoding approach.
func (m *AlertEvent) Marshal() ([]byte, error) {
	return proto.Marshal(m)
}
