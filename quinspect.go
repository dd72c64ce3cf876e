// Package quinspect ties the Protocol-Switch Driver, the ICS whitelist
// engine, and the Suricata-style signature engine into the single
// Parse-then-Detect entry point an embedder calls per frame (spec §6).
package quinspect

import (
	"net/netip"

	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/dissect"
	"github.com/quinspect/quinspect/icsrule"
	"github.com/quinspect/quinspect/protocol"
	"github.com/quinspect/quinspect/suricata"
	"github.com/quinspect/quinspect/wire"
)

// Inspector owns one Driver, one ICS RuleSet, and one Suricata RuleSet,
// and is safe for concurrent Inspect calls once rule loading is done
// (spec's concurrency model: rule sets are read-mostly, guarded
// internally by their own locks).
type Inspector struct {
	Driver   *dissect.Driver
	ICS      *icsrule.RuleSet
	Suricata *suricata.RuleSet
}

// NewInspector builds an Inspector with dedup disabled by default; pass
// a positive dedupBytes to enable the frame-level dedup gate.
func NewInspector(icsDecoders map[string]icsrule.ArgDecoder, dedupBytes int) *Inspector {
	return &Inspector{
		Driver:   dissect.NewDriver(dedupBytes),
		ICS:      icsrule.NewRuleSet(icsDecoders),
		Suricata: suricata.NewRuleSet(),
	}
}

// Verdict is the combined result of running both rule engines over one
// decoded frame.
type Verdict struct {
	Decode       *decode.Decode
	ICSHit       *icsrule.BasicRule
	SuricataHit  *suricata.Surule
	Alerts       []*wire.AlertEvent
}

// Inspect dissects data starting at the link layer (honoring stop, if
// non-nil), then evaluates both rule engines against the resulting
// flow. Either engine's RuleSet may be nil to run only one.
//
// The 4-tuple both engines match against is derived from the decode
// tree itself via the NetLevel/TransLevel capability accessors (spec
// §4.3) rather than supplied by the caller, since a caller handing raw
// (bytes, length) frames off a capture pipeline (spec §6.1) has no
// other source for it.
func (ins *Inspector) Inspect(data []byte, stop dissect.StopPoint) *Verdict {
	d := ins.Driver.Parse(data, stop)
	v := &Verdict{Decode: d}
	flow := flowTupleOf(d)

	appLevel := d.AsAppLevel()
	var app *decode.ApplicationLayer
	if appLevel != nil {
		app = appLevel.GetApplicationLayer()
	}
	var net *decode.NetworkLayer
	var trans *decode.TransportLayer
	if netLevel := d.AsNetLevel(); netLevel != nil {
		net = netLevel.GetNetworkLayer()
	}
	if transLevel := d.AsTransLevel(); transLevel != nil {
		trans = transLevel.GetTransportLayer()
	}

	if ins.ICS != nil {
		if rule, hit := ins.ICS.Detect(icsrule.Flow{
			SrcIP: flow.SrcIP, SrcPort: flow.SrcPort,
			DstIP: flow.DstIP, DstPort: flow.DstPort,
			Net: net, Trans: trans, App: app,
		}); hit {
			v.ICSHit = rule
			v.Alerts = append(v.Alerts, icsAlert(rule, flow))
		}
	}

	// Suricata matches only L4/L5 packets (spec §4.6.1): a decode that
	// never reached the transport layer has no 4-tuple or payload to
	// evaluate content/port options against, so it's a Miss.
	l4 := d.AsTransLevel()
	if ins.Suricata != nil && l4 != nil {
		transport := suricata.TransportTCP
		if l4.GetTransportLayer().Type.Transport == protocol.TransportUDP {
			transport = suricata.TransportUDP
		}
		payload := payloadOf(d)
		if rule, hit := ins.Suricata.Detect(suricata.Packet{
			SrcIP: flow.SrcIP, SrcPort: flow.SrcPort,
			DstIP: flow.DstIP, DstPort: flow.DstPort,
			Transport: transport, Payload: payload,
		}); hit {
			v.SuricataHit = rule
			v.Alerts = append(v.Alerts, suricataAlert(rule, flow))
		}
	}

	return v
}

// FlowTuple is the 4-tuple both rule engines match against, derived
// from the decoded packet's network/transport layers.
type FlowTuple struct {
	SrcIP   netip.Addr
	SrcPort uint16
	DstIP   netip.Addr
	DstPort uint16
}

// flowTupleOf extracts the 4-tuple via the NetLevel/TransLevel
// capability accessors. A decode that never reached the network layer
// yields the zero FlowTuple; the ICS engine's GOOSE/SV matching
// doesn't depend on it, and Suricata is skipped entirely below L4.
func flowTupleOf(d *decode.Decode) FlowTuple {
	var flow FlowTuple
	if netLevel := d.AsNetLevel(); netLevel != nil {
		flow.SrcIP = netLevel.GetSrcIP()
		flow.DstIP = netLevel.GetDstIP()
	}
	if transLevel := d.AsTransLevel(); transLevel != nil {
		flow.SrcPort = transLevel.GetSrcPort()
		flow.DstPort = transLevel.GetDstPort()
	}
	return flow
}

func payloadOf(d *decode.Decode) []byte {
	if l4 := d.AsTransLevel(); l4 != nil {
		t := l4.GetTransportLayer()
		if t.TCP != nil {
			return t.TCP.Payload
		}
		if t.UDP != nil {
			return t.UDP.Payload
		}
	}
	return nil
}

func icsAlert(rule *icsrule.BasicRule, flow FlowTuple) *wire.AlertEvent {
	return &wire.AlertEvent{
		Engine:  wire.EngineICSWhitelist,
		RuleID:  rule.RID,
		Action:  rule.Action.String(),
		Msg:     rule.Msg,
		SrcIP:   flow.SrcIP.String(),
		SrcPort: uint32(flow.SrcPort),
		DstIP:   flow.DstIP.String(),
		DstPort: uint32(flow.DstPort),
	}
}

func suricataAlert(rule *suricata.Surule, flow FlowTuple) *wire.AlertEvent {
	return &wire.AlertEvent{
		Engine:  wire.EngineSuricata,
		RuleID:  rule.Sid,
		Msg:     rule.Msg,
		SrcIP:   flow.SrcIP.String(),
		SrcPort: uint32(flow.SrcPort),
		DstIP:   flow.DstIP.String(),
		DstPort: uint32(flow.DstPort),
	}
}
