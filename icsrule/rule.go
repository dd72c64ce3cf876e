// Package icsrule implements the ICS structural whitelist engine (spec
// §4.5): a basic header (action, direction, address/port accept-except
// lists) plus an optional protocol-specific argument matcher, grounded
// on original_source's src/ics_rule/rule/basic_rule.rs BasicRule and
// its detect() method.
package icsrule

import (
	"net/netip"

	"github.com/quinspect/quinspect/addrset"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

// Action is the whitelist verdict attached to a matching rule.
type Action int

const (
	ActionAllow Action = iota
	ActionAlert
	ActionDrop
	ActionReject
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "Allow"
	case ActionAlert:
		return "Alert"
	case ActionDrop:
		return "Drop"
	case ActionReject:
		return "Reject"
	default:
		return "Unknown"
	}
}

// Direction selects whether a rule's address/port fields must match
// the observed flow in one fixed orientation (Uni) or in either
// orientation (Bi), per original's basic_rule.rs detect().
type Direction int

const (
	DirUni Direction = iota
	DirBi
)

// Arg is a protocol-specific argument matcher. A rule with a nil Arg
// matches on the basic header alone.
type Arg interface {
	// Protocol names the naive application family this Arg applies to.
	Protocol() protocol.ApplicationNaiveProtocol
	// Match reports whether app satisfies this argument's constraints.
	Match(app *decode.ApplicationLayer) bool
}

// BasicRule is one whitelist entry: a unique id, an action, a basic
// header over source/destination address and port, and an optional
// protocol-specific argument.
type BasicRule struct {
	RID       uint32
	Msg       string
	Action    Action
	Direction Direction
	SrcIP     *addrset.List
	SrcPort   *addrset.PortList
	DstIP     *addrset.List
	DstPort   *addrset.PortList
	Arg       Arg
	Active    bool
}

// Flow is the observed 4-tuple plus the decoded layers a rule is
// evaluated against. Net and Trans carry GOOSE/SV respectively, since
// those two protocols sit at the network and transport layers rather
// than the application layer (spec §4.1) and so fall outside the
// Arg.Match dispatch used for the other ten protocols.
type Flow struct {
	SrcIP   netip.Addr
	SrcPort uint16
	DstIP   netip.Addr
	DstPort uint16
	Net     *decode.NetworkLayer
	Trans   *decode.TransportLayer
	App     *decode.ApplicationLayer
}

// Match implements BasicRule's detect(): the basic header must match
// in the rule's fixed orientation (Uni) or in either orientation (Bi,
// symmetric-OR per [[D.1 decision]]), and if an Arg is present it must
// also match the relevant layer: GOOSEArg/SVArg match against the
// network/transport layer directly, every other Arg matches the
// application layer behind the naive-family dispatch.
func (r *BasicRule) Match(f Flow) bool {
	if !r.headerMatch(f) {
		return false
	}
	switch arg := r.Arg.(type) {
	case nil:
		return true
	case GOOSEArg:
		if f.Net == nil {
			return false
		}
		return arg.MatchGOOSE(f.Net.GOOSE)
	case SVArg:
		if f.Trans == nil {
			return false
		}
		return arg.MatchSV(f.Trans.SV)
	default:
		if f.App == nil {
			return false
		}
		if r.Arg.Protocol() != f.App.Type.Application.Naive() {
			return false
		}
		return r.Arg.Match(f.App)
	}
}

func (r *BasicRule) headerMatch(f Flow) bool {
	forward := r.SrcIP.Check(f.SrcIP) && r.SrcPort.Check(f.SrcPort) &&
		r.DstIP.Check(f.DstIP) && r.DstPort.Check(f.DstPort)
	if r.Direction == DirUni {
		return forward
	}
	backward := r.SrcIP.Check(f.DstIP) && r.SrcPort.Check(f.DstPort) &&
		r.DstIP.Check(f.SrcIP) && r.DstPort.Check(f.SrcPort)
	return forward || backward
}
