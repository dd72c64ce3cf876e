package decode

import (
	"net/netip"

	"github.com/quinspect/quinspect/protocol"
)

// PhyLevel is the capability every decoded packet exposes: whatever
// parse error stopped dissection (nil if none) and the undissected
// remainder at the point dissection stopped (spec §3's L1..L5
// containment, grounded on the original's level_packet.rs).
type PhyLevel interface {
	GetErr() *protocol.ParseError
	GetRemain() []byte
}

// LinkLevel is PhyLevel plus the link layer.
type LinkLevel interface {
	PhyLevel
	GetLinkLayer() *LinkLayer
}

// NetLevel is LinkLevel plus the network layer, and the address/type
// capability queries spec §4.3 requires (get_src_ip/get_dst_ip/
// get_net_type), grounded on original_source's NetLevel trait.
type NetLevel interface {
	LinkLevel
	GetNetworkLayer() *NetworkLayer
	GetSrcIP() netip.Addr
	GetDstIP() netip.Addr
	GetNetType() protocol.NetworkProtocol
}

// TransLevel is NetLevel plus the transport layer and its port/type
// capability queries (get_src_port/get_dst_port/get_tran_type).
type TransLevel interface {
	NetLevel
	GetTransportLayer() *TransportLayer
	GetSrcPort() uint16
	GetDstPort() uint16
	GetTranType() protocol.TransportProtocol
}

// AppLevel is TransLevel plus the application layer, with the naive
// family lookup rule matching reads through and the exact application
// type query (get_app_type).
type AppLevel interface {
	TransLevel
	GetApplicationLayer() *ApplicationLayer
	GetAppNaiveType() protocol.ApplicationNaiveProtocol
	GetAppType() protocol.ApplicationProtocol
}

// L1Packet is the base level: dissection stopped at or before the link
// layer (no link layer recognized, or an error occurred immediately).
type L1Packet struct {
	Err    *protocol.ParseError
	Remain []byte
}

func (p *L1Packet) GetErr() *protocol.ParseError { return p.Err }
func (p *L1Packet) GetRemain() []byte            { return p.Remain }

// L2Packet cumulatively adds the link layer.
type L2Packet struct {
	L1Packet
	Link *LinkLayer
}

func (p *L2Packet) GetLinkLayer() *LinkLayer { return p.Link }

// L3Packet cumulatively adds the network layer.
type L3Packet struct {
	L2Packet
	Net *NetworkLayer
}

func (p *L3Packet) GetNetworkLayer() *NetworkLayer { return p.Net }
func (p *L3Packet) GetSrcIP() netip.Addr           { return p.Net.GetSrcIP() }
func (p *L3Packet) GetDstIP() netip.Addr           { return p.Net.GetDstIP() }
func (p *L3Packet) GetNetType() protocol.NetworkProtocol {
	return p.Net.Type.Network
}

// L4Packet cumulatively adds the transport layer.
type L4Packet struct {
	L3Packet
	Trans *TransportLayer
}

func (p *L4Packet) GetTransportLayer() *TransportLayer { return p.Trans }
func (p *L4Packet) GetSrcPort() uint16                 { return p.Trans.GetSrcPort() }
func (p *L4Packet) GetDstPort() uint16                 { return p.Trans.GetDstPort() }
func (p *L4Packet) GetTranType() protocol.TransportProtocol {
	return p.Trans.Type.Transport
}

// L5Packet cumulatively adds the application layer, the deepest level.
type L5Packet struct {
	L4Packet
	App *ApplicationLayer
}

func (p *L5Packet) GetApplicationLayer() *ApplicationLayer { return p.App }

func (p *L5Packet) GetAppNaiveType() protocol.ApplicationNaiveProtocol {
	if p.App == nil {
		return protocol.NaiveModbus
	}
	return p.App.Type.Application.Naive()
}

func (p *L5Packet) GetAppType() protocol.ApplicationProtocol {
	if p.App == nil {
		return protocol.AppModbusReq
	}
	return p.App.Type.Application
}

// Decode is the sum type callers pattern-match on: exactly one level
// field is non-nil, selected by Level. A Decode is produced once per
// frame by the driver and never mutated after that (spec §5's
// immutable-decode-tree invariant).
type Level int

const (
	LevelL1 Level = iota
	LevelL2
	LevelL3
	LevelL4
	LevelL5
)

type Decode struct {
	Level Level
	L1    *L1Packet
	L2    *L2Packet
	L3    *L3Packet
	L4    *L4Packet
	L5    *L5Packet
}

// AsPhyLevel returns the PhyLevel capability view of whichever level is
// populated; every Decode has one.
func (d *Decode) AsPhyLevel() PhyLevel {
	switch d.Level {
	case LevelL1:
		return d.L1
	case LevelL2:
		return d.L2
	case LevelL3:
		return d.L3
	case LevelL4:
		return d.L4
	default:
		return d.L5
	}
}

// AsLinkLevel returns the LinkLevel view, or nil if dissection stopped
// at L1.
func (d *Decode) AsLinkLevel() LinkLevel {
	switch d.Level {
	case LevelL2:
		return d.L2
	case LevelL3:
		return d.L3
	case LevelL4:
		return d.L4
	case LevelL5:
		return d.L5
	default:
		return nil
	}
}

// AsNetLevel returns the NetLevel view, or nil if dissection stopped at
// L1 or L2.
func (d *Decode) AsNetLevel() NetLevel {
	switch d.Level {
	case LevelL3:
		return d.L3
	case LevelL4:
		return d.L4
	case LevelL5:
		return d.L5
	default:
		return nil
	}
}

// AsTransLevel returns the TransLevel view, or nil below L4.
func (d *Decode) AsTransLevel() TransLevel {
	switch d.Level {
	case LevelL4:
		return d.L4
	case LevelL5:
		return d.L5
	default:
		return nil
	}
}

// AsAppLevel returns the AppLevel view, or nil unless dissection
// reached L5.
func (d *Decode) AsAppLevel() AppLevel {
	if d.Level == LevelL5 {
		return d.L5
	}
	return nil
}
