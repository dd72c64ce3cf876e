package dissect

import (
	"github.com/negbie/freecache"

	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/internal/logx"
	"github.com/quinspect/quinspect/protocol"
)

// StopPoint, when non-nil, tells the Driver to halt dissection as soon
// as a layer Equal to it has been produced, returning that level
// instead of continuing deeper (spec §4.3/§6.6). Application-layer
// stop points use the naive-collapsed comparison protocol.Type.Equal
// already implements.
type StopPoint = *protocol.Type

// Driver is the Protocol-Switch Driver: it chains the per-protocol
// dissectors starting from the link layer, accumulating an L1..L5
// decode.Decode, honoring an optional early-stop point, and optionally
// gating duplicate frames through a freecache dedup cache the way
// heplify's Decoder dedups repeated HEP payloads.
type Driver struct {
	dedup *freecache.Cache
}

// NewDriver builds a Driver. dedupBytes <= 0 disables the dedup gate.
func NewDriver(dedupBytes int) *Driver {
	d := &Driver{}
	if dedupBytes > 0 {
		d.dedup = freecache.NewCache(dedupBytes)
	}
	return d
}

// Seen reports whether key has already been recorded, and records it
// for ttlSeconds if not — callers use this as the frame-level dedup
// gate ahead of Parse.
func (d *Driver) Seen(key []byte, ttlSeconds int) bool {
	if d.dedup == nil {
		return false
	}
	if _, err := d.dedup.Get(key); err == nil {
		return true
	}
	_ = d.dedup.Set(key, []byte{1}, ttlSeconds)
	return false
}

// Parse dissects one frame starting at the link layer, producing a
// decode.Decode that stops either at the first unrecognized/malformed
// layer, at stop (if non-nil and reached), or at L5 with any leftover
// bytes reported via NotEndPayload.
func (d *Driver) Parse(data []byte, stop StopPoint) *decode.Decode {
	c := bytesio.NewCursor(data)

	ethHeader, perr := DissectEthernet(c)
	if perr != nil {
		logx.Debug(logx.SelDriver, "L1 stop: %v", perr)
		return &decode.Decode{Level: decode.LevelL1, L1: &decode.L1Packet{Err: perr, Remain: c.Remainder()}}
	}
	link := &decode.LinkLayer{Type: protocol.Link(protocol.LinkEthernet), Ethernet: ethHeader}
	l2 := &decode.L2Packet{L1Packet: decode.L1Packet{Remain: c.Remainder()}, Link: link}
	if stopReached(stop, link.Type) {
		return &decode.Decode{Level: decode.LevelL2, L2: l2}
	}

	netProto, ok := nextFromEtherType(ethHeader.EtherType)
	if !ok {
		perr := protocol.NewUnknownPayload(protocol.Network(0))
		l2.Err = perr
		return &decode.Decode{Level: decode.LevelL2, L2: l2}
	}
	net, transProto, perr := dissectNetwork(c, netProto)
	if perr != nil {
		l2.Err = perr
		l2.Remain = c.Remainder()
		return &decode.Decode{Level: decode.LevelL2, L2: l2}
	}
	l3 := &decode.L3Packet{L2Packet: *l2, Net: net}
	l3.Remain = c.Remainder()
	if stopReached(stop, net.Type) {
		return &decode.Decode{Level: decode.LevelL3, L3: l3}
	}

	if transProto == nil {
		return &decode.Decode{Level: decode.LevelL3, L3: l3}
	}
	trans, appHint, perr := dissectTransport(c, *transProto)
	if perr != nil {
		l3.Err = perr
		l3.Remain = c.Remainder()
		return &decode.Decode{Level: decode.LevelL3, L3: l3}
	}
	l4 := &decode.L4Packet{L3Packet: *l3, Trans: trans}
	l4.Remain = c.Remainder()
	if stopReached(stop, trans.Type) {
		return &decode.Decode{Level: decode.LevelL4, L4: l4}
	}

	if appHint == nil {
		return &decode.Decode{Level: decode.LevelL4, L4: l4}
	}
	appCur := bytesio.NewCursor(appHint.payload)
	app, perr := dissectApplication(appCur, appHint.kind, l4)
	if perr != nil {
		l4.Err = perr
		return &decode.Decode{Level: decode.LevelL4, L4: l4}
	}
	l5 := &decode.L5Packet{L4Packet: *l4, App: app}
	l5.Remain = appCur.Remainder()
	if len(l5.Remain) > 0 {
		l5.Err = protocol.NewNotEndPayload()
	}
	return &decode.Decode{Level: decode.LevelL5, L5: l5}
}

func stopReached(stop StopPoint, t protocol.Type) bool {
	return stop != nil && (*stop).Equal(t)
}

// dissectNetwork dispatches on netProto, recursing through VLAN tags
// (an inner VLAN-tagged frame resolves to its own NetworkLayer) until
// an IPv4/IPv6/GOOSE terminal is reached.
func dissectNetwork(c *bytesio.Cursor, netProto protocol.NetworkProtocol) (*decode.NetworkLayer, *protocol.TransportProtocol, *protocol.ParseError) {
	switch netProto {
	case protocol.NetworkVLAN:
		vlan, perr := DissectVLAN(c)
		if perr != nil {
			return nil, nil, perr
		}
		inner, ok := vlanInnerProtocol(vlan.InnerType)
		if !ok {
			return &decode.NetworkLayer{Type: protocol.Network(protocol.NetworkVLAN), VLAN: vlan}, nil, nil
		}
		innerLayer, transProto, perr := dissectNetwork(c, inner)
		if perr != nil {
			return nil, nil, perr
		}
		innerLayer.VLAN = vlan
		return innerLayer, transProto, nil
	case protocol.NetworkIPv4:
		h, perr := DissectIPv4(c)
		if perr != nil {
			return nil, nil, perr
		}
		t, ok := ipv4NextTransport(h.Protocol)
		var tp *protocol.TransportProtocol
		if ok {
			tp = &t
		}
		return &decode.NetworkLayer{Type: protocol.Network(protocol.NetworkIPv4), IPv4: h}, tp, nil
	case protocol.NetworkIPv6:
		h, perr := DissectIPv6(c)
		if perr != nil {
			return nil, nil, perr
		}
		t, ok := ipv6NextTransport(h.NextHeader)
		var tp *protocol.TransportProtocol
		if ok {
			tp = &t
		}
		return &decode.NetworkLayer{Type: protocol.Network(protocol.NetworkIPv6), IPv6: h}, tp, nil
	case protocol.NetworkGOOSE:
		h, perr := DissectGOOSE(c)
		if perr != nil {
			return nil, nil, perr
		}
		return &decode.NetworkLayer{Type: protocol.Network(protocol.NetworkGOOSE), GOOSE: h}, nil, nil
	default:
		return nil, nil, protocol.NewUnknownPayload(protocol.Network(netProto))
	}
}

// appHint carries the application-layer dispatch decision computed
// while dissecting the transport layer (port, payload slice) forward
// into dissectApplication.
type appHint struct {
	kind    appKind
	payload []byte
}

type appKind int

const (
	appNone appKind = iota
	appModbusReq
	appModbusRsp
	appFinsTCP
	appFinsUDP
	appMMSOrS7
	appBACnet
	appDNP3
	appIEC104
	appOPCUA
	appHTTP
	appISOonTCP
	appUnknown
)

func dissectTransport(c *bytesio.Cursor, transProto protocol.TransportProtocol) (*decode.TransportLayer, *appHint, *protocol.ParseError) {
	switch transProto {
	case protocol.TransportTCP:
		h, perr := DissectTCP(c)
		if perr != nil {
			return nil, nil, perr
		}
		layer := &decode.TransportLayer{Type: protocol.Transport(protocol.TransportTCP), TCP: h}
		return layer, tcpAppHint(h), nil
	case protocol.TransportUDP:
		h, perr := DissectUDP(c)
		if perr != nil {
			return nil, nil, perr
		}
		layer := &decode.TransportLayer{Type: protocol.Transport(protocol.TransportUDP), UDP: h}
		return layer, udpAppHint(h), nil
	case protocol.TransportSV:
		h, perr := DissectSV(c)
		if perr != nil {
			return nil, nil, perr
		}
		layer := &decode.TransportLayer{Type: protocol.Transport(protocol.TransportSV), SV: h}
		return layer, nil, nil
	default:
		return nil, nil, protocol.NewUnknownPayload(protocol.Transport(transProto))
	}
}

func tcpAppHint(h *decode.TCPHeader) *appHint {
	switch {
	case h.DstPort == uint16(PortModbus) || h.SrcPort == uint16(PortModbus):
		return &appHint{kind: appModbusReqOrRsp(h.DstPort == uint16(PortModbus)), payload: h.Payload}
	case h.DstPort == uint16(PortS7comm) || h.SrcPort == uint16(PortS7comm):
		return &appHint{kind: appISOonTCP, payload: h.Payload}
	case h.DstPort == uint16(PortDNP3) || h.SrcPort == uint16(PortDNP3):
		return &appHint{kind: appDNP3, payload: h.Payload}
	case h.DstPort == uint16(PortIEC104) || h.SrcPort == uint16(PortIEC104):
		return &appHint{kind: appIEC104, payload: h.Payload}
	case h.DstPort == uint16(PortOPCUA) || h.SrcPort == uint16(PortOPCUA):
		return &appHint{kind: appOPCUA, payload: h.Payload}
	case h.DstPort == uint16(PortFinsTCP) || h.SrcPort == uint16(PortFinsTCP):
		return &appHint{kind: appFinsTCP, payload: h.Payload}
	case h.DstPort == uint16(PortHTTP) || h.SrcPort == uint16(PortHTTP):
		return &appHint{kind: appHTTP, payload: h.Payload}
	default:
		if len(h.Payload) == 0 {
			return nil
		}
		return &appHint{kind: appUnknown, payload: h.Payload}
	}
}

func appModbusReqOrRsp(destIsModbus bool) appKind {
	if destIsModbus {
		return appModbusReq
	}
	return appModbusRsp
}

func udpAppHint(h *decode.UDPHeader) *appHint {
	switch {
	case h.DstPort == uint16(PortBACnetIP) || h.SrcPort == uint16(PortBACnetIP):
		return &appHint{kind: appBACnet, payload: h.Payload}
	case h.DstPort == uint16(PortFinsUDP) || h.SrcPort == uint16(PortFinsUDP):
		return &appHint{kind: appFinsUDP, payload: h.Payload}
	default:
		if len(h.Payload) == 0 {
			return nil
		}
		return &appHint{kind: appUnknown, payload: h.Payload}
	}
}

func dissectApplication(c *bytesio.Cursor, kind appKind, l4 *decode.L4Packet) (*decode.ApplicationLayer, *protocol.ParseError) {
	switch kind {
	case appModbusReq:
		h, perr := DissectModbusReq(c)
		if perr != nil {
			return nil, perr
		}
		return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppModbusReq), ModbusReq: h}, nil
	case appModbusRsp:
		h, perr := DissectModbusRsp(c)
		if perr != nil {
			return nil, perr
		}
		return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppModbusRsp), ModbusRsp: h}, nil
	case appFinsTCP:
		h, perr := DissectFinsTCP(c)
		if perr != nil {
			return nil, perr
		}
		return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppFinsTCPReq), FinsTCP: h}, nil
	case appFinsUDP:
		h, perr := DissectFinsUDP(c)
		if perr != nil {
			return nil, perr
		}
		return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppFinsUDPReq), FinsUDP: h}, nil
	case appISOonTCP:
		iso, perr := DissectISOonTCP(c)
		if perr != nil {
			return nil, perr
		}
		if !iso.IsData {
			return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppISOonTCP), ISOonTCP: iso}, nil
		}
		peek, err := c.PeekU8()
		if err == nil && peek == 0x32 {
			s7, perr := DissectS7Comm(c)
			if perr != nil {
				return nil, perr
			}
			return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppS7comm), S7comm: s7}, nil
		}
		mms, perr := DissectMMS(c)
		if perr != nil {
			return nil, perr
		}
		return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppMMS), MMS: mms}, nil
	case appBACnet:
		h, perr := DissectBACnet(c)
		if perr != nil {
			return nil, perr
		}
		return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppBACnet), BACnet: h}, nil
	case appDNP3:
		h, perr := DissectDNP3(c)
		if perr != nil {
			return nil, perr
		}
		return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppDNP3), DNP3: h}, nil
	case appIEC104:
		h, perr := DissectIEC104(c)
		if perr != nil {
			return nil, perr
		}
		return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppIEC104), IEC104: h}, nil
	case appOPCUA:
		h, perr := DissectOPCUA(c)
		if perr != nil {
			return nil, perr
		}
		return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppOPCUA), OPCUA: h}, nil
	case appHTTP:
		h, perr := DissectHTTP(c)
		if perr != nil {
			return nil, perr
		}
		return &decode.ApplicationLayer{Type: protocol.Application(protocol.AppHTTP), HTTP: h}, nil
	default:
		return nil, protocol.NewUnknownPayload(l4.Trans.Type)
	}
}
