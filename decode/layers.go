package decode

import (
	"net"
	"net/netip"

	"github.com/quinspect/quinspect/protocol"
)

// LinkLayer is the decoded link-layer union: Type names which field is
// populated.
type LinkLayer struct {
	Type     protocol.Type
	Ethernet *EthernetHeader
}

// NetworkLayer is the decoded network-layer union.
type NetworkLayer struct {
	Type  protocol.Type
	IPv4  *IPv4Header
	IPv6  *IPv6Header
	VLAN  *VLANHeader
	GOOSE *GOOSEHeader
}

// GetSrcIP returns the network layer's source address. VLAN and GOOSE
// carry no IP address of their own, so it returns the zero Addr for
// them (spec §4.3's IP accessors are only meaningful for IPv4/IPv6).
func (n *NetworkLayer) GetSrcIP() netip.Addr { return netipFromIP(n.srcIP()) }

// GetDstIP returns the network layer's destination address, or the
// zero Addr for VLAN/GOOSE.
func (n *NetworkLayer) GetDstIP() netip.Addr { return netipFromIP(n.dstIP()) }

func (n *NetworkLayer) srcIP() net.IP {
	switch {
	case n.IPv4 != nil:
		return n.IPv4.SrcIP
	case n.IPv6 != nil:
		return n.IPv6.SrcIP
	default:
		return nil
	}
}

func (n *NetworkLayer) dstIP() net.IP {
	switch {
	case n.IPv4 != nil:
		return n.IPv4.DstIP
	case n.IPv6 != nil:
		return n.IPv6.DstIP
	default:
		return nil
	}
}

func netipFromIP(ip net.IP) netip.Addr {
	if ip == nil {
		return netip.Addr{}
	}
	if v4 := ip.To4(); v4 != nil {
		addr, _ := netip.AddrFromSlice(v4)
		return addr
	}
	addr, _ := netip.AddrFromSlice(ip.To16())
	return addr
}

// TransportLayer is the decoded transport-layer union.
type TransportLayer struct {
	Type protocol.Type
	TCP  *TCPHeader
	UDP  *UDPHeader
	SV   *SVHeader
}

// GetSrcPort returns the transport layer's source port, or 0 for SV
// (which carries no port of its own).
func (t *TransportLayer) GetSrcPort() uint16 {
	switch {
	case t.TCP != nil:
		return t.TCP.SrcPort
	case t.UDP != nil:
		return t.UDP.SrcPort
	default:
		return 0
	}
}

// GetDstPort returns the transport layer's destination port, or 0 for SV.
func (t *TransportLayer) GetDstPort() uint16 {
	switch {
	case t.TCP != nil:
		return t.TCP.DstPort
	case t.UDP != nil:
		return t.UDP.DstPort
	default:
		return 0
	}
}

// ApplicationLayer is the decoded application-layer union. Exactly one
// field is non-nil, selected by Type.Application.
type ApplicationLayer struct {
	Type       protocol.Type
	ModbusReq  *ModbusReqHeader
	ModbusRsp  *ModbusRspHeader
	FinsTCP    *FinsHeader
	FinsUDP    *FinsHeader
	MMS        *MMSHeader
	S7comm     *S7CommHeader
	BACnet     *BACnetHeader
	DNP3       *Dnp3Header
	IEC104     *IEC104Header
	OPCUA      *OPCUAHeader
	HTTP       *HTTPHeader
	ISOonTCP   *ISOonTCPHeader
}
