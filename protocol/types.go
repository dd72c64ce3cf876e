// Package protocol defines the discriminated ProtocolType used to tag
// every decoded layer and to express the parser's early-stop point
// (spec §3, §6.6). Two equality semantics coexist on purpose: link,
// network and transport variants compare by exact variant; application
// variants collapse request/response pairs onto one "naive" family
// before comparing, so a `stop` point aimed at "Modbus" matches either
// direction.
package protocol

// LinkProtocol names a link-layer dissector.
type LinkProtocol int

const (
	LinkEthernet LinkProtocol = iota
)

func (p LinkProtocol) String() string {
	switch p {
	case LinkEthernet:
		return "Ethernet"
	default:
		return "Unknown"
	}
}

// NetworkProtocol names a network-layer dissector.
type NetworkProtocol int

const (
	NetworkIPv4 NetworkProtocol = iota
	NetworkIPv6
	NetworkVLAN
	NetworkGOOSE
)

func (p NetworkProtocol) String() string {
	switch p {
	case NetworkIPv4:
		return "IPv4"
	case NetworkIPv6:
		return "IPv6"
	case NetworkVLAN:
		return "VLAN"
	case NetworkGOOSE:
		return "GOOSE"
	default:
		return "Unknown"
	}
}

// TransportProtocol names a transport-layer dissector.
type TransportProtocol int

const (
	TransportTCP TransportProtocol = iota
	TransportUDP
	TransportSV
)

func (p TransportProtocol) String() string {
	switch p {
	case TransportTCP:
		return "TCP"
	case TransportUDP:
		return "UDP"
	case TransportSV:
		return "SV"
	default:
		return "Unknown"
	}
}

// ApplicationProtocol names a precise application-layer variant,
// distinguishing request from response where the wire format differs.
type ApplicationProtocol int

const (
	AppModbusReq ApplicationProtocol = iota
	AppModbusRsp
	AppFinsTCPReq
	AppFinsTCPRsp
	AppFinsUDPReq
	AppFinsUDPRsp
	AppMMS
	AppS7comm
	AppBACnet
	AppDNP3
	AppIEC104
	AppOPCUA
	AppHTTP
	AppISOonTCP
)

func (p ApplicationProtocol) String() string {
	switch p {
	case AppModbusReq:
		return "ModbusReq"
	case AppModbusRsp:
		return "ModbusRsp"
	case AppFinsTCPReq:
		return "FinsTcpReq"
	case AppFinsTCPRsp:
		return "FinsTcpRsp"
	case AppFinsUDPReq:
		return "FinsUdpReq"
	case AppFinsUDPRsp:
		return "FinsUdpRsp"
	case AppMMS:
		return "MMS"
	case AppS7comm:
		return "S7comm"
	case AppBACnet:
		return "BACnet"
	case AppDNP3:
		return "DNP3"
	case AppIEC104:
		return "IEC104"
	case AppOPCUA:
		return "OPCUA"
	case AppHTTP:
		return "HTTP"
	case AppISOonTCP:
		return "ISOonTCP"
	default:
		return "Unknown"
	}
}

// ApplicationNaiveProtocol collapses request/response variants of the
// same application protocol onto a single family, per spec §3.
type ApplicationNaiveProtocol int

const (
	NaiveModbus ApplicationNaiveProtocol = iota
	NaiveFins
	NaiveMMS
	NaiveS7comm
	NaiveBACnet
	NaiveDNP3
	NaiveIEC104
	NaiveOPCUA
	NaiveHTTP
	NaiveISOonTCP
)

func (p ApplicationNaiveProtocol) String() string {
	switch p {
	case NaiveModbus:
		return "Modbus"
	case NaiveFins:
		return "FINS"
	case NaiveMMS:
		return "MMS"
	case NaiveS7comm:
		return "S7COMM"
	case NaiveBACnet:
		return "BACnet"
	case NaiveDNP3:
		return "DNP3"
	case NaiveIEC104:
		return "IEC104"
	case NaiveOPCUA:
		return "OpcUA"
	case NaiveHTTP:
		return "HTTP"
	case NaiveISOonTCP:
		return "ISOonTCP"
	default:
		return "Unknown"
	}
}

// Naive collapses a precise application protocol onto its naive family.
func (p ApplicationProtocol) Naive() ApplicationNaiveProtocol {
	switch p {
	case AppModbusReq, AppModbusRsp:
		return NaiveModbus
	case AppFinsTCPReq, AppFinsTCPRsp, AppFinsUDPReq, AppFinsUDPRsp:
		return NaiveFins
	case AppMMS:
		return NaiveMMS
	case AppS7comm:
		return NaiveS7comm
	case AppBACnet:
		return NaiveBACnet
	case AppDNP3:
		return NaiveDNP3
	case AppIEC104:
		return NaiveIEC104
	case AppOPCUA:
		return NaiveOPCUA
	case AppHTTP:
		return NaiveHTTP
	case AppISOonTCP:
		return NaiveISOonTCP
	default:
		return NaiveModbus
	}
}

// Kind discriminates which arm of Type is populated.
type Kind int

const (
	KindLink Kind = iota
	KindNetwork
	KindTransport
	KindApplication
	KindError
)

// Type is the discriminated ProtocolType tag (spec §3). Exactly one of
// the per-kind fields is meaningful, selected by Kind.
type Type struct {
	Kind        Kind
	Link        LinkProtocol
	Network     NetworkProtocol
	Transport   TransportProtocol
	Application ApplicationProtocol
}

func Link(p LinkProtocol) Type           { return Type{Kind: KindLink, Link: p} }
func Network(p NetworkProtocol) Type     { return Type{Kind: KindNetwork, Network: p} }
func Transport(p TransportProtocol) Type { return Type{Kind: KindTransport, Transport: p} }
func Application(p ApplicationProtocol) Type {
	return Type{Kind: KindApplication, Application: p}
}
func Error() Type { return Type{Kind: KindError} }

// Equal implements the two-tier equality of spec §3: exact variant
// comparison for link/network/transport, naive-collapsed comparison for
// application, and Error never equals anything (including another
// Error) the way the original's PartialEq impl falls through to false.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindLink:
		return t.Link == other.Link
	case KindNetwork:
		return t.Network == other.Network
	case KindTransport:
		return t.Transport == other.Transport
	case KindApplication:
		return t.Application.Naive() == other.Application.Naive()
	default:
		return false
	}
}

func (t Type) String() string {
	switch t.Kind {
	case KindLink:
		return t.Link.String()
	case KindNetwork:
		return t.Network.String()
	case KindTransport:
		return t.Transport.String()
	case KindApplication:
		return t.Application.String()
	default:
		return "Error"
	}
}
