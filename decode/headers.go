// Package decode holds the packet decode tree: the per-protocol header
// structs dissectors populate, the level-cumulative L1..L5 packet
// types, and the capability interfaces external code reads through
// (spec §3, §4.3). Only the dissect package and its driver construct
// these values; everything here is otherwise read-only from outside.
package decode

import "net"

// EthernetHeader is the fixed 14-byte Ethernet II header.
type EthernetHeader struct {
	DstMAC    net.HardwareAddr
	SrcMAC    net.HardwareAddr
	EtherType uint16
}

// VLANHeader is an 802.1Q tag.
type VLANHeader struct {
	Priority  uint8
	DEI       uint8
	ID        uint16
	InnerType uint16
}

// IPv4Header is an IPv4 header with its variable-length options slice
// kept as an opaque borrowed view (spec B.2 supplement) for rule
// introspection rather than discarded.
type IPv4Header struct {
	Version      uint8
	HeaderLength uint8 // in 32-bit words
	DiffServ     uint8
	ECN          uint8
	TotalLength  uint16
	ID           uint16
	Flags        uint8
	FragOffset   uint16
	TTL          uint8
	Protocol     uint8
	Checksum     uint16
	SrcIP        net.IP
	DstIP        net.IP
	Options      []byte
}

// IPv6Header is an IPv6 fixed header. Extension headers are not walked
// (spec's explicit non-goal on extension-header chain traversal), and
// DissectIPv6 does not populate ExtensionBytes.
type IPv6Header struct {
	Version        uint8
	TrafficClass   uint8
	FlowLabel      uint32
	PayloadLength  uint16
	NextHeader     uint8
	HopLimit       uint8
	SrcIP          net.IP
	DstIP          net.IP
	ExtensionBytes []byte
}

// TCPFlags is the 9-bit TCP flag set, kept as a named bitset (spec B.2
// supplement: load-bearing for Suricata's flow:established/stateless).
type TCPFlags uint16

const (
	TCPFlagFIN TCPFlags = 1 << iota
	TCPFlagSYN
	TCPFlagRST
	TCPFlagPSH
	TCPFlagACK
	TCPFlagURG
	TCPFlagECE
	TCPFlagCWR
	TCPFlagNS
)

func (f TCPFlags) Has(bit TCPFlags) bool { return f&bit != 0 }

// TCPHeader is a TCP segment header. Payload is the borrowed application
// data after options/padding.
type TCPHeader struct {
	SrcPort    uint16
	DstPort    uint16
	Seq        uint32
	Ack        uint32
	DataOffset uint8 // in 32-bit words
	Reserved   uint8
	Flags      TCPFlags
	Window     uint16
	Checksum   uint16
	Urgent     uint16
	Options    []byte
	Payload    []byte
}

// UDPHeader is a UDP datagram header.
type UDPHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Length   uint16
	Checksum uint16
	Payload  []byte
}

// GOOSEHeader is the GOOSE PDU envelope plus its BER-decoded fields.
type GOOSEHeader struct {
	AppID               uint16
	Length              uint16
	Reserved1           uint16
	Reserved2           uint16
	GoCBRef             []byte
	TimeAllowedToLive   uint32
	DatSet              []byte
	GoID                []byte
	T                   []byte
	StNum               uint32
	SqNum               uint32
	Simulation          bool
	ConfRev             uint32
	NdsCom              bool
	NumDatSetEntries    uint32
	AllData             [][]byte
}

// SVASDU is one Sampled Value application service data unit.
type SVASDU struct {
	SvID     []byte
	SmpCnt   uint16
	ConfRev  uint32
	SmpSynch uint8
	SeqData  []byte
}

// SVHeader is the Sampled Values envelope (same outer shape as GOOSE,
// ending in a savPDU carrying an ASDU list).
type SVHeader struct {
	AppID     uint16
	Length    uint16
	Reserved1 uint16
	Reserved2 uint16
	NoASDU    uint32
	ASDUs     []SVASDU
}

// MBAPHeader is the Modbus Application Protocol header shared by
// request and response.
type MBAPHeader struct {
	TransactionID uint16
	ProtocolID    uint16
	Length        uint16
	UnitID        uint8
}

// ModbusReqHeader is a Modbus request: MBAP + function code + PDU.
type ModbusReqHeader struct {
	MBAP         MBAPHeader
	FunctionCode uint8
	PDU          ModbusReqPDU
}

// ModbusReqPDU holds the decoded request PDU fields for whichever
// function code applies; only the matching sub-struct is populated.
type ModbusReqPDU struct {
	ReadBits          *ReadBitsReq          // 0x01 coils, 0x02 discrete inputs
	ReadRegisters     *ReadRegistersReq     // 0x03 holding, 0x04 input
	WriteSingleCoil   *WriteSingleCoilReq   // 0x05
	WriteSingleReg    *WriteSingleRegReq    // 0x06
	ReadExceptionStat *struct{}             // 0x07
	CommEventCounter  *struct{}             // 0x0B
	CommEventLog      *struct{}             // 0x0C
	WriteMultiCoils   *WriteMultiCoilsReq   // 0x0F
	WriteMultiRegs    *WriteMultiRegsReq    // 0x10
	ReportServerID    *struct{}             // 0x11
	MaskWriteReg      *MaskWriteRegReq      // 0x16
	ReadWriteMultiple *ReadWriteMultipleReq // 0x17
	ReadFIFO          *ReadFIFOReq          // 0x18
	ReadFileRecord    *ReadFileRecordReq    // 0x14
	WriteFileRecord   *WriteFileRecordReq   // 0x15
}

type ReadBitsReq struct {
	StartAddress uint16
	Count        uint16
}
type ReadRegistersReq struct {
	StartAddress uint16
	Count        uint16
}
type WriteSingleCoilReq struct {
	OutputAddress uint16
	OutputValue   uint16
}
type WriteSingleRegReq struct {
	RegisterAddress uint16
	RegisterValue   uint16
}
type WriteMultiCoilsReq struct {
	StartAddress uint16
	OutputCount  uint16
	ByteCount    uint8
	Values       []byte
}
type WriteMultiRegsReq struct {
	StartAddress uint16
	OutputCount  uint16
	ByteCount    uint8
	Values       []byte
}
type MaskWriteRegReq struct {
	RefAddress uint16
	AndMask    uint16
	OrMask     uint16
}
type ReadWriteMultipleReq struct {
	ReadStart   uint16
	ReadCount   uint16
	WriteStart  uint16
	WriteCount  uint16
	WriteBytes  uint8
	WriteValues []byte
}
type ReadFIFOReq struct {
	FIFOPointerAddress uint16
}
type FileRecordSubReq struct {
	RefType    uint8
	FileNumber uint16
	RecordNum  uint16
	RecordLen  uint16
	RecordData []byte
}
type ReadFileRecordReq struct {
	ByteCount uint8
	Requests  []FileRecordSubReq
}
type WriteFileRecordReq struct {
	ByteCount uint8
	Requests  []FileRecordSubReq
}

// ModbusRspHeader is a Modbus response: MBAP + function code + PDU, or
// an exception (function code | 0x80) with an exception code byte.
type ModbusRspHeader struct {
	MBAP          MBAPHeader
	FunctionCode  uint8
	IsException   bool
	ExceptionCode uint8
	PDU           ModbusRspPDU
}

type ModbusRspPDU struct {
	ReadBits          *ReadBitsRsp
	ReadRegisters     *ReadRegistersRsp
	WriteSingleCoil   *WriteSingleCoilReq
	WriteSingleReg    *WriteSingleRegReq
	ReadExceptionStat *ReadExceptionStatusRsp
	CommEventCounter  *CommEventCounterRsp
	CommEventLog      *CommEventLogRsp
	WriteMultiCoils   *WriteMultiEchoRsp
	WriteMultiRegs    *WriteMultiEchoRsp
	ReportServerID    *ReportServerIDRsp
	MaskWriteReg      *MaskWriteRegReq
	ReadWriteMultiple *ReadRegistersRsp
	ReadFIFO          *ReadFIFORsp
	ReadFileRecord    *ReadFileRecordRsp
	WriteFileRecord   *WriteFileRecordReq
}

type ReadBitsRsp struct {
	ByteCount uint8
	Data      []byte
}
type ReadRegistersRsp struct {
	ByteCount uint8
	Data      []byte
}
type ReadExceptionStatusRsp struct {
	Status uint8
}
type CommEventCounterRsp struct {
	Status uint16
	Count  uint16
}
type CommEventLogRsp struct {
	ByteCount  uint8
	Status     uint16
	EventCount uint16
	MessageCount uint16
	Events     []byte
}
type WriteMultiEchoRsp struct {
	StartAddress uint16
	Count        uint16
}
type ReportServerIDRsp struct {
	ByteCount uint8
	ServerID  []byte
	RunStatus uint8
}
type ReadFIFORsp struct {
	ByteCount    uint16
	FIFOCount    uint16
	FIFOValues   []byte
}
type FileRecordSubRsp struct {
	RecordLen  uint16
	RefType    uint8
	RecordData []byte
}
type ReadFileRecordRsp struct {
	ByteCount uint8
	Responses []FileRecordSubRsp
}

// ISOonTCPHeader is TPKT + COTP.
type ISOonTCPHeader struct {
	TPKTVersion  uint8
	TPKTReserved uint8
	TPKTLength   uint16
	COTPLength   uint8
	COTPPDUType  uint8
	IsConnect    bool
	IsData       bool
}

// S7CommHeader carries the S7comm protocol ID, ROSCTR, and PDU
// reference found after a COTP Data TPDU whose next byte is 0x32.
type S7CommHeader struct {
	ProtocolID uint8
	ROSCTR     uint8
	Redundancy uint16
	PDURef     uint16
	ParamLen   uint16
	DataLen    uint16
}

// MMSPDUChoice names which MMS PDU choice was decoded.
type MMSPDUChoice int

const (
	MMSConfirmedRequest MMSPDUChoice = iota
	MMSConfirmedResponse
	MMSUnconfirmedPDU
	MMSInitiateRequest
	MMSInitiateResponse
	MMSConcludeRequest
)

// MMSHeader is the BER-encoded MMS PDU choice.
type MMSHeader struct {
	Choice MMSPDUChoice
	Body   []byte
}

// FinsCmdOrder discriminates FINS command sub-operations.
type FinsCmdOrder int

const (
	FinsMemoryArea FinsCmdOrder = iota
	FinsParameter
	FinsRun
)

// FinsHeader models the FINS request/response state machine: a TCP
// handshake exchange, then connected frame header carrying a command
// code whose order field selects memory-area/parameter/run semantics.
type FinsHeader struct {
	IsHandshake bool
	CmdCode     uint16
	Order       FinsCmdOrder
	ICF         uint8
	DA2         uint8
	SA2         uint8
	SID         uint8
}

// Dnp3Function names DNP3 application-layer function codes.
type Dnp3Function int

const (
	Dnp3Confirm Dnp3Function = iota
	Dnp3Read
	Dnp3Write
	Dnp3Select
	Dnp3ColdRestart
	Dnp3WarmRestart
	Dnp3StopApplication
	Dnp3EnableSpontaneous
	Dnp3DisableSpontaneous
	Dnp3OpenFile
	Dnp3Response
	Dnp3UnsolicitedResponse
)

// Dnp3Header is the decoded DNP3 data-link + transport + application
// layer (spec §4.2's most CRC-heavy dissector).
type Dnp3Header struct {
	Direction     bool
	Primary       bool
	FCB           bool
	FCV           bool
	DLFunction    uint8
	Destination   uint16
	Source        uint16
	HeaderCRC     uint16
	TransportFIN  bool
	TransportFIR  bool
	TransportSeq  uint8
	Function      Dnp3Function
	AppPayload    []byte // CRC-stripped application fragment
}

// IEC104FrameKind names I/S/U APCI frame types.
type IEC104FrameKind int

const (
	IEC104IFrame IEC104FrameKind = iota
	IEC104SFrame
	IEC104UFrame
)

// IEC104Header is the APCI plus, for I-frames, the ASDU header.
type IEC104Header struct {
	Kind         IEC104FrameKind
	TypeID       uint8
	CauseOfTx    uint8
	Address      uint16
	HasASDU      bool
}

// OPCUAMsgType names the 3-byte OPC UA message type discriminator.
type OPCUAMsgType int

const (
	OPCUAHello OPCUAMsgType = iota
	OPCUAAck
	OPCUAErr
	OPCUAReverseHello
	OPCUAMessage
	OPCUAOpenSecureChannel
	OPCUACloseSecureChannel
)

// OPCUANodeIDKind names the service node id encoding used in MSG bodies.
type OPCUANodeIDKind int

const (
	OPCUANodeTwoByte OPCUANodeIDKind = iota
	OPCUANodeFourByte
	OPCUANodeNumeric
)

// OPCUAHeader is the OPC UA message header, plus the service node id
// for MSG frames.
type OPCUAHeader struct {
	MsgType      OPCUAMsgType
	ChunkType    byte
	MessageSize  uint32
	NodeIDKind   OPCUANodeIDKind
	NodeID       uint32
}

// BACnetHeader is the BVLC + APDU header.
type BACnetHeader struct {
	IsIPv6        bool // Annex U vs Annex J
	BVLCFunction  uint8
	APDUType      uint8
	ServiceChoice uint8
}

// HTTPHeader is a partial HTTP dissection: start line plus up to 16
// headers, per spec's explicit non-goal on deep HTTP/stream reassembly.
type HTTPHeader struct {
	IsRequest  bool
	StartLine  string
	Headers    map[string]string
	HeaderList []string // insertion order, capped at 16
}
