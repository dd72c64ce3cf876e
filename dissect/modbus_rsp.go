package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

// DissectModbusRsp parses a Modbus/TCP response frame, handling the
// exception form (function code with bit 0x80 set, one exception-code
// byte) before falling through to the per-function PDU variants.
func DissectModbusRsp(c *bytesio.Cursor) (*decode.ModbusRspHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(protocol.AppModbusRsp), c.Pos())
	}
	mbap, err := parseMBAP(c)
	if err != nil {
		return nil, errAt()
	}
	fc, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	h := &decode.ModbusRspHeader{MBAP: mbap, FunctionCode: fc}
	if fc&0x80 != 0 {
		code, err := c.ReadU8()
		if err != nil {
			return nil, errAt()
		}
		h.IsException = true
		h.ExceptionCode = code
		return h, nil
	}
	var pErr error
	switch fc {
	case 0x01, 0x02:
		h.PDU.ReadBits, pErr = readBitsRsp(c)
	case 0x03, 0x04, 0x17:
		regs, e := readRegistersRsp(c)
		h.PDU.ReadRegisters = regs
		h.PDU.ReadWriteMultiple = regs
		pErr = e
	case 0x05:
		h.PDU.WriteSingleCoil, pErr = writeSingleCoilReq(c)
	case 0x06:
		h.PDU.WriteSingleReg, pErr = writeSingleRegReq(c)
	case 0x07:
		status, e := c.ReadU8()
		if e == nil {
			h.PDU.ReadExceptionStat = &decode.ReadExceptionStatusRsp{Status: status}
		}
		pErr = e
	case 0x0B:
		h.PDU.CommEventCounter, pErr = commEventCounterRsp(c)
	case 0x0C:
		h.PDU.CommEventLog, pErr = commEventLogRsp(c)
	case 0x0F:
		h.PDU.WriteMultiCoils, pErr = writeMultiEchoRsp(c)
	case 0x10:
		h.PDU.WriteMultiRegs, pErr = writeMultiEchoRsp(c)
	case 0x11:
		h.PDU.ReportServerID, pErr = reportServerIDRsp(c)
	case 0x14:
		h.PDU.ReadFileRecord, pErr = readFileRecordRsp(c)
	case 0x15:
		h.PDU.WriteFileRecord, pErr = writeFileRecordReq(c)
	case 0x16:
		h.PDU.MaskWriteReg, pErr = maskWriteRegReq(c)
	case 0x18:
		h.PDU.ReadFIFO, pErr = readFIFORsp(c)
	default:
		return nil, protocol.NewUnknownPayload(protocol.Application(protocol.AppModbusRsp))
	}
	if pErr != nil {
		return nil, errAt()
	}
	return h, nil
}

func readBitsRsp(c *bytesio.Cursor) (*decode.ReadBitsRsp, error) {
	byteCount, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	data, err := c.Take(int(byteCount))
	if err != nil {
		return nil, err
	}
	return &decode.ReadBitsRsp{ByteCount: byteCount, Data: data}, nil
}

func readRegistersRsp(c *bytesio.Cursor) (*decode.ReadRegistersRsp, error) {
	byteCount, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	data, err := c.Take(int(byteCount))
	if err != nil {
		return nil, err
	}
	return &decode.ReadRegistersRsp{ByteCount: byteCount, Data: data}, nil
}

func commEventCounterRsp(c *bytesio.Cursor) (*decode.CommEventCounterRsp, error) {
	status, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	count, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	return &decode.CommEventCounterRsp{Status: status, Count: count}, nil
}

func commEventLogRsp(c *bytesio.Cursor) (*decode.CommEventLogRsp, error) {
	byteCount, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	status, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	eventCount, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	messageCount, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	remaining := int(byteCount) - 6
	var events []byte
	if remaining > 0 {
		events, err = c.Take(remaining)
		if err != nil {
			return nil, err
		}
	}
	return &decode.CommEventLogRsp{
		ByteCount: byteCount, Status: status, EventCount: eventCount,
		MessageCount: messageCount, Events: events,
	}, nil
}

func writeMultiEchoRsp(c *bytesio.Cursor) (*decode.WriteMultiEchoRsp, error) {
	start, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	count, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	return &decode.WriteMultiEchoRsp{StartAddress: start, Count: count}, nil
}

func reportServerIDRsp(c *bytesio.Cursor) (*decode.ReportServerIDRsp, error) {
	byteCount, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	if byteCount < 1 {
		return &decode.ReportServerIDRsp{ByteCount: byteCount}, nil
	}
	idLen := int(byteCount) - 1
	serverID, err := c.Take(idLen)
	if err != nil {
		return nil, err
	}
	runStatus, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	return &decode.ReportServerIDRsp{ByteCount: byteCount, ServerID: serverID, RunStatus: runStatus}, nil
}

func readFIFORsp(c *bytesio.Cursor) (*decode.ReadFIFORsp, error) {
	byteCount, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	fifoCount, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	values, err := c.Take(int(fifoCount) * 2)
	if err != nil {
		return nil, err
	}
	return &decode.ReadFIFORsp{ByteCount: byteCount, FIFOCount: fifoCount, FIFOValues: values}, nil
}

func readFileRecordRsp(c *bytesio.Cursor) (*decode.ReadFileRecordRsp, error) {
	byteCount, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	var out []decode.FileRecordSubRsp
	consumed := 0
	for consumed < int(byteCount) {
		recordLen, err := c.ReadU8()
		if err != nil {
			return nil, err
		}
		refType, err := c.ReadU8()
		if err != nil {
			return nil, err
		}
		dataLen := int(recordLen) - 1
		data, err := c.Take(dataLen)
		if err != nil {
			return nil, err
		}
		out = append(out, decode.FileRecordSubRsp{RecordLen: uint16(recordLen), RefType: refType, RecordData: data})
		consumed += 1 + int(recordLen)
	}
	return &decode.ReadFileRecordRsp{ByteCount: byteCount, Responses: out}, nil
}
