package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

func parseMBAP(c *bytesio.Cursor) (decode.MBAPHeader, error) {
	txID, err := c.BeU16()
	if err != nil {
		return decode.MBAPHeader{}, err
	}
	protoID, err := c.BeU16()
	if err != nil {
		return decode.MBAPHeader{}, err
	}
	length, err := c.BeU16()
	if err != nil {
		return decode.MBAPHeader{}, err
	}
	unitID, err := c.ReadU8()
	if err != nil {
		return decode.MBAPHeader{}, err
	}
	return decode.MBAPHeader{TransactionID: txID, ProtocolID: protoID, Length: length, UnitID: unitID}, nil
}

// DissectModbusReq parses a Modbus/TCP request frame (MBAP + function
// code + function-specific PDU), per spec §4.2's function-code-tagged
// discriminated union.
func DissectModbusReq(c *bytesio.Cursor) (*decode.ModbusReqHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(protocol.AppModbusReq), c.Pos())
	}
	mbap, err := parseMBAP(c)
	if err != nil {
		return nil, errAt()
	}
	fc, err := c.ReadU8()
	if err != nil {
		return nil, errAt()
	}
	h := &decode.ModbusReqHeader{MBAP: mbap, FunctionCode: fc}
	var pErr error
	switch fc {
	case 0x01, 0x02:
		h.PDU.ReadBits, pErr = readBitsReq(c)
	case 0x03, 0x04:
		h.PDU.ReadRegisters, pErr = readRegistersReq(c)
	case 0x05:
		h.PDU.WriteSingleCoil, pErr = writeSingleCoilReq(c)
	case 0x06:
		h.PDU.WriteSingleReg, pErr = writeSingleRegReq(c)
	case 0x07:
		h.PDU.ReadExceptionStat = &struct{}{}
	case 0x0B:
		h.PDU.CommEventCounter = &struct{}{}
	case 0x0C:
		h.PDU.CommEventLog = &struct{}{}
	case 0x0F:
		h.PDU.WriteMultiCoils, pErr = writeMultiCoilsReq(c)
	case 0x10:
		h.PDU.WriteMultiRegs, pErr = writeMultiRegsReq(c)
	case 0x11:
		h.PDU.ReportServerID = &struct{}{}
	case 0x14:
		h.PDU.ReadFileRecord, pErr = readFileRecordReq(c)
	case 0x15:
		h.PDU.WriteFileRecord, pErr = writeFileRecordReq(c)
	case 0x16:
		h.PDU.MaskWriteReg, pErr = maskWriteRegReq(c)
	case 0x17:
		h.PDU.ReadWriteMultiple, pErr = readWriteMultipleReq(c)
	case 0x18:
		h.PDU.ReadFIFO, pErr = readFIFOReq(c)
	default:
		return nil, protocol.NewUnknownPayload(protocol.Application(protocol.AppModbusReq))
	}
	if pErr != nil {
		return nil, errAt()
	}
	return h, nil
}

func readBitsReq(c *bytesio.Cursor) (*decode.ReadBitsReq, error) {
	start, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	count, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	return &decode.ReadBitsReq{StartAddress: start, Count: count}, nil
}

func readRegistersReq(c *bytesio.Cursor) (*decode.ReadRegistersReq, error) {
	start, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	count, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	return &decode.ReadRegistersReq{StartAddress: start, Count: count}, nil
}

func writeSingleCoilReq(c *bytesio.Cursor) (*decode.WriteSingleCoilReq, error) {
	addr, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	val, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	return &decode.WriteSingleCoilReq{OutputAddress: addr, OutputValue: val}, nil
}

func writeSingleRegReq(c *bytesio.Cursor) (*decode.WriteSingleRegReq, error) {
	addr, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	val, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	return &decode.WriteSingleRegReq{RegisterAddress: addr, RegisterValue: val}, nil
}

func writeMultiCoilsReq(c *bytesio.Cursor) (*decode.WriteMultiCoilsReq, error) {
	start, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	count, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	byteCount, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	values, err := c.Take(int(byteCount))
	if err != nil {
		return nil, err
	}
	return &decode.WriteMultiCoilsReq{StartAddress: start, OutputCount: count, ByteCount: byteCount, Values: values}, nil
}

func writeMultiRegsReq(c *bytesio.Cursor) (*decode.WriteMultiRegsReq, error) {
	start, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	count, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	byteCount, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	values, err := c.Take(int(byteCount))
	if err != nil {
		return nil, err
	}
	return &decode.WriteMultiRegsReq{StartAddress: start, OutputCount: count, ByteCount: byteCount, Values: values}, nil
}

func maskWriteRegReq(c *bytesio.Cursor) (*decode.MaskWriteRegReq, error) {
	ref, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	and, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	or, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	return &decode.MaskWriteRegReq{RefAddress: ref, AndMask: and, OrMask: or}, nil
}

func readWriteMultipleReq(c *bytesio.Cursor) (*decode.ReadWriteMultipleReq, error) {
	readStart, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	readCount, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	writeStart, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	writeCount, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	writeBytes, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	writeValues, err := c.Take(int(writeBytes))
	if err != nil {
		return nil, err
	}
	return &decode.ReadWriteMultipleReq{
		ReadStart: readStart, ReadCount: readCount,
		WriteStart: writeStart, WriteCount: writeCount,
		WriteBytes: writeBytes, WriteValues: writeValues,
	}, nil
}

func readFIFOReq(c *bytesio.Cursor) (*decode.ReadFIFOReq, error) {
	addr, err := c.BeU16()
	if err != nil {
		return nil, err
	}
	return &decode.ReadFIFOReq{FIFOPointerAddress: addr}, nil
}

func parseFileRecordSubReqs(c *bytesio.Cursor, total int) ([]decode.FileRecordSubReq, error) {
	var out []decode.FileRecordSubReq
	consumed := 0
	for consumed < total {
		refType, err := c.ReadU8()
		if err != nil {
			return nil, err
		}
		fileNum, err := c.BeU16()
		if err != nil {
			return nil, err
		}
		recordNum, err := c.BeU16()
		if err != nil {
			return nil, err
		}
		recordLen, err := c.BeU16()
		if err != nil {
			return nil, err
		}
		data, err := c.Take(int(recordLen) * 2)
		if err != nil {
			return nil, err
		}
		out = append(out, decode.FileRecordSubReq{
			RefType: refType, FileNumber: fileNum, RecordNum: recordNum,
			RecordLen: recordLen, RecordData: data,
		})
		consumed += 7 + int(recordLen)*2
	}
	return out, nil
}

func readFileRecordReq(c *bytesio.Cursor) (*decode.ReadFileRecordReq, error) {
	byteCount, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	reqs, err := parseFileRecordSubReqs(c, int(byteCount))
	if err != nil {
		return nil, err
	}
	return &decode.ReadFileRecordReq{ByteCount: byteCount, Requests: reqs}, nil
}

func writeFileRecordReq(c *bytesio.Cursor) (*decode.WriteFileRecordReq, error) {
	byteCount, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	reqs, err := parseFileRecordSubReqs(c, int(byteCount))
	if err != nil {
		return nil, err
	}
	return &decode.WriteFileRecordReq{ByteCount: byteCount, Requests: reqs}, nil
}
