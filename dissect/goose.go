package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

// GOOSE PDU tag constants within the gocbRef..allData sequence (IEC
// 61850-8-1 Annex A), read via the shared BER tag/length reader.
const (
	tagGoCBRef             = 0x80
	tagTimeAllowedToLive   = 0x81
	tagDatSet              = 0x82
	tagGoID                = 0x83
	tagT                   = 0x84
	tagStNum               = 0x85
	tagSqNum               = 0x86
	tagSimulation          = 0x87
	tagConfRev             = 0x88
	tagNdsCom              = 0x89
	tagNumDatSetEntries    = 0x8A
	tagAllData             = 0xAB
)

// DissectGOOSE parses the GOOSE PDU: a fixed 8-byte envelope (AppID,
// Length, Reserved1, Reserved2) followed by a BER-encoded sequence of
// tagged fields.
func DissectGOOSE(c *bytesio.Cursor) (*decode.GOOSEHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Network(protocol.NetworkGOOSE), c.Pos())
	}
	appID, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	length, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	reserved1, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}
	reserved2, err := c.BeU16()
	if err != nil {
		return nil, errAt()
	}

	// outer APPID (0x60, gooseApdu) wrapper
	outerTL, err := c.BerTL()
	if err != nil {
		return nil, errAt()
	}
	body, err := c.Take(outerTL.Length)
	if err != nil {
		return nil, errAt()
	}
	bc := bytesio.NewCursor(body)

	h := &decode.GOOSEHeader{AppID: appID, Length: length, Reserved1: reserved1, Reserved2: reserved2}
	for bc.Remainder() != nil && len(bc.Remainder()) > 0 {
		tl, v, berr := bc.BerTLV()
		if berr != nil {
			return nil, errAt()
		}
		switch tl.Tag {
		case tagGoCBRef:
			h.GoCBRef = v
		case tagTimeAllowedToLive:
			h.TimeAllowedToLive = beUint(v)
		case tagDatSet:
			h.DatSet = v
		case tagGoID:
			h.GoID = v
		case tagT:
			h.T = v
		case tagStNum:
			h.StNum = beUint(v)
		case tagSqNum:
			h.SqNum = beUint(v)
		case tagSimulation:
			h.Simulation = len(v) > 0 && v[0] != 0
		case tagConfRev:
			h.ConfRev = beUint(v)
		case tagNdsCom:
			h.NdsCom = len(v) > 0 && v[0] != 0
		case tagNumDatSetEntries:
			h.NumDatSetEntries = beUint(v)
		case tagAllData:
			entries, derr := splitBerSequence(v)
			if derr != nil {
				return nil, errAt()
			}
			h.AllData = entries
		}
	}
	return h, nil
}

// beUint reads a short (<=8 byte) big-endian BER integer value.
func beUint(v []byte) uint32 {
	var out uint32
	for _, b := range v {
		out = out<<8 | uint32(b)
	}
	return out
}

// splitBerSequence walks a BER SEQUENCE OF body and returns each
// element's raw encoded bytes (tag+length+value), used for GOOSE's
// allData and SV's sequence-of-data fields where the element type
// varies and only byte-level access is needed by rule matching.
func splitBerSequence(data []byte) ([][]byte, error) {
	c := bytesio.NewCursor(data)
	var out [][]byte
	for c.Remainder() != nil && len(c.Remainder()) > 0 {
		start := c.Pos()
		tl, err := c.BerTL()
		if err != nil {
			return nil, err
		}
		if _, err := c.Take(tl.Length); err != nil {
			return nil, err
		}
		out = append(out, data[start:c.Pos()])
	}
	return out, nil
}
