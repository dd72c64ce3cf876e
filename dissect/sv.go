package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

const (
	tagSvID     = 0x80
	tagSmpCnt   = 0x82
	tagSvConfRev = 0x83
	tagSmpSynch = 0x85
	tagSeqData  = 0x87
	tagASDU     = 0x30 // SEQUENCE, one per ASDU element
	tagSeqASDU  = 0xA2 // seqASDU wrapper
)

// DissectSV parses the Sampled Values PDU: the same 8-byte envelope as
// GOOSE, then a savPDU carrying noASDU and a sequence of ASDUs.
func DissectSV(c *bytesio.Cursor) (*decode.SVHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Transport(protocol.TransportSV), c.Pos())
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
	outerTL, err := c.BerTL()
	if err != nil {
		return nil, errAt()
	}
	body, err := c.Take(outerTL.Length)
	if err != nil {
		return nil, errAt()
	}
	bc := bytesio.NewCursor(body)

	h := &decode.SVHeader{AppID: appID, Length: length, Reserved1: reserved1, Reserved2: reserved2}
	for len(bc.Remainder()) > 0 {
		tl, v, berr := bc.BerTLV()
		if berr != nil {
			return nil, errAt()
		}
		switch tl.Tag {
		case 0x80: // noASDU
			h.NoASDU = beUint(v)
		case tagSeqASDU:
			asdus, derr := parseASDUList(v)
			if derr != nil {
				return nil, errAt()
			}
			h.ASDUs = asdus
		}
	}
	return h, nil
}

func parseASDUList(data []byte) ([]decode.SVASDU, error) {
	elements, err := splitBerSequence(data)
	if err != nil {
		return nil, err
	}
	var out []decode.SVASDU
	for _, elem := range elements {
		asdu, err := parseASDU(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, asdu)
	}
	return out, nil
}

func parseASDU(elem []byte) (decode.SVASDU, error) {
	ec := bytesio.NewCursor(elem)
	outerTL, err := ec.BerTL()
	if err != nil {
		return decode.SVASDU{}, err
	}
	body, err := ec.Take(outerTL.Length)
	if err != nil {
		return decode.SVASDU{}, err
	}
	bc := bytesio.NewCursor(body)
	var asdu decode.SVASDU
	for len(bc.Remainder()) > 0 {
		tl, v, err := bc.BerTLV()
		if err != nil {
			return decode.SVASDU{}, err
		}
		switch tl.Tag {
		case tagSvID:
			asdu.SvID = v
		case tagSmpCnt:
			asdu.SmpCnt = uint16(beUint(v))
		case tagSvConfRev:
			asdu.ConfRev = beUint(v)
		case tagSmpSynch:
			if len(v) > 0 {
				asdu.SmpSynch = v[0]
			}
		case tagSeqData:
			asdu.SeqData = v
		}
	}
	return asdu, nil
}
