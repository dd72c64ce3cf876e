package dissect

import (
	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

// MMS PDU choice tags (ISO 9506 mms-pdu, context-specific constructed).
const (
	mmsTagConfirmedRequest  = 0xA0
	mmsTagConfirmedResponse = 0xA1
	mmsTagUnconfirmedPDU    = 0xA3
	mmsTagInitiateRequest   = 0xA8
	mmsTagInitiateResponse  = 0xA9
	mmsTagConcludeRequest   = 0xAB
)

// DissectMMS parses the outer MMS PDU choice (carried in an ISO-on-TCP
// COTP data payload that is not S7comm) via the shared BER reader.
func DissectMMS(c *bytesio.Cursor) (*decode.MMSHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(protocol.AppMMS), c.Pos())
	}
	tl, body, err := c.BerTLV()
	if err != nil {
		return nil, errAt()
	}
	var choice decode.MMSPDUChoice
	switch tl.Tag {
	case mmsTagConfirmedRequest:
		choice = decode.MMSConfirmedRequest
	case mmsTagConfirmedResponse:
		choice = decode.MMSConfirmedResponse
	case mmsTagUnconfirmedPDU:
		choice = decode.MMSUnconfirmedPDU
	case mmsTagInitiateRequest:
		choice = decode.MMSInitiateRequest
	case mmsTagInitiateResponse:
		choice = decode.MMSInitiateResponse
	case mmsTagConcludeRequest:
		choice = decode.MMSConcludeRequest
	default:
		return nil, protocol.NewUnknownPayload(protocol.Application(protocol.AppMMS))
	}
	return &decode.MMSHeader{Choice: choice, Body: body}, nil
}
