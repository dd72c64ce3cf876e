package dissect

import (
	"bytes"
	"strings"

	"github.com/quinspect/quinspect/bytesio"
	"github.com/quinspect/quinspect/decode"
	"github.com/quinspect/quinspect/protocol"
)

const maxHTTPHeaders = 16

// DissectHTTP parses a start line plus up to maxHTTPHeaders header
// lines. Full message-body/chunked-transfer handling and stream
// reassembly are explicit non-goals (spec §1); this recognizes the
// protocol and exposes the leading metadata to the rule engines.
func DissectHTTP(c *bytesio.Cursor) (*decode.HTTPHeader, *protocol.ParseError) {
	errAt := func() *protocol.ParseError {
		return protocol.NewParsingHeader(protocol.Application(protocol.AppHTTP), c.Pos())
	}
	data := c.Remainder()
	lines := bytes.SplitN(data, []byte("\r\n"), maxHTTPHeaders+2)
	if len(lines) == 0 {
		return nil, errAt()
	}
	startLine := string(lines[0])
	if !looksLikeHTTP(startLine) {
		return nil, protocol.NewUnknownPayload(protocol.Application(protocol.AppHTTP))
	}
	h := &decode.HTTPHeader{
		IsRequest: !strings.HasPrefix(startLine, "HTTP/"),
		StartLine: startLine,
		Headers:   make(map[string]string),
	}
	for _, line := range lines[1:] {
		if len(line) == 0 {
			break
		}
		if len(h.HeaderList) >= maxHTTPHeaders {
			break
		}
		parts := bytes.SplitN(line, []byte(":"), 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(string(parts[0]))
		val := strings.TrimSpace(string(parts[1]))
		h.Headers[key] = val
		h.HeaderList = append(h.HeaderList, key)
	}
	consumed := len(startLine) + 2
	for _, key := range h.HeaderList {
		consumed += len(key) + len(h.Headers[key]) + 4
	}
	if consumed <= len(data) {
		c.Take(consumed)
	}
	return h, nil
}

var httpMethods = []string{"GET ", "POST ", "PUT ", "DELETE ", "HEAD ", "OPTIONS ", "PATCH ", "CONNECT ", "TRACE "}

func looksLikeHTTP(startLine string) bool {
	if strings.HasPrefix(startLine, "HTTP/") {
		return true
	}
	for _, m := range httpMethods {
		if strings.HasPrefix(startLine, m) {
			return true
		}
	}
	return false
}
