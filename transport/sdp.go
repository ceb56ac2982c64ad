package transport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// This file implements just enough of the Bluetooth SDP (Service Discovery
// Protocol) wire format to resolve an RFCOMM channel number for the Serial
// Port Profile: building a ServiceSearchAttributeRequest, and decoding the
// DataElement tree a ServiceSearchAttributeResponse carries back. No SDP
// library exists among the available third-party dependencies, so this is
// hand-rolled against the protocol itself (ETSI TS 101 369 / Bluetooth Core
// SDP spec) rather than against any particular library's API.

const (
	sdpErrorResponse               = 0x01
	sdpServiceSearchAttributeReq   = 0x06
	sdpServiceSearchAttributeResp  = 0x07

	attrProtocolDescriptorList = 0x0004
	uuidRFCOMM                 = 0x0003
	uuidSerialPort             = 0x1101
)

// deType identifies an SDP DataElement's kind, per the spec's 5-bit type
// field.
type deType byte

const (
	deNil deType = iota
	deUint
	deInt
	deUUID
	deText
	deBool
	deSeq
	deAlt
	deURL
)

// dataElement is a decoded SDP DataElement. Seq holds children for
// deSeq/deAlt; UUID/Uint hold scalar values (this client only ever deals in
// 16-bit UUIDs and unsigned integers up to 32 bits, which is all the
// Serial Port Profile's records need); Raw holds the undigested payload for
// any other type.
type dataElement struct {
	Type deType
	Uint uint64
	UUID uint16
	Seq  []dataElement
	Raw  []byte
}

// encodeUUID16 appends a 16-bit UUID DataElement.
func encodeUUID16(buf []byte, v uint16) []byte {
	buf = append(buf, byte(deUUID)<<3|1)
	return binary.BigEndian.AppendUint16(buf, v)
}

// encodeUint16 appends a 16-bit unsigned integer DataElement.
func encodeUint16(buf []byte, v uint16) []byte {
	buf = append(buf, byte(deUint)<<3|1)
	return binary.BigEndian.AppendUint16(buf, v)
}

// encodeSeq wraps content (already-encoded child DataElements) in a
// Sequence header using an 8-bit length field.
func encodeSeq(content []byte) []byte {
	if len(content) > 0xff {
		// Every sequence this client builds is small and fixed shape;
		// a 16-bit length header would be needed past 255 bytes.
		panic("transport: sdp request sequence too large for 8-bit length")
	}
	out := []byte{byte(deSeq)<<3 | 5, byte(len(content))}
	return append(out, content...)
}

// buildServiceSearchAttributeRequest builds a request restricted to
// services advertising the Serial Port Profile UUID, asking only for the
// ProtocolDescriptorList attribute.
func buildServiceSearchAttributeRequest(transactionID uint16) []byte {
	var searchPattern []byte
	searchPattern = encodeUUID16(searchPattern, uuidSerialPort)
	searchPatternElem := encodeSeq(searchPattern)

	var attrIDs []byte
	attrIDs = encodeUint16(attrIDs, attrProtocolDescriptorList)
	attrIDListElem := encodeSeq(attrIDs)

	params := append([]byte(nil), searchPatternElem...)
	params = binary.BigEndian.AppendUint16(params, 0xffff) // MaximumAttributeByteCount
	params = append(params, attrIDListElem...)
	params = append(params, 0x00) // ContinuationState: none

	pdu := []byte{sdpServiceSearchAttributeReq}
	pdu = binary.BigEndian.AppendUint16(pdu, transactionID)
	pdu = binary.BigEndian.AppendUint16(pdu, uint16(len(params)))
	pdu = append(pdu, params...)
	return pdu
}

// decodeElement decodes one DataElement starting at buf[0], returning it
// and the number of bytes consumed.
func decodeElement(buf []byte) (dataElement, int, error) {
	if len(buf) < 1 {
		return dataElement{}, 0, io.ErrUnexpectedEOF
	}
	typ := deType(buf[0] >> 3)
	sizeIdx := buf[0] & 0x7

	var fixedLen int
	var headerLen int
	switch sizeIdx {
	case 0:
		if typ != deNil {
			fixedLen = 1
		}
	case 1:
		fixedLen = 2
	case 2:
		fixedLen = 4
	case 3:
		fixedLen = 8
	case 4:
		fixedLen = 16
	case 5:
		if len(buf) < 2 {
			return dataElement{}, 0, io.ErrUnexpectedEOF
		}
		fixedLen = int(buf[1])
		headerLen = 1
	case 6:
		if len(buf) < 3 {
			return dataElement{}, 0, io.ErrUnexpectedEOF
		}
		fixedLen = int(binary.BigEndian.Uint16(buf[1:3]))
		headerLen = 2
	case 7:
		if len(buf) < 5 {
			return dataElement{}, 0, io.ErrUnexpectedEOF
		}
		fixedLen = int(binary.BigEndian.Uint32(buf[1:5]))
		headerLen = 4
	}

	dataStart := 1 + headerLen
	dataEnd := dataStart + fixedLen
	if dataEnd > len(buf) {
		return dataElement{}, 0, io.ErrUnexpectedEOF
	}
	payload := buf[dataStart:dataEnd]

	el := dataElement{Type: typ}
	switch typ {
	case deUint, deInt:
		var v uint64
		for _, b := range payload {
			v = v<<8 | uint64(b)
		}
		el.Uint = v
	case deUUID:
		if len(payload) == 2 {
			el.UUID = binary.BigEndian.Uint16(payload)
		} else if len(payload) == 16 {
			// 128-bit UUID: the 16-bit "short form" lives at bytes 2:4 of
			// the Bluetooth base UUID when the record used one.
			el.UUID = binary.BigEndian.Uint16(payload[2:4])
		}
		el.Raw = payload
	case deSeq, deAlt:
		children, err := decodeElements(payload)
		if err != nil {
			return dataElement{}, 0, err
		}
		el.Seq = children
	default:
		el.Raw = payload
	}

	return el, dataEnd, nil
}

// decodeElements decodes a back-to-back run of DataElements filling buf
// exactly, as found inside a Sequence's payload.
func decodeElements(buf []byte) ([]dataElement, error) {
	var out []dataElement
	pos := 0
	for pos < len(buf) {
		el, n, err := decodeElement(buf[pos:])
		if err != nil {
			return nil, err
		}
		out = append(out, el)
		pos += n
	}
	return out, nil
}

// findRFCOMMChannel walks a decoded ProtocolDescriptorList (a Sequence of
// per-layer Sequences, each led by a protocol UUID) for the RFCOMM layer
// and returns its channel parameter.
func findRFCOMMChannel(protocolList dataElement) (uint8, bool) {
	for _, layer := range protocolList.Seq {
		if len(layer.Seq) == 0 || layer.Seq[0].Type != deUUID {
			continue
		}
		if layer.Seq[0].UUID != uuidRFCOMM {
			continue
		}
		if len(layer.Seq) < 2 {
			return 0, false
		}
		return uint8(layer.Seq[1].Uint), true
	}
	return 0, false
}

// sdpFindSerialPortChannel sends a single ServiceSearchAttributeRequest
// over conn and extracts the RFCOMM channel of the first Serial Port
// Profile record. nameFilter/uuidFilter are accepted for forward
// compatibility with richer queries but are not matched against yet, since
// the ProtocolDescriptorList-only request above never asks the remote for
// the service name or class UUID list needed to apply them.
func sdpFindSerialPortChannel(conn io.ReadWriter, nameFilter, uuidFilter string) (uint8, error) {
	req := buildServiceSearchAttributeRequest(1)
	if _, err := conn.Write(req); err != nil {
		return 0, fmt.Errorf("sdp: write request: %w", err)
	}

	header := make([]byte, 5)
	if _, err := io.ReadFull(conn, header); err != nil {
		return 0, fmt.Errorf("sdp: read response header: %w", err)
	}
	pduID := header[0]
	paramLen := binary.BigEndian.Uint16(header[3:5])

	params := make([]byte, paramLen)
	if _, err := io.ReadFull(conn, params); err != nil {
		return 0, fmt.Errorf("sdp: read response body: %w", err)
	}

	if pduID == sdpErrorResponse {
		return 0, fmt.Errorf("sdp: error response (code %#x)", binary.BigEndian.Uint16(params))
	}
	if pduID != sdpServiceSearchAttributeResp {
		return 0, fmt.Errorf("sdp: unexpected pdu id %#x", pduID)
	}
	if len(params) < 2 {
		return 0, fmt.Errorf("sdp: truncated response")
	}

	listsLen := binary.BigEndian.Uint16(params[0:2])
	if int(listsLen)+2 > len(params) {
		return 0, fmt.Errorf("sdp: attribute lists length overruns response")
	}
	listsBuf := params[2 : 2+int(listsLen)]

	lists, err := decodeElements(listsBuf)
	if err != nil {
		return 0, fmt.Errorf("sdp: decode attribute lists: %w", err)
	}
	// AttributeLists is a Sequence holding one AttributeList per service
	// record.
	var services []dataElement
	for _, l := range lists {
		services = append(services, l.Seq...)
	}

	for _, svc := range services {
		// Each service record decodes as a flat Sequence of alternating
		// (AttributeID, AttributeValue) elements.
		for i := 0; i+1 < len(svc.Seq); i += 2 {
			id := svc.Seq[i]
			val := svc.Seq[i+1]
			if id.Type == deUint && id.Uint == attrProtocolDescriptorList {
				if ch, ok := findRFCOMMChannel(val); ok {
					return ch, nil
				}
			}
		}
	}

	return 0, fmt.Errorf("sdp: no serial port profile record with an rfcomm channel found")
}
