package protocol

import "fmt"

// Frame is a fully validated, de-stuffed command frame: a command code and
// its argument bytes. It is ephemeral — produced by the Stitcher and handed
// directly to the dispatcher within the same call.
type Frame struct {
	Cmd  CommandCode
	Args []byte
}

// maxArgs is the largest LEN value the protocol allows in a frame's second
// byte (args are 0..253 bytes).
const maxArgs = 253

// Stitcher reassembles Frame values out of the decoded fragments produced
// by a Codec. A fragment boundary other than the very first one handed to
// Feed always corresponds to a SYNC byte on the wire, which always starts a
// fresh frame; any bytes buffered for an incomplete frame at that point are
// simply dropped, since the wire guarantees resynchronization cannot
// silently corrupt the next frame.
type Stitcher struct {
	buf      []byte
	checksum *Checksum
}

// NewStitcher returns a Stitcher whose RX checksum starts at the protocol's
// fixed initial value.
func NewStitcher() *Stitcher {
	return &Stitcher{checksum: NewFrameChecksum()}
}

func (s *Stitcher) resetFrame() {
	s.buf = s.buf[:0]
	s.checksum.Reset()
}

// FrameResult is the outcome of completing one buffered frame: either a
// valid Frame ready for dispatch, or a checksum failure carrying the
// raw bytes that failed to validate (for logging and the exception reply).
type FrameResult struct {
	Frame      *Frame
	BadCksum   bool
	RawForLog  []byte
}

// Feed appends each decoded fragment from one Codec.Decode/DecodeWithAnomaly
// call to the stitcher's buffer, completing as many frames as the buffered
// bytes allow. Fragment index > 0 always follows a SYNC byte and discards
// whatever was left incomplete in the buffer.
func (s *Stitcher) Feed(fragments [][]byte) []FrameResult {
	var results []FrameResult
	for i, frag := range fragments {
		if i > 0 {
			s.resetFrame()
		}
		results = append(results, s.feedOne(frag)...)
	}
	return results
}

func (s *Stitcher) feedOne(frag []byte) []FrameResult {
	var results []FrameResult
	pos := 0
	for pos < len(frag) {
		if len(s.buf) < 2 {
			// Append only the bytes needed to learn LEN, so a
			// multi-frame fragment (shouldn't happen on a conformant
			// wire, but defends against a malformed one) is still
			// walked byte-by-byte rather than over-consumed.
			n := 2 - len(s.buf)
			if n > len(frag)-pos {
				n = len(frag) - pos
			}
			chunk := frag[pos : pos+n]
			s.buf = append(s.buf, chunk...)
			s.checksum.Update(chunk)
			pos += n
			continue
		}

		argc := int(s.buf[1])
		packetLen := argc + 3

		if len(s.buf) > packetLen {
			panic(fmt.Sprintf("protocol: stitcher buffer overran frame length (buffered=%d, packet_len=%d)", len(s.buf), packetLen))
		}

		if len(s.buf) == packetLen {
			if res := s.complete(); res != nil {
				results = append(results, *res)
			}
			continue
		}

		n := packetLen - len(s.buf)
		if n > len(frag)-pos {
			n = len(frag) - pos
		}
		chunk := frag[pos : pos+n]
		s.buf = append(s.buf, chunk...)
		s.checksum.Update(chunk)
		pos += n
	}

	if len(s.buf) >= 2 {
		argc := int(s.buf[1])
		packetLen := argc + 3
		if len(s.buf) > packetLen {
			panic(fmt.Sprintf("protocol: stitcher buffer overran frame length (buffered=%d, packet_len=%d)", len(s.buf), packetLen))
		}
		if len(s.buf) == packetLen {
			if res := s.complete(); res != nil {
				results = append(results, *res)
			}
		}
	}

	return results
}

// complete finalizes a fully-buffered frame, returning either the validated
// Frame or a checksum-failure result, and resets the buffer either way.
func (s *Stitcher) complete() *FrameResult {
	argc := int(s.buf[1])
	if !s.checksum.Valid() {
		raw := append([]byte(nil), s.buf...)
		s.resetFrame()
		return &FrameResult{BadCksum: true, RawForLog: raw}
	}

	cmd := CommandCode(s.buf[0])
	args := append([]byte(nil), s.buf[2:2+argc]...)
	s.resetFrame()
	return &FrameResult{Frame: &Frame{Cmd: cmd, Args: args}}
}
