// Package protocol implements the SEGA touch-slider link-layer protocol:
// byte-stuffed framing, a JVS-style checksum, frame stitching, and the
// mode-dependent command dispatcher.
package protocol

// DefaultSync and DefaultEsc are the framing bytes used on the live slider
// link. Tests exercise the codec with other values to keep the framing
// logic independent of the production byte choices.
const (
	DefaultSync byte = 0xff
	DefaultEsc  byte = 0xfd
)

// Codec implements the sentinel+escape byte-stuffing used to frame command
// packets on the wire. A single Codec instance tracks independent encoder
// and decoder state and must not be shared between connections: a fresh
// Codec is created whenever a connection is (re)established.
type Codec struct {
	Sync byte
	Esc  byte

	decoderEscaping      bool
	encoderInTransaction bool
}

// NewCodec returns a Codec using the production sync/escape bytes.
func NewCodec() *Codec {
	return &Codec{Sync: DefaultSync, Esc: DefaultEsc}
}

// NewCodecWithBytes returns a Codec using caller-supplied sync/escape bytes,
// for exercising the framing logic independently of the live protocol's
// byte choices.
func NewCodecWithBytes(sync, esc byte) *Codec {
	return &Codec{Sync: sync, Esc: esc}
}

// Reset clears both encoder and decoder state, as happens whenever the
// underlying transport is (re)connected.
func (c *Codec) Reset() {
	c.decoderEscaping = false
	c.encoderInTransaction = false
}

// Encode stuffs data and appends it to the current outgoing frame. The
// first Encode call after a Reset (or after a prior Finalize) emits a
// leading sync byte before the stuffed payload. Multiple Encode calls
// before a Finalize accumulate into one logical frame.
func (c *Codec) Encode(data []byte) []byte {
	var out []byte
	if !c.encoderInTransaction {
		out = append(out, c.Sync)
		c.encoderInTransaction = true
	}
	for _, b := range data {
		if b == c.Sync || b == c.Esc {
			out = append(out, c.Esc, (b-1)&0xff)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// Finalize stuffs the given trailing bytes the same way Encode does, then
// closes the current frame so the next Encode call starts a fresh one.
func (c *Codec) Finalize(data []byte) []byte {
	out := c.Encode(data)
	c.encoderInTransaction = false
	return out
}

// Decode consumes an arbitrary chunk of wire bytes and returns the payload
// fragments it delimits, split at sync-byte boundaries. An empty chunk
// yields no fragments; any non-empty chunk always yields at least one
// fragment (the tail accumulated since the last sync byte, which may be
// empty). Framing anomalies (an escape dangling across a sync byte, or two
// escapes in a row) are recovered from without dropping surrounding data
// and are not reported; use DecodeWithAnomaly to observe them.
func (c *Codec) Decode(data []byte) [][]byte {
	return c.DecodeWithAnomaly(data, nil)
}

// DecodeWithAnomaly is Decode, but reports framing anomalies to onAnomaly
// (which may be nil) as they are encountered, matching the diagnostics the
// original protocol emits as warnings.
func (c *Codec) DecodeWithAnomaly(data []byte, onAnomaly func(string)) [][]byte {
	if len(data) == 0 {
		return nil
	}

	var result [][]byte
	cur := make([]byte, 0, len(data))

	for _, b := range data {
		switch {
		case b == c.Sync:
			if c.decoderEscaping && onAnomaly != nil {
				onAnomaly("sync received after escape; escape dropped")
			}
			c.decoderEscaping = false
			if len(cur) != 0 {
				result = append(result, cur)
				cur = make([]byte, 0, len(data))
			}
		case b == c.Esc:
			if c.decoderEscaping {
				if onAnomaly != nil {
					onAnomaly("escape received after escape; new escape ignored")
				}
			} else {
				c.decoderEscaping = true
			}
		case c.decoderEscaping:
			cur = append(cur, (b+1)&0xff)
			c.decoderEscaping = false
		default:
			cur = append(cur, b)
		}
	}
	result = append(result, cur)
	return result
}
