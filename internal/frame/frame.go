// Package frame implements the length-prefixed wire frame that carries
// one packet per frame: an 8-byte header (payload length then packet
// identifier, both little-endian u32) followed by the payload, optionally
// zstd-compressed when the packet's descriptor requests it.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/hytale-oss/gameserver/internal/codec"
	"github.com/hytale-oss/gameserver/internal/packets"
)

const headerSize = 8

var (
	ErrCategoryDenied  = errors.New("frame: packet category not in current filter")
	ErrTooLong         = errors.New("frame: payload exceeds descriptor max size")
	ErrDecompressFailed = errors.New("frame: zstd decode failed")
)

// Encoder turns packet values into framed wire bytes. Not safe for
// concurrent use; one Encoder per connection, matching the zstd encoder
// it wraps.
type Encoder struct {
	registry *packets.Registry
	zw       *zstd.Encoder
}

// NewEncoder builds an Encoder dispatching through reg.
func NewEncoder(reg *packets.Registry) (*Encoder, error) {
	zw, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("frame: new zstd encoder: %w", err)
	}
	return &Encoder{registry: reg, zw: zw}, nil
}

// Close releases the underlying zstd encoder.
func (e *Encoder) Close() error { return e.zw.Close() }

// Encode serializes p's payload, compresses it if its descriptor
// requires that, and returns the complete framed wire bytes: header then
// payload.
func (e *Encoder) Encode(p packets.Packet) ([]byte, error) {
	desc := p.Descriptor()
	w := codec.NewWriter()
	if err := e.registry.Encode(p, w); err != nil {
		return nil, err
	}
	payload := w.Bytes()
	if desc.IsCompressed {
		payload = e.zw.EncodeAll(payload, nil)
	}
	if uint32(len(payload)) > desc.MaxSize {
		return nil, fmt.Errorf("%w: %s: %d > %d", ErrTooLong, desc.Name, len(payload), desc.MaxSize)
	}

	out := make([]byte, headerSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[4:8], desc.ID)
	copy(out[headerSize:], payload)
	return out, nil
}

// Decoder reassembles framed packets from a byte stream that may deliver
// partial frames across successive Feed calls, enforcing the current
// allowed-category bitmask and each descriptor's maximum size. Not safe
// for concurrent use.
type Decoder struct {
	registry *packets.Registry
	allowed  packets.Category
	buf      []byte
	zr       *zstd.Decoder
}

// NewDecoder builds a Decoder dispatching through reg, initially
// admitting only the given categories.
func NewDecoder(reg *packets.Registry, allowed packets.Category) (*Decoder, error) {
	zr, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(256<<20))
	if err != nil {
		return nil, fmt.Errorf("frame: new zstd decoder: %w", err)
	}
	return &Decoder{registry: reg, allowed: allowed, zr: zr}, nil
}

// Close releases the underlying zstd decoder.
func (d *Decoder) Close() { d.zr.Close() }

// SetAllowed widens or narrows the categories permitted to decode,
// called by the session FSM as the connection advances phases.
func (d *Decoder) SetAllowed(allowed packets.Category) { d.allowed = allowed }

// Feed appends newly read bytes to the internal buffer.
func (d *Decoder) Feed(b []byte) {
	d.buf = append(d.buf, b...)
}

// Next attempts to decode one complete frame out of the buffered bytes.
// It returns (nil, false, nil) when more bytes are needed, and consumes
// the frame from the internal buffer on a successful decode.
func (d *Decoder) Next() (packets.Packet, bool, error) {
	if len(d.buf) < headerSize {
		return nil, false, nil
	}
	length := binary.LittleEndian.Uint32(d.buf[0:4])
	id := binary.LittleEndian.Uint32(d.buf[4:8])

	desc, ok := d.registry.DescriptorFor(id)
	if !ok {
		return nil, false, fmt.Errorf("%w: %d", packets.ErrUnknownPacket, id)
	}
	if desc.Category&d.allowed == 0 {
		return nil, false, fmt.Errorf("%w: %s not admitted by %s", ErrCategoryDenied, desc.Category, d.allowed)
	}
	if length > desc.MaxSize {
		return nil, false, fmt.Errorf("%w: %s: %d > %d", ErrTooLong, desc.Name, length, desc.MaxSize)
	}
	if len(d.buf) < headerSize+int(length) {
		return nil, false, nil
	}

	payload := d.buf[headerSize : headerSize+int(length)]
	remaining := len(d.buf) - (headerSize + int(length))
	defer func() {
		copy(d.buf, d.buf[headerSize+int(length):])
		d.buf = d.buf[:remaining]
	}()

	if desc.IsCompressed {
		decoded, err := d.zr.DecodeAll(payload, nil)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s: %v", ErrDecompressFailed, desc.Name, err)
		}
		if uint32(len(decoded)) > desc.MaxSize {
			return nil, false, fmt.Errorf("%w: %s: decompressed %d > %d", ErrTooLong, desc.Name, len(decoded), desc.MaxSize)
		}
		payload = decoded
	}

	pkt, err := d.registry.Decode(id, payload)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", desc.Name, err)
	}
	return pkt, true, nil
}
