package packets

import (
	"errors"
	"fmt"

	"github.com/hytale-oss/gameserver/internal/codec"
)

// ErrUnknownPacket is returned by Registry.Decode/Encode for an
// identifier that was never registered.
var ErrUnknownPacket = errors.New("packets: unknown packet identifier")

type decodeFunc func(payload []byte) (Packet, error)
type encodeFunc func(p Packet, w *codec.Writer) error

// Registry maps packet identifiers to descriptors and to the decode/
// encode dispatch needed to move between wire bytes and a concrete Go
// packet value. It is the single source of truth for identifier
// uniqueness: registering a duplicate id is a construction-time panic.
type Registry struct {
	byID     map[uint32]*Descriptor
	decoders map[uint32]decodeFunc
	encoders map[uint32]encodeFunc
}

// NewRegistry returns an empty registry ready for Register calls.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[uint32]*Descriptor),
		decoders: make(map[uint32]decodeFunc),
		encoders: make(map[uint32]encodeFunc),
	}
}

// Register binds a packet type T to its descriptor and record codec.
// Panics if desc.ID is already registered.
func Register[T Packet](r *Registry, desc *Descriptor, c *codec.Struct[T]) {
	if _, dup := r.byID[desc.ID]; dup {
		panic(fmt.Sprintf("packets: duplicate registration for id %d (%s)", desc.ID, desc.Name))
	}
	r.byID[desc.ID] = desc
	r.decoders[desc.ID] = func(payload []byte) (Packet, error) {
		var v T
		rd := codec.NewReader(payload)
		if err := c.Decode(&v, rd, false); err != nil {
			return nil, fmt.Errorf("%s: %w", desc.Name, err)
		}
		return v, nil
	}
	r.encoders[desc.ID] = func(p Packet, w *codec.Writer) error {
		v, ok := p.(T)
		if !ok {
			var zero T
			return fmt.Errorf("packets: encode %s: value is %T, want %T", desc.Name, p, zero)
		}
		if err := c.Encode(v, w); err != nil {
			return fmt.Errorf("%s: %w", desc.Name, err)
		}
		return nil
	}
}

// DescriptorFor looks up the descriptor for id.
func (r *Registry) DescriptorFor(id uint32) (*Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Decode dispatches on id and decodes payload into the registered
// packet's Go representation.
func (r *Registry) Decode(id uint32, payload []byte) (Packet, error) {
	fn, ok := r.decoders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPacket, id)
	}
	return fn(payload)
}

// Encode dispatches on p.Descriptor().ID and appends p's wire payload to w.
func (r *Registry) Encode(p Packet, w *codec.Writer) error {
	id := p.Descriptor().ID
	fn, ok := r.encoders[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPacket, id)
	}
	return fn(p, w)
}

// NewDefaultRegistry returns a Registry with every packet type this
// repository implements already registered: the CONNECTION and AUTH
// categories, the full SETUP category, and the representative ASSETS
// subset.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterConnection(r)
	RegisterAuth(r)
	RegisterSetup(r)
	RegisterAssets(r)
	return r
}
