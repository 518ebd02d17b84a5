package codec

// Codec is a composable coder for a single Go value type. It is the
// generic building block every primitive, container, wrapper, and record
// codec in this package implements; record codecs hold a slice of
// Codec[S] (one per field, already projected onto the enclosing struct
// type S) and delegate to them in declaration order.
type Codec[T any] interface {
	// FixedSize returns the exact on-wire size when T's encoding never
	// varies, and false when it does.
	FixedSize() (size int, ok bool)

	// WantsNullBit is true only for the nullable wrappers; every concrete
	// codec (primitives, containers, records) returns false.
	WantsNullBit() bool

	// IsPresent is only consulted when WantsNullBit is true.
	IsPresent(v T) bool

	// Decode reads from the front of r into target. nullBitWasSet is only
	// meaningful when WantsNullBit is true; a fixed-null wrapper must still
	// advance r by FixedSize() bytes even when the bit is clear.
	Decode(target *T, r *Reader, nullBitWasSet bool) error

	// Encode appends the wire representation of v to w.
	Encode(v T, w *Writer) error
}
