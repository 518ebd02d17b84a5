package codec

import "fmt"

// EnumType is the constraint every small-enum value type must satisfy: a
// single byte backing a 0-based ordinal.
type EnumType interface {
	~uint8
}

// Enum builds the coder for a small-enum type T with the given number of
// declared variants. It is always one byte, never optional at wire level,
// and rejects ordinals at or beyond variantCount on decode.
type Enum[T EnumType] struct {
	VariantCount int
}

func (Enum[T]) FixedSize() (int, bool) { return 1, true }
func (Enum[T]) WantsNullBit() bool     { return false }
func (Enum[T]) IsPresent(T) bool       { return true }

func (e Enum[T]) Decode(target *T, r *Reader, _ bool) error {
	b, err := r.Byte()
	if err != nil {
		return err
	}
	if int(b) >= e.VariantCount {
		return fmt.Errorf("%w: ordinal %d >= %d variants", ErrBadEnum, b, e.VariantCount)
	}
	*target = T(b)
	return nil
}

func (Enum[T]) Encode(v T, w *Writer) error {
	w.WriteByte(byte(v))
	return nil
}
