package codec

// FixedNullable wraps a fixed-size inner codec so absent values still
// occupy the inner codec's fixed size (zero-filled), keeping every fixed
// field at a stable offset regardless of presence.
type FixedNullable[T any] struct {
	Inner Codec[T]
}

func (f FixedNullable[T]) FixedSize() (int, bool) {
	sz, _ := f.Inner.FixedSize()
	return sz, true
}
func (FixedNullable[T]) WantsNullBit() bool   { return true }
func (FixedNullable[T]) IsPresent(v *T) bool  { return v != nil }

func (f FixedNullable[T]) Decode(target **T, r *Reader, nullBitWasSet bool) error {
	sz, _ := f.Inner.FixedSize()
	if !nullBitWasSet {
		if err := r.Skip(sz); err != nil {
			return err
		}
		*target = nil
		return nil
	}
	var v T
	if err := f.Inner.Decode(&v, r, true); err != nil {
		return err
	}
	*target = &v
	return nil
}

func (f FixedNullable[T]) Encode(v *T, w *Writer) error {
	sz, _ := f.Inner.FixedSize()
	if v == nil {
		w.WriteZeros(sz)
		return nil
	}
	return f.Inner.Encode(*v, w)
}

// VariableNullable wraps an inner codec (fixed or variable) so an absent
// value writes nothing at all and is skipped entirely on decode.
type VariableNullable[T any] struct {
	Inner Codec[T]
}

func (VariableNullable[T]) FixedSize() (int, bool) { return 0, false }
func (VariableNullable[T]) WantsNullBit() bool     { return true }
func (VariableNullable[T]) IsPresent(v *T) bool    { return v != nil }

func (v VariableNullable[T]) Decode(target **T, r *Reader, nullBitWasSet bool) error {
	if !nullBitWasSet {
		*target = nil
		return nil
	}
	var x T
	if err := v.Inner.Decode(&x, r, true); err != nil {
		return err
	}
	*target = &x
	return nil
}

func (v VariableNullable[T]) Encode(val *T, w *Writer) error {
	if val == nil {
		return nil
	}
	return v.Inner.Encode(*val, w)
}
