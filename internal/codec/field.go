package codec

import "fmt"

// fieldCodec projects a Codec[F] onto one field of an enclosing struct S,
// via get/set closures. It is how Struct[S] composes per-field codecs
// without any reflection.
type fieldCodec[S any, F any] struct {
	inner Codec[F]
	name  string
	get   func(*S) F
	set   func(*S, F)
}

// Field builds the field-projection codec used when assembling a Struct[S].
// name is used only to prefix decode/encode errors with the field path.
func Field[S any, F any](inner Codec[F], name string, get func(*S) F, set func(*S, F)) Codec[S] {
	return &fieldCodec[S, F]{inner: inner, name: name, get: get, set: set}
}

func (f *fieldCodec[S, F]) FixedSize() (int, bool) { return f.inner.FixedSize() }
func (f *fieldCodec[S, F]) WantsNullBit() bool     { return f.inner.WantsNullBit() }
func (f *fieldCodec[S, F]) IsPresent(v S) bool     { return f.inner.IsPresent(f.get(&v)) }

func (f *fieldCodec[S, F]) Decode(target *S, r *Reader, nullBitWasSet bool) error {
	var fv F
	if err := f.inner.Decode(&fv, r, nullBitWasSet); err != nil {
		return fmt.Errorf("%s: %w", f.name, err)
	}
	f.set(target, fv)
	return nil
}

func (f *fieldCodec[S, F]) Encode(v S, w *Writer) error {
	if err := f.inner.Encode(f.get(&v), w); err != nil {
		return fmt.Errorf("%s: %w", f.name, err)
	}
	return nil
}
