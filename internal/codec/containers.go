package codec

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// FixedBytes is a raw N-byte blob with no length prefix.
type FixedBytes struct{ N int }

func (f FixedBytes) FixedSize() (int, bool) { return f.N, true }
func (FixedBytes) WantsNullBit() bool       { return false }
func (FixedBytes) IsPresent([]byte) bool    { return true }

func (f FixedBytes) Decode(target *[]byte, r *Reader, _ bool) error {
	b, err := r.Bytes(f.N)
	if err != nil {
		return err
	}
	out := make([]byte, f.N)
	copy(out, b)
	*target = out
	return nil
}

func (f FixedBytes) Encode(v []byte, w *Writer) error {
	if len(v) != f.N {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(v), f.N)
	}
	w.Write(v)
	return nil
}

// FixedString is a NUL-padded UTF-8 string occupying exactly N bytes.
// Encoding a string containing an interior NUL is rejected; decoding
// truncates at the first NUL within the slot.
type FixedString struct{ N int }

func (f FixedString) FixedSize() (int, bool) { return f.N, true }
func (FixedString) WantsNullBit() bool       { return false }
func (FixedString) IsPresent(string) bool    { return true }

func (f FixedString) Decode(target *string, r *Reader, _ bool) error {
	b, err := r.Bytes(f.N)
	if err != nil {
		return err
	}
	if idx := bytes.IndexByte(b, 0); idx >= 0 {
		b = b[:idx]
	}
	if !utf8.Valid(b) {
		return ErrInvalidUTF8
	}
	*target = string(b)
	return nil
}

func (f FixedString) Encode(v string, w *Writer) error {
	if len(v) > f.N {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, len(v), f.N)
	}
	if strings.IndexByte(v, 0) >= 0 {
		return ErrInteriorNUL
	}
	buf := make([]byte, f.N)
	copy(buf, v)
	w.Write(buf)
	return nil
}

// NulString is a NUL-terminated string, capped at Max bytes not counting
// the terminator. Variable size: the terminator is part of the wire form
// but not of the decoded value.
type NulString struct{ Max int }

func (NulString) FixedSize() (int, bool) { return 0, false }
func (NulString) WantsNullBit() bool     { return false }
func (NulString) IsPresent(string) bool  { return true }

func (n NulString) Decode(target *string, r *Reader, _ bool) error {
	var buf []byte
	for {
		b, err := r.Byte()
		if err != nil {
			return err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
		if len(buf) > n.Max {
			return fmt.Errorf("%w: %d > %d", ErrTooLong, len(buf), n.Max)
		}
	}
	if !utf8.Valid(buf) {
		return ErrInvalidUTF8
	}
	*target = string(buf)
	return nil
}

func (n NulString) Encode(v string, w *Writer) error {
	if len(v) > n.Max {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, len(v), n.Max)
	}
	if strings.IndexByte(v, 0) >= 0 {
		return ErrInteriorNUL
	}
	w.Write([]byte(v))
	w.WriteByte(0)
	return nil
}

// VarString is a varu32-length-prefixed UTF-8 string, capped at Max bytes.
type VarString struct{ Max uint32 }

func (VarString) FixedSize() (int, bool) { return 0, false }
func (VarString) WantsNullBit() bool     { return false }
func (VarString) IsPresent(string) bool  { return true }

func (v VarString) Decode(target *string, r *Reader, _ bool) error {
	var n uint32
	if err := Varu32.Decode(&n, r, false); err != nil {
		return err
	}
	if n > v.Max {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, n, v.Max)
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return err
	}
	if !utf8.Valid(b) {
		return ErrInvalidUTF8
	}
	*target = string(b)
	return nil
}

func (v VarString) Encode(s string, w *Writer) error {
	if uint32(len(s)) > v.Max {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, len(s), v.Max)
	}
	if err := Varu32.Encode(uint32(len(s)), w); err != nil {
		return err
	}
	w.Write([]byte(s))
	return nil
}

// VarBytes is a varu32-length-prefixed raw byte blob, capped at Max bytes.
type VarBytes struct{ Max uint32 }

func (VarBytes) FixedSize() (int, bool) { return 0, false }
func (VarBytes) WantsNullBit() bool     { return false }
func (VarBytes) IsPresent([]byte) bool  { return true }

func (v VarBytes) Decode(target *[]byte, r *Reader, _ bool) error {
	var n uint32
	if err := Varu32.Decode(&n, r, false); err != nil {
		return err
	}
	if n > v.Max {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, n, v.Max)
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return err
	}
	out := make([]byte, len(b))
	copy(out, b)
	*target = out
	return nil
}

func (v VarBytes) Encode(b []byte, w *Writer) error {
	if uint32(len(b)) > v.Max {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, len(b), v.Max)
	}
	if err := Varu32.Encode(uint32(len(b)), w); err != nil {
		return err
	}
	w.Write(b)
	return nil
}

// FixedArray repeats Inner exactly N times with no length prefix. It is
// fixed-size only when Inner itself is fixed-size.
type FixedArray[T any] struct {
	N     int
	Inner Codec[T]
}

func (f FixedArray[T]) FixedSize() (int, bool) {
	sz, ok := f.Inner.FixedSize()
	if !ok {
		return 0, false
	}
	return f.N * sz, true
}
func (FixedArray[T]) WantsNullBit() bool { return false }
func (FixedArray[T]) IsPresent([]T) bool { return true }

func (f FixedArray[T]) Decode(target *[]T, r *Reader, _ bool) error {
	out := make([]T, f.N)
	for i := range out {
		if err := f.Inner.Decode(&out[i], r, false); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	*target = out
	return nil
}

func (f FixedArray[T]) Encode(v []T, w *Writer) error {
	if len(v) != f.N {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(v), f.N)
	}
	for i, item := range v {
		if err := f.Inner.Encode(item, w); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return nil
}

// VarArray is a varu32-length-prefixed ordered sequence of Inner, capped at
// Max elements.
type VarArray[T any] struct {
	Max   uint32
	Inner Codec[T]
}

func (VarArray[T]) FixedSize() (int, bool) { return 0, false }
func (VarArray[T]) WantsNullBit() bool     { return false }
func (VarArray[T]) IsPresent([]T) bool     { return true }

func (v VarArray[T]) Decode(target *[]T, r *Reader, _ bool) error {
	var n uint32
	if err := Varu32.Decode(&n, r, false); err != nil {
		return err
	}
	if n > v.Max {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, n, v.Max)
	}
	out := make([]T, n)
	for i := range out {
		if err := v.Inner.Decode(&out[i], r, false); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	*target = out
	return nil
}

func (v VarArray[T]) Encode(items []T, w *Writer) error {
	if uint32(len(items)) > v.Max {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, len(items), v.Max)
	}
	if err := Varu32.Encode(uint32(len(items)), w); err != nil {
		return err
	}
	for i, item := range items {
		if err := v.Inner.Encode(item, w); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return nil
}

// DictEntry is one (key, value) pair of a VarDict. A slice of DictEntry
// preserves wire encounter order, which plain Go maps cannot guarantee.
type DictEntry[K any, V any] struct {
	Key   K
	Value V
}

// VarDict is a varu32-length-prefixed ordered sequence of (K,V) pairs,
// capped at Max entries. Duplicate keys are accepted on decode (last-wins
// is left to the consumer that indexes the slice) and rejected on encode.
type VarDict[K comparable, V any] struct {
	Max        uint32
	KeyCodec   Codec[K]
	ValueCodec Codec[V]
}

func (VarDict[K, V]) FixedSize() (int, bool)           { return 0, false }
func (VarDict[K, V]) WantsNullBit() bool               { return false }
func (VarDict[K, V]) IsPresent([]DictEntry[K, V]) bool { return true }

func (d VarDict[K, V]) Decode(target *[]DictEntry[K, V], r *Reader, _ bool) error {
	var n uint32
	if err := Varu32.Decode(&n, r, false); err != nil {
		return err
	}
	if n > d.Max {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, n, d.Max)
	}
	out := make([]DictEntry[K, V], n)
	for i := range out {
		if err := d.KeyCodec.Decode(&out[i].Key, r, false); err != nil {
			return fmt.Errorf("key[%d]: %w", i, err)
		}
		if err := d.ValueCodec.Decode(&out[i].Value, r, false); err != nil {
			return fmt.Errorf("value[%d]: %w", i, err)
		}
	}
	*target = out
	return nil
}

func (d VarDict[K, V]) Encode(entries []DictEntry[K, V], w *Writer) error {
	if uint32(len(entries)) > d.Max {
		return fmt.Errorf("%w: %d > %d", ErrTooLong, len(entries), d.Max)
	}
	if err := Varu32.Encode(uint32(len(entries)), w); err != nil {
		return err
	}
	seen := make(map[K]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Key]; dup {
			return ErrDuplicateKey
		}
		seen[e.Key] = struct{}{}
		if err := d.KeyCodec.Encode(e.Key, w); err != nil {
			return err
		}
		if err := d.ValueCodec.Encode(e.Value, w); err != nil {
			return err
		}
	}
	return nil
}
