package codec

import (
	"encoding/binary"
	"fmt"
)

// fieldEntry is one child codec's precomputed layout role within a Struct.
type fieldEntry[S any] struct {
	codec     Codec[S]
	wantsNull bool
	fixedSize int
	isFixed   bool
}

// Struct is the record-layout codec: a null-bit prefix, then every FIXED
// field in declaration order, then (for two or more VARIABLE fields) a
// table of signed 32-bit little-endian relative offsets followed by the
// variable payloads back-to-back. With exactly one VARIABLE field the
// offset table is omitted and the field is written directly after the
// fixed section. This layout must stay bit-exact with the peer.
type Struct[S any] struct {
	entries       []fieldEntry[S]
	nullByteCount int
	nullBitOf     []int // per-entry null-bit index, or -1 if none
	fixedIdx      []int
	varIdx        []int
	selfFixedSize int
	selfIsFixed   bool
}

// NewStruct builds a record codec from its field codecs in declaration
// order. Each child should normally be built with Field so decode/encode
// errors carry a field name.
func NewStruct[S any](children ...Codec[S]) *Struct[S] {
	s := &Struct[S]{}
	nullBits := 0
	for _, c := range children {
		sz, fixed := c.FixedSize()
		e := fieldEntry[S]{codec: c, fixedSize: sz, isFixed: fixed}
		if c.WantsNullBit() {
			e.wantsNull = true
			s.nullBitOf = append(s.nullBitOf, nullBits)
			nullBits++
		} else {
			s.nullBitOf = append(s.nullBitOf, -1)
		}
		s.entries = append(s.entries, e)
	}
	s.nullByteCount = (nullBits + 7) / 8

	allFixed := true
	total := s.nullByteCount
	for i, e := range s.entries {
		if e.isFixed {
			s.fixedIdx = append(s.fixedIdx, i)
			total += e.fixedSize
		} else {
			s.varIdx = append(s.varIdx, i)
			allFixed = false
		}
	}
	if allFixed {
		s.selfIsFixed = true
		s.selfFixedSize = total
	}
	return s
}

func (s *Struct[S]) FixedSize() (int, bool) { return s.selfFixedSize, s.selfIsFixed }
func (s *Struct[S]) WantsNullBit() bool     { return false }
func (s *Struct[S]) IsPresent(S) bool       { return true }

// Encode writes v's wire representation to w following the record layout
// described on Struct.
func (s *Struct[S]) Encode(v S, w *Writer) error {
	nullBytes := make([]byte, s.nullByteCount)
	for i, e := range s.entries {
		if e.wantsNull && e.codec.IsPresent(v) {
			bit := s.nullBitOf[i]
			nullBytes[bit/8] |= 1 << uint(bit%8)
		}
	}
	w.Write(nullBytes)

	for _, idx := range s.fixedIdx {
		if err := s.entries[idx].codec.Encode(v, w); err != nil {
			return err
		}
	}

	switch len(s.varIdx) {
	case 0:
		return nil
	case 1:
		return s.entries[s.varIdx[0]].codec.Encode(v, w)
	default:
		tablePos := w.Reserve(4 * len(s.varIdx))
		dataStart := w.Len()
		for slot, idx := range s.varIdx {
			e := s.entries[idx]
			if e.wantsNull && !e.codec.IsPresent(v) {
				w.PutI32At(tablePos+4*slot, -1)
				continue
			}
			offset := w.Len() - dataStart
			w.PutI32At(tablePos+4*slot, int32(offset))
			if err := e.codec.Encode(v, w); err != nil {
				return err
			}
		}
		return nil
	}
}

// Decode reads a record from the front of r into target following the
// record layout described on Struct. Out-of-range variable-field offsets
// are fatal (ErrBadOffset).
func (s *Struct[S]) Decode(target *S, r *Reader, _ bool) error {
	nullBytes, err := r.Bytes(s.nullByteCount)
	if err != nil {
		return err
	}
	nullBitSet := func(bit int) bool {
		return nullBytes[bit/8]&(1<<uint(bit%8)) != 0
	}

	for _, idx := range s.fixedIdx {
		e := s.entries[idx]
		var bit bool
		if e.wantsNull {
			bit = nullBitSet(s.nullBitOf[idx])
		}
		if err := e.codec.Decode(target, r, bit); err != nil {
			return err
		}
	}

	switch len(s.varIdx) {
	case 0:
		return nil
	case 1:
		idx := s.varIdx[0]
		e := s.entries[idx]
		var bit bool
		if e.wantsNull {
			bit = nullBitSet(s.nullBitOf[idx])
		}
		return e.codec.Decode(target, r, bit)
	default:
		offsets := make([]int32, len(s.varIdx))
		for i := range offsets {
			b, err := r.Bytes(4)
			if err != nil {
				return err
			}
			offsets[i] = int32(binary.LittleEndian.Uint32(b))
		}
		dataStart := r.Pos()
		maxEnd := dataStart
		for slot, idx := range s.varIdx {
			e := s.entries[idx]
			off := offsets[slot]
			if e.wantsNull && off == -1 {
				continue
			}
			if off < 0 || dataStart+int(off) > r.Len() {
				return fmt.Errorf("%w: field offset %d out of range", ErrBadOffset, off)
			}
			sub, err := r.Sub(dataStart + int(off))
			if err != nil {
				return err
			}
			if err := e.codec.Decode(target, sub, true); err != nil {
				return err
			}
			if sub.Pos() > maxEnd {
				maxEnd = sub.Pos()
			}
		}
		return r.SeekTo(maxEnd)
	}
}
