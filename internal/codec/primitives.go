package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// boolCodec stores strictly 0 or 1; any other byte is a decode error.
type boolCodec struct{}

// Bool is the shared Bool coder.
var Bool Codec[bool] = boolCodec{}

func (boolCodec) FixedSize() (int, bool) { return 1, true }
func (boolCodec) WantsNullBit() bool     { return false }
func (boolCodec) IsPresent(bool) bool    { return true }

func (boolCodec) Decode(target *bool, r *Reader, _ bool) error {
	b, err := r.Byte()
	if err != nil {
		return err
	}
	switch b {
	case 0:
		*target = false
	case 1:
		*target = true
	default:
		return fmt.Errorf("%w: %d", ErrBadBool, b)
	}
	return nil
}

func (boolCodec) Encode(v bool, w *Writer) error {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
	return nil
}

type u8Codec struct{}

// U8 is the shared unsigned-byte coder.
var U8 Codec[uint8] = u8Codec{}

func (u8Codec) FixedSize() (int, bool)        { return 1, true }
func (u8Codec) WantsNullBit() bool            { return false }
func (u8Codec) IsPresent(uint8) bool          { return true }
func (u8Codec) Decode(t *uint8, r *Reader, _ bool) error {
	b, err := r.Byte()
	if err != nil {
		return err
	}
	*t = b
	return nil
}
func (u8Codec) Encode(v uint8, w *Writer) error { w.WriteByte(v); return nil }

type i8Codec struct{}

// I8 is the shared signed-byte coder.
var I8 Codec[int8] = i8Codec{}

func (i8Codec) FixedSize() (int, bool) { return 1, true }
func (i8Codec) WantsNullBit() bool     { return false }
func (i8Codec) IsPresent(int8) bool    { return true }
func (i8Codec) Decode(t *int8, r *Reader, _ bool) error {
	b, err := r.Byte()
	if err != nil {
		return err
	}
	*t = int8(b)
	return nil
}
func (i8Codec) Encode(v int8, w *Writer) error { w.WriteByte(byte(v)); return nil }

type u16Codec struct{}

// U16 is the shared little-endian uint16 coder.
var U16 Codec[uint16] = u16Codec{}

func (u16Codec) FixedSize() (int, bool) { return 2, true }
func (u16Codec) WantsNullBit() bool     { return false }
func (u16Codec) IsPresent(uint16) bool  { return true }
func (u16Codec) Decode(t *uint16, r *Reader, _ bool) error {
	b, err := r.Bytes(2)
	if err != nil {
		return err
	}
	*t = binary.LittleEndian.Uint16(b)
	return nil
}
func (u16Codec) Encode(v uint16, w *Writer) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.Write(b[:])
	return nil
}

type i16Codec struct{}

// I16 is the shared little-endian int16 coder.
var I16 Codec[int16] = i16Codec{}

func (i16Codec) FixedSize() (int, bool) { return 2, true }
func (i16Codec) WantsNullBit() bool     { return false }
func (i16Codec) IsPresent(int16) bool   { return true }
func (i16Codec) Decode(t *int16, r *Reader, _ bool) error {
	b, err := r.Bytes(2)
	if err != nil {
		return err
	}
	*t = int16(binary.LittleEndian.Uint16(b))
	return nil
}
func (i16Codec) Encode(v int16, w *Writer) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	w.Write(b[:])
	return nil
}

type u32Codec struct{}

// U32 is the shared little-endian uint32 coder.
var U32 Codec[uint32] = u32Codec{}

func (u32Codec) FixedSize() (int, bool) { return 4, true }
func (u32Codec) WantsNullBit() bool     { return false }
func (u32Codec) IsPresent(uint32) bool  { return true }
func (u32Codec) Decode(t *uint32, r *Reader, _ bool) error {
	b, err := r.Bytes(4)
	if err != nil {
		return err
	}
	*t = binary.LittleEndian.Uint32(b)
	return nil
}
func (u32Codec) Encode(v uint32, w *Writer) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
	return nil
}

type i32Codec struct{}

// I32 is the shared little-endian int32 coder.
var I32 Codec[int32] = i32Codec{}

func (i32Codec) FixedSize() (int, bool) { return 4, true }
func (i32Codec) WantsNullBit() bool     { return false }
func (i32Codec) IsPresent(int32) bool   { return true }
func (i32Codec) Decode(t *int32, r *Reader, _ bool) error {
	b, err := r.Bytes(4)
	if err != nil {
		return err
	}
	*t = int32(binary.LittleEndian.Uint32(b))
	return nil
}
func (i32Codec) Encode(v int32, w *Writer) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.Write(b[:])
	return nil
}

type u64Codec struct{}

// U64 is the shared little-endian uint64 coder.
var U64 Codec[uint64] = u64Codec{}

func (u64Codec) FixedSize() (int, bool) { return 8, true }
func (u64Codec) WantsNullBit() bool     { return false }
func (u64Codec) IsPresent(uint64) bool  { return true }
func (u64Codec) Decode(t *uint64, r *Reader, _ bool) error {
	b, err := r.Bytes(8)
	if err != nil {
		return err
	}
	*t = binary.LittleEndian.Uint64(b)
	return nil
}
func (u64Codec) Encode(v uint64, w *Writer) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.Write(b[:])
	return nil
}

type i64Codec struct{}

// I64 is the shared little-endian int64 coder.
var I64 Codec[int64] = i64Codec{}

func (i64Codec) FixedSize() (int, bool) { return 8, true }
func (i64Codec) WantsNullBit() bool     { return false }
func (i64Codec) IsPresent(int64) bool   { return true }
func (i64Codec) Decode(t *int64, r *Reader, _ bool) error {
	b, err := r.Bytes(8)
	if err != nil {
		return err
	}
	*t = int64(binary.LittleEndian.Uint64(b))
	return nil
}
func (i64Codec) Encode(v int64, w *Writer) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.Write(b[:])
	return nil
}

type f32Codec struct{}

// F32 is the shared little-endian IEEE-754 float32 coder.
var F32 Codec[float32] = f32Codec{}

func (f32Codec) FixedSize() (int, bool) { return 4, true }
func (f32Codec) WantsNullBit() bool     { return false }
func (f32Codec) IsPresent(float32) bool { return true }
func (f32Codec) Decode(t *float32, r *Reader, _ bool) error {
	b, err := r.Bytes(4)
	if err != nil {
		return err
	}
	*t = math.Float32frombits(binary.LittleEndian.Uint32(b))
	return nil
}
func (f32Codec) Encode(v float32, w *Writer) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.Write(b[:])
	return nil
}

type f64Codec struct{}

// F64 is the shared little-endian IEEE-754 float64 coder.
var F64 Codec[float64] = f64Codec{}

func (f64Codec) FixedSize() (int, bool) { return 8, true }
func (f64Codec) WantsNullBit() bool     { return false }
func (f64Codec) IsPresent(float64) bool { return true }
func (f64Codec) Decode(t *float64, r *Reader, _ bool) error {
	b, err := r.Bytes(8)
	if err != nil {
		return err
	}
	*t = math.Float64frombits(binary.LittleEndian.Uint64(b))
	return nil
}
func (f64Codec) Encode(v float64, w *Writer) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.Write(b[:])
	return nil
}

// varu32Codec is LEB128, 7 bits per byte, MSB continuation, capped at 5
// bytes (enough for 32 bits of payload).
type varu32Codec struct{}

// Varu32 is the shared LEB128 unsigned-varint coder used for every length
// prefix in the container codecs.
var Varu32 Codec[uint32] = varu32Codec{}

func (varu32Codec) FixedSize() (int, bool) { return 0, false }
func (varu32Codec) WantsNullBit() bool     { return false }
func (varu32Codec) IsPresent(uint32) bool  { return true }

func (varu32Codec) Decode(target *uint32, r *Reader, _ bool) error {
	var result uint32
	var shift uint
	for i := 0; i < 5; i++ {
		b, err := r.Byte()
		if err != nil {
			return err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			*target = result
			return nil
		}
		shift += 7
	}
	return ErrVarintTooLong
}

func (varu32Codec) Encode(v uint32, w *Writer) error {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			w.WriteByte(b | 0x80)
			continue
		}
		w.WriteByte(b)
		return nil
	}
}

// uuidCodec stores the two 64-bit halves little-endian, high half first,
// matching the peer's layout rather than RFC 4122's big-endian byte order.
type uuidCodec struct{}

// UUID is the shared UUID coder.
var UUID Codec[uuid.UUID] = uuidCodec{}

func (uuidCodec) FixedSize() (int, bool)  { return 16, true }
func (uuidCodec) WantsNullBit() bool      { return false }
func (uuidCodec) IsPresent(uuid.UUID) bool { return true }

func (uuidCodec) Decode(target *uuid.UUID, r *Reader, _ bool) error {
	b, err := r.Bytes(16)
	if err != nil {
		return err
	}
	high := binary.LittleEndian.Uint64(b[0:8])
	low := binary.LittleEndian.Uint64(b[8:16])
	var out uuid.UUID
	binary.BigEndian.PutUint64(out[0:8], high)
	binary.BigEndian.PutUint64(out[8:16], low)
	*target = out
	return nil
}

func (uuidCodec) Encode(v uuid.UUID, w *Writer) error {
	high := binary.BigEndian.Uint64(v[0:8])
	low := binary.BigEndian.Uint64(v[8:16])
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], high)
	binary.LittleEndian.PutUint64(b[8:16], low)
	w.Write(b[:])
	return nil
}
