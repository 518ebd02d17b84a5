package codec_test

import (
	"testing"

	"github.com/hytale-oss/gameserver/internal/codec"
)

// recA has one fixed-null optional (1 null bit -> 1 null byte) and two
// plain fixed fields, exercising the "fixed-null skip" property.
type recA struct {
	Flag  *uint32
	X     uint8
	Y     uint16
}

var recACodec = codec.NewStruct[recA](
	codec.Field[recA, *uint32](codec.FixedNullable[uint32]{Inner: codec.U32}, "flag",
		func(v *recA) *uint32 { return v.Flag },
		func(v *recA, f *uint32) { v.Flag = f }),
	codec.Field[recA, uint8](codec.U8, "x",
		func(v *recA) uint8 { return v.X },
		func(v *recA, f uint8) { v.X = f }),
	codec.Field[recA, uint16](codec.U16, "y",
		func(v *recA) uint16 { return v.Y },
		func(v *recA, f uint16) { v.Y = f }),
)

func TestNullByteBudget(t *testing.T) {
	t.Parallel()

	v := recA{Flag: nil, X: 1, Y: 2}
	w := codec.NewWriter()
	if err := recACodec.Encode(v, w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	// 1 null bit -> ceil(1/8) = 1 null byte, then 4 (u32) + 1 (u8) + 2 (u16).
	if got, want := w.Len(), 1+4+1+2; got != want {
		t.Fatalf("encoded length = %d, want %d", got, want)
	}
}

// TestFixedNullSkip checks that the absent and present forms of a
// fixed-null field differ only in the null bit, not in size.
func TestFixedNullSkip(t *testing.T) {
	t.Parallel()

	absent := recA{Flag: nil, X: 9, Y: 99}
	flagVal := uint32(0xCAFEBABE)
	present := recA{Flag: &flagVal, X: 9, Y: 99}

	wAbsent := codec.NewWriter()
	if err := recACodec.Encode(absent, wAbsent); err != nil {
		t.Fatal(err)
	}
	wPresent := codec.NewWriter()
	if err := recACodec.Encode(present, wPresent); err != nil {
		t.Fatal(err)
	}
	if wAbsent.Len() != wPresent.Len() {
		t.Fatalf("absent len %d != present len %d", wAbsent.Len(), wPresent.Len())
	}
	// Null byte clear, then 4 zero bytes for the fixed-null slot.
	want := append([]byte{0x00}, make([]byte, 4)...)
	want = append(want, 9, 99, 0)
	if !bytesEqual(wAbsent.Bytes(), want) {
		t.Fatalf("absent encoding = % x, want % x", wAbsent.Bytes(), want)
	}

	var decoded recA
	r := codec.NewReader(wAbsent.Bytes())
	if err := recACodec.Decode(&decoded, r, false); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Flag != nil {
		t.Fatalf("decoded.Flag = %v, want nil", decoded.Flag)
	}
	if decoded.X != 9 || decoded.Y != 99 {
		t.Fatalf("decoded = %+v", decoded)
	}

	var decodedPresent recA
	r2 := codec.NewReader(wPresent.Bytes())
	if err := recACodec.Decode(&decodedPresent, r2, false); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decodedPresent.Flag == nil || *decodedPresent.Flag != flagVal {
		t.Fatalf("decoded.Flag = %v, want %d", decodedPresent.Flag, flagVal)
	}
}

// recB has two variable-length fields, exercising the offset table and
// its monotonicity property, and the -1 absent sentinel.
type recB struct {
	A *string
	B *string
}

var recBCodec = codec.NewStruct[recB](
	codec.Field[recB, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 64}}, "a",
		func(v *recB) *string { return v.A },
		func(v *recB, f *string) { v.A = f }),
	codec.Field[recB, *string](codec.VariableNullable[string]{Inner: codec.VarString{Max: 64}}, "b",
		func(v *recB) *string { return v.B },
		func(v *recB, f *string) { v.B = f }),
)

func TestOffsetTableMonotonicityAndRoundTrip(t *testing.T) {
	t.Parallel()

	a, b := "hello", "world!"
	v := recB{A: &a, B: &b}
	w := codec.NewWriter()
	if err := recBCodec.Encode(v, w); err != nil {
		t.Fatalf("encode: %v", err)
	}

	// null byte (1), then the two offset slots at bytes 1..4 and 5..8.
	raw := w.Bytes()
	offsetAt := func(pos int) int32 {
		return int32(raw[pos]) | int32(raw[pos+1])<<8 | int32(raw[pos+2])<<16 | int32(raw[pos+3])<<24
	}
	if offA, offB := offsetAt(1), offsetAt(5); offA < 0 || offB < offA {
		t.Fatalf("offsets = %d, %d, want non-decreasing and non-negative", offA, offB)
	}

	var decoded recB
	r := codec.NewReader(w.Bytes())
	if err := recBCodec.Decode(&decoded, r, false); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Remaining() != 0 {
		t.Errorf("decode left %d unread bytes, want 0", r.Remaining())
	}
	if decoded.A == nil || *decoded.A != a {
		t.Fatalf("decoded.A = %v, want %q", decoded.A, a)
	}
	if decoded.B == nil || *decoded.B != b {
		t.Fatalf("decoded.B = %v, want %q", decoded.B, b)
	}
}

func TestOffsetTableAbsentFieldSentinel(t *testing.T) {
	t.Parallel()

	b := "only-b"
	v := recB{A: nil, B: &b}
	w := codec.NewWriter()
	if err := recBCodec.Encode(v, w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	// null byte (1) + offset table (2*4=8 bytes); first slot must be -1.
	tableStart := 1
	raw := w.Bytes()
	firstOffset := int32(raw[tableStart]) | int32(raw[tableStart+1])<<8 | int32(raw[tableStart+2])<<16 | int32(raw[tableStart+3])<<24
	if firstOffset != -1 {
		t.Fatalf("first offset = %d, want -1 (absent sentinel)", firstOffset)
	}

	var decoded recB
	if err := recBCodec.Decode(&decoded, codec.NewReader(raw), false); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.A != nil {
		t.Fatalf("decoded.A = %v, want nil", decoded.A)
	}
	if decoded.B == nil || *decoded.B != b {
		t.Fatalf("decoded.B = %v, want %q", decoded.B, b)
	}
}

// recSingleVar has exactly one variable field: the offset table must be
// elided entirely, matching spec.md §8 scenario 5 (WorldSettings).
type recSingleVar struct {
	Height uint32
	Items  *[]uint8
}

var recSingleVarCodec = codec.NewStruct[recSingleVar](
	codec.Field[recSingleVar, uint32](codec.U32, "height",
		func(v *recSingleVar) uint32 { return v.Height },
		func(v *recSingleVar, f uint32) { v.Height = f }),
	codec.Field[recSingleVar, *[]uint8](codec.VariableNullable[[]uint8]{Inner: codec.VarArray[uint8]{Max: 100, Inner: codec.U8}}, "items",
		func(v *recSingleVar) *[]uint8 { return v.Items },
		func(v *recSingleVar, f *[]uint8) { v.Items = f }),
)

func TestSingleVariableFieldElidesOffsetTable(t *testing.T) {
	t.Parallel()

	empty := []uint8{}
	v := recSingleVar{Height: 0, Items: &empty}
	w := codec.NewWriter()
	if err := recSingleVarCodec.Encode(v, w); err != nil {
		t.Fatalf("encode: %v", err)
	}
	// null byte (1) + u32 height (4) + varu32 length 0 (1) = 6, per
	// spec.md §8 scenario 5.
	want := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytesEqual(w.Bytes(), want) {
		t.Fatalf("encode = % x, want % x", w.Bytes(), want)
	}
}

// recNoNull has no optional fields at all: zero null bytes.
type recNoNull struct {
	A uint8
	B uint8
}

var recNoNullCodec = codec.NewStruct[recNoNull](
	codec.Field[recNoNull, uint8](codec.U8, "a",
		func(v *recNoNull) uint8 { return v.A },
		func(v *recNoNull, f uint8) { v.A = f }),
	codec.Field[recNoNull, uint8](codec.U8, "b",
		func(v *recNoNull) uint8 { return v.B },
		func(v *recNoNull, f uint8) { v.B = f }),
)

func TestNoNullFieldsZeroNullBytes(t *testing.T) {
	t.Parallel()

	w := codec.NewWriter()
	if err := recNoNullCodec.Encode(recNoNull{A: 7, B: 8}, w); err != nil {
		t.Fatal(err)
	}
	if got, want := w.Bytes(), []byte{7, 8}; !bytesEqual(got, want) {
		t.Fatalf("encode = % x, want % x", got, want)
	}
}

func TestRecordFixedSizeComputation(t *testing.T) {
	t.Parallel()

	sz, ok := recNoNullCodec.FixedSize()
	if !ok || sz != 2 {
		t.Fatalf("FixedSize() = %d, %v, want 2, true", sz, ok)
	}
	_, ok = recBCodec.FixedSize()
	if ok {
		t.Fatalf("recB has variable fields, FixedSize() should report absent")
	}
}

func TestOutOfRangeOffsetIsFatal(t *testing.T) {
	t.Parallel()

	// Hand-build a buffer whose offset table points past the buffer end.
	w := codec.NewWriter()
	w.WriteByte(0x03) // both null bits set
	tablePos := w.Reserve(8)
	w.PutI32At(tablePos, 9999) // wildly out of range
	w.PutI32At(tablePos+4, 0)
	w.Write([]byte("x"))

	var decoded recB
	err := recBCodec.Decode(&decoded, codec.NewReader(w.Bytes()), false)
	if err == nil {
		t.Fatal("expected a fatal decode error for an out-of-range offset")
	}
}
