package codec

import "encoding/binary"

// Reader is a cursor over a decode buffer. It never copies the backing
// array; Sub creates an independent cursor over the same bytes so the
// record codec can decode a variable field at an arbitrary offset without
// disturbing the outer cursor's position.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for decoding, starting at position 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current absolute cursor position.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total length of the backing buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Bytes consumes and returns the next n bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, ErrTruncated
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Byte consumes and returns the next single byte.
func (r *Reader) Byte() (byte, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) error {
	_, err := r.Bytes(n)
	return err
}

// SeekTo repositions the cursor to an absolute offset from the start of the
// backing buffer.
func (r *Reader) SeekTo(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return ErrTruncated
	}
	r.pos = pos
	return nil
}

// Sub returns a new cursor over the same backing buffer starting at the
// given absolute offset. Used to decode variable-length fields through the
// record codec's offset table.
func (r *Reader) Sub(from int) (*Reader, error) {
	if from < 0 || from > len(r.buf) {
		return nil, ErrTruncated
	}
	return &Reader{buf: r.buf, pos: from}, nil
}

// Writer is a growable encode sink. Unlike bytes.Buffer it exposes absolute
// positions so the record codec can reserve the variable-field offset table
// up front and patch it once every child's final position is known.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) { w.buf = append(w.buf, b) }

// Write appends p verbatim.
func (w *Writer) Write(p []byte) { w.buf = append(w.buf, p...) }

// WriteZeros appends n zero bytes.
func (w *Writer) WriteZeros(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// Reserve appends n zero bytes and returns the position where they start, to
// be patched later via PutU32At/PutI32At.
func (w *Writer) Reserve(n int) int {
	pos := len(w.buf)
	w.WriteZeros(n)
	return pos
}

// PutU32At overwrites 4 bytes at pos with v, little-endian.
func (w *Writer) PutU32At(pos int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[pos:pos+4], v)
}

// PutI32At overwrites 4 bytes at pos with the two's-complement encoding of
// v, little-endian.
func (w *Writer) PutI32At(pos int, v int32) {
	w.PutU32At(pos, uint32(v))
}
