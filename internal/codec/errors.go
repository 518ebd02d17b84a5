// Package codec implements the composable binary wire-format coders used to
// serialize packet values. Layout rules (null-bit prefix, fixed section,
// variable offset table) must stay bit-exact with the peer client; see the
// record codec in struct.go for the authoritative algorithm.
package codec

import "errors"

// Sentinel errors returned by individual coders. Wrapped with field-path
// context by the struct codec and by packet-level callers.
var (
	ErrTruncated     = errors.New("codec: truncated buffer")
	ErrBadBool       = errors.New("codec: invalid bool byte")
	ErrBadEnum       = errors.New("codec: enum ordinal out of range")
	ErrBadOffset     = errors.New("codec: variable field offset out of range")
	ErrTooLong       = errors.New("codec: length exceeds declared maximum")
	ErrInteriorNUL   = errors.New("codec: interior NUL in fixed-length string")
	ErrInvalidUTF8   = errors.New("codec: invalid UTF-8")
	ErrDuplicateKey  = errors.New("codec: duplicate dictionary key on encode")
	ErrVarintTooLong = errors.New("codec: varint exceeds 5 bytes")
	ErrLengthMismatch = errors.New("codec: fixed-size value has the wrong length")
)
