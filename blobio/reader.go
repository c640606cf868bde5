package blobio

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
)

// Reader decodes a metadata blob front to back.
//
// Reader never allocates for fixed-width reads and tracks its position so
// callers can report the offset of a malformed field. The zero Reader is
// empty; use NewReader.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data. The Reader aliases data; callers must
// not modify it while the Reader is in use.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current offset from the start of the blob.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Bytes consumes and returns the next n bytes. The returned slice aliases the
// underlying blob.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, ErrUnexpectedEOF
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	if r.Remaining() < 1 {
		return 0, ErrUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// Uint16 reads a little-endian 16-bit value.
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads a little-endian 32-bit value.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64 reads a little-endian 64-bit value.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Int8 reads one byte as a signed value.
func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

// Int16 reads a little-endian signed 16-bit value.
func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

// Int32 reads a little-endian signed 32-bit value.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Int64 reads a little-endian signed 64-bit value.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// Float32 reads a little-endian IEEE 754 single.
func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	return math.Float32frombits(v), err
}

// Float64 reads a little-endian IEEE 754 double.
func (r *Reader) Float64() (float64, error) {
	v, err := r.Uint64()
	return math.Float64frombits(v), err
}

// CompressedUint reads a 1-, 2-, or 4-byte compressed unsigned integer.
//
// The top bits of the first byte select the width: 0xxxxxxx is one byte,
// 10xxxxxx two, 110xxxxx four. A first byte with the 111 prefix has no valid
// interpretation and returns ErrBadCompressed.
func (r *Reader) CompressedUint() (uint32, error) {
	b0, err := r.Uint8()
	if err != nil {
		return 0, err
	}
	switch {
	case b0&0x80 == 0:
		return uint32(b0), nil
	case b0&0xC0 == 0x80:
		b1, err := r.Uint8()
		if err != nil {
			return 0, err
		}
		return uint32(b0&0x3F)<<8 | uint32(b1), nil
	case b0&0xE0 == 0xC0:
		rest, err := r.Bytes(3)
		if err != nil {
			return 0, err
		}
		return uint32(b0&0x1F)<<24 | uint32(rest[0])<<16 | uint32(rest[1])<<8 | uint32(rest[2]), nil
	default:
		return 0, ErrBadCompressed
	}
}

// CompressedInt reads a compressed signed integer.
//
// The encoding rotates the sign into the low bit of the unsigned form, so the
// width prefix rules match CompressedUint. The value range depends on the
// width: 7, 14, or 29 total bits including sign.
func (r *Reader) CompressedInt() (int32, error) {
	start := r.pos
	u, err := r.CompressedUint()
	if err != nil {
		return 0, err
	}
	width := r.pos - start
	if u&1 == 0 {
		return int32(u >> 1), nil
	}
	switch width {
	case 1:
		return int32(u>>1) - 0x40, nil
	case 2:
		return int32(u>>1) - 0x2000, nil
	default:
		return int32(u>>1) - 0x10000000, nil
	}
}

// UTF8 consumes n bytes and returns them as a string.
func (r *Reader) UTF8(n int) (string, error) {
	b, err := r.Bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UTF16 consumes n bytes of little-endian UTF-16 code units and returns the
// decoded string. n must be even.
func (r *Reader) UTF16(n int) (string, error) {
	if n%2 != 0 {
		return "", ErrBadCompressed
	}
	b, err := r.Bytes(n)
	if err != nil {
		return "", err
	}
	units := make([]uint16, n/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return string(utf16.Decode(units)), nil
}

// SerString reads a length-prefixed UTF-8 string.
//
// The prefix is a compressed unsigned length; the single byte 0xFF is the
// distinguished "null string" sentinel, reported as isNull = true.
func (r *Reader) SerString() (s string, isNull bool, err error) {
	if r.Remaining() >= 1 && r.data[r.pos] == 0xFF {
		r.pos++
		return "", true, nil
	}
	n, err := r.CompressedUint()
	if err != nil {
		return "", false, err
	}
	if uint32(r.Remaining()) < n {
		return "", false, ErrUnexpectedEOF
	}
	s, err = r.UTF8(int(n))
	return s, false, err
}
