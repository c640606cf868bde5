package blobio

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

// Writer builds a metadata blob.
//
// Writer is append-only and mirrors every Reader operation. Compressed
// integers always use the shortest valid encoding. The zero Writer is ready
// to use.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the blob built so far. The slice aliases the Writer's
// internal buffer and is invalidated by further writes.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// Uint8 appends one byte.
func (w *Writer) Uint8(v uint8) { w.buf = append(w.buf, v) }

// Uint16 appends a little-endian 16-bit value.
func (w *Writer) Uint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// Uint32 appends a little-endian 32-bit value.
func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// Uint64 appends a little-endian 64-bit value.
func (w *Writer) Uint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// Int8 appends one signed byte.
func (w *Writer) Int8(v int8) { w.Uint8(uint8(v)) }

// Int16 appends a little-endian signed 16-bit value.
func (w *Writer) Int16(v int16) { w.Uint16(uint16(v)) }

// Int32 appends a little-endian signed 32-bit value.
func (w *Writer) Int32(v int32) { w.Uint32(uint32(v)) }

// Int64 appends a little-endian signed 64-bit value.
func (w *Writer) Int64(v int64) { w.Uint64(uint64(v)) }

// Float32 appends a little-endian IEEE 754 single.
func (w *Writer) Float32(v float32) { w.Uint32(math.Float32bits(v)) }

// Float64 appends a little-endian IEEE 754 double.
func (w *Writer) Float64(v float64) { w.Uint64(math.Float64bits(v)) }

// CompressedUint appends v in the shortest compressed unsigned encoding.
// Values above MaxCompressedUint cannot be represented and return an error.
func (w *Writer) CompressedUint(v uint32) error {
	switch {
	case v < 0x80:
		w.Uint8(uint8(v))
	case v < 0x4000:
		w.Uint8(uint8(v>>8) | 0x80)
		w.Uint8(uint8(v))
	case v <= MaxCompressedUint:
		w.Uint8(uint8(v>>24) | 0xC0)
		w.Uint8(uint8(v >> 16))
		w.Uint8(uint8(v >> 8))
		w.Uint8(uint8(v))
	default:
		return fmt.Errorf("%w: %#x exceeds 29 bits", ErrBadCompressed, v)
	}
	return nil
}

// CompressedInt appends v in the shortest compressed signed encoding.
//
// The rotated unsigned form must be emitted at the width implied by the
// signed range, not the shortest width that happens to hold it: -0x2000
// rotates to 1 but still occupies two bytes.
func (w *Writer) CompressedInt(v int32) error {
	switch {
	case v >= -0x40 && v < 0x40:
		w.Uint8(uint8(uint32(v<<1)&0x7F | signBit(v)))
	case v >= -0x2000 && v < 0x2000:
		u := uint32(v<<1)&0x3FFF | signBit(v)
		w.Uint8(uint8(u>>8) | 0x80)
		w.Uint8(uint8(u))
	case v >= MinCompressedInt && v <= MaxCompressedInt:
		u := uint32(v<<1)&0x1FFFFFFF | signBit(v)
		w.Uint8(uint8(u>>24) | 0xC0)
		w.Uint8(uint8(u >> 16))
		w.Uint8(uint8(u >> 8))
		w.Uint8(uint8(u))
	default:
		return fmt.Errorf("%w: %d exceeds 29 bits", ErrBadCompressed, v)
	}
	return nil
}

func signBit(v int32) uint32 {
	if v < 0 {
		return 1
	}
	return 0
}

// UTF8 appends the bytes of s with no length prefix.
func (w *Writer) UTF8(s string) { w.buf = append(w.buf, s...) }

// UTF16 appends s as little-endian UTF-16 code units with no length prefix.
func (w *Writer) UTF16(s string) {
	for _, u := range utf16.Encode([]rune(s)) {
		w.Uint16(u)
	}
}

// SerString appends a length-prefixed UTF-8 string.
func (w *Writer) SerString(s string) error {
	if err := w.CompressedUint(uint32(len(s))); err != nil {
		return err
	}
	w.UTF8(s)
	return nil
}

// SerStringNull appends the distinguished null-string sentinel.
func (w *Writer) SerStringNull() { w.Uint8(0xFF) }
