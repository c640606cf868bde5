// Package blobio implements the cursor used to read and write metadata blobs.
//
// A blob is a self-describing byte run: fixed-width little-endian integers,
// UTF-8 and UTF-16 character runs, and the variable-length "compressed"
// integer encoding used throughout metadata signatures. Reader provides
// forward-only, position-tracked decoding over a byte range; Writer mirrors
// every read operation and always emits the shortest valid compressed
// encoding.
//
// Reads past the end of the range return ErrUnexpectedEOF rather than
// garbage, and compressed encodings whose length prefix is inconsistent with
// their payload return ErrBadCompressed. Both conditions are routine on
// damaged images; callers higher in the stack translate them into decode
// diagnostics instead of aborting.
package blobio

import "errors"

// Sentinel errors for cursor operations.
var (
	// ErrUnexpectedEOF is returned when a read runs past the end of the blob.
	ErrUnexpectedEOF = errors.New("blobio: unexpected end of blob")

	// ErrBadCompressed is returned when a compressed integer's prefix bits are
	// internally inconsistent or the value does not fit the encoding.
	ErrBadCompressed = errors.New("blobio: malformed compressed integer")
)

// Compressed unsigned integers span at most 29 value bits.
const (
	// MaxCompressedUint is the largest value representable by the 4-byte
	// compressed unsigned encoding.
	MaxCompressedUint = 0x1FFFFFFF

	// MaxCompressedInt and MinCompressedInt bound the 4-byte compressed
	// signed encoding.
	MaxCompressedInt = 0x0FFFFFFF
	MinCompressedInt = -0x10000000
)
