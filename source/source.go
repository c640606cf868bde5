// Package source provides byte-range adapters for handing raw metadata to
// the decode entry points.
//
// The container layer owns section layout and offset translation; once it
// has located a metadata range, any of the adapters here can carry it:
// in-memory bytes, an io.ReaderAt of known size, or a zstd-framed stream as
// found in compressed single-file bundles.
package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// ErrTooLarge is returned when decompressed metadata exceeds the configured
// size limit.
var ErrTooLarge = errors.New("source: decompressed metadata exceeds size limit")

// DefaultMaxDecodedSize is the default cap on decompressed metadata (64MB).
// Metadata streams are small; anything near this limit is suspect.
const DefaultMaxDecodedSize = 64 << 20

// ByteRange provides random access to a raw metadata range.
type ByteRange interface {
	io.ReaderAt
	Size() int64
}

// Bytes returns an in-memory ByteRange over b. The range aliases b.
func Bytes(b []byte) ByteRange { return bytesRange(b) }

type bytesRange []byte

func (b bytesRange) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b bytesRange) Size() int64 { return int64(len(b)) }

// ReaderAt adapts an io.ReaderAt of known size.
func ReaderAt(r io.ReaderAt, size int64) ByteRange {
	return readerAtRange{r: r, size: size}
}

type readerAtRange struct {
	r    io.ReaderAt
	size int64
}

func (r readerAtRange) ReadAt(p []byte, off int64) (int, error) { return r.r.ReadAt(p, off) }
func (r readerAtRange) Size() int64                             { return r.size }

// ReadAll materializes a ByteRange into memory.
func ReadAll(br ByteRange) ([]byte, error) {
	buf := make([]byte, br.Size())
	n, err := br.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// Option configures Zstd.
type Option func(*config)

type config struct {
	maxDecodedSize uint64
}

// WithMaxDecodedSize caps the decompressed size. Set to 0 to disable the
// limit.
func WithMaxDecodedSize(limit uint64) Option {
	return func(c *config) {
		c.maxDecodedSize = limit
	}
}

// Zstd decompresses a zstd-framed metadata stream into an in-memory
// ByteRange. Streams larger than the configured limit return ErrTooLarge
// rather than exhausting memory on adversarial input.
func Zstd(r io.Reader, opts ...Option) (ByteRange, error) {
	cfg := config{maxDecodedSize: DefaultMaxDecodedSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	var decOpts []zstd.DOption
	if cfg.maxDecodedSize > 0 {
		decOpts = append(decOpts, zstd.WithDecoderMaxMemory(cfg.maxDecodedSize))
	}
	dec, err := zstd.NewReader(r, decOpts...)
	if err != nil {
		return nil, fmt.Errorf("source: open zstd stream: %w", err)
	}
	defer dec.Close()

	var data []byte
	if cfg.maxDecodedSize > 0 {
		data, err = io.ReadAll(io.LimitReader(dec, int64(cfg.maxDecodedSize)+1))
		if err == nil && uint64(len(data)) > cfg.maxDecodedSize {
			return nil, ErrTooLarge
		}
	} else {
		data, err = io.ReadAll(dec)
	}
	if err != nil {
		// The decoder enforces the same cap internally and may trip first.
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return nil, ErrTooLarge
		}
		return nil, fmt.Errorf("source: decompress metadata: %w", err)
	}
	return Bytes(data), nil
}
