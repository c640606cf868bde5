package blobio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressedUintBoundaries(t *testing.T) {
	t.Parallel()

	// Each boundary value must round-trip at its documented byte length.
	cases := []struct {
		value uint32
		width int
	}{
		{0, 1},
		{0x7F, 1},
		{0x80, 2},
		{0x3FFF, 2},
		{0x4000, 4},
		{MaxCompressedUint, 4},
	}
	for _, tc := range cases {
		w := NewWriter()
		require.NoError(t, w.CompressedUint(tc.value))
		assert.Equal(t, tc.width, w.Len(), "value %#x encoded length", tc.value)

		r := NewReader(w.Bytes())
		got, err := r.CompressedUint()
		require.NoError(t, err)
		assert.Equal(t, tc.value, got)
		assert.Equal(t, 0, r.Remaining(), "value %#x left trailing bytes", tc.value)
	}
}

func TestCompressedUintRejectsOversized(t *testing.T) {
	t.Parallel()
	w := NewWriter()
	assert.ErrorIs(t, w.CompressedUint(MaxCompressedUint+1), ErrBadCompressed)
}

func TestCompressedUintRejectsBadPrefix(t *testing.T) {
	t.Parallel()

	// 111xxxxx has no valid interpretation.
	r := NewReader([]byte{0xE0, 0x00, 0x00, 0x00})
	_, err := r.CompressedUint()
	assert.ErrorIs(t, err, ErrBadCompressed)
}

func TestCompressedUintTruncated(t *testing.T) {
	t.Parallel()

	t.Run("two byte form", func(t *testing.T) {
		t.Parallel()
		r := NewReader([]byte{0x80})
		_, err := r.CompressedUint()
		assert.ErrorIs(t, err, ErrUnexpectedEOF)
	})

	t.Run("four byte form", func(t *testing.T) {
		t.Parallel()
		r := NewReader([]byte{0xC0, 0x01})
		_, err := r.CompressedUint()
		assert.ErrorIs(t, err, ErrUnexpectedEOF)
	})
}

func TestCompressedIntRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value int32
		width int
	}{
		{0, 1},
		{3, 1},
		{-3, 1},
		{0x3F, 1},
		{-0x40, 1},
		{0x40, 2},
		{-0x41, 2},
		{0x1FFF, 2},
		{-0x2000, 2},
		{0x2000, 4},
		{-0x2001, 4},
		{MaxCompressedInt, 4},
		{MinCompressedInt, 4},
	}
	for _, tc := range cases {
		w := NewWriter()
		require.NoError(t, w.CompressedInt(tc.value))
		assert.Equal(t, tc.width, w.Len(), "value %d encoded length", tc.value)

		r := NewReader(w.Bytes())
		got, err := r.CompressedInt()
		require.NoError(t, err)
		assert.Equal(t, tc.value, got, "value %d", tc.value)
	}
}

func TestCompressedIntRejectsOversized(t *testing.T) {
	t.Parallel()
	w := NewWriter()
	assert.ErrorIs(t, w.CompressedInt(MaxCompressedInt+1), ErrBadCompressed)
	assert.ErrorIs(t, w.CompressedInt(MinCompressedInt-1), ErrBadCompressed)
}

func TestFixedWidthRoundTrip(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.Uint8(0xAB)
	w.Uint16(0xBEEF)
	w.Uint32(0xDEADBEEF)
	w.Uint64(0x0123456789ABCDEF)
	w.Int32(-42)
	w.Float64(3.5)

	r := NewReader(w.Bytes())
	u8, err := r.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)
	u16, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), u16)
	u32, err := r.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)
	u64, err := r.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0123456789ABCDEF), u64)
	i32, err := r.Int32()
	require.NoError(t, err)
	assert.Equal(t, int32(-42), i32)
	f64, err := r.Float64()
	require.NoError(t, err)
	assert.Equal(t, 3.5, f64)
	assert.Equal(t, 0, r.Remaining())
}

func TestReadPastEnd(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0x01})
	_, err := r.Uint32()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)

	// Position is unchanged after a failed read.
	v, err := r.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), v)
}

func TestSerString(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		w := NewWriter()
		require.NoError(t, w.SerString("My Message"))

		r := NewReader(w.Bytes())
		s, isNull, err := r.SerString()
		require.NoError(t, err)
		assert.False(t, isNull)
		assert.Equal(t, "My Message", s)
	})

	t.Run("null sentinel", func(t *testing.T) {
		t.Parallel()
		w := NewWriter()
		w.SerStringNull()
		assert.Equal(t, []byte{0xFF}, w.Bytes())

		r := NewReader(w.Bytes())
		s, isNull, err := r.SerString()
		require.NoError(t, err)
		assert.True(t, isNull)
		assert.Empty(t, s)
	})

	t.Run("empty is not null", func(t *testing.T) {
		t.Parallel()
		w := NewWriter()
		require.NoError(t, w.SerString(""))

		r := NewReader(w.Bytes())
		s, isNull, err := r.SerString()
		require.NoError(t, err)
		assert.False(t, isNull)
		assert.Empty(t, s)
	})

	t.Run("length overruns blob", func(t *testing.T) {
		t.Parallel()
		r := NewReader([]byte{0x0A, 'h', 'i'})
		_, _, err := r.SerString()
		assert.ErrorIs(t, err, ErrUnexpectedEOF)
	})
}

func TestUTF16RoundTrip(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	w.UTF16("héllo \U0001F600")

	r := NewReader(w.Bytes())
	s, err := r.UTF16(w.Len())
	require.NoError(t, err)
	assert.Equal(t, "héllo \U0001F600", s)
}
