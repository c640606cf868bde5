package sigil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/sigil"
	"github.com/meigma/sigil/blobio"
)

func typeRef(rid uint32) sigil.Token { return sigil.NewToken(sigil.TableTypeRef, rid) }

func TestTypeSigRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		sig  *sigil.TypeSig
	}{
		{"primitive", sigil.PrimitiveSig(sigil.ElemI4)},
		{"string", sigil.PrimitiveSig(sigil.ElemString)},
		{"object", sigil.PrimitiveSig(sigil.ElemObject)},
		{"class ref", sigil.TypeRefSig(typeRef(3), false)},
		{"valuetype ref", sigil.TypeRefSig(sigil.NewToken(sigil.TableTypeDef, 9), true)},
		{"pointer", sigil.PointerSig(sigil.PrimitiveSig(sigil.ElemU1))},
		{"byref", sigil.ByRefSig(sigil.PrimitiveSig(sigil.ElemR8))},
		{"szarray", sigil.SZArraySig(sigil.TypeRefSig(typeRef(1), false))},
		{"nested szarray", sigil.SZArraySig(sigil.SZArraySig(sigil.PrimitiveSig(sigil.ElemChar)))},
		{"array", sigil.ArraySig(sigil.PrimitiveSig(sigil.ElemI4), 2, []uint32{4, 4}, []int32{0, -1})},
		{"array no bounds", sigil.ArraySig(sigil.PrimitiveSig(sigil.ElemI8), 3, nil, nil)},
		{"generic inst", sigil.GenericInstSig(typeRef(5), false,
			sigil.PrimitiveSig(sigil.ElemString),
			sigil.SZArraySig(sigil.PrimitiveSig(sigil.ElemI4)))},
		{"generic valuetype", sigil.GenericInstSig(sigil.NewToken(sigil.TableTypeSpec, 2), true,
			sigil.PrimitiveSig(sigil.ElemBool))},
		{"type param", sigil.GenericParamSig(0, false)},
		{"method param", sigil.GenericParamSig(7, true)},
		{"pinned", sigil.PinnedSig(sigil.PrimitiveSig(sigil.ElemI))},
		{"modified required", sigil.ModifiedSig(true, typeRef(4), sigil.PrimitiveSig(sigil.ElemI4))},
		{"modified optional", sigil.ModifiedSig(false, typeRef(4), sigil.PointerSig(sigil.PrimitiveSig(sigil.ElemVoid)))},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data, err := sigil.EncodeTypeSig(tc.sig)
			require.NoError(t, err)

			got, diags := sigil.DecodeTypeSig(data)
			assert.Empty(t, diags)
			assert.True(t, tc.sig.Equal(got), "decoded %s, want %s", got, tc.sig)

			// Re-encoding the decoded form must reproduce the bytes.
			again, err := sigil.EncodeTypeSig(got)
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestTypeSigBoxed(t *testing.T) {
	t.Parallel()

	// A boxed wrapper serializes as the plain object slot type; the payload
	// type lives in the value stream, not the signature.
	data, err := sigil.EncodeTypeSig(sigil.BoxedSig(sigil.PrimitiveSig(sigil.ElemI4)))
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(sigil.ElemObject)}, data)
}

func TestTypeSigDecodeUnknownTag(t *testing.T) {
	t.Parallel()

	sig, diags := sigil.DecodeTypeSig([]byte{0x17})
	assert.Equal(t, sigil.SigInvalid, sig.Kind)
	require.Len(t, diags, 1)
	assert.Equal(t, sigil.DiagStructural, diags[0].Kind)
	assert.Equal(t, 0, diags[0].Offset)
}

func TestTypeSigDecodeTruncated(t *testing.T) {
	t.Parallel()

	t.Run("empty blob", func(t *testing.T) {
		t.Parallel()
		sig, diags := sigil.DecodeTypeSig(nil)
		assert.Equal(t, sigil.SigInvalid, sig.Kind)
		assert.NotEmpty(t, diags)
	})

	t.Run("pointer without target", func(t *testing.T) {
		t.Parallel()
		sig, diags := sigil.DecodeTypeSig([]byte{byte(sigil.ElemPtr)})
		require.Equal(t, sigil.SigPointer, sig.Kind)
		assert.Equal(t, sigil.SigInvalid, sig.Inner.Kind)
		assert.NotEmpty(t, diags)
	})

	t.Run("class without reference", func(t *testing.T) {
		t.Parallel()
		sig, diags := sigil.DecodeTypeSig([]byte{byte(sigil.ElemClass)})
		assert.Equal(t, sigil.SigInvalid, sig.Kind)
		assert.NotEmpty(t, diags)
	})
}

func TestTypeSigDecodeBadReference(t *testing.T) {
	t.Parallel()

	t.Run("reserved tag", func(t *testing.T) {
		t.Parallel()
		// Coded tag 3 selects no table in TypeDefOrRef.
		sig, diags := sigil.DecodeTypeSig([]byte{byte(sigil.ElemClass), 1<<2 | 3})
		assert.Equal(t, sigil.SigInvalid, sig.Kind)
		require.Len(t, diags, 1)
		assert.Equal(t, sigil.DiagReferential, diags[0].Kind)
	})

	t.Run("null token", func(t *testing.T) {
		t.Parallel()
		sig, diags := sigil.DecodeTypeSig([]byte{byte(sigil.ElemValueType), 0x00})
		assert.Equal(t, sigil.SigInvalid, sig.Kind)
		require.Len(t, diags, 1)
		assert.Equal(t, sigil.DiagReferential, diags[0].Kind)
	})
}

func TestTypeSigGenericInstSiblingRecovery(t *testing.T) {
	t.Parallel()

	// Two type arguments: the first has an unknown tag, the second is a plain
	// int32. The damaged argument becomes the placeholder and the sibling
	// still decodes.
	w := blobio.NewWriter()
	w.Uint8(byte(sigil.ElemGenericInst))
	w.Uint8(byte(sigil.ElemClass))
	packed, err := sigil.TypeDefOrRef.Encode(typeRef(5))
	require.NoError(t, err)
	require.NoError(t, w.CompressedUint(packed))
	require.NoError(t, w.CompressedUint(2))
	w.Uint8(0x17)
	w.Uint8(byte(sigil.ElemI4))

	sig, diags := sigil.DecodeTypeSig(w.Bytes())
	require.Equal(t, sigil.SigGenericInst, sig.Kind)
	require.Len(t, sig.Args, 2)
	assert.Equal(t, sigil.SigInvalid, sig.Args[0].Kind)
	assert.True(t, sig.Args[1].Equal(sigil.PrimitiveSig(sigil.ElemI4)))
	require.Len(t, diags, 1)
	assert.Equal(t, sigil.DiagStructural, diags[0].Kind)
}

func TestTypeSigGenericInstOverrunArgc(t *testing.T) {
	t.Parallel()

	// An argument count larger than the bytes left cannot be satisfied.
	w := blobio.NewWriter()
	w.Uint8(byte(sigil.ElemGenericInst))
	w.Uint8(byte(sigil.ElemClass))
	packed, err := sigil.TypeDefOrRef.Encode(typeRef(1))
	require.NoError(t, err)
	require.NoError(t, w.CompressedUint(packed))
	require.NoError(t, w.CompressedUint(50))
	w.Uint8(byte(sigil.ElemI4))

	sig, diags := sigil.DecodeTypeSig(w.Bytes())
	assert.Equal(t, sigil.SigInvalid, sig.Kind)
	assert.NotEmpty(t, diags)
}

func TestTypeSigDepthGuard(t *testing.T) {
	t.Parallel()

	data := make([]byte, 200)
	for i := range data {
		data[i] = byte(sigil.ElemSZArray)
	}
	sig, diags := sigil.DecodeTypeSig(data)
	require.Equal(t, sigil.SigSZArray, sig.Kind)
	require.Len(t, diags, 1)
	assert.Equal(t, sigil.DiagStructural, diags[0].Kind)

	// The innermost node is the placeholder where recursion stopped.
	inner := sig
	for inner.Kind == sigil.SigSZArray {
		inner = inner.Inner
	}
	assert.Equal(t, sigil.SigInvalid, inner.Kind)
}

func TestTypeSigEncodeRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := sigil.EncodeTypeSig(sigil.InvalidSig())
	assert.ErrorIs(t, err, sigil.ErrInvalidSig)

	// A placeholder nested anywhere poisons the whole encode.
	_, err = sigil.EncodeTypeSig(sigil.SZArraySig(sigil.InvalidSig()))
	assert.ErrorIs(t, err, sigil.ErrInvalidSig)
}

func TestTypeSigEncodeRejectsNamedRef(t *testing.T) {
	t.Parallel()

	// Name-only references come from serialized type names and have no token
	// to pack.
	_, err := sigil.EncodeTypeSig(sigil.NamedTypeSig("Some.Type", "", false))
	assert.ErrorIs(t, err, sigil.ErrUnsupportedElement)
}
