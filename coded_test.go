package sigil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/sigil"
)

func TestCodedIndexRoundTrip(t *testing.T) {
	t.Parallel()

	kinds := []sigil.CodedIndexKind{
		sigil.TypeDefOrRef,
		sigil.CustomAttributeType,
		sigil.HasCustomAttribute,
	}
	for _, kind := range kinds {
		kind := kind
		t.Run(kind.Name(), func(t *testing.T) {
			t.Parallel()

			tokens := []sigil.Token{
				{},
				sigil.NewToken(sigil.TableTypeRef, 1),
				sigil.NewToken(sigil.TableTypeSpec, 0x1234),
			}
			if kind.Name() == "CustomAttributeType" {
				tokens = []sigil.Token{
					{},
					sigil.NewToken(sigil.TableMethodDef, 1),
					sigil.NewToken(sigil.TableMemberRef, 7),
				}
			}
			for _, tok := range tokens {
				packed, err := kind.Encode(tok)
				require.NoError(t, err)
				got, err := kind.Decode(packed)
				require.NoError(t, err)
				assert.Equal(t, tok, got, "token %s via %s", tok, kind.Name())
			}
		})
	}
}

func TestCodedIndexNil(t *testing.T) {
	t.Parallel()

	packed, err := sigil.TypeDefOrRef.Encode(sigil.Token{})
	require.NoError(t, err)
	assert.Zero(t, packed)

	// Any packed value with zero row bits is nil regardless of tag.
	tok, err := sigil.TypeDefOrRef.Decode(0x2)
	require.NoError(t, err)
	assert.True(t, tok.IsNil())
}

func TestCodedIndexMaxRID(t *testing.T) {
	t.Parallel()

	max := sigil.TypeDefOrRef.MaxRID()
	assert.Equal(t, uint32(1<<30-1), max)

	tok := sigil.NewToken(sigil.TableTypeDef, max)
	packed, err := sigil.TypeDefOrRef.Encode(tok)
	require.NoError(t, err)
	got, err := sigil.TypeDefOrRef.Decode(packed)
	require.NoError(t, err)
	assert.Equal(t, tok, got)

	_, err = sigil.TypeDefOrRef.Encode(sigil.NewToken(sigil.TableTypeDef, max+1))
	assert.ErrorIs(t, err, sigil.ErrBadCodedIndex)
}

func TestCodedIndexBadTag(t *testing.T) {
	t.Parallel()

	// TypeDefOrRef uses 2 tag bits over 3 tables: tag 3 selects nothing.
	_, err := sigil.TypeDefOrRef.Decode(1<<2 | 3)
	assert.ErrorIs(t, err, sigil.ErrBadCodedIndex)
}

func TestCodedIndexReservedSlot(t *testing.T) {
	t.Parallel()

	// CustomAttributeType reserves tags 0, 1 and 4.
	for _, tag := range []uint32{0, 1, 4} {
		_, err := sigil.CustomAttributeType.Decode(1<<3 | tag)
		assert.ErrorIs(t, err, sigil.ErrBadCodedIndex, "tag %d", tag)
	}

	// A token whose table never participates cannot encode either.
	_, err := sigil.CustomAttributeType.Encode(sigil.NewToken(sigil.TableTypeDef, 1))
	assert.ErrorIs(t, err, sigil.ErrBadCodedIndex)
}

func TestCodedIndexForeign(t *testing.T) {
	t.Parallel()

	// Container layers define their own kinds over custom table lists.
	kind := sigil.NewCodedIndexKind("MemberForwarded",
		sigil.TableField, sigil.TableMethodDef)
	assert.Equal(t, uint(1), kind.TagBits())

	packed, err := kind.Encode(sigil.NewToken(sigil.TableMethodDef, 5))
	require.NoError(t, err)
	assert.Equal(t, uint32(5<<1|1), packed)
}

func TestTokenUint32(t *testing.T) {
	t.Parallel()

	tok := sigil.NewToken(sigil.TableMemberRef, 0x42)
	assert.Equal(t, uint32(0x0A000042), tok.Uint32())
	assert.Equal(t, tok, sigil.TokenFromUint32(0x0A000042))
	assert.False(t, tok.IsNil())
	assert.True(t, sigil.NewToken(sigil.TableMemberRef, 0).IsNil())
}
