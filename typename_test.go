package sigil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/sigil"
)

func TestParseTypeName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want *sigil.TypeSig
	}{
		{"primitive", "System.Int32", sigil.PrimitiveSig(sigil.ElemI4)},
		{"object", "System.Object", sigil.PrimitiveSig(sigil.ElemObject)},
		{"plain class", "My.Namespace.Widget", sigil.NamedTypeSig("My.Namespace.Widget", "", false)},
		{"nested class", "Outer+Inner", sigil.NamedTypeSig("Outer+Inner", "", false)},
		{
			"assembly qualified", "My.Widget, MyAssembly, Version=1.0.0.0",
			sigil.NamedTypeSig("My.Widget", "MyAssembly, Version=1.0.0.0", false),
		},
		{
			"primitive with assembly stays named", "System.Int32, mscorlib",
			sigil.NamedTypeSig("System.Int32", "mscorlib", false),
		},
		{"szarray", "System.String[]", sigil.SZArraySig(sigil.PrimitiveSig(sigil.ElemString))},
		{
			"jagged array", "System.Int32[][]",
			sigil.SZArraySig(sigil.SZArraySig(sigil.PrimitiveSig(sigil.ElemI4))),
		},
		{"rank one array", "My.Widget[*]", sigil.ArraySig(sigil.NamedTypeSig("My.Widget", "", false), 1, nil, nil)},
		{"rank three array", "System.Byte[,,]", sigil.ArraySig(sigil.PrimitiveSig(sigil.ElemU1), 3, nil, nil)},
		{
			"array of assembly qualified", "My.Widget[], MyAssembly",
			sigil.SZArraySig(sigil.NamedTypeSig("My.Widget", "MyAssembly", false)),
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := sigil.ParseTypeName(tc.in)
			assert.True(t, tc.want.Equal(got), "parsed %s, want %s", got, tc.want)
		})
	}
}

func TestParseTypeNameOpaque(t *testing.T) {
	t.Parallel()

	// Generic bracket syntax is outside the supported subset; the whole name
	// is preserved verbatim so a round trip emits the original string.
	raw := "System.Collections.Generic.List`1[[System.Int32, mscorlib]], mscorlib"
	sig := sigil.ParseTypeName(raw)
	require.Equal(t, sigil.SigTypeRef, sig.Kind)
	assert.Equal(t, raw, sig.Name)

	out, err := sigil.FormatTypeName(sig)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestFormatTypeName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		sig  *sigil.TypeSig
		want string
	}{
		{"primitive", sigil.PrimitiveSig(sigil.ElemBool), "System.Boolean"},
		{"named", sigil.NamedTypeSig("My.Widget", "", false), "My.Widget"},
		{"assembly qualified", sigil.NamedTypeSig("My.Widget", "MyAssembly", false), "My.Widget, MyAssembly"},
		{"szarray", sigil.SZArraySig(sigil.PrimitiveSig(sigil.ElemI4)), "System.Int32[]"},
		{"rank one", sigil.ArraySig(sigil.PrimitiveSig(sigil.ElemI4), 1, nil, nil), "System.Int32[*]"},
		{"rank two", sigil.ArraySig(sigil.PrimitiveSig(sigil.ElemR8), 2, nil, nil), "System.Double[,]"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := sigil.FormatTypeName(tc.sig)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatTypeNameUnrepresentable(t *testing.T) {
	t.Parallel()

	t.Run("token only reference", func(t *testing.T) {
		t.Parallel()
		_, err := sigil.FormatTypeName(sigil.TypeRefSig(sigil.NewToken(sigil.TableTypeRef, 1), false))
		assert.ErrorIs(t, err, sigil.ErrUnsupportedElement)
	})

	t.Run("pointer", func(t *testing.T) {
		t.Parallel()
		_, err := sigil.FormatTypeName(sigil.PointerSig(sigil.PrimitiveSig(sigil.ElemI4)))
		assert.ErrorIs(t, err, sigil.ErrUnsupportedElement)
	})

	t.Run("void", func(t *testing.T) {
		t.Parallel()
		_, err := sigil.FormatTypeName(sigil.PrimitiveSig(sigil.ElemVoid))
		assert.ErrorIs(t, err, sigil.ErrUnsupportedElement)
	})

	t.Run("rank zero array", func(t *testing.T) {
		t.Parallel()
		_, err := sigil.FormatTypeName(sigil.ArraySig(sigil.PrimitiveSig(sigil.ElemI4), 0, nil, nil))
		assert.ErrorIs(t, err, sigil.ErrUnsupportedElement)
	})
}

func TestTypeNameRoundTrip(t *testing.T) {
	t.Parallel()

	names := []string{
		"System.Int32",
		"My.Widget",
		"My.Widget, MyAssembly",
		"System.String[]",
		"System.Int32[*]",
		"System.Byte[,,]",
	}
	for _, name := range names {
		out, err := sigil.FormatTypeName(sigil.ParseTypeName(name))
		require.NoError(t, err, name)
		assert.Equal(t, name, out)
	}
}
