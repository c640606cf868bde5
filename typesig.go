package sigil

import (
	"fmt"
	"slices"
	"strings"
)

// ElementType is the tag byte that introduces each node of an encoded type
// signature, plus the serialization-only tags that appear inside
// custom-attribute argument blobs.
type ElementType byte

const (
	ElemEnd         ElementType = 0x00
	ElemVoid        ElementType = 0x01
	ElemBool        ElementType = 0x02
	ElemChar        ElementType = 0x03
	ElemI1          ElementType = 0x04
	ElemU1          ElementType = 0x05
	ElemI2          ElementType = 0x06
	ElemU2          ElementType = 0x07
	ElemI4          ElementType = 0x08
	ElemU4          ElementType = 0x09
	ElemI8          ElementType = 0x0A
	ElemU8          ElementType = 0x0B
	ElemR4          ElementType = 0x0C
	ElemR8          ElementType = 0x0D
	ElemString      ElementType = 0x0E
	ElemPtr         ElementType = 0x0F
	ElemByRef       ElementType = 0x10
	ElemValueType   ElementType = 0x11
	ElemClass       ElementType = 0x12
	ElemVar         ElementType = 0x13
	ElemArray       ElementType = 0x14
	ElemGenericInst ElementType = 0x15
	ElemTypedByRef  ElementType = 0x16
	ElemI           ElementType = 0x18
	ElemU           ElementType = 0x19
	ElemFnPtr       ElementType = 0x1B
	ElemObject      ElementType = 0x1C
	ElemSZArray     ElementType = 0x1D
	ElemMVar        ElementType = 0x1E
	ElemCModReqd    ElementType = 0x1F
	ElemCModOpt     ElementType = 0x20
	ElemInternal    ElementType = 0x21
	ElemSentinel    ElementType = 0x41
	ElemPinned      ElementType = 0x45

	// Serialization-only tags, valid inside custom-attribute blobs.
	ElemType     ElementType = 0x50 // System.Type value
	ElemBoxed    ElementType = 0x51 // value carrying its own type tag
	ElemField    ElementType = 0x53 // named-argument field designator
	ElemProperty ElementType = 0x54 // named-argument property designator
	ElemEnum     ElementType = 0x55 // enum value with inline type name
)

var elemNames = map[ElementType]string{
	ElemVoid: "void", ElemBool: "bool", ElemChar: "char",
	ElemI1: "int8", ElemU1: "uint8", ElemI2: "int16", ElemU2: "uint16",
	ElemI4: "int32", ElemU4: "uint32", ElemI8: "int64", ElemU8: "uint64",
	ElemR4: "float32", ElemR8: "float64", ElemString: "string",
	ElemI: "native int", ElemU: "native uint", ElemObject: "object",
	ElemTypedByRef: "typedref", ElemType: "type",
}

func (e ElementType) String() string {
	if name, ok := elemNames[e]; ok {
		return name
	}
	return fmt.Sprintf("elem(%#02x)", byte(e))
}

// IsPrimitive reports whether e is a leaf tag with no trailing bytes in a
// type signature.
func (e ElementType) IsPrimitive() bool {
	switch e {
	case ElemVoid, ElemBool, ElemChar, ElemI1, ElemU1, ElemI2, ElemU2,
		ElemI4, ElemU4, ElemI8, ElemU8, ElemR4, ElemR8, ElemString,
		ElemI, ElemU, ElemObject, ElemTypedByRef:
		return true
	}
	return false
}

// SigKind discriminates the variants of a TypeSig node.
type SigKind int

const (
	SigInvalid SigKind = iota // placeholder substituted for undecodable input
	SigPrimitive
	SigTypeRef // class or value-type reference by token or by name
	SigPointer
	SigByRef
	SigSZArray
	SigArray
	SigGenericInst
	SigGenericParam
	SigPinned
	SigModified
	SigBoxed
)

// TypeSig is one node of a decoded type signature.
//
// Which fields are meaningful depends on Kind; constructors return nodes
// with the right shape. Nodes are plain data: mutate and re-encode freely,
// but serialize concurrent mutation of shared nodes yourself.
type TypeSig struct {
	Kind SigKind
	Elem ElementType // the tag that introduced the node

	Inner *TypeSig // Pointer, ByRef, SZArray, Array, Pinned, Modified, Boxed

	// Type references. A reference decoded from a blob carries a token; one
	// parsed from a serialized type name carries Name (and possibly
	// Assembly) instead.
	Ref         Token
	Name        string
	Assembly    string
	IsValueType bool

	Args []*TypeSig // GenericInst type arguments, in order

	Rank     uint32 // Array
	Sizes    []uint32
	LoBounds []int32

	Index         uint32 // GenericParam
	IsMethodParam bool

	Required bool // Modified: required vs optional modifier
}

// PrimitiveSig returns the signature node for a primitive element type.
func PrimitiveSig(e ElementType) *TypeSig {
	return &TypeSig{Kind: SigPrimitive, Elem: e}
}

// TypeRefSig returns a class or value-type reference node.
func TypeRefSig(ref Token, isValueType bool) *TypeSig {
	e := ElemClass
	if isValueType {
		e = ElemValueType
	}
	return &TypeSig{Kind: SigTypeRef, Elem: e, Ref: ref, IsValueType: isValueType}
}

// NamedTypeSig returns a type reference identified by name rather than
// token, as produced by parsing a serialized type name.
func NamedTypeSig(name, assembly string, isValueType bool) *TypeSig {
	e := ElemClass
	if isValueType {
		e = ElemValueType
	}
	return &TypeSig{Kind: SigTypeRef, Elem: e, Name: name, Assembly: assembly, IsValueType: isValueType}
}

// PointerSig returns a pointer-to-inner node.
func PointerSig(inner *TypeSig) *TypeSig {
	return &TypeSig{Kind: SigPointer, Elem: ElemPtr, Inner: inner}
}

// ByRefSig returns a by-reference wrapper node.
func ByRefSig(inner *TypeSig) *TypeSig {
	return &TypeSig{Kind: SigByRef, Elem: ElemByRef, Inner: inner}
}

// SZArraySig returns a single-dimensional, zero-based array node.
func SZArraySig(elem *TypeSig) *TypeSig {
	return &TypeSig{Kind: SigSZArray, Elem: ElemSZArray, Inner: elem}
}

// ArraySig returns a multi-dimensional array node.
func ArraySig(elem *TypeSig, rank uint32, sizes []uint32, loBounds []int32) *TypeSig {
	return &TypeSig{Kind: SigArray, Elem: ElemArray, Inner: elem, Rank: rank, Sizes: sizes, LoBounds: loBounds}
}

// GenericInstSig returns a generic instantiation node. The isValueType flag
// is cached from the resolved generic type's classification and must stay
// consistent with it.
func GenericInstSig(ref Token, isValueType bool, args ...*TypeSig) *TypeSig {
	return &TypeSig{Kind: SigGenericInst, Elem: ElemGenericInst, Ref: ref, IsValueType: isValueType, Args: args}
}

// GenericParamSig returns a generic parameter reference: type parameter when
// isMethodParam is false, method parameter otherwise.
func GenericParamSig(index uint32, isMethodParam bool) *TypeSig {
	e := ElemVar
	if isMethodParam {
		e = ElemMVar
	}
	return &TypeSig{Kind: SigGenericParam, Elem: e, Index: index, IsMethodParam: isMethodParam}
}

// PinnedSig returns a pinned wrapper node.
func PinnedSig(inner *TypeSig) *TypeSig {
	return &TypeSig{Kind: SigPinned, Elem: ElemPinned, Inner: inner}
}

// ModifiedSig returns a custom-modifier wrapper node.
func ModifiedSig(required bool, modifier Token, inner *TypeSig) *TypeSig {
	e := ElemCModOpt
	if required {
		e = ElemCModReqd
	}
	return &TypeSig{Kind: SigModified, Elem: e, Ref: modifier, Inner: inner, Required: required}
}

// BoxedSig returns a boxed wrapper node for an object-typed slot.
func BoxedSig(inner *TypeSig) *TypeSig {
	return &TypeSig{Kind: SigBoxed, Elem: ElemObject, Inner: inner}
}

// InvalidSig returns the well-known placeholder substituted for input the
// decoder could not interpret.
func InvalidSig() *TypeSig {
	return &TypeSig{Kind: SigInvalid, Elem: ElemInternal}
}

// Equal reports structural equality: same shape and same field values,
// ignoring everything not part of the encoded form.
func (s *TypeSig) Equal(o *TypeSig) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Kind != o.Kind || s.Elem != o.Elem {
		return false
	}
	switch s.Kind {
	case SigPrimitive, SigInvalid:
		return true
	case SigTypeRef:
		return s.Ref == o.Ref && s.Name == o.Name && s.Assembly == o.Assembly &&
			s.IsValueType == o.IsValueType
	case SigPointer, SigByRef, SigSZArray, SigPinned, SigBoxed:
		return s.Inner.Equal(o.Inner)
	case SigArray:
		return s.Rank == o.Rank &&
			slices.Equal(s.Sizes, o.Sizes) &&
			slices.Equal(s.LoBounds, o.LoBounds) &&
			s.Inner.Equal(o.Inner)
	case SigGenericInst:
		return s.Ref == o.Ref && s.IsValueType == o.IsValueType &&
			slices.EqualFunc(s.Args, o.Args, (*TypeSig).Equal)
	case SigGenericParam:
		return s.Index == o.Index && s.IsMethodParam == o.IsMethodParam
	case SigModified:
		return s.Required == o.Required && s.Ref == o.Ref && s.Inner.Equal(o.Inner)
	default:
		return false
	}
}

func (s *TypeSig) String() string {
	if s == nil {
		return "<nil>"
	}
	switch s.Kind {
	case SigInvalid:
		return "<invalid>"
	case SigPrimitive:
		return s.Elem.String()
	case SigTypeRef:
		if s.Name != "" {
			return s.Name
		}
		return s.Ref.String()
	case SigPointer:
		return s.Inner.String() + "*"
	case SigByRef:
		return s.Inner.String() + "&"
	case SigSZArray:
		return s.Inner.String() + "[]"
	case SigArray:
		return fmt.Sprintf("%s[rank %d]", s.Inner, s.Rank)
	case SigGenericInst:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = a.String()
		}
		return fmt.Sprintf("%s<%s>", s.Ref, strings.Join(args, ", "))
	case SigGenericParam:
		if s.IsMethodParam {
			return fmt.Sprintf("!!%d", s.Index)
		}
		return fmt.Sprintf("!%d", s.Index)
	case SigPinned:
		return "pinned " + s.Inner.String()
	case SigModified:
		return "modified " + s.Inner.String()
	case SigBoxed:
		return "boxed " + s.Inner.String()
	default:
		return fmt.Sprintf("sig(%d)", s.Kind)
	}
}
