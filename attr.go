package sigil

import "slices"

// CAArgument is a positional (fixed) custom-attribute argument. Its type is
// the constructor's declared parameter type, never re-derived from the blob.
type CAArgument struct {
	Type  *TypeSig
	Value any
}

// Equal reports structural equality of type and value.
func (a CAArgument) Equal(o CAArgument) bool {
	return a.Type.Equal(o.Type) && ValueEqual(a.Value, o.Value)
}

// CANamedArg is a custom-attribute argument that targets a field or property
// by name and describes its own type with an inline tag.
type CANamedArg struct {
	IsField bool // field designator; otherwise property
	Name    string
	Type    *TypeSig
	Value   any
}

// Equal reports structural equality.
func (a CANamedArg) Equal(o CANamedArg) bool {
	return a.IsField == o.IsField && a.Name == o.Name &&
		a.Type.Equal(o.Type) && ValueEqual(a.Value, o.Value)
}

// CAArray is the decoded value of an array-typed argument slot.
//
// A null array and an empty array are distinct observable states: the null
// array decodes from the 0xFFFFFFFF count sentinel and has IsNull set; an
// empty array decodes from a zero count.
type CAArray struct {
	IsNull bool
	Elems  []any
}

// Equal reports structural equality.
func (a *CAArray) Equal(o *CAArray) bool {
	if a == nil || o == nil {
		return a == o
	}
	return a.IsNull == o.IsNull && slices.EqualFunc(a.Elems, o.Elems, ValueEqual)
}

// BoxedValue pairs a value with the runtime type that traveled alongside it
// in the blob. Boxing occurs whenever the static slot type is object: the
// real type is read from an inline tag and must not be lost.
type BoxedValue struct {
	Type  *TypeSig
	Value any
}

// Equal reports structural equality.
func (b *BoxedValue) Equal(o *BoxedValue) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.Type.Equal(o.Type) && ValueEqual(b.Value, o.Value)
}

// CustomAttrSig is the decoded argument payload of a custom attribute: the
// version marker, the positional arguments, and the named arguments.
type CustomAttrSig struct {
	// Prolog is the blob's version marker, 0x0001 in well-formed input.
	Prolog uint16

	Fixed []CAArgument
	Named []CANamedArg

	// CtorMismatch records that the fixed arguments could not be fully
	// decoded against the resolved constructor's parameter list. The
	// mismatch is tolerated at decode time; it is observable state, not an
	// error.
	CtorMismatch bool
}

// NewCustomAttrSig returns an empty, well-formed attribute signature ready
// for arguments.
func NewCustomAttrSig() *CustomAttrSig {
	return &CustomAttrSig{Prolog: 1}
}

// Equal reports structural equality, ignoring decode bookkeeping.
func (s *CustomAttrSig) Equal(o *CustomAttrSig) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Prolog == o.Prolog &&
		slices.EqualFunc(s.Fixed, o.Fixed, CAArgument.Equal) &&
		slices.EqualFunc(s.Named, o.Named, CANamedArg.Equal)
}

// ValueEqual reports structural equality of two decoded argument values:
// scalars, strings, nil, type signatures, arrays, and boxed wrappers.
func ValueEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case *TypeSig:
		bv, ok := b.(*TypeSig)
		return ok && av.Equal(bv)
	case *CAArray:
		bv, ok := b.(*CAArray)
		return ok && av.Equal(bv)
	case *BoxedValue:
		bv, ok := b.(*BoxedValue)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}
