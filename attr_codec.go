package sigil

import (
	"fmt"
	"math"

	"github.com/meigma/sigil/blobio"
)

// nullArraySentinel is the element count that denotes a null array, as
// opposed to a zero count denoting an empty one.
const nullArraySentinel = 0xFFFFFFFF

// DecodeCustomAttr decodes a custom-attribute argument blob against the
// declared parameter types of its resolved constructor.
//
// params drives fixed-argument interpretation; the blob itself carries type
// tags only for object-typed slots and named arguments. A blob that
// disagrees with its constructor is tolerated: decoding truncates at the
// point of disagreement, flags CtorMismatch, and reports what happened as
// diagnostics. res may be nil; enum and System.Type arguments then decode
// best-effort with diagnostics.
func DecodeCustomAttr(data []byte, params []*TypeSig, res Resolver) (*CustomAttrSig, Diagnostics) {
	var diags Diagnostics
	d := &attrDecoder{r: blobio.NewReader(data), res: res, diags: &diags}
	sig := &CustomAttrSig{}

	prolog, err := d.r.Uint16()
	if err != nil {
		diags.add(DiagStructural, 0, "attribute blob too short for prolog")
		sig.Prolog = 1
		return sig, diags
	}
	sig.Prolog = prolog
	if prolog != 1 {
		diags.add(DiagSemantic, 0, "unexpected attribute prolog %#04x", prolog)
	}

	for i, p := range params {
		if d.r.Remaining() == 0 {
			diags.add(DiagSemantic, d.r.Pos(), "blob exhausted before fixed argument %d of %d", i, len(params))
			sig.CtorMismatch = true
			break
		}
		v, ok := d.value(p)
		if !ok {
			sig.CtorMismatch = true
			break
		}
		sig.Fixed = append(sig.Fixed, CAArgument{Type: p, Value: v})
	}
	if sig.CtorMismatch {
		// Whatever follows the disagreement cannot be framed reliably.
		return sig, diags
	}

	numNamed, err := d.r.Uint16()
	if err != nil {
		diags.add(DiagStructural, d.r.Pos(), "attribute blob missing named-argument count")
		return sig, diags
	}
	for i := uint16(0); i < numNamed; i++ {
		na, ok := d.namedArg()
		if !ok {
			break
		}
		sig.Named = append(sig.Named, na)
	}
	return sig, diags
}

type attrDecoder struct {
	r     *blobio.Reader
	res   Resolver
	diags *Diagnostics
	depth int
}

// value decodes one argument value whose static type is t.
//
// The bool result reports whether the cursor is still reliable: false means
// the value could not be framed and nothing after it can be trusted.
func (d *attrDecoder) value(t *TypeSig) (any, bool) {
	if d.depth > maxSigDepth {
		d.diags.add(DiagStructural, d.r.Pos(), "argument nesting exceeds %d levels", maxSigDepth)
		return nil, false
	}
	d.depth++
	defer func() { d.depth-- }()

	for t != nil && (t.Kind == SigModified || t.Kind == SigPinned) {
		t = t.Inner
	}
	if t == nil {
		d.diags.add(DiagStructural, d.r.Pos(), "argument has no type")
		return nil, false
	}
	switch t.Kind {
	case SigPrimitive:
		return d.primitiveValue(t.Elem)
	case SigTypeRef:
		return d.refValue(t)
	case SigSZArray:
		return d.arrayValue(t.Inner)
	case SigBoxed:
		return d.boxed()
	default:
		d.diags.add(DiagSemantic, d.r.Pos(), "argument type %s has no attribute encoding", t)
		return nil, false
	}
}

func (d *attrDecoder) primitiveValue(e ElementType) (any, bool) {
	pos := d.r.Pos()
	var v any
	var err error
	switch e {
	case ElemBool:
		var b uint8
		b, err = d.r.Uint8()
		v = b != 0
	case ElemChar:
		var u uint16
		u, err = d.r.Uint16()
		v = rune(u)
	case ElemI1:
		v, err = d.r.Int8()
	case ElemU1:
		v, err = d.r.Uint8()
	case ElemI2:
		v, err = d.r.Int16()
	case ElemU2:
		v, err = d.r.Uint16()
	case ElemI4:
		v, err = d.r.Int32()
	case ElemU4:
		v, err = d.r.Uint32()
	case ElemI8:
		v, err = d.r.Int64()
	case ElemU8:
		v, err = d.r.Uint64()
	case ElemR4:
		v, err = d.r.Float32()
	case ElemR8:
		v, err = d.r.Float64()
	case ElemString:
		s, isNull, serr := d.r.SerString()
		if serr != nil {
			err = serr
		} else if isNull {
			v = nil
		} else {
			v = s
		}
	case ElemObject:
		return d.boxed()
	default:
		d.diags.add(DiagStructural, pos, "element type %s not valid for an attribute value", e)
		return nil, false
	}
	if err != nil {
		d.diags.add(DiagStructural, pos, "truncated %s value: %v", e, err)
		return nil, false
	}
	return v, true
}

func (d *attrDecoder) refValue(t *TypeSig) (any, bool) {
	pos := d.r.Pos()
	if t.Name == SystemTypeName {
		return d.typeNameValue()
	}
	if !t.Ref.IsNil() && d.res != nil {
		class, under := d.res.ClassifyRef(t.Ref)
		switch class {
		case RefSystemType:
			return d.typeNameValue()
		case RefEnum:
			return d.primitiveValue(under)
		}
		d.diags.add(DiagSemantic, pos, "type %s has no attribute encoding", t.Ref)
		return nil, false
	}
	if t.IsValueType {
		// Enum whose declaration we cannot reach; the declared underlying
		// type is unrecoverable from the blob alone.
		under := ElemI4
		if t.Name != "" && d.res != nil {
			if u, ok := d.res.EnumUnderlyingByName(t.Name); ok {
				under = u
			} else {
				d.diags.add(DiagSemantic, pos, "enum %s unresolved; assuming int32 underlying", t.Name)
			}
		} else {
			d.diags.add(DiagSemantic, pos, "enum %s unresolved; assuming int32 underlying", t)
		}
		return d.primitiveValue(under)
	}
	d.diags.add(DiagSemantic, pos, "type %s has no attribute encoding", t)
	return nil, false
}

func (d *attrDecoder) typeNameValue() (any, bool) {
	pos := d.r.Pos()
	s, isNull, err := d.r.SerString()
	if err != nil {
		d.diags.add(DiagStructural, pos, "serialized type name: %v", err)
		return nil, false
	}
	if isNull || s == "" {
		return nil, true
	}
	return ParseTypeName(s), true
}

func (d *attrDecoder) arrayValue(elem *TypeSig) (any, bool) {
	pos := d.r.Pos()
	count, err := d.r.Uint32()
	if err != nil {
		d.diags.add(DiagStructural, pos, "truncated array count")
		return nil, false
	}
	if count == nullArraySentinel {
		return &CAArray{IsNull: true}, true
	}
	if int64(count) > int64(d.r.Remaining()) {
		d.diags.add(DiagStructural, pos, "array count %d overruns remaining %d bytes", count, d.r.Remaining())
		return nil, false
	}
	elems := make([]any, 0, count)
	for i := uint32(0); i < count; i++ {
		v, ok := d.value(elem)
		if !ok {
			return nil, false
		}
		elems = append(elems, v)
	}
	return &CAArray{Elems: elems}, true
}

// boxed decodes a value whose static slot type is object: the runtime type
// tag travels inline, and the result keeps it.
func (d *attrDecoder) boxed() (any, bool) {
	t, ok := d.fieldOrPropType()
	if !ok {
		return nil, false
	}
	v, ok := d.value(t)
	if !ok {
		return nil, false
	}
	return &BoxedValue{Type: t, Value: v}, true
}

// fieldOrPropType reads the inline type designator used by named arguments
// and boxed values. Designators nest through array markers, so the same
// depth bound that guards value decoding applies here.
func (d *attrDecoder) fieldOrPropType() (*TypeSig, bool) {
	if d.depth > maxSigDepth {
		d.diags.add(DiagStructural, d.r.Pos(), "type designator nesting exceeds %d levels", maxSigDepth)
		return nil, false
	}
	d.depth++
	defer func() { d.depth-- }()

	pos := d.r.Pos()
	tag, err := d.r.Uint8()
	if err != nil {
		d.diags.add(DiagStructural, pos, "truncated type designator")
		return nil, false
	}
	et := ElementType(tag)
	switch {
	case et.IsPrimitive() && et != ElemObject:
		return PrimitiveSig(et), true
	case et == ElemBoxed:
		return PrimitiveSig(ElemObject), true
	case et == ElemType:
		return NamedTypeSig(SystemTypeName, "", false), true
	case et == ElemSZArray:
		elem, ok := d.fieldOrPropType()
		if !ok {
			return nil, false
		}
		return SZArraySig(elem), true
	case et == ElemEnum:
		name, isNull, err := d.r.SerString()
		if err != nil || isNull {
			d.diags.add(DiagStructural, pos, "enum designator missing type name")
			return nil, false
		}
		return NamedTypeSig(name, "", true), true
	default:
		d.diags.add(DiagStructural, pos, "unsupported type designator %#02x", tag)
		return nil, false
	}
}

func (d *attrDecoder) namedArg() (CANamedArg, bool) {
	pos := d.r.Pos()
	desig, err := d.r.Uint8()
	if err != nil {
		d.diags.add(DiagStructural, pos, "truncated named argument")
		return CANamedArg{}, false
	}
	if ElementType(desig) != ElemField && ElementType(desig) != ElemProperty {
		d.diags.add(DiagStructural, pos, "named argument designator %#02x is neither field nor property", desig)
		return CANamedArg{}, false
	}
	t, ok := d.fieldOrPropType()
	if !ok {
		return CANamedArg{}, false
	}
	name, isNull, err := d.r.SerString()
	if err != nil || isNull {
		d.diags.add(DiagStructural, d.r.Pos(), "named argument missing member name")
		return CANamedArg{}, false
	}
	v, ok := d.value(t)
	if !ok {
		return CANamedArg{}, false
	}
	return CANamedArg{
		IsField: ElementType(desig) == ElemField,
		Name:    name,
		Type:    t,
		Value:   v,
	}, true
}

// EncodeCustomAttr encodes sig into a fresh blob. Encoding is the strict
// mirror of decoding; a value whose shape does not match its declared type
// is a caller error.
func EncodeCustomAttr(sig *CustomAttrSig) ([]byte, error) {
	w := blobio.NewWriter()
	if err := sig.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Encode appends sig's binary form to w.
func (s *CustomAttrSig) Encode(w *blobio.Writer) error {
	w.Uint16(s.Prolog)
	for i, a := range s.Fixed {
		if err := encodeValue(w, a.Type, a.Value); err != nil {
			return fmt.Errorf("fixed argument %d: %w", i, err)
		}
	}
	if len(s.Named) > math.MaxUint16 {
		return fmt.Errorf("%w: %d named arguments", ErrUnsupportedElement, len(s.Named))
	}
	w.Uint16(uint16(len(s.Named)))
	for _, na := range s.Named {
		if na.IsField {
			w.Uint8(byte(ElemField))
		} else {
			w.Uint8(byte(ElemProperty))
		}
		if err := encodeFieldOrPropType(w, na.Type); err != nil {
			return fmt.Errorf("named argument %q: %w", na.Name, err)
		}
		if err := w.SerString(na.Name); err != nil {
			return err
		}
		if err := encodeValue(w, na.Type, na.Value); err != nil {
			return fmt.Errorf("named argument %q: %w", na.Name, err)
		}
	}
	return nil
}

func encodeValue(w *blobio.Writer, t *TypeSig, v any) error {
	for t != nil && (t.Kind == SigModified || t.Kind == SigPinned) {
		t = t.Inner
	}
	if t == nil {
		return fmt.Errorf("%w: value has no type", ErrUnsupportedElement)
	}
	switch t.Kind {
	case SigPrimitive:
		return encodePrimitiveValue(w, t.Elem, v)

	case SigTypeRef:
		if t.Name == SystemTypeName {
			return encodeTypeNameValue(w, v)
		}
		// Dispatch on the value shape: decoded System.Type slots carry
		// *TypeSig values even when the parameter type is only a token.
		switch x := v.(type) {
		case *TypeSig:
			return encodeTypeNameValue(w, x)
		case nil:
			if !t.IsValueType {
				w.SerStringNull()
				return nil
			}
			return fmt.Errorf("%w: nil value for value type %s", ErrUnsupportedElement, t)
		default:
			// Enum: the value already carries its underlying width.
			return encodeScalar(w, v)
		}

	case SigSZArray:
		arr, ok := v.(*CAArray)
		if !ok {
			return fmt.Errorf("%w: array value has type %T", ErrUnsupportedElement, v)
		}
		if arr.IsNull {
			w.Uint32(nullArraySentinel)
			return nil
		}
		w.Uint32(uint32(len(arr.Elems)))
		for i, e := range arr.Elems {
			if err := encodeValue(w, t.Inner, e); err != nil {
				return fmt.Errorf("array element %d: %w", i, err)
			}
		}
		return nil

	case SigBoxed:
		return encodeBoxedValue(w, v)

	default:
		return fmt.Errorf("%w: argument type %s", ErrUnsupportedElement, t)
	}
}

func encodePrimitiveValue(w *blobio.Writer, e ElementType, v any) error {
	mismatch := func() error {
		return fmt.Errorf("%w: %s value has type %T", ErrUnsupportedElement, e, v)
	}
	switch e {
	case ElemBool:
		b, ok := v.(bool)
		if !ok {
			return mismatch()
		}
		if b {
			w.Uint8(1)
		} else {
			w.Uint8(0)
		}
	case ElemChar:
		c, ok := v.(rune)
		if !ok {
			return mismatch()
		}
		w.Uint16(uint16(c))
	case ElemString:
		switch s := v.(type) {
		case nil:
			w.SerStringNull()
		case string:
			return w.SerString(s)
		default:
			return mismatch()
		}
	case ElemObject:
		return encodeBoxedValue(w, v)
	case ElemI1, ElemU1, ElemI2, ElemU2, ElemI4, ElemU4, ElemI8, ElemU8, ElemR4, ElemR8:
		return encodeScalar(w, v)
	default:
		return fmt.Errorf("%w: element type %s", ErrUnsupportedElement, e)
	}
	return nil
}

// encodeScalar writes a numeric value at the width of its Go type.
func encodeScalar(w *blobio.Writer, v any) error {
	switch x := v.(type) {
	case int8:
		w.Int8(x)
	case uint8:
		w.Uint8(x)
	case int16:
		w.Int16(x)
	case uint16:
		w.Uint16(x)
	case int32:
		w.Int32(x)
	case uint32:
		w.Uint32(x)
	case int64:
		w.Int64(x)
	case uint64:
		w.Uint64(x)
	case float32:
		w.Float32(x)
	case float64:
		w.Float64(x)
	default:
		return fmt.Errorf("%w: scalar value has type %T", ErrUnsupportedElement, v)
	}
	return nil
}

func encodeTypeNameValue(w *blobio.Writer, v any) error {
	switch x := v.(type) {
	case nil:
		w.SerStringNull()
		return nil
	case *TypeSig:
		name, err := FormatTypeName(x)
		if err != nil {
			return err
		}
		return w.SerString(name)
	default:
		return fmt.Errorf("%w: type value has type %T", ErrUnsupportedElement, v)
	}
}

func encodeBoxedValue(w *blobio.Writer, v any) error {
	b, ok := v.(*BoxedValue)
	if !ok {
		return fmt.Errorf("%w: object slot value has type %T, want *BoxedValue", ErrUnsupportedElement, v)
	}
	if err := encodeFieldOrPropType(w, b.Type); err != nil {
		return err
	}
	return encodeValue(w, b.Type, b.Value)
}

// encodeFieldOrPropType writes the inline type designator used by named
// arguments and boxed values.
func encodeFieldOrPropType(w *blobio.Writer, t *TypeSig) error {
	for t != nil && (t.Kind == SigModified || t.Kind == SigPinned) {
		t = t.Inner
	}
	if t == nil {
		return fmt.Errorf("%w: nil type designator", ErrUnsupportedElement)
	}
	switch t.Kind {
	case SigPrimitive:
		if t.Elem == ElemObject {
			w.Uint8(byte(ElemBoxed))
			return nil
		}
		if !t.Elem.IsPrimitive() || t.Elem == ElemVoid || t.Elem == ElemTypedByRef {
			return fmt.Errorf("%w: element type %s as designator", ErrUnsupportedElement, t.Elem)
		}
		w.Uint8(byte(t.Elem))
		return nil

	case SigTypeRef:
		if t.Name == SystemTypeName {
			w.Uint8(byte(ElemType))
			return nil
		}
		if !t.IsValueType {
			return fmt.Errorf("%w: class reference %s as designator", ErrUnsupportedElement, t)
		}
		name := t.Name
		if name == "" {
			return fmt.Errorf("%w: enum %s has no serialized name", ErrUnsupportedElement, t.Ref)
		}
		w.Uint8(byte(ElemEnum))
		return w.SerString(name)

	case SigSZArray:
		w.Uint8(byte(ElemSZArray))
		return encodeFieldOrPropType(w, t.Inner)

	case SigBoxed:
		w.Uint8(byte(ElemBoxed))
		return nil

	default:
		return fmt.Errorf("%w: signature kind %d as designator", ErrUnsupportedElement, t.Kind)
	}
}
