package sigil

import (
	"fmt"

	"github.com/meigma/sigil/blobio"
)

// maxSigDepth bounds recursion while decoding nested signatures. Legitimate
// signatures are shallow; adversarial ones can nest wrapper tags to the full
// blob length.
const maxSigDepth = 64

// DecodeTypeSig decodes one type signature from data.
//
// Decoding never fails outright: unknown tags, truncated structures, and
// rejected coded indexes substitute the [InvalidSig] placeholder for the
// damaged node, record a diagnostic, and leave the remainder of the blob
// decodable. Callers that need strict input can treat a non-empty
// diagnostics list as failure.
func DecodeTypeSig(data []byte) (*TypeSig, Diagnostics) {
	r := blobio.NewReader(data)
	var diags Diagnostics
	sig := decodeSig(r, &diags, 0)
	return sig, diags
}

// decodeSig reads one signature node, recursing for nested types. On any
// failure it records a diagnostic and returns the invalid placeholder so the
// caller can keep decoding siblings.
func decodeSig(r *blobio.Reader, diags *Diagnostics, depth int) *TypeSig {
	if depth > maxSigDepth {
		diags.add(DiagStructural, r.Pos(), "signature nesting exceeds %d levels", maxSigDepth)
		return InvalidSig()
	}
	pos := r.Pos()
	tag, err := r.Uint8()
	if err != nil {
		diags.add(DiagStructural, pos, "truncated signature: missing element tag")
		return InvalidSig()
	}
	et := ElementType(tag)

	if et.IsPrimitive() {
		return PrimitiveSig(et)
	}

	switch et {
	case ElemPtr:
		return PointerSig(decodeSig(r, diags, depth+1))

	case ElemByRef:
		return ByRefSig(decodeSig(r, diags, depth+1))

	case ElemPinned:
		return PinnedSig(decodeSig(r, diags, depth+1))

	case ElemSZArray:
		return SZArraySig(decodeSig(r, diags, depth+1))

	case ElemValueType, ElemClass:
		ref, ok := decodeTypeRef(r, diags)
		if !ok {
			return InvalidSig()
		}
		return TypeRefSig(ref, et == ElemValueType)

	case ElemVar, ElemMVar:
		idx, err := r.CompressedUint()
		if err != nil {
			diags.add(DiagStructural, pos, "generic parameter: %v", err)
			return InvalidSig()
		}
		return GenericParamSig(idx, et == ElemMVar)

	case ElemArray:
		return decodeArray(r, diags, depth)

	case ElemGenericInst:
		return decodeGenericInst(r, diags, depth)

	case ElemCModReqd, ElemCModOpt:
		ref, ok := decodeTypeRef(r, diags)
		if !ok {
			return InvalidSig()
		}
		return ModifiedSig(et == ElemCModReqd, ref, decodeSig(r, diags, depth+1))

	default:
		diags.add(DiagStructural, pos, "unknown element type %#02x", tag)
		return InvalidSig()
	}
}

func decodeTypeRef(r *blobio.Reader, diags *Diagnostics) (Token, bool) {
	pos := r.Pos()
	packed, err := r.CompressedUint()
	if err != nil {
		diags.add(DiagStructural, pos, "type reference: %v", err)
		return Token{}, false
	}
	tok, err := TypeDefOrRef.Decode(packed)
	if err != nil {
		diags.add(DiagReferential, pos, "type reference: %v", err)
		return Token{}, false
	}
	if tok.IsNil() {
		diags.add(DiagReferential, pos, "type reference: null token")
		return Token{}, false
	}
	return tok, true
}

func decodeArray(r *blobio.Reader, diags *Diagnostics, depth int) *TypeSig {
	elem := decodeSig(r, diags, depth+1)
	pos := r.Pos()
	rank, err := r.CompressedUint()
	if err != nil {
		diags.add(DiagStructural, pos, "array rank: %v", err)
		return InvalidSig()
	}
	sizes, ok := decodeCounted(r, diags, "array sizes", func() (uint32, error) {
		return r.CompressedUint()
	})
	if !ok {
		return InvalidSig()
	}
	loBounds, ok := decodeCounted(r, diags, "array lower bounds", func() (int32, error) {
		return r.CompressedInt()
	})
	if !ok {
		return InvalidSig()
	}
	return ArraySig(elem, rank, sizes, loBounds)
}

// decodeCounted reads a compressed count followed by that many values. A
// count larger than the bytes left in the blob cannot be satisfied and is
// rejected up front rather than discovered one short read at a time.
func decodeCounted[T any](r *blobio.Reader, diags *Diagnostics, what string, read func() (T, error)) ([]T, bool) {
	pos := r.Pos()
	n, err := r.CompressedUint()
	if err != nil {
		diags.add(DiagStructural, pos, "%s count: %v", what, err)
		return nil, false
	}
	if int64(n) > int64(r.Remaining()) {
		diags.add(DiagStructural, pos, "%s count %d overruns remaining %d bytes", what, n, r.Remaining())
		return nil, false
	}
	vals := make([]T, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := read()
		if err != nil {
			diags.add(DiagStructural, r.Pos(), "%s[%d]: %v", what, i, err)
			return nil, false
		}
		vals = append(vals, v)
	}
	return vals, true
}

func decodeGenericInst(r *blobio.Reader, diags *Diagnostics, depth int) *TypeSig {
	pos := r.Pos()
	kind, err := r.Uint8()
	if err != nil {
		diags.add(DiagStructural, pos, "generic instance: missing class/valuetype byte")
		return InvalidSig()
	}
	if ElementType(kind) != ElemClass && ElementType(kind) != ElemValueType {
		diags.add(DiagStructural, pos, "generic instance: unexpected kind %#02x", kind)
		return InvalidSig()
	}
	ref, ok := decodeTypeRef(r, diags)
	if !ok {
		return InvalidSig()
	}
	pos = r.Pos()
	argc, err := r.CompressedUint()
	if err != nil {
		diags.add(DiagStructural, pos, "generic instance argument count: %v", err)
		return InvalidSig()
	}
	if int64(argc) > int64(r.Remaining()) {
		diags.add(DiagStructural, pos, "generic instance argument count %d overruns remaining %d bytes", argc, r.Remaining())
		return InvalidSig()
	}
	args := make([]*TypeSig, 0, argc)
	for i := uint32(0); i < argc; i++ {
		args = append(args, decodeSig(r, diags, depth+1))
	}
	return GenericInstSig(ref, ElementType(kind) == ElemValueType, args...)
}

// EncodeTypeSig encodes sig into a fresh blob.
//
// Encoding is strict where decoding is lenient: an [InvalidSig] placeholder
// or a malformed node is a caller error, not recoverable input damage.
func EncodeTypeSig(sig *TypeSig) ([]byte, error) {
	w := blobio.NewWriter()
	if err := sig.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Encode appends sig's binary form to w.
func (s *TypeSig) Encode(w *blobio.Writer) error {
	if s == nil {
		return fmt.Errorf("%w: nil signature node", ErrUnsupportedElement)
	}
	switch s.Kind {
	case SigInvalid:
		return ErrInvalidSig

	case SigPrimitive:
		if !s.Elem.IsPrimitive() {
			return fmt.Errorf("%w: %#02x is not a primitive tag", ErrUnsupportedElement, byte(s.Elem))
		}
		w.Uint8(byte(s.Elem))
		return nil

	case SigTypeRef:
		if s.Ref.IsNil() {
			return fmt.Errorf("%w: type reference %q has no token", ErrUnsupportedElement, s.Name)
		}
		w.Uint8(byte(s.Elem))
		return encodeTypeRef(w, s.Ref)

	case SigPointer, SigByRef, SigSZArray, SigPinned:
		w.Uint8(byte(s.Elem))
		return s.Inner.Encode(w)

	case SigArray:
		w.Uint8(byte(s.Elem))
		if err := s.Inner.Encode(w); err != nil {
			return err
		}
		if err := w.CompressedUint(s.Rank); err != nil {
			return err
		}
		if err := w.CompressedUint(uint32(len(s.Sizes))); err != nil {
			return err
		}
		for _, sz := range s.Sizes {
			if err := w.CompressedUint(sz); err != nil {
				return err
			}
		}
		if err := w.CompressedUint(uint32(len(s.LoBounds))); err != nil {
			return err
		}
		for _, lb := range s.LoBounds {
			if err := w.CompressedInt(lb); err != nil {
				return err
			}
		}
		return nil

	case SigGenericInst:
		w.Uint8(byte(ElemGenericInst))
		if s.IsValueType {
			w.Uint8(byte(ElemValueType))
		} else {
			w.Uint8(byte(ElemClass))
		}
		if err := encodeTypeRef(w, s.Ref); err != nil {
			return err
		}
		if err := w.CompressedUint(uint32(len(s.Args))); err != nil {
			return err
		}
		for _, a := range s.Args {
			if err := a.Encode(w); err != nil {
				return err
			}
		}
		return nil

	case SigGenericParam:
		w.Uint8(byte(s.Elem))
		return w.CompressedUint(s.Index)

	case SigModified:
		w.Uint8(byte(s.Elem))
		if err := encodeTypeRef(w, s.Ref); err != nil {
			return err
		}
		return s.Inner.Encode(w)

	case SigBoxed:
		// Boxing is a payload concept; the static slot type is object.
		w.Uint8(byte(ElemObject))
		return nil

	default:
		return fmt.Errorf("%w: signature kind %d", ErrUnsupportedElement, s.Kind)
	}
}

func encodeTypeRef(w *blobio.Writer, tok Token) error {
	packed, err := TypeDefOrRef.Encode(tok)
	if err != nil {
		return err
	}
	return w.CompressedUint(packed)
}
