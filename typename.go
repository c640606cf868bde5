package sigil

import (
	"fmt"
	"strings"
)

// SystemTypeName is the full name of the type whose argument slots carry
// serialized type names.
const SystemTypeName = "System.Type"

// Full names of the primitive types as they appear in serialized type names.
var primitiveByName = map[string]ElementType{
	"System.Boolean": ElemBool,
	"System.Char":    ElemChar,
	"System.SByte":   ElemI1,
	"System.Byte":    ElemU1,
	"System.Int16":   ElemI2,
	"System.UInt16":  ElemU2,
	"System.Int32":   ElemI4,
	"System.UInt32":  ElemU4,
	"System.Int64":   ElemI8,
	"System.UInt64":  ElemU8,
	"System.Single":  ElemR4,
	"System.Double":  ElemR8,
	"System.String":  ElemString,
	"System.Object":  ElemObject,
	"System.IntPtr":  ElemI,
	"System.UIntPtr": ElemU,
}

var primitiveFullName = func() map[ElementType]string {
	m := make(map[ElementType]string, len(primitiveByName))
	for name, e := range primitiveByName {
		m[e] = name
	}
	return m
}()

// ParseTypeName parses the serialized, possibly assembly-qualified type
// names used for System.Type arguments and enum designators.
//
// The parser handles namespaces, nested types, array suffixes, and an
// assembly qualifier after the first top-level comma. Names outside that
// subset (generic bracket syntax, byref markers) are kept verbatim in an
// opaque reference node so they survive a round trip untouched.
func ParseTypeName(s string) *TypeSig {
	s = strings.TrimSpace(s)
	name, assembly := splitAssembly(s)

	// Array suffixes read left to right, innermost first.
	var ranks []uint32
	base := name
	for {
		trimmed, rank, ok := stripArraySuffix(base)
		if !ok {
			break
		}
		base = trimmed
		ranks = append([]uint32{rank}, ranks...)
	}
	if strings.ContainsAny(base, "[]&*") {
		// Outside the supported subset; keep the whole name opaque.
		return NamedTypeSig(s, "", false)
	}

	var sig *TypeSig
	if e, ok := primitiveByName[base]; ok && assembly == "" {
		sig = PrimitiveSig(e)
	} else {
		sig = NamedTypeSig(base, assembly, false)
	}
	for _, rank := range ranks {
		if rank == 0 {
			sig = SZArraySig(sig)
		} else {
			sig = ArraySig(sig, rank, nil, nil)
		}
	}
	return sig
}

// FormatTypeName renders sig back into serialized type-name form. Only the
// shapes ParseTypeName produces are formattable; anything else is a caller
// error.
func FormatTypeName(sig *TypeSig) (string, error) {
	switch {
	case sig == nil:
		return "", fmt.Errorf("%w: nil type in serialized name", ErrUnsupportedElement)

	case sig.Kind == SigPrimitive:
		name, ok := primitiveFullName[sig.Elem]
		if !ok {
			return "", fmt.Errorf("%w: primitive %s has no serialized name", ErrUnsupportedElement, sig.Elem)
		}
		return name, nil

	case sig.Kind == SigTypeRef:
		if sig.Name == "" {
			return "", fmt.Errorf("%w: type reference %s has no name", ErrUnsupportedElement, sig.Ref)
		}
		if sig.Assembly != "" {
			return sig.Name + ", " + sig.Assembly, nil
		}
		return sig.Name, nil

	case sig.Kind == SigSZArray:
		inner, err := FormatTypeName(sig.Inner)
		if err != nil {
			return "", err
		}
		return inner + "[]", nil

	case sig.Kind == SigArray:
		inner, err := FormatTypeName(sig.Inner)
		if err != nil {
			return "", err
		}
		switch sig.Rank {
		case 0:
			return "", fmt.Errorf("%w: array of rank 0 in serialized name", ErrUnsupportedElement)
		case 1:
			// Distinguishes a rank-1 multi-dimensional array from a
			// single-dimensional zero-based one.
			return inner + "[*]", nil
		default:
			return inner + "[" + strings.Repeat(",", int(sig.Rank)-1) + "]", nil
		}

	default:
		return "", fmt.Errorf("%w: signature kind %d in serialized name", ErrUnsupportedElement, sig.Kind)
	}
}

// splitAssembly splits name from its assembly qualifier at the first comma
// outside brackets.
func splitAssembly(s string) (name, assembly string) {
	depth := 0
	for i, c := range s {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
			}
		}
	}
	return s, ""
}

// stripArraySuffix removes one trailing array suffix. rank 0 means a
// single-dimensional zero-based array; otherwise the multi-dimensional rank.
func stripArraySuffix(s string) (trimmed string, rank uint32, ok bool) {
	if !strings.HasSuffix(s, "]") {
		return s, 0, false
	}
	open := strings.LastIndex(s, "[")
	if open < 0 {
		return s, 0, false
	}
	body := s[open+1 : len(s)-1]
	switch {
	case body == "":
		return s[:open], 0, true
	case body == "*":
		return s[:open], 1, true
	case strings.Trim(body, ",") == "":
		return s[:open], uint32(len(body)) + 1, true
	default:
		// Generic argument list or bound specification; not an array suffix.
		return s, 0, false
	}
}
