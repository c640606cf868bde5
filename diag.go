package sigil

import "fmt"

// DiagKind classifies a decode diagnostic.
type DiagKind int

const (
	// DiagStructural marks truncated or self-inconsistent encodings: bad
	// compressed-integer prefixes, unknown element-type tags, counts that
	// overrun the buffer.
	DiagStructural DiagKind = iota

	// DiagReferential marks coded indexes that point outside their valid row
	// range or at a table their kind does not permit.
	DiagReferential

	// DiagSemantic marks decoded shapes that disagree with resolved members,
	// such as a fixed-argument list that does not match its constructor.
	DiagSemantic
)

func (k DiagKind) String() string {
	switch k {
	case DiagStructural:
		return "structural"
	case DiagReferential:
		return "referential"
	case DiagSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Diagnostic records one recovered decode problem.
//
// Diagnostics are not errors: the decoder substitutes a well-defined
// placeholder for the damaged field and keeps going, so a single malformed
// field never aborts decoding of its siblings.
type Diagnostic struct {
	Kind    DiagKind
	Offset  int // byte offset within the blob being decoded
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at offset %d: %s", d.Kind, d.Offset, d.Message)
}

// Diagnostics collects recovered decode problems in encounter order.
type Diagnostics []Diagnostic

func (ds *Diagnostics) add(kind DiagKind, offset int, format string, args ...any) {
	*ds = append(*ds, Diagnostic{Kind: kind, Offset: offset, Message: fmt.Sprintf(format, args...)})
}
