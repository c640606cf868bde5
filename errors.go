package sigil

import "errors"

// Sentinel errors for codec and store operations.
//
// Decode-time damage in untrusted input is reported as [Diagnostic] values,
// not errors; these sentinels surface through encode paths and store lookups,
// where the condition originates with the caller.
var (
	// ErrBadCodedIndex is returned when a coded index cannot be encoded for
	// its configured kind: the token's table is not in the kind's table list,
	// or the row number exceeds the representable range.
	ErrBadCodedIndex = errors.New("sigil: coded index out of range")

	// ErrUnknownMember is returned when a store lookup names a token with no
	// backing row.
	ErrUnknownMember = errors.New("sigil: unknown member token")

	// ErrInvalidSig is returned when encoding reaches an invalid-type
	// placeholder node. Placeholders mark unrecoverable corruption in the
	// decoded input and have no binary form.
	ErrInvalidSig = errors.New("sigil: cannot encode invalid type placeholder")

	// ErrUnsupportedElement is returned when an encoder is handed an element
	// type or value shape it has no encoding for. This is a caller bug, not
	// an input condition.
	ErrUnsupportedElement = errors.New("sigil: unsupported element")

	// ErrNoSignature is returned when a rebuild reaches an attribute whose
	// argument payload never decoded, typically because its constructor was
	// unresolvable.
	ErrNoSignature = errors.New("sigil: attribute signature unavailable")
)
