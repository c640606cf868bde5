package sigil

// RefClass describes how a referenced type behaves inside custom-attribute
// argument blobs.
type RefClass int

const (
	// RefOther is a plain class or value type with no special decoding rule.
	RefOther RefClass = iota

	// RefEnum is an integral enum: argument values are read as the enum's
	// underlying primitive.
	RefEnum

	// RefSystemType is the System.Type class: argument values are read as
	// serialized assembly-qualified type names.
	RefSystemType
)

// Resolver supplies the member-lookup services this package consumes from
// the higher-level object model. Implementations live outside this core; a
// nil Resolver is tolerated everywhere and degrades to best-effort decoding
// with diagnostics.
//
// Implementations must be safe for concurrent use: lazy resolution may call
// into the Resolver from multiple goroutines.
type Resolver interface {
	// ConstructorParams returns the declared parameter types of the
	// attribute constructor identified by ctor, a MethodDef or MemberRef
	// token.
	ConstructorParams(ctor Token) ([]*TypeSig, error)

	// ClassifyRef reports how the type referenced by tok decodes inside
	// attribute blobs. The second result is the underlying primitive tag,
	// meaningful only for RefEnum.
	ClassifyRef(tok Token) (RefClass, ElementType)

	// EnumUnderlyingByName resolves a serialized enum type name to its
	// underlying primitive tag. ok is false when the name cannot be
	// resolved; callers fall back to int32 and record a diagnostic.
	EnumUnderlyingByName(name string) (underlying ElementType, ok bool)

	// IsValueType reports the value/reference classification of the type
	// referenced by tok. Used to keep a generic instantiation's cached flag
	// consistent with the resolved type during rebuild.
	IsValueType(tok Token) bool
}
