package sigil

import "fmt"

// CodedIndexKind describes one coded-index category: an ordered list of
// tables a packed reference may target, and the number of low tag bits
// needed to select among them.
//
// A packed value multiplexes (table, row): the low TagBits select a table
// positionally from the list, the remaining high bits are the one-based row
// number. A packed value of zero, or one whose row bits are zero, decodes to
// the nil token.
//
// The kinds this package itself needs are predefined ([TypeDefOrRef],
// [HasCustomAttribute], [CustomAttributeType]); the container layer can
// construct additional kinds for its own tables with [NewCodedIndexKind].
type CodedIndexKind struct {
	name    string
	tables  []TableKind
	tagBits uint
}

// NewCodedIndexKind creates a coded index kind over the given ordered table
// list. Use [TableNone] for positions the encoding reserves but no table
// occupies.
func NewCodedIndexKind(name string, tables ...TableKind) CodedIndexKind {
	bits := uint(0)
	for 1<<bits < len(tables) {
		bits++
	}
	return CodedIndexKind{name: name, tables: tables, tagBits: bits}
}

// Predefined coded index kinds used by the signature and attribute codecs.
var (
	// TypeDefOrRef multiplexes references to type definitions, type
	// references, and type specifications.
	TypeDefOrRef = NewCodedIndexKind("TypeDefOrRef",
		TableTypeDef, TableTypeRef, TableTypeSpec)

	// CustomAttributeType multiplexes an attribute's constructor reference.
	// Only the method-definition and member-reference slots are occupied.
	CustomAttributeType = NewCodedIndexKind("CustomAttributeType",
		TableNone, TableNone, TableMethodDef, TableMemberRef, TableNone)

	// HasCustomAttribute multiplexes the owner of a custom attribute row.
	HasCustomAttribute = NewCodedIndexKind("HasCustomAttribute",
		TableMethodDef, TableField, TableTypeRef, TableTypeDef, TableParam,
		TableInterfaceImpl, TableMemberRef, TableModule, TableDeclSecurity,
		TableProperty, TableEvent, TableStandAloneSig, TableModuleRef,
		TableTypeSpec, TableAssembly, TableAssemblyRef, TableFile,
		TableExportedType, TableManifestResource, TableGenericParam,
		TableGenericParamConstraint, TableMethodSpec)
)

// Name returns the kind's name, used in diagnostics.
func (k CodedIndexKind) Name() string { return k.name }

// TagBits returns the number of low bits used for table selection.
func (k CodedIndexKind) TagBits() uint { return k.tagBits }

// MaxRID returns the largest row number the packed form can carry.
func (k CodedIndexKind) MaxRID() uint32 {
	return (1 << (32 - k.tagBits)) - 1
}

// Decode unpacks a coded index into a token.
//
// A tag selecting a position outside the table list, or a reserved
// [TableNone] slot, is a referential error. A zero row decodes to the nil
// token with no error.
func (k CodedIndexKind) Decode(packed uint32) (Token, error) {
	tag := packed & ((1 << k.tagBits) - 1)
	rid := packed >> k.tagBits
	if rid == 0 {
		return Token{}, nil
	}
	if int(tag) >= len(k.tables) || k.tables[tag] == TableNone {
		return Token{}, fmt.Errorf("%w: tag %d not valid for %s", ErrBadCodedIndex, tag, k.name)
	}
	return Token{Table: k.tables[tag], RID: rid}, nil
}

// Encode packs a token into the kind's coded form. It is the exact inverse
// of Decode: the nil token encodes to zero, and a token whose table does not
// participate in the kind, or whose row exceeds [CodedIndexKind.MaxRID],
// returns [ErrBadCodedIndex].
func (k CodedIndexKind) Encode(tok Token) (uint32, error) {
	if tok.IsNil() {
		return 0, nil
	}
	if tok.RID > k.MaxRID() {
		return 0, fmt.Errorf("%w: row %d exceeds %s capacity", ErrBadCodedIndex, tok.RID, k.name)
	}
	for i, t := range k.tables {
		if t == tok.Table && t != TableNone {
			return tok.RID<<k.tagBits | uint32(i), nil
		}
	}
	return 0, fmt.Errorf("%w: table %s not valid for %s", ErrBadCodedIndex, tok.Table, k.name)
}
