package sigil

import "fmt"

// TableKind identifies one metadata table. The numbering follows the table
// indexes used in the physical image layout.
type TableKind uint8

// Metadata tables referenced by this package and by the predefined coded
// index kinds.
const (
	TableModule                 TableKind = 0x00
	TableTypeRef                TableKind = 0x01
	TableTypeDef                TableKind = 0x02
	TableField                  TableKind = 0x04
	TableMethodDef              TableKind = 0x06
	TableParam                  TableKind = 0x08
	TableInterfaceImpl          TableKind = 0x09
	TableMemberRef              TableKind = 0x0A
	TableConstant               TableKind = 0x0B
	TableCustomAttribute        TableKind = 0x0C
	TableDeclSecurity           TableKind = 0x0E
	TableStandAloneSig          TableKind = 0x11
	TableEvent                  TableKind = 0x14
	TableProperty               TableKind = 0x17
	TableModuleRef              TableKind = 0x1A
	TableTypeSpec               TableKind = 0x1B
	TableAssembly               TableKind = 0x20
	TableAssemblyRef            TableKind = 0x23
	TableFile                   TableKind = 0x26
	TableExportedType           TableKind = 0x27
	TableManifestResource       TableKind = 0x28
	TableGenericParam           TableKind = 0x2A
	TableMethodSpec             TableKind = 0x2B
	TableGenericParamConstraint TableKind = 0x2C

	// TableNone marks an unused slot in a coded index kind's table list.
	// Packed values whose tag selects such a slot are referential errors.
	TableNone TableKind = 0xFF
)

var tableNames = map[TableKind]string{
	TableModule:                 "Module",
	TableTypeRef:                "TypeRef",
	TableTypeDef:                "TypeDef",
	TableField:                  "Field",
	TableMethodDef:              "MethodDef",
	TableParam:                  "Param",
	TableInterfaceImpl:          "InterfaceImpl",
	TableMemberRef:              "MemberRef",
	TableConstant:               "Constant",
	TableCustomAttribute:        "CustomAttribute",
	TableDeclSecurity:           "DeclSecurity",
	TableStandAloneSig:          "StandAloneSig",
	TableEvent:                  "Event",
	TableProperty:               "Property",
	TableModuleRef:              "ModuleRef",
	TableTypeSpec:               "TypeSpec",
	TableAssembly:               "Assembly",
	TableAssemblyRef:            "AssemblyRef",
	TableFile:                   "File",
	TableExportedType:           "ExportedType",
	TableManifestResource:       "ManifestResource",
	TableGenericParam:           "GenericParam",
	TableMethodSpec:             "MethodSpec",
	TableGenericParamConstraint: "GenericParamConstraint",
	TableNone:                   "None",
}

func (k TableKind) String() string {
	if name, ok := tableNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Table(%#02x)", uint8(k))
}

// Token identifies a metadata entity as a (table, one-based row) pair.
//
// Tokens are the sole stable identity for cross-references: two lookups of
// the same token in the same [Store] return the same entity. The zero Token
// is nil and denotes "no reference"; an entity whose token is nil was
// constructed in memory and is not yet part of any table.
type Token struct {
	Table TableKind
	RID   uint32
}

// NewToken creates a token for the given table and one-based row number.
func NewToken(table TableKind, rid uint32) Token {
	return Token{Table: table, RID: rid}
}

// TokenFromUint32 unpacks the 32-bit on-disk form: table kind in the high
// byte, row number in the low 24 bits.
func TokenFromUint32(v uint32) Token {
	return Token{Table: TableKind(v >> 24), RID: v & 0x00FFFFFF}
}

// IsNil reports whether the token denotes "no reference".
func (t Token) IsNil() bool { return t.RID == 0 }

// Uint32 packs the token into its 32-bit on-disk form.
func (t Token) Uint32() uint32 {
	return uint32(t.Table)<<24 | t.RID&0x00FFFFFF
}

func (t Token) String() string {
	return fmt.Sprintf("%s[%#08x]", t.Table, t.Uint32())
}
