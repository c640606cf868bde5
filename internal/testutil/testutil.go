// Package testutil provides the shared fixtures used by the sigil tests:
// a configurable in-memory member-lookup service and blob assembly helpers.
package testutil

import (
	"fmt"

	"github.com/meigma/sigil"
	"github.com/meigma/sigil/blobio"
)

// Resolver is a configurable in-memory member-lookup service.
//
// Populate the maps with the tokens a test needs; everything else resolves
// to "unknown", which exercises the decoder's fallback paths.
type Resolver struct {
	Params      map[sigil.Token][]*sigil.TypeSig
	Enums       map[sigil.Token]sigil.ElementType
	SystemTypes map[sigil.Token]bool
	EnumNames   map[string]sigil.ElementType
	ValueTypes  map[sigil.Token]bool
}

// NewResolver returns an empty Resolver ready to populate.
func NewResolver() *Resolver {
	return &Resolver{
		Params:      make(map[sigil.Token][]*sigil.TypeSig),
		Enums:       make(map[sigil.Token]sigil.ElementType),
		SystemTypes: make(map[sigil.Token]bool),
		EnumNames:   make(map[string]sigil.ElementType),
		ValueTypes:  make(map[sigil.Token]bool),
	}
}

// ConstructorParams implements sigil.Resolver.
func (r *Resolver) ConstructorParams(ctor sigil.Token) ([]*sigil.TypeSig, error) {
	if ps, ok := r.Params[ctor]; ok {
		return ps, nil
	}
	return nil, fmt.Errorf("testutil: no constructor %s", ctor)
}

// ClassifyRef implements sigil.Resolver.
func (r *Resolver) ClassifyRef(tok sigil.Token) (sigil.RefClass, sigil.ElementType) {
	if r.SystemTypes[tok] {
		return sigil.RefSystemType, 0
	}
	if u, ok := r.Enums[tok]; ok {
		return sigil.RefEnum, u
	}
	return sigil.RefOther, 0
}

// EnumUnderlyingByName implements sigil.Resolver.
func (r *Resolver) EnumUnderlyingByName(name string) (sigil.ElementType, bool) {
	u, ok := r.EnumNames[name]
	return u, ok
}

// IsValueType implements sigil.Resolver.
func (r *Resolver) IsValueType(tok sigil.Token) bool {
	if _, ok := r.Enums[tok]; ok {
		return true
	}
	return r.ValueTypes[tok]
}

// Blob assembles a raw blob with a writer callback.
func Blob(build func(w *blobio.Writer)) []byte {
	w := blobio.NewWriter()
	build(w)
	return w.Bytes()
}

// AttrBlob assembles a custom-attribute blob: the standard prolog followed
// by whatever the callback writes (fixed arguments, the named-argument
// count, and any named arguments).
func AttrBlob(build func(w *blobio.Writer)) []byte {
	w := blobio.NewWriter()
	w.Uint16(1)
	build(w)
	return w.Bytes()
}
