package sigil

// CustomAttribute is one custom-attribute table row: a constructor
// reference, an owner reference, and the argument blob. The argument payload
// and the owner entity both resolve lazily on first access and cache their
// results.
//
// An attribute created by DecodeCustomAttribute is bound: it has a real
// token and a back-reference to its store. One created by NewCustomAttribute
// is unbound (nil token, in-memory only) until a rebuild assigns it a row.
type CustomAttribute struct {
	tok    Token
	store  *Store
	res    Resolver
	ctor   Token
	parent Token
	raw    []byte

	payload Lazy[attrPayload]
	owner   Lazy[ownerResult]
}

type attrPayload struct {
	sig   *CustomAttrSig
	diags Diagnostics
}

type ownerResult struct {
	m   Member
	err error
}

// DecodeCustomAttribute creates the entity for a backed attribute row. The
// argument blob is retained, not decoded; decoding happens on first
// Signature or Diagnostics access.
func (s *Store) DecodeCustomAttribute(tok, ctor, parent Token, raw []byte) *CustomAttribute {
	return &CustomAttribute{
		tok:    tok,
		store:  s,
		res:    s.res,
		ctor:   ctor,
		parent: parent,
		raw:    raw,
	}
}

// NewCustomAttribute constructs an in-memory attribute with an
// already-built signature. It is unbound until rebuilt into a store.
func NewCustomAttribute(ctor Token, sig *CustomAttrSig) *CustomAttribute {
	a := &CustomAttribute{ctor: ctor}
	a.payload.Set(attrPayload{sig: sig})
	return a
}

// Token returns the attribute's token; the nil token for unbound entities.
func (a *CustomAttribute) Token() Token { return a.tok }

// Constructor returns the attribute's constructor reference, a MethodDef or
// MemberRef token.
func (a *CustomAttribute) Constructor() Token { return a.ctor }

// ParentToken returns the owner reference without resolving it.
func (a *CustomAttribute) ParentToken() Token { return a.parent }

// RawBlob returns the backing argument blob, nil for entities built or
// overwritten in memory.
func (a *CustomAttribute) RawBlob() []byte { return a.raw }

// Signature returns the decoded argument payload, decoding the backing blob
// on first access. When the constructor cannot be resolved the signature
// stays undecoded and Signature returns nil; Diagnostics reports why.
func (a *CustomAttribute) Signature() *CustomAttrSig { return a.decoded().sig }

// Diagnostics returns the problems recovered while decoding the argument
// payload, forcing the decode if it has not happened yet.
func (a *CustomAttribute) Diagnostics() Diagnostics { return a.decoded().diags }

func (a *CustomAttribute) decoded() attrPayload {
	return a.payload.Get(func() attrPayload {
		var diags Diagnostics
		var params []*TypeSig
		if a.res != nil && !a.ctor.IsNil() {
			ps, err := a.res.ConstructorParams(a.ctor)
			if err != nil {
				diags.add(DiagReferential, 0, "constructor %s unresolved: %v", a.ctor, err)
				return attrPayload{diags: diags}
			}
			params = ps
		}
		sig, ds := DecodeCustomAttr(a.raw, params, a.res)
		return attrPayload{sig: sig, diags: append(diags, ds...)}
	})
}

// SetSignature overwrites the argument payload. The backing blob is
// discarded; the next rebuild re-encodes from sig. The token is unaffected.
func (a *CustomAttribute) SetSignature(sig *CustomAttrSig) {
	a.payload.Set(attrPayload{sig: sig})
	a.raw = nil
}

// Parent resolves the attribute's owner through the store, caching the
// entity; repeated calls return the identical object.
func (a *CustomAttribute) Parent() (Member, error) {
	r := a.owner.Get(func() ownerResult {
		if a.store == nil {
			return ownerResult{err: ErrUnknownMember}
		}
		m, err := a.store.Member(a.parent)
		return ownerResult{m: m, err: err}
	})
	return r.m, r.err
}

// SetParent redirects the attribute to a new owner and resets the cached
// entity derived from the old reference.
func (a *CustomAttribute) SetParent(tok Token) {
	a.parent = tok
	a.owner.Reset()
}

// bind assigns a row to a previously unbound entity during rebuild.
func (a *CustomAttribute) bind(tok Token, s *Store) {
	a.tok = tok
	a.store = s
	if a.res == nil && s != nil {
		a.res = s.res
	}
}

// StandAloneSig is a stand-alone signature row. Its payload decodes on first
// access and caches the result.
type StandAloneSig struct {
	tok Token
	raw []byte

	payload Lazy[sigPayload]
}

type sigPayload struct {
	sig   *TypeSig
	diags Diagnostics
}

// DecodeStandAloneSig creates the entity for a backed signature row.
func (s *Store) DecodeStandAloneSig(tok Token, raw []byte) *StandAloneSig {
	return &StandAloneSig{tok: tok, raw: raw}
}

// NewStandAloneSig constructs an in-memory signature entity, unbound until
// rebuilt into a store.
func NewStandAloneSig(sig *TypeSig) *StandAloneSig {
	ss := &StandAloneSig{}
	ss.payload.Set(sigPayload{sig: sig})
	return ss
}

// Token returns the row's token; the nil token for unbound entities.
func (ss *StandAloneSig) Token() Token { return ss.tok }

// Payload returns the decoded signature, decoding the backing blob on first
// access.
func (ss *StandAloneSig) Payload() *TypeSig { return ss.decoded().sig }

// Diagnostics returns the problems recovered while decoding the payload.
func (ss *StandAloneSig) Diagnostics() Diagnostics { return ss.decoded().diags }

func (ss *StandAloneSig) decoded() sigPayload {
	return ss.payload.Get(func() sigPayload {
		sig, diags := DecodeTypeSig(ss.raw)
		return sigPayload{sig: sig, diags: diags}
	})
}

// SetPayload overwrites the signature; the backing blob is discarded.
func (ss *StandAloneSig) SetPayload(sig *TypeSig) {
	ss.payload.Set(sigPayload{sig: sig})
	ss.raw = nil
}

func (ss *StandAloneSig) bind(tok Token) {
	ss.tok = tok
}
