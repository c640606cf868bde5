package sigil

import (
	"fmt"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/sigil/blobio"
)

// BlobHeap packs encoded blobs into one byte range for a new image layout.
//
// Each blob is stored with its compressed length prefix. Identical blobs
// share one heap offset, keyed by content digest; offset 0 is the empty
// blob, matching the physical heap convention of a single leading zero byte.
type BlobHeap struct {
	buf  []byte
	offs map[digest.Digest]uint32
}

// NewBlobHeap creates an empty heap.
func NewBlobHeap() *BlobHeap {
	return &BlobHeap{
		buf:  []byte{0},
		offs: make(map[digest.Digest]uint32),
	}
}

// Add stores blob and returns its heap offset. Adding the same content
// twice returns the same offset.
func (h *BlobHeap) Add(blob []byte) (uint32, error) {
	if len(blob) == 0 {
		return 0, nil
	}
	key := digest.FromBytes(blob)
	if off, ok := h.offs[key]; ok {
		return off, nil
	}
	w := blobio.NewWriter()
	if err := w.CompressedUint(uint32(len(blob))); err != nil {
		return 0, err
	}
	off := uint32(len(h.buf))
	h.buf = append(h.buf, w.Bytes()...)
	h.buf = append(h.buf, blob...)
	h.offs[key] = off
	return off, nil
}

// Bytes returns the packed heap.
func (h *BlobHeap) Bytes() []byte { return h.buf }

// Blob reads back the length-prefixed blob at off.
func (h *BlobHeap) Blob(off uint32) ([]byte, error) {
	if int64(off) >= int64(len(h.buf)) {
		return nil, blobio.ErrUnexpectedEOF
	}
	r := blobio.NewReader(h.buf[off:])
	n, err := r.CompressedUint()
	if err != nil {
		return nil, err
	}
	return r.Bytes(int(n))
}

// RebuiltRow is the table-row data produced for one entity: its (possibly
// freshly assigned) token, the re-encoded coded indexes, and the offset of
// its re-encoded blob in the heap.
type RebuiltRow struct {
	Token  Token
	Ctor   uint32 // packed CustomAttributeType reference; attributes only
	Parent uint32 // packed HasCustomAttribute reference; attributes only
	Blob   uint32
}

// Rebuilder re-encodes a mutated entity graph into fresh blobs and tokens.
//
// Entities still unbound when added receive sequential rows after the
// existing ones and are bound into the target store. Every blob is
// re-encoded from current field values through the signature and attribute
// codecs, so re-decoding the output reproduces the in-memory model.
// Rebuilder is not safe for concurrent use; run one rebuild at a time.
type Rebuilder struct {
	store *Store
	heap  *BlobHeap
	next  map[TableKind]uint32
	rows  []RebuiltRow
}

// NewRebuilder creates a Rebuilder targeting store. rowCounts gives the
// number of existing rows per table in the new layout; fresh tokens are
// assigned after them.
func NewRebuilder(store *Store, rowCounts map[TableKind]uint32) *Rebuilder {
	next := make(map[TableKind]uint32, len(rowCounts))
	for k, n := range rowCounts {
		next[k] = n + 1
	}
	return &Rebuilder{store: store, heap: NewBlobHeap(), next: next}
}

func (rb *Rebuilder) resolver() Resolver {
	if rb.store == nil {
		return nil
	}
	return rb.store.Resolver()
}

func (rb *Rebuilder) assign(table TableKind) Token {
	rid := rb.next[table]
	if rid == 0 {
		rid = 1
	}
	rb.next[table] = rid + 1
	return Token{Table: table, RID: rid}
}

// AddAttribute re-encodes a's argument payload and emits its table row,
// assigning a token first when a is unbound.
func (rb *Rebuilder) AddAttribute(a *CustomAttribute) (RebuiltRow, error) {
	sig := a.Signature()
	if sig == nil {
		return RebuiltRow{}, fmt.Errorf("%w: %s", ErrNoSignature, a.Constructor())
	}
	refreshAttrFlags(sig, rb.resolver())

	blob, err := EncodeCustomAttr(sig)
	if err != nil {
		return RebuiltRow{}, err
	}
	off, err := rb.heap.Add(blob)
	if err != nil {
		return RebuiltRow{}, err
	}
	ctor, err := CustomAttributeType.Encode(a.Constructor())
	if err != nil {
		return RebuiltRow{}, err
	}
	parent, err := HasCustomAttribute.Encode(a.ParentToken())
	if err != nil {
		return RebuiltRow{}, err
	}
	if a.Token().IsNil() {
		a.bind(rb.assign(TableCustomAttribute), rb.store)
		if rb.store != nil {
			rb.store.put(a)
		}
	}
	row := RebuiltRow{Token: a.Token(), Ctor: ctor, Parent: parent, Blob: off}
	rb.rows = append(rb.rows, row)
	return row, nil
}

// AddStandAloneSig re-encodes ss's payload and emits its table row.
func (rb *Rebuilder) AddStandAloneSig(ss *StandAloneSig) (RebuiltRow, error) {
	sig := ss.Payload()
	refreshSigFlags(sig, rb.resolver())

	blob, err := EncodeTypeSig(sig)
	if err != nil {
		return RebuiltRow{}, err
	}
	off, err := rb.heap.Add(blob)
	if err != nil {
		return RebuiltRow{}, err
	}
	if ss.Token().IsNil() {
		ss.bind(rb.assign(TableStandAloneSig))
		if rb.store != nil {
			rb.store.put(ss)
		}
	}
	row := RebuiltRow{Token: ss.Token(), Blob: off}
	rb.rows = append(rb.rows, row)
	return row, nil
}

// Rows returns the rows emitted so far, in emit order.
func (rb *Rebuilder) Rows() []RebuiltRow { return rb.rows }

// Heap returns the packed blob heap.
func (rb *Rebuilder) Heap() *BlobHeap { return rb.heap }

// refreshSigFlags re-derives each generic instantiation's cached
// value-type flag from the resolved generic type, keeping the flag
// consistent after mutation.
func refreshSigFlags(s *TypeSig, res Resolver) {
	if s == nil || res == nil {
		return
	}
	if s.Kind == SigGenericInst && !s.Ref.IsNil() {
		s.IsValueType = res.IsValueType(s.Ref)
	}
	refreshSigFlags(s.Inner, res)
	for _, a := range s.Args {
		refreshSigFlags(a, res)
	}
}

func refreshAttrFlags(sig *CustomAttrSig, res Resolver) {
	if res == nil {
		return
	}
	for _, a := range sig.Fixed {
		refreshSigFlags(a.Type, res)
		refreshValueFlags(a.Value, res)
	}
	for _, na := range sig.Named {
		refreshSigFlags(na.Type, res)
		refreshValueFlags(na.Value, res)
	}
}

func refreshValueFlags(v any, res Resolver) {
	switch x := v.(type) {
	case *TypeSig:
		refreshSigFlags(x, res)
	case *CAArray:
		for _, e := range x.Elems {
			refreshValueFlags(e, res)
		}
	case *BoxedValue:
		refreshSigFlags(x.Type, res)
		refreshValueFlags(x.Value, res)
	}
}
