// Package sigil decodes and re-emits the binary metadata embedded in managed
// executable images: token-addressed blobs encoding type signatures,
// custom-attribute argument payloads, and cross-references between metadata
// tables.
//
// The package turns raw blobs into a strongly typed, navigable object model,
// lets callers mutate that model, and re-serializes it into a semantically
// equivalent blob. Malformed input is expected: structural and referential
// decode failures are recovered locally with placeholder nodes and reported
// as [Diagnostic] values, so inspection of damaged or adversarial images
// keeps working.
//
// # Decoding
//
// Signature blobs decode with [DecodeTypeSig]; custom-attribute argument
// blobs decode with [DecodeCustomAttr] against the declared parameter types
// of the resolved constructor:
//
//	sig, diags := sigil.DecodeTypeSig(blob)
//	for _, d := range diags {
//	    log.Println(d)
//	}
//
// Entities that cross-reference other table rows ([CustomAttribute],
// [StandAloneSig]) live in a [Store], which maps tokens to entities and
// materializes each row at most once. Their referenced payloads resolve
// lazily on first access and cache the result.
//
// # Rebuilding
//
// After mutation, a [Rebuilder] walks the entity graph, assigns fresh tokens
// to entities constructed in memory, re-encodes every blob, and packs the
// results into a deduplicated blob heap:
//
//	rb := sigil.NewRebuilder(store, rowCounts)
//	row, err := rb.AddAttribute(attr)
//
// Re-decoding rebuilt output yields values structurally equal to the
// pre-rebuild model.
//
// The container file format (section layout, offset translation, table-stream
// parsing) and the high-level type system are external collaborators: the
// caller supplies raw byte ranges and a [Resolver] for member lookups. The
// blobio subpackage exposes the underlying blob cursor, and source provides
// byte-range adapters for the common input shapes.
package sigil
