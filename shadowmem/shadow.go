// Package shadowmem implements the per-address shadow memory: a mapping
// from an address to the most recent read-signature and write-signature
// observed at that address. Each Shadow instance is owned and accessed by
// exactly one analysis worker, so implementations need no internal
// locking: each worker owns exactly one Shadow instance.
package shadowmem

import "github.com/joeycumines/go-dprtlib/lid"

// Shadow is the contract satisfied by every backend. All operations must
// be O(1) amortized. Every Test on an address absent from the shadow
// returns the zero signature (lid.Zero).
type Shadow interface {
	// TestRead returns the current read-signature at addr, or lid.Zero.
	TestRead(addr uint64) lid.Signature
	// TestWrite returns the current write-signature at addr, or lid.Zero.
	TestWrite(addr uint64) lid.Signature

	// InsertRead sets the read-signature at addr, returning the previous
	// value (or lid.Zero if absent).
	InsertRead(addr uint64, sig lid.Signature) lid.Signature
	// InsertWrite sets the write-signature at addr, returning the
	// previous value (or lid.Zero if absent).
	InsertWrite(addr uint64, sig lid.Signature) lid.Signature

	// UpdateRead replaces the read-signature at addr in place.
	UpdateRead(addr uint64, sig lid.Signature)
	// UpdateWrite replaces the write-signature at addr in place.
	UpdateWrite(addr uint64, sig lid.Signature)

	// RemoveRead clears the read-signature at addr.
	RemoveRead(addr uint64)
	// RemoveWrite clears the write-signature at addr.
	RemoveWrite(addr uint64)
}

// sigPair holds the read and write signatures tracked for one address.
type sigPair struct {
	read, write lid.Signature
}

// Backend selects a Shadow implementation for New.
type Backend int

const (
	// BackendSparse selects a hash-map-based Shadow, appropriate for
	// address ranges that are not densely packed (the common case for
	// heap-heavy workloads sampled across a large virtual address
	// space).
	BackendSparse Backend = iota
	// BackendDense selects a two-level array-of-arrays Shadow,
	// appropriate for dense address ranges (e.g. profiling a bounded
	// arena or a stack-heavy workload) where the leaf-block allocation
	// cost is amortized over many nearby addresses.
	BackendDense
)

// New constructs a Shadow using the requested backend. leafBits is only
// used by BackendDense (see NewDense); it is ignored otherwise.
func New(backend Backend, leafBits uint) Shadow {
	switch backend {
	case BackendDense:
		return NewDense(leafBits)
	default:
		return NewSparse()
	}
}
