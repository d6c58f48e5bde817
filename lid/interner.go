package lid

import "sync"

// Interner deduplicates variable name strings so that pointer equality of
// the returned *string implies string equality. The hot-path dependence
// comparison in package dependence relies on this: comparing
// unsafe.Pointer(varNamePtr) is far cheaper than comparing string
// contents, and is sound only because every name entering the pipeline
// has passed through an Interner.
//
// If the instrumentation collaborator already interns names (as the
// original C++ instrumenter does, by construction of its string table),
// callers may skip Interner and pass the collaborator's own stable
// pointers directly into access.Record.VarName.
type Interner struct {
	mu    sync.Mutex
	table map[string]*string
}

// NewInterner constructs an empty Interner.
func NewInterner() *Interner {
	return &Interner{table: make(map[string]*string)}
}

// Intern returns a stable *string for s, reusing a prior allocation if s
// has been seen before.
func (in *Interner) Intern(s string) *string {
	in.mu.Lock()
	defer in.mu.Unlock()
	if p, ok := in.table[s]; ok {
		return p
	}
	p := new(string)
	*p = s
	in.table[s] = p
	return p
}
