// Package dependence implements the single-access dependence analysis:
// given an Access Record and a Shadow Memory, it decides which of
// RAW/WAR/WAW/INIT (and their inter-iteration variants) to emit, and
// maintains the worker-local keyed, ordered dependence set that package
// mergeoutput later unions across workers.
package dependence

import "github.com/joeycumines/go-dprtlib/lid"

// Kind is the classification of a Dependence.
type Kind int

const (
	RAW Kind = iota
	WAR
	WAW
	INIT
	RAWII0
	RAWII1
	RAWII2
	WARII0
	WARII1
	WARII2
	WAWII0
	WAWII1
	WAWII2
)

// iiVariant selects the inter-iteration variant of a base kind
// (RAW/WAR/WAW) at nesting level, 0-indexed: each base kind owns three
// consecutive variants starting at RAWII0.
func iiVariant(base Kind, level int) Kind {
	return RAWII0 + base*3 + Kind(level)
}

// String renders a Kind using the same tokens used for the dependence
// output file's "<kind>" field.
func (k Kind) String() string {
	switch k {
	case RAW:
		return "RAW"
	case WAR:
		return "WAR"
	case WAW:
		return "WAW"
	case INIT:
		return "INIT"
	case RAWII0:
		return "RAW_II_0"
	case RAWII1:
		return "RAW_II_1"
	case RAWII2:
		return "RAW_II_2"
	case WARII0:
		return "WAR_II_0"
	case WARII1:
		return "WAR_II_1"
	case WARII2:
		return "WAR_II_2"
	case WAWII0:
		return "WAW_II_0"
	case WAWII1:
		return "WAW_II_1"
	case WAWII2:
		return "WAW_II_2"
	default:
		return "UNKNOWN"
	}
}

// Dependence is one reported dependence edge. Two Dependences are equal
// iff (Kind, SourceLID, VarName pointer identity) are equal.
type Dependence struct {
	Kind      Kind
	SinkLID   lid.LID
	SourceLID lid.LID
	VarName   *string
	AAVar     string

	// Addr is the accessed address at record time, kept only to let merge
	// re-resolve AAVar against the final Memory Manager; it is not part
	// of the dependence's equality key and never appears in output.
	Addr uint64
}

// less implements the total order used for deduplication and output:
// (kind, source_lid, var_name pointer identity). Pointer identity on the
// variable name is intentional: the instrumenter (or lid.Interner)
// guarantees pointer equality implies string equality, avoiding string
// comparison on the hot path.
func less(a, b Dependence) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.SourceLID != b.SourceLID {
		return a.SourceLID < b.SourceLID
	}
	return uintptr(ptr(a.VarName)) < uintptr(ptr(b.VarName))
}

func equalKey(a, b Dependence) bool {
	return a.Kind == b.Kind && a.SourceLID == b.SourceLID && ptr(a.VarName) == ptr(b.VarName)
}
