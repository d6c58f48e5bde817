package dependence

import (
	"testing"

	"github.com/joeycumines/go-dprtlib/access"
	"github.com/joeycumines/go-dprtlib/lid"
	"github.com/joeycumines/go-dprtlib/shadowmem"
	"github.com/stretchr/testify/require"
)

func rec(isRead bool, l lid.LID, addr uint64, varName *string, skip bool) access.Record {
	return access.Record{IsRead: isRead, LID: l, Addr: addr, VarName: varName, Skip: skip}
}

// scenario (a): two writes, one read, same address.
func TestAnalyzerTwoWritesOneRead(t *testing.T) {
	a := NewAnalyzer(shadowmem.NewSparse())
	v := new(string)
	*v = "x"

	a.Analyze(rec(false, lid.LID(1), 0x100, v, false)) // write L1 -> INIT
	a.Analyze(rec(false, lid.LID(2), 0x100, v, false)) // write L2 -> WAW source L1
	a.Analyze(rec(true, lid.LID(3), 0x100, v, false))  // read L3 -> RAW source L2

	require.Equal(t, 1, a.Deps.Get(lid.LID(1)).Len())
	require.Equal(t, INIT, a.Deps.Get(lid.LID(1)).Items()[0].Kind)

	l2 := a.Deps.Get(lid.LID(2)).Items()
	require.Len(t, l2, 1)
	require.Equal(t, WAW, l2[0].Kind)
	require.Equal(t, lid.LID(1), l2[0].SourceLID)

	l3 := a.Deps.Get(lid.LID(3)).Items()
	require.Len(t, l3, 1)
	require.Equal(t, RAW, l3[0].Kind)
	require.Equal(t, lid.LID(2), l3[0].SourceLID)
}

// scenario (b): loop-carried RAW.
func TestAnalyzerLoopCarriedRAW(t *testing.T) {
	a := NewAnalyzer(shadowmem.NewSparse())
	v := new(string)
	*v = "y"

	r1 := rec(false, lid.LID(1), 0x200, v, false)
	r1.FrozenIteration = [3]uint32{0, 0, 0}
	a.Analyze(r1)

	r2 := rec(true, lid.LID(2), 0x200, v, false)
	r2.FrozenIteration = [3]uint32{1, 0, 0}
	a.Analyze(r2)

	deps := a.Deps.Get(lid.LID(2)).Items()
	require.Len(t, deps, 1)
	require.Equal(t, RAWII0, deps[0].Kind)
	require.Equal(t, lid.LID(1), deps[0].SourceLID)
}

// scenario (d): skip suppresses emission but still updates shadow.
func TestAnalyzerSkipSuppressesEmission(t *testing.T) {
	a := NewAnalyzer(shadowmem.NewSparse())
	v := new(string)
	*v = "z"

	decl := rec(false, lid.LID(10), 0x300, v, true) // skip=true
	a.Analyze(decl)

	write := rec(false, lid.LID(1), 0x300, v, false)
	a.Analyze(write)

	// no INIT/WAW emitted against the skipped decl
	set := a.Deps.Get(lid.LID(1))
	require.Nil(t, set, "skip must suppress emission entirely, including INIT")

	read := rec(true, lid.LID(2), 0x300, v, false)
	a.Analyze(read)

	readDeps := a.Deps.Get(lid.LID(2)).Items()
	require.Len(t, readDeps, 1)
	require.Equal(t, RAW, readDeps[0].Kind)
	require.Equal(t, lid.LID(1), readDeps[0].SourceLID)
}

func TestAnalyzerReadUpdatesOnlyReadSignature(t *testing.T) {
	a := NewAnalyzer(shadowmem.NewSparse())
	v := new(string)
	*v = "w"

	a.Analyze(rec(false, lid.LID(1), 0x400, v, false)) // write
	a.Analyze(rec(true, lid.LID(2), 0x400, v, false))  // read

	require.Equal(t, lid.LID(1), a.Shadow.TestWrite(0x400).LID())
	require.Equal(t, lid.LID(2), a.Shadow.TestRead(0x400).LID())
}

// scenario (c): a stack-clear access purges shadow at that address, so a
// later access sees no dependence on the frame that already exited.
func TestAnalyzerStackClearPurgesShadow(t *testing.T) {
	a := NewAnalyzer(shadowmem.NewSparse())
	v := new(string)
	*v = "local"

	a.Analyze(rec(false, lid.LID(1), 0x500, v, false)) // write in F1

	a.Analyze(access.Record{IsStackClear: true, Addr: 0x500})

	require.False(t, a.Shadow.TestWrite(0x500).Present())

	read := rec(true, lid.LID(2), 0x500, v, false) // read in F2, same address
	a.Analyze(read)

	require.Nil(t, a.Deps.Get(lid.LID(2)), "no dependence should survive a stack-clear purge")
}
