package scope

import (
	"testing"

	"github.com/joeycumines/go-dprtlib/lid"
	"github.com/stretchr/testify/require"
)

func TestLoopManagerIterationCensus(t *testing.T) {
	m := NewLoopManager()
	m.Enter(lid.LID(10), 0)
	require.False(t, m.Empty())

	m.Iter(lid.LID(10))
	m.Iter(lid.LID(10))

	census := m.Census()
	require.EqualValues(t, 2, census[lid.LID(10)])

	m.Exit(lid.LID(10), 0)
	require.True(t, m.Empty())
}

func TestLoopManagerScopeChangeFlag(t *testing.T) {
	m := NewLoopManager()
	m.Enter(lid.LID(1), 0)

	require.False(t, m.ConsumeScopeChange(), "no iteration yet")

	m.Iter(lid.LID(1))
	require.True(t, m.ConsumeScopeChange())
	require.False(t, m.ConsumeScopeChange(), "flag resets after consumption")
}

func TestLoopManagerCurrentIterationSignature(t *testing.T) {
	m := NewLoopManager()
	m.Enter(lid.LID(1), 0)
	m.Iter(lid.LID(1))
	m.Enter(lid.LID(2), 0)
	m.Iter(lid.LID(2))
	m.Iter(lid.LID(2))

	sig := m.CurrentIterationSignature()
	require.EqualValues(t, 2, sig[0], "innermost loop (lid 2) iteration")
	require.EqualValues(t, 1, sig[1], "next enclosing loop (lid 1) iteration")
	require.EqualValues(t, 0, sig[2], "no third level")
}

func TestLoopManagerCleanFunctionExit(t *testing.T) {
	m := NewLoopManager()
	m.Enter(lid.LID(1), 0)
	m.Enter(lid.LID(2), 1)
	m.Enter(lid.LID(3), 1)

	// function at stack level 1 exits without matching loop exits
	m.CleanFunctionExit(1, lid.LID(99))

	require.Equal(t, 1, m.Depth(), "only the level-0 loop frame should remain")
}

func TestLoopManagerExitPopsToMatch(t *testing.T) {
	m := NewLoopManager()
	m.Enter(lid.LID(1), 0)
	m.Enter(lid.LID(2), 0)
	m.Enter(lid.LID(3), 0)

	m.Exit(lid.LID(2), 0)
	require.Equal(t, 1, m.Depth())
}
