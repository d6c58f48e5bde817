package shadowmem

import (
	"testing"

	"github.com/joeycumines/go-dprtlib/lid"
	"github.com/stretchr/testify/require"
)

func testShadowContract(t *testing.T, newShadow func() Shadow) {
	t.Helper()

	t.Run("absent returns zero", func(t *testing.T) {
		s := newShadow()
		require.Equal(t, lid.Zero, s.TestRead(0x1000))
		require.Equal(t, lid.Zero, s.TestWrite(0x1000))
	})

	t.Run("insert returns previous", func(t *testing.T) {
		s := newShadow()
		sig1 := lid.Pack(1, 0, 0, 0)
		sig2 := lid.Pack(2, 0, 0, 0)

		prev := s.InsertRead(0x2000, sig1)
		require.Equal(t, lid.Zero, prev)
		require.Equal(t, sig1, s.TestRead(0x2000))

		prev = s.InsertRead(0x2000, sig2)
		require.Equal(t, sig1, prev)
		require.Equal(t, sig2, s.TestRead(0x2000))
	})

	t.Run("read and write are independent", func(t *testing.T) {
		s := newShadow()
		rsig := lid.Pack(1, 0, 0, 0)
		wsig := lid.Pack(2, 0, 0, 0)
		s.UpdateRead(0x3000, rsig)
		s.UpdateWrite(0x3000, wsig)
		require.Equal(t, rsig, s.TestRead(0x3000))
		require.Equal(t, wsig, s.TestWrite(0x3000))
	})

	t.Run("remove clears only the requested side", func(t *testing.T) {
		s := newShadow()
		rsig := lid.Pack(1, 0, 0, 0)
		wsig := lid.Pack(2, 0, 0, 0)
		s.UpdateRead(0x4000, rsig)
		s.UpdateWrite(0x4000, wsig)

		s.RemoveRead(0x4000)
		require.Equal(t, lid.Zero, s.TestRead(0x4000))
		require.Equal(t, wsig, s.TestWrite(0x4000))

		s.RemoveWrite(0x4000)
		require.Equal(t, lid.Zero, s.TestWrite(0x4000))
	})

	t.Run("distinct addresses don't alias", func(t *testing.T) {
		s := newShadow()
		sig := lid.Pack(7, 1, 2, 3)
		s.UpdateWrite(0x10000, sig)
		require.Equal(t, lid.Zero, s.TestWrite(0x10001))
		require.Equal(t, lid.Zero, s.TestWrite(0x20000))
		require.Equal(t, sig, s.TestWrite(0x10000))
	})
}

func TestSparse(t *testing.T) {
	testShadowContract(t, func() Shadow { return NewSparse() })
}

func TestDense(t *testing.T) {
	testShadowContract(t, func() Shadow { return NewDense(8) })
}

func TestDenseDefaultLeafBits(t *testing.T) {
	d := NewDense(0)
	require.EqualValues(t, DefaultLeafBits, d.leafBits)
}

func TestDenseSpansMultipleLeaves(t *testing.T) {
	d := NewDense(4) // leaf size 16
	sig := lid.Pack(9, 0, 0, 0)
	d.UpdateWrite(0, sig)
	d.UpdateWrite(16, sig) // second leaf
	d.UpdateWrite(1<<20, sig)
	require.Equal(t, sig, d.TestWrite(0))
	require.Equal(t, sig, d.TestWrite(16))
	require.Equal(t, sig, d.TestWrite(1<<20))
	require.Equal(t, lid.Zero, d.TestWrite(15))
}

func TestNewSelectsBackend(t *testing.T) {
	require.IsType(t, &Dense{}, New(BackendDense, 8))
	require.IsType(t, &Sparse{}, New(BackendSparse, 0))
}
