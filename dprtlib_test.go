package dprtlib

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/joeycumines/go-dprtlib/lid"
	"github.com/stretchr/testify/require"
)

// identityDecoder renders a LID as its plain decimal value, so test
// assertions can compare against literal numbers rather than a
// file:line table.
var identityDecoder = lid.DecoderFunc(func(id lid.LID) string {
	return strconv.FormatUint(uint64(id), 10)
})

func newTestRun(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DOT_DISCOPOP", dir)
	t.Setenv("DP_NUM_WORKERS", "0")
	resetForTest()
	t.Cleanup(resetForTest)
	SetDecoder(identityDecoder)
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

// scenario (a): two writes, one read, same address.
func TestScenarioTwoWritesOneRead(t *testing.T) {
	dir := newTestRun(t)

	v := "x"
	FuncEntry(lid.LID(100))
	Write(lid.LID(1), 0x100, &v, false)
	Write(lid.LID(2), 0x100, &v, false)
	Read(lid.LID(3), 0x100, &v, false)
	FuncExit(lid.LID(100), false)
	require.NoError(t, Finalize(lid.LID(999)))

	content := readFile(t, filepath.Join(dir, "profiler", "dependences.txt"))
	require.Contains(t, content, "1 NOM INIT:0:x|x\n")
	require.Contains(t, content, "2 NOM WAW:1:x|x\n")
	require.Contains(t, content, "3 NOM RAW:2:x|x\n")
	require.Contains(t, content, "999 END program\n")
}

// scenario (c): a stack-scope purge evicts shadow at the reused address,
// so the later read in a sibling function sees no dependence on the
// frame that already exited.
func TestScenarioStackScopeCleared(t *testing.T) {
	dir := newTestRun(t)

	v := "local"
	FuncEntry(lid.LID(10))
	Decl(lid.LID(0), 0x500, 8, &v)
	Write(lid.LID(1), 0x500, &v, false)
	FuncExit(lid.LID(10), false)

	FuncEntry(lid.LID(20))
	Read(lid.LID(2), 0x500, &v, false)
	FuncExit(lid.LID(20), false)

	require.NoError(t, Finalize(lid.LID(999)))

	content := readFile(t, filepath.Join(dir, "profiler", "dependences.txt"))
	require.NotContains(t, content, "2 NOM")
}

// scenario (d): a skip-flagged declaration is never itself an emittable
// dependence source, but a later read off a real write still resolves.
func TestScenarioSkipFlag(t *testing.T) {
	dir := newTestRun(t)

	v := "z"
	FuncEntry(lid.LID(30))
	Decl(lid.LID(0), 0x300, 8, &v)
	Write(lid.LID(1), 0x300, &v, false)
	Read(lid.LID(2), 0x300, &v, false)
	FuncExit(lid.LID(30), false)

	require.NoError(t, Finalize(lid.LID(999)))

	content := readFile(t, filepath.Join(dir, "profiler", "dependences.txt"))
	require.NotContains(t, content, "1 NOM")
	require.Contains(t, content, "2 NOM RAW:1:z|z\n")
}

func TestFinalizeIsIdempotent(t *testing.T) {
	newTestRun(t)

	FuncEntry(lid.LID(1))
	FuncExit(lid.LID(1), false)

	require.NoError(t, Finalize(lid.LID(2)))
	require.NoError(t, Finalize(lid.LID(3)), "a second Finalize call must be a silent no-op")
}
