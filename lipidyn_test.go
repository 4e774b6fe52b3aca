package lipidyn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopology(t *testing.T) {
	top := popcTop(t)
	assert.Equal(t, 6, top.Len())
	assert.Equal(t, "C12", top.Atom(0).Name)
	assert.Panics(t, func() { top.Atom(6) })
	_, err := MakeTopology(nil)
	require.Error(t, err)
}

func TestAtomIndexes(t *testing.T) {
	top := popcTop(t)
	assert.Equal(t, []int{0, 4}, AtomIndexes(top, "POPC", "C12"))
	assert.Equal(t, []int{5}, MolnameIndexes(top, "SOL"))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, MolnameIndexes(top, "POPC", "SOL"))
	assert.Nil(t, AtomIndexes(top, "POPE", "C12"))
}

func TestSplitByResidue(t *testing.T) {
	top := popcTop(t)
	groups := SplitByResidue(top, MolnameIndexes(top, "POPC"))
	require.Len(t, groups, 2)
	assert.Equal(t, []int{0, 1, 2}, groups[0])
	assert.Equal(t, []int{3, 4}, groups[1])
}

func TestTimerString(t *testing.T) {
	timer := StartTimer()
	assert.Equal(t, "0hour:0min:0sec", timer.String())
	assert.GreaterOrEqual(t, timer.Elapsed().Nanoseconds(), int64(0))
}
