package bptree

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intTree(maxNodeSize int) *Tree[int, string] {
	return New[int, string](Ordered[int](), maxNodeSize)
}

func TestBasicPointOperations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cowbtree")
	defer teardown()

	tr := intTree(4)
	assert.True(t, tr.IsEmpty())

	inserted, err := tr.Set(5, "five", true)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = tr.Set(5, "FIVE", true)
	require.NoError(t, err)
	assert.False(t, inserted)

	v, ok := tr.GetOK(5)
	require.True(t, ok)
	assert.Equal(t, "FIVE", v)

	assert.Equal(t, "default", tr.Get(99, "default"))
	assert.True(t, tr.Has(5))
	assert.False(t, tr.Has(99))

	removed, err := tr.Delete(5)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.True(t, tr.IsEmpty())

	removed, err = tr.Delete(5)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSetIfNotPresent(t *testing.T) {
	tr := intTree(4)
	ok, err := tr.SetIfNotPresent(1, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = tr.SetIfNotPresent(1, "b")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "a", tr.Get(1, ""))
}

// naiveFloatCompare, unlike Ordered[float64]() (whose cmp.Compare gives NaN a
// defined, reflexive place in the order), falls through to a non-reflexive
// result for NaN, modeling a hand-rolled Comparator that violates a total
// order — exactly what checkTotalOrder exists to catch (spec.md §4.1).
func naiveFloatCompare(a, b float64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	if a == b {
		return 0
	}
	return 1
}

func TestNonTotalKeyRejectedOnWritePaths(t *testing.T) {
	nan := math.NaN()
	tr := New[float64, string](naiveFloatCompare, 4)
	_, err := tr.Set(1, "a", true)
	require.NoError(t, err)

	_, err = tr.Set(nan, "x", true)
	require.ErrorIs(t, err, ErrIllegalKey)
	assert.False(t, tr.Has(nan))

	_, err = tr.Delete(nan)
	require.ErrorIs(t, err, ErrIllegalKey)
}

func TestFrozenTreeRejectsMutation(t *testing.T) {
	tr := intTree(4)
	tr.Freeze()
	_, err := tr.Set(1, "a", true)
	require.ErrorIs(t, err, ErrFrozenMutation)
	_, err = tr.Delete(1)
	require.ErrorIs(t, err, ErrFrozenMutation)
	tr.Unfreeze()
	_, err = tr.Set(1, "a", true)
	require.NoError(t, err)
}

// Scenario 1 of spec.md §8: while 8 and 9 are inserted, the overfull right
// leaf rotates its smallest entry into the left leaf instead of splitting,
// so the root still has two children. Both leaves are then full, and the
// final insert of 5 splits a leaf without growing the tree's height.
func TestRotateOnFullNeighbor(t *testing.T) {
	tr := intTree(4)
	for k := 1; k <= 4; k++ {
		_, err := tr.Set(k, "v", true)
		require.NoError(t, err)
	}
	for k := 6; k <= 9; k++ {
		_, err := tr.Set(k, "v", true)
		require.NoError(t, err)
	}
	require.Equal(t, 1, tr.Height())
	require.Len(t, tr.root.(*internal[int, string]).children, 2, "rotations should have kept the root at two children")

	_, err := tr.Set(5, "v", true)
	require.NoError(t, err)

	assert.Equal(t, 1, tr.Height(), "the insert into full leaves should not grow the tree's height")
	require.NoError(t, tr.CheckValid())
	for k := 1; k <= 9; k++ {
		assert.True(t, tr.Has(k))
	}
	assert.Equal(t, 9, tr.Size())
}

// Scenario 2 of spec.md §8: clone unshares only the path it mutates.
func TestCloneUnsharesMinimally(t *testing.T) {
	base := intTree(4)
	for k := 0; k < 100; k++ {
		_, err := base.Set(k, "orig", true)
		require.NoError(t, err)
	}
	clone := base.Clone()
	_, err := clone.Set(42, "x", true)
	require.NoError(t, err)

	require.NoError(t, base.CheckValid())
	require.NoError(t, clone.CheckValid())
	assert.Equal(t, "orig", base.Get(42, ""))
	assert.Equal(t, "x", clone.Get(42, ""))
	for k := 0; k < 100; k++ {
		if k == 42 {
			continue
		}
		assert.Equal(t, "orig", clone.Get(k, ""))
	}
}

func TestGreedyCloneIsolatesCompletely(t *testing.T) {
	base := intTree(4)
	for k := 0; k < 50; k++ {
		_, err := base.Set(k, "orig", true)
		require.NoError(t, err)
	}
	gc := base.GreedyClone(true)
	_, err := gc.Set(10, "changed", true)
	require.NoError(t, err)
	assert.Equal(t, "orig", base.Get(10, ""))
	assert.Equal(t, "changed", gc.Get(10, ""))
}

func TestMinMaxKey(t *testing.T) {
	tr := intTree(4)
	_, ok := tr.MinKey()
	assert.False(t, ok)

	for _, k := range []int{5, 1, 9, 3} {
		_, err := tr.Set(k, "v", true)
		require.NoError(t, err)
	}
	min, ok := tr.MinKey()
	require.True(t, ok)
	assert.Equal(t, 1, min)
	max, ok := tr.MaxKey()
	require.True(t, ok)
	assert.Equal(t, 9, max)
}

func TestDeleteDrivesUnderflowAndCollapse(t *testing.T) {
	tr := intTree(4)
	for k := 0; k < 64; k++ {
		_, err := tr.Set(k, "v", true)
		require.NoError(t, err)
	}
	for k := 0; k < 60; k++ {
		_, err := tr.Delete(k)
		require.NoError(t, err)
	}
	require.NoError(t, tr.CheckValid())
	assert.Equal(t, 4, tr.Size())
	for k := 60; k < 64; k++ {
		assert.True(t, tr.Has(k))
	}
}

func TestRandomizedOperationsAgainstReferenceMap(t *testing.T) {
	tr := intTree(4)
	reference := make(map[int]int)
	rng := newDeterministicRand(42)

	for i := 0; i < 2000; i++ {
		key := rng.Intn(200)
		switch rng.Intn(3) {
		case 0, 1:
			reference[key] = i
			_, err := tr.Set(key, itoa(i), true)
			require.NoError(t, err)
		case 2:
			delete(reference, key)
			_, err := tr.Delete(key)
			require.NoError(t, err)
		}
	}

	require.NoError(t, tr.CheckValid())
	assert.Equal(t, len(reference), tr.Size())
	for k, v := range reference {
		got, ok := tr.GetOK(k)
		require.True(t, ok)
		assert.Equal(t, itoa(v), got)
	}
}
