package bptree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeighborQueries(t *testing.T) {
	tr := intTree(4)
	for _, k := range []int{10, 20, 30, 40, 50} {
		_, err := tr.Set(k, fmt.Sprintf("v%d", k), true)
		require.NoError(t, err)
	}

	hi, ok := tr.NextHigherPair(25)
	require.True(t, ok)
	assert.Equal(t, 30, hi.Key)

	lo, ok := tr.NextLowerPair(25)
	require.True(t, ok)
	assert.Equal(t, 20, lo.Key)

	// Exact hits are still strict: next-higher/lower skip the key itself.
	hi, ok = tr.NextHigherPair(30)
	require.True(t, ok)
	assert.Equal(t, 40, hi.Key)
	lo, ok = tr.NextLowerPair(30)
	require.True(t, ok)
	assert.Equal(t, 20, lo.Key)

	// Boundaries.
	_, ok = tr.NextLowerPair(10)
	assert.False(t, ok)
	_, ok = tr.NextHigherPair(50)
	assert.False(t, ok)

	lo, ok = tr.NextLowerPair(1000)
	require.True(t, ok)
	assert.Equal(t, 50, lo.Key)
	hi, ok = tr.NextHigherPair(-1000)
	require.True(t, ok)
	assert.Equal(t, 10, hi.Key)

	_, ok = New[int, string](Ordered[int](), 4).NextLowerPair(5)
	assert.False(t, ok)
}

func TestGetPairOrNextNeighbor(t *testing.T) {
	tr := intTree(4)
	for _, k := range []int{1, 3, 5} {
		_, err := tr.Set(k, fmt.Sprintf("v%d", k), true)
		require.NoError(t, err)
	}

	p, ok := tr.GetPairOrNextLower(3)
	require.True(t, ok)
	assert.Equal(t, 3, p.Key)

	p, ok = tr.GetPairOrNextLower(4)
	require.True(t, ok)
	assert.Equal(t, 3, p.Key)

	p, ok = tr.GetPairOrNextHigher(4)
	require.True(t, ok)
	assert.Equal(t, 5, p.Key)
}

func TestEditRangeReplaceDeleteBreak(t *testing.T) {
	tr := intTree(4)
	for i := 1; i <= 6; i++ {
		_, err := tr.Set(i, fmt.Sprintf("v%d", i), true)
		require.NoError(t, err)
	}
	low, high := 2, 5
	_, _, err := tr.EditRange(&low, &high, true, func(k int, v string) PairAction[string] {
		switch {
		case k == 3:
			return DeleteEntry[string]()
		case k == 5:
			return Break[string]("stopped")
		default:
			return Replace[string](v + "!")
		}
	})
	require.NoError(t, err)
	got := collectStrings(t, tr)
	assert.Equal(t, map[int]string{1: "v1", 2: "v2!", 4: "v4!", 5: "v5", 6: "v6"}, got)
}

func collectStrings(t *testing.T, tr *Tree[int, string]) map[int]string {
	t.Helper()
	out := make(map[int]string)
	tr.ForEachPair(func(k int, v string, _ int) PairAction[string] {
		out[k] = v
		return Continue[string]()
	})
	return out
}

// A callback that reaches back into the same tree and deletes a
// not-yet-visited key changes the leaf out from under EditRange's walk;
// this must surface as IllegalEdit rather than silently corrupting the walk
// (spec.md §5).
func TestEditRangeDetectsMutationDuringCallback(t *testing.T) {
	tr := intTree(8)
	for _, k := range []int{1, 2, 3, 4, 5} {
		_, err := tr.Set(k, fmt.Sprintf("v%d", k), true)
		require.NoError(t, err)
	}

	_, _, err := tr.EditRange(nil, nil, true, func(k int, v string) PairAction[string] {
		if k == 2 {
			_, derr := tr.Delete(3)
			require.NoError(t, derr)
		}
		return Continue[string]()
	})
	require.ErrorIs(t, err, ErrIllegalEdit)
}
