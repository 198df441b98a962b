package bptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFrom(t *testing.T, maxNodeSize int, pairs map[int]int) *Tree[int, int] {
	t.Helper()
	tr := New[int, int](Ordered[int](), maxNodeSize)
	for k, v := range pairs {
		_, err := tr.Set(k, v, true)
		require.NoError(t, err)
	}
	return tr
}

func collect(t *testing.T, tr *Tree[int, int]) map[int]int {
	t.Helper()
	out := make(map[int]int)
	tr.ForEachPair(func(k, v, _ int) PairAction[int] {
		out[k] = v
		return Continue[int]()
	})
	return out
}

// Scenario 3 of spec.md §8.
func TestDecomposeWithContiguousOverlap(t *testing.T) {
	a := buildFrom(t, 4, map[int]int{1: 1, 2: 2, 3: 3, 4: 4, 5: 5, 6: 6})
	b := buildFrom(t, 4, map[int]int{3: 30, 4: 40, 5: 50, 6: 60, 7: 70})

	var shared [][3]int
	_, _, err := ForEachSharedKey[int, int](a, b, func(k, va, vb int) PairAction[struct{}] {
		shared = append(shared, [3]int{k, va, vb})
		return Continue[struct{}]()
	})
	require.NoError(t, err)
	assert.Equal(t, [][3]int{{3, 3, 30}, {4, 4, 40}, {5, 5, 50}, {6, 6, 60}}, shared)

	leftPreferred := func(k, va, vb int) (int, bool) { return va, true }
	inter, err := Intersect(a, b, leftPreferred)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{3: 3, 4: 4, 5: 5, 6: 6}, collect(t, inter))

	require.NoError(t, a.CheckValid())
	require.NoError(t, b.CheckValid())
	assert.Equal(t, 6, a.Size())
	assert.Equal(t, 5, b.Size())
}

// Scenario 4 of spec.md §8.
func TestUnionWithDeletingCombine(t *testing.T) {
	a := buildFrom(t, 4, map[int]int{1: 10, 2: 20, 3: 30, 4: 40})
	b := buildFrom(t, 4, map[int]int{2: 200, 3: 300, 4: 400, 5: 500})

	combine := func(k, va, vb int) (int, bool) {
		if k == 3 {
			return 0, false
		}
		return va + vb, true
	}
	u, err := Union(a, b, combine)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 10, 2: 220, 4: 440, 5: 500}, collect(t, u))
}

// Scenario 5 of spec.md §8.
func TestSubtractBoundary(t *testing.T) {
	const m = 4
	a := New[int, int](Ordered[int](), m)
	for k := 0; k < 2*m; k++ {
		_, err := a.Set(k, k, true)
		require.NoError(t, err)
	}
	b := New[int, int](Ordered[int](), m)
	for k := m - 1; k < 3*m-1; k++ {
		_, err := b.Set(k, k, true)
		require.NoError(t, err)
	}
	diff, err := Subtract(a, b)
	require.NoError(t, err)
	want := make(map[int]int)
	for k := 0; k < m-1; k++ {
		want[k] = k
	}
	assert.Equal(t, want, collect(t, diff))
}

func TestSetOpsRejectMismatchedComparators(t *testing.T) {
	a := New[int, int](Ordered[int](), 4)
	other := func(x, y int) int { return -Ordered[int]()(x, y) }
	b := New[int, int](other, 4)
	_, _, err := ForEachSharedKey[int, int](a, b, func(k, va, vb int) PairAction[struct{}] { return Continue[struct{}]() })
	require.ErrorIs(t, err, ErrComparatorMismatch)
}

func TestSetOpsRejectMismatchedBranchingFactor(t *testing.T) {
	a := New[int, int](Ordered[int](), 4)
	b := New[int, int](Ordered[int](), 8)
	_, err := Union(a, b, func(k, va, vb int) (int, bool) { return va, true })
	require.ErrorIs(t, err, ErrBranchingFactorMismatch)

	_, err = Subtract(a, b)
	require.ErrorIs(t, err, ErrBranchingFactorMismatch)

	_, err = Intersect(a, b, func(k, va, vb int) (int, bool) { return va, true })
	require.ErrorIs(t, err, ErrBranchingFactorMismatch)
}

func TestAlgebraicLaws(t *testing.T) {
	a := buildFrom(t, 4, map[int]int{1: 1, 2: 2, 3: 3, 4: 4, 5: 5})
	b := buildFrom(t, 4, map[int]int{3: 3, 4: 4, 5: 5, 6: 6, 7: 7})
	keep := func(k, va, vb int) (int, bool) { return va, true }

	aMinusB, err := Subtract(a, b)
	require.NoError(t, err)
	aIntersectB, err := Intersect(a, b, keep)
	require.NoError(t, err)
	aUnionB, err := Union(a, b, keep)
	require.NoError(t, err)

	// Partition: (A\B) union (A intersect B) == A.
	recombined, err := Union(aMinusB, aIntersectB, keep)
	require.NoError(t, err)
	assert.Equal(t, collect(t, a), collect(t, recombined))

	// Recovery: (A union B) \ (A\B) == B.
	recovered, err := Subtract(aUnionB, aMinusB)
	require.NoError(t, err)
	assert.Equal(t, collect(t, b), collect(t, recovered))

	// Idempotence.
	aUnionA, err := Union(a, a, keep)
	require.NoError(t, err)
	assert.Equal(t, collect(t, a), collect(t, aUnionA))
	aIntersectA, err := Intersect(a, a, keep)
	require.NoError(t, err)
	assert.Equal(t, collect(t, a), collect(t, aIntersectA))

	// Cardinality: |A union B| == |A| + |B| - |A intersect B|.
	assert.Equal(t, a.Size()+b.Size()-aIntersectB.Size(), aUnionB.Size())
}

func TestForEachKeyNotIn(t *testing.T) {
	a := buildFrom(t, 4, map[int]int{1: 1, 2: 2, 3: 3})
	b := buildFrom(t, 4, map[int]int{2: 99})
	var got []int
	_, _, err := ForEachKeyNotIn[int, int](a, b, func(k, v int) PairAction[struct{}] {
		got = append(got, k)
		return Continue[struct{}]()
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 3}, got)
}
