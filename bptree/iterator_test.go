package bptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAscendingIteratorFromStart(t *testing.T) {
	tr := intTree(4)
	for k := 0; k < 20; k++ {
		_, err := tr.Set(k, itoa(k), true)
		require.NoError(t, err)
	}
	it := tr.Ascending(nil, nil)
	var got []int
	for it.Next() {
		got = append(got, it.Key())
	}
	assert.Len(t, got, 20)
	for i, k := range got {
		assert.Equal(t, i, k)
	}
}

func TestAscendingIteratorFromBound(t *testing.T) {
	tr := intTree(4)
	for k := 0; k < 20; k++ {
		_, err := tr.Set(k, itoa(k), true)
		require.NoError(t, err)
	}
	low := 10
	it := tr.Ascending(&low, nil)
	var got []int
	for it.Next() {
		got = append(got, it.Key())
	}
	assert.Equal(t, 10, got[0])
	assert.Len(t, got, 10)
}

func TestDescendingIteratorFromEnd(t *testing.T) {
	tr := intTree(4)
	for k := 0; k < 20; k++ {
		_, err := tr.Set(k, itoa(k), true)
		require.NoError(t, err)
	}
	it := tr.Descending(nil, false, nil)
	var got []int
	for it.Next() {
		got = append(got, it.Key())
	}
	require.Len(t, got, 20)
	assert.Equal(t, 19, got[0])
	assert.Equal(t, 0, got[len(got)-1])
}

func TestDescendingIteratorFromBoundSkipHighest(t *testing.T) {
	tr := intTree(4)
	for k := 0; k < 20; k++ {
		_, err := tr.Set(k, itoa(k), true)
		require.NoError(t, err)
	}
	high := 10
	it := tr.Descending(&high, true, nil)
	require.True(t, it.Next())
	assert.Equal(t, 9, it.Key())
}

func TestIteratorReusesBuffer(t *testing.T) {
	tr := intTree(4)
	for k := 0; k < 5; k++ {
		_, err := tr.Set(k, itoa(k), true)
		require.NoError(t, err)
	}
	buf := &Pair[int, string]{}
	it := tr.Ascending(nil, buf)
	for it.Next() {
		p := it.Pair()
		assert.Equal(t, buf.Key, p.Key)
		assert.Equal(t, buf.Value, p.Value)
	}
}

func TestIteratorOverEmptyTree(t *testing.T) {
	tr := intTree(4)
	it := tr.Ascending(nil, nil)
	assert.False(t, it.Next())
	it2 := tr.Descending(nil, false, nil)
	assert.False(t, it2.Next())
}
