package bptree

import (
	"math/rand"
	"strconv"
)

// newDeterministicRand mirrors teacher's seeded rand.New(rand.NewSource(42))
// idiom for reproducible fuzz tests.
func newDeterministicRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func itoa(i int) string { return strconv.Itoa(i) }
