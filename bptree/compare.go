package bptree

import "cmp"

// Comparator is the external collaborator this package relies on for all
// ordering decisions: a total order over K, returning negative, zero, or
// positive. The core never inspects keys any other way.
type Comparator[K any] func(a, b K) int

// Ordered returns the default comparator for any type satisfying cmp.Ordered
// (the built-in integer, float and string kinds, plus any named type with
// one of those underlying kinds). It defers to the standard library's
// cmp.Compare, which already treats NaN as equal to itself and signed zeros
// as equal — exactly the behavior spec.md §4.1 asks for — so no bespoke
// float handling is needed here.
func Ordered[K cmp.Ordered]() Comparator[K] {
	return func(a, b K) int {
		return cmp.Compare(a, b)
	}
}

// checkTotalOrder reports whether compare(a, a) == 0, the cheapest possible
// fail-fast signal that a key produces non-total comparisons (the classic
// failure case being a NaN-like value compared against itself under a
// non-reflexive order). Call sites that accept externally supplied keys use
// this before trusting comparator output for structural decisions.
func checkTotalOrder[K any](compare Comparator[K], a K) bool {
	return compare(a, a) == 0
}
