// Package bptree implements an in-memory, ordered key→value container as a
// B+ tree with copy-on-write structural sharing, plus a family of two-tree
// set operations (diff, shared-key iteration, union, intersection,
// subtraction). Diff skips reference-identical subtrees, and shared-key
// iteration and intersection step over subtrees that lie wholly between
// the other tree's keys; union and subtraction visit every key of both
// trees and rebuild the result from scratch.
package bptree

import (
	"cowbtree/common"

	"github.com/google/uuid"
)

const (
	minMaxNodeSize     = 4
	maxMaxNodeSize     = 256
	defaultMaxNodeSize = 32
)

// Tree is an ordered map over K, V backed by a B+ tree. The zero value is
// not usable; construct with New. A Tree's root is shared between clones
// until a write path traverses it (invariant 6/7 of spec.md §3); the empty
// tree is represented by a nil root, a zero-allocation stand-in for the
// "distinguished immutable empty-leaf sentinel" of spec.md invariant 8.
type Tree[K any, V any] struct {
	id          uuid.UUID
	root        node[K, V]
	compare     Comparator[K]
	maxNodeSize int
	frozen      bool
}

// New constructs an empty tree. maxNodeSize is clamped to [4, 256] and
// defaults to 32 when zero or out of range (spec.md §6). compare must be
// non-nil; a nil comparator makes the tree unusable and New panics, since
// there is no safe default to fall back to for an arbitrary K (use Ordered
// explicitly for comparable key types).
func New[K any, V any](compare Comparator[K], maxNodeSize int) *Tree[K, V] {
	common.Assert(compare != nil, "New requires a non-nil comparator")
	if maxNodeSize < minMaxNodeSize || maxNodeSize > maxMaxNodeSize {
		maxNodeSize = defaultMaxNodeSize
	}
	return &Tree[K, V]{
		id:          uuid.New(),
		compare:     compare,
		maxNodeSize: maxNodeSize,
	}
}

// NewFromEntries bulk-loads keys/values already in strictly ascending
// order into a fresh tree (spec.md §6's `new(entries?, ...)` form, and the
// reassembly strategy behind Intersect). Returns BulkLoadOrder if the input
// is not strictly ascending.
func NewFromEntries[K any, V any](compare Comparator[K], keys []K, values []V, maxNodeSize int) (*Tree[K, V], error) {
	common.Assert(compare != nil, "NewFromEntries requires a non-nil comparator")
	if maxNodeSize < minMaxNodeSize || maxNodeSize > maxMaxNodeSize {
		maxNodeSize = defaultMaxNodeSize
	}
	root, err := buildFromSortedPairs(compare, keys, values, maxNodeSize)
	if err != nil {
		return nil, err
	}
	return &Tree[K, V]{
		id:          uuid.New(),
		root:        root,
		compare:     compare,
		maxNodeSize: maxNodeSize,
	}, nil
}

// Size returns the number of key/value pairs in the tree.
func (t *Tree[K, V]) Size() int {
	if t.root == nil {
		return 0
	}
	return t.root.subtreeSize()
}

// IsEmpty reports whether the tree has zero entries.
func (t *Tree[K, V]) IsEmpty() bool { return t.root == nil }

// MaxNodeSize returns the tree's configured branching factor.
func (t *Tree[K, V]) MaxNodeSize() int { return t.maxNodeSize }

// Height returns the number of internal levels (0 for an empty tree or a
// tree whose root is a single leaf).
func (t *Tree[K, V]) Height() int {
	h := 0
	n := t.root
	for n != nil && !n.isLeaf() {
		h++
		n = n.(*internal[K, V]).children[0]
	}
	return h
}

// Get returns the value for key, or def if absent.
func (t *Tree[K, V]) Get(key K, def V) V {
	v, ok := t.GetOK(key)
	if !ok {
		return def
	}
	return v
}

// GetOK returns the value for key and whether it was present.
func (t *Tree[K, V]) GetOK(key K) (V, bool) {
	if t.root == nil {
		var zero V
		return zero, false
	}
	if t.root.isLeaf() {
		return t.root.(*leaf[K, V]).get(t.compare, key)
	}
	return t.root.(*internal[K, V]).get(t.compare, key)
}

// Has reports whether key is present.
func (t *Tree[K, V]) Has(key K) bool {
	_, ok := t.GetOK(key)
	return ok
}

// Set inserts or updates key/value. overwrite controls whether an existing
// entry's value is replaced. Returns true iff the key was newly inserted.
func (t *Tree[K, V]) Set(key K, value V, overwrite bool) (bool, error) {
	if t.frozen {
		return false, wrapf(FrozenMutation, "Set", "tree is frozen")
	}
	if !checkTotalOrder(t.compare, key) {
		return false, wrapf(IllegalKey, "Set", "key does not compare equal to itself")
	}
	if t.root == nil {
		l := newLeaf[K, V]()
		l.keys = []K{key}
		l.values = []V{value}
		t.root = l
		return true, nil
	}
	root := t.unshareRoot()
	var outcome setOutcome
	if root.isLeaf() {
		l := root.(*leaf[K, V])
		outcome = l.set(t.compare, key, value, overwrite)
		if l.keyCount() > t.maxNodeSize {
			right := l.splitOffRightSide(l.keyCount() / 2)
			newRoot := newInternal[K, V]()
			newRoot.children = []node[K, V]{l, right}
			newRoot.keys = []K{l.maxKeyOf(), right.maxKeyOf()}
			newRoot.recomputeSize()
			t.root = newRoot
			return outcome == outcomeInserted, nil
		}
		t.root = l
	} else {
		in := root.(*internal[K, V])
		var split *internal[K, V]
		outcome, split = in.set(t.compare, key, value, overwrite, t.maxNodeSize)
		if split != nil {
			newRoot := newInternal[K, V]()
			newRoot.children = []node[K, V]{in, split}
			newRoot.keys = []K{in.maxKeyOf(), split.maxKeyOf()}
			newRoot.recomputeSize()
			t.root = newRoot
		} else {
			t.root = in
		}
	}
	return outcome == outcomeInserted, nil
}

// SetIfNotPresent inserts key/value only if key is absent. Returns true iff
// inserted.
func (t *Tree[K, V]) SetIfNotPresent(key K, value V) (bool, error) {
	return t.Set(key, value, false)
}

// Delete removes key, if present. Returns true iff it was present.
func (t *Tree[K, V]) Delete(key K) (bool, error) {
	if t.frozen {
		return false, wrapf(FrozenMutation, "Delete", "tree is frozen")
	}
	if !checkTotalOrder(t.compare, key) {
		return false, wrapf(IllegalKey, "Delete", "key does not compare equal to itself")
	}
	if t.root == nil {
		return false, nil
	}
	root := t.unshareRoot()
	if root.isLeaf() {
		l := root.(*leaf[K, V])
		idx, found := l.indexOf(t.compare, key)
		if !found {
			t.root = l
			return false, nil
		}
		l.deleteAt(idx)
		if l.keyCount() == 0 {
			t.root = nil
		} else {
			t.root = l
		}
		return true, nil
	}
	in := root.(*internal[K, V])
	removed := in.deleteKey(t.compare, key, t.maxNodeSize)
	if !removed {
		t.root = in
		return false, nil
	}
	if collapsed := in.collapseIfSingleChild(); collapsed != nil {
		t.root = collapsed
	} else {
		t.root = in
	}
	return true, nil
}

// Clear empties the tree in place.
func (t *Tree[K, V]) Clear() error {
	if t.frozen {
		return wrapf(FrozenMutation, "Clear", "tree is frozen")
	}
	t.root = nil
	return nil
}

// MinKey returns the smallest key, and whether the tree is non-empty.
func (t *Tree[K, V]) MinKey() (K, bool) {
	if t.root == nil {
		var zero K
		return zero, false
	}
	n := t.root
	for !n.isLeaf() {
		n = n.(*internal[K, V]).children[0]
	}
	l := n.(*leaf[K, V])
	return l.keys[0], true
}

// MaxKey returns the largest key, and whether the tree is non-empty.
func (t *Tree[K, V]) MaxKey() (K, bool) {
	if t.root == nil {
		var zero K
		return zero, false
	}
	return t.root.maxKeyOf(), true
}

// Clone returns an O(1) structural copy: the returned tree shares every
// node with t. Only the root is flagged isShared; its descendants are
// shared through it and get flagged as a write path clones their parent.
// The first subsequent write on either
// tree unshares only the path it traverses (spec.md §4.4).
func (t *Tree[K, V]) Clone() *Tree[K, V] {
	c := &Tree[K, V]{
		id:          uuid.New(),
		compare:     t.compare,
		maxNodeSize: t.maxNodeSize,
		frozen:      t.frozen,
	}
	if t.root != nil {
		t.root.setShared(true)
		c.root = t.root
	}
	return c
}

// GreedyClone recursively duplicates every node not already shared (or
// every node, when force is true), leaving the result mutually isolated
// from t (spec.md §4.4).
func (t *Tree[K, V]) GreedyClone(force bool) *Tree[K, V] {
	c := &Tree[K, V]{
		id:          uuid.New(),
		compare:     t.compare,
		maxNodeSize: t.maxNodeSize,
		frozen:      t.frozen,
	}
	if t.root != nil {
		c.root = greedyCloneNode[K, V](t.root, force)
	}
	return c
}

// Freeze toggles the tree into a state where mutating entry points fail
// with FrozenMutation.
func (t *Tree[K, V]) Freeze() { t.frozen = true }

// Unfreeze restores mutability.
func (t *Tree[K, V]) Unfreeze() { t.frozen = false }

// Frozen reports whether the tree is currently frozen.
func (t *Tree[K, V]) Frozen() bool { return t.frozen }

// unshareRoot returns the root, cloning it first if shared.
func (t *Tree[K, V]) unshareRoot() node[K, V] {
	if !t.root.shared() {
		return t.root
	}
	var cloned node[K, V]
	if t.root.isLeaf() {
		cloned = t.root.(*leaf[K, V]).clone()
	} else {
		cloned = t.root.(*internal[K, V]).clone()
	}
	cloned.setShared(false)
	return cloned
}
