package bptree

import "cowbtree/common"

// node is the sealed leaf/internal variant. Both concrete types carry an
// isShared flag: true means the node may be referenced by more than one
// tree and must be cloned before any in-place mutation (invariant 6 of
// spec.md §3). Every descendant of a shared node is implicitly shared too
// (invariant 7) — clearing the flag on a node never propagates to children;
// it is a local permission to mutate, not a global one.
//
// Dispatch on the hot indexOf/get path branches on the isLeaf tag rather
// than relying on interface method dispatch for the innermost search loop,
// per the design note in spec.md §9.
type node[K any, V any] interface {
	isLeaf() bool
	shared() bool
	setShared(bool)
	keyCount() int
	keyAt(i int) K
	maxKeyOf() K
	subtreeSize() int
}

// leaf holds the key/value pairs at the bottom of the tree.
type leaf[K any, V any] struct {
	keys   []K
	values []V // nil means "all values elided" (every entry semantically absent)
	isShrd bool
}

func newLeaf[K any, V any]() *leaf[K, V] {
	return &leaf[K, V]{}
}

func (l *leaf[K, V]) isLeaf() bool       { return true }
func (l *leaf[K, V]) shared() bool       { return l.isShrd }
func (l *leaf[K, V]) setShared(v bool)   { l.isShrd = v }
func (l *leaf[K, V]) keyCount() int      { return len(l.keys) }
func (l *leaf[K, V]) keyAt(i int) K      { return l.keys[i] }
func (l *leaf[K, V]) subtreeSize() int   { return len(l.keys) }
func (l *leaf[K, V]) maxKeyOf() K        { return l.keys[len(l.keys)-1] }

// valueAt returns the value at index i, materializing the elided-values
// sentinel as the zero value of V.
func (l *leaf[K, V]) valueAt(i int) V {
	if l.values == nil {
		var zero V
		return zero
	}
	return l.values[i]
}

// materializeValues ensures l.values is a real, fully-populated slice. Set
// operations that need to observe values (rather than just keys) call this
// before reading; it is a no-op once values are present.
func (l *leaf[K, V]) materializeValues() {
	if l.values != nil || len(l.keys) == 0 {
		return
	}
	l.values = make([]V, len(l.keys))
}

// clone returns a shallow copy of the leaf: a fresh keys/values backing
// array, marked unshared. Used when a traversal reaches a shared leaf it is
// about to mutate (path copy).
func (l *leaf[K, V]) clone() *leaf[K, V] {
	n := &leaf[K, V]{
		keys: append([]K(nil), l.keys...),
	}
	if l.values != nil {
		n.values = append([]V(nil), l.values...)
	}
	return n
}

// internal holds separator keys and child pointers. keys[i] always equals
// children[i].maxKeyOf() (the right-max convention, invariant 2).
type internal[K any, V any] struct {
	keys     []K
	children []node[K, V]
	isShrd   bool
	sz       int // cached total leaf-pair count of this subtree (invariant 3)
}

func newInternal[K any, V any]() *internal[K, V] {
	return &internal[K, V]{}
}

func (n *internal[K, V]) isLeaf() bool      { return false }
func (n *internal[K, V]) shared() bool      { return n.isShrd }
func (n *internal[K, V]) setShared(v bool)  { n.isShrd = v }
func (n *internal[K, V]) keyCount() int     { return len(n.keys) }
func (n *internal[K, V]) keyAt(i int) K     { return n.keys[i] }
func (n *internal[K, V]) subtreeSize() int  { return n.sz }
func (n *internal[K, V]) maxKeyOf() K       { return n.keys[len(n.keys)-1] }

// clone returns a shallow copy of the internal node: fresh keys/children
// backing arrays, with every child re-flagged as shared (the clone now has
// two conceptual owners of each child: itself and the original node).
func (n *internal[K, V]) clone() *internal[K, V] {
	c := &internal[K, V]{
		keys:     append([]K(nil), n.keys...),
		children: append([]node[K, V](nil), n.children...),
		sz:       n.sz,
	}
	for _, ch := range c.children {
		ch.setShared(true)
	}
	return c
}

// recomputeSize folds n.sz from its children, used after structural edits
// (insert/split/merge/rotate) land new children under n.
func (n *internal[K, V]) recomputeSize() {
	sz := 0
	for _, ch := range n.children {
		sz += ch.subtreeSize()
	}
	n.sz = sz
}

// unshareChild returns children[i], cloning and replacing it first if it is
// currently shared. This is the single chokepoint implementing the CoW
// discipline of spec.md §4.4: any mutation path must unshare every node it
// is about to write through.
func (n *internal[K, V]) unshareChild(i int) node[K, V] {
	ch := n.children[i]
	if !ch.shared() {
		return ch
	}
	var cloned node[K, V]
	if ch.isLeaf() {
		cloned = ch.(*leaf[K, V]).clone()
	} else {
		cloned = ch.(*internal[K, V]).clone()
	}
	cloned.setShared(false)
	n.children[i] = cloned
	return cloned
}

// greedyCloneNode recursively duplicates a node and (unless already shared,
// and force is false) all of its descendants, fully isolating the result
// from the original. Used by Tree.GreedyClone.
func greedyCloneNode[K any, V any](n node[K, V], force bool) node[K, V] {
	if n.isLeaf() {
		l := n.(*leaf[K, V])
		if !force && l.shared() {
			return l
		}
		c := l.clone()
		c.isShrd = false
		return c
	}
	in := n.(*internal[K, V])
	if !force && in.shared() {
		return in
	}
	c := &internal[K, V]{
		keys: append([]K(nil), in.keys...),
		sz:   in.sz,
	}
	c.children = make([]node[K, V], len(in.children))
	for i, ch := range in.children {
		c.children[i] = greedyCloneNode[K, V](ch, force)
	}
	return c
}

func assertNodeSane[K any, V any](n node[K, V]) {
	if n.isLeaf() {
		l := n.(*leaf[K, V])
		common.Assert(l.values == nil || len(l.values) == len(l.keys),
			"leaf key/value length mismatch: %d keys, %d values", len(l.keys), len(l.values))
		return
	}
	in := n.(*internal[K, V])
	common.Assert(len(in.children) == len(in.keys),
		"internal node has %d children but %d keys", len(in.children), len(in.keys))
}
