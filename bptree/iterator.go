package bptree

// Iterator walks a tree's entries in one direction, starting from an
// optional bound. It wraps a Cursor (ascending) or a reverseCursor
// (descending) and exposes the conventional Next()-returns-bool shape.
type Iterator[K any, V any] struct {
	compare    Comparator[K]
	forward    *Cursor[K, V]
	backward   *reverseCursor[K, V]
	started    bool
	descending bool
	skipFirst  bool // descending only: skipHighest
	buf        *Pair[K, V]
}

// Ascending returns an iterator over entries with key >= low (or from the
// smallest key when low is nil). buf, when non-nil, is reused across Next
// calls instead of allocating a fresh Pair.
func (t *Tree[K, V]) Ascending(low *K, buf *Pair[K, V]) *Iterator[K, V] {
	it := &Iterator[K, V]{compare: t.compare, buf: buf}
	it.forward = NewCursor[K, V](t.root, t.compare)
	if low != nil && !it.forward.AtEnd() {
		it.forward.MoveTo(*low, true, nil)
	}
	return it
}

// Descending returns an iterator over entries with key <= high (or from
// the largest key when high is nil), walking toward smaller keys.
// skipHighest excludes the starting bound itself when true.
func (t *Tree[K, V]) Descending(high *K, skipHighest bool, buf *Pair[K, V]) *Iterator[K, V] {
	it := &Iterator[K, V]{compare: t.compare, descending: true, buf: buf}
	it.backward = newReverseCursor[K, V](t.root, t.Height(), t.compare)
	if high != nil && !it.backward.done() {
		it.seekDescendingTo(*high, skipHighest)
	}
	return it
}

// seekDescendingTo refines the backward cursor down to the first key <=
// bound (or < bound when exclusive), discarding everything to its right.
func (it *Iterator[K, V]) seekDescendingTo(bound K, exclusive bool) {
	c := it.backward
	for !c.done() {
		k := c.currentKey()
		cmp := it.compare(k, bound)
		if cmp < 0 || (cmp == 0 && !exclusive) {
			// this position's representative key already satisfies the
			// bound, so the whole atomic subtree (or leaf entry) under it
			// does too; Next's lazy refine-to-leaf handles the rest.
			return
		}
		if !c.curNode.isLeaf() {
			c.refine()
			continue
		}
		c.stepBackOneKey()
	}
}

// Next advances the iterator and reports whether an entry is available.
// Call Key/Value (or Pair) only after Next returns true.
func (it *Iterator[K, V]) Next() bool {
	if it.descending {
		c := it.backward
		if it.started {
			c.stepBackOneKey()
		}
		it.started = true
		for !c.done() && !c.curNode.isLeaf() {
			c.refine()
		}
		return !c.done()
	}
	c := it.forward
	if it.started {
		c.MoveForwardOne(nil)
	}
	it.started = true
	return !c.AtEnd()
}

// Pair returns the current entry, using the reusable buffer if one was
// supplied to Ascending/Descending.
func (it *Iterator[K, V]) Pair() Pair[K, V] {
	k, v := it.current()
	if it.buf != nil {
		it.buf.Key, it.buf.Value = k, v
		return *it.buf
	}
	return Pair[K, V]{Key: k, Value: v}
}

// Key returns the current entry's key.
func (it *Iterator[K, V]) Key() K {
	k, _ := it.current()
	return k
}

// Value returns the current entry's value.
func (it *Iterator[K, V]) Value() V {
	_, v := it.current()
	return v
}

func (it *Iterator[K, V]) current() (K, V) {
	if it.descending {
		l := it.backward.curNode.(*leaf[K, V])
		return l.keys[it.backward.leafIdx], l.valueAt(it.backward.leafIdx)
	}
	return it.forward.Key(), it.forward.Value()
}
