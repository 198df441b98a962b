package bptree

// PairAction is what an onFound callback returns from ForRange/EditRange. Use
// the constructors below rather than building one by hand.
type PairAction[V any] struct {
	hasValue bool
	value    V
	del      bool
	broke    bool
	breakVal any
}

// Continue requests no change and no break.
func Continue[V any]() PairAction[V] { return PairAction[V]{} }

// Replace requests the entry's value be overwritten with v.
func Replace[V any](v V) PairAction[V] { return PairAction[V]{hasValue: true, value: v} }

// DeleteEntry requests the current entry be removed.
func DeleteEntry[V any]() PairAction[V] { return PairAction[V]{del: true} }

// Break requests the walk stop immediately, surfacing breakVal as the
// operation's return value.
func Break[V any](breakVal any) PairAction[V] { return PairAction[V]{broke: true, breakVal: breakVal} }

func (a PairAction[V]) toRangeAction() rangeAction[V] {
	return rangeAction[V]{hasValue: a.hasValue, value: a.value, del: a.del, broke: a.broke, breakVal: a.breakVal}
}

// ForEachPair walks every entry in ascending order, calling onFound(k, v,
// counter) where counter is a zero-based ordinal. Returning Break stops the
// walk and ForEachPair returns the break payload and true.
func (t *Tree[K, V]) ForEachPair(onFound func(k K, v V, counter int) PairAction[V]) (breakVal any, broke bool) {
	counter := 0
	bv, stop := t.walkLeavesAscending(func(l *leaf[K, V]) (stop bool, bv any) {
		for i, k := range l.keys {
			action := onFound(k, l.valueAt(i), counter)
			counter++
			if action.broke {
				return true, action.breakVal
			}
		}
		return false, nil
	})
	return bv, stop
}

// walkLeavesAscending visits every leaf left to right via plain recursion;
// shared nodes are never mutated by this read-only traversal.
func (t *Tree[K, V]) walkLeavesAscending(visit func(l *leaf[K, V]) (stop bool, bv any)) (any, bool) {
	if t.root == nil {
		return nil, false
	}
	var walk func(n node[K, V]) (any, bool)
	walk = func(n node[K, V]) (any, bool) {
		if n.isLeaf() {
			stop, bv := visit(n.(*leaf[K, V]))
			return bv, stop
		}
		in := n.(*internal[K, V])
		for _, ch := range in.children {
			if bv, stop := walk(ch); stop {
				return bv, true
			}
		}
		return nil, false
	}
	return walk(t.root)
}

// ForRange iterates read-only over entries with keys in [low, high] (high
// inclusive iff includeHigh); a nil bound means unbounded on that side.
func (t *Tree[K, V]) ForRange(low, high *K, includeHigh bool, onFound func(k K, v V) PairAction[V]) (breakVal any, broke bool) {
	if t.root == nil {
		return nil, false
	}
	adapter := func(k K, v V) rangeAction[V] { return onFound(k, v).toRangeAction() }
	_, brk, bv, _ := forRangeNode[K, V](t.compare, t.root, low, high, includeHigh, adapter, false)
	return bv, brk
}

// GetRange collects entries with keys in [low, high] into a fresh slice,
// capped at maxLength entries when maxLength > 0.
func (t *Tree[K, V]) GetRange(low, high *K, includeHigh bool, maxLength int) []Pair[K, V] {
	var out []Pair[K, V]
	t.ForRange(low, high, includeHigh, func(k K, v V) PairAction[V] {
		out = append(out, Pair[K, V]{Key: k, Value: v})
		if maxLength > 0 && len(out) >= maxLength {
			return Break[V](nil)
		}
		return Continue[V]()
	})
	return out
}

// Pair is a key/value entry returned by GetRange and the iterators.
type Pair[K any, V any] struct {
	Key   K
	Value V
}

// EditRange walks entries with keys in [low, high], unsharing any node it
// descends through, and applies whatever replace/delete/break the callback
// requests. Returns an IllegalEdit error if the key at the callback's
// cursor position changed (or the leaf's length changed without the
// callback itself requesting the deletion) before the callback returned —
// the signal that onFound mutated the same tree from within the walk
// (spec.md §5). The walk's own replace/delete/break handling can never
// trigger this on its own.
func (t *Tree[K, V]) EditRange(low, high *K, includeHigh bool, onFound func(k K, v V) PairAction[V]) (breakVal any, broke bool, err error) {
	if t.frozen {
		return nil, false, wrapf(FrozenMutation, "EditRange", "tree is frozen")
	}
	if t.root == nil {
		return nil, false, nil
	}
	root := t.unshareRoot()
	adapter := func(k K, v V) rangeAction[V] { return onFound(k, v).toRangeAction() }
	newRoot, brk, bv, illegal := forRangeNode[K, V](t.compare, root, low, high, includeHigh, adapter, true)
	if newRoot != nil && newRoot.keyCount() == 0 {
		newRoot = nil
	}
	t.root = newRoot
	if illegal {
		return bv, brk, wrapf(IllegalEdit, "EditRange", "key at the callback's cursor position changed before the callback returned")
	}
	return bv, brk, nil
}

// forRangeNode is the generic recursive range walker shared by ForRange and
// EditRange. editMode gates whether mutation (unshare-before-write,
// delete/replace application, empty-child pruning, single-child collapse)
// is permitted; a pure read never mutates and always returns n unchanged.
// The returned node is what the caller should install in n's place — it
// differs from n only in edit mode, when pruning/collapse replaced it.
func forRangeNode[K any, V any](compare Comparator[K], n node[K, V], low, high *K, includeHigh bool, onFound func(k K, v V) rangeAction[V], editMode bool) (node[K, V], bool, any, bool) {
	if n.isLeaf() {
		brk, bv, illegal := n.(*leaf[K, V]).forRange(compare, low, high, includeHigh, onFound, editMode)
		return n, brk, bv, illegal
	}
	in := n.(*internal[K, V])
	startIdx := 0
	if low != nil {
		startIdx = in.indexOf(compare, *low)
	}
	var brk, illegal bool
	var bv any
	for i := startIdx; i < len(in.children); i++ {
		child := in.children[i]
		if editMode && child.shared() {
			child = in.unshareChild(i)
		}
		maxBefore := child.maxKeyOf()
		var newChild node[K, V]
		newChild, brk, bv, illegal = forRangeNode[K, V](compare, child, low, high, includeHigh, onFound, editMode)
		if editMode {
			in.children[i] = newChild
			if newChild.keyCount() > 0 {
				in.keys[i] = newChild.maxKeyOf()
			}
		}
		if illegal || brk {
			break
		}
		if high != nil {
			c := compare(maxBefore, *high)
			if c > 0 || (c == 0 && !includeHigh) {
				break
			}
		}
	}
	if !editMode {
		return n, brk, bv, illegal
	}
	in.pruneEmptyChildren()
	in.recomputeSize()
	if collapsed := in.collapseIfSingleChild(); collapsed != nil {
		return collapsed, brk, bv, illegal
	}
	return in, brk, bv, illegal
}

// pruneEmptyChildren removes any child left with zero keys by an edit-range
// deletion, mirroring the spec's "empty children are spliced out" rule.
func (n *internal[K, V]) pruneEmptyChildren() {
	w := 0
	for i, ch := range n.children {
		if ch.keyCount() == 0 {
			continue
		}
		n.children[w] = ch
		n.keys[w] = n.keys[i]
		w++
	}
	n.children = n.children[:w]
	n.keys = n.keys[:w]
	n.recomputeSize()
}

// --- neighbor queries --------------------------------------------------

// NextHigherKey returns the smallest key strictly greater than k.
func (t *Tree[K, V]) NextHigherKey(k K) (K, bool) {
	kv, ok := t.NextHigherPair(k)
	return kv.Key, ok
}

// NextLowerKey returns the largest key strictly less than k.
func (t *Tree[K, V]) NextLowerKey(k K) (K, bool) {
	kv, ok := t.NextLowerPair(k)
	return kv.Key, ok
}

// NextHigherPair returns the entry with the smallest key strictly greater
// than k.
func (t *Tree[K, V]) NextHigherPair(k K) (Pair[K, V], bool) {
	var found Pair[K, V]
	var ok bool
	t.ForRange(&k, nil, true, func(ck K, v V) PairAction[V] {
		if t.compare(ck, k) > 0 {
			found = Pair[K, V]{Key: ck, Value: v}
			ok = true
			return Break[V](nil)
		}
		return Continue[V]()
	})
	return found, ok
}

// NextLowerPair returns the entry with the largest key strictly less than k,
// via the descending cursor (spec.md §3's logarithmic point/range
// operations), symmetric to NextHigherPair's forward walk.
func (t *Tree[K, V]) NextLowerPair(k K) (Pair[K, V], bool) {
	it := t.Descending(&k, true, nil)
	if it.Next() {
		return it.Pair(), true
	}
	return Pair[K, V]{}, false
}

// GetPairOrNextLower returns the entry at k if present, else the entry with
// the largest key strictly less than k.
func (t *Tree[K, V]) GetPairOrNextLower(k K) (Pair[K, V], bool) {
	if v, ok := t.GetOK(k); ok {
		return Pair[K, V]{Key: k, Value: v}, true
	}
	return t.NextLowerPair(k)
}

// GetPairOrNextHigher returns the entry at k if present, else the entry
// with the smallest key strictly greater than k.
func (t *Tree[K, V]) GetPairOrNextHigher(k K) (Pair[K, V], bool) {
	if v, ok := t.GetOK(k); ok {
		return Pair[K, V]{Key: k, Value: v}, true
	}
	return t.NextHigherPair(k)
}
