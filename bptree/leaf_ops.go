package bptree

import "cowbtree/common"

// indexOf reports the slot a key occupies (or would occupy if absent) plus
// whether it was an exact match. Teacher's
// findKeyIndexInNode/findEqualKeyIndexInNode pair is generalized into one
// call, Go-style, rather than the spec's bitwise-complement convention (see
// DESIGN.md).
func (l *leaf[K, V]) indexOf(compare Comparator[K], key K) (idx int, found bool) {
	// linear scan, mirroring teacher's findKeyIndexInNode/traverseRightOrLeft;
	// node sizes are small (MaxNodeSize <= 256) so this beats binary search
	// in practice and keeps the comparator call count identical to a
	// textbook scan.
	for i, k := range l.keys {
		c := compare(key, k)
		if c == 0 {
			return i, true
		}
		if c < 0 {
			return i, false
		}
	}
	return len(l.keys), false
}

// get returns the value for key and whether it was found.
func (l *leaf[K, V]) get(compare Comparator[K], key K) (V, bool) {
	idx, found := l.indexOf(compare, key)
	if !found {
		var zero V
		return zero, false
	}
	return l.valueAt(idx), true
}

type setOutcome int

const (
	outcomeInserted setOutcome = iota
	outcomeReplaced
)

// set inserts or updates key/value in place (l must already be unshared).
// Returns whether the key was newly inserted. l may end up with
// maxNodeSize+1 entries after an insert; it is the caller's responsibility
// (internal.rebalanceOverfullLeaf, or Tree.Set at the root) to notice the
// overflow and rotate-or-split — the leaf itself no longer decides that,
// since only the parent knows whether a sibling has spare room.
func (l *leaf[K, V]) set(compare Comparator[K], key K, value V, overwrite bool) (outcome setOutcome) {
	common.Assert(!l.isShrd, "set called on shared leaf")
	idx, found := l.indexOf(compare, key)
	if found {
		if overwrite {
			l.materializeValues()
			l.values[idx] = value
		}
		return outcomeReplaced
	}
	l.materializeValues()
	l.keys = append(l.keys, key)
	l.values = append(l.values, value)
	copy(l.keys[idx+1:], l.keys[idx:])
	copy(l.values[idx+1:], l.values[idx:])
	l.keys[idx] = key
	l.values[idx] = value
	return outcomeInserted
}

// splitOffRightSide removes keys[at:] (and values) from l and returns them
// as a brand-new right-sibling leaf. l keeps keys[:at].
func (l *leaf[K, V]) splitOffRightSide(at int) *leaf[K, V] {
	right := &leaf[K, V]{
		keys: append([]K(nil), l.keys[at:]...),
	}
	if l.values != nil {
		right.values = append([]V(nil), l.values[at:]...)
	}
	l.keys = l.keys[:at]
	if l.values != nil {
		l.values = l.values[:at]
	}
	return right
}

// splitOffLeftSide removes keys[:at] from l and returns them as a new left
// sibling. l keeps keys[at:].
func (l *leaf[K, V]) splitOffLeftSide(at int) *leaf[K, V] {
	left := &leaf[K, V]{
		keys: append([]K(nil), l.keys[:at]...),
	}
	if l.values != nil {
		left.values = append([]V(nil), l.values[:at]...)
	}
	l.keys = l.keys[at:]
	if l.values != nil {
		l.values = l.values[at:]
	}
	return left
}

// deleteAt removes the entry at index idx in place.
func (l *leaf[K, V]) deleteAt(idx int) {
	common.Assert(!l.isShrd, "deleteAt called on shared leaf")
	l.keys = append(l.keys[:idx], l.keys[idx+1:]...)
	if l.values != nil {
		l.values = append(l.values[:idx], l.values[idx+1:]...)
	}
}

// takeFromLeft moves the rightmost entry of sibling onto the front of l.
func (l *leaf[K, V]) takeFromLeft(sibling *leaf[K, V]) {
	common.Assert(!l.isShrd && !sibling.isShrd, "takeFromLeft requires unshared nodes")
	last := len(sibling.keys) - 1
	key := sibling.keys[last]
	sibling.keys = sibling.keys[:last]
	l.keys = append([]K{key}, l.keys...)
	sibling.materializeValues()
	l.materializeValues()
	val := sibling.values[last]
	sibling.values = sibling.values[:last]
	l.values = append([]V{val}, l.values...)
}

// takeFromRight moves the leftmost entry of sibling onto the end of l.
func (l *leaf[K, V]) takeFromRight(sibling *leaf[K, V]) {
	common.Assert(!l.isShrd && !sibling.isShrd, "takeFromRight requires unshared nodes")
	key := sibling.keys[0]
	sibling.keys = sibling.keys[1:]
	l.keys = append(l.keys, key)
	sibling.materializeValues()
	l.materializeValues()
	val := sibling.values[0]
	sibling.values = sibling.values[1:]
	l.values = append(l.values, val)
}

// mergeSibling appends rhs's entries onto l (l must be the left node).
func (l *leaf[K, V]) mergeSibling(rhs *leaf[K, V]) {
	common.Assert(!l.isShrd, "mergeSibling requires unshared node")
	l.keys = append(l.keys, rhs.keys...)
	if l.values != nil || rhs.values != nil {
		l.materializeValues()
		rhs.materializeValues()
		l.values = append(l.values, rhs.values...)
	}
}

// forRange iterates entries with keys in [low, high] (high inclusive iff
// includeHigh), starting at the first key >= low (or at the first key when
// low is nil). onFound may request a replacement value, a deletion, and/or
// early break; editMode controls whether mutation is permitted. Returns
// whether onFound requested a break and the break payload it produced, if
// any.
//
// illegal reports that, in edit mode, the leaf's length or the key at the
// callback's cursor position changed out from under the walk between the
// callback being invoked and returning, without the callback itself
// requesting the deletion (spec.md §5's "key changed under the cursor").
// This only fires when onFound reaches back into the same tree (e.g. an
// EditRange callback calling Delete/Set on t) — a single, non-reentrant
// callback invocation can never trigger it on its own.
func (l *leaf[K, V]) forRange(
	compare Comparator[K],
	low *K, high *K, includeHigh bool,
	onFound func(k K, v V) rangeAction[V],
	editMode bool,
) (brk bool, brkVal any, illegal bool) {
	i := 0
	if low != nil {
		i, _ = l.indexOf(compare, *low)
	}
	for i < len(l.keys) {
		k := l.keys[i]
		if high != nil {
			c := compare(k, *high)
			if c > 0 || (c == 0 && !includeHigh) {
				break
			}
		}
		preLen := len(l.keys)
		action := onFound(k, l.valueAt(i))
		if editMode && !action.del && (len(l.keys) != preLen || i >= len(l.keys) || compare(l.keys[i], k) != 0) {
			return false, nil, true
		}
		advance := true
		if editMode {
			if action.hasValue {
				common.Assert(!l.isShrd, "forRange edit on shared leaf")
				l.materializeValues()
				l.values[i] = action.value
			}
			if action.del {
				l.deleteAt(i)
				advance = false
			}
		}
		if action.broke {
			return true, action.breakVal, false
		}
		if advance {
			i++
		}
	}
	return false, nil, false
}

// rangeAction is the decoded form of an onFound callback's return value for
// range editors (spec.md §4.2/§6): replace a value, delete the entry,
// and/or break with a payload.
type rangeAction[V any] struct {
	hasValue bool
	value    V
	del      bool
	broke    bool
	breakVal any
}
