package bptree

import "reflect"

// DiffAction is what onlyA/onlyB/different return: Break stops the diff
// immediately, returning its payload.
type DiffAction struct {
	broke    bool
	breakVal any
}

// DiffContinue requests the walk keep going.
func DiffContinue() DiffAction { return DiffAction{} }

// DiffBreak requests the walk stop now, surfacing breakVal as DiffAgainst's
// return value.
func DiffBreak(breakVal any) DiffAction { return DiffAction{broke: true, breakVal: breakVal} }

// revFrame is one level of a reverseCursor's spine: node is the internal
// node being visited right-to-left, idx the child currently considered,
// height the height of node itself (its children sit at height-1).
type revFrame[K any, V any] struct {
	node   *internal[K, V]
	idx    int
	height int
}

// reverseCursor walks a single tree right-to-left. Unlike Cursor (which
// always stands on a specific leaf key), a reverseCursor can rest on an
// internal node "as a whole" — an atomic, unrefined position representing
// its entire subtree — and is only refined (descended one level) when a
// comparison against the other tree's cursor needs finer granularity. This
// is what lets two reverseCursors standing on reference-identical subtrees
// skip the whole subtree in O(1) instead of visiting every key in it.
type reverseCursor[K any, V any] struct {
	compare    Comparator[K]
	spine      []revFrame[K, V]
	curNode    node[K, V]
	rootHeight int
	leafIdx    int // valid only when curNode is a leaf
	atEnd      bool
}

func newReverseCursor[K any, V any](root node[K, V], height int, compare Comparator[K]) *reverseCursor[K, V] {
	c := &reverseCursor[K, V]{compare: compare, rootHeight: height}
	if root == nil {
		c.atEnd = true
		return c
	}
	c.curNode = root
	if root.isLeaf() {
		c.leafIdx = root.(*leaf[K, V]).keyCount() - 1
	}
	return c
}

func (c *reverseCursor[K, V]) curHeight() int {
	if len(c.spine) == 0 {
		return c.rootHeight
	}
	return c.spine[len(c.spine)-1].height - 1
}

// currentKey is maxKey of the current internal node, or the specific key
// when curNode is a leaf (spec.md §4.6).
func (c *reverseCursor[K, V]) currentKey() K {
	if c.curNode.isLeaf() {
		return c.curNode.(*leaf[K, V]).keys[c.leafIdx]
	}
	return c.curNode.maxKeyOf()
}

// refine descends one level into curNode's rightmost child, trading an
// atomic whole-subtree position for a finer one.
func (c *reverseCursor[K, V]) refine() {
	in := c.curNode.(*internal[K, V])
	h := c.curHeight()
	lastIdx := len(in.children) - 1
	c.spine = append(c.spine, revFrame[K, V]{node: in, idx: lastIdx, height: h})
	c.curNode = in.children[lastIdx]
	if c.curNode.isLeaf() {
		c.leafIdx = c.curNode.(*leaf[K, V]).keyCount() - 1
	}
}

// skipCurrentAtomic treats curNode as fully consumed — whether it is a
// leaf or an unrefined internal subtree — and moves to the previous
// sibling, popping frames whose children are exhausted.
func (c *reverseCursor[K, V]) skipCurrentAtomic() {
	for len(c.spine) > 0 {
		top := &c.spine[len(c.spine)-1]
		if top.idx > 0 {
			top.idx--
			c.curNode = top.node.children[top.idx]
			if c.curNode.isLeaf() {
				c.leafIdx = c.curNode.(*leaf[K, V]).keyCount() - 1
			}
			return
		}
		c.spine = c.spine[:len(c.spine)-1]
	}
	c.atEnd = true
	c.curNode = nil
}

// stepBackOneKey moves to the immediately preceding key: the previous
// entry in the current leaf, or (once the leaf is exhausted) whatever
// skipCurrentAtomic finds next.
func (c *reverseCursor[K, V]) stepBackOneKey() {
	if c.leafIdx > 0 {
		c.leafIdx--
		return
	}
	c.skipCurrentAtomic()
}

func (c *reverseCursor[K, V]) done() bool { return c.atEnd || c.curNode == nil }

// drainOnly fully refines and emits every remaining key of c, in
// descending order, via onX. Used once the opposite cursor is exhausted.
func drainOnly[K any, V any](c *reverseCursor[K, V], onX func(k K, v V) DiffAction) (bool, any) {
	for !c.done() {
		if !c.curNode.isLeaf() {
			c.refine()
			continue
		}
		l := c.curNode.(*leaf[K, V])
		action := onX(l.keys[c.leafIdx], l.valueAt(c.leafIdx))
		if action.broke {
			return true, action.breakVal
		}
		c.stepBackOneKey()
	}
	return false, nil
}

// valuesIdentical is the "not identity-equal" test DiffAgainst applies
// before reporting a changed value. V carries no comparability constraint
// (the tree accepts arbitrary value types), so reflect.DeepEqual stands in
// for the identity check spec.md §4.6 asks for.
func valuesIdentical[V any](a, b V) bool {
	return reflect.DeepEqual(a, b)
}

// DiffAgainst walks A and B right-to-left with two reverseCursors,
// reporting onlyA/onlyB/different callbacks in descending key order (the
// "reverse-of-sort" ordering spec.md §5 calls out as deliberate, since it
// is what lets reverseCursor compare in O(1) via maxKey instead of
// descending for minKey). Any callback may return DiffBreak to stop
// immediately; DiffAgainst then returns that payload.
func DiffAgainst[K any, V any](
	a, b *Tree[K, V],
	onlyA func(k K, v V) DiffAction,
	onlyB func(k K, v V) DiffAction,
	different func(k K, va, vb V) DiffAction,
) (result any, broke bool, err error) {
	if err := requireSameComparator(a, b, "DiffAgainst"); err != nil {
		return nil, false, err
	}
	ca := newReverseCursor[K, V](a.root, a.Height(), a.compare)
	cb := newReverseCursor[K, V](b.root, b.Height(), a.compare)
	for {
		aDone, bDone := ca.done(), cb.done()
		if aDone && bDone {
			return nil, false, nil
		}
		if aDone {
			if onlyB == nil {
				return nil, false, nil
			}
			brk, bv := drainOnly[K, V](cb, onlyB)
			return bv, brk, nil
		}
		if bDone {
			if onlyA == nil {
				return nil, false, nil
			}
			brk, bv := drainOnly[K, V](ca, onlyA)
			return bv, brk, nil
		}
		for ca.curHeight() > cb.curHeight() {
			ca.refine()
		}
		for cb.curHeight() > ca.curHeight() {
			cb.refine()
		}
		keyA, keyB := ca.currentKey(), cb.currentKey()
		cmp := a.compare(keyA, keyB)
		switch {
		case cmp == 0:
			if !ca.curNode.isLeaf() {
				if ca.curNode == cb.curNode {
					ca.skipCurrentAtomic()
					cb.skipCurrentAtomic()
					continue
				}
				ca.refine()
				cb.refine()
				continue
			}
			if ca.curNode == cb.curNode && ca.leafIdx == cb.leafIdx {
				ca.skipCurrentAtomic()
				cb.skipCurrentAtomic()
				continue
			}
			la, lb := ca.curNode.(*leaf[K, V]), cb.curNode.(*leaf[K, V])
			va, vb := la.valueAt(ca.leafIdx), lb.valueAt(cb.leafIdx)
			if !valuesIdentical(va, vb) && different != nil {
				action := different(keyA, va, vb)
				if action.broke {
					return action.breakVal, true, nil
				}
			}
			ca.stepBackOneKey()
			cb.stepBackOneKey()
		case cmp > 0:
			if !ca.curNode.isLeaf() {
				ca.refine()
				continue
			}
			if onlyA != nil {
				l := ca.curNode.(*leaf[K, V])
				action := onlyA(keyA, l.valueAt(ca.leafIdx))
				if action.broke {
					return action.breakVal, true, nil
				}
			}
			ca.stepBackOneKey()
		default:
			if !cb.curNode.isLeaf() {
				cb.refine()
				continue
			}
			if onlyB != nil {
				l := cb.curNode.(*leaf[K, V])
				action := onlyB(keyB, l.valueAt(cb.leafIdx))
				if action.broke {
					return action.breakVal, true, nil
				}
			}
			cb.stepBackOneKey()
		}
	}
}
