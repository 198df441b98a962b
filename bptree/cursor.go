package bptree

// Sentinel values used in place of NaN/+Inf for stepDownChildIndex: the
// walk works entirely in plain ints, so "still ascending" and "tree
// exhausted" get their own reserved values rather than a float NaN.
const (
	stepAscending = -1 // equivalent to NaN: this frame is being popped, not descended from
	stepExhausted = -2 // equivalent to +Inf: no ancestor admitted a right-step
)

// CursorHooks is the pluggable observer set for a Cursor's moveTo/
// moveForwardOne walk. Any field may be left nil. Diff, shared-key
// iteration, and decomposition each install their own hooks over the same
// walker rather than duplicating cursor mechanics.
type CursorHooks[K any, V any] struct {
	OnMoveInLeaf func(l *leaf[K, V], from, to int, startedEqual bool)
	OnExitLeaf   func(l *leaf[K, V], from int, startedEqual bool)
	OnStepUp     func(parent *internal[K, V], height, fromChildIndex, spineDepth, stepDownChildIndex int)
	OnStepDown   func(n node[K, V], height, spineDepth, stepDownChildIndex int)
	OnEnterLeaf  func(l *leaf[K, V], destIndex int)
}

type spineFrame[K any, V any] struct {
	node       *internal[K, V]
	childIndex int
}

// Cursor walks a single tree forward, never backward. Two cursors over two
// trees, alternately advanced, give the parallel walk of spec.md §4.5.
type Cursor[K any, V any] struct {
	compare Comparator[K]
	height  int
	spine   []spineFrame[K, V]
	curLeaf *leaf[K, V]
	leafIdx int
	atEnd   bool
}

// NewCursor returns a cursor positioned at the leftmost key of root (nil
// root yields an already-exhausted cursor).
func NewCursor[K any, V any](root node[K, V], compare Comparator[K]) *Cursor[K, V] {
	c := &Cursor[K, V]{compare: compare}
	if root == nil {
		c.atEnd = true
		return c
	}
	n := root
	for !n.isLeaf() {
		in := n.(*internal[K, V])
		c.spine = append(c.spine, spineFrame[K, V]{node: in, childIndex: 0})
		c.height++
		n = in.children[0]
	}
	c.curLeaf = n.(*leaf[K, V])
	return c
}

// AtEnd reports whether the cursor has walked past the tree's last key.
func (c *Cursor[K, V]) AtEnd() bool { return c.atEnd }

// Key returns the key the cursor currently stands on.
func (c *Cursor[K, V]) Key() K { return c.curLeaf.keys[c.leafIdx] }

// Value returns the value the cursor currently stands on.
func (c *Cursor[K, V]) Value() V { return c.curLeaf.valueAt(c.leafIdx) }

// Leaf and LeafIndex expose the cursor's current position for callers (in
// this package) that need to read neighbouring entries directly.
func (c *Cursor[K, V]) Leaf() *leaf[K, V] { return c.curLeaf }
func (c *Cursor[K, V]) LeafIndex() int    { return c.leafIdx }

func (c *Cursor[K, V]) heightAt(spineIdx int) int { return c.height - spineIdx }

// viableRightStep returns the smallest child index > f.childIndex whose
// maxKey reaches target under the requested inclusivity, or -1 if none.
func (c *Cursor[K, V]) viableRightStep(f spineFrame[K, V], target K, inclusive bool) int {
	for i := f.childIndex + 1; i < len(f.node.children); i++ {
		cmp := c.compare(f.node.children[i].maxKeyOf(), target)
		if cmp > 0 || (cmp == 0 && inclusive) {
			return i
		}
	}
	return -1
}

// MoveTo advances the cursor to the first key >= target (inclusive) or the
// first key > target (exclusive), emitting hooks' events along the way.
// Calling MoveTo with a target behind the current position is a caller
// error, which this package's own callers never commit: the cursor then
// moves back within its current leaf, to that leaf's first key >= target.
func (c *Cursor[K, V]) MoveTo(target K, inclusive bool, hooks *CursorHooks[K, V]) {
	if c.atEnd {
		return
	}
	idx, found := c.curLeaf.indexOf(c.compare, target)
	want := idx
	if found && !inclusive {
		want++
	}
	if want < len(c.curLeaf.keys) {
		from := c.leafIdx
		c.leafIdx = want
		if hooks != nil && hooks.OnMoveInLeaf != nil {
			hooks.OnMoveInLeaf(c.curLeaf, from, want, from == want)
		}
		return
	}

	if hooks != nil && hooks.OnExitLeaf != nil {
		hooks.OnExitLeaf(c.curLeaf, c.leafIdx, false)
	}

	ascendTo := -1
	nextChild := -1
	for i := len(c.spine) - 1; i >= 0; i-- {
		if ci := c.viableRightStep(c.spine[i], target, inclusive); ci >= 0 {
			ascendTo = i
			nextChild = ci
			break
		}
	}

	if ascendTo == -1 {
		for j := len(c.spine) - 1; j >= 0; j-- {
			f := c.spine[j]
			sd := stepAscending
			if j == 0 {
				sd = stepExhausted
			}
			if hooks != nil && hooks.OnStepUp != nil {
				hooks.OnStepUp(f.node, c.heightAt(j), f.childIndex, j, sd)
			}
		}
		c.spine = nil
		c.curLeaf = nil
		c.atEnd = true
		return
	}

	for j := len(c.spine) - 1; j > ascendTo; j-- {
		f := c.spine[j]
		if hooks != nil && hooks.OnStepUp != nil {
			hooks.OnStepUp(f.node, c.heightAt(j), f.childIndex, j, stepAscending)
		}
	}
	if hooks != nil && hooks.OnStepUp != nil {
		f := c.spine[ascendTo]
		hooks.OnStepUp(f.node, c.heightAt(ascendTo), f.childIndex, ascendTo, nextChild)
	}
	c.spine[ascendTo].childIndex = nextChild
	c.spine = c.spine[:ascendTo+1]

	cur := c.spine[ascendTo].node.children[nextChild]
	for !cur.isLeaf() {
		in := cur.(*internal[K, V])
		childIdx := in.indexOf(c.compare, target)
		c.spine = append(c.spine, spineFrame[K, V]{node: in, childIndex: childIdx})
		if hooks != nil && hooks.OnStepDown != nil {
			hooks.OnStepDown(in, c.heightAt(len(c.spine)-1), len(c.spine)-1, childIdx)
		}
		cur = in.children[childIdx]
	}
	l := cur.(*leaf[K, V])
	destIdx, destFound := l.indexOf(c.compare, target)
	if destFound && !inclusive {
		destIdx++
	}
	if destIdx >= len(l.keys) {
		destIdx = len(l.keys) - 1
	}
	c.curLeaf = l
	c.leafIdx = destIdx
	if hooks != nil && hooks.OnEnterLeaf != nil {
		hooks.OnEnterLeaf(l, destIdx)
	}
}

// MoveForwardOne advances by exactly one key — the common transition right
// after two cursors were found equal. It is a thin specialization of MoveTo
// that skips the leaf re-scan when the next key is already loaded in the
// current leaf.
func (c *Cursor[K, V]) MoveForwardOne(hooks *CursorHooks[K, V]) {
	if c.atEnd {
		return
	}
	if c.leafIdx+1 < len(c.curLeaf.keys) {
		from := c.leafIdx
		c.leafIdx++
		if hooks != nil && hooks.OnMoveInLeaf != nil {
			hooks.OnMoveInLeaf(c.curLeaf, from, c.leafIdx, true)
		}
		return
	}
	cur := c.curLeaf.keys[c.leafIdx]
	c.MoveTo(cur, false, hooks)
}
