package bptree

import "fmt"

// CheckValid walks the whole tree verifying every invariant of spec.md §3:
// ascending keys within a node, the right-max separator convention,
// correct cached sizes, and structural shape (child/key count parity,
// minimum fanout). It returns an InternalInvariant error describing the
// first violation found, or nil.
func (t *Tree[K, V]) CheckValid() error {
	if t.root == nil {
		return nil
	}
	_, _, err := checkNode[K, V](t.compare, t.root, t.maxNodeSize, true)
	return err
}

func checkNode[K any, V any](compare Comparator[K], n node[K, V], maxNodeSize int, isRoot bool) (minKey K, maxKey K, err error) {
	if n.isLeaf() {
		l := n.(*leaf[K, V])
		if len(l.keys) == 0 {
			if isRoot {
				var zero K
				return zero, zero, nil
			}
			var zero K
			return zero, zero, newError(InternalInvariant, "CheckValid", fmt.Errorf("non-root leaf has zero keys"))
		}
		if l.values != nil && len(l.values) != len(l.keys) {
			return l.keys[0], l.keys[len(l.keys)-1], newError(InternalInvariant, "CheckValid",
				fmt.Errorf("leaf has %d keys but %d values", len(l.keys), len(l.values)))
		}
		for i := 1; i < len(l.keys); i++ {
			if compare(l.keys[i-1], l.keys[i]) >= 0 {
				return l.keys[0], l.keys[len(l.keys)-1], newError(InternalInvariant, "CheckValid",
					fmt.Errorf("leaf keys not strictly ascending at index %d", i))
			}
		}
		if !isRoot && len(l.keys) > maxNodeSize {
			return l.keys[0], l.keys[len(l.keys)-1], newError(InternalInvariant, "CheckValid",
				fmt.Errorf("leaf has %d keys, exceeds max %d", len(l.keys), maxNodeSize))
		}
		return l.keys[0], l.keys[len(l.keys)-1], nil
	}

	in := n.(*internal[K, V])
	if len(in.children) != len(in.keys) {
		var zero K
		return zero, zero, newError(InternalInvariant, "CheckValid",
			fmt.Errorf("internal node has %d children but %d keys", len(in.children), len(in.keys)))
	}
	if !isRoot && len(in.children) < 2 {
		var zero K
		return zero, zero, newError(InternalInvariant, "CheckValid",
			fmt.Errorf("non-root internal node has %d children", len(in.children)))
	}
	total := 0
	var lo, hi K
	var prevMax K
	for i, ch := range in.children {
		childMin, childMax, err := checkNode[K, V](compare, ch, maxNodeSize, false)
		if err != nil {
			return lo, hi, err
		}
		if compare(in.keys[i], childMax) != 0 {
			return lo, hi, newError(InternalInvariant, "CheckValid",
				fmt.Errorf("separator key %d does not equal child maxKey (right-max convention)", i))
		}
		if i == 0 {
			lo = childMin
		} else if compare(prevMax, childMin) >= 0 {
			return lo, hi, newError(InternalInvariant, "CheckValid",
				fmt.Errorf("children out of order at index %d", i))
		}
		prevMax = childMax
		hi = childMax
		total += ch.subtreeSize()
	}
	if in.sz != total {
		return lo, hi, newError(InternalInvariant, "CheckValid",
			fmt.Errorf("cached size %d does not match computed %d", in.sz, total))
	}
	return lo, hi, nil
}
