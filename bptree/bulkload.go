package bptree

// buildFromSortedPairs builds a balanced tree from keys/values already
// known to be in strictly ascending order (spec.md §4.9). It is the
// reassembly strategy for Intersection and the constructor's entries
// argument.
func buildFromSortedPairs[K any, V any](compare Comparator[K], keys []K, values []V, maxNodeSize int) (node[K, V], error) {
	n := len(keys)
	if n == 0 {
		return nil, nil
	}
	for i := 1; i < n; i++ {
		if compare(keys[i-1], keys[i]) >= 0 {
			return nil, wrapf(BulkLoadOrder, "buildFromSortedPairs", "keys not strictly ascending at index %d", i)
		}
	}
	leaves := packLeaves[K, V](keys, values, maxNodeSize)
	level := make([]node[K, V], len(leaves))
	for i, l := range leaves {
		level[i] = l
	}
	for len(level) > maxNodeSize {
		level = packInternals[K, V](level, maxNodeSize)
	}
	if len(level) == 1 {
		return level[0], nil
	}
	root := newInternal[K, V]()
	root.children = level
	root.keys = make([]K, len(level))
	for i, ch := range level {
		root.keys[i] = ch.maxKeyOf()
	}
	root.recomputeSize()
	return root, nil
}

// packLeaves distributes n keys across ceil(n/maxNodeSize) leaves so that
// the largest and smallest leaf sizes differ by at most one, using the
// chunkSize = ceil(remaining/remainingLeaves) rule at each step.
func packLeaves[K any, V any](keys []K, values []V, maxNodeSize int) []*leaf[K, V] {
	n := len(keys)
	leafCount := (n + maxNodeSize - 1) / maxNodeSize
	if leafCount == 0 {
		leafCount = 1
	}
	out := make([]*leaf[K, V], 0, leafCount)
	remaining := n
	remainingLeaves := leafCount
	start := 0
	for remainingLeaves > 0 {
		chunk := (remaining + remainingLeaves - 1) / remainingLeaves
		l := &leaf[K, V]{
			keys:   append([]K(nil), keys[start:start+chunk]...),
			values: append([]V(nil), values[start:start+chunk]...),
		}
		out = append(out, l)
		start += chunk
		remaining -= chunk
		remainingLeaves--
	}
	return out
}

// packInternals buckets a level of nodes into parent internal nodes using
// the same even-distribution rule, then tops up the last parent from its
// left sibling if undersized.
func packInternals[K any, V any](level []node[K, V], maxNodeSize int) []node[K, V] {
	n := len(level)
	parentCount := (n + maxNodeSize - 1) / maxNodeSize
	out := make([]node[K, V], 0, parentCount)
	remaining := n
	remainingParents := parentCount
	start := 0
	for remainingParents > 0 {
		chunk := (remaining + remainingParents - 1) / remainingParents
		children := append([]node[K, V](nil), level[start:start+chunk]...)
		p := newInternal[K, V]()
		p.children = children
		p.keys = make([]K, len(children))
		for i, ch := range children {
			p.keys[i] = ch.maxKeyOf()
		}
		p.recomputeSize()
		out = append(out, p)
		start += chunk
		remaining -= chunk
		remainingParents--
	}
	minKeys := (maxNodeSize + 1) / 2
	if len(out) > 1 {
		last := out[len(out)-1].(*internal[K, V])
		for len(last.children) < minKeys {
			left := out[len(out)-2].(*internal[K, V])
			if len(left.children) <= minKeys {
				break
			}
			borrowLeft[K, V](last, left)
		}
	}
	return out
}
