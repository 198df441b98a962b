package bptree

// mergeWalk advances two cursors in lock-step ascending key order, the
// same forward-only movement the parallel cursor of spec.md §4.5 performs,
// and classifies every key as A-only, B-only, or shared. Union and
// Subtract are both built on top of this single merge pass; reassembly
// then bulk-loads the classified output (spec.md §4.8's decompose step,
// simplified to a linear merge rather than reusing whole shared subtrees
// by reference — see DESIGN.md).
func mergeWalk[K any, V any](a, b *Tree[K, V], onA, onB func(k K, v V), onBoth func(k K, va, vb V)) {
	ca := NewCursor[K, V](a.root, a.compare)
	cb := NewCursor[K, V](b.root, b.compare)
	for !ca.AtEnd() && !cb.AtEnd() {
		order := a.compare(ca.Key(), cb.Key())
		switch {
		case order == 0:
			if onBoth != nil {
				onBoth(ca.Key(), ca.Value(), cb.Value())
			}
			ca.MoveForwardOne(nil)
			cb.MoveForwardOne(nil)
		case order < 0:
			if onA != nil {
				onA(ca.Key(), ca.Value())
			}
			ca.MoveForwardOne(nil)
		default:
			if onB != nil {
				onB(cb.Key(), cb.Value())
			}
			cb.MoveForwardOne(nil)
		}
	}
	for !ca.AtEnd() {
		if onA != nil {
			onA(ca.Key(), ca.Value())
		}
		ca.MoveForwardOne(nil)
	}
	for !cb.AtEnd() {
		if onB != nil {
			onB(cb.Key(), cb.Value())
		}
		cb.MoveForwardOne(nil)
	}
}

// Union returns a new tree over keys in A∪B. Values come from A, from B,
// or from combine(k, vA, vB) for keys in both — combine may omit the key
// entirely by returning ok=false (spec.md §4.7, scenario 4 of spec.md §8).
func Union[K any, V any](a, b *Tree[K, V], combine Combine[K, V]) (*Tree[K, V], error) {
	if err := requireStructuralCompat(a, b, "Union"); err != nil {
		return nil, err
	}
	if a.root == nil {
		return b.Clone(), nil
	}
	if b.root == nil {
		return a.Clone(), nil
	}
	var keys []K
	var values []V
	mergeWalk[K, V](a, b,
		func(k K, v V) { keys = append(keys, k); values = append(values, v) },
		func(k K, v V) { keys = append(keys, k); values = append(values, v) },
		func(k K, va, vb V) {
			if v, ok := combine(k, va, vb); ok {
				keys = append(keys, k)
				values = append(values, v)
			}
		},
	)
	return NewFromEntries(a.compare, keys, values, a.maxNodeSize)
}

// Subtract returns a new tree over keys in A\B.
func Subtract[K any, V any](a, b *Tree[K, V]) (*Tree[K, V], error) {
	if err := requireStructuralCompat(a, b, "Subtract"); err != nil {
		return nil, err
	}
	if a.root == nil {
		return a.Clone(), nil
	}
	if b.root == nil {
		return a.Clone(), nil
	}
	var keys []K
	var values []V
	mergeWalk[K, V](a, b,
		func(k K, v V) { keys = append(keys, k); values = append(values, v) },
		nil,
		nil,
	)
	return NewFromEntries(a.compare, keys, values, a.maxNodeSize)
}
