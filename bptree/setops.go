package bptree

import "reflect"

// funcAddr returns the code pointer of a func value, the only way Go lets
// two non-nil function values be compared for identity. Comparators that
// come from the same function or function literal compare equal even when
// they are separate closure values (e.g. two calls of Ordered[K]()); two
// distinct function literals compare unequal even if their bodies are
// identical. Captured variables are not compared.
func funcAddr[K any](f Comparator[K]) uintptr {
	return reflect.ValueOf(f).Pointer()
}

// Combine produces the value placed under k in a union or intersection.
// Returning ok=false from a union's combine omits the key from the result
// entirely (spec.md §4.7's "may return omit").
type Combine[K any, V any] func(k K, a, b V) (result V, ok bool)

func requireSameComparator[K any, V any](a, b *Tree[K, V], op string) error {
	if funcAddr(a.compare) != funcAddr(b.compare) {
		return wrapf(ComparatorMismatch, op, "trees were built with different comparators")
	}
	return nil
}

func requireStructuralCompat[K any, V any](a, b *Tree[K, V], op string) error {
	if err := requireSameComparator(a, b, op); err != nil {
		return err
	}
	if a.maxNodeSize != b.maxNodeSize {
		return wrapf(BranchingFactorMismatch, op, "trees have MaxNodeSize %d and %d", a.maxNodeSize, b.maxNodeSize)
	}
	return nil
}

// ForEachSharedKey emits, in ascending order, every key present in both A
// and B, via the parallel cursor walk (spec.md §4.5/§4.7). f may return
// Break to stop early.
func ForEachSharedKey[K any, V any](a, b *Tree[K, V], f func(k K, va, vb V) PairAction[struct{}]) (breakVal any, broke bool, err error) {
	if err := requireSameComparator(a, b, "ForEachSharedKey"); err != nil {
		return nil, false, err
	}
	if a.root == nil || b.root == nil {
		return nil, false, nil
	}
	ca := NewCursor[K, V](a.root, a.compare)
	cb := NewCursor[K, V](b.root, b.compare)
	hooks := sharedKeyTraceHooks[K, V]()
	leading, trailing := ca, cb
	for !leading.AtEnd() && !trailing.AtEnd() {
		order := a.compare(leading.Key(), trailing.Key())
		switch {
		case order == 0:
			action := f(leading.Key(), leading.Value(), trailing.Value())
			if action.broke {
				return action.breakVal, true, nil
			}
			leading.MoveForwardOne(hooks)
			trailing.MoveForwardOne(hooks)
		case order < 0:
			leading, trailing = trailing, leading
			fallthrough
		default:
			trailing.MoveTo(leading.Key(), true, hooks)
		}
	}
	return nil, false, nil
}

// sharedKeyTraceHooks wires three of the cursor's events (step up, step
// down, enter leaf) to the package tracer, so ForEachSharedKey's walk is
// observable without every caller having to install its own hook set.
func sharedKeyTraceHooks[K any, V any]() *CursorHooks[K, V] {
	return &CursorHooks[K, V]{
		OnStepUp: func(parent *internal[K, V], height, fromChildIndex, spineDepth, stepDownChildIndex int) {
			tracer().Debugf("shared-key walk: step up at depth %d (height %d)", spineDepth, height)
		},
		OnStepDown: func(n node[K, V], height, spineDepth, stepDownChildIndex int) {
			tracer().Debugf("shared-key walk: step down to depth %d (height %d), child %d", spineDepth, height, stepDownChildIndex)
		},
		OnEnterLeaf: func(l *leaf[K, V], destIndex int) {
			tracer().Debugf("shared-key walk: entered leaf at index %d", destIndex)
		},
	}
}

// Intersect returns a new tree over keys in A∩B with values from combine.
// Implemented by collecting shared pairs via ForEachSharedKey into a sorted
// buffer, then bulk-loading it (spec.md §4.7).
func Intersect[K any, V any](a, b *Tree[K, V], combine Combine[K, V]) (*Tree[K, V], error) {
	if err := requireStructuralCompat(a, b, "Intersect"); err != nil {
		return nil, err
	}
	var keys []K
	var values []V
	_, _, err := ForEachSharedKey[K, V](a, b, func(k K, va, vb V) PairAction[struct{}] {
		if v, ok := combine(k, va, vb); ok {
			keys = append(keys, k)
			values = append(values, v)
		}
		return Continue[struct{}]()
	})
	if err != nil {
		return nil, err
	}
	return NewFromEntries(a.compare, keys, values, a.maxNodeSize)
}

// ForEachKeyNotIn emits every key in include that is not present in
// exclude, in ascending order.
func ForEachKeyNotIn[K any, V any](include, exclude *Tree[K, V], f func(k K, v V) PairAction[struct{}]) (breakVal any, broke bool, err error) {
	if err := requireSameComparator(include, exclude, "ForEachKeyNotIn"); err != nil {
		return nil, false, err
	}
	var brk bool
	var bv any
	include.ForEachPair(func(k K, v V, _ int) PairAction[V] {
		if !exclude.Has(k) {
			action := f(k, v)
			if action.broke {
				brk, bv = true, action.breakVal
				return Break[V](nil)
			}
		}
		return Continue[V]()
	})
	return bv, brk, nil
}
