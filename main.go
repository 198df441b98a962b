package main

import (
	"fmt"

	"cowbtree/bptree"
)

func main() {
	tree := bptree.New[int, string](bptree.Ordered[int](), 4)

	for _, k := range []int{10, 11, 12, 120, 1} {
		tree.Set(k, fmt.Sprintf("pointer to %d", k), true)
	}

	v, ok := tree.GetOK(11)
	fmt.Println(v, ok)

	clone := tree.Clone()
	clone.Set(11, "updated pointer to 11", true)

	_, _, err := bptree.DiffAgainst[int, string](tree, clone,
		nil,
		nil,
		func(k int, va, vb string) bptree.DiffAction {
			fmt.Printf("%d changed: %q -> %q\n", k, va, vb)
			return bptree.DiffContinue()
		},
	)
	if err != nil {
		fmt.Println("diff error:", err)
	}

	fmt.Println(tree.Dump(func(k int) string { return fmt.Sprintf("%d", k) }))
}
