package bptree

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Dump renders the tree's structure with treeprint, generalizing teacher's
// ASCII PrettyPrint to the CoW node model: the header carries the short
// form of this tree's id, and nodes whose isShared flag is set are tagged
// "[shared]".
func (t *Tree[K, V]) Dump(keyFmt func(K) string) string {
	header := fmt.Sprintf("tree %s (size=%d, height=%d)\n", shortID(t.id.String()), t.Size(), t.Height())
	tp := treeprint.New()
	if t.root != nil {
		dumpNode(tp, t.root, keyFmt)
	}
	return header + tp.String()
}

func dumpNode[K any, V any](tp treeprint.Tree, n node[K, V], keyFmt func(K) string) {
	shared := ""
	if n.shared() {
		shared = " [shared]"
	}
	if n.isLeaf() {
		l := n.(*leaf[K, V])
		keys := make([]string, len(l.keys))
		for i, k := range l.keys {
			keys[i] = keyFmt(k)
		}
		tp.AddNode(fmt.Sprintf("leaf(%d)%s %v", len(l.keys), shared, keys))
		return
	}
	in := n.(*internal[K, V])
	branch := tp.AddBranch(fmt.Sprintf("internal(%d, size=%d)%s", len(in.keys), in.sz, shared))
	for _, ch := range in.children {
		dumpNode(branch, ch, keyFmt)
	}
}

// shortID trims a uuid down to its first segment for compact dump output.
func shortID(id string) string {
	for i, r := range id {
		if r == '-' {
			return id[:i]
		}
	}
	return id
}
