package bptree

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'cowbtree'. Call sites place Debugf calls at
// internal-node splits, leaf rotations, and the cursor events of the
// shared-key walk, mirroring the tracing idiom used throughout
// npillmayer's persistent data structures.
func tracer() tracing.Trace {
	return tracing.Select("cowbtree")
}
