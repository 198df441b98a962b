// Package common holds small assertion helpers shared across the module's
// packages.
package common

import "fmt"

// Assert panics with a formatted message if the given condition is false.
// It is reserved for programmer-bug invariants — impossible states that a
// correct caller can never trigger — never for user-facing validation.
func Assert(condition bool, msg string, v ...any) {
	if !condition {
		panic(fmt.Sprintf("assertion failed: "+msg, v...))
	}
}
