// Package bptree implements an ordered, in-memory key-value B+ tree with
// copy-on-write structural sharing and a family of two-tree set operations.
// DiffAgainst skips subtrees the two trees share by reference; Union and
// Subtract walk every key of both trees.
//
// A Tree is cloned in O(1) via Clone, which flags the shared root so that
// both the original and the clone keep working until a write path forces
// the traversed nodes apart. Point and range operations (Get, Set, Delete,
// ForRange, EditRange) behave like an ordinary ordered map. ForEachSharedKey,
// Intersect, Union, Subtract, and DiffAgainst compare two trees built with
// the same Comparator, walking them in lock-step rather than iterating
// each independently.
package bptree
