// Package types defines the core data types shared by the linkpath packages.
//
// This package contains the fundamental types used throughout linkpath:
//   - LinkResult: A page's canonical title and its outbound links
//   - SearchNode: One queued frontier entry (title, path from start, depth)
//   - PathResult: The outcome of a path search
//   - SearchStats: Counters collected while a search runs
//
// # Topic Identity
//
// Topics are plain strings. Two titles name the same node only after both
// have been canonicalized (redirects followed), so visited-set and goal
// comparisons must always use canonical forms.
//
// # Immutability
//
// Paths are never mutated once observed. Use ExtendPath to derive the path
// of a child node:
//
//	child := types.SearchNode{
//	    Title: link,
//	    Path:  types.ExtendPath(parent.Path, link),
//	    Depth: parent.Depth + 1,
//	}
package types
