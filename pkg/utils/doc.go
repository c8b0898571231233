// Package utils provides utility functions for the linkpath library.
//
// This package contains helper functions for:
//   - Vector math and deterministic top-K selection (vector.go)
//   - Ordered, bounded fan-out with panic capture (concurrent.go, recovery.go)
//   - Environment-driven defaults (helpers.go)
package utils
