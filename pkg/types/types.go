package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidMaxDepth = errors.New("max depth must be positive")
)

// DefaultMaxDepth is the depth bound used when a caller passes zero.
const DefaultMaxDepth = 3

// NotFoundHopCount is the hop count reported when no path was found.
// Callers must check PathResult.Found before reading HopCount.
const NotFoundHopCount = 1

// LinkResult is the answer of a link-listing lookup for one page.
type LinkResult struct {
	// CanonicalTitle is the requested title after redirects were followed.
	CanonicalTitle string `json:"canonical_title" yaml:"canonical_title"`

	// Links holds the outbound main-namespace link titles, deduplicated,
	// in the order the service returned them. Empty for dead ends.
	Links []string `json:"links" yaml:"links"`
}

// HasLinks reports whether the page links anywhere.
func (r *LinkResult) HasLinks() bool {
	return r != nil && len(r.Links) > 0
}

// SearchNode is a frontier entry. It is never modified after creation.
type SearchNode struct {
	Title string
	Path  []string
	Depth int
}

// ExtendPath returns a new slice holding path followed by title.
// The input slice is never written to.
func ExtendPath(path []string, title string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = title
	return out
}

// SearchStats collects counters for one search.
type SearchStats struct {
	Branches      int           `json:"branches" yaml:"branches"`
	Expansions    int           `json:"expansions" yaml:"expansions"`
	DeadEnds      int           `json:"dead_ends" yaml:"dead_ends"`
	FailedFetches int           `json:"failed_fetches" yaml:"failed_fetches"`
	RankedBatches int           `json:"ranked_batches" yaml:"ranked_batches"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
}

// PathResult is the outcome of a path search.
type PathResult struct {
	SearchID string `json:"search_id" yaml:"search_id"`
	Start    string `json:"start" yaml:"start"`
	Goal     string `json:"goal" yaml:"goal"`

	// Path runs from the start title to the canonical goal title. It is nil
	// when no path was found.
	Path []string `json:"path" yaml:"path"`

	// HopCount is the number of links followed (len(Path)-1) when found,
	// and NotFoundHopCount otherwise.
	HopCount int `json:"hop_count" yaml:"hop_count"`

	Stats SearchStats `json:"stats" yaml:"stats"`
}

// Found reports whether a path was found.
func (r *PathResult) Found() bool {
	return r != nil && r.Path != nil
}
