package dto

import (
	"strings"

	"github.com/soundprediction/linkpath/pkg/types"
)

// FindPathRequest is the body of POST /api/v1/path.
type FindPathRequest struct {
	Start    string `json:"start" binding:"required"`
	Goal     string `json:"goal" binding:"required"`
	MaxDepth int    `json:"max_depth,omitempty"`
}

// Validate performs validation on FindPathRequest
func (r *FindPathRequest) Validate() error {
	if err := ValidateTitle(r.Start, ErrEmptyStart); err != nil {
		return err
	}
	if err := ValidateTitle(r.Goal, ErrEmptyGoal); err != nil {
		return err
	}
	if r.MaxDepth < 0 {
		return ErrNegativeDepth
	}
	if r.MaxDepth > MaxDepth {
		return ErrDepthTooLarge
	}
	return nil
}

// Normalize trims surrounding whitespace from the titles.
func (r *FindPathRequest) Normalize() {
	r.Start = strings.TrimSpace(r.Start)
	r.Goal = strings.TrimSpace(r.Goal)
}

// SearchStats mirrors types.SearchStats for JSON clients.
type SearchStats struct {
	Branches      int   `json:"branches"`
	Expansions    int   `json:"expansions"`
	DeadEnds      int   `json:"dead_ends"`
	FailedFetches int   `json:"failed_fetches"`
	RankedBatches int   `json:"ranked_batches"`
	DurationMS    int64 `json:"duration_ms"`
}

// PathResponse is the result of a path search.
type PathResponse struct {
	SearchID string      `json:"search_id"`
	Start    string      `json:"start"`
	Goal     string      `json:"goal"`
	Found    bool        `json:"found"`
	Path     []string    `json:"path"`
	HopCount int         `json:"hop_count"`
	Stats    SearchStats `json:"stats"`
}

// NewPathResponse converts an engine result.
func NewPathResponse(res *types.PathResult) PathResponse {
	return PathResponse{
		SearchID: res.SearchID,
		Start:    res.Start,
		Goal:     res.Goal,
		Found:    res.Found(),
		Path:     res.Path,
		HopCount: res.HopCount,
		Stats: SearchStats{
			Branches:      res.Stats.Branches,
			Expansions:    res.Stats.Expansions,
			DeadEnds:      res.Stats.DeadEnds,
			FailedFetches: res.Stats.FailedFetches,
			RankedBatches: res.Stats.RankedBatches,
			DurationMS:    res.Stats.Duration.Milliseconds(),
		},
	}
}

// LinksResponse lists the outbound links of one page.
type LinksResponse struct {
	Title          string   `json:"title"`
	CanonicalTitle string   `json:"canonical_title"`
	Links          []string `json:"links"`
	Count          int      `json:"count"`
}

// ResolveResponse carries the canonical form of a title.
type ResolveResponse struct {
	Title          string `json:"title"`
	CanonicalTitle string `json:"canonical_title"`
}
