// Package search finds chains of hyperlinks between two wiki pages.
//
// The graph is not known in advance: each page's links are fetched when the
// page is expanded, and a relevance ranker decides which links are worth
// following.
//
// # Algorithm
//
// FindPath resolves the goal title once, fetches the start page's links and
// ranks them at depth 0. If any first hop is the goal the search ends
// immediately. Otherwise each first hop seeds its own breadth-first search:
//
//   - the visited set holds only the start page, so different branches may
//     revisit the same pages;
//   - every expanded page's links are ranked at the page's depth and resolved
//     to their canonical titles, in ranked order;
//   - the first canonical link equal to the goal ends the search;
//   - when a page at the depth bound is dequeued, the whole branch is dropped
//     and the next first hop is tried.
//
// # Usage
//
//	engine := search.NewEngine(provider, resolver, ranker.New(emb, ranker.Options{}), search.DefaultOptions())
//
//	result, err := engine.FindPath(ctx, "2005 Azores subtropical storm", "Global Positioning System", 2)
//	if err != nil {
//	    return err
//	}
//	if result.Found() {
//	    fmt.Println(result.Path, result.HopCount)
//	}
//
// # Failures
//
// Not finding a path is a normal result: Path is nil and HopCount is
// types.NotFoundHopCount. Errors report faults. A failed link fetch for an
// expanded page is a dead end when Options.SkipFailedLookups is set; a failed
// candidate resolution falls back to the raw title. Embedding failures,
// cancellation, an exhausted budget, and lookup failures for the start page
// or the goal always end the search with an error.
package search
