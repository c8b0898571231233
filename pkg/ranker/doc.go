// Package ranker scores candidate link titles against a goal topic using
// text embeddings and keeps the best of them.
//
// The number kept shrinks with depth: at depth d of maxDepth, a list of n
// candidates is cut to floor(n*(maxDepth-d)/maxDepth) entries, but never
// fewer than the minimum beam width (5 by default) and never more than n.
//
// Scores are inner products of unit-normalized vectors, which equals cosine
// similarity. Sorting is stable, so for a fixed embedding model the output
// depends only on the input.
package ranker
