// Package distribution turns group weights into a cumulative distribution
// and maps uniform draws in [0,1) onto group indices.
//
// The canonical strategy is a CDF lookup: a draw u selects the smallest
// group g with cdf[g] >= u, so a draw that lands exactly on a boundary
// belongs to the lower group. The last group absorbs any floating-point
// shortfall in the final cumulative entry. Integer group counts may
// alternatively be expanded into a flat choices table for constant-time
// selection; both strategies give the same selection probabilities.
package distribution
