// Package matching maps color vectors to candidate identifiers and answers
// nearest-neighbor queries for mosaic tile matching.
//
// # Laziness
//
// Add buffers candidates without touching the k-d tree; the tree is rebuilt
// wholesale on the first Query after any Add. Incremental insertion into a
// balanced k-d tree is not cheap, so batching writes and rebuilding once
// before each read amortizes the O(n log n) cost across the whole batch.
//
// # Determinism
//
// When multiple candidates are equidistant from a query vector, the one
// added earliest wins. Insertion order is therefore part of the contract,
// and snapshots preserve it.
//
// # Thread Safety
//
// An Index is not safe for concurrent use. Both Add and Query mutate
// internal state (Query may rebuild the tree), so concurrent callers must
// supply their own mutual exclusion.
package matching
