// Package cache is a content-addressable cache for derived geometry.
//
// Callers address entries by a fingerprint (usually object.HashValues over
// the inputs of a computation) and a suffix naming the kind of result. An
// entry lives in two tiers: a weak in-process map that forgets values once
// nothing else references them, and an optional persistent store on disk.
//
// Every failure of the persistent tier is treated as a miss. The cache
// assumes a single writer process and does no cross-process locking.
package cache
