// Package cache is the two-tier response cache.
//
// The memory tier is a bounded LRU that never touches the disk. The disk tier
// keeps one snappy-compressed file per request fingerprint in a directory
// named after the cache, under the user's caches location by default.
// Lookups check memory first and then disk; a disk hit is copied back into
// memory. Put stores in memory at once and writes the file from a background
// writer.
//
// Clear empties both tiers and removes the directory. Clear may run
// concurrently with background writes. A write racing a clear may be dropped
// or may persist; which one happens is not specified.
package cache
