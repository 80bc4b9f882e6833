// Package cache provides a persistent cache for LLM completion responses.
//
// Entries are keyed by a SHA-256 fingerprint of the request content, the model
// identifier, and a style/parameter identifier (see [Fingerprint]). Each entry
// stores the response text and its creation time; entries older than the
// configured TTL are treated as misses and removed lazily.
//
// Two storage backends are available: one JSON file per key (the default,
// written atomically with write-then-rename so concurrent logchange processes
// never observe a partial entry) and a single SQLite database. Both sit behind
// a small in-process memo so repeated lookups within one run skip the disk.
//
// The cache is an optimization only. Storage failures are reported as
// [ErrUnavailable] and degrade every lookup to a miss; corrupt entries are
// reported as [ErrCorrupt], treated as misses, and deleted.
package cache
