// Package repositories implements the session-scoped result set.
//
// [ResultStore] keeps every [models.ConversionResult] in an in-memory SQLite database that vanishes with the
// process. Row order (the seq column) is the user-visible order: batches append as contiguous blocks and removal
// closes the gap.
//
// The store is the single writer of that sequence. Reads and writes serialize through one [sync.RWMutex], so a
// [ResultStore.Snapshot] never observes a half-appended batch.
//
// Transient resources (export handles) can be attached to an entry with [ResultStore.Attach]; they are released
// when the entry is removed or the store is closed.
package repositories
