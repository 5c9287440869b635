// Package storage provides the SQLite-backed persistence contexts of the
// local cache.
//
// A Provider owns one database and hands out contexts:
//   - the view context: read-only, used by callers to query the cache;
//   - the writer context: the shared derived context stores write through;
//   - additional derived contexts created with NewDerivedContext.
//
// Every context owns a worker goroutine that runs submitted work in FIFO
// order, so operations against one context never interleave. Derived
// contexts keep their own in-memory object graph: they load committed rows
// lazily and never observe another context's unsaved objects.
//
// # Saving and publishing
//
// Context.Save writes pending inserts, updates, deletes and link changes in
// one SQLite transaction. Each object's payload is fingerprinted with
// canonical JSON (package canon); a row whose fingerprint did not change is
// not written and does not appear in the resulting ChangeSet. Real changes
// bump the row's generation counter.
//
// Non-empty change sets are published: the view context refreshes the
// objects it holds in place (gated on generation, so object identity is
// stable), other derived contexts refresh their clean objects, and view
// observers are notified. A save that produced no net change publishes
// nothing.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: owned rows and links cascade with their owner
package storage
