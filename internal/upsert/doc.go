// Package upsert merges remote records into a storage context.
//
// Every entity family has one function that follows the same steps:
//
//  1. find the local entity by scope key, inserting it when absent;
//  2. copy every scalar field from the remote record (last write wins);
//  3. reconcile owned sub-collections by identity key: extinct rows are
//     deleted, present rows updated in place, new rows inserted;
//  4. resolve related references by key in the same context, leaving them
//     empty when the related entity is not cached. Product tags are the
//     exception: unseen tags are inserted.
//
// Products in the "importing" placeholder state are skipped: the function
// returns a nil entity and a nil error.
//
// Upserting byte-identical input twice leaves the persisted graph unchanged;
// the second save produces an empty change set.
//
// The Read* functions map local entities back to remote records. Stores use
// them for completions and for optimistic-update snapshots.
package upsert
