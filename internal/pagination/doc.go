// Package pagination implements the invalidation rules of paginated syncs.
//
// The first page of a sync is authoritative for its scope: every cached
// entity in the scope that the page does not contain is deleted before the
// page is merged. Later pages only add. Single-entity fetches answered with
// resource-not-found delete the one cached entity they asked for.
package pagination
