package testutil

import "github.com/roach88/storesync/internal/storage"

// SequentialIDs returns an object ID generator yielding "<prefix>-000001",
// "<prefix>-000002", ... so persisted graphs are byte-identical across runs.
func SequentialIDs(prefix string) storage.IDGenerator {
	return storage.NewSequentialGenerator(prefix)
}
