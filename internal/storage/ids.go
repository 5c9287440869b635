package storage

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator assigns object IDs to inserted entities.
// Implemented by UUIDv7Generator (production) and SequentialGenerator (tests).
type IDGenerator interface {
	NewID() ObjectID
}

// UUIDv7Generator generates time-sortable UUIDv7 object IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a new hyphenated UUIDv7.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() ObjectID {
	return ObjectID(uuid.Must(uuid.NewV7()).String())
}

// SequentialGenerator returns "<prefix>-000001", "<prefix>-000002", ...
// It makes persisted graphs byte-identical across runs.
//
// Thread-safety: SequentialGenerator is safe for concurrent use via internal mutex.
type SequentialGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequentialGenerator creates a generator starting at 1.
func NewSequentialGenerator(prefix string) *SequentialGenerator {
	if prefix == "" {
		prefix = "obj"
	}
	return &SequentialGenerator{prefix: prefix}
}

// NewID returns the next sequential ID.
func (g *SequentialGenerator) NewID() ObjectID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return ObjectID(fmt.Sprintf("%s-%06d", g.prefix, g.next))
}
