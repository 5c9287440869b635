package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrReadOnlyContext is returned by write operations on the view context.
	ErrReadOnlyContext = errors.New("storage: context is read-only")

	// ErrContextClosed is returned when work is submitted to a closed context.
	ErrContextClosed = errors.New("storage: context is closed")

	// ErrDetached is returned when an entity is used with a context that
	// does not manage it.
	ErrDetached = errors.New("storage: entity is not managed by this context")
)

// DuplicateKeyError reports an Insert for a key that already exists in the
// context.
type DuplicateKeyError struct {
	Kind Kind
	Key  Key
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("storage: %s %s already exists", e.Kind, e.Key)
}

// IsDuplicateKey reports whether err is a DuplicateKeyError.
func IsDuplicateKey(err error) bool {
	var de *DuplicateKeyError
	return errors.As(err, &de)
}
