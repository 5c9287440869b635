package upsert

import (
	"fmt"

	"github.com/roach88/storesync/internal/storage"
)

// findOrInsert returns the entity with key, inserting it under parent when
// the context does not have it.
func findOrInsert[T storage.Entity](c *storage.Context, key storage.Key, parent storage.Entity) (T, error) {
	e, ok, err := storage.Find[T](c, key)
	if err != nil || ok {
		return e, err
	}
	return storage.Insert[T](c, key, parent)
}

// reconcileChildren makes parent's rows of type T match incoming. Rows are
// matched by identity key through a map, so the work is linear in the
// number of existing and incoming records. When incoming repeats a key the
// last record wins.
func reconcileChildren[T storage.Entity, R any](
	c *storage.Context,
	parent storage.Entity,
	incoming []R,
	keyOf func(R) storage.Key,
	apply func(T, R) error,
) error {
	existing, err := storage.Children[T](c, parent)
	if err != nil {
		return err
	}

	byKey := make(map[storage.Key]T, len(existing))
	for _, e := range existing {
		byKey[e.Key()] = e
	}

	seen := make(map[storage.Key]bool, len(incoming))
	for _, r := range incoming {
		key := keyOf(r)
		e, ok := byKey[key]
		if !ok {
			if e, err = storage.Insert[T](c, key, parent); err != nil {
				return fmt.Errorf("insert %s: %w", key, err)
			}
			byKey[key] = e
		}
		if err := apply(e, r); err != nil {
			return err
		}
		seen[key] = true
	}

	for _, e := range existing {
		if seen[e.Key()] {
			continue
		}
		if err := c.Delete(e); err != nil {
			return err
		}
	}
	return nil
}

// noErr adapts an infallible field copy to reconcileChildren.
func noErr[T, R any](fn func(T, R)) func(T, R) error {
	return func(t T, r R) error {
		fn(t, r)
		return nil
	}
}
