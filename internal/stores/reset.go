package stores

import (
	"fmt"

	"github.com/roach88/storesync/internal/storage"
)

// deleteAll deletes every cached entity of type T matching q and returns
// how many it deleted.
func deleteAll[T storage.Entity](c *storage.Context, q storage.Query) (int, error) {
	cached, err := storage.FetchAll[T](c, q)
	if err != nil {
		return 0, err
	}
	for _, e := range cached {
		if err := c.Delete(e); err != nil {
			return 0, fmt.Errorf("delete %s %s: %w", e.Kind(), e.Key(), err)
		}
	}
	return len(cached), nil
}

// deleteSearches drops the recorded searches over target.
func deleteSearches(c *storage.Context, target storage.Kind) (int, error) {
	return deleteAll[*storage.SearchResultSet](c, storage.Query{
		AnySite: true,
		Where: storage.Matching(func(s *storage.SearchResultSet) bool {
			return s.Target == target
		}),
	})
}

// deleteKey deletes the cached entity of type T with key, if any.
func deleteKey[T storage.Entity](c *storage.Context, key storage.Key) (bool, error) {
	e, ok, err := storage.Find[T](c, key)
	if err != nil || !ok {
		return false, err
	}
	return true, c.Delete(e)
}
