package pagination

import (
	"fmt"

	"github.com/roach88/storesync/internal/remote"
	"github.com/roach88/storesync/internal/storage"
)

// DefaultFirstPage is the remote service's first page number.
const DefaultFirstPage = 1

// Window describes the page numbering of a remote list.
type Window struct {
	FirstPage int
}

// NewWindow returns a window starting at first, or at DefaultFirstPage
// when first is not positive.
func NewWindow(first int) Window {
	if first <= 0 {
		first = DefaultFirstPage
	}
	return Window{FirstPage: first}
}

// IsFirstPage reports whether page is the window's first page.
func (w Window) IsFirstPage(page int) bool {
	return page == w.first()
}

// HasNextPage reports whether a page that returned received records out of
// pageSize may be followed by another one.
func (w Window) HasNextPage(received, pageSize int) bool {
	return pageSize > 0 && received >= pageSize
}

func (w Window) first() int {
	if w.FirstPage <= 0 {
		return DefaultFirstPage
	}
	return w.FirstPage
}

// ReconcileSyncPage prepares c for merging one page of type T. On the first
// page it deletes every cached entity selected by scope whose key is not in
// incoming and returns how many it deleted. Later pages delete nothing.
//
// Call it on the writer context before upserting the page, so that
// concurrently completing syncs apply in completion order.
func ReconcileSyncPage[T storage.Entity](c *storage.Context, w Window, page int, scope storage.Query, incoming []storage.Key) (int, error) {
	if !w.IsFirstPage(page) {
		return 0, nil
	}

	keep := make(map[storage.Key]bool, len(incoming))
	for _, k := range incoming {
		keep[k] = true
	}

	cached, err := storage.FetchAll[T](c, scope)
	if err != nil {
		return 0, fmt.Errorf("reconcile first page: %w", err)
	}

	deleted := 0
	for _, e := range cached {
		if keep[e.Key()] {
			continue
		}
		if err := c.Delete(e); err != nil {
			return deleted, fmt.Errorf("reconcile first page: %w", err)
		}
		deleted++
	}
	return deleted, nil
}

// DeleteOnNotFound deletes the cached entity of type T with key when err
// says the remote entity does not exist. Other errors, including a missing
// route, leave the cache alone. It reports whether an entity was deleted.
func DeleteOnNotFound[T storage.Entity](c *storage.Context, key storage.Key, err error) (bool, error) {
	if !remote.IsResourceNotFound(err) {
		return false, nil
	}
	e, ok, findErr := storage.Find[T](c, key)
	if findErr != nil {
		return false, fmt.Errorf("delete on not found: %w", findErr)
	}
	if !ok {
		return false, nil
	}
	if err := c.Delete(e); err != nil {
		return false, fmt.Errorf("delete on not found: %w", err)
	}
	return true, nil
}

// Keys maps records to scope keys.
func Keys[R any](records []R, keyOf func(R) storage.Key) []storage.Key {
	keys := make([]storage.Key, 0, len(records))
	for _, r := range records {
		keys = append(keys, keyOf(r))
	}
	return keys
}
