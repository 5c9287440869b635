// Package searchset keeps derived result sets: the cached entities a remote
// keyword search returned, recorded once per (site, target, keyword,
// filter) with unique membership links.
package searchset

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/storesync/internal/storage"
)

// Mode says how a page of results changes a set's membership.
type Mode int

const (
	// Replace makes the members exactly the incoming page. Used for the
	// first page of a search.
	Replace Mode = iota
	// Append only adds members. Used for later pages.
	Append
)

func (m Mode) String() string {
	switch m {
	case Replace:
		return "replace"
	case Append:
		return "append"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Key identifies one result set.
type Key struct {
	SiteID  int64
	Target  storage.Kind
	Keyword string
	Filter  string
}

// NormalizeKeyword trims surrounding space and applies Unicode NFC, so that
// keywords typed with composed and decomposed characters share a set.
func NormalizeKeyword(keyword string) string {
	return norm.NFC.String(strings.TrimSpace(keyword))
}

// Normalized returns k with its keyword normalised.
func (k Key) Normalized() Key {
	k.Keyword = NormalizeKeyword(k.Keyword)
	return k
}

// StorageKey returns the scope key the set is persisted under.
func (k Key) StorageKey() storage.Key {
	k = k.Normalized()
	return storage.StringKey(k.SiteID, string(k.Target), url.QueryEscape(k.Filter), k.Keyword)
}

// Find returns the set for key, if c has one.
func Find(c *storage.Context, key Key) (*storage.SearchResultSet, bool, error) {
	return storage.Find[*storage.SearchResultSet](c, key.StorageKey())
}

// Record finds or creates the set for key and applies members to it
// according to mode. Members must be managed by c. Recording the same
// members twice leaves the set unchanged.
func Record(c *storage.Context, key Key, members []storage.Entity, mode Mode) (*storage.SearchResultSet, error) {
	key = key.Normalized()
	for _, m := range members {
		if m.Kind() != key.Target {
			return nil, fmt.Errorf("record search %q: member %s is a %s, want %s",
				key.Keyword, m.Key(), m.Kind(), key.Target)
		}
	}

	set, ok, err := Find(c, key)
	if err != nil {
		return nil, fmt.Errorf("record search %q: %w", key.Keyword, err)
	}
	if !ok {
		set, err = storage.Insert[*storage.SearchResultSet](c, key.StorageKey(), nil)
		if err != nil {
			return nil, fmt.Errorf("record search %q: %w", key.Keyword, err)
		}
		set.SiteID = key.SiteID
		set.Target = key.Target
		set.Keyword = key.Keyword
		set.Filter = key.Filter
	}

	switch mode {
	case Replace:
		err = c.SetMembers(set, storage.RelationSearchMembers, members)
	case Append:
		for _, m := range members {
			if err = c.Link(set, storage.RelationSearchMembers, m); err != nil {
				break
			}
		}
	default:
		err = fmt.Errorf("unknown mode %s", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("record search %q: %w", key.Keyword, err)
	}
	return set, nil
}

// ModeForPage returns Replace for the first page and Append otherwise.
func ModeForPage(firstPage bool) Mode {
	if firstPage {
		return Replace
	}
	return Append
}

// Members returns the set's current members of type T, ordered by key.
func Members[T storage.Entity](c *storage.Context, set *storage.SearchResultSet) ([]T, error) {
	return storage.Linked[T](c, set, storage.RelationSearchMembers)
}

// Results returns the members of the set for key, or nil when no search
// was recorded for it.
func Results[T storage.Entity](c *storage.Context, key Key) ([]T, error) {
	set, ok, err := Find(c, key)
	if err != nil || !ok {
		return nil, err
	}
	return Members[T](c, set)
}
