package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// ObjectID identifies one persisted object. IDs are assigned on insert and
// never change for the lifetime of the row.
type ObjectID string

// Kind names an entity family. Every Kind maps to exactly one Go type.
type Kind string

// Key is the scope key of an entity: the site it belongs to plus an
// entity-specific identifier. At most one row exists per (Kind, Key).
type Key struct {
	SiteID int64
	ID     string
}

// String returns "site:id".
func (k Key) String() string {
	return fmt.Sprintf("%d:%s", k.SiteID, k.ID)
}

// IDKey builds a key from numeric identifiers joined with "/". Owned rows
// pass their parent's identifiers first so keys never collide across
// parents.
func IDKey(siteID int64, ids ...int64) Key {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return Key{SiteID: siteID, ID: strings.Join(parts, "/")}
}

// StringKey builds a key from string identifiers joined with "/".
func StringKey(siteID int64, parts ...string) Key {
	return Key{SiteID: siteID, ID: strings.Join(parts, "/")}
}

// compareKeys orders keys by site, then by identifier segments. Segments
// that are both integers compare numerically.
func compareKeys(a, b Key) int {
	if a.SiteID != b.SiteID {
		if a.SiteID < b.SiteID {
			return -1
		}
		return 1
	}
	as := strings.Split(a.ID, "/")
	bs := strings.Split(b.ID, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, aerr := strconv.ParseInt(as[i], 10, 64)
		bi, berr := strconv.ParseInt(bs[i], 10, 64)
		if aerr == nil && berr == nil {
			if ai != bi {
				if ai < bi {
					return -1
				}
				return 1
			}
			continue
		}
		if c := strings.Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}

type objectState int

const (
	stateNew objectState = iota + 1
	statePersisted
	stateDeleted
)

// Meta carries the bookkeeping of a managed object. Entity types embed it;
// its fields are owned by the context that manages the object.
type Meta struct {
	id          ObjectID
	key         Key
	parentID    ObjectID
	parent      Entity
	generation  int64
	fingerprint string
	state       objectState
}

// ObjectID returns the object's identifier.
func (m *Meta) ObjectID() ObjectID { return m.id }

// Key returns the object's scope key.
func (m *Meta) Key() Key { return m.key }

// ParentID returns the owning object's identifier, if any.
func (m *Meta) ParentID() ObjectID {
	if m.parent != nil {
		return m.parent.meta().id
	}
	return m.parentID
}

// Generation returns the committed generation the object reflects. It is 0
// for objects that were never saved.
func (m *Meta) Generation() int64 { return m.generation }

// IsDeleted reports whether the object was deleted in its context.
func (m *Meta) IsDeleted() bool { return m.state == stateDeleted }

func (m *Meta) meta() *Meta { return m }

// Entity is implemented by every cached entity type of this package. The
// accessors are provided by the embedded Meta.
type Entity interface {
	Kind() Kind
	ObjectID() ObjectID
	Key() Key
	ParentID() ObjectID
	Generation() int64
	IsDeleted() bool
	meta() *Meta
}

// ObjectRef identifies a changed object in a ChangeSet.
type ObjectRef struct {
	ID         ObjectID
	Kind       Kind
	Key        Key
	Generation int64
}

func refOf(e Entity) ObjectRef {
	m := e.meta()
	return ObjectRef{ID: m.id, Kind: e.Kind(), Key: m.key, Generation: m.generation}
}

// Matching adapts a typed predicate to Query.Where. Entities of other
// types never match.
func Matching[T Entity](fn func(T) bool) func(Entity) bool {
	return func(e Entity) bool {
		t, ok := e.(T)
		return ok && fn(t)
	}
}

func newEntity(kind Kind) (Entity, error) {
	factory, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	return factory(), nil
}

func kindOf[T Entity]() Kind {
	var zero T
	return zero.Kind()
}
