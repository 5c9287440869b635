package storage

import (
	"fmt"
	"slices"
	"strings"
)

// Query selects entities of one kind.
type Query struct {
	// SiteID restricts results to one site unless AnySite is set.
	SiteID  int64
	AnySite bool

	// Parent restricts results to rows owned by this entity.
	Parent Entity

	// Where filters the candidates; nil keeps everything.
	Where func(Entity) bool
}

// FetchAll returns every entity of type T matching q, ordered by key.
// Committed rows are merged with the context's unsaved state: deleted
// objects are excluded and unsaved inserts are included.
func FetchAll[T Entity](c *Context, q Query) ([]T, error) {
	kind := kindOf[T]()
	entities, err := c.fetch(kind, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Children returns the rows of type T owned by parent, ordered by key.
func Children[T Entity](c *Context, parent Entity) ([]T, error) {
	return FetchAll[T](c, Query{AnySite: true, Parent: parent})
}

func (c *Context) fetch(kind Kind, q Query) ([]Entity, error) {
	var (
		where []string
		args  []any
	)
	where = append(where, "kind = ?")
	args = append(args, string(kind))
	if !q.AnySite {
		where = append(where, "site_id = ?")
		args = append(args, q.SiteID)
	}
	var parentID ObjectID
	if q.Parent != nil {
		parentID = q.Parent.meta().id
		where = append(where, "parent_id = ?")
		args = append(args, string(parentID))
	}

	loaded, err := c.query(`SELECT `+objectColumns+` FROM objects WHERE `+
		strings.Join(where, " AND "), args...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", kind, err)
	}

	seen := make(map[ObjectID]bool, len(loaded))
	var out []Entity
	keep := func(e Entity) {
		m := e.meta()
		if seen[m.id] || m.state == stateDeleted {
			return
		}
		seen[m.id] = true
		if q.Where != nil && !q.Where(e) {
			return
		}
		out = append(out, e)
	}

	for _, e := range loaded {
		keep(e)
	}
	for _, e := range c.inserted {
		m := e.meta()
		if e.Kind() != kind || m.state != stateNew {
			continue
		}
		if !q.AnySite && m.key.SiteID != q.SiteID {
			continue
		}
		if q.Parent != nil && m.ParentID() != parentID {
			continue
		}
		keep(e)
	}

	slices.SortFunc(out, func(a, b Entity) int {
		return compareKeys(a.meta().key, b.meta().key)
	})
	return out, nil
}
