package storage

import (
	"fmt"
	"slices"
)

type linkKey struct {
	relation Relation
	owner    Entity
}

// linkSet is a context's view of one owner's members in one relation.
type linkSet struct {
	owner     Entity
	relation  Relation
	committed map[ObjectID]bool
	members   []Entity
}

func (ls *linkSet) current() map[ObjectID]bool {
	ids := make(map[ObjectID]bool, len(ls.members))
	for _, m := range ls.members {
		if m.meta().state != stateDeleted {
			ids[m.meta().id] = true
		}
	}
	return ids
}

func (ls *linkSet) dirty() bool {
	cur := ls.current()
	if len(cur) != len(ls.committed) {
		return true
	}
	for id := range cur {
		if !ls.committed[id] {
			return true
		}
	}
	return false
}

func (ls *linkSet) index(member Entity) int {
	return slices.Index(ls.members, member)
}

func (c *Context) linkSet(owner Entity, rel Relation) (*linkSet, error) {
	om := owner.meta()
	if c.objects[om.id] != owner {
		return nil, fmt.Errorf("links %s of %s: %w", rel, om.key, ErrDetached)
	}

	k := linkKey{rel, owner}
	if ls, ok := c.links[k]; ok {
		return ls, nil
	}

	ls := &linkSet{owner: owner, relation: rel, committed: make(map[ObjectID]bool)}
	if om.state == statePersisted {
		ids, err := c.memberIDs(om.id, rel)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			ls.committed[id] = true
			member, ok, err := c.byID(id)
			if err != nil {
				return nil, err
			}
			if ok {
				ls.members = append(ls.members, member)
			}
		}
	}
	c.links[k] = ls
	return ls, nil
}

func (c *Context) memberIDs(owner ObjectID, rel Relation) ([]ObjectID, error) {
	rows, err := c.p.db.Query(`
		SELECT member_id FROM links WHERE relation = ? AND owner_id = ?
		ORDER BY member_id`, string(rel), string(owner))
	if err != nil {
		return nil, fmt.Errorf("load links %s of %s: %w", rel, owner, err)
	}
	defer rows.Close()

	var ids []ObjectID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		ids = append(ids, ObjectID(id))
	}
	return ids, rows.Err()
}

// Members returns owner's current members in rel, ordered by key.
func (c *Context) Members(owner Entity, rel Relation) ([]Entity, error) {
	ls, err := c.linkSet(owner, rel)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(ls.members))
	for _, m := range ls.members {
		if m.meta().state != stateDeleted {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b Entity) int {
		return compareKeys(a.meta().key, b.meta().key)
	})
	return out, nil
}

// Linked returns owner's members in rel that are of type T.
func Linked[T Entity](c *Context, owner Entity, rel Relation) ([]T, error) {
	members, err := c.Members(owner, rel)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(members))
	for _, m := range members {
		if t, ok := m.(T); ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Link adds member to owner's rel. Linking an existing member is a no-op.
func (c *Context) Link(owner Entity, rel Relation, member Entity) error {
	if c.readOnly {
		return ErrReadOnlyContext
	}
	if mm := member.meta(); c.objects[mm.id] != member || mm.state == stateDeleted {
		return fmt.Errorf("link %s: member %s: %w", rel, mm.key, ErrDetached)
	}
	ls, err := c.linkSet(owner, rel)
	if err != nil {
		return err
	}
	if ls.index(member) < 0 {
		ls.members = append(ls.members, member)
	}
	return nil
}

// Unlink removes member from owner's rel.
func (c *Context) Unlink(owner Entity, rel Relation, member Entity) error {
	if c.readOnly {
		return ErrReadOnlyContext
	}
	ls, err := c.linkSet(owner, rel)
	if err != nil {
		return err
	}
	if i := ls.index(member); i >= 0 {
		ls.members = slices.Delete(ls.members, i, i+1)
	}
	return nil
}

// SetMembers replaces owner's rel with members. Duplicates collapse.
func (c *Context) SetMembers(owner Entity, rel Relation, members []Entity) error {
	if c.readOnly {
		return ErrReadOnlyContext
	}
	ls, err := c.linkSet(owner, rel)
	if err != nil {
		return err
	}
	next := make([]Entity, 0, len(members))
	for _, m := range members {
		mm := m.meta()
		if c.objects[mm.id] != m || mm.state == stateDeleted {
			return fmt.Errorf("set %s: member %s: %w", rel, mm.key, ErrDetached)
		}
		if !slices.Contains(next, m) {
			next = append(next, m)
		}
	}
	ls.members = next
	return nil
}

// dropLinks forgets the cached link sets owned by e.
func (c *Context) dropLinks(e Entity) {
	for k := range c.links {
		if k.owner == e {
			delete(c.links, k)
		}
	}
}
