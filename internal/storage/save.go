package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/storesync/internal/canon"
)

// ChangeSet lists the net changes of one committed save.
type ChangeSet struct {
	Seq      int64
	Inserted []ObjectRef
	Updated  []ObjectRef
	Deleted  []ObjectRef
}

// Empty reports whether the save changed nothing.
func (cs ChangeSet) Empty() bool {
	return len(cs.Inserted) == 0 && len(cs.Updated) == 0 && len(cs.Deleted) == 0
}

// Touches reports whether the change set mentions an object of kind.
func (cs ChangeSet) Touches(kind Kind) bool {
	for _, refs := range [][]ObjectRef{cs.Inserted, cs.Updated, cs.Deleted} {
		for _, r := range refs {
			if r.Kind == kind {
				return true
			}
		}
	}
	return false
}

// metaUpdate is applied to an object's Meta once the transaction commits.
type metaUpdate struct {
	e           Entity
	id          ObjectID
	generation  int64
	fingerprint string
}

type saveTx struct {
	tx      *sql.Tx
	changes ChangeSet
	updates []metaUpdate
	remaps  map[ObjectID]ObjectID
	gone    map[ObjectID]bool
	updated map[ObjectID]bool
}

// Save writes the context's pending changes in one transaction and
// publishes the net change set. Objects whose content fingerprint did not
// change are not written; a save without net changes publishes nothing.
func (c *Context) Save() (ChangeSet, error) {
	if c.readOnly {
		return ChangeSet{}, ErrReadOnlyContext
	}

	tx, err := c.p.db.Begin()
	if err != nil {
		return ChangeSet{}, fmt.Errorf("save: begin transaction: %w", err)
	}
	defer tx.Rollback()

	st := &saveTx{
		tx:      tx,
		remaps:  make(map[ObjectID]ObjectID),
		gone:    make(map[ObjectID]bool),
		updated: make(map[ObjectID]bool),
	}

	if err := c.saveDeletes(st); err != nil {
		return ChangeSet{}, fmt.Errorf("save: %w", err)
	}
	if err := c.saveInserts(st); err != nil {
		return ChangeSet{}, fmt.Errorf("save: %w", err)
	}
	if err := c.saveUpdates(st); err != nil {
		return ChangeSet{}, fmt.Errorf("save: %w", err)
	}
	if err := c.saveLinks(st); err != nil {
		return ChangeSet{}, fmt.Errorf("save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ChangeSet{}, fmt.Errorf("save: commit: %w", err)
	}

	c.afterCommit(st)

	cs := st.changes
	if cs.Empty() {
		return cs, nil
	}
	cs.Seq = c.p.clock.Next()
	c.p.publish(c, cs)
	return cs, nil
}

func (c *Context) saveDeletes(st *saveTx) error {
	for _, e := range c.deleted {
		m := e.meta()
		if st.gone[m.id] {
			continue
		}

		rows, err := st.tx.Query(`
			WITH RECURSIVE owned(id) AS (
				SELECT ?
				UNION ALL
				SELECT o.id FROM objects o JOIN owned ON o.parent_id = owned.id
			)
			SELECT o.id, o.kind, o.site_id, o.entity_key, o.generation
			FROM objects o JOIN owned ON o.id = owned.id`, string(m.id))
		if err != nil {
			return fmt.Errorf("collect owned rows of %s: %w", m.id, err)
		}
		var refs []ObjectRef
		for rows.Next() {
			var ref ObjectRef
			var id, kind string
			if err := rows.Scan(&id, &kind, &ref.Key.SiteID, &ref.Key.ID, &ref.Generation); err != nil {
				rows.Close()
				return fmt.Errorf("scan owned row: %w", err)
			}
			ref.ID, ref.Kind = ObjectID(id), Kind(kind)
			refs = append(refs, ref)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if _, err := st.tx.Exec(`DELETE FROM objects WHERE id = ?`, string(m.id)); err != nil {
			return fmt.Errorf("delete %s %s: %w", e.Kind(), m.key, err)
		}
		for _, ref := range refs {
			if !st.gone[ref.ID] {
				st.gone[ref.ID] = true
				st.changes.Deleted = append(st.changes.Deleted, ref)
			}
		}
		st.gone[m.id] = true
	}
	return nil
}

func (c *Context) saveInserts(st *saveTx) error {
	for _, e := range c.inserted {
		m := e.meta()
		if m.state != stateNew {
			continue
		}
		payload, fp, err := canon.Fingerprint(canon.DomainObject, e)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", e.Kind(), m.key, err)
		}

		var existingID, existingFP string
		var generation int64
		err = st.tx.QueryRow(`
			SELECT id, fingerprint, generation FROM objects
			WHERE kind = ? AND site_id = ? AND entity_key = ?`,
			string(e.Kind()), m.key.SiteID, m.key.ID).Scan(&existingID, &existingFP, &generation)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			if err := insertRow(st.tx, e, m.id, payload, fp); err != nil {
				return err
			}
			st.updates = append(st.updates, metaUpdate{e: e, id: m.id, generation: 1, fingerprint: fp})
			st.changes.Inserted = append(st.changes.Inserted, ObjectRef{ID: m.id, Kind: e.Kind(), Key: m.key, Generation: 1})

		case err != nil:
			return fmt.Errorf("lookup %s %s: %w", e.Kind(), m.key, err)

		default:
			// Another context committed the same key first: adopt its row.
			id := ObjectID(existingID)
			st.remaps[m.id] = id
			c.remap(e, id)
			if existingFP != fp {
				generation, err = updateRow(st.tx, id, payload, fp)
				if err != nil {
					return err
				}
				st.markUpdated(e, id, generation)
			}
			st.updates = append(st.updates, metaUpdate{e: e, id: id, generation: generation, fingerprint: fp})
		}
	}
	return nil
}

func (c *Context) saveUpdates(st *saveTx) error {
	for _, e := range c.order {
		m := e.meta()
		if m.state != statePersisted {
			continue
		}
		payload, fp, err := canon.Fingerprint(canon.DomainObject, e)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", e.Kind(), m.key, err)
		}
		if fp == m.fingerprint {
			continue
		}

		generation, err := updateRow(st.tx, m.id, payload, fp)
		if err == nil {
			st.updates = append(st.updates, metaUpdate{e: e, id: m.id, generation: generation, fingerprint: fp})
			st.markUpdated(e, m.id, generation)
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		// No row changed: either the stored content already matches or
		// another context deleted the row.
		err = st.tx.QueryRow(`SELECT generation FROM objects WHERE id = ?`, string(m.id)).Scan(&generation)
		switch {
		case err == nil:
			st.updates = append(st.updates, metaUpdate{e: e, id: m.id, generation: generation, fingerprint: fp})
		case errors.Is(err, sql.ErrNoRows):
			if err := insertRow(st.tx, e, m.id, payload, fp); err != nil {
				return err
			}
			st.updates = append(st.updates, metaUpdate{e: e, id: m.id, generation: 1, fingerprint: fp})
			st.changes.Inserted = append(st.changes.Inserted, ObjectRef{ID: m.id, Kind: e.Kind(), Key: m.key, Generation: 1})
		default:
			return fmt.Errorf("lookup %s: %w", m.id, err)
		}
	}
	return nil
}

func (c *Context) saveLinks(st *saveTx) error {
	for _, ls := range c.links {
		om := ls.owner.meta()
		if om.state == stateDeleted || !ls.dirty() {
			continue
		}

		cur := ls.current()
		changed := false
		for id := range cur {
			if ls.committed[id] {
				continue
			}
			res, err := st.tx.Exec(`
				INSERT INTO links (relation, owner_id, member_id) VALUES (?, ?, ?)
				ON CONFLICT DO NOTHING`, string(ls.relation), string(om.id), string(id))
			if err != nil {
				return fmt.Errorf("link %s %s -> %s: %w", ls.relation, om.id, id, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				changed = true
			}
		}
		for id := range ls.committed {
			if cur[id] || st.gone[id] {
				continue
			}
			res, err := st.tx.Exec(`
				DELETE FROM links WHERE relation = ? AND owner_id = ? AND member_id = ?`,
				string(ls.relation), string(om.id), string(id))
			if err != nil {
				return fmt.Errorf("unlink %s %s -> %s: %w", ls.relation, om.id, id, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				changed = true
			}
		}

		if changed && !st.updated[om.id] && !st.inserted(om.id) {
			var generation int64
			err := st.tx.QueryRow(`
				UPDATE objects SET generation = generation + 1 WHERE id = ?
				RETURNING generation`, string(om.id)).Scan(&generation)
			if err != nil {
				return fmt.Errorf("bump %s: %w", om.id, err)
			}
			st.updates = append(st.updates, metaUpdate{e: ls.owner, id: om.id, generation: generation, fingerprint: om.fingerprint})
			st.markUpdated(ls.owner, om.id, generation)
		}
	}
	return nil
}

func (st *saveTx) markUpdated(e Entity, id ObjectID, generation int64) {
	if st.updated[id] {
		for i := range st.changes.Updated {
			if st.changes.Updated[i].ID == id {
				st.changes.Updated[i].Generation = generation
			}
		}
		return
	}
	st.updated[id] = true
	st.changes.Updated = append(st.changes.Updated, ObjectRef{ID: id, Kind: e.Kind(), Key: e.meta().key, Generation: generation})
}

func (st *saveTx) inserted(id ObjectID) bool {
	for _, ref := range st.changes.Inserted {
		if ref.ID == id {
			return true
		}
	}
	return false
}

func insertRow(tx *sql.Tx, e Entity, id ObjectID, payload []byte, fp string) error {
	m := e.meta()
	var parent any
	if pid := m.ParentID(); pid != "" {
		parent = string(pid)
	}
	_, err := tx.Exec(`
		INSERT INTO objects (id, kind, site_id, entity_key, parent_id, payload, fingerprint, generation)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
		string(id), string(e.Kind()), m.key.SiteID, m.key.ID, parent, string(payload), fp)
	if err != nil {
		return fmt.Errorf("insert %s %s: %w", e.Kind(), m.key, err)
	}
	return nil
}

// updateRow writes new content and bumps the generation. It returns
// sql.ErrNoRows when the row is missing or already holds fp.
func updateRow(tx *sql.Tx, id ObjectID, payload []byte, fp string) (int64, error) {
	var generation int64
	err := tx.QueryRow(`
		UPDATE objects SET payload = ?, fingerprint = ?, generation = generation + 1
		WHERE id = ? AND fingerprint <> ?
		RETURNING generation`, string(payload), fp, string(id), fp).Scan(&generation)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", id, err)
	}
	return generation, nil
}

// remap moves a new object to the ID of the committed row with its key.
func (c *Context) remap(e Entity, id ObjectID) {
	m := e.meta()
	old := m.id
	delete(c.objects, old)
	m.id = id
	c.objects[id] = e
	if kids, ok := c.children[old]; ok {
		delete(c.children, old)
		c.children[id] = append(c.children[id], kids...)
	}
}

func (c *Context) afterCommit(st *saveTx) {
	for _, u := range st.updates {
		m := u.e.meta()
		m.id = u.id
		m.generation = u.generation
		m.fingerprint = u.fingerprint
		m.state = statePersisted
	}
	for _, e := range c.deleted {
		c.forget(e)
	}
	c.inserted = nil
	c.deleted = nil
	for _, ls := range c.links {
		ls.committed = ls.current()
	}
}
