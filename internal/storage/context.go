package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/roach88/storesync/internal/canon"
)

type kindKey struct {
	kind Kind
	key  Key
}

// Context is a persistence context: an in-memory object graph over the
// committed cache plus a worker goroutine that runs submitted work in FIFO
// order.
//
// Everything except Perform, PerformAsync, Name and Close must be called
// from work running on the context (inside Perform or PerformAsync).
type Context struct {
	p        *Provider
	name     string
	readOnly bool

	queue *workQueue
	done  chan struct{}

	objects  map[ObjectID]Entity
	byKey    map[kindKey]Entity
	children map[ObjectID][]Entity
	order    []Entity
	inserted []Entity
	deleted  []Entity
	links    map[linkKey]*linkSet
}

func newContext(p *Provider, name string, readOnly bool) *Context {
	c := &Context{
		p:        p,
		name:     name,
		readOnly: readOnly,
		queue:    newWorkQueue(),
		done:     make(chan struct{}),
	}
	c.reset()
	return c
}

func (c *Context) reset() {
	c.objects = make(map[ObjectID]Entity)
	c.byKey = make(map[kindKey]Entity)
	c.children = make(map[ObjectID][]Entity)
	c.order = nil
	c.inserted = nil
	c.deleted = nil
	c.links = make(map[linkKey]*linkSet)
}

// Name returns the context's name.
func (c *Context) Name() string { return c.name }

// ReadOnly reports whether the context rejects writes.
func (c *Context) ReadOnly() bool { return c.readOnly }

func (c *Context) run() {
	defer close(c.done)
	for {
		job, drained := c.queue.TryDequeue()
		if job != nil {
			job()
			continue
		}
		if drained {
			return
		}
		<-c.queue.Wait()
	}
}

// Perform runs fn on the context's worker and waits for it. Perform is not
// re-entrant: calling it from work already running on the same context
// deadlocks.
//
// If fn fails, unsaved changes made by fn are discarded.
func (c *Context) Perform(fn func(c *Context) error) error {
	errc := make(chan error, 1)
	if !c.queue.Enqueue(func() { errc <- c.invoke(fn) }) {
		return ErrContextClosed
	}
	return <-errc
}

// PerformAsync queues fn on the context's worker without waiting.
func (c *Context) PerformAsync(fn func(c *Context) error) error {
	if !c.queue.Enqueue(func() {
		if err := c.invoke(fn); err != nil {
			c.p.logger.Warn("async work failed", "context", c.name, "error", err)
		}
	}) {
		return ErrContextClosed
	}
	return nil
}

func (c *Context) invoke(fn func(c *Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("context %s: panic: %v", c.name, r)
		}
		if err != nil {
			c.discard()
		}
	}()
	return fn(c)
}

// Close stops accepting work and waits for queued work to finish.
func (c *Context) Close() {
	c.queue.Close()
	<-c.done
	c.p.removeContext(c)
}

// HasChanges reports whether the context holds unsaved inserts, deletes,
// link changes or modified objects.
func (c *Context) HasChanges() bool {
	if len(c.inserted) > 0 || len(c.deleted) > 0 {
		return true
	}
	for _, ls := range c.links {
		if ls.dirty() {
			return true
		}
	}
	for _, e := range c.order {
		if c.isModified(e) {
			return true
		}
	}
	return false
}

// discard drops every unsaved change. Loaded objects that were modified are
// forgotten too, so the next lookup reloads committed state.
func (c *Context) discard() {
	if c.readOnly || !c.HasChanges() {
		return
	}
	c.reset()
}

// Find returns the entity of type T with the given key, loading it from the
// database when the context does not hold it yet.
func Find[T Entity](c *Context, key Key) (T, bool, error) {
	var zero T
	e, ok, err := c.find(kindOf[T](), key)
	if err != nil || !ok {
		return zero, ok, err
	}
	t, ok := e.(T)
	if !ok {
		return zero, false, fmt.Errorf("find %s: unexpected type %T", key, e)
	}
	return t, true, nil
}

// Insert creates a new entity of type T with the given key. Owned rows pass
// their owner as parent; top-level entities pass nil.
func Insert[T Entity](c *Context, key Key, parent Entity) (T, error) {
	var zero T
	e, err := c.insert(kindOf[T](), key, parent)
	if err != nil {
		return zero, err
	}
	return e.(T), nil
}

func (c *Context) find(kind Kind, key Key) (Entity, bool, error) {
	if e, ok := c.byKey[kindKey{kind, key}]; ok {
		if e.meta().state == stateDeleted {
			return nil, false, nil
		}
		return e, true, nil
	}

	row := c.p.db.QueryRow(`SELECT `+objectColumns+` FROM objects
		WHERE kind = ? AND site_id = ? AND entity_key = ?`,
		string(kind), key.SiteID, key.ID)
	e, err := c.scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find %s %s: %w", kind, key, err)
	}
	return e, true, nil
}

// byID returns the managed entity with the given ID, loading it when
// needed. Deleted entities are reported as absent.
func (c *Context) byID(id ObjectID) (Entity, bool, error) {
	if e, ok := c.objects[id]; ok {
		return e, e.meta().state != stateDeleted, nil
	}

	row := c.p.db.QueryRow(`SELECT `+objectColumns+` FROM objects WHERE id = ?`, string(id))
	e, err := c.scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", id, err)
	}
	return e, true, nil
}

const objectColumns = "kind, id, site_id, entity_key, parent_id, payload, generation"

type rowScanner interface {
	Scan(dest ...any) error
}

// scanObject decodes one objects row (objectColumns) and registers it,
// returning the already-managed instance when the context holds the ID.
func (c *Context) scanObject(row rowScanner) (Entity, error) {
	var (
		kind, id, entityKey, payload string
		parentID                     sql.NullString
		siteID, generation           int64
	)
	if err := row.Scan(&kind, &id, &siteID, &entityKey, &parentID, &payload, &generation); err != nil {
		return nil, err
	}

	if e, ok := c.objects[ObjectID(id)]; ok {
		return e, nil
	}

	e, err := newEntity(Kind(kind))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), e); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", kind, id, err)
	}
	_, fingerprint, err := canon.Fingerprint(canon.DomainObject, e)
	if err != nil {
		return nil, err
	}

	m := e.meta()
	m.id = ObjectID(id)
	m.key = Key{SiteID: siteID, ID: entityKey}
	m.parentID = ObjectID(parentID.String)
	m.generation = generation
	m.fingerprint = fingerprint
	m.state = statePersisted
	if parent, ok := c.objects[m.parentID]; ok {
		m.parent = parent
	}

	c.register(e)
	return e, nil
}

func (c *Context) register(e Entity) {
	m := e.meta()
	c.objects[m.id] = e
	c.byKey[kindKey{e.Kind(), m.key}] = e
	if pid := m.ParentID(); pid != "" {
		c.children[pid] = append(c.children[pid], e)
	}
	c.order = append(c.order, e)
}

func (c *Context) insert(kind Kind, key Key, parent Entity) (Entity, error) {
	if c.readOnly {
		return nil, ErrReadOnlyContext
	}
	if parent != nil {
		if pm := parent.meta(); c.objects[pm.id] != parent || pm.state == stateDeleted {
			return nil, fmt.Errorf("insert %s %s: parent: %w", kind, key, ErrDetached)
		}
	}

	_, exists, err := c.find(kind, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &DuplicateKeyError{Kind: kind, Key: key}
	}

	e, err := newEntity(kind)
	if err != nil {
		return nil, err
	}
	m := e.meta()
	m.id = c.p.ids.NewID()
	m.key = key
	m.parent = parent
	m.state = stateNew

	c.register(e)
	c.inserted = append(c.inserted, e)
	return e, nil
}

// Delete removes e and, transitively, every owned row of e. Objects that
// were never saved are simply forgotten.
func (c *Context) Delete(e Entity) error {
	if c.readOnly {
		return ErrReadOnlyContext
	}
	m := e.meta()
	if c.objects[m.id] != e {
		return fmt.Errorf("delete %s %s: %w", e.Kind(), m.key, ErrDetached)
	}
	if m.state == stateDeleted {
		return nil
	}

	// Load persisted owned rows so none of them outlives its owner here.
	if m.state == statePersisted {
		if err := c.loadChildren(m.id); err != nil {
			return err
		}
	}

	for _, child := range append([]Entity(nil), c.children[m.id]...) {
		if err := c.Delete(child); err != nil {
			return err
		}
	}

	if m.state == stateNew {
		c.forget(e)
		c.inserted = removeEntity(c.inserted, e)
		return nil
	}

	m.state = stateDeleted
	c.deleted = append(c.deleted, e)
	return nil
}

func (c *Context) loadChildren(parentID ObjectID) error {
	_, err := c.query(`SELECT `+objectColumns+` FROM objects WHERE parent_id = ?`, string(parentID))
	if err != nil {
		return fmt.Errorf("load children of %s: %w", parentID, err)
	}
	return nil
}

// query loads every row of a SELECT over objectColumns.
func (c *Context) query(query string, args ...any) ([]Entity, error) {
	rows, err := c.p.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		e, err := c.scanObject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// forget unregisters an entity from every index of the context.
func (c *Context) forget(e Entity) {
	m := e.meta()
	delete(c.objects, m.id)
	if c.byKey[kindKey{e.Kind(), m.key}] == e {
		delete(c.byKey, kindKey{e.Kind(), m.key})
	}
	if pid := m.ParentID(); pid != "" {
		c.children[pid] = removeEntity(c.children[pid], e)
		if len(c.children[pid]) == 0 {
			delete(c.children, pid)
		}
	}
	delete(c.children, m.id)
	c.order = removeEntity(c.order, e)
	for k, ls := range c.links {
		if ls.owner == e {
			delete(c.links, k)
		}
	}
}

func removeEntity(list []Entity, e Entity) []Entity {
	for i, other := range list {
		if other == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// isModified reports whether a persisted object's content differs from what
// was last loaded or saved.
func (c *Context) isModified(e Entity) bool {
	m := e.meta()
	if m.state != statePersisted {
		return false
	}
	_, fp, err := canon.Fingerprint(canon.DomainObject, e)
	return err != nil || fp != m.fingerprint
}

// refresh reloads a managed object's content in place. The object keeps its
// identity; its link caches are dropped.
func (c *Context) refresh(e Entity) error {
	m := e.meta()
	var payload string
	var generation int64
	err := c.p.db.QueryRow(`SELECT payload, generation FROM objects WHERE id = ?`, string(m.id)).
		Scan(&payload, &generation)
	if errors.Is(err, sql.ErrNoRows) {
		c.markGone(e)
		return nil
	}
	if err != nil {
		return fmt.Errorf("refresh %s: %w", m.id, err)
	}

	saved := *m
	v := reflect.ValueOf(e).Elem()
	v.Set(reflect.Zero(v.Type()))
	if err := json.Unmarshal([]byte(payload), e); err != nil {
		*e.meta() = saved
		return fmt.Errorf("refresh %s: decode: %w", m.id, err)
	}
	_, fp, err := canon.Fingerprint(canon.DomainObject, e)
	if err != nil {
		*e.meta() = saved
		return err
	}
	m = e.meta()
	*m = saved
	m.generation = generation
	m.fingerprint = fp
	c.dropLinks(e)
	return nil
}

// markGone records that a managed object no longer exists in the database.
func (c *Context) markGone(e Entity) {
	for _, child := range append([]Entity(nil), c.children[e.meta().id]...) {
		c.markGone(child)
	}
	c.forget(e)
	e.meta().state = stateDeleted
}
