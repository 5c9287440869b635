package storage

import "sync"

// View is the read-only foreground context. Its objects are refreshed in
// place when derived contexts save, and its observers are told about every
// non-empty change set.
type View struct {
	ctx *Context

	mu        sync.Mutex
	observers []observer
	nextID    int
}

type observer struct {
	id int
	fn func(ChangeSet)
}

// Context returns the underlying read-only context.
func (v *View) Context() *Context {
	return v.ctx
}

// Read runs fn on the view's worker and waits for it.
func (v *View) Read(fn func(c *Context) error) error {
	return v.ctx.Perform(fn)
}

// Subscribe registers fn to be called after each published change set has
// been merged into the view. Observers run in subscription order on the
// saving context's worker goroutine, outside the view's worker. Like
// Perform, that worker is not re-entrant: an observer must not call
// Perform on the context that saved (normally Provider.Writer), or the
// save never returns. Use PerformAsync to queue follow-up writes. The
// returned func cancels the subscription.
func (v *View) Subscribe(fn func(ChangeSet)) (cancel func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextID++
	id := v.nextID
	v.observers = append(v.observers, observer{id: id, fn: fn})

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		for i, o := range v.observers {
			if o.id == id {
				v.observers = append(v.observers[:i], v.observers[i+1:]...)
				return
			}
		}
	}
}

func (v *View) notify(cs ChangeSet) {
	v.mu.Lock()
	observers := append([]observer(nil), v.observers...)
	v.mu.Unlock()

	for _, o := range observers {
		o.fn(cs)
	}
}

// Load returns the view's instance of the entity of type T with key.
// Repeated loads return the same instance.
func Load[T Entity](v *View, key Key) (T, bool, error) {
	var (
		out T
		ok  bool
	)
	err := v.Read(func(c *Context) error {
		var err error
		out, ok, err = Find[T](c, key)
		return err
	})
	return out, ok, err
}

// LoadAll returns the view's entities of type T matching q, ordered by key.
func LoadAll[T Entity](v *View, q Query) ([]T, error) {
	var out []T
	err := v.Read(func(c *Context) error {
		var err error
		out, err = FetchAll[T](c, q)
		return err
	})
	return out, err
}

// LoadLinked returns the members of owner's rel that are of type T.
func LoadLinked[T Entity](v *View, owner Entity, rel Relation) ([]T, error) {
	var out []T
	err := v.Read(func(c *Context) error {
		var err error
		out, err = Linked[T](c, owner, rel)
		return err
	})
	return out, err
}

// Count returns the number of committed entities of type T matching q.
func Count[T Entity](v *View, q Query) (int, error) {
	var n int
	err := v.Read(func(c *Context) error {
		entities, err := c.fetch(kindOf[T](), q)
		n = len(entities)
		return err
	})
	return n, err
}
