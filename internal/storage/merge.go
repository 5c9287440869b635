package storage

// merge applies a change set committed by another context. Deleted objects
// are dropped; updated objects are refreshed in place when the committed
// generation is newer than the one held here. In derived contexts, objects
// with unsaved modifications are left alone.
func (c *Context) merge(cs ChangeSet) error {
	for _, ref := range cs.Deleted {
		e, ok := c.objects[ref.ID]
		if !ok {
			continue
		}
		c.forget(e)
		c.deleted = removeEntity(c.deleted, e)
		e.meta().state = stateDeleted
	}

	if len(cs.Deleted) > 0 {
		c.dropStaleLinks()
	}

	for _, ref := range cs.Updated {
		e, ok := c.objects[ref.ID]
		if !ok {
			continue
		}
		m := e.meta()
		if m.state != statePersisted || m.generation >= ref.Generation {
			continue
		}
		if !c.readOnly && (c.isModified(e) || c.hasDirtyLinks(e)) {
			c.p.logger.Debug("keep locally modified object",
				"context", c.name, "kind", ref.Kind, "key", ref.Key.String())
			continue
		}
		if err := c.refresh(e); err != nil {
			return err
		}
	}
	return nil
}

// dropStaleLinks forgets clean link sets that still list a deleted member.
func (c *Context) dropStaleLinks() {
	for k, ls := range c.links {
		if ls.dirty() {
			continue
		}
		for _, m := range ls.members {
			if m.meta().state == stateDeleted {
				delete(c.links, k)
				break
			}
		}
	}
}

func (c *Context) hasDirtyLinks(e Entity) bool {
	for k, ls := range c.links {
		if k.owner == e && ls.dirty() {
			return true
		}
	}
	return false
}
