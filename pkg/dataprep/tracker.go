package dataprep

import (
	"context"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// orderedSet keeps objects unique in insertion order.
type orderedSet struct {
	order []*model.Object
	index map[*model.Object]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[*model.Object]struct{})}
}

func (s *orderedSet) add(obj *model.Object) {
	if _, ok := s.index[obj]; ok {
		return
	}

	s.index[obj] = struct{}{}
	s.order = append(s.order, obj)
}

func (s *orderedSet) remove(obj *model.Object) {
	if _, ok := s.index[obj]; !ok {
		return
	}

	delete(s.index, obj)

	for i, other := range s.order {
		if other == obj {
			s.order = append(s.order[:i:i], s.order[i+1:]...)

			break
		}
	}
}

func (s *orderedSet) has(obj *model.Object) bool {
	_, ok := s.index[obj]

	return ok
}

func (s *orderedSet) len() int { return len(s.order) }

func (s *orderedSet) clear() {
	s.order = nil
	s.index = make(map[*model.Object]struct{})
}

// changeSet holds the working-set changes queued by the operation of one step.
type changeSet struct {
	added    *orderedSet
	modified *orderedSet
	deleted  *orderedSet
	// removed maps an object to whether its removal is local to the action.
	removed      map[*model.Object]bool
	removedOrder []*model.Object

	dirty         bool
	worldChanged  bool
	assetsChanged bool
}

func newChangeSet() *changeSet {
	return &changeSet{
		added:    newOrderedSet(),
		modified: newOrderedSet(),
		deleted:  newOrderedSet(),
		removed:  make(map[*model.Object]bool),
	}
}

func (c *changeSet) remove(obj *model.Object, localOnly bool) {
	if prev, ok := c.removed[obj]; ok {
		// A shared removal is never downgraded to a local one.
		c.removed[obj] = prev && localOnly

		return
	}

	c.removed[obj] = localOnly
	c.removedOrder = append(c.removedOrder, obj)
}

func (c *changeSet) clear() {
	c.added.clear()
	c.modified.clear()
	c.deleted.clear()
	c.removed = make(map[*model.Object]bool)
	c.removedOrder = nil
	c.dirty = false
	c.worldChanged = false
	c.assetsChanged = false
}

// processWorkingSetChanged applies the changes queued during the last step to
// the selection, the run context and the object store.
func (a *Action) processWorkingSetChanged(ctx context.Context) {
	changes := a.changes
	if !changes.dirty && changes.modified.len() == 0 {
		return
	}

	defer changes.clear()

	live := newOrderedSet()
	for _, obj := range a.selection {
		live.add(obj)
	}

	for _, obj := range changes.removedOrder {
		if changes.deleted.has(obj) {
			continue
		}

		live.remove(obj)

		if changes.removed[obj] {
			continue
		}

		if a.runCtx.Assets.Remove(obj) {
			changes.assetsChanged = true
		}

		if a.runCtx.removeActor(obj) {
			changes.worldChanged = true
		}
	}

	a.purge(changes.deleted.order, live)

	a.rebuild(ctx)

	for _, obj := range changes.added.order {
		if !changes.deleted.has(obj) {
			live.add(obj)
		}
	}

	a.selection = live.order

	if (changes.worldChanged || changes.assetsChanged) && a.runCtx.OnWorkingSetChanged != nil {
		a.runCtx.OnWorkingSetChanged(changes.worldChanged, changes.assetsChanged, a.runCtx.Assets.List())
	}
}

// purge destroys actors and disposes assets queued for deletion.
func (a *Action) purge(deleted []*model.Object, live *orderedSet) {
	if len(deleted) == 0 {
		return
	}

	store := a.runCtx.Store
	changes := a.changes

	for _, obj := range deleted {
		live.remove(obj)

		if a.runCtx.removeActor(obj) {
			changes.worldChanged = true

			if store != nil {
				if err := store.Destroy(obj); err != nil {
					a.runLogger.Warn("unable to destroy actor", "object", obj.Path(), "error", err)
				}
			} else {
				obj.Destroy()
			}

			continue
		}

		if a.runCtx.Assets.Remove(obj) {
			changes.assetsChanged = true
		}

		if store != nil {
			if err := store.Dispose(obj); err != nil {
				a.runLogger.Warn("unable to dispose asset", "object", obj.Path(), "error", err)
			}
		} else {
			obj.Destroy()
		}
	}

	if store != nil {
		collected := store.CollectGarbage()
		a.runLogger.Debug("objects collected", "action", a.name, "count", collected)
	}
}

// rebuild sends the modified and added assets that survived the step to the
// rebuild service, each one once.
func (a *Action) rebuild(ctx context.Context) {
	changes := a.changes
	batch := newOrderedSet()

	for _, objs := range [][]*model.Object{changes.modified.order, changes.added.order} {
		for _, obj := range objs {
			if changes.deleted.has(obj) || !a.isAsset(obj) {
				continue
			}

			batch.add(obj)
		}
	}

	if batch.len() == 0 || a.runCtx.Rebuilder == nil {
		return
	}

	if err := a.runCtx.Rebuilder.Rebuild(ctx, batch.order, a.runCtx.Reporter); err != nil {
		a.runLogger.Warn("unable to rebuild assets", "action", a.name, "count", batch.len(), "error", err)
	}
}
