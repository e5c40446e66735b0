package dataprep

import (
	"log/slog"
	"path"

	"github.com/pkg/errors"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// OperationContext is handed to an operation for the duration of one step. It
// exposes the objects the operation works on and queues the changes it makes
// to the working set.
type OperationContext struct {
	action *Action
	step   *Step
}

// Objects returns the current selection.
func (c *OperationContext) Objects() []*model.Object {
	return c.action.Selection()
}

// Params returns the parameter object of the running step.
func (c *OperationContext) Params() *model.Object {
	return c.step.params
}

func (c *OperationContext) Logger() *slog.Logger {
	return c.action.runLogger.With("action", c.action.name, "step", c.step.name)
}

// Context returns the shared run context.
func (c *OperationContext) Context() *Context {
	return c.action.runCtx
}

// AddAsset duplicates asset into the scratch container of its category and
// registers the copy as an added asset.
func (c *OperationContext) AddAsset(asset *model.Object, name string) (*model.Object, error) {
	if asset == nil {
		return nil, ErrObjectMustBeSet
	}

	store, err := c.store()
	if err != nil {
		return nil, err
	}

	outer := c.container(asset.Class().Category())

	added, err := store.Duplicate(asset, outer, store.MakeUniqueName(outer, name))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to duplicate %s", asset.Path())
	}

	c.registerAsset(added)

	return added, nil
}

// CreateAsset constructs a new asset of class cls in the scratch container of
// its category.
func (c *OperationContext) CreateAsset(cls *model.Class, name string) (*model.Object, error) {
	if cls == nil {
		return nil, ErrClassMustBeSet
	}

	store, err := c.store()
	if err != nil {
		return nil, err
	}

	outer := c.container(cls.Category())

	created, err := store.Construct(cls, outer, store.MakeUniqueName(outer, name))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to construct %s", name)
	}

	c.registerAsset(created)

	return created, nil
}

// CreateActor spawns a new actor of class cls in the world. The store picks a
// free name derived from name.
func (c *OperationContext) CreateActor(cls *model.Class, name string) (*model.Object, error) {
	if cls == nil {
		return nil, ErrClassMustBeSet
	}

	store, err := c.store()
	if err != nil {
		return nil, err
	}

	actor, err := store.SpawnActor(cls, name)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to spawn %s", name)
	}

	runCtx := c.action.runCtx
	runCtx.World = append(runCtx.World, actor)

	changes := c.action.changes
	changes.added.add(actor)
	changes.worldChanged = true
	changes.dirty = true

	return actor, nil
}

// RemoveObject drops obj from the working set at the end of the step. A local
// removal only affects this action; otherwise obj also leaves the run context.
func (c *OperationContext) RemoveObject(obj *model.Object, localOnly bool) {
	if obj == nil {
		return
	}

	c.action.changes.remove(obj, localOnly)
	c.action.changes.dirty = true
}

// AssetsModified queues assets for rebuild.
func (c *OperationContext) AssetsModified(assets ...*model.Object) {
	changes := c.action.changes

	for _, asset := range assets {
		if asset == nil || changes.deleted.has(asset) {
			continue
		}

		changes.modified.add(asset)
	}
}

// DeleteObjects queues objects for destruction. A deleted object is not
// rebuilt, even when it was marked modified or added earlier.
func (c *OperationContext) DeleteObjects(objs ...*model.Object) {
	changes := c.action.changes

	for _, obj := range objs {
		if obj == nil {
			continue
		}

		changes.deleted.add(obj)
		changes.modified.remove(obj)
		changes.dirty = true
	}
}

func (c *OperationContext) registerAsset(asset *model.Object) {
	c.action.runCtx.Assets.Add(asset)

	changes := c.action.changes
	changes.added.add(asset)
	changes.assetsChanged = true
	changes.dirty = true
}

// container returns the scratch path assets of category are created under.
func (c *OperationContext) container(category string) string {
	if outer, ok := c.action.containers[category]; ok {
		return outer
	}

	outer := path.Join(c.action.runCtx.ScratchPath, category)
	c.action.containers[category] = outer

	return outer
}

func (c *OperationContext) store() (ObjectStore, error) {
	if c.action.runCtx.Store == nil {
		return nil, ErrStoreMustBeSet
	}

	return c.action.runCtx.Store, nil
}
