package dataprep

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// AssetSet is a set of assets iterated in insertion order.
type AssetSet struct {
	order []*model.Object
	index map[*model.Object]struct{}
}

// NewAssetSet creates a set holding assets.
func NewAssetSet(assets ...*model.Object) *AssetSet {
	s := &AssetSet{index: make(map[*model.Object]struct{})}
	for _, asset := range assets {
		s.Add(asset)
	}

	return s
}

// Add inserts asset and reports whether it was missing.
func (s *AssetSet) Add(asset *model.Object) bool {
	if asset == nil {
		return false
	}

	if _, ok := s.index[asset]; ok {
		return false
	}

	s.index[asset] = struct{}{}
	s.order = append(s.order, asset)

	return true
}

// Remove deletes asset and reports whether it was present.
func (s *AssetSet) Remove(asset *model.Object) bool {
	if _, ok := s.index[asset]; !ok {
		return false
	}

	delete(s.index, asset)

	for i, other := range s.order {
		if other == asset {
			s.order = append(s.order[:i:i], s.order[i+1:]...)

			break
		}
	}

	return true
}

func (s *AssetSet) Contains(asset *model.Object) bool {
	if s == nil {
		return false
	}

	_, ok := s.index[asset]

	return ok
}

func (s *AssetSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.order)
}

// List returns a copy of the assets.
func (s *AssetSet) List() []*model.Object {
	if s == nil {
		return []*model.Object{}
	}

	out := make([]*model.Object, len(s.order))
	copy(out, s.order)

	return out
}

// Context is shared by every action of one pipeline run.
type Context struct {
	RunID uuid.UUID
	// World holds the actors of the target world.
	World  []*model.Object
	Assets *AssetSet
	// ScratchPath is where assets created during the run are stored.
	ScratchPath string

	Store     ObjectStore
	Rebuilder RebuildService
	Reporter  ProgressReporter
	Logger    *slog.Logger

	// CanContinue is asked after every step. op or filter is nil depending on
	// the kind of step that just ran. Returning false interrupts the action.
	CanContinue func(action *Action, op Operation, filter Filter) bool
	// OnWorkingSetChanged is called once per reconciliation that changed the
	// world or the asset set.
	OnWorkingSetChanged func(worldChanged, assetsChanged bool, assets []*model.Object)
}

// NewContext creates a run context over world and assets.
func NewContext(scratchPath string, store ObjectStore, world []*model.Object, assets ...*model.Object) *Context {
	return &Context{
		RunID:       uuid.New(),
		World:       append([]*model.Object(nil), world...),
		Assets:      NewAssetSet(assets...),
		ScratchPath: scratchPath,
		Store:       store,
	}
}

// Objects returns the world actors followed by the assets.
func (c *Context) Objects() []*model.Object {
	out := make([]*model.Object, 0, len(c.World)+c.Assets.Len())
	out = append(out, c.World...)

	return append(out, c.Assets.List()...)
}

func (c *Context) removeActor(obj *model.Object) bool {
	for i, actor := range c.World {
		if actor == obj {
			c.World = append(c.World[:i:i], c.World[i+1:]...)

			return true
		}
	}

	return false
}
