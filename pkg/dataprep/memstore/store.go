// Package memstore is an in-memory object store holding a scratch world and
// the assets created by actions.
package memstore

import (
	"path"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/go-dataprep/internal/store"
	"github.com/askiada/go-dataprep/pkg/dataprep"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

var (
	ErrUnknownObject = errors.New("object does not belong to the store")
	ErrNameTaken     = errors.New("name already taken")
)

const (
	defaultWorldPath    = "/World"
	defaultDisposalPath = "/Transient/Disposed"
)

// Store keeps objects in an arena. Actors live under the world path, disposed
// assets under the disposal path until the next garbage collection.
type Store struct {
	lock sync.Mutex

	objects  *store.Arena[*model.Object]
	handles  map[*model.Object]store.Handle
	paths    map[string]*model.Object
	disposed []*model.Object

	worldPath    string
	disposalPath string
}

var _ dataprep.ObjectStore = (*Store)(nil)

type Option func(s *Store)

// WorldPath sets the outer of spawned actors.
func WorldPath(p string) Option {
	return func(s *Store) {
		s.worldPath = p
	}
}

// DisposalPath sets where disposed assets wait for garbage collection.
func DisposalPath(p string) Option {
	return func(s *Store) {
		s.disposalPath = p
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		objects:      store.NewArena[*model.Object](),
		handles:      make(map[*model.Object]store.Handle),
		paths:        make(map[string]*model.Object),
		worldPath:    defaultWorldPath,
		disposalPath: defaultDisposalPath,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Add registers an existing object. Its path must be free.
func (s *Store) Add(obj *model.Object) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.addLocked(obj)
}

func (s *Store) addLocked(obj *model.Object) error {
	if obj == nil {
		return dataprep.ErrObjectMustBeSet
	}

	if _, ok := s.paths[obj.Path()]; ok {
		return errors.Wrap(ErrNameTaken, obj.Path())
	}

	s.handles[obj] = s.objects.Insert(obj)
	s.paths[obj.Path()] = obj

	return nil
}

// Lookup returns the live object stored at p.
func (s *Store) Lookup(p string) (*model.Object, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	obj, ok := s.paths[p]

	return obj, ok && obj.IsValid()
}

// Len returns the number of objects held, disposed ones included.
func (s *Store) Len() int {
	return s.objects.Len()
}

// World returns the live actors in creation order.
func (s *Store) World() []*model.Object {
	var out []*model.Object

	s.objects.Each(func(_ store.Handle, obj *model.Object) bool {
		if !obj.IsAsset() && obj.IsValid() {
			out = append(out, obj)
		}

		return true
	})

	return out
}

func (s *Store) Duplicate(obj *model.Object, outer, name string) (*model.Object, error) {
	if obj == nil {
		return nil, dataprep.ErrObjectMustBeSet
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	dup := obj.Clone(name)
	dup.SetOuter(outer)
	dup.SetAsset(true)

	if err := s.addLocked(dup); err != nil {
		return nil, err
	}

	return dup, nil
}

func (s *Store) Construct(c *model.Class, outer, name string) (*model.Object, error) {
	if c == nil {
		return nil, dataprep.ErrClassMustBeSet
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	obj := model.NewAsset(c, outer, name)
	if err := s.addLocked(obj); err != nil {
		return nil, err
	}

	return obj, nil
}

// SpawnActor creates an actor under the world path. Name collisions are
// resolved by the caller through Rename.
func (s *Store) SpawnActor(c *model.Class, name string) (*model.Object, error) {
	if c == nil {
		return nil, dataprep.ErrClassMustBeSet
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	actor := model.NewObject(c, name)
	actor.SetOuter(s.worldPath)
	actor.SetName(s.uniqueNameLocked(s.worldPath, name))

	if err := s.addLocked(actor); err != nil {
		return nil, err
	}

	return actor, nil
}

func (s *Store) MakeUniqueName(outer, base string) string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.uniqueNameLocked(outer, base)
}

func (s *Store) uniqueNameLocked(outer, base string) string {
	if _, ok := s.paths[path.Join(outer, base)]; !ok {
		return base
	}

	for i := 1; ; i++ {
		candidate := base + "_" + strconv.Itoa(i)
		if _, ok := s.paths[path.Join(outer, candidate)]; !ok {
			return candidate
		}
	}
}

// Destroy removes an actor from the world immediately.
func (s *Store) Destroy(obj *model.Object) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	h, ok := s.handles[obj]
	if !ok {
		return errors.Wrap(ErrUnknownObject, obj.String())
	}

	s.releaseLocked(obj, h)

	return nil
}

// Dispose moves an asset to the disposal path. It stays in the store until
// CollectGarbage runs.
func (s *Store) Dispose(obj *model.Object) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.handles[obj]; !ok {
		return errors.Wrap(ErrUnknownObject, obj.String())
	}

	delete(s.paths, obj.Path())
	obj.SetOuter(s.disposalPath)
	obj.SetName(s.uniqueNameLocked(s.disposalPath, obj.Name()))
	s.paths[obj.Path()] = obj
	s.disposed = append(s.disposed, obj)

	return nil
}

func (s *Store) CollectGarbage() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	collected := 0

	for _, obj := range s.disposed {
		h, ok := s.handles[obj]
		if !ok {
			continue
		}

		s.releaseLocked(obj, h)
		collected++
	}

	s.disposed = nil

	return collected
}

func (s *Store) IsAsset(obj *model.Object) bool {
	return obj != nil && obj.IsAsset()
}

func (s *Store) releaseLocked(obj *model.Object, h store.Handle) {
	if err := s.objects.Remove(h); err != nil {
		return
	}

	delete(s.handles, obj)

	if s.paths[obj.Path()] == obj {
		delete(s.paths, obj.Path())
	}

	obj.Destroy()
}
