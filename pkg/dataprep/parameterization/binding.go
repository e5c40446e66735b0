package parameterization

import (
	"sort"

	"github.com/google/uuid"

	"github.com/askiada/go-dataprep/internal/store"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
	"github.com/askiada/go-dataprep/pkg/dataprep/property"
)

// binding links a property of a target object to a parameter name. The target
// is not owned: it is reached through a handle and may die at any time.
type binding struct {
	target store.Handle
	chain  property.Chain
	kind   model.Kind
	name   string
}

// BindingInfo describes a binding for callers outside the package.
type BindingInfo struct {
	Object *model.Object
	Chain  property.Chain
	Kind   model.Kind
	Name   string
}

type bindingKey struct {
	target store.Handle
	chain  string
}

func (b *binding) key() bindingKey {
	return bindingKey{target: b.target, chain: b.chain.Key()}
}

// registry indexes bindings by identity, parameter name and target object.
type registry struct {
	objects  *store.Arena[*model.Object]
	handles  map[uuid.UUID]store.Handle
	byKey    map[bindingKey]*binding
	byName   map[string][]*binding
	byObject map[store.Handle][]*binding
	order    []*binding
}

func newRegistry() *registry {
	return &registry{
		objects:  store.NewArena[*model.Object](),
		handles:  make(map[uuid.UUID]store.Handle),
		byKey:    make(map[bindingKey]*binding),
		byName:   make(map[string][]*binding),
		byObject: make(map[store.Handle][]*binding),
	}
}

// track returns the handle of obj, registering it on first use.
func (r *registry) track(obj *model.Object) store.Handle {
	if h, ok := r.handles[obj.ID()]; ok && r.objects.Alive(h) {
		return h
	}

	h := r.objects.Insert(obj)
	r.handles[obj.ID()] = h

	return h
}

func (r *registry) handleOf(obj *model.Object) (store.Handle, bool) {
	if obj == nil {
		return store.Nil, false
	}

	h, ok := r.handles[obj.ID()]

	return h, ok
}

// object returns the live target behind h.
func (r *registry) object(h store.Handle) (*model.Object, bool) {
	obj, ok := r.objects.Get(h)
	if !ok || !obj.IsValid() {
		return nil, false
	}

	return obj, true
}

func (r *registry) find(obj *model.Object, chain property.Chain) *binding {
	h, ok := r.handleOf(obj)
	if !ok {
		return nil
	}

	return r.byKey[bindingKey{target: h, chain: chain.Key()}]
}

// add registers b and returns the bindings of the same object that address a
// part of what b addresses. The caller removes them.
func (r *registry) add(b *binding) []*binding {
	var contained []*binding

	for _, other := range r.byObject[b.target] {
		if other.chain.HasPrefix(b.chain) {
			contained = append(contained, other)
		}
	}

	r.byKey[b.key()] = b
	r.byName[b.name] = append(r.byName[b.name], b)
	r.byObject[b.target] = append(r.byObject[b.target], b)
	r.order = append(r.order, b)

	return contained
}

// remove drops b and reports whether its name has no binding left.
func (r *registry) remove(b *binding) bool {
	if r.byKey[b.key()] != b {
		return false
	}

	delete(r.byKey, b.key())
	r.byName[b.name] = without(r.byName[b.name], b)
	r.byObject[b.target] = without(r.byObject[b.target], b)
	r.order = without(r.order, b)

	if len(r.byObject[b.target]) == 0 {
		delete(r.byObject, b.target)
		r.release(b.target)
	}

	if len(r.byName[b.name]) == 0 {
		delete(r.byName, b.name)

		return true
	}

	return false
}

func (r *registry) release(h store.Handle) {
	obj, ok := r.objects.Get(h)
	if !ok {
		return
	}

	delete(r.handles, obj.ID())
	_ = r.objects.Remove(h)
}

// containing returns the binding of obj that chain is part of, deepest first.
func (r *registry) containing(obj *model.Object, chain property.Chain) *binding {
	h, ok := r.handleOf(obj)
	if !ok {
		return nil
	}

	var best *binding

	for _, b := range r.byObject[h] {
		if chain.HasPrefix(b.chain) && (best == nil || len(b.chain) > len(best.chain)) {
			best = b
		}
	}

	return best
}

func (r *registry) forName(name string) []*binding {
	out := make([]*binding, len(r.byName[name]))
	copy(out, r.byName[name])

	return out
}

func (r *registry) forObject(obj *model.Object) []*binding {
	h, ok := r.handleOf(obj)
	if !ok {
		return nil
	}

	out := make([]*binding, len(r.byObject[h]))
	copy(out, r.byObject[h])

	return out
}

func (r *registry) hasName(name string) bool {
	return len(r.byName[name]) > 0
}

func (r *registry) names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// all returns the bindings in registration order.
func (r *registry) all() []*binding {
	out := make([]*binding, len(r.order))
	copy(out, r.order)

	return out
}

func without(list []*binding, b *binding) []*binding {
	for i, other := range list {
		if other == b {
			return append(list[:i:i], list[i+1:]...)
		}
	}

	return list
}
