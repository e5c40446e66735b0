package property

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// step moves from holder through field f, narrowed to index.
func step(holder *model.Instance, f *model.Field, index int) (Address, bool) {
	if holder == nil || f == nil {
		return Address{}, false
	}

	if index == NoIndex {
		return Address{holder: holder, field: f, index: NoIndex}, true
	}

	acc, ok := accessorFor(f.Kind().Type)
	if !ok || f.Kind().IsStruct() {
		return Address{}, false
	}

	v, err := holder.Get(f.Name())
	if err != nil {
		return Address{}, false
	}

	if index >= acc.length(v) {
		return Address{}, false
	}

	return Address{holder: holder, field: f, index: index}, true
}

// valueHop moves from addr into attribute link.Name of the object value it
// points at, narrowed to link.Index.
func valueHop(addr Address, link Link) (Address, bool) {
	if !hasAttribute(addr.Kind().Type, link.Name) {
		return Address{}, false
	}

	next := addr.below(segment{attr: link.Name, index: NoIndex})
	if link.Index == NoIndex {
		return next, true
	}

	acc, ok := accessorFor(next.Kind().Type)
	if !ok {
		return Address{}, false
	}

	v, err := next.Get()
	if err != nil || link.Index >= acc.length(v) {
		return Address{}, false
	}

	return next.below(segment{index: link.Index}), true
}

// nextOwner returns the class the hop after f is looked up on. Value fields yield
// nil: hops after them walk inside the value. ok is false when f leads to a stale struct class.
func nextOwner(f *model.Field) (*model.Class, bool) {
	if !f.Kind().IsStruct() {
		return nil, true
	}

	st := f.Kind().Struct
	if st.IsStale() {
		return nil, false
	}

	return st, true
}

func descend(addr Address, owner *model.Class) *model.Instance {
	if owner == nil {
		return nil
	}

	return addr.nested()
}

// DeepestValidCache replays the cached fields of chain against obj and returns
// the deepest level still valid together with the address reached there. A
// cached field stays valid while it is declared by the class being walked or one
// of its super classes and still is what that name resolves to. Level is -1 when
// no hop is valid. Hops inside a field value have no cached field and are
// replayed against the value type.
func DeepestValidCache(obj *model.Object, chain Chain) (int, Address) {
	if !obj.IsValid() {
		return -1, Address{}
	}

	owner := obj.Class()
	holder := obj.Instance
	last := rootAddress(holder)

	for level, link := range chain {
		if last.inValue() {
			addr, ok := valueHop(last, link)
			if !ok {
				return level - 1, last
			}

			last = addr

			continue
		}

		f := link.cached
		if f == nil || owner == nil || holder == nil {
			return level - 1, last
		}

		if !owner.IsA(f.Owner()) || owner.FindField(f.Name()) != f {
			return level - 1, last
		}

		addr, ok := step(holder, f, link.Index)
		if !ok {
			return level - 1, last
		}

		next, ok := nextOwner(f)
		if !ok {
			return level - 1, last
		}

		last = addr
		owner = next
		holder = descend(addr, next)
	}

	return len(chain) - 1, last
}

// Resolve returns the address chain leads to from obj. Valid cached hops are
// replayed; the others are looked up by name on the current classes and their
// cache is refreshed in place.
func Resolve(obj *model.Object, chain Chain) (Address, error) {
	if !obj.IsValid() {
		return Address{}, errors.Wrap(ErrUnresolvable, "target is absent")
	}

	if !chain.IsValid() {
		return Address{}, errors.Wrapf(ErrInvalidChain, "%q", chain.String())
	}

	level, addr := DeepestValidCache(obj, chain)

	owner := obj.Class()
	holder := obj.Instance

	if level >= 0 && !addr.inValue() {
		owner, _ = nextOwner(addr.field)
		holder = descend(addr, owner)
	}

	for i := level + 1; i < len(chain); i++ {
		link := &chain[i]
		link.cached = nil

		if addr.inValue() {
			a, ok := valueHop(addr, *link)
			if !ok {
				return Address{}, errors.Wrapf(ErrUnresolvable, "%s: cannot reach %s inside %s", chain, link, chain[:i])
			}

			addr = a

			continue
		}

		if owner == nil {
			return Address{}, errors.Wrapf(ErrUnresolvable, "%s: %s is not a struct", chain, chain[:i])
		}

		f := owner.FindField(link.Name)
		if f == nil {
			return Address{}, errors.Wrapf(ErrUnresolvable, "%s: no field %q on %s", chain, link.Name, owner.Name())
		}

		next, ok := nextOwner(f)
		if !ok {
			return Address{}, errors.Wrapf(ErrUnresolvable, "%s: %s is stale", chain, f.Kind().Struct.Name())
		}

		a, ok := step(holder, f, link.Index)
		if !ok {
			return Address{}, errors.Wrapf(ErrUnresolvable, "%s: cannot index %s", chain, link)
		}

		link.cached = f
		addr = a
		owner = next
		holder = descend(a, next)
	}

	return addr, nil
}

// ResolveKind resolves chain and checks the leaf kind against kind.
func ResolveKind(obj *model.Object, chain Chain, kind model.Kind) (Address, error) {
	addr, err := Resolve(obj, chain)
	if err != nil {
		return Address{}, err
	}

	if !addr.Kind().Equal(kind) {
		return Address{}, errors.Wrapf(ErrKindMismatch, "%s is %s, want %s", chain, addr.Kind(), kind)
	}

	return addr, nil
}
