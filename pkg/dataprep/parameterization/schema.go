package parameterization

import (
	"strconv"

	"github.com/zclconf/go-cty/cty"

	"github.com/askiada/go-dataprep/internal/store"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// rebuild replaces the schema with a class holding one field per entry of
// kinds, in alphabetical order. The previous class is renamed, hidden and
// marked stale; it is never modified further. seed overrides canonical values
// of the new class.
func (p *Parameterization) rebuild(kinds map[string]model.Kind, migrate bool, seed map[string]cty.Value) {
	old := p.schema
	if old != nil {
		p.notifyAboutToChange(old)

		p.generation++
		old.Rename(p.className + "_REINST_" + strconv.Itoa(p.generation))
		old.MarkStale()
		old.Hide()
	}

	next := model.NewClass(p.className, nil)
	for _, name := range sortedNames(kinds) {
		if _, err := next.AddFieldOfKind(name, kinds[name]); err != nil {
			p.logger.Warn("unable to add parameter field", "parameter", name, "error", err)
		}
	}

	p.schema = next
	oldToNew := p.reinstance(old, next, migrate, seed)

	if old != nil {
		p.notifyChanged(oldToNew)
	}
}

// reinstance creates a replacement for the canonical holder and for every
// tracked holder of old. Replacements start from the new canonical values and,
// when migrate is set, take every field whose name and kind did not change from
// the object they replace.
func (p *Parameterization) reinstance(old, next *model.Class, migrate bool, seed map[string]cty.Value) map[*model.Object]*model.Object {
	oldToNew := make(map[*model.Object]*model.Object)

	canonical := model.NewObject(next, canonicalName)
	if p.canonical != nil {
		if migrate {
			model.CopyMatchingFields(p.canonical.Instance, canonical.Instance)
		}

		oldToNew[p.canonical] = canonical
	}

	for name, v := range seed {
		if err := canonical.Set(name, v); err != nil {
			p.logger.Warn("unable to seed parameter", "parameter", name, "error", err)
		}
	}

	p.canonical = canonical

	if old == nil {
		return oldToNew
	}

	type replaced struct {
		handle store.Handle
		object *model.Object
	}

	var stale []replaced

	p.holders.Each(func(h store.Handle, obj *model.Object) bool {
		if obj.Class() == old {
			stale = append(stale, replaced{handle: h, object: obj})
		}

		return true
	})

	for _, r := range stale {
		holder := model.NewObject(next, r.object.Name())
		model.CopyMatchingFields(canonical.Instance, holder.Instance)

		if migrate {
			model.CopyMatchingFields(r.object.Instance, holder.Instance)
		}

		if err := p.holders.Replace(r.handle, holder); err != nil {
			continue
		}

		oldToNew[r.object] = holder
	}

	return oldToNew
}

// newHolder creates a value holder of the current schema seeded from the
// canonical values and tracks it across migrations.
func (p *Parameterization) newHolder(name string) store.Handle {
	holder := model.NewObject(p.schema, name)
	model.CopyMatchingFields(p.canonical.Instance, holder.Instance)

	return p.holders.Insert(holder)
}

// holder returns the current object behind h.
func (p *Parameterization) holder(h store.Handle) (*model.Object, bool) {
	return p.holders.Get(h)
}

func (p *Parameterization) releaseHolder(h store.Handle) {
	_ = p.holders.Remove(h)
}
