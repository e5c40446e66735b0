package parameterization

import (
	"log/slog"
	"sort"

	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"

	"github.com/askiada/go-dataprep/internal/ctxlog"
	"github.com/askiada/go-dataprep/internal/store"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
	"github.com/askiada/go-dataprep/pkg/dataprep/property"
)

const (
	defaultClassName = "Parameterization"
	canonicalName    = "Default__Parameterization"
)

// Parameterization owns the bindings, the synthesized schema class and its
// canonical value holder. It is not safe for concurrent use.
type Parameterization struct {
	logger    *slog.Logger
	className string

	schema     *model.Class
	canonical  *model.Object
	generation int

	bindings  *registry
	holders   *store.Arena[*model.Object]
	observers []Observer
}

type Option func(p *Parameterization)

// WithLogger sets the logger used to report pruned bindings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parameterization) {
		p.logger = logger
	}
}

// WithClassName names the synthesized schema class.
func WithClassName(name string) Option {
	return func(p *Parameterization) {
		p.className = name
	}
}

// New creates a parameterization with an empty schema.
func New(opts ...Option) *Parameterization {
	p := &Parameterization{
		logger:    ctxlog.Discard(),
		className: defaultClassName,
		bindings:  newRegistry(),
		holders:   store.NewArena[*model.Object](),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.rebuild(map[string]model.Kind{}, false, nil)

	return p
}

// Schema returns the current schema class.
func (p *Parameterization) Schema() *model.Class { return p.schema }

// Canonical returns the value holder of the current schema.
func (p *Parameterization) Canonical() *model.Object { return p.canonical }

// Names returns the parameter names in alphabetical order.
func (p *Parameterization) Names() []string {
	fields := p.schema.Fields()
	names := make([]string, len(fields))

	for i, f := range fields {
		names[i] = f.Name()
	}

	return names
}

// Kind returns the kind of parameter name.
func (p *Parameterization) Kind(name string) (model.Kind, bool) {
	f := p.schema.FindField(name)
	if f == nil {
		return model.Kind{}, false
	}

	return f.Kind(), true
}

func (p *Parameterization) kinds() map[string]model.Kind {
	out := make(map[string]model.Kind)
	for _, f := range p.schema.Fields() {
		out[f.Name()] = f.Kind()
	}

	return out
}

// Bind links the property chain of obj to parameter name. An existing name must
// have the same kind; the binding is added and the property receives the
// current parameter value. A new name gets a schema
// field whose value is seeded from the property. Binding a property already
// bound under another name moves it, and bindings of obj addressing a part of
// the property are dropped.
func (p *Parameterization) Bind(obj *model.Object, chain property.Chain, name string) error {
	if name == "" {
		return ErrInvalidName
	}

	chain = chain.Clone()

	addr, err := property.Resolve(obj, chain)
	if err != nil {
		return errors.Wrapf(err, "bind %s to %s", chain, name)
	}

	kind := addr.Kind()
	kinds := p.kinds()

	existing := p.bindings.find(obj, chain)
	if existing != nil && existing.name == name {
		return nil
	}

	if k, ok := kinds[name]; ok && !k.Equal(kind) {
		return errors.Wrapf(property.ErrKindMismatch, "bind %s: parameter %s is %s, property is %s", chain, name, k, kind)
	}

	var seed map[string]cty.Value

	if _, ok := kinds[name]; !ok {
		v, err := addr.Get()
		if err != nil {
			return errors.Wrapf(err, "bind %s to %s", chain, name)
		}

		kinds[name] = kind
		seed = map[string]cty.Value{name: v}
	}

	var removed []string

	if existing != nil && p.bindings.remove(existing) {
		removed = append(removed, existing.name)
	}

	b := &binding{
		target: p.bindings.track(obj),
		chain:  chain,
		kind:   kind,
		name:   name,
	}

	for _, sub := range p.bindings.add(b) {
		if p.bindings.remove(sub) {
			removed = append(removed, sub.name)
		}
	}

	for _, n := range removed {
		delete(kinds, n)
	}

	if seed != nil || len(removed) > 0 {
		p.rebuild(kinds, true, seed)
	}

	if seed == nil {
		p.pushTo(b)
	}

	return nil
}

// pushTo copies the canonical value of the parameter of b onto its property.
func (p *Parameterization) pushTo(b *binding) {
	value, err := p.canonical.Get(b.name)
	if err != nil {
		return
	}

	addr, err := p.resolve(b)
	if err == nil {
		err = addr.Set(value)
	}

	if err != nil {
		p.logger.Warn("unable to push parameter value", "parameter", b.name, "chain", b.chain.String(), "error", err)
	}
}

// Unbind removes the binding of the property chain of obj. The parameter goes
// away with its last binding.
func (p *Parameterization) Unbind(obj *model.Object, chain property.Chain) error {
	b := p.bindings.find(obj, chain)
	if b == nil {
		return errors.Wrapf(ErrNotBound, "unbind %s", chain)
	}

	if p.bindings.remove(b) {
		kinds := p.kinds()
		delete(kinds, b.name)
		p.rebuild(kinds, true, nil)
	}

	return nil
}

// RemoveBindingsFromObjects drops every binding targeting one of objs. It is
// called when the step owning those objects goes away.
func (p *Parameterization) RemoveBindingsFromObjects(objs ...*model.Object) {
	kinds := p.kinds()
	changed := false

	for _, obj := range objs {
		for _, b := range p.bindings.forObject(obj) {
			if p.bindings.remove(b) {
				delete(kinds, b.name)
				changed = true
			}
		}
	}

	if changed {
		p.rebuild(kinds, true, nil)
	}
}

// IsBound reports whether the property chain of obj is bound.
func (p *Parameterization) IsBound(obj *model.Object, chain property.Chain) bool {
	return p.bindings.find(obj, chain) != nil
}

// ParameterName returns the parameter the property chain of obj is bound to.
func (p *Parameterization) ParameterName(obj *model.Object, chain property.Chain) (string, bool) {
	b := p.bindings.find(obj, chain)
	if b == nil {
		return "", false
	}

	return b.name, true
}

// Bindings lists the bindings whose target is still alive, in bind order.
func (p *Parameterization) Bindings() []BindingInfo {
	var out []BindingInfo

	for _, b := range p.bindings.all() {
		obj, ok := p.bindings.object(b.target)
		if !ok {
			continue
		}

		out = append(out, BindingInfo{Object: obj, Chain: b.chain.Clone(), Kind: b.kind, Name: b.name})
	}

	return out
}

// Value returns the canonical value of parameter name.
func (p *Parameterization) Value(name string) (cty.Value, error) {
	if p.schema.FindField(name) == nil {
		return cty.NilVal, errors.Wrap(ErrUnknownParameter, name)
	}

	return p.canonical.Get(name)
}

// SetValue writes the canonical value of parameter name and pushes it to every
// bound property.
func (p *Parameterization) SetValue(name string, value cty.Value) error {
	if p.schema.FindField(name) == nil {
		return errors.Wrap(ErrUnknownParameter, name)
	}

	if err := p.canonical.Set(name, value); err != nil {
		return errors.Wrapf(err, "set parameter %s", name)
	}

	p.PushValueToBindings(name)

	return nil
}

// SetValueExpression evaluates an HCL literal expression and sets it as the
// value of parameter name.
func (p *Parameterization) SetValueExpression(name, expr string) error {
	v, err := ParseValue(name, expr)
	if err != nil {
		return err
	}

	return p.SetValue(name, v)
}

// ExistingNamesForKind splits the parameter names between those a property of
// kind could be bound to and the others.
func (p *Parameterization) ExistingNamesForKind(kind model.Kind) (valid, invalid []string) {
	for _, f := range p.schema.Fields() {
		if f.Kind().Equal(kind) {
			valid = append(valid, f.Name())
		} else {
			invalid = append(invalid, f.Name())
		}
	}

	return valid, invalid
}

// PushValueToBindings copies the canonical value of name onto every property
// bound to it. Bindings that no longer resolve are dropped. It returns the
// number of properties written.
func (p *Parameterization) PushValueToBindings(name string) int {
	if p.schema.FindField(name) == nil {
		return 0
	}

	value, err := p.canonical.Get(name)
	if err != nil {
		return 0
	}

	pushed := 0

	var stale []*binding

	for _, b := range p.bindings.forName(name) {
		addr, err := p.resolve(b)
		if err != nil {
			p.logger.Warn("dropping parameter binding", "parameter", name, "chain", b.chain.String(), "error", err)
			stale = append(stale, b)

			continue
		}

		if err := addr.Set(value); err != nil {
			p.logger.Warn("unable to push parameter value", "parameter", name, "chain", b.chain.String(), "error", err)

			continue
		}

		pushed++
	}

	p.prune(stale)

	return pushed
}

// OnObjectPostEdit reacts to an edit of the property chain of obj. An edit of
// the canonical holder is pushed to the bindings of the edited parameter. An
// edit of a bound property updates the canonical value from it.
func (p *Parameterization) OnObjectPostEdit(obj *model.Object, chain property.Chain) {
	if obj == nil || len(chain) == 0 {
		return
	}

	if obj == p.canonical {
		p.PushValueToBindings(chain[0].Name)

		return
	}

	b := p.bindings.containing(obj, chain)
	if b == nil {
		return
	}

	p.updateFromBinding(b)
}

func (p *Parameterization) updateFromBinding(b *binding) {
	addr, err := p.resolve(b)
	if err != nil {
		p.logger.Warn("unable to read bound property", "parameter", b.name, "chain", b.chain.String(), "error", err)

		return
	}

	value, err := addr.Get()
	if err != nil {
		return
	}

	if err := p.canonical.Set(b.name, value); err != nil {
		p.logger.Warn("unable to update parameter", "parameter", b.name, "error", err)
	}
}

func (p *Parameterization) resolve(b *binding) (property.Address, error) {
	obj, ok := p.bindings.object(b.target)
	if !ok {
		return property.Address{}, errors.Wrap(property.ErrUnresolvable, "target is absent")
	}

	return property.ResolveKind(obj, b.chain, b.kind)
}

// prune removes stale bindings and rebuilds the schema when a name lost its
// last binding.
func (p *Parameterization) prune(stale []*binding) {
	if len(stale) == 0 {
		return
	}

	kinds := p.kinds()
	changed := false

	for _, b := range stale {
		if p.bindings.remove(b) {
			delete(kinds, b.name)
			changed = true
		}
	}

	if changed {
		p.rebuild(kinds, true, nil)
	}
}

func sortedNames(kinds map[string]model.Kind) []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
