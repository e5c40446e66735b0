package parameterization

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	ctymsgpack "github.com/zclconf/go-cty/cty/msgpack"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
	"github.com/askiada/go-dataprep/pkg/dataprep/property"
)

// valueRecord is one persisted parameter value. The schema shape is never
// stored: values are matched back by name and type on load.
type valueRecord struct {
	Name  string `msgpack:"name"`
	Type  []byte `msgpack:"type"`
	Value []byte `msgpack:"value"`
}

type bindingRecord struct {
	Object string `msgpack:"object"`
	Chain  string `msgpack:"chain"`
	Name   string `msgpack:"name"`
}

type document struct {
	Bindings []bindingRecord `msgpack:"bindings,omitempty"`
	Values   []valueRecord   `msgpack:"values"`
}

// ObjectLookup finds a bindable object by ID while loading.
type ObjectLookup func(id uuid.UUID) *model.Object

func encodeValues(holder *model.Object) ([]valueRecord, error) {
	fields := holder.Class().Fields()
	records := make([]valueRecord, 0, len(fields))

	for _, f := range fields {
		v, err := holder.Get(f.Name())
		if err != nil {
			return nil, err
		}

		ty := f.Kind().ImpliedType()

		tyData, err := ctyjson.MarshalType(ty)
		if err != nil {
			return nil, errors.Wrapf(err, "encode type of %s", f.Name())
		}

		data, err := ctymsgpack.Marshal(v, ty)
		if err != nil {
			return nil, errors.Wrapf(err, "encode value of %s", f.Name())
		}

		records = append(records, valueRecord{Name: f.Name(), Type: tyData, Value: data})
	}

	return records, nil
}

// decodeValues restores the records matching a field of holder by name and
// type. It returns the names that were dropped.
func decodeValues(records []valueRecord, holder *model.Object) []string {
	var dropped []string

	for _, rec := range records {
		f := holder.Class().FindField(rec.Name)
		if f == nil {
			dropped = append(dropped, rec.Name)

			continue
		}

		ty, err := ctyjson.UnmarshalType(rec.Type)
		if err != nil || !ty.Equals(f.Kind().ImpliedType()) {
			dropped = append(dropped, rec.Name)

			continue
		}

		v, err := ctymsgpack.Unmarshal(rec.Value, ty)
		if err != nil {
			dropped = append(dropped, rec.Name)

			continue
		}

		if err := holder.Set(rec.Name, v); err != nil {
			dropped = append(dropped, rec.Name)
		}
	}

	return dropped
}

// MarshalBinary persists the bindings and the canonical values.
func (p *Parameterization) MarshalBinary() ([]byte, error) {
	values, err := encodeValues(p.canonical)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode parameterization")
	}

	doc := document{Values: values}

	for _, b := range p.bindings.all() {
		obj, ok := p.bindings.object(b.target)
		if !ok {
			continue
		}

		doc.Bindings = append(doc.Bindings, bindingRecord{
			Object: obj.ID().String(),
			Chain:  b.chain.String(),
			Name:   b.name,
		})
	}

	data, err := msgpack.Marshal(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode parameterization")
	}

	return data, nil
}

// Load replaces the state of p with persisted data. Bindings whose object is
// gone, that no longer resolve, or whose kind conflicts with an earlier binding
// of the same name are dropped. The schema is regenerated from the remaining
// bindings, then the values are restored and observers reload theirs.
func (p *Parameterization) Load(data []byte, lookup ObjectLookup) error {
	var doc document
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(ErrInvalidData, err.Error())
	}

	p.bindings = newRegistry()
	kinds := make(map[string]model.Kind)

	for _, rec := range doc.Bindings {
		b, err := p.loadBinding(rec, lookup, kinds)
		if err != nil {
			p.logger.Warn("dropping persisted binding", "parameter", rec.Name, "chain", rec.Chain, "error", err)

			continue
		}

		kinds[b.name] = b.kind
	}

	p.rebuild(kinds, false, nil)

	if dropped := decodeValues(doc.Values, p.canonical); len(dropped) > 0 {
		p.logger.Warn("persisted parameter values dropped", "parameters", dropped)
	}

	p.notifyReload()

	return nil
}

func (p *Parameterization) loadBinding(rec bindingRecord, lookup ObjectLookup, kinds map[string]model.Kind) (*binding, error) {
	if rec.Name == "" {
		return nil, ErrInvalidName
	}

	id, err := uuid.Parse(rec.Object)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidData, err.Error())
	}

	var obj *model.Object
	if lookup != nil {
		obj = lookup(id)
	}

	chain, err := property.ParseChain(rec.Chain)
	if err != nil {
		return nil, err
	}

	addr, err := property.Resolve(obj, chain)
	if err != nil {
		return nil, err
	}

	kind := addr.Kind()
	if k, ok := kinds[rec.Name]; ok && !k.Equal(kind) {
		return nil, errors.Wrapf(property.ErrKindMismatch, "%s is %s, want %s", chain, kind, k)
	}

	if p.bindings.find(obj, chain) != nil {
		return nil, errors.Wrapf(ErrInvalidData, "%s bound twice", chain)
	}

	b := &binding{target: p.bindings.track(obj), chain: chain, kind: kind, name: rec.Name}
	p.bindings.add(b)

	return b, nil
}
