package parameterization

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zclconf/go-cty/cty"

	"github.com/askiada/go-dataprep/internal/store"
	"github.com/askiada/go-dataprep/pkg/dataprep/model"
	"github.com/askiada/go-dataprep/pkg/dataprep/property"
)

const instanceHolderName = "Parameterization"

// Instance is a local copy of the parameter values of a Parameterization. The
// local holder is reached through a handle the source keeps up to date across
// schema migrations.
type Instance struct {
	source  *Parameterization
	holder  store.Handle
	storage []valueRecord
}

// NewInstance creates an instance whose values start from the canonical ones of
// source. source may be nil and set later.
func NewInstance(source *Parameterization) *Instance {
	i := &Instance{}
	if source != nil {
		i.SetSource(source)
	}

	return i
}

// Source returns the parameterization the instance follows.
func (i *Instance) Source() *Parameterization { return i.source }

// SetSource makes the instance follow source. Local values are carried over
// for every parameter source declares with the same kind.
func (i *Instance) SetSource(source *Parameterization) {
	if source == nil || source == i.source {
		return
	}

	i.snapshot()
	i.detach()

	i.source = source
	source.AddObserver(i)
	i.holder = source.newHolder(instanceHolderName)
	i.reload()
}

// Close stops following the source and releases the local holder.
func (i *Instance) Close() {
	i.snapshot()
	i.detach()
	i.source = nil
}

func (i *Instance) detach() {
	if i.source == nil {
		return
	}

	i.source.RemoveObserver(i)
	i.source.releaseHolder(i.holder)
	i.holder = store.Nil
}

// Holder returns the local value holder.
func (i *Instance) Holder() (*model.Object, error) {
	if i.source == nil {
		return nil, ErrSourceMustBeSet
	}

	holder, ok := i.source.holder(i.holder)
	if !ok {
		i.holder = i.source.newHolder(instanceHolderName)
		i.reload()

		holder, _ = i.source.holder(i.holder)
	}

	return holder, nil
}

// Get returns the local value of parameter name.
func (i *Instance) Get(name string) (cty.Value, error) {
	holder, err := i.Holder()
	if err != nil {
		return cty.NilVal, err
	}

	if holder.Class().FindField(name) == nil {
		return cty.NilVal, errors.Wrap(ErrUnknownParameter, name)
	}

	return holder.Get(name)
}

// Set writes the local value of parameter name.
func (i *Instance) Set(name string, value cty.Value) error {
	holder, err := i.Holder()
	if err != nil {
		return err
	}

	if holder.Class().FindField(name) == nil {
		return errors.Wrap(ErrUnknownParameter, name)
	}

	return holder.Set(name, value)
}

// Apply copies the local values onto the duplicated objects of sourceToCopy.
// Every binding of the source whose target was duplicated is resolved against
// the duplicate and receives the value of its parameter. It returns the number
// of properties written.
func (i *Instance) Apply(sourceToCopy map[*model.Object]*model.Object) (int, error) {
	holder, err := i.Holder()
	if err != nil {
		return 0, err
	}

	applied := 0

	for _, b := range i.source.bindings.all() {
		obj, ok := i.source.bindings.object(b.target)
		if !ok {
			continue
		}

		duplicate := sourceToCopy[obj]
		if duplicate == nil {
			continue
		}

		addr, err := property.ResolveKind(duplicate, b.chain.Clone(), b.kind)
		if err != nil {
			i.source.logger.Warn("unable to apply parameter", "parameter", b.name, "chain", b.chain.String(), "error", err)

			continue
		}

		value, err := holder.Get(b.name)
		if err != nil {
			continue
		}

		if err := addr.Set(value); err != nil {
			i.source.logger.Warn("unable to apply parameter", "parameter", b.name, "chain", b.chain.String(), "error", err)

			continue
		}

		applied++
	}

	return applied, nil
}

// MarshalBinary persists the local values.
func (i *Instance) MarshalBinary() ([]byte, error) {
	i.snapshot()

	data, err := msgpack.Marshal(&document{Values: i.storage})
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode parameterization instance")
	}

	return data, nil
}

// UnmarshalBinary restores local values persisted by MarshalBinary. Values of
// parameters that disappeared or changed kind are dropped.
func (i *Instance) UnmarshalBinary(data []byte) error {
	var doc document
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(ErrInvalidData, err.Error())
	}

	i.storage = doc.Values
	i.reload()

	return nil
}

// snapshot stores the current local values.
func (i *Instance) snapshot() {
	if i.source == nil {
		return
	}

	holder, ok := i.source.holder(i.holder)
	if !ok {
		return
	}

	records, err := encodeValues(holder)
	if err != nil {
		i.source.logger.Warn("unable to snapshot parameterization instance", "error", err)

		return
	}

	i.storage = records
}

// reload resets the local holder to the canonical values and overlays the
// stored ones.
func (i *Instance) reload() {
	if i.source == nil {
		return
	}

	holder, ok := i.source.holder(i.holder)
	if !ok {
		i.holder = i.source.newHolder(instanceHolderName)
		holder, _ = i.source.holder(i.holder)
	} else {
		model.CopyMatchingFields(i.source.canonical.Instance, holder.Instance)
	}

	decodeValues(i.storage, holder)
}

func (i *Instance) SchemaAboutToChange(*model.Class) {
	i.snapshot()
}

func (i *Instance) SchemaChanged(map[*model.Object]*model.Object) {
	if i.source == nil {
		return
	}

	if _, ok := i.source.holder(i.holder); !ok {
		i.holder = i.source.newHolder(instanceHolderName)
		i.reload()
	}
}

func (i *Instance) ReloadValues() {
	i.reload()
}

var _ Observer = (*Instance)(nil)
