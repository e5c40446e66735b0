package property

import (
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// Address is the resolved location of a value: a field of a holder instance,
// optionally narrowed to one container element and then to attributes and
// elements inside that value. An address with no field is the holder itself.
type Address struct {
	holder *model.Instance
	field  *model.Field
	index  int
	inner  []segment
}

func rootAddress(holder *model.Instance) Address {
	return Address{holder: holder, index: NoIndex}
}

// IsValid reports whether the address points anywhere.
func (a Address) IsValid() bool {
	return a.holder != nil
}

// Holder returns the instance the field is read from.
func (a Address) Holder() *model.Instance { return a.holder }

// Field returns the addressed field, nil for a root address.
func (a Address) Field() *model.Field { return a.field }

// Index returns the element index applied to the field, or NoIndex.
func (a Address) Index() int { return a.index }

// Kind returns the kind of the addressed value.
func (a Address) Kind() model.Kind {
	switch {
	case a.holder == nil:
		return model.Kind{}
	case a.field == nil:
		return model.StructKind(a.holder.Class())
	}

	kind := a.field.Kind()
	if a.index != NoIndex {
		kind = kind.ElementKind()
	}

	for _, s := range a.inner {
		switch {
		case s.attr != "" && hasAttribute(kind.Type, s.attr):
			kind = model.ValueKind(kind.Type.AttributeType(s.attr))
		case s.attr == "":
			kind = kind.ElementKind()
		default:
			return model.Kind{}
		}
	}

	return kind
}

// path returns every hop below the field value.
func (a Address) path() []segment {
	if a.index == NoIndex {
		return a.inner
	}

	return append([]segment{{index: a.index}}, a.inner...)
}

// inValue reports whether further hops walk inside the field value rather than
// a nested struct instance.
func (a Address) inValue() bool {
	return a.field != nil && !a.field.Kind().IsStruct()
}

// below returns a copy of a extended with one more hop inside the value.
func (a Address) below(s segment) Address {
	inner := make([]segment, len(a.inner), len(a.inner)+1)
	copy(inner, a.inner)
	a.inner = append(inner, s)

	return a
}

// Get reads the addressed value.
func (a Address) Get() (cty.Value, error) {
	if a.holder == nil {
		return cty.NilVal, errors.Wrap(ErrUnresolvable, "empty address")
	}

	if a.field == nil {
		return a.holder.Value(), nil
	}

	v, err := a.holder.Get(a.field.Name())
	if err != nil {
		return cty.NilVal, errors.Wrap(ErrUnresolvable, err.Error())
	}

	return getIn(v, a.path())
}

// Set writes the addressed value, converting it to the addressed kind.
func (a Address) Set(value cty.Value) error {
	if a.holder == nil {
		return errors.Wrap(ErrUnresolvable, "empty address")
	}

	if a.field == nil {
		return a.holder.Assign(value)
	}

	path := a.path()
	if len(path) == 0 {
		return a.holder.Set(a.field.Name(), value)
	}

	container, err := a.holder.Get(a.field.Name())
	if err != nil {
		return errors.Wrap(ErrUnresolvable, err.Error())
	}

	updated, err := setIn(container, path, value)
	if err != nil {
		return err
	}

	return a.holder.Set(a.field.Name(), updated)
}

// nested returns the instance further hops are resolved against.
func (a Address) nested() *model.Instance {
	if a.field == nil {
		return a.holder
	}

	return a.holder.Struct(a.field.Name())
}
