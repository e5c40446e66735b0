package model

import (
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Instance holds the values of one Class. Value fields store cty values, struct
// fields store nested instances. Values are keyed by field name.
type Instance struct {
	class   *Class
	values  map[string]cty.Value
	structs map[string]*Instance
}

// NewInstance creates an instance of c with every field set to its zero value.
func NewInstance(c *Class) *Instance {
	inst := &Instance{
		class:   c,
		values:  make(map[string]cty.Value),
		structs: make(map[string]*Instance),
	}

	for _, f := range c.Fields() {
		inst.initField(f)
	}

	return inst
}

func (i *Instance) initField(f *Field) {
	if f.kind.IsStruct() {
		i.structs[f.name] = NewInstance(f.kind.Struct)

		return
	}

	i.values[f.name] = ZeroValue(f.kind.Type)
}

// Class returns the class of the instance.
func (i *Instance) Class() *Class {
	return i.class
}

func (i *Instance) field(name string) (*Field, error) {
	f := i.class.FindField(name)
	if f == nil {
		return nil, errors.Wrapf(ErrFieldNotFound, "%s.%s", i.class.Name(), name)
	}

	return f, nil
}

// Get returns the value of field name. Struct fields are returned as cty objects.
func (i *Instance) Get(name string) (cty.Value, error) {
	f, err := i.field(name)
	if err != nil {
		return cty.NilVal, err
	}

	if f.kind.IsStruct() {
		return i.Struct(name).Value(), nil
	}

	v, ok := i.values[name]
	if !ok {
		v = ZeroValue(f.kind.Type)
		i.values[name] = v
	}

	return v, nil
}

// Set writes field name. The value is converted to the field type first.
func (i *Instance) Set(name string, value cty.Value) error {
	f, err := i.field(name)
	if err != nil {
		return err
	}

	if f.kind.IsStruct() {
		return i.Struct(name).Assign(value)
	}

	converted, err := convertTo(value, f.kind.Type)
	if err != nil {
		return errors.Wrapf(err, "%s.%s", i.class.Name(), name)
	}

	i.values[name] = converted

	return nil
}

// Struct returns the nested instance stored in struct field name, or nil.
func (i *Instance) Struct(name string) *Instance {
	f := i.class.FindField(name)
	if f == nil || !f.kind.IsStruct() {
		return nil
	}

	nested, ok := i.structs[name]
	if !ok || nested.class != f.kind.Struct {
		nested = NewInstance(f.kind.Struct)
		i.structs[name] = nested
	}

	return nested
}

// Value returns the whole instance as a cty object.
func (i *Instance) Value() cty.Value {
	fields := i.class.Fields()
	if len(fields) == 0 {
		return cty.EmptyObjectVal
	}

	attrs := make(map[string]cty.Value, len(fields))

	for _, f := range fields {
		v, err := i.Get(f.name)
		if err != nil {
			v = cty.NullVal(f.kind.ImpliedType())
		}

		attrs[f.name] = v
	}

	return cty.ObjectVal(attrs)
}

// Assign copies every attribute of an object value onto the matching fields.
func (i *Instance) Assign(value cty.Value) error {
	if value.IsNull() || !value.IsKnown() {
		return errors.Wrapf(ErrNotConvertible, "assign %s", i.class.Name())
	}

	ty := value.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return errors.Wrapf(ErrNotConvertible, "assign %s from %s", i.class.Name(), ty.FriendlyName())
	}

	for _, f := range i.class.Fields() {
		var attr cty.Value

		switch {
		case ty.IsObjectType() && ty.HasAttribute(f.name):
			attr = value.GetAttr(f.name)
		case ty.IsMapType() && value.HasIndex(cty.StringVal(f.name)).True():
			attr = value.Index(cty.StringVal(f.name))
		default:
			continue
		}

		if err := i.Set(f.name, attr); err != nil {
			return err
		}
	}

	return nil
}

// Clone returns a deep copy of i.
func (i *Instance) Clone() *Instance {
	out := &Instance{
		class:   i.class,
		values:  make(map[string]cty.Value, len(i.values)),
		structs: make(map[string]*Instance, len(i.structs)),
	}

	for name, v := range i.values {
		out.values[name] = v
	}

	for name, nested := range i.structs {
		out.structs[name] = nested.Clone()
	}

	return out
}

// CopyMatchingFields copies from src to dst every field present on both with the
// same name and kind. It returns the number of fields copied.
func CopyMatchingFields(src, dst *Instance) int {
	if src == nil || dst == nil {
		return 0
	}

	copied := 0

	for _, df := range dst.class.Fields() {
		sf := src.class.FindField(df.name)
		if sf == nil || !sf.kind.Equal(df.kind) {
			continue
		}

		if df.kind.IsStruct() {
			dst.structs[df.name] = src.Struct(df.name).Clone()
			copied++

			continue
		}

		v, err := src.Get(df.name)
		if err != nil {
			continue
		}

		dst.values[df.name] = v
		copied++
	}

	return copied
}

func convertTo(value cty.Value, ty cty.Type) (cty.Value, error) {
	if value.Type() == cty.NilType {
		return cty.NilVal, errors.Wrap(ErrNotConvertible, "nil value")
	}

	if value.Type().Equals(ty) {
		return value, nil
	}

	converted, err := convert.Convert(value, ty)
	if err != nil {
		return cty.NilVal, errors.Wrapf(ErrNotConvertible, "%s to %s: %s", value.Type().FriendlyName(), ty.FriendlyName(), err)
	}

	return converted, nil
}
