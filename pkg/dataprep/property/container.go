package property

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// accessor reads and writes one element of a container value by ordinal.
// Sets have no accessor: cty keeps them sorted by value, so writing an element
// moves it and an ordinal would not keep pointing at it. Sets are addressed as
// a whole.
type accessor struct {
	length func(v cty.Value) int
	get    func(v cty.Value, i int) cty.Value
	set    func(v cty.Value, i int, elem cty.Value) cty.Value
}

var (
	listAccessor = accessor{
		length: collectionLength,
		get: func(v cty.Value, i int) cty.Value {
			return v.AsValueSlice()[i]
		},
		set: func(v cty.Value, i int, elem cty.Value) cty.Value {
			elems := v.AsValueSlice()
			elems[i] = elem

			return cty.ListVal(elems)
		},
	}

	// Map elements are addressed by the ordinal of their key in sorted order.
	mapAccessor = accessor{
		length: collectionLength,
		get: func(v cty.Value, i int) cty.Value {
			m := v.AsValueMap()

			return m[sortedKeys(m)[i]]
		},
		set: func(v cty.Value, i int, elem cty.Value) cty.Value {
			m := v.AsValueMap()
			m[sortedKeys(m)[i]] = elem

			return cty.MapVal(m)
		},
	}
)

func accessorFor(ty cty.Type) (accessor, bool) {
	switch {
	case ty == cty.NilType:
		return accessor{}, false
	case ty.IsListType():
		return listAccessor, true
	case ty.IsMapType():
		return mapAccessor, true
	default:
		return accessor{}, false
	}
}

func collectionLength(v cty.Value) int {
	if v.IsNull() || !v.IsKnown() {
		return 0
	}

	return v.LengthInt()
}

func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func elementAt(container cty.Value, index int) (cty.Value, error) {
	acc, ok := accessorFor(container.Type())
	if !ok {
		return cty.NilVal, errors.Wrapf(ErrUnresolvable, "%s is not indexable", container.Type().FriendlyName())
	}

	if index < 0 || index >= acc.length(container) {
		return cty.NilVal, errors.Wrapf(ErrUnresolvable, "index %d out of range", index)
	}

	return acc.get(container, index), nil
}

func withElement(container cty.Value, index int, elem cty.Value) (cty.Value, error) {
	acc, ok := accessorFor(container.Type())
	if !ok {
		return cty.NilVal, errors.Wrapf(ErrUnresolvable, "%s is not indexable", container.Type().FriendlyName())
	}

	if index < 0 || index >= acc.length(container) {
		return cty.NilVal, errors.Wrapf(ErrUnresolvable, "index %d out of range", index)
	}

	converted, err := convert.Convert(elem, container.Type().ElementType())
	if err != nil {
		return cty.NilVal, errors.Wrapf(ErrKindMismatch, "element: %s", err)
	}

	return acc.set(container, index, converted), nil
}

func hasAttribute(ty cty.Type, name string) bool {
	return ty != cty.NilType && ty.IsObjectType() && ty.HasAttribute(name)
}

func attributeOf(v cty.Value, name string) (cty.Value, error) {
	if !hasAttribute(v.Type(), name) {
		return cty.NilVal, errors.Wrapf(ErrUnresolvable, "%s has no attribute %q", v.Type().FriendlyName(), name)
	}

	if v.IsNull() || !v.IsKnown() {
		return cty.NilVal, errors.Wrapf(ErrUnresolvable, "attribute %q of a null object", name)
	}

	return v.GetAttr(name), nil
}

func withAttribute(v cty.Value, name string, attr cty.Value) (cty.Value, error) {
	if _, err := attributeOf(v, name); err != nil {
		return cty.NilVal, err
	}

	attrs := v.AsValueMap()
	attrs[name] = attr

	return cty.ObjectVal(attrs), nil
}

// segment is one hop below a field value: an element when attr is empty, an
// object attribute otherwise.
type segment struct {
	attr  string
	index int
}

func getIn(v cty.Value, path []segment) (cty.Value, error) {
	var err error

	for _, s := range path {
		if s.attr != "" {
			v, err = attributeOf(v, s.attr)
		} else {
			v, err = elementAt(v, s.index)
		}

		if err != nil {
			return cty.NilVal, err
		}
	}

	return v, nil
}

// setIn writes value at path below v and returns the rebuilt v.
func setIn(v cty.Value, path []segment, value cty.Value) (cty.Value, error) {
	if len(path) == 0 {
		converted, err := convert.Convert(value, v.Type())
		if err != nil {
			return cty.NilVal, errors.Wrapf(ErrKindMismatch, "%s", err)
		}

		return converted, nil
	}

	s := path[0]

	if s.attr != "" {
		child, err := attributeOf(v, s.attr)
		if err != nil {
			return cty.NilVal, err
		}

		updated, err := setIn(child, path[1:], value)
		if err != nil {
			return cty.NilVal, err
		}

		return withAttribute(v, s.attr, updated)
	}

	child, err := elementAt(v, s.index)
	if err != nil {
		return cty.NilVal, err
	}

	updated, err := setIn(child, path[1:], value)
	if err != nil {
		return cty.NilVal, err
	}

	return withElement(v, s.index, updated)
}
