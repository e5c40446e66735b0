package model

import (
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// Field is the declaration of one named slot of a Class.
type Field struct {
	name  string
	kind  Kind
	owner *Class
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Kind returns the field kind.
func (f *Field) Kind() Kind { return f.kind }

// Owner returns the class that declares the field.
func (f *Field) Owner() *Class { return f.owner }

// Class describes the shape of an Instance. Once a class is marked stale it must
// not be extended anymore; a fresh class is built instead.
type Class struct {
	name     string
	category string
	super    *Class
	fields   []*Field
	byName   map[string]*Field
	stale    bool
	hidden   bool
}

// NewClass creates a class. super may be nil.
func NewClass(name string, super *Class) *Class {
	return &Class{
		name:   name,
		super:  super,
		byName: make(map[string]*Field),
	}
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Rename changes the class name.
func (c *Class) Rename(name string) { c.name = name }

// Super returns the parent class.
func (c *Class) Super() *Class { return c.super }

// Category returns the asset category of the class. It falls back to the parent
// category and then to the class name.
func (c *Class) Category() string {
	for cls := c; cls != nil; cls = cls.super {
		if cls.category != "" {
			return cls.category
		}
	}

	return c.name
}

// SetCategory sets the asset category and returns c.
func (c *Class) SetCategory(category string) *Class {
	c.category = category

	return c
}

// AddField declares a value field of type ty.
func (c *Class) AddField(name string, ty cty.Type) (*Field, error) {
	return c.AddFieldOfKind(name, ValueKind(ty))
}

// AddStructField declares a nested aggregate field of class st.
func (c *Class) AddStructField(name string, st *Class) (*Field, error) {
	if st == nil {
		return nil, errors.Wrapf(ErrInvalidKind, "struct field %s", name)
	}

	return c.AddFieldOfKind(name, StructKind(st))
}

// AddFieldOfKind declares a field of any kind. It is how a declaration found on
// one class gets duplicated onto another.
func (c *Class) AddFieldOfKind(name string, kind Kind) (*Field, error) {
	if c.stale {
		return nil, errors.Wrapf(ErrStaleClass, "add field %s to %s", name, c.name)
	}

	if kind.IsZero() {
		return nil, errors.Wrapf(ErrInvalidKind, "field %s", name)
	}

	if _, ok := c.byName[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateField, "%s.%s", c.name, name)
	}

	f := &Field{name: name, kind: kind, owner: c}
	c.fields = append(c.fields, f)
	c.byName[name] = f

	return f, nil
}

// RemoveField drops a field declared on c.
func (c *Class) RemoveField(name string) bool {
	if _, ok := c.byName[name]; !ok {
		return false
	}

	delete(c.byName, name)

	for i, f := range c.fields {
		if f.name == name {
			c.fields = append(c.fields[:i], c.fields[i+1:]...)

			break
		}
	}

	return true
}

// OwnField returns the field declared directly on c.
func (c *Class) OwnField(name string) *Field {
	return c.byName[name]
}

// FindField looks name up on c and then on its parents.
func (c *Class) FindField(name string) *Field {
	for cls := c; cls != nil; cls = cls.super {
		if f, ok := cls.byName[name]; ok {
			return f
		}
	}

	return nil
}

// Fields returns every field of c, inherited ones first, in declaration order.
func (c *Class) Fields() []*Field {
	if c.super == nil {
		out := make([]*Field, len(c.fields))
		copy(out, c.fields)

		return out
	}

	out := c.super.Fields()
	for i, f := range out {
		if own, ok := c.byName[f.name]; ok {
			out[i] = own
		}
	}

	for _, f := range c.fields {
		if c.super.FindField(f.name) == nil {
			out = append(out, f)
		}
	}

	return out
}

// IsA reports whether c is other or derives from it.
func (c *Class) IsA(other *Class) bool {
	for cls := c; cls != nil; cls = cls.super {
		if cls == other {
			return true
		}
	}

	return false
}

// MarkStale flags c as replaced by a newer version.
func (c *Class) MarkStale() { c.stale = true }

// IsStale reports whether a newer version of c exists.
func (c *Class) IsStale() bool { return c.stale }

// Hide makes c undiscoverable by registries listing classes.
func (c *Class) Hide() { c.hidden = true }

// IsDiscoverable reports whether c can still be found by name.
func (c *Class) IsDiscoverable() bool { return !c.hidden }

// ImpliedType returns the cty object type an instance of c converts to.
func (c *Class) ImpliedType() cty.Type {
	fields := c.Fields()
	attrs := make(map[string]cty.Type, len(fields))

	for _, f := range fields {
		attrs[f.name] = f.kind.ImpliedType()
	}

	return cty.Object(attrs)
}
