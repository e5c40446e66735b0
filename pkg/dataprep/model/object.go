package model

import (
	"path"

	"github.com/google/uuid"
)

// Object is an Instance with an identity. Scene actors, assets, step parameters
// and parameter value holders are all objects.
type Object struct {
	*Instance

	id        uuid.UUID
	name      string
	outer     string
	asset     bool
	destroyed bool
}

// NewObject creates an object of class c.
func NewObject(c *Class, name string) *Object {
	return &Object{
		Instance: NewInstance(c),
		id:       uuid.New(),
		name:     name,
	}
}

// NewAsset creates an asset object of class c living under outer.
func NewAsset(c *Class, outer, name string) *Object {
	obj := NewObject(c, name)
	obj.outer = outer
	obj.asset = true

	return obj
}

// ID returns the stable identifier of the object.
func (o *Object) ID() uuid.UUID { return o.id }

// Name returns the object name.
func (o *Object) Name() string { return o.name }

// SetName renames the object.
func (o *Object) SetName(name string) { o.name = name }

// Outer returns the container path of the object.
func (o *Object) Outer() string { return o.outer }

// SetOuter moves the object under another container path.
func (o *Object) SetOuter(outer string) { o.outer = outer }

// Path returns outer/name.
func (o *Object) Path() string {
	if o.outer == "" {
		return o.name
	}

	return path.Join(o.outer, o.name)
}

// IsAsset reports whether the object is an asset rather than a world actor.
func (o *Object) IsAsset() bool { return o.asset }

// SetAsset flags the object as an asset.
func (o *Object) SetAsset(asset bool) { o.asset = asset }

// Destroy marks the object as dead. Holders must check IsValid before use.
func (o *Object) Destroy() { o.destroyed = true }

// IsValid reports whether the object exists and was not destroyed.
func (o *Object) IsValid() bool {
	return o != nil && !o.destroyed && o.Instance != nil
}

// Clone returns a deep copy of o with a new identity.
func (o *Object) Clone(name string) *Object {
	return &Object{
		Instance: o.Instance.Clone(),
		id:       uuid.New(),
		name:     name,
		outer:    o.outer,
		asset:    o.asset,
	}
}

// Reinstance switches o to class c in place, keeping every field whose name and
// kind still match. It is the hot reload path of a regenerated class.
func (o *Object) Reinstance(c *Class) {
	next := NewInstance(c)
	CopyMatchingFields(o.Instance, next)
	o.Instance = next
}

func (o *Object) String() string {
	if o == nil {
		return "<nil>"
	}

	return o.Path()
}
