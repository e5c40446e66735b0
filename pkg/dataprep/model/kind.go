package model

import (
	"github.com/zclconf/go-cty/cty"
)

// Kind describes the type of a field value. Value kinds carry a cty type, struct
// kinds point to the class describing the nested aggregate.
type Kind struct {
	Type   cty.Type
	Struct *Class
}

// ValueKind returns the kind of a cty typed value field.
func ValueKind(ty cty.Type) Kind {
	return Kind{Type: ty}
}

// StructKind returns the kind of a nested aggregate of class c.
func StructKind(c *Class) Kind {
	return Kind{Struct: c}
}

// IsZero reports whether k describes nothing.
func (k Kind) IsZero() bool {
	return k.Struct == nil && k.Type == cty.NilType
}

// IsStruct reports whether k is an aggregate kind.
func (k Kind) IsStruct() bool {
	return k.Struct != nil
}

// IsContainer reports whether k is a list, set or map.
func (k Kind) IsContainer() bool {
	if k.IsStruct() || k.Type == cty.NilType {
		return false
	}

	return k.Type.IsCollectionType()
}

// ElementKind returns the kind of one element of a container kind.
func (k Kind) ElementKind() Kind {
	if !k.IsContainer() {
		return Kind{}
	}

	return ValueKind(k.Type.ElementType())
}

// ImpliedType returns the cty type a value of kind k is exchanged as.
func (k Kind) ImpliedType() cty.Type {
	if k.IsStruct() {
		return k.Struct.ImpliedType()
	}

	return k.Type
}

// Equal reports whether k and other describe the same kind. Struct kinds compare
// by class identity so a regenerated class never matches its predecessor.
func (k Kind) Equal(other Kind) bool {
	if k.Struct != nil || other.Struct != nil {
		return k.Struct == other.Struct
	}

	if k.Type == cty.NilType || other.Type == cty.NilType {
		return k.Type == cty.NilType && other.Type == cty.NilType
	}

	return k.Type.Equals(other.Type)
}

func (k Kind) String() string {
	switch {
	case k.IsStruct():
		return "struct " + k.Struct.Name()
	case k.Type == cty.NilType:
		return "invalid"
	default:
		return k.Type.FriendlyName()
	}
}

// ZeroValue returns the default value stored in a freshly created field of type ty.
func ZeroValue(ty cty.Type) cty.Value {
	switch {
	case ty == cty.NilType:
		return cty.NilVal
	case ty.Equals(cty.String):
		return cty.StringVal("")
	case ty.Equals(cty.Number):
		return cty.Zero
	case ty.Equals(cty.Bool):
		return cty.False
	case ty.IsListType():
		return cty.ListValEmpty(ty.ElementType())
	case ty.IsSetType():
		return cty.SetValEmpty(ty.ElementType())
	case ty.IsMapType():
		return cty.MapValEmpty(ty.ElementType())
	case ty.IsObjectType():
		attrs := ty.AttributeTypes()
		if len(attrs) == 0 {
			return cty.EmptyObjectVal
		}

		vals := make(map[string]cty.Value, len(attrs))
		for name, attrTy := range attrs {
			vals[name] = ZeroValue(attrTy)
		}

		return cty.ObjectVal(vals)
	case ty.IsTupleType():
		elems := ty.TupleElementTypes()
		if len(elems) == 0 {
			return cty.EmptyTupleVal
		}

		vals := make([]cty.Value, len(elems))
		for i, elemTy := range elems {
			vals[i] = ZeroValue(elemTy)
		}

		return cty.TupleVal(vals)
	default:
		return cty.NullVal(ty)
	}
}
