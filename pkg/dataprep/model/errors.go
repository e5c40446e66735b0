package model

import "github.com/pkg/errors"

var (
	ErrFieldNotFound   = errors.New("field not found")
	ErrDuplicateField  = errors.New("field already declared")
	ErrStaleClass      = errors.New("class has a newer version")
	ErrNotStruct       = errors.New("field is not a struct")
	ErrNotConvertible  = errors.New("value not convertible to field type")
	ErrInvalidKind     = errors.New("invalid kind")
	ErrInvalidInstance = errors.New("instance must be set")
)
