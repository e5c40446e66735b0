package parameterization

import "github.com/pkg/errors"

var (
	ErrInvalidName       = errors.New("parameter name must be set")
	ErrUnknownParameter  = errors.New("unknown parameter")
	ErrNotBound          = errors.New("property is not bound")
	ErrInvalidExpression = errors.New("invalid parameter expression")
	ErrInvalidData       = errors.New("invalid parameterization data")
	ErrSourceMustBeSet   = errors.New("parameterization source must be set")
)
