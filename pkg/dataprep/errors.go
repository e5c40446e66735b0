package dataprep

import "github.com/pkg/errors"

// IndexNone is returned when a step could not be added and selects every step
// in ExecuteAction.
const IndexNone = -1

var (
	ErrContextMustBeSet = errors.New("run context must be set")
	ErrStoreMustBeSet   = errors.New("object store must be set")
	ErrStepNotFound     = errors.New("step not found")
	ErrActionNotFound   = errors.New("action not found")
	ErrActionMustBeSet  = errors.New("action must be set")
	ErrObjectMustBeSet  = errors.New("object must be set")
	ErrClassMustBeSet   = errors.New("class must be set")
)
