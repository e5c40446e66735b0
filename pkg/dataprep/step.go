package dataprep

import (
	"context"

	"github.com/askiada/go-dataprep/pkg/dataprep/model"
)

// Operation mutates the working set through the OperationContext.
type Operation interface {
	OnExecution(ctx context.Context, opCtx *OperationContext) error
}

// OperationFunc adapts a function to Operation.
type OperationFunc func(ctx context.Context, opCtx *OperationContext) error

func (f OperationFunc) OnExecution(ctx context.Context, opCtx *OperationContext) error {
	return f(ctx, opCtx)
}

// Filter returns the subset of objects to keep working on, in the order they
// should be processed. params is the parameter object of the step.
type Filter interface {
	Filter(ctx context.Context, params *model.Object, objects []*model.Object) ([]*model.Object, error)
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(ctx context.Context, params *model.Object, objects []*model.Object) ([]*model.Object, error)

func (f FilterFunc) Filter(ctx context.Context, params *model.Object, objects []*model.Object) ([]*model.Object, error) {
	return f(ctx, params, objects)
}

// Step is one operation or filter of an action.
type Step struct {
	name      string
	operation Operation
	filter    Filter
	params    *model.Object
	enabled   bool
}

func (s *Step) Name() string { return s.name }

// Operation returns the operation of the step, nil for a filter.
func (s *Step) Operation() Operation { return s.operation }

// Filter returns the filter of the step, nil for an operation.
func (s *Step) Filter() Filter { return s.filter }

// Params returns the parameter object of the step. It may be nil.
func (s *Step) Params() *model.Object { return s.params }

func (s *Step) IsEnabled() bool { return s.enabled }

func (s *Step) Type() model.StepType {
	if s.filter != nil {
		return model.FilterStepType
	}

	return model.OperationStepType
}

func (s *Step) info(index int) *model.StepInfo {
	return &model.StepInfo{
		Type:    s.Type(),
		Name:    s.name,
		Index:   index,
		Enabled: s.enabled,
		Params:  s.params,
	}
}

// State is the execution state of an action.
type State int

const (
	Idle State = iota
	RunningOperation
	RunningFilter
	Reconciling
	Interrupted
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RunningOperation:
		return "running operation"
	case RunningFilter:
		return "running filter"
	case Reconciling:
		return "reconciling"
	case Interrupted:
		return "interrupted"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

type stepOutcome int

const (
	outcomeContinue stepOutcome = iota
	outcomeStop
	outcomeCancelled
)
