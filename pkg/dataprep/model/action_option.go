package model

import "time"

// ActionOption defines the interface for hooks an action calls while it runs.
type ActionOption interface {
	// New runs when an action execution starts.
	New() error
	// PrepareStep runs before the execution for every step that is planned to run,
	// in run order. parentStep is the previous planned step or StartStep.
	PrepareStep(parentStep, step *StepInfo) error
	// OnStepOutput runs after a step and its reconciliation completed.
	OnStepOutput(step *StepInfo, computationDuration, reconcileDuration time.Duration, selected int) error
	// Finish runs after the execution finished, interrupted or not.
	Finish() error
}
