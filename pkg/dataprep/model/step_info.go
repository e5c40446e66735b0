package model

// StepType tells operations and filters apart in hooks.
type StepType string

const (
	StartStepType     StepType = "start"
	OperationStepType StepType = "operation"
	FilterStepType    StepType = "filter"
	EndStepType       StepType = "end"
)

// StepInfo describes a step to action hooks.
type StepInfo struct {
	Type    StepType
	Name    string
	Index   int
	Enabled bool
	// Params is the parameter object of the step, if any.
	Params *Object
}

var (
	StartStep = &StepInfo{Type: StartStepType, Name: "start", Index: -1}
	EndStep   = &StepInfo{Type: EndStepType, Name: "end", Index: -1}
)
