package drawer

import (
	"time"

	"github.com/askiada/go-dataprep/pkg/dataprep/measure"
)

// Drawer renders the step chain of an action and the parameters bound to its
// steps.
type Drawer interface {
	// AddStep adds a step vertex. Adding an existing step is a no-op.
	AddStep(stepName string) error
	// AddParameter adds a parameter vertex.
	AddParameter(paramName string) error
	// AddLink adds an edge between two consecutive steps.
	AddLink(parentStepName, childStepName string) error
	// AddBinding adds an edge from a parameter to the step property it drives.
	AddBinding(paramName, stepName, chain string) error
	// Draw writes the graph.
	Draw() error
	// SetTotalTime labels the step with the time elapsed since startTime.
	SetTotalTime(stepName string, startTime time.Time) error
	// AddMeasure labels steps and colours step links from measure.
	AddMeasure(measure measure.Measure) error
}
